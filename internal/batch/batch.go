// Package batch classifies many requests at once, such as every question of
// an assignment.
package batch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shahar-caura/diagroute/internal/diagram"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// DefaultConcurrency is used when the caller does not set a limit.
const DefaultConcurrency = 8

// Classifier routes a single request. *router.Router satisfies it.
type Classifier interface {
	ClassifyRequest(ctx context.Context, req diagram.Request) diagram.Result
}

// Item is one classified request. Items keep the order of the input.
type Item struct {
	Index    int            `json:"index"`
	Question string         `json:"question"`
	Hint     string         `json:"hint,omitempty"`
	Result   diagram.Result `json:"result"`
}

// Report is the outcome of a batch.
type Report struct {
	ID      string                 `json:"id"`
	Items   []Item                 `json:"items"`
	Sources map[diagram.Source]int `json:"sources"`
	Elapsed time.Duration          `json:"-"`
}

// Classify runs every request through c with at most concurrency calls in
// flight. Requests are independent: a slow one only holds its own slot.
func Classify(ctx context.Context, c Classifier, reqs []diagram.Request, concurrency int, logger *slog.Logger) Report {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	id := uuid.NewString()
	logger = logger.With("batch", id)
	logger.Info("classifying batch", "requests", len(reqs), "concurrency", concurrency)

	start := time.Now()
	items := make([]Item, len(reqs))
	var completed atomic.Int64

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			res := c.ClassifyRequest(ctx, req)
			items[i] = Item{Index: i, Question: req.Question, Hint: req.DomainHint, Result: res}
			n := completed.Add(1)
			logger.Debug("request classified", "index", i, "source", res.Source,
				"progress", fmt.Sprintf("%d/%d", n, len(reqs)))
			return nil
		})
	}
	_ = g.Wait()

	sources := make(map[diagram.Source]int, 2)
	for _, it := range items {
		sources[it.Result.Source]++
	}

	elapsed := time.Since(start)
	logger.Info("batch complete", "requests", len(reqs), "primary", sources[diagram.SourcePrimary],
		"fallback", sources[diagram.SourceFallback], "elapsed", elapsed)

	return Report{ID: id, Items: items, Sources: sources, Elapsed: elapsed}
}

// LoadRequests reads a YAML list of requests:
//
//	- question: Draw the state diagram for a sequence detector FSM
//	  hint: electrical
func LoadRequests(path string) ([]diagram.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading requests: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var reqs []diagram.Request
	if err := dec.Decode(&reqs); err != nil {
		return nil, fmt.Errorf("parsing requests: %w", err)
	}
	return reqs, nil
}
