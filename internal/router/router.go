// Package router decides how a diagram request is rendered. It makes one
// bounded attempt with the primary classifier, falls back to the keyword
// classifier on any failure, and always finalizes the rendering backend and
// ai_suitable itself.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shahar-caura/diagroute/internal/catalog"
	"github.com/shahar-caura/diagroute/internal/diagram"
	"github.com/shahar-caura/diagroute/internal/fallback"
	"github.com/shahar-caura/diagroute/internal/primary"
	"github.com/shahar-caura/diagroute/internal/tooltable"
)

const (
	DefaultTimeout       = 10 * time.Second
	DefaultMinConfidence = 0.5
)

// Options tune the primary attempt.
type Options struct {
	// Timeout bounds the single primary attempt. Zero means DefaultTimeout.
	Timeout time.Duration
	// MinConfidence rejects primary candidates that report a lower confidence.
	// Candidates without a confidence are accepted.
	MinConfidence float64
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{Timeout: DefaultTimeout, MinConfidence: DefaultMinConfidence}
}

// Router classifies requests. All of its state is read-only after New, so a
// single Router serves any number of concurrent calls.
type Router struct {
	cat        *catalog.Catalog
	primary    primary.Classifier
	fallback   *fallback.Classifier
	table      *tooltable.Table
	codeBetter tooltable.CodeBetter
	opts       Options
	logger     *slog.Logger
}

// New builds a router over a catalog. p may be nil, in which case every
// request is answered by the fallback classifier. A nil logger discards
// output. An invalid catalog is an error.
func New(cat *catalog.Catalog, p primary.Classifier, opts Options, logger *slog.Logger) (*Router, error) {
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MinConfidence < 0 || opts.MinConfidence > 1 {
		return nil, fmt.Errorf("min confidence must be within [0, 1], got %g", opts.MinConfidence)
	}

	table := tooltable.New(cat)
	codeBetter := tooltable.NewCodeBetter(cat)
	fb, err := fallback.New(cat, table, codeBetter)
	if err != nil {
		return nil, err
	}

	return &Router{
		cat:        cat,
		primary:    p,
		fallback:   fb,
		table:      table,
		codeBetter: codeBetter,
		opts:       opts,
		logger:     logger,
	}, nil
}

// Fallback exposes the keyword classifier, e.g. for explaining decisions.
func (r *Router) Fallback() *fallback.Classifier { return r.fallback }

// Table exposes the tool selection table.
func (r *Router) Table() *tooltable.Table { return r.table }

// CodeBetter exposes the set of types that are never ai_suitable.
func (r *Router) CodeBetter() tooltable.CodeBetter { return r.codeBetter }

// Classify routes a question. It never fails: primary problems degrade to the
// fallback classifier and are only logged.
func (r *Router) Classify(ctx context.Context, question, hint string) diagram.Result {
	return r.ClassifyRequest(ctx, diagram.Request{Question: question, DomainHint: hint})
}

// ClassifyRequest is Classify for a Request value.
func (r *Router) ClassifyRequest(ctx context.Context, req diagram.Request) diagram.Result {
	if req.Blank() {
		res := r.fallback.Default(req.DomainHint)
		r.logger.Debug("blank question, using generic default", "domain", res.Domain)
		return res
	}

	if r.primary != nil {
		start := time.Now()
		res, err := r.attempt(ctx, req)
		if err == nil {
			r.logDecision(res, time.Since(start))
			return res
		}
		r.logger.Warn("primary classifier failed, using fallback", "error", err, "elapsed", time.Since(start))
	}

	res := r.fallback.Classify(req.Question, req.DomainHint)
	r.logDecision(res, 0)
	return res
}

type outcome struct {
	candidate *primary.Candidate
	err       error
}

// attempt makes the single primary call. The call runs in its own goroutine so
// a classifier that ignores its context is abandoned at the deadline.
func (r *Router) attempt(ctx context.Context, req diagram.Request) (diagram.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("%w: panic: %v", primary.ErrUnavailable, p)}
			}
		}()
		c, err := r.primary.Classify(ctx, req, r.opts.Timeout)
		done <- outcome{candidate: c, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		return diagram.Result{}, fmt.Errorf("%w: %w", primary.ErrUnavailable, ctx.Err())
	}

	if out.err != nil {
		if !errors.Is(out.err, primary.ErrUnavailable) && !errors.Is(out.err, primary.ErrMalformed) {
			return diagram.Result{}, fmt.Errorf("%w: %w", primary.ErrUnavailable, out.err)
		}
		return diagram.Result{}, out.err
	}
	return r.adopt(out.candidate)
}

// adopt validates a candidate and finalizes it. An unknown diagram type is
// accepted and resolved to its domain's default backend.
func (r *Router) adopt(c *primary.Candidate) (diagram.Result, error) {
	if c == nil {
		return diagram.Result{}, fmt.Errorf("%w: no candidate", primary.ErrMalformed)
	}

	domain, ok := r.cat.CanonicalDomain(c.Domain)
	if !ok {
		return diagram.Result{}, fmt.Errorf("%w: unknown domain %q", primary.ErrMalformed, c.Domain)
	}

	diagramType, ok := diagram.CanonicalLabel(c.DiagramType)
	if !ok {
		return diagram.Result{}, fmt.Errorf("%w: invalid diagram_type %q", primary.ErrMalformed, c.DiagramType)
	}

	if c.Confidence != nil && *c.Confidence < r.opts.MinConfidence {
		return diagram.Result{}, fmt.Errorf("%w: confidence %.2f below threshold %.2f: %s",
			primary.ErrMalformed, *c.Confidence, r.opts.MinConfidence, c.Reasoning)
	}

	res, err := r.finalize(domain, diagramType, c.AISuitable, diagram.SourcePrimary)
	if err != nil {
		return diagram.Result{}, fmt.Errorf("%w: %w", primary.ErrMalformed, err)
	}
	return res, nil
}

// finalize picks the backend from the table and applies the code-better override.
func (r *Router) finalize(domain, diagramType string, opinion *bool, src diagram.Source) (diagram.Result, error) {
	res := r.table.Resolve(domain, diagramType)
	if res.Defaulted && diagramType != diagram.GeneralDiagram {
		r.logger.Warn("no tool mapping, using domain default",
			"domain", domain, "diagram_type", diagramType, "tool", res.Tool, "lib", res.Lib)
	}
	return diagram.NewResult(domain, diagramType, res.Mapping, r.codeBetter.AISuitable(diagramType, opinion), src)
}

func (r *Router) logDecision(res diagram.Result, elapsed time.Duration) {
	r.logger.Debug("classified",
		"source", res.Source,
		"domain", res.Domain,
		"diagram_type", res.DiagramType,
		"tool", res.PreferredTool,
		"ai_suitable", res.AISuitable,
		"elapsed", elapsed,
	)
}
