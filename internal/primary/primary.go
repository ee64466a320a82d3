// Package primary defines the model-backed classifier the router tries first,
// and its backends.
package primary

import (
	"context"
	"errors"
	"time"

	"github.com/shahar-caura/diagroute/internal/diagram"
)

var (
	// ErrUnavailable covers transport failures: timeouts, network and auth
	// errors, a missing binary, a saturated rate limit.
	ErrUnavailable = errors.New("primary classifier unavailable")

	// ErrMalformed indicates a response that does not fit the candidate schema
	// or fails validation.
	ErrMalformed = errors.New("primary classifier response malformed")

	// ErrNoClaude indicates the claude CLI is not installed.
	ErrNoClaude = errors.New("claude CLI not found in PATH")
)

// Candidate is the primary classifier's proposal. Rendering backends are
// always chosen by the router, so any tool the model suggests is ignored.
type Candidate struct {
	Domain      string   `json:"domain"`
	DiagramType string   `json:"diagram_type"`
	AISuitable  *bool    `json:"ai_suitable,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
	Reasoning   string   `json:"reasoning,omitempty"`
}

// Classifier proposes a classification for a request. Implementations must
// return within timeout; the router abandons calls that do not.
type Classifier interface {
	Classify(ctx context.Context, req diagram.Request, timeout time.Duration) (*Candidate, error)
}

// Func adapts a function to the Classifier interface.
type Func func(ctx context.Context, req diagram.Request, timeout time.Duration) (*Candidate, error)

func (f Func) Classify(ctx context.Context, req diagram.Request, timeout time.Duration) (*Candidate, error) {
	return f(ctx, req, timeout)
}
