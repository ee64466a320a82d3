package primary

import (
	"context"
	"fmt"
	"time"

	"github.com/shahar-caura/diagroute/internal/diagram"
	"golang.org/x/time/rate"
)

type limited struct {
	next    Classifier
	limiter *rate.Limiter
}

// Limit caps the request rate of c. Time spent waiting for a token counts
// against the caller's timeout; when no token can be had in time the call
// fails with ErrUnavailable instead of queueing. A non-positive rps disables
// limiting.
func Limit(c Classifier, rps float64, burst int) Classifier {
	if c == nil || rps <= 0 {
		return c
	}
	return &limited{next: c, limiter: rate.NewLimiter(rate.Limit(rps), max(burst, 1))}
}

func (l *limited) Classify(ctx context.Context, req diagram.Request, timeout time.Duration) (*Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limited: %w", ErrUnavailable, err)
	}

	remaining := timeout - time.Since(start)
	if remaining <= 0 {
		return nil, fmt.Errorf("%w: rate limited past deadline", ErrUnavailable)
	}
	return l.next.Classify(ctx, req, remaining)
}
