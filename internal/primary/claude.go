package primary

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/shahar-caura/diagroute/internal/catalog"
	"github.com/shahar-caura/diagroute/internal/diagram"
)

// CommandContext is the function used to create exec.Cmd. Override in tests.
var CommandContext = exec.CommandContext

// LookPath is the function used to find executables. Override in tests.
var LookPath = exec.LookPath

// ClaudeCLI classifies by running the claude CLI in print mode.
type ClaudeCLI struct {
	Model  string
	Logger *slog.Logger

	cat *catalog.Catalog
}

// NewClaudeCLI creates a claude CLI backend. An empty model uses the CLI default.
func NewClaudeCLI(cat *catalog.Catalog, model string, logger *slog.Logger) *ClaudeCLI {
	return &ClaudeCLI{Model: model, Logger: logger, cat: cat}
}

func (c *ClaudeCLI) Classify(ctx context.Context, req diagram.Request, timeout time.Duration) (*Candidate, error) {
	if _, err := LookPath("claude"); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, ErrNoClaude)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{"-p", BuildPrompt(req, c.cat), "--output-format", "json"}
	if c.Model != "" {
		args = append(args, "--model", c.Model)
	}

	cmd := CommandContext(ctx, "claude", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.Logger.Debug("running claude", "timeout", timeout)
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: timed out after %s", ErrUnavailable, timeout)
		}
		return nil, fmt.Errorf("%w: claude: %w: %s", ErrUnavailable, err, strings.TrimSpace(stderr.String()))
	}

	return ParseCandidate(stdout.String())
}
