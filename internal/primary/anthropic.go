package primary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/shahar-caura/diagroute/internal/catalog"
	"github.com/shahar-caura/diagroute/internal/diagram"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-haiku-4-5"

// maxResponseTokens bounds the size of a model's answer; a candidate is tiny.
const maxResponseTokens = 256

// Anthropic classifies through the Anthropic Messages API.
type Anthropic struct {
	client anthropic.Client
	model  string
	cat    *catalog.Catalog
	logger *slog.Logger
}

// NewAnthropic creates an Anthropic backend. An empty API key falls back to
// ANTHROPIC_API_KEY. The SDK's own retries are disabled: the router allows a
// single attempt.
func NewAnthropic(cat *catalog.Catalog, s Settings, logger *slog.Logger) *Anthropic {
	opts := []anthropicoption.RequestOption{anthropicoption.WithMaxRetries(0)}
	if s.APIKey != "" {
		opts = append(opts, anthropicoption.WithAPIKey(s.APIKey))
	}
	if s.BaseURL != "" {
		opts = append(opts, anthropicoption.WithBaseURL(s.BaseURL))
	}

	model := s.Model
	if model == "" {
		model = DefaultAnthropicModel
	}

	return &Anthropic{
		client: anthropic.NewClient(opts...),
		model:  model,
		cat:    cat,
		logger: logger,
	}
}

func (a *Anthropic) Classify(ctx context.Context, req diagram.Request, timeout time.Duration) (*Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	a.logger.Debug("calling anthropic", "model", a.model, "timeout", timeout)
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: maxResponseTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(req, a.cat))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: anthropic: %w", ErrUnavailable, err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return ParseCandidate(sb.String())
}
