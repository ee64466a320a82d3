package primary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/shahar-caura/diagroute/internal/catalog"
	"github.com/shahar-caura/diagroute/internal/diagram"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

const systemInstruction = "You are a precise classifier. Answer with a single JSON object."

// OpenAI classifies through the Chat Completions API. A base URL points it at
// any OpenAI-compatible server.
type OpenAI struct {
	client openai.Client
	model  string
	cat    *catalog.Catalog
	logger *slog.Logger
}

// NewOpenAI creates an OpenAI backend. An empty API key falls back to OPENAI_API_KEY.
func NewOpenAI(cat *catalog.Catalog, s Settings, logger *slog.Logger) *OpenAI {
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if s.APIKey != "" {
		opts = append(opts, option.WithAPIKey(s.APIKey))
	}
	if s.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.BaseURL))
	}

	model := s.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
		cat:    cat,
		logger: logger,
	}
}

func (o *OpenAI) Classify(ctx context.Context, req diagram.Request, timeout time.Duration) (*Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	o.logger.Debug("calling openai", "model", o.model, "timeout", timeout)
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemInstruction),
			openai.UserMessage(BuildPrompt(req, o.cat)),
		},
		MaxCompletionTokens: openai.Int(maxResponseTokens),
		Temperature:         openai.Float(0),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %w", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: openai returned no choices", ErrMalformed)
	}

	return ParseCandidate(resp.Choices[0].Message.Content)
}
