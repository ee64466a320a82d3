package primary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shahar-caura/diagroute/internal/catalog"
	"github.com/shahar-caura/diagroute/internal/diagram"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini classifies through the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	cat    *catalog.Catalog
	logger *slog.Logger
}

// NewGemini creates a Gemini backend. An empty API key falls back to the
// GEMINI_API_KEY / GOOGLE_API_KEY environment variables.
func NewGemini(ctx context.Context, cat *catalog.Catalog, s Settings, logger *slog.Logger) (*Gemini, error) {
	cfg := &genai.ClientConfig{
		APIKey:  s.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if s.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: s.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := s.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	return &Gemini{client: client, model: model, cat: cat, logger: logger}, nil
}

func (g *Gemini) Classify(ctx context.Context, req diagram.Request, timeout time.Duration) (*Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	content := genai.NewContentFromText(BuildPrompt(req, g.cat), genai.RoleUser)

	g.logger.Debug("calling gemini", "model", g.model, "timeout", timeout)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{content}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		MaxOutputTokens:  maxResponseTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: gemini: %w", ErrUnavailable, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: gemini returned no candidates", ErrMalformed)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return ParseCandidate(sb.String())
}
