package primary

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shahar-caura/diagroute/internal/catalog"
)

// Provider names accepted by New.
const (
	ProviderNone      = "none"
	ProviderClaudeCLI = "claude-cli"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

// Providers lists every accepted provider name.
var Providers = []string{ProviderNone, ProviderClaudeCLI, ProviderAnthropic, ProviderOpenAI, ProviderGemini}

// Settings selects and configures a backend.
type Settings struct {
	Provider      string
	Model         string
	APIKey        string
	BaseURL       string
	RatePerSecond float64
	Burst         int
}

// New builds the configured backend, rate limited when RatePerSecond is set.
// It returns a nil Classifier for the "none" provider.
func New(ctx context.Context, s Settings, cat *catalog.Catalog, logger *slog.Logger) (Classifier, error) {
	var c Classifier
	switch s.Provider {
	case "", ProviderNone:
		return nil, nil
	case ProviderClaudeCLI:
		c = NewClaudeCLI(cat, s.Model, logger)
	case ProviderAnthropic:
		c = NewAnthropic(cat, s, logger)
	case ProviderOpenAI:
		c = NewOpenAI(cat, s, logger)
	case ProviderGemini:
		g, err := NewGemini(ctx, cat, s, logger)
		if err != nil {
			return nil, err
		}
		c = g
	default:
		return nil, fmt.Errorf("unknown primary provider %q", s.Provider)
	}

	logger.Debug("primary classifier ready", "provider", s.Provider, "model", s.Model)
	return Limit(c, s.RatePerSecond, s.Burst), nil
}
