package main

import (
	"context"
	"fmt"

	"github.com/shahar-caura/diagroute/internal/catalog"
	"github.com/shahar-caura/diagroute/internal/primary"
	"github.com/shahar-caura/diagroute/internal/router"
)

// --- Catalog ---

// catalogSource returns the catalog file in effect, or "" for the built-in one.
// The --catalog flag wins over the config file.
func (a *app) catalogSource() string {
	if a.catalogPath != "" {
		return a.catalogPath
	}
	return a.cfg.Catalog
}

func (a *app) loadCatalog() (*catalog.Catalog, error) {
	path := a.catalogSource()
	if path == "" {
		return catalog.Default()
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// --- Router wiring ---

func (a *app) primarySettings() primary.Settings {
	p := a.cfg.Primary
	return primary.Settings{
		Provider:      p.Provider,
		Model:         p.Model,
		APIKey:        p.APIKey,
		BaseURL:       p.BaseURL,
		RatePerSecond: p.RatePerSecond,
		Burst:         p.Burst,
	}
}

func (a *app) routerOptions() router.Options {
	return router.Options{
		Timeout:       a.cfg.Primary.Timeout.Duration,
		MinConfidence: a.cfg.Primary.MinConfidenceValue(),
	}
}

// newRouter wires the configured primary classifier in front of the fallback.
// offline skips the primary entirely.
func (a *app) newRouter(ctx context.Context, offline bool) (*router.Router, error) {
	cat, err := a.loadCatalog()
	if err != nil {
		return nil, err
	}

	var p primary.Classifier
	if !offline {
		p, err = primary.New(ctx, a.primarySettings(), cat, a.logger)
		if err != nil {
			return nil, fmt.Errorf("primary classifier: %w", err)
		}
	}

	return router.New(cat, p, a.routerOptions(), a.logger)
}
