package provider

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
)

// Pinger is implemented by providers that can check connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ModelLister is implemented by providers that can list their models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// CheckResult is the outcome of Check.
type CheckResult struct {
	Type    ProviderType
	BaseURL string

	// Models is nil when the provider cannot list models.
	Models    []string
	ModelsErr error
}

// HasModel reports whether name was listed by the provider.
func (r *CheckResult) HasModel(name string) bool {
	return slices.Contains(r.Models, name)
}

// Check builds the provider described by cfg and pings it. Listing models is
// best effort: a failure is reported in the result, not as an error.
func Check(ctx context.Context, cfg Config, logger *slog.Logger) (*CheckResult, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	g, err := NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	res := &CheckResult{Type: cfg.Type, BaseURL: orDefault(cfg.BaseURL, defaultURLs[cfg.Type])}

	if p, ok := g.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return res, fmt.Errorf("connection failed: %w", err)
		}
	}
	logger.Debug("provider ping successful", "provider", cfg.Type, "base_url", res.BaseURL)

	if l, ok := g.(ModelLister); ok {
		res.Models, res.ModelsErr = l.ListModels(ctx)
		if res.ModelsErr != nil {
			logger.Warn("failed to list models", "provider", cfg.Type, "error", res.ModelsErr)
		} else {
			logger.Debug("fetched models", "provider", cfg.Type, "count", len(res.Models))
		}
	}
	return res, nil
}
