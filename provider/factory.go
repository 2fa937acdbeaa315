package provider

import (
	"fmt"
	"strings"

	"genchat/model"
)

// NewProvider creates a generator based on configuration.
//
// This is the centralized factory function for creating any provider type.
// It dispatches on Config.Type; an empty BaseURL selects the provider's
// default endpoint.
//
// Returns an error if the provider type is unknown or the provider-specific
// constructor fails (e.g., missing API key, invalid URL).
func NewProvider(cfg Config) (model.Generator, error) {
	// each branch returns an untyped nil on error so callers can compare
	// the interface against nil
	switch cfg.Type {
	case ProviderTypeSiliconFlow, ProviderTypeOpenAI, ProviderTypeOpenRouter:
		p, err := NewOpenAIProvider(orDefault(cfg.BaseURL, defaultURLs[cfg.Type]), cfg.APIKey, cfg.HTTPClient)
		if err != nil {
			return nil, err
		}
		return p, nil
	case ProviderTypeOllama:
		p, err := NewOllamaProvider(orDefault(cfg.BaseURL, DefaultOllamaURL), cfg.HTTPClient)
		if err != nil {
			return nil, err
		}
		return p, nil
	case ProviderTypeAnthropic:
		p, err := NewAnthropicProvider(orDefault(cfg.BaseURL, DefaultAnthropicURL), cfg.APIKey, cfg.HTTPClient)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

var defaultURLs = map[ProviderType]string{
	ProviderTypeSiliconFlow: DefaultSiliconFlowURL,
	ProviderTypeOpenAI:      DefaultOpenAIURL,
	ProviderTypeOpenRouter:  DefaultOpenRouterURL,
	ProviderTypeOllama:      DefaultOllamaURL,
	ProviderTypeAnthropic:   DefaultAnthropicURL,
}

// DefaultBaseURL returns the endpoint used when none is configured.
func DefaultBaseURL(t ProviderType) string {
	return defaultURLs[t]
}

// IsKnownType reports whether NewProvider can build t.
func IsKnownType(t ProviderType) bool {
	_, ok := defaultURLs[t]
	return ok
}

// MapProviderIDToType converts a config provider ID to a ProviderType.
// IDs are case-insensitive. Unknown IDs are passed through unchanged and
// rejected by NewProvider.
func MapProviderIDToType(id string) ProviderType {
	switch t := ProviderType(strings.ToLower(strings.TrimSpace(id))); t {
	case "", ProviderTypeSiliconFlow:
		return ProviderTypeSiliconFlow
	case ProviderTypeOpenAI, ProviderTypeOpenRouter, ProviderTypeOllama, ProviderTypeAnthropic:
		return t
	default:
		return ProviderType(id)
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
