// Package provider implements model.Generator against concrete inference
// backends.
//
// The full generator (text, image and video) is served by any
// OpenAI-compatible endpoint that also exposes the video job routes, which
// is what SiliconFlow does. OpenAI and OpenRouter use the same client and
// fail the video routes remotely. Ollama and Anthropic are text-only: their
// image and video methods return model.ErrUnsupported.
//
// # Architecture
//
//   - model.Generator defines the contract (interface)
//   - provider.OpenAIProvider for SiliconFlow, OpenAI and OpenRouter
//   - provider.AnthropicProvider for Anthropic (text only)
//   - provider.OllamaProvider for a local Ollama server (text only)
//   - provider.NewProvider() factory creates providers from config
//
// # Usage
//
//	g, err := provider.NewProvider(provider.Config{
//	    Type:   provider.ProviderTypeSiliconFlow,
//	    APIKey: "sk-...",
//	})
//	if err != nil {
//	    // handle error
//	}
//	resp, err := g.CompleteText(ctx, "Qwen/Qwen3-8B", turns)
package provider

import "net/http"

// Note: the Generator interface lives in the model package (model/provider.go)
// so the generation package can depend on it without importing providers.

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeSiliconFlow ProviderType = "siliconflow"
	ProviderTypeOpenAI      ProviderType = "openai"
	ProviderTypeOpenRouter  ProviderType = "openrouter"
	ProviderTypeOllama      ProviderType = "ollama"
	ProviderTypeAnthropic   ProviderType = "anthropic"
)

// Default endpoints per provider type.
const (
	DefaultSiliconFlowURL = "https://api.siliconflow.cn/v1"
	DefaultOpenAIURL      = "https://api.openai.com/v1"
	DefaultOpenRouterURL  = "https://openrouter.ai/api/v1"
	DefaultOllamaURL      = "http://localhost:11434"
	DefaultAnthropicURL   = "https://api.anthropic.com"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	APIKey  string // unused for Ollama

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}
