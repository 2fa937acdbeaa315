package provider

import (
	"testing"

	"genchat/model"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		expectType  string
	}{
		{
			name:       "siliconflow with defaults",
			config:     Config{Type: ProviderTypeSiliconFlow, APIKey: "test-key"},
			expectType: "*provider.OpenAIProvider",
		},
		{
			name:       "openai provider",
			config:     Config{Type: ProviderTypeOpenAI, BaseURL: "https://api.openai.com/v1", APIKey: "test-key"},
			expectType: "*provider.OpenAIProvider",
		},
		{
			name:       "openrouter provider",
			config:     Config{Type: ProviderTypeOpenRouter, APIKey: "test-key"},
			expectType: "*provider.OpenAIProvider",
		},
		{
			name:       "ollama provider with defaults",
			config:     Config{Type: ProviderTypeOllama},
			expectType: "*provider.OllamaProvider",
		},
		{
			name:       "anthropic provider",
			config:     Config{Type: ProviderTypeAnthropic, APIKey: "test-key"},
			expectType: "*provider.AnthropicProvider",
		},
		{
			name:        "missing api key",
			config:      Config{Type: ProviderTypeSiliconFlow},
			expectError: true,
		},
		{
			name:        "invalid ollama url",
			config:      Config{Type: ProviderTypeOllama, BaseURL: "::not a url"},
			expectError: true,
		},
		{
			name:        "unknown provider type",
			config:      Config{Type: ProviderType("unknown"), APIKey: "k"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewProvider(tt.config)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if g != nil {
					t.Errorf("expected nil generator on error, got %T", g)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := typeName(g); got != tt.expectType {
				t.Errorf("expected %s, got %s", tt.expectType, got)
			}
		})
	}
}

func TestNewProviderAppliesDefaultURL(t *testing.T) {
	g, err := NewProvider(Config{Type: ProviderTypeSiliconFlow, APIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}
	if got := g.(*OpenAIProvider).BaseURL(); got != DefaultSiliconFlowURL {
		t.Errorf("expected %s, got %s", DefaultSiliconFlowURL, got)
	}
}

func TestMapProviderIDToType(t *testing.T) {
	tests := []struct {
		id       string
		expected ProviderType
	}{
		{"", ProviderTypeSiliconFlow},
		{"siliconflow", ProviderTypeSiliconFlow},
		{"SiliconFlow", ProviderTypeSiliconFlow},
		{"openai", ProviderTypeOpenAI},
		{"openrouter", ProviderTypeOpenRouter},
		{"ollama", ProviderTypeOllama},
		{"anthropic", ProviderTypeAnthropic},
		{"mystery", ProviderType("mystery")},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := MapProviderIDToType(tt.id); got != tt.expected {
				t.Errorf("MapProviderIDToType(%q) = %q, want %q", tt.id, got, tt.expected)
			}
		})
	}
}

// compile-time interface checks
var (
	_ model.Generator = (*OpenAIProvider)(nil)
	_ model.Generator = (*OllamaProvider)(nil)
	_ model.Generator = (*AnthropicProvider)(nil)
)

func typeName(v any) string {
	switch v.(type) {
	case *OpenAIProvider:
		return "*provider.OpenAIProvider"
	case *OllamaProvider:
		return "*provider.OllamaProvider"
	case *AnthropicProvider:
		return "*provider.AnthropicProvider"
	default:
		return "unknown"
	}
}
