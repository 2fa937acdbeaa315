package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"genchat/model"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider serves text completions through Anthropic's official SDK.
// Image and video generation are not available.
type AnthropicProvider struct {
	client  *anthropic.Client
	baseURL string
}

// NewAnthropicProvider creates a new Anthropic provider instance.
// Returns an error if the API key is missing.
func NewAnthropicProvider(baseURL, apiKey string, httpClient *http.Client) (*AnthropicProvider, error) {
	if baseURL == "" {
		baseURL = DefaultAnthropicURL
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	client := anthropic.NewClient(opts...)

	return &AnthropicProvider{
		client:  &client,
		baseURL: baseURL,
	}, nil
}

// CompleteText implements model.Generator with a single non-streaming request.
func (p *AnthropicProvider) CompleteText(ctx context.Context, modelName string, turns []model.ChatTurn) (*model.TextCompletion, error) {
	msgs, system := convertToAnthropicMessages(turns)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(modelName),
		Messages:  msgs,
		MaxTokens: 4096, // required by the API
	}
	if len(system) > 0 {
		params.System = system
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("Anthropic completion failed: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}

	out := &model.TextCompletion{}
	if b.Len() > 0 {
		out.Choices = []model.TextChoice{{Message: model.ChatTurn{Role: model.RoleAssistant, Content: b.String()}}}
	}
	return out, nil
}

func (p *AnthropicProvider) GenerateImage(context.Context, model.ImageRequest) (*model.ImageResult, error) {
	return nil, fmt.Errorf("anthropic image generation: %w", model.ErrUnsupported)
}

func (p *AnthropicProvider) SubmitVideoJob(context.Context, model.VideoRequest) (*model.VideoSubmission, error) {
	return nil, fmt.Errorf("anthropic video generation: %w", model.ErrUnsupported)
}

func (p *AnthropicProvider) PollVideoJob(context.Context, string) (*model.VideoStatus, error) {
	return nil, fmt.Errorf("anthropic video generation: %w", model.ErrUnsupported)
}

// Ping makes a minimal request; Anthropic has no health endpoint.
func (p *AnthropicProvider) Ping(ctx context.Context) error {
	_, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.ModelClaude3_5Haiku20241022,
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		return fmt.Errorf("Anthropic ping failed: %w", err)
	}
	return nil
}
