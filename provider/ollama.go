package provider

import (
	"context"
	"fmt"
	"net/http"

	"genchat/model"
	"genchat/ollama"
)

// OllamaProvider wraps ollama.Client to serve text completions from a local
// Ollama server. Image and video generation are not available.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama provider instance.
// Returns an error if the baseURL is invalid.
func NewOllamaProvider(baseURL string, httpClient *http.Client) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}
	return &OllamaProvider{client: client}, nil
}

// CompleteText implements model.Generator.
func (p *OllamaProvider) CompleteText(ctx context.Context, modelName string, turns []model.ChatTurn) (*model.TextCompletion, error) {
	content, err := p.client.Complete(ctx, modelName, ConvertToOllamaMessages(turns))
	if err != nil {
		return nil, fmt.Errorf("Ollama completion failed: %w", err)
	}

	out := &model.TextCompletion{}
	if content != "" {
		out.Choices = []model.TextChoice{{Message: model.ChatTurn{Role: model.RoleAssistant, Content: content}}}
	}
	return out, nil
}

func (p *OllamaProvider) GenerateImage(context.Context, model.ImageRequest) (*model.ImageResult, error) {
	return nil, fmt.Errorf("ollama image generation: %w", model.ErrUnsupported)
}

func (p *OllamaProvider) SubmitVideoJob(context.Context, model.VideoRequest) (*model.VideoSubmission, error) {
	return nil, fmt.Errorf("ollama video generation: %w", model.ErrUnsupported)
}

func (p *OllamaProvider) PollVideoJob(context.Context, string) (*model.VideoStatus, error) {
	return nil, fmt.Errorf("ollama video generation: %w", model.ErrUnsupported)
}

// Ping checks that the Ollama server is reachable.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// ListModels returns the models installed on the Ollama server.
func (p *OllamaProvider) ListModels(ctx context.Context) ([]string, error) {
	return p.client.ListModels(ctx)
}
