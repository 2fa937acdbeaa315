package provider

import (
	"context"
	"fmt"
	"net/http"

	"genchat/model"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIProvider implements model.Generator with the official OpenAI Go SDK.
// Chat and image calls use the typed services; the video job routes, which
// are not part of the OpenAI API, go through the client's raw Post.
type OpenAIProvider struct {
	client  openai.Client
	baseURL string
}

// NewOpenAIProvider creates a provider for an OpenAI-compatible endpoint.
//
// SDK retries are disabled: each operation is a single remote call and the
// video poll loop owns its own error budget.
func NewOpenAIProvider(baseURL, apiKey string, httpClient *http.Client) (*OpenAIProvider, error) {
	if baseURL == "" {
		baseURL = DefaultSiliconFlowURL
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required for %s", baseURL)
	}

	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &OpenAIProvider{
		client:  openai.NewClient(opts...),
		baseURL: baseURL,
	}, nil
}

// CompleteText implements model.Generator.
func (p *OpenAIProvider) CompleteText(ctx context.Context, modelName string, turns []model.ChatTurn) (*model.TextCompletion, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(modelName),
		Messages: ConvertToOpenAIMessages(turns),
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	out := &model.TextCompletion{Choices: make([]model.TextChoice, 0, len(resp.Choices))}
	for _, c := range resp.Choices {
		out.Choices = append(out.Choices, model.TextChoice{
			Message: model.ChatTurn{Role: model.RoleAssistant, Content: c.Message.Content},
		})
	}
	return out, nil
}

// GenerateImage implements model.Generator. The size is sent both as the
// OpenAI "size" field and as "image_size", which SiliconFlow reads.
func (p *OpenAIProvider) GenerateImage(ctx context.Context, req model.ImageRequest) (*model.ImageResult, error) {
	params := openai.ImageGenerateParams{
		Prompt: req.Prompt,
		Model:  openai.ImageModel(req.Model),
		N:      openai.Int(1),
	}
	var opts []option.RequestOption
	if req.Size != "" {
		params.Size = openai.ImageGenerateParamsSize(req.Size)
		opts = append(opts, option.WithJSONSet("image_size", req.Size))
	}

	resp, err := p.client.Images.Generate(ctx, params, opts...)
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	out := &model.ImageResult{Data: make([]model.ImageData, 0, len(resp.Data))}
	for _, d := range resp.Data {
		out.Data = append(out.Data, model.ImageData{URL: d.URL})
	}
	return out, nil
}

// SubmitVideoJob implements model.Generator (POST video/submit).
func (p *OpenAIProvider) SubmitVideoJob(ctx context.Context, req model.VideoRequest) (*model.VideoSubmission, error) {
	var res model.VideoSubmission
	if err := p.client.Post(ctx, "video/submit", req, &res); err != nil {
		return nil, fmt.Errorf("video submission failed: %w", err)
	}
	return &res, nil
}

type videoStatusRequest struct {
	RequestID string `json:"requestId"`
}

// PollVideoJob implements model.Generator (POST video/status).
func (p *OpenAIProvider) PollVideoJob(ctx context.Context, requestID string) (*model.VideoStatus, error) {
	var res model.VideoStatus
	if err := p.client.Post(ctx, "video/status", videoStatusRequest{RequestID: requestID}, &res); err != nil {
		return nil, fmt.Errorf("video status check failed: %w", err)
	}
	return &res, nil
}

// BaseURL returns the endpoint this provider talks to.
func (p *OpenAIProvider) BaseURL() string {
	return p.baseURL
}

// Ping checks connectivity and credentials by listing models.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return fmt.Errorf("ping %s failed: %w", p.baseURL, err)
	}
	return nil
}

// ListModels returns the model ids the endpoint advertises.
func (p *OpenAIProvider) ListModels(ctx context.Context) ([]string, error) {
	page, err := p.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}
