package model

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by generators that cannot serve an operation,
// e.g. image generation on a text-only backend.
var ErrUnsupported = errors.New("operation not supported by provider")

// Generator abstracts the remote inference API.
//
// This interface is defined in the model package (not provider) so that the
// provider implementations and the generation orchestrator can both depend on
// it without importing each other.
type Generator interface {
	// CompleteText sends the full turn list and returns the completion.
	CompleteText(ctx context.Context, model string, turns []ChatTurn) (*TextCompletion, error)

	// GenerateImage runs a synchronous text-to-image request.
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error)

	// SubmitVideoJob starts an asynchronous video job.
	SubmitVideoJob(ctx context.Context, req VideoRequest) (*VideoSubmission, error)

	// PollVideoJob queries the status of a submitted video job.
	PollVideoJob(ctx context.Context, requestID string) (*VideoStatus, error)
}

// TextCompletion is the subset of a chat completion response the client reads.
type TextCompletion struct {
	Choices []TextChoice `json:"choices"`
}

type TextChoice struct {
	Message ChatTurn `json:"message"`
}

// FirstContent returns the content of the first choice, or "" when empty.
func (c *TextCompletion) FirstContent() string {
	if c == nil || len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Message.Content
}

type ImageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"image_size,omitempty"`
}

type ImageResult struct {
	Data []ImageData `json:"data"`
}

type ImageData struct {
	URL string `json:"url"`
}

// FirstURL returns the first non-blank image URL, or "".
func (r *ImageResult) FirstURL() string {
	if r == nil {
		return ""
	}
	for _, d := range r.Data {
		if d.URL != "" {
			return d.URL
		}
	}
	return ""
}

// VideoRequest is the body of a video submission. Image is a data URI when
// the request is conditioned on a reference image.
type VideoRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	ImageSize      string `json:"image_size"`
	Image          string `json:"image,omitempty"`
	Seed           int    `json:"seed,omitempty"`
}

type VideoSubmission struct {
	RequestID string `json:"requestId"`
}

// VideoStatus is one status report of a video job.
type VideoStatus struct {
	Status  string        `json:"status"`
	Reason  string        `json:"reason,omitempty"`
	Results *VideoResults `json:"results,omitempty"`
}

type VideoResults struct {
	Videos []VideoData `json:"videos"`
	Seed   int         `json:"seed,omitempty"`
}

type VideoData struct {
	URL string `json:"url"`
}

// FirstURL returns the first non-blank video URL, or "".
func (s *VideoStatus) FirstURL() string {
	if s == nil || s.Results == nil {
		return ""
	}
	for _, v := range s.Results.Videos {
		if v.URL != "" {
			return v.URL
		}
	}
	return ""
}
