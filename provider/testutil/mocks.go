package testutil

import (
	"context"
	"errors"
	"sync"

	"genchat/model"
)

// MockGenerator implements model.Generator for testing.
//
// Each operation delegates to its Func field; NewMockGenerator installs
// defaults that succeed. Calls are counted and the last requests recorded.
type MockGenerator struct {
	CompleteTextFunc   func(ctx context.Context, modelName string, turns []model.ChatTurn) (*model.TextCompletion, error)
	GenerateImageFunc  func(ctx context.Context, req model.ImageRequest) (*model.ImageResult, error)
	SubmitVideoJobFunc func(ctx context.Context, req model.VideoRequest) (*model.VideoSubmission, error)
	PollVideoJobFunc   func(ctx context.Context, requestID string) (*model.VideoStatus, error)

	mu          sync.Mutex
	textCalls   int
	imageCalls  int
	submitCalls int
	pollCalls   int

	LastTurns        []model.ChatTurn
	LastImageRequest model.ImageRequest
	LastVideoRequest model.VideoRequest
}

// NewMockGenerator creates a mock generator with default implementations
func NewMockGenerator() *MockGenerator {
	m := &MockGenerator{}
	m.CompleteTextFunc = func(context.Context, string, []model.ChatTurn) (*model.TextCompletion, error) {
		return TextReply("Mock response"), nil
	}
	m.GenerateImageFunc = func(context.Context, model.ImageRequest) (*model.ImageResult, error) {
		return &model.ImageResult{Data: []model.ImageData{{URL: "https://example.com/image.png"}}}, nil
	}
	m.SubmitVideoJobFunc = func(context.Context, model.VideoRequest) (*model.VideoSubmission, error) {
		return &model.VideoSubmission{RequestID: "r1"}, nil
	}
	m.PollVideoJobFunc = func(context.Context, string) (*model.VideoStatus, error) {
		return VideoSucceeded("https://example.com/video.mp4"), nil
	}
	return m
}

func (m *MockGenerator) CompleteText(ctx context.Context, modelName string, turns []model.ChatTurn) (*model.TextCompletion, error) {
	m.mu.Lock()
	m.textCalls++
	m.LastTurns = append([]model.ChatTurn(nil), turns...)
	m.mu.Unlock()
	return m.CompleteTextFunc(ctx, modelName, turns)
}

func (m *MockGenerator) GenerateImage(ctx context.Context, req model.ImageRequest) (*model.ImageResult, error) {
	m.mu.Lock()
	m.imageCalls++
	m.LastImageRequest = req
	m.mu.Unlock()
	return m.GenerateImageFunc(ctx, req)
}

func (m *MockGenerator) SubmitVideoJob(ctx context.Context, req model.VideoRequest) (*model.VideoSubmission, error) {
	m.mu.Lock()
	m.submitCalls++
	m.LastVideoRequest = req
	m.mu.Unlock()
	return m.SubmitVideoJobFunc(ctx, req)
}

func (m *MockGenerator) PollVideoJob(ctx context.Context, requestID string) (*model.VideoStatus, error) {
	m.mu.Lock()
	m.pollCalls++
	m.mu.Unlock()
	return m.PollVideoJobFunc(ctx, requestID)
}

// Calls returns the number of calls per operation: text, image, submit, poll.
func (m *MockGenerator) Calls() (text, image, submit, poll int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.textCalls, m.imageCalls, m.submitCalls, m.pollCalls
}

// PollCalls returns the number of PollVideoJob calls.
func (m *MockGenerator) PollCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pollCalls
}

// PollStep is one scripted response of PollVideoJob.
type PollStep struct {
	Status *model.VideoStatus
	Err    error
}

// ScriptPolls makes PollVideoJob return steps in order. Once the script is
// exhausted the last step repeats.
func (m *MockGenerator) ScriptPolls(steps ...PollStep) {
	var (
		mu sync.Mutex
		i  int
	)
	m.PollVideoJobFunc = func(context.Context, string) (*model.VideoStatus, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(steps) == 0 {
			return nil, errors.New("no scripted poll steps")
		}
		step := steps[min(i, len(steps)-1)]
		i++
		return step.Status, step.Err
	}
}
