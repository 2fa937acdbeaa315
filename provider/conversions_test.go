package provider

import (
	"testing"

	"genchat/model"

	"github.com/ollama/ollama/api"
)

func TestConvertToOllamaMessages(t *testing.T) {
	tests := []struct {
		name     string
		input    []model.ChatTurn
		expected []api.Message
	}{
		{
			name:     "empty slice",
			input:    []model.ChatTurn{},
			expected: []api.Message{},
		},
		{
			name: "conversation with system turn",
			input: []model.ChatTurn{
				{Role: model.RoleSystem, Content: "be brief"},
				{Role: model.RoleUser, Content: "Hello"},
				{Role: model.RoleAssistant, Content: "Hi there"},
			},
			expected: []api.Message{
				{Role: "system", Content: "be brief"},
				{Role: "user", Content: "Hello"},
				{Role: "assistant", Content: "Hi there"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertToOllamaMessages(tt.input)

			if len(result) != len(tt.expected) {
				t.Fatalf("expected %d messages, got %d", len(tt.expected), len(result))
			}
			for i := range result {
				if result[i].Role != tt.expected[i].Role || result[i].Content != tt.expected[i].Content {
					t.Errorf("message %d: expected %+v, got %+v", i, tt.expected[i], result[i])
				}
			}
		})
	}
}

func TestConvertToOpenAIMessages(t *testing.T) {
	turns := []model.ChatTurn{
		{Role: model.RoleSystem, Content: "sys"},
		{Role: model.RoleUser, Content: "u"},
		{Role: model.RoleAssistant, Content: "a"},
		{Role: model.Role("tool"), Content: "t"},
	}

	result := ConvertToOpenAIMessages(turns)
	if len(result) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(result))
	}
	if result[0].OfSystem == nil {
		t.Error("expected system message first")
	}
	if result[1].OfUser == nil {
		t.Error("expected user message second")
	}
	if result[2].OfAssistant == nil {
		t.Error("expected assistant message third")
	}
	if result[3].OfUser == nil {
		t.Error("unknown roles should map to user messages")
	}
}

func TestConvertToAnthropicMessages(t *testing.T) {
	msgs, system := convertToAnthropicMessages([]model.ChatTurn{
		{Role: model.RoleSystem, Content: "sys"},
		{Role: model.RoleUser, Content: "u"},
		{Role: model.RoleAssistant, Content: "a"},
	})

	if len(system) != 1 || system[0].Text != "sys" {
		t.Errorf("expected one system block, got %+v", system)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Errorf("unexpected roles: %s, %s", msgs[0].Role, msgs[1].Role)
	}
}
