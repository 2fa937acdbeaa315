package provider

import (
	"genchat/model"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"
)

// ConvertToOpenAIMessages converts chat turns to OpenAI message params.
// Unknown roles are sent as user messages.
func ConvertToOpenAIMessages(turns []model.ChatTurn) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(turns))
	for i, t := range turns {
		switch t.Role {
		case model.RoleSystem:
			result[i] = openai.SystemMessage(t.Content)
		case model.RoleAssistant:
			result[i] = openai.AssistantMessage(t.Content)
		default:
			result[i] = openai.UserMessage(t.Content)
		}
	}
	return result
}

// ConvertToOllamaMessages converts chat turns to Ollama api.Message.
// Both sides carry role and content only, so this is a field mapping.
func ConvertToOllamaMessages(turns []model.ChatTurn) []api.Message {
	result := make([]api.Message, len(turns))
	for i, t := range turns {
		result[i] = api.Message{
			Role:    string(t.Role),
			Content: t.Content,
		}
	}
	return result
}

// convertToAnthropicMessages splits system turns into system blocks, since
// Anthropic takes them as a separate parameter.
func convertToAnthropicMessages(turns []model.ChatTurn) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var systemBlocks []anthropic.TextBlockParam
	msgs := make([]anthropic.MessageParam, 0, len(turns))

	for _, t := range turns {
		switch t.Role {
		case model.RoleSystem:
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: t.Content})
		case model.RoleAssistant:
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Content)))
		default:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content)))
		}
	}

	return msgs, systemBlocks
}
