package testutil

import (
	"fmt"
	"time"

	"genchat/model"
)

// TextReply returns a completion with a single assistant choice.
func TextReply(content string) *model.TextCompletion {
	return &model.TextCompletion{Choices: []model.TextChoice{{
		Message: model.ChatTurn{Role: model.RoleAssistant, Content: content},
	}}}
}

// VideoRunning returns an in-progress status report with the given phase.
func VideoRunning(phase string) *model.VideoStatus {
	return &model.VideoStatus{Status: phase}
}

// VideoSucceeded returns a succeeded status report carrying url.
func VideoSucceeded(url string) *model.VideoStatus {
	return &model.VideoStatus{
		Status:  "Succeed",
		Results: &model.VideoResults{Videos: []model.VideoData{{URL: url}}, Seed: 42},
	}
}

// VideoFailed returns a failed status report with a remote reason.
func VideoFailed(reason string) *model.VideoStatus {
	return &model.VideoStatus{Status: "Failed", Reason: reason}
}

// Conversation returns n alternating succeeded messages in session, one
// second apart starting at base.
func Conversation(session string, n int, base time.Time) []model.Message {
	msgs := make([]model.Message, n)
	for i := range n {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		msgs[i] = model.Message{
			ID:        fmt.Sprintf("m%02d", i),
			SessionID: session,
			Role:      role,
			Kind:      model.KindText,
			Content:   fmt.Sprintf("message %d", i),
			Status:    model.StatusSucceeded,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
	}
	return msgs
}
