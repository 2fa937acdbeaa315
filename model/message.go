package model

import (
	"strings"
	"time"
)

// Role identifies who authored a message. System messages are never rendered.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Kind is the payload type of a message.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// ParseKind maps a user-supplied mode name to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindText:
		return KindText, true
	case KindImage:
		return KindImage, true
	case KindVideo:
		return KindVideo, true
	}
	return "", false
}

// Status is the lifecycle state of a message.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Message is one persisted entry of a session log.
//
// Content holds literal text for text messages and a local URI or remote URL
// for media. While Status is pending, Content is placeholder text.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Kind      Kind      `json:"kind"`
	Content   string    `json:"content"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	// Prompt is the user prompt an assistant record answers. Retry reads it.
	Prompt string `json:"prompt,omitempty"`
	// Reference is the local image a video request was conditioned on.
	Reference string `json:"reference,omitempty"`
}

// IsTerminal reports whether the message has left the pending state.
func (m Message) IsTerminal() bool {
	return m.Status == StatusSucceeded || m.Status == StatusFailed
}

// IsStale reports whether a pending message is older than horizon and can be
// shown as failed by observers. Non-pending messages are never stale.
func IsStale(m Message, now time.Time, horizon time.Duration) bool {
	if m.Status != StatusPending || horizon <= 0 {
		return false
	}
	return now.Sub(m.CreatedAt) > horizon
}

// ChatTurn is a role/content pair sent to a text model.
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session is a named conversation. Messages are keyed by its ID.
type Session struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	LastMessage string    `json:"last_message,omitempty"`
}
