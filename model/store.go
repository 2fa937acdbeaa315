package model

import "context"

// MessageStore is the durable, session-partitioned message log.
//
// Append is an upsert keyed by Message.ID: writing an existing id replaces the
// record. QueryBySession returns messages ordered by CreatedAt ascending.
type MessageStore interface {
	Append(ctx context.Context, msg Message) error
	QueryBySession(ctx context.Context, sessionID string) ([]Message, error)
	DeleteByID(ctx context.Context, id string) error
	ClearSession(ctx context.Context, sessionID string) error

	// Subscribe delivers the full session log after every mutation of that
	// session. The channel holds only the latest snapshot; cancel releases it.
	Subscribe(sessionID string) (<-chan []Message, func())
}
