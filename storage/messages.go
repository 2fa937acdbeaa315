package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"genchat/model"
)

const messageColumns = `id, session_id, role, kind, content, status, created_at, prompt, reference`

// Append inserts msg or replaces the record with the same id.
func (s *Store) Append(ctx context.Context, msg model.Message) error {
	if msg.ID == "" || msg.SessionID == "" {
		return fmt.Errorf("message id and session id are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (`+messageColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			session_id = excluded.session_id,
			role = excluded.role,
			kind = excluded.kind,
			content = excluded.content,
			status = excluded.status,
			created_at = excluded.created_at,
			prompt = excluded.prompt,
			reference = excluded.reference`,
		msg.ID, msg.SessionID, string(msg.Role), string(msg.Kind), msg.Content,
		string(msg.Status), msg.CreatedAt.UnixNano(), msg.Prompt, msg.Reference,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert message: %w", err)
	}

	s.notify(ctx, msg.SessionID)
	return nil
}

// QueryBySession returns the session log ordered by creation time.
func (s *Store) QueryBySession(ctx context.Context, sessionID string) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE session_id = ?
		ORDER BY created_at ASC, rowid ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return messages, nil
}

// DeleteByID removes one message. Deleting an unknown id is a no-op.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sessionID string
	err := s.db.QueryRowContext(ctx, `SELECT session_id FROM messages WHERE id = ?`, id).Scan(&sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up message: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	s.notify(ctx, sessionID)
	return nil
}

// ClearSession removes every message of a session. It is idempotent.
func (s *Store) ClearSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	s.notify(ctx, sessionID)
	return nil
}

// Subscribe implements model.MessageStore. The first snapshot arrives after
// the next mutation of the session.
func (s *Store) Subscribe(sessionID string) (<-chan []model.Message, func()) {
	return s.hub.subscribe(sessionID)
}

// notify publishes the current log of sessionID. Callers hold s.mu.
func (s *Store) notify(ctx context.Context, sessionID string) {
	if !s.hub.hasSubscribers(sessionID) {
		return
	}
	snapshot, err := s.QueryBySession(context.WithoutCancel(ctx), sessionID)
	if err != nil {
		s.logger.Warn("failed to load snapshot for subscribers", "session", sessionID, "error", err)
		return
	}
	s.hub.publish(sessionID, snapshot)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (model.Message, error) {
	var (
		msg                model.Message
		role, kind, status string
		createdAt          int64
	)
	err := row.Scan(&msg.ID, &msg.SessionID, &role, &kind, &msg.Content, &status, &createdAt, &msg.Prompt, &msg.Reference)
	if err != nil {
		return model.Message{}, fmt.Errorf("failed to scan message: %w", err)
	}
	msg.Role = model.Role(role)
	msg.Kind = model.Kind(kind)
	msg.Status = model.Status(status)
	msg.CreatedAt = time.Unix(0, createdAt)
	return msg, nil
}
