package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"genchat/model"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
)

const (
	// DefaultSessionTitle is the title of a session before its first prompt.
	DefaultSessionTitle = "New Session"

	sessionTitleWidth = 20
	previewWidth      = 100
)

// SessionStorage manages session metadata in the same database as the
// message log, plus the current-session pointer file in the data directory.
type SessionStorage struct {
	store   *Store
	dataDir string
}

// NewSessionStorage creates a session storage on top of an open Store.
func NewSessionStorage(store *Store, dataDir string) *SessionStorage {
	return &SessionStorage{store: store, dataDir: dataDir}
}

// Create inserts a new, empty session.
func (ss *SessionStorage) Create(ctx context.Context) (*model.Session, error) {
	now := time.Now()
	session := &model.Session{
		ID:        uuid.New().String(),
		Title:     DefaultSessionTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := ss.store.db.ExecContext(ctx, `
		INSERT INTO sessions (id, title, created_at, updated_at, last_message)
		VALUES (?, ?, ?, ?, '')`,
		session.ID, session.Title, now.UnixNano(), now.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// Get loads one session. Returns ErrNotFound for unknown ids.
func (ss *SessionStorage) Get(ctx context.Context, id string) (*model.Session, error) {
	row := ss.store.db.QueryRowContext(ctx, `
		SELECT id, title, created_at, updated_at, last_message
		FROM sessions WHERE id = ?`, id)

	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// List returns all sessions, most recently active first.
func (ss *SessionStorage) List(ctx context.Context) ([]model.Session, error) {
	rows, err := ss.store.db.QueryContext(ctx, `
		SELECT id, title, created_at, updated_at, last_message
		FROM sessions
		ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []model.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// Rename updates the title of a session.
func (ss *SessionStorage) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("session title cannot be empty")
	}

	res, err := ss.store.db.ExecContext(ctx, `UPDATE sessions SET title = ? WHERE id = ?`, title, id)
	if err != nil {
		return fmt.Errorf("failed to rename session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a session and all of its messages.
func (ss *SessionStorage) Delete(ctx context.Context, id string) error {
	ss.store.mu.Lock()
	defer ss.store.mu.Unlock()

	tx, err := ss.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session delete: %w", err)
	}

	ss.store.notify(ctx, id)
	return nil
}

// Touch records activity on a session: it bumps updated_at, stores a preview
// of the latest prompt and auto-titles a session still carrying the default
// title. Unknown sessions are created.
func (ss *SessionStorage) Touch(ctx context.Context, id, lastMessage string) error {
	now := time.Now().UnixNano()
	preview := runewidth.Truncate(flattenLine(lastMessage), previewWidth, "...")
	title := GenerateSessionName(lastMessage)

	_, err := ss.store.db.ExecContext(ctx, `
		INSERT INTO sessions (id, title, created_at, updated_at, last_message)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at = excluded.updated_at,
			last_message = excluded.last_message,
			title = CASE WHEN sessions.title = ? THEN excluded.title ELSE sessions.title END`,
		id, title, now, now, preview, DefaultSessionTitle)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

// SaveCurrentSessionID saves the ID of the current session
func (ss *SessionStorage) SaveCurrentSessionID(id string) error {
	path := filepath.Join(ss.dataDir, "current_session.id")
	return os.WriteFile(path, []byte(id), 0600)
}

// LoadCurrentSessionID loads the ID of the last active session
func (ss *SessionStorage) LoadCurrentSessionID() (string, error) {
	path := filepath.Join(ss.dataDir, "current_session.id")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Resume returns the last active session, or creates a fresh one when the
// pointer is missing or dangling.
func (ss *SessionStorage) Resume(ctx context.Context) (*model.Session, error) {
	if id, err := ss.LoadCurrentSessionID(); err == nil && id != "" {
		session, err := ss.Get(ctx, id)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	session, err := ss.Create(ctx)
	if err != nil {
		return nil, err
	}
	if err := ss.SaveCurrentSessionID(session.ID); err != nil {
		return nil, fmt.Errorf("failed to save current session: %w", err)
	}
	return session, nil
}

// SessionExport is the JSON document written by ExportToJSON.
type SessionExport struct {
	Session  model.Session   `json:"session"`
	Messages []model.Message `json:"messages"`
}

// ExportToJSON exports a session and its messages to a JSON file.
func (ss *SessionStorage) ExportToJSON(ctx context.Context, id string, exportPath string) error {
	session, err := ss.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	messages, err := ss.store.QueryBySession(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load messages: %w", err)
	}

	data, err := json.MarshalIndent(SessionExport{Session: *session, Messages: messages}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// 0700 dir, 0600 file: exports contain conversation history
	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(exportPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// SanitizeFilename removes or replaces characters that are invalid in filenames
func SanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-", "\"", "-",
		"<", "-", ">", "-", "|", "-", " ", "-", "\n", "-", "\r", "-",
	)
	name = replacer.Replace(name)
	name = strings.Trim(name, "-.")

	if runewidth.StringWidth(name) > 50 {
		name = runewidth.Truncate(name, 50, "")
	}

	if name == "" {
		name = "session"
	}
	return name
}

// GenerateExportPath generates a default export path for a session
func GenerateExportPath(sessionTitle string) string {
	homeDir := os.Getenv("HOME")
	if homeDir == "" {
		homeDir = os.Getenv("USERPROFILE")
	}

	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("genchat-session-%s-%s.json", SanitizeFilename(sessionTitle), timestamp)

	return filepath.Join(homeDir, "Downloads", filename)
}

// GenerateSessionName derives a title from the first prompt of a session:
// the first 20 columns, with "..." appended when it was cut.
func GenerateSessionName(firstMessage string) string {
	name := flattenLine(firstMessage)
	if name == "" {
		return DefaultSessionTitle
	}

	if runewidth.StringWidth(name) > sessionTitleWidth {
		name = runewidth.Truncate(name, sessionTitleWidth, "") + "..."
	}
	return name
}

func flattenLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

func scanSession(row rowScanner) (model.Session, error) {
	var (
		session              model.Session
		createdAt, updatedAt int64
	)
	if err := row.Scan(&session.ID, &session.Title, &createdAt, &updatedAt, &session.LastMessage); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Session{}, err
		}
		return model.Session{}, fmt.Errorf("failed to scan session: %w", err)
	}
	session.CreatedAt = time.Unix(0, createdAt)
	session.UpdatedAt = time.Unix(0, updatedAt)
	return session, nil
}
