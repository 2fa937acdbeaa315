package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("not found")

// Store is the sqlite-backed message log. It implements model.MessageStore.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	// mu serialises mutation + snapshot publication so subscribers never
	// observe an older snapshot after a newer one.
	mu  sync.Mutex
	hub *hub
}

// Open opens (creating if needed) the database file in dataDir.
func Open(dataDir string, logger *slog.Logger) (*Store, error) {
	return OpenPath(filepath.Join(dataDir, "genchat.db"), logger)
}

// OpenPath opens the database at an explicit path.
func OpenPath(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// single writer: sqlite locks the file anyway, this avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, logger: logger, hub: newHub()}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT 'New Session',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		last_message TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		kind TEXT NOT NULL,
		content TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	if err := s.migrateSchema(); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}

	return nil
}

// migrateSchema adds the retry metadata columns to databases created
// before they existed.
func (s *Store) migrateSchema() error {
	for _, col := range []string{"prompt", "reference"} {
		exists, err := s.columnExists("messages", col)
		if err != nil {
			return fmt.Errorf("failed to check for %s column: %w", col, err)
		}
		if exists {
			continue
		}
		stmt := fmt.Sprintf(`ALTER TABLE messages ADD COLUMN %s TEXT NOT NULL DEFAULT ''`, col)
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to add %s column: %w", col, err)
		}
		s.logger.Debug("migrated messages table", "column", col)
	}
	return nil
}

func (s *Store) columnExists(table, column string) (bool, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notnull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}

	return false, rows.Err()
}

// Close closes subscriber channels and the database.
func (s *Store) Close() error {
	s.hub.closeAll()
	return s.db.Close()
}
