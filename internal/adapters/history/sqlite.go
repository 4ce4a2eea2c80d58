package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/0xcro3dile/intentbot-go/internal/domain/entities"
)

// SQLiteStore implements ports.HistoryStore on a SQLite table.
// It is for collaborators that keep history outside the process; turns are
// only ever inserted, and insertion order is the row id order.
type SQLiteStore struct {
	mu  sync.RWMutex
	db  *sql.DB
	dsn string
}

// NewSQLiteStore opens (or creates) the history database at dsn.
// A plain file path gets its parent directory created; ":memory:" is accepted.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = filepath.Join(".", "data", "history.db")
	}

	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and writes ordered.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{
		db:  db,
		dsn: dsn,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return store, nil
}

// initSchema creates the necessary tables.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chat_turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		user_text TEXT NOT NULL,
		bot_text TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_turns_session ON chat_turns(session_id, id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append inserts turn at the end of the session's log.
func (s *SQLiteStore) Append(ctx context.Context, sessionID string, turn entities.ChatTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_turns (session_id, user_text, bot_text, created_at)
		VALUES (?, ?, ?, ?)
	`, sessionID, turn.UserText, turn.BotText, turn.Timestamp.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting turn: %w", err)
	}
	return nil
}

// List returns the session's turns in the requested order.
func (s *SQLiteStore) List(ctx context.Context, sessionID string, order entities.Order) ([]entities.ChatTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT user_text, bot_text, created_at FROM chat_turns WHERE session_id = ? ORDER BY id ASC`
	if order == entities.ReverseChronological {
		query = `SELECT user_text, bot_text, created_at FROM chat_turns WHERE session_id = ? ORDER BY id DESC`
	}

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	defer rows.Close()

	turns := []entities.ChatTurn{}
	for rows.Next() {
		var turn entities.ChatTurn
		var stamp string
		if err := rows.Scan(&turn.UserText, &turn.BotText, &stamp); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		// RFC 3339 keeps the offset the turn was stamped with.
		turn.Timestamp, err = time.Parse(time.RFC3339Nano, stamp)
		if err != nil {
			return nil, fmt.Errorf("parsing turn time %q: %w", stamp, err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading turns: %w", err)
	}
	return turns, nil
}

// Sessions returns the ids of sessions with at least one turn, sorted.
func (s *SQLiteStore) Sessions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT session_id FROM chat_turns ORDER BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// TurnCount returns the number of stored turns across all sessions.
func (s *SQLiteStore) TurnCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chat_turns").Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
