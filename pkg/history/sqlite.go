package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/parleylabs/parley/pkg/chat"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	metadata   TEXT NOT NULL DEFAULT '{}',
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, id);
`

// SQLiteStore persists transcripts in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at path. Use
// ":memory:" for an in-memory store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// SaveTurn stores the user prompt and assistant reply in one transaction,
// so a turn is never half-persisted.
func (s *SQLiteStore) SaveTurn(ctx context.Context, sessionID string, user, assistant chat.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, msg := range []chat.Message{user, assistant} {
		if err := insertMessage(ctx, tx, sessionID, msg); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func insertMessage(ctx context.Context, tx *sql.Tx, sessionID string, msg chat.Message) error {
	metadata := "{}"
	if msg.Metadata != nil {
		encoded, err := json.Marshal(msg.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		metadata = string(encoded)
	}

	createdAt := msg.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content, metadata, created_at) VALUES (?, ?, ?, ?, ?)`,
		sessionID, string(msg.Role), msg.Content, metadata, createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// Messages returns every stored message for a session in insertion order.
func (s *SQLiteStore) Messages(ctx context.Context, sessionID string) ([]chat.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, metadata, created_at FROM messages WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := []chat.Message{}
	for rows.Next() {
		var (
			role, content, metadata string
			createdAt               time.Time
		)
		if err := rows.Scan(&role, &content, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}

		msg := chat.Message{
			Role:      chat.Role(role),
			Content:   content,
			Timestamp: createdAt,
		}
		if metadata != "" && metadata != "{}" {
			if err := json.Unmarshal([]byte(metadata), &msg.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata: %w", err)
			}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}

// Sessions returns the IDs of every session with stored messages.
func (s *SQLiteStore) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT session_id FROM messages ORDER BY session_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

// Clear removes all stored messages for a session.
func (s *SQLiteStore) Clear(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
