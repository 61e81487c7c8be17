package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of the chat log. It is presentational only.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageLog is an append-only ordered chat history.
type MessageLog interface {
	Append(ctx context.Context, role Role, content string) (ChatMessage, error)
	List(ctx context.Context) ([]ChatMessage, error)
	Reset(ctx context.Context) error
	Close() error
}

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	role       TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
	content    TEXT NOT NULL,
	created_at INTEGER NOT NULL
)`

// SQLiteLog keeps messages in an in-memory SQLite database that lives as
// long as the process.
type SQLiteLog struct {
	conn *sql.DB
	now  func() time.Time
}

func NewSQLiteLog() (*SQLiteLog, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// every connection to :memory: is a separate database
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteLog{conn: conn, now: time.Now}, nil
}

func (l *SQLiteLog) Append(ctx context.Context, role Role, content string) (ChatMessage, error) {
	msg := ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: l.now().UTC(),
	}
	_, err := l.conn.ExecContext(ctx,
		`INSERT INTO messages (id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		msg.ID, string(msg.Role), msg.Content, msg.CreatedAt.UnixNano(),
	)
	if err != nil {
		return ChatMessage{}, fmt.Errorf("append message: %w", err)
	}
	return msg, nil
}

func (l *SQLiteLog) List(ctx context.Context) ([]ChatMessage, error) {
	rows, err := l.conn.QueryContext(ctx,
		`SELECT id, role, content, created_at FROM messages ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	msgs := []ChatMessage{}
	for rows.Next() {
		var (
			m    ChatMessage
			role string
			ts   int64
		)
		if err := rows.Scan(&m.ID, &role, &m.Content, &ts); err != nil {
			return nil, err
		}
		m.Role = Role(role)
		m.CreatedAt = time.Unix(0, ts).UTC()
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (l *SQLiteLog) Reset(ctx context.Context) error {
	_, err := l.conn.ExecContext(ctx, `DELETE FROM messages`)
	return err
}

func (l *SQLiteLog) Close() error {
	return l.conn.Close()
}
