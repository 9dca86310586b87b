// Package chat persists conversations and messages behind the REST
// and websocket handlers. Storage is a single sqlite database so chat
// history survives restarts.
package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/nvthuy/salon-support/internal/model/chat"
)

var (
	ErrGuestRequired = errors.New("guest name and phone are required")
	ErrChatNotFound  = errors.New("chat not found")
)

// Service encapsulates conversation state management.
type Service struct {
	db *sql.DB
}

// NewService opens (and if needed creates) the chat database.
func NewService(path string) (*Service, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open chat database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Service{db: db}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS chats (
		id TEXT PRIMARY KEY,
		guest_name TEXT NOT NULL,
		guest_phone TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chat_messages (
		id TEXT PRIMARY KEY,
		chat_id TEXT NOT NULL,
		content TEXT NOT NULL,
		sender_role TEXT NOT NULL,
		correlation_id TEXT,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (chat_id) REFERENCES chats(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_messages_chat ON chat_messages(chat_id);`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Service) Close() error {
	return s.db.Close()
}

// CreateChat provisions a conversation for a guest. Guest identity is
// fixed at creation and never updated afterwards.
func (s *Service) CreateChat(ctx context.Context, guestName, guestPhone string) (chat.Session, error) {
	guestName = strings.TrimSpace(guestName)
	guestPhone = strings.TrimSpace(guestPhone)
	if guestName == "" || guestPhone == "" {
		return chat.Session{}, ErrGuestRequired
	}

	session := chat.Session{
		ID:         uuid.NewString(),
		GuestName:  guestName,
		GuestPhone: guestPhone,
		CreatedAt:  time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chats (id, guest_name, guest_phone, created_at) VALUES (?, ?, ?, ?)`,
		session.ID, session.GuestName, session.GuestPhone, session.CreatedAt)
	if err != nil {
		return chat.Session{}, fmt.Errorf("insert chat: %w", err)
	}
	return session, nil
}

// Chat retrieves a conversation by identifier.
func (s *Service) Chat(ctx context.Context, chatID string) (chat.Session, error) {
	var session chat.Session
	err := s.db.QueryRowContext(ctx,
		`SELECT id, guest_name, guest_phone, created_at FROM chats WHERE id = ?`, chatID).
		Scan(&session.ID, &session.GuestName, &session.GuestPhone, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return chat.Session{}, ErrChatNotFound
	}
	if err != nil {
		return chat.Session{}, fmt.Errorf("select chat: %w", err)
	}
	return session, nil
}

// AppendMessage stores one message at the end of a chat's history.
func (s *Service) AppendMessage(ctx context.Context, message chat.Message) (chat.Message, error) {
	if message.ChatID == "" {
		return chat.Message{}, ErrChatNotFound
	}
	if _, err := s.Chat(ctx, message.ChatID); err != nil {
		return chat.Message{}, err
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, chat_id, content, sender_role, correlation_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		message.ID, message.ChatID, message.Content, message.SenderRole, message.CorrelationID, message.CreatedAt)
	if err != nil {
		return chat.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return message, nil
}

// Messages returns a chat's stored history in append order.
func (s *Service) Messages(ctx context.Context, chatID string) ([]chat.Message, error) {
	if _, err := s.Chat(ctx, chatID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_id, content, sender_role, COALESCE(correlation_id, ''), created_at
		 FROM chat_messages WHERE chat_id = ? ORDER BY rowid`, chatID)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	defer rows.Close()

	messages := make([]chat.Message, 0, 16)
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Content, &m.SenderRole, &m.CorrelationID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// PendingChats lists every conversation with its latest message as a
// preview, newest chat first. This backs the admin notification feed.
func (s *Service) PendingChats(ctx context.Context) ([]chat.RequestSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.guest_name,
			(SELECT m.content FROM chat_messages m
			 WHERE m.chat_id = c.id ORDER BY m.rowid DESC LIMIT 1)
		 FROM chats c ORDER BY c.created_at DESC, c.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("select pending chats: %w", err)
	}
	defer rows.Close()

	summaries := make([]chat.RequestSummary, 0, 8)
	for rows.Next() {
		var (
			summary   chat.RequestSummary
			guestName sql.NullString
			preview   sql.NullString
		)
		if err := rows.Scan(&summary.ChatID, &guestName, &preview); err != nil {
			return nil, fmt.Errorf("scan pending chat: %w", err)
		}
		if guestName.Valid && guestName.String != "" {
			name := guestName.String
			summary.GuestName = &name
		}
		if preview.Valid {
			text := preview.String
			summary.LastMessage = &text
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}
