// Package memory persists conversations to the remote relational backend and
// reconciles it with the local thread store. The local store is the
// durability floor; the remote store is a best-effort enhancement.
package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/LionGab/lyla-erl/internal/thread"
)

// Store persists conversations and messages to PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a remote memory store. Returns nil when no database is
// configured; a nil store means the facade runs local-only.
func NewStore(db *sql.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

// ConversationRecord is a conversation row.
type ConversationRecord struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	AgentID      string
	Title        string
	IsActive     bool
	MessageCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DeliverableRecord is a structured artifact generated during a conversation.
type DeliverableRecord struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	UserID         uuid.UUID
	Type           string
	Title          string
	Description    string
	Data           json.RawMessage
	CreatedAt      time.Time
}

// EnsureUser upserts the user row by email and returns its id.
func (s *Store) EnsureUser(ctx context.Context, email string) (uuid.UUID, error) {
	if s == nil || s.db == nil {
		return uuid.Nil, nil
	}
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (email) DO UPDATE SET updated_at = EXCLUDED.updated_at
		RETURNING id`,
		uuid.New(), email, time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("memory: ensure user: %w", err)
	}
	return id, nil
}

// CreateConversation creates a conversation row for the user and agent.
func (s *Store) CreateConversation(ctx context.Context, email, agentID, title string) (uuid.UUID, error) {
	userID, err := s.EnsureUser(ctx, email)
	if err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, user_id, agent_id, title, is_active, message_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, 0, $5, $5)`,
		id, userID, agentID, title, now,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("memory: create conversation: %w", err)
	}
	return id, nil
}

// AddMessage appends a message to a conversation and bumps its counters.
func (s *Store) AddMessage(ctx context.Context, conversationID uuid.UUID, msg thread.Message) error {
	if s == nil || s.db == nil {
		return nil
	}

	id := msg.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := time.Now().UTC()
	if msg.Timestamp > 0 {
		createdAt = time.UnixMilli(msg.Timestamp).UTC()
	}

	metadata, err := messageMetadata(msg)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender, text, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, conversationID, msg.Sender, msg.Text, metadata, createdAt,
	)
	if err != nil {
		return fmt.Errorf("memory: add message: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE conversations SET message_count = message_count + 1, updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), conversationID,
	)
	if err != nil {
		return fmt.Errorf("memory: bump message count: %w", err)
	}
	return nil
}

// messageMetadata packs media attachments into the jsonb column; plain text
// messages store NULL.
func messageMetadata(msg thread.Message) (any, error) {
	if msg.ImageURL == "" && msg.AudioURL == "" {
		return nil, nil
	}
	meta := map[string]string{}
	if msg.ImageURL != "" {
		meta["imageUrl"] = msg.ImageURL
		meta["imageMimeType"] = msg.ImageMimeType
	}
	if msg.AudioURL != "" {
		meta["audioUrl"] = msg.AudioURL
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("memory: marshal message metadata: %w", err)
	}
	return raw, nil
}

// GetMessages reads a conversation's messages in creation order.
func (s *Store) GetMessages(ctx context.Context, conversationID uuid.UUID) ([]thread.Message, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender, text, metadata, created_at
		FROM messages WHERE conversation_id = $1 ORDER BY created_at ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("memory: get messages: %w", err)
	}
	defer rows.Close()

	var out []thread.Message
	for rows.Next() {
		var (
			msg       thread.Message
			metadata  sql.NullString
			createdAt time.Time
		)
		if err := rows.Scan(&msg.ID, &msg.Sender, &msg.Text, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("memory: scan message: %w", err)
		}
		msg.Timestamp = createdAt.UnixMilli()
		if metadata.Valid && metadata.String != "" {
			var meta map[string]string
			if err := json.Unmarshal([]byte(metadata.String), &meta); err == nil {
				msg.ImageURL = meta["imageUrl"]
				msg.ImageMimeType = meta["imageMimeType"]
				msg.AudioURL = meta["audioUrl"]
			}
		}
		out = append(out, msg)
	}
	if out == nil {
		out = []thread.Message{}
	}
	return out, rows.Err()
}

// GetConversations lists the user's conversations, most recent first.
func (s *Store) GetConversations(ctx context.Context, email string) ([]ConversationRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.user_id, c.agent_id, c.title, c.is_active, c.message_count, c.created_at, c.updated_at
		FROM conversations c
		JOIN users u ON u.id = c.user_id
		WHERE u.email = $1
		ORDER BY c.updated_at DESC`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("memory: get conversations: %w", err)
	}
	defer rows.Close()

	var out []ConversationRecord
	for rows.Next() {
		var rec ConversationRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.AgentID, &rec.Title, &rec.IsActive,
			&rec.MessageCount, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("memory: scan conversation: %w", err)
		}
		out = append(out, rec)
	}
	if out == nil {
		out = []ConversationRecord{}
	}
	return out, rows.Err()
}

// UpdateConversationTitle renames a conversation.
func (s *Store) UpdateConversationTitle(ctx context.Context, conversationID uuid.UUID, title string) error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE conversations SET title = $1, updated_at = $2 WHERE id = $3`,
		title, time.Now().UTC(), conversationID,
	)
	if err != nil {
		return fmt.Errorf("memory: update conversation title: %w", err)
	}
	return nil
}

// SaveDeliverable stores a structured artifact generated during the
// conversation.
func (s *Store) SaveDeliverable(ctx context.Context, email string, rec DeliverableRecord) (uuid.UUID, error) {
	if s == nil || s.db == nil {
		return uuid.Nil, nil
	}
	userID, err := s.EnsureUser(ctx, email)
	if err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO deliverables (id, conversation_id, user_id, type, title, description, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, rec.ConversationID, userID, rec.Type, rec.Title, rec.Description, []byte(rec.Data), time.Now().UTC(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("memory: save deliverable: %w", err)
	}
	return id, nil
}
