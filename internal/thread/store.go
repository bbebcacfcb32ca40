package thread

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/LionGab/lyla-erl/internal/identity"
	"github.com/LionGab/lyla-erl/pkg/logging"
)

const (
	keyPrefix     = "erl_lia"
	defaultTitle  = "Nova conversa"
	titleLimit    = 50
	previewLimit  = 100
	legacyKeyName = "chat_history"
)

// Store persists per-user conversation threads on a key-value substrate.
// Every operation takes the owning user's email explicitly; an empty email
// maps to the anonymous namespace. Missing or corrupt data always reads as
// empty rather than failing.
type Store struct {
	kv     KV
	logger *logging.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewStore creates a thread store over the given KV substrate.
func NewStore(kv KV, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		kv:     kv,
		logger: logger,
		tracer: otel.Tracer("lyla.internal.thread"),
		now:    time.Now,
	}
}

func threadsKey(email string) string {
	return fmt.Sprintf("%s_threads_%s", keyPrefix, identity.Namespace(email))
}

func threadKey(threadID, email string) string {
	return fmt.Sprintf("%s_thread_%s_%s", keyPrefix, threadID, identity.Namespace(email))
}

func legacyHistoryKey(email string) string {
	return fmt.Sprintf("%s_%s_%s", keyPrefix, legacyKeyName, identity.Namespace(email))
}

// newThreadID generates a collision-resistant id: millisecond timestamp plus
// a random alphanumeric suffix.
func (s *Store) newThreadID() string {
	return fmt.Sprintf("thread_%d_%s", s.now().UnixMilli(), randomSuffix(9))
}

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	for i, b := range buf {
		buf[i] = suffixAlphabet[int(b)%len(suffixAlphabet)]
	}
	return string(buf)
}

// CreateThread creates an empty thread and registers its metadata.
func (s *Store) CreateThread(ctx context.Context, email string) (Thread, error) {
	now := s.now().UnixMilli()
	t := Thread{
		ID:              s.newThreadID(),
		Title:           defaultTitle,
		LastMessage:     "",
		LastMessageTime: now,
		MessageCount:    0,
		CreatedAt:       now,
		Messages:        []Message{},
	}

	metas := s.loadMetadata(ctx, email)
	metas = append([]metadata{toMetadata(t)}, metas...)
	if err := s.saveMetadata(ctx, email, metas); err != nil {
		return Thread{}, err
	}
	return t, nil
}

// GetAllThreads returns the user's threads with messages joined in, ordered
// as persisted (descending by last message time after any save).
func (s *Store) GetAllThreads(ctx context.Context, email string) ([]Thread, error) {
	ctx, span := s.tracer.Start(ctx, "thread.get_all")
	defer span.End()

	metas := s.loadMetadata(ctx, email)
	threads := make([]Thread, 0, len(metas))
	for _, m := range metas {
		msgs, err := s.GetThreadMessages(ctx, email, m.ID)
		if err != nil {
			return nil, err
		}
		threads = append(threads, fromMetadata(m, msgs))
	}
	return threads, nil
}

// GetThreadMessages returns the message log for a thread. Missing or corrupt
// data yields an empty slice.
func (s *Store) GetThreadMessages(ctx context.Context, email, threadID string) ([]Message, error) {
	raw, err := s.kv.Get(ctx, threadKey(threadID, email))
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return []Message{}, nil
	}
	var msgs []Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		s.logger.Warn("discarding corrupt thread messages", "thread_id", threadID, "error", err)
		return []Message{}, nil
	}
	if msgs == nil {
		msgs = []Message{}
	}
	return msgs, nil
}

// SaveThreadMessages replaces the thread's full message array and recomputes
// its metadata. The metadata list is re-sorted descending by last message
// time; the conversation list relies on that ordering.
func (s *Store) SaveThreadMessages(ctx context.Context, email, threadID string, messages []Message) error {
	ctx, span := s.tracer.Start(ctx, "thread.save_messages")
	defer span.End()

	if messages == nil {
		messages = []Message{}
	}
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("thread: marshal messages: %w", err)
	}
	if err := s.kv.Set(ctx, threadKey(threadID, email), string(data)); err != nil {
		return err
	}
	return s.updateMetadata(ctx, email, threadID, messages)
}

func (s *Store) updateMetadata(ctx context.Context, email, threadID string, messages []Message) error {
	metas := s.loadMetadata(ctx, email)

	m := metadata{
		ID:           threadID,
		Title:        deriveTitle(messages),
		MessageCount: len(messages),
		CreatedAt:    s.now().UnixMilli(),
	}
	if len(messages) > 0 {
		last := messages[len(messages)-1]
		m.LastMessage = truncateRunes(last.Text, previewLimit, "")
		m.LastMessageTime = last.Timestamp
	} else {
		m.LastMessageTime = s.now().UnixMilli()
	}

	replaced := false
	for i, existing := range metas {
		if existing.ID == threadID {
			m.CreatedAt = existing.CreatedAt
			metas[i] = m
			replaced = true
			break
		}
	}
	if !replaced {
		metas = append([]metadata{m}, metas...)
	}

	sort.SliceStable(metas, func(i, j int) bool {
		return metas[i].LastMessageTime > metas[j].LastMessageTime
	})
	return s.saveMetadata(ctx, email, metas)
}

// DeleteThread removes the thread's message log and strips exactly one
// metadata entry matched by id. Relative order of the rest is unchanged.
func (s *Store) DeleteThread(ctx context.Context, email, threadID string) error {
	if err := s.kv.Del(ctx, threadKey(threadID, email)); err != nil {
		return err
	}
	metas := s.loadMetadata(ctx, email)
	for i, m := range metas {
		if m.ID == threadID {
			metas = append(metas[:i], metas[i+1:]...)
			break
		}
	}
	return s.saveMetadata(ctx, email, metas)
}

// MigrateOldHistory upgrades the legacy single-blob chat history into a new
// thread. Returns the new thread id, or "" when there was nothing to migrate.
// The legacy key is deleted on success, so a second call is a no-op.
func (s *Store) MigrateOldHistory(ctx context.Context, email string) (string, error) {
	key := legacyHistoryKey(email)
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if raw == "" {
		return "", nil
	}

	var msgs []Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		s.logger.Warn("legacy chat history unparseable, skipping migration", "error", err)
		return "", nil
	}
	if len(msgs) == 0 {
		return "", nil
	}

	threadID := fmt.Sprintf("thread_migrated_%d", s.now().UnixMilli())
	if err := s.SaveThreadMessages(ctx, email, threadID, msgs); err != nil {
		return "", err
	}
	if err := s.kv.Del(ctx, key); err != nil {
		return "", err
	}
	s.logger.Info("migrated legacy chat history", "thread_id", threadID, "messages", len(msgs))
	return threadID, nil
}

func (s *Store) loadMetadata(ctx context.Context, email string) []metadata {
	raw, err := s.kv.Get(ctx, threadsKey(email))
	if err != nil || raw == "" {
		if err != nil {
			s.logger.Warn("failed to read thread metadata", "error", err)
		}
		return []metadata{}
	}
	var metas []metadata
	if err := json.Unmarshal([]byte(raw), &metas); err != nil {
		s.logger.Warn("discarding corrupt thread metadata", "error", err)
		return []metadata{}
	}
	if metas == nil {
		metas = []metadata{}
	}
	return metas
}

func (s *Store) saveMetadata(ctx context.Context, email string, metas []metadata) error {
	data, err := json.Marshal(metas)
	if err != nil {
		return fmt.Errorf("thread: marshal metadata: %w", err)
	}
	return s.kv.Set(ctx, threadsKey(email), string(data))
}

func toMetadata(t Thread) metadata {
	return metadata{
		ID:              t.ID,
		Title:           t.Title,
		LastMessage:     t.LastMessage,
		LastMessageTime: t.LastMessageTime,
		MessageCount:    t.MessageCount,
		CreatedAt:       t.CreatedAt,
	}
}

func fromMetadata(m metadata, msgs []Message) Thread {
	return Thread{
		ID:              m.ID,
		Title:           m.Title,
		LastMessage:     m.LastMessage,
		LastMessageTime: m.LastMessageTime,
		MessageCount:    m.MessageCount,
		CreatedAt:       m.CreatedAt,
		Messages:        msgs,
	}
}

// deriveTitle takes the first user message, trimmed; anything over 50 runes
// is cut to 47 plus an ellipsis.
func deriveTitle(messages []Message) string {
	for _, m := range messages {
		if m.Sender == SenderUser && m.Text != "" {
			return truncateRunes(strings.TrimSpace(m.Text), titleLimit, "...")
		}
	}
	return defaultTitle
}

// truncateRunes limits s to max runes. When ellipsis is non-empty, overlong
// input is cut so that the result including the ellipsis is exactly max runes.
func truncateRunes(s string, max int, ellipsis string) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if ellipsis == "" {
		return string(runes[:max])
	}
	return string(runes[:max-len(ellipsis)]) + ellipsis
}
