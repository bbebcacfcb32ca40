package thread

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(NewRedisKV(client), nil)
}

func msg(id, sender, text string, ts int64) Message {
	return Message{ID: id, Sender: sender, Text: text, Timestamp: ts}
}

func TestSaveThenGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	created, err := store.CreateThread(ctx, "ana@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	msgs := []Message{
		msg("m1", SenderUser, "Quero vender mentoria", 1000),
		msg("m2", SenderAI, "Ótimo!", 2000),
	}
	require.NoError(t, store.SaveThreadMessages(ctx, "ana@example.com", created.ID, msgs))

	got, err := store.GetThreadMessages(ctx, "ana@example.com", created.ID)
	require.NoError(t, err)
	assert.Equal(t, msgs, got)
}

func TestMetadataDerivation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	created, err := store.CreateThread(ctx, "ana@example.com")
	require.NoError(t, err)

	msgs := []Message{
		msg("m1", SenderUser, "Quero vender mentoria", 1000),
		msg("m2", SenderAI, "Ótimo!", 2000),
	}
	require.NoError(t, store.SaveThreadMessages(ctx, "ana@example.com", created.ID, msgs))

	threads, err := store.GetAllThreads(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Len(t, threads, 1)

	got := threads[0]
	assert.Equal(t, "Quero vender mentoria", got.Title)
	assert.Equal(t, "Ótimo!", got.LastMessage)
	assert.Equal(t, int64(2000), got.LastMessageTime)
	assert.Equal(t, 2, got.MessageCount)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
}

func TestTitleTruncation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	created, err := store.CreateThread(ctx, "ana@example.com")
	require.NoError(t, err)

	long := strings.Repeat("a", 80)
	require.NoError(t, store.SaveThreadMessages(ctx, "ana@example.com", created.ID, []Message{
		msg("m1", SenderUser, long, 1000),
	}))

	threads, err := store.GetAllThreads(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Len(t, threads, 1)

	title := threads[0].Title
	assert.Equal(t, 50, len([]rune(title)))
	assert.True(t, strings.HasSuffix(title, "..."))
	assert.Equal(t, strings.Repeat("a", 47), strings.TrimSuffix(title, "..."))
}

func TestTitleTruncationCountsRunes(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	created, err := store.CreateThread(ctx, "ana@example.com")
	require.NoError(t, err)

	long := strings.Repeat("ç", 60)
	require.NoError(t, store.SaveThreadMessages(ctx, "ana@example.com", created.ID, []Message{
		msg("m1", SenderUser, long, 1000),
	}))

	threads, err := store.GetAllThreads(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, strings.Repeat("ç", 47)+"...", threads[0].Title)
}

func TestShortTitleKeptVerbatim(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	created, err := store.CreateThread(ctx, "ana@example.com")
	require.NoError(t, err)

	require.NoError(t, store.SaveThreadMessages(ctx, "ana@example.com", created.ID, []Message{
		msg("m1", SenderAI, "Como posso ajudar?", 500),
		msg("m2", SenderUser, "  Quero vender mentoria  ", 1000),
	}))

	threads, err := store.GetAllThreads(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Len(t, threads, 1)
	// First user message wins, trimmed, even when an AI message came first.
	assert.Equal(t, "Quero vender mentoria", threads[0].Title)
}

func TestThreadOrderingByLastMessageTime(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	email := "ana@example.com"

	a, err := store.CreateThread(ctx, email)
	require.NoError(t, err)
	b, err := store.CreateThread(ctx, email)
	require.NoError(t, err)
	c, err := store.CreateThread(ctx, email)
	require.NoError(t, err)

	require.NoError(t, store.SaveThreadMessages(ctx, email, a.ID, []Message{msg("m1", SenderUser, "primeiro", 1000)}))
	require.NoError(t, store.SaveThreadMessages(ctx, email, c.ID, []Message{msg("m2", SenderUser, "terceiro", 3000)}))
	require.NoError(t, store.SaveThreadMessages(ctx, email, b.ID, []Message{msg("m3", SenderUser, "segundo", 2000)}))

	threads, err := store.GetAllThreads(ctx, email)
	require.NoError(t, err)
	require.Len(t, threads, 3)
	assert.Equal(t, c.ID, threads[0].ID)
	assert.Equal(t, b.ID, threads[1].ID)
	assert.Equal(t, a.ID, threads[2].ID)
}

func TestDeleteThreadRemovesExactlyOne(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	email := "ana@example.com"

	a, err := store.CreateThread(ctx, email)
	require.NoError(t, err)
	b, err := store.CreateThread(ctx, email)
	require.NoError(t, err)

	require.NoError(t, store.SaveThreadMessages(ctx, email, a.ID, []Message{msg("m1", SenderUser, "oi", 1000)}))
	require.NoError(t, store.DeleteThread(ctx, email, a.ID))

	threads, err := store.GetAllThreads(ctx, email)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, b.ID, threads[0].ID)

	msgs, err := store.GetThreadMessages(ctx, email, a.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestMigrateOldHistoryIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	email := "ana@example.com"

	legacy := []Message{
		msg("m1", SenderUser, "mensagem antiga", 1000),
		msg("m2", SenderAI, "resposta antiga", 2000),
	}
	data, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, store.kv.Set(ctx, legacyHistoryKey(email), string(data)))

	threadID, err := store.MigrateOldHistory(ctx, email)
	require.NoError(t, err)
	require.NotEmpty(t, threadID)

	migrated, err := store.GetThreadMessages(ctx, email, threadID)
	require.NoError(t, err)
	assert.Equal(t, legacy, migrated)

	// Second call finds nothing and must not duplicate.
	again, err := store.MigrateOldHistory(ctx, email)
	require.NoError(t, err)
	assert.Empty(t, again)

	threads, err := store.GetAllThreads(ctx, email)
	require.NoError(t, err)
	assert.Len(t, threads, 1)
}

func TestMigrateOldHistoryEmptyOrCorrupt(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	email := "ana@example.com"

	// Nothing stored at all.
	id, err := store.MigrateOldHistory(ctx, email)
	require.NoError(t, err)
	assert.Empty(t, id)

	// Empty legacy array.
	require.NoError(t, store.kv.Set(ctx, legacyHistoryKey(email), "[]"))
	id, err = store.MigrateOldHistory(ctx, email)
	require.NoError(t, err)
	assert.Empty(t, id)

	// Corrupt blob degrades to no-op.
	require.NoError(t, store.kv.Set(ctx, legacyHistoryKey(email), "{not json"))
	id, err = store.MigrateOldHistory(ctx, email)
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestNamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	a, err := store.CreateThread(ctx, "a@example.com")
	require.NoError(t, err)
	require.NoError(t, store.SaveThreadMessages(ctx, "a@example.com", a.ID, []Message{msg("m1", SenderUser, "oi", 1000)}))

	other, err := store.GetAllThreads(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Empty(t, other)

	anon, err := store.GetAllThreads(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, anon)
}

func TestCorruptMetadataReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	email := "ana@example.com"

	require.NoError(t, store.kv.Set(ctx, threadsKey(email), "][junk"))
	threads, err := store.GetAllThreads(ctx, email)
	require.NoError(t, err)
	assert.Empty(t, threads)

	require.NoError(t, store.kv.Set(ctx, threadKey("t1", email), "not-json"))
	msgs, err := store.GetThreadMessages(ctx, email, "t1")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestEmptySaveKeepsDefaultTitle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	email := "ana@example.com"

	created, err := store.CreateThread(ctx, email)
	require.NoError(t, err)
	require.NoError(t, store.SaveThreadMessages(ctx, email, created.ID, nil))

	threads, err := store.GetAllThreads(ctx, email)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, defaultTitle, threads[0].Title)
	assert.Zero(t, threads[0].MessageCount)
	assert.InDelta(t, time.Now().UnixMilli(), threads[0].LastMessageTime, 5000)
}

func TestThreadIDsUnique(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		th, err := store.CreateThread(ctx, "ana@example.com")
		require.NoError(t, err)
		require.False(t, seen[th.ID], "duplicate thread id %s", th.ID)
		seen[th.ID] = true
	}
}
