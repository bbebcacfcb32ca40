package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LionGab/lyla-erl/internal/thread"
	"github.com/LionGab/lyla-erl/pkg/logging"
)

func newLocalStore(t *testing.T) *thread.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return thread.NewStore(thread.NewRedisKV(client), logging.New("error"))
}

func TestFacadeLocalOnly(t *testing.T) {
	ctx := context.Background()
	local := newLocalStore(t)
	f := NewFacade(local, nil, nil, nil)

	assert.False(t, f.RemoteEnabled())

	conv, err := f.CreateConversation(ctx, "maria@exemplo.com", "lyla-mestre")
	require.NoError(t, err)
	assert.False(t, conv.Remote)
	assert.NotEmpty(t, conv.ID)

	msg := thread.Message{ID: "m1", Text: "oi", Sender: thread.SenderUser, Timestamp: 1}
	require.NoError(t, f.SaveMessage(ctx, "maria@exemplo.com", conv.ID, msg, false))

	msgs, err := f.LoadMessages(ctx, "maria@exemplo.com", conv.ID, false)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "oi", msgs[0].Text)
}

func TestFacadeCreateFallsBackToLocal(t *testing.T) {
	ctx := context.Background()
	local := newLocalStore(t)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	mock.ExpectQuery("INSERT INTO users").WillReturnError(errors.New("connection refused"))

	f := NewFacade(local, NewStore(db), nil, nil)
	require.True(t, f.RemoteEnabled())

	conv, err := f.CreateConversation(ctx, "maria@exemplo.com", "lyla-mestre")
	require.NoError(t, err)
	assert.False(t, conv.Remote, "create must fall back to a local thread")
	assert.NotEmpty(t, conv.ID)
}

// A remote write failure must never lose the message: the local copy is
// written first and is the one acknowledged.
func TestFacadeRemoteWriteFailureKeepsLocalCopy(t *testing.T) {
	ctx := context.Background()
	local := newLocalStore(t)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	mock.ExpectExec("INSERT INTO messages").WillReturnError(errors.New("connection refused"))

	f := NewFacade(local, NewStore(db), nil, nil)

	convID := uuid.NewString()
	msg := thread.Message{ID: "m1", Text: "importante", Sender: thread.SenderUser, Timestamp: 1}
	require.NoError(t, f.SaveMessage(ctx, "maria@exemplo.com", convID, msg, true))

	msgs, err := local.GetThreadMessages(ctx, "maria@exemplo.com", convID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "importante", msgs[0].Text)
}

func TestFacadeLoadFallsBackToLocal(t *testing.T) {
	ctx := context.Background()
	local := newLocalStore(t)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	mock.ExpectQuery("SELECT id, sender, text, metadata, created_at").
		WillReturnError(errors.New("connection refused"))

	f := NewFacade(local, NewStore(db), nil, nil)

	convID := uuid.NewString()
	msg := thread.Message{ID: "m1", Text: "local", Sender: thread.SenderUser, Timestamp: 1}
	require.NoError(t, local.SaveThreadMessages(ctx, "maria@exemplo.com", convID, []thread.Message{msg}))

	msgs, err := f.LoadMessages(ctx, "maria@exemplo.com", convID, true)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "local", msgs[0].Text)
}

func TestFacadeNonUUIDConversationSkipsRemote(t *testing.T) {
	ctx := context.Background()
	local := newLocalStore(t)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	// No expectations: any remote query would fail ExpectationsWereMet.

	f := NewFacade(local, NewStore(db), nil, nil)

	msg := thread.Message{ID: "m1", Text: "oi", Sender: thread.SenderUser, Timestamp: 1}
	require.NoError(t, f.SaveMessage(ctx, "maria@exemplo.com", "thread_123_abc", msg, true))

	msgs, err := f.LoadMessages(ctx, "maria@exemplo.com", "thread_123_abc", true)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
