package conversation

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/LionGab/lyla-erl/internal/memory"
	"github.com/LionGab/lyla-erl/internal/thread"
)

type fakeLLM struct {
	resp  GenerateResponse
	err   error
	calls int
	last  GenerateRequest
}

func (f *fakeLLM) Generate(_ context.Context, req GenerateRequest) (GenerateResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return GenerateResponse{}, f.err
	}
	return f.resp, nil
}

func newTestService(t *testing.T, llm LLMClient) (*Service, *thread.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	local := thread.NewStore(thread.NewRedisKV(client), testLogger)
	facade := memory.NewFacade(local, nil, testLogger, nil)
	svc := NewService(llm, facade, nil, testLogger, nil, ServiceOptions{
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
		Timeout:     time.Second,
	})
	return svc, local
}

const testEmail = "maria@exemplo.com"

func TestSendMessagePersistsBothSides(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{resp: GenerateResponse{Text: "Vamos estruturar sua oferta."}}
	svc, local := newTestService(t, llm)

	conv, err := svc.StartConversation(ctx, testEmail, "")
	require.NoError(t, err)
	assert.False(t, conv.Remote)

	result, err := svc.SendMessage(ctx, testEmail, conv.ID, SendInput{Text: "Quero vender mentoria"})
	require.NoError(t, err)
	assert.False(t, result.Failed)
	assert.Equal(t, thread.SenderUser, result.UserMessage.Sender)
	assert.Equal(t, "Quero vender mentoria", result.UserMessage.Text)
	assert.Equal(t, thread.SenderAI, result.AIMessage.Sender)
	assert.Equal(t, "Vamos estruturar sua oferta.", result.AIMessage.Text)

	msgs, err := local.GetThreadMessages(ctx, testEmail, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, result.UserMessage.ID, msgs[0].ID)
	assert.Equal(t, result.AIMessage.ID, msgs[1].ID)
}

func TestSendMessageHistoryExcludesCurrentTurn(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{resp: GenerateResponse{Text: "ok"}}
	svc, _ := newTestService(t, llm)

	conv, err := svc.StartConversation(ctx, testEmail, "")
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, testEmail, conv.ID, SendInput{Text: "primeira"})
	require.NoError(t, err)
	assert.Empty(t, llm.last.History)

	_, err = svc.SendMessage(ctx, testEmail, conv.ID, SendInput{Text: "segunda"})
	require.NoError(t, err)
	require.Len(t, llm.last.History, 2)
	assert.Equal(t, "primeira", llm.last.History[0].Text)
	assert.Equal(t, "segunda", llm.last.Text)
}

func TestSendMessageFailureAppendsFriendlyReply(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{err: &googleapi.Error{Code: 429}}
	svc, local := newTestService(t, llm)

	conv, err := svc.StartConversation(ctx, testEmail, "")
	require.NoError(t, err)

	result, err := svc.SendMessage(ctx, testEmail, conv.ID, SendInput{Text: "oi"})
	require.NoError(t, err)
	assert.True(t, result.Failed)
	assert.Equal(t, CategoryQuota.UserMessage(), result.AIMessage.Text)
	assert.Equal(t, 1, llm.calls, "quota errors must not be retried")

	// Both the user turn and the failure reply stay in the thread.
	msgs, err := local.GetThreadMessages(ctx, testEmail, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "oi", msgs[0].Text)
	assert.Equal(t, CategoryQuota.UserMessage(), msgs[1].Text)
}

func TestSendMessageRetriesServerErrors(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{err: &googleapi.Error{Code: 503}}
	svc, _ := newTestService(t, llm)

	conv, err := svc.StartConversation(ctx, testEmail, "")
	require.NoError(t, err)

	result, err := svc.SendMessage(ctx, testEmail, conv.ID, SendInput{Text: "oi"})
	require.NoError(t, err)
	assert.True(t, result.Failed)
	assert.Equal(t, 2, llm.calls)
}

func TestSendMessageValidation(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{resp: GenerateResponse{Text: "ok"}}
	svc, local := newTestService(t, llm)

	conv, err := svc.StartConversation(ctx, testEmail, "")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   SendInput
		want error
	}{
		{"empty input", SendInput{}, ErrNoContent},
		{"whitespace only", SendInput{Text: "   "}, ErrNoContent},
		{"image without mime type", SendInput{ImageData: base64.StdEncoding.EncodeToString([]byte("png"))}, ErrInvalidMedia},
		{"image with bad base64", SendInput{ImageData: "not-base64!!!", ImageMimeType: "image/png"}, ErrInvalidMedia},
		{"audio without mime type", SendInput{AudioData: base64.StdEncoding.EncodeToString([]byte("ogg"))}, ErrInvalidMedia},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SendMessage(ctx, testEmail, conv.ID, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// Nothing was persisted by the rejected sends.
	msgs, err := local.GetThreadMessages(ctx, testEmail, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.Zero(t, llm.calls)
}

func TestSendMessageWithImage(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{resp: GenerateResponse{Text: "Bela foto!"}}
	svc, _ := newTestService(t, llm)

	conv, err := svc.StartConversation(ctx, testEmail, "")
	require.NoError(t, err)

	data := base64.StdEncoding.EncodeToString([]byte("fake-png-bytes"))
	result, err := svc.SendMessage(ctx, testEmail, conv.ID, SendInput{
		Text:          "O que acha?",
		ImageData:     data,
		ImageMimeType: "image/png",
	})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,"+data, result.UserMessage.ImageURL)
	assert.Equal(t, "image/png", result.UserMessage.ImageMimeType)
	assert.Equal(t, data, llm.last.ImageData)
}
