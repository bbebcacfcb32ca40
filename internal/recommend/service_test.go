package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LionGab/lyla-erl/internal/conversation"
	"github.com/LionGab/lyla-erl/internal/diagnostic"
	"github.com/LionGab/lyla-erl/internal/thread"
)

type stubLLM struct {
	text string
	err  error
	last conversation.GenerateRequest
}

func (s *stubLLM) Generate(_ context.Context, req conversation.GenerateRequest) (conversation.GenerateResponse, error) {
	s.last = req
	if s.err != nil {
		return conversation.GenerateResponse{}, s.err
	}
	return conversation.GenerateResponse{Text: s.text}, nil
}

func newTestService(t *testing.T, llm conversation.LLMClient) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(llm, thread.NewRedisKV(client), nil, nil)
}

func TestProductsForMatrix(t *testing.T) {
	a := ProductsFor(diagnostic.ProfileA)
	require.Len(t, a, 3)
	assert.Equal(t, ProductCursoDigital, a[0].Type)
	assert.Equal(t, ProductComunidadePaga, a[1].Type)
	assert.Equal(t, ProductMentoria, a[2].Type)

	b := ProductsFor(diagnostic.ProfileB)
	require.Len(t, b, 3)
	assert.Equal(t, ProductMentoria, b[0].Type)
	assert.Equal(t, ProductConsultoria, b[1].Type)
	assert.Equal(t, ProductProdutoFisico, b[2].Type)
}

func TestGeneratePersonalized(t *testing.T) {
	llm := &stubLLM{text: `{"reasoning": "Perfil B tem audiência para ofertas de alto ticket.", "nextSteps": ["Defina o escopo da mentoria", "Valide com 3 clientes"]}`}
	svc := newTestService(t, llm)

	result := svc.Generate(context.Background(), diagnostic.ProfileB, "já vende consultoria avulsa")

	assert.Equal(t, diagnostic.ProfileB, result.Profile)
	assert.Len(t, result.TopRecommendations, 3)
	assert.Equal(t, "Perfil B tem audiência para ofertas de alto ticket.", result.Reasoning)
	assert.Len(t, result.NextSteps, 2)
	assert.Contains(t, llm.last.Text, "Perfil B")
	assert.Contains(t, llm.last.Text, "já vende consultoria avulsa")
	assert.Contains(t, llm.last.Text, "Mentoria Individual")
}

func TestGenerateFallbackOnError(t *testing.T) {
	llm := &stubLLM{err: errors.New("model unavailable")}
	svc := newTestService(t, llm)

	result := svc.Generate(context.Background(), diagnostic.ProfileA, "")

	assert.Len(t, result.TopRecommendations, 3)
	assert.Equal(t, "Produtos ideais para Perfil A baseados em escalabilidade e investimento.", result.Reasoning)
	assert.Len(t, result.NextSteps, 3)
}

func TestGenerateFallbackOnUnparseable(t *testing.T) {
	llm := &stubLLM{text: "aqui estão suas recomendações..."}
	svc := newTestService(t, llm)

	result := svc.Generate(context.Background(), diagnostic.ProfileA, "")
	assert.NotEmpty(t, result.Reasoning)
	assert.NotEmpty(t, result.NextSteps)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	llm := &stubLLM{text: `{"reasoning": "ok", "nextSteps": ["passo 1"]}`}
	svc := newTestService(t, llm)

	result := svc.Generate(ctx, diagnostic.ProfileA, "")
	require.NoError(t, svc.Save(ctx, "maria@exemplo.com", result))

	snap, err := svc.Load(ctx, "maria@exemplo.com")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, result.Profile, snap.Profile)
	assert.Len(t, snap.TopRecommendations, 3)
	assert.False(t, snap.Timestamp.IsZero())

	// Another user sees nothing.
	other, err := svc.Load(ctx, "outra@exemplo.com")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestLoadMissing(t *testing.T) {
	svc := newTestService(t, &stubLLM{})
	snap, err := svc.Load(context.Background(), "maria@exemplo.com")
	require.NoError(t, err)
	assert.Nil(t, snap)
}
