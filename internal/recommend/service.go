package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/LionGab/lyla-erl/internal/conversation"
	"github.com/LionGab/lyla-erl/internal/diagnostic"
	"github.com/LionGab/lyla-erl/internal/identity"
	"github.com/LionGab/lyla-erl/internal/observability/metrics"
	"github.com/LionGab/lyla-erl/internal/thread"
	"github.com/LionGab/lyla-erl/pkg/logging"
)

// Service produces recommendations for a profile. The product matrix is
// fixed; only the reasoning and next steps are LLM-personalized, with a
// deterministic fallback.
type Service struct {
	llm     conversation.LLMClient
	kv      thread.KV
	logger  *logging.Logger
	metrics *metrics.LLMMetrics
	now     func() time.Time
}

func NewService(llm conversation.LLMClient, kv thread.KV, logger *logging.Logger, m *metrics.LLMMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{llm: llm, kv: kv, logger: logger, metrics: m, now: time.Now}
}

// Generate builds the recommendation set for the profile. extraContext is
// optional free text (diagnostic reasoning, onboarding notes) folded into the
// personalization prompt.
func (s *Service) Generate(ctx context.Context, profile diagnostic.Profile, extraContext string) Result {
	products := ProductsFor(profile)
	result := Result{
		Profile:            profile,
		TopRecommendations: products,
	}

	resp, err := s.llm.Generate(ctx, conversation.GenerateRequest{Text: buildPrompt(profile, products, extraContext)})
	if err != nil {
		s.logger.Warn("recommendation personalization failed, using fallback", "error", err)
		s.metrics.ObserveFallback()
		return withFallback(result)
	}

	var parsed struct {
		Reasoning string   `json:"reasoning"`
		NextSteps []string `json:"nextSteps"`
	}
	if err := json.Unmarshal([]byte(conversation.StripFences(resp.Text)), &parsed); err != nil {
		s.logger.Warn("recommendation personalization unparseable, using fallback", "error", err)
		s.metrics.ObserveFallback()
		return withFallback(result)
	}

	result.Reasoning = parsed.Reasoning
	result.NextSteps = parsed.NextSteps
	if result.Reasoning == "" || len(result.NextSteps) == 0 {
		result = withFallback(result)
	}
	return result
}

func buildPrompt(profile diagnostic.Profile, products []Product, extraContext string) string {
	var lines strings.Builder
	for _, p := range products {
		fmt.Fprintf(&lines, "- %s: %s\n", p.Name, p.Description)
	}

	contextBlock := ""
	if extraContext != "" {
		contextBlock = fmt.Sprintf("Contexto adicional: %s\n\n", extraContext)
	}

	return fmt.Sprintf(`Uma empreendedora digital foi classificada como Perfil %s.

%sProdutos recomendados para este perfil:
%s
Gere uma análise em JSON com:
- reasoning: explicação detalhada do porquê essas recomendações são ideais para Perfil %s
- nextSteps: array com 3-5 próximos passos práticos e acionáveis

Responda APENAS com JSON válido, sem markdown.`, profile, contextBlock, lines.String(), profile)
}

func withFallback(r Result) Result {
	if r.Reasoning == "" {
		r.Reasoning = fmt.Sprintf("Produtos ideais para Perfil %s baseados em escalabilidade e investimento.", r.Profile)
	}
	if len(r.NextSteps) == 0 {
		r.NextSteps = []string{
			"Escolha um produto que ressoe com você",
			"Valide a ideia com seu público",
			"Crie um MVP (produto mínimo viável)",
		}
	}
	return r
}

// Snapshot is the persisted recommendation set.
type Snapshot struct {
	Result
	Timestamp time.Time `json:"timestamp"`
}

func snapshotKey(email string) string {
	return "erl_lia_recommendations_" + identity.Namespace(email)
}

// Save persists the recommendation set for the user.
func (s *Service) Save(ctx context.Context, email string, r Result) error {
	raw, err := json.Marshal(Snapshot{Result: r, Timestamp: s.now().UTC()})
	if err != nil {
		return fmt.Errorf("recommend: marshal snapshot: %w", err)
	}
	if err := s.kv.Set(ctx, snapshotKey(email), string(raw)); err != nil {
		return fmt.Errorf("recommend: save snapshot: %w", err)
	}
	return nil
}

// Load returns the stored recommendation set, or nil when absent or corrupt.
func (s *Service) Load(ctx context.Context, email string) (*Snapshot, error) {
	raw, err := s.kv.Get(ctx, snapshotKey(email))
	if err != nil {
		return nil, fmt.Errorf("recommend: load snapshot: %w", err)
	}
	if raw == "" {
		return nil, nil
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		s.logger.Warn("stored recommendations unparseable, ignoring", "error", err)
		return nil, nil
	}
	return &snap, nil
}
