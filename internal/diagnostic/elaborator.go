package diagnostic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/LionGab/lyla-erl/internal/conversation"
	"github.com/LionGab/lyla-erl/internal/observability/metrics"
	"github.com/LionGab/lyla-erl/pkg/logging"
)

// Elaborator turns a classified profile into a full diagnostic through the
// language model. Classification never fails; only the narrative can degrade
// to the templated fallback.
type Elaborator struct {
	llm     conversation.LLMClient
	logger  *logging.Logger
	metrics *metrics.LLMMetrics
}

func NewElaborator(llm conversation.LLMClient, logger *logging.Logger, m *metrics.LLMMetrics) *Elaborator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Elaborator{llm: llm, logger: logger, metrics: m}
}

// Process scores the answers and elaborates the result.
func (e *Elaborator) Process(ctx context.Context, answers []Answer) Result {
	catalog := Questions()
	profile := ScoreProfile(answers, catalog)
	return e.elaborate(ctx, answers, catalog, profile)
}

func (e *Elaborator) elaborate(ctx context.Context, answers []Answer, catalog []Question, profile Profile) Result {
	prompt := buildPrompt(answers, catalog, profile)

	resp, err := e.llm.Generate(ctx, conversation.GenerateRequest{Text: prompt})
	if err != nil {
		e.logger.Warn("diagnostic elaboration failed, using fallback", "error", err)
		e.metrics.ObserveFallback()
		return fallbackResult(profile)
	}

	var parsed struct {
		Confidence      int      `json:"confidence"`
		Reasoning       string   `json:"reasoning"`
		Recommendations []string `json:"recommendations"`
		Strengths       []string `json:"strengths"`
		AreasForGrowth  []string `json:"areasForGrowth"`
	}
	if err := json.Unmarshal([]byte(conversation.StripFences(resp.Text)), &parsed); err != nil {
		e.logger.Warn("diagnostic elaboration unparseable, using fallback", "error", err)
		e.metrics.ObserveFallback()
		return fallbackResult(profile)
	}

	result := Result{
		Profile:         profile,
		Confidence:      parsed.Confidence,
		Reasoning:       parsed.Reasoning,
		Recommendations: parsed.Recommendations,
		Strengths:       parsed.Strengths,
		AreasForGrowth:  parsed.AreasForGrowth,
	}
	if result.Confidence == 0 {
		result.Confidence = 75
	}
	if result.Reasoning == "" {
		result.Reasoning = fmt.Sprintf("Perfil %s identificado com base nas respostas.", profile)
	}
	if result.Recommendations == nil {
		result.Recommendations = []string{}
	}
	if result.Strengths == nil {
		result.Strengths = []string{}
	}
	if result.AreasForGrowth == nil {
		result.AreasForGrowth = []string{}
	}
	return result
}

func buildPrompt(answers []Answer, catalog []Question, profile Profile) string {
	byID := make(map[string]Question, len(catalog))
	for _, q := range catalog {
		byID[q.ID] = q
	}

	var answersText strings.Builder
	for _, ans := range answers {
		q, ok := byID[ans.QuestionID]
		if !ok {
			continue
		}
		fmt.Fprintf(&answersText, "P: %s\nR: %s\n\n", q.Question, ans.Answer)
	}

	return fmt.Sprintf(`Com base nas respostas abaixo, crie um diagnóstico detalhado para uma empreendedora digital classificada como Perfil %s.

Respostas:
%s
Gere um diagnóstico em formato JSON com:
- confidence: número de 0-100 representando confiança na classificação
- reasoning: explicação detalhada do porquê do perfil %s
- recommendations: array com 3-5 recomendações específicas
- strengths: array com 3-5 pontos fortes identificados
- areasForGrowth: array com 3-5 áreas de crescimento

Responda APENAS com JSON válido, sem markdown.`, profile, answersText.String(), profile)
}

func fallbackResult(profile Profile) Result {
	return Result{
		Profile:    profile,
		Confidence: 70,
		Reasoning:  fmt.Sprintf("Perfil %s identificado com base nas respostas fornecidas.", profile),
		Recommendations: []string{
			fmt.Sprintf("Foque em estratégias adequadas para Perfil %s", profile),
			"Desenvolva seu público-alvo gradualmente",
			"Crie conteúdo de valor consistentemente",
		},
		Strengths:      []string{"Iniciativa e vontade de empreender"},
		AreasForGrowth: []string{"Desenvolvimento de audiência", "Estratégia de conteúdo"},
	}
}
