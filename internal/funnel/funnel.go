// Package funnel generates structured ERL (Entrada, Relacionamento, Lucro)
// marketing funnels through the language model, with a fixed skeleton as
// fallback.
package funnel

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/LionGab/lyla-erl/internal/conversation"
	"github.com/LionGab/lyla-erl/internal/diagnostic"
	"github.com/LionGab/lyla-erl/internal/identity"
	"github.com/LionGab/lyla-erl/internal/observability/metrics"
	"github.com/LionGab/lyla-erl/internal/thread"
	"github.com/LionGab/lyla-erl/pkg/logging"
)

// Phase is one of the three ERL funnel stages.
type Phase string

const (
	PhaseEntrada        Phase = "entrada"
	PhaseRelacionamento Phase = "relacionamento"
	PhaseLucro          Phase = "lucro"
)

var phaseOrder = []Phase{PhaseEntrada, PhaseRelacionamento, PhaseLucro}

var phaseInfo = map[Phase]struct {
	name        string
	description string
}{
	PhaseEntrada:        {"Entrada", "Fase de atração e captura de leads"},
	PhaseRelacionamento: {"Relacionamento", "Fase de nutrição e construção de confiança"},
	PhaseLucro:          {"Lucro", "Fase de conversão e monetização"},
}

// Step is one stage of the generated funnel.
type Step struct {
	ID                 string   `json:"id"`
	Phase              Phase    `json:"phase"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Actions            []string `json:"actions"`
	ContentSuggestions []string `json:"contentSuggestions"`
	Channels           []string `json:"channels"`
	Order              int      `json:"order"`
}

// Structure is a complete generated funnel.
type Structure struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Product        string    `json:"product"`
	TargetAudience string    `json:"targetAudience"`
	Steps          []Step    `json:"steps"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Service generates and persists funnels.
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

// Generate builds an ERL funnel for the product and audience. Model failures
// and unparseable output degrade to the fixed basic funnel; every result is
// guaranteed to carry at least one step per phase, ordered entrada,
// relacionamento, lucro.
func (s *Service) Generate(ctx context.Context, product, targetAudience string, profile diagnostic.Profile) Structure {
	resp, err := s.llm.Generate(ctx, conversation.GenerateRequest{Text: buildPrompt(product, targetAudience, profile)})
	if err != nil {
		s.logger.Warn("funnel generation failed, using basic funnel", "error", err)
		s.metrics.ObserveFallback()
		return s.basicFunnel(product, targetAudience)
	}

	var parsed struct {
		Steps []struct {
			Phase              Phase    `json:"phase"`
			Title              string   `json:"title"`
			Description        string   `json:"description"`
			Actions            []string `json:"actions"`
			ContentSuggestions []string `json:"contentSuggestions"`
			Channels           []string `json:"channels"`
		} `json:"steps"`
	}
	if err := json.Unmarshal([]byte(conversation.StripFences(resp.Text)), &parsed); err != nil {
		s.logger.Warn("funnel generation unparseable, using basic funnel", "error", err)
		s.metrics.ObserveFallback()
		return s.basicFunnel(product, targetAudience)
	}

	steps := make([]Step, 0, len(parsed.Steps))
	for i, raw := range parsed.Steps {
		step := Step{
			ID:                 fmt.Sprintf("step-%d", i+1),
			Phase:              raw.Phase,
			Title:              raw.Title,
			Description:        raw.Description,
			Actions:            raw.Actions,
			ContentSuggestions: raw.ContentSuggestions,
			Channels:           raw.Channels,
			Order:              i + 1,
		}
		if step.Phase == "" {
			step.Phase = phaseOrder[min(i, len(phaseOrder)-1)]
		}
		if step.Title == "" {
			step.Title = fmt.Sprintf("Etapa %d", i+1)
		}
		if step.Actions == nil {
			step.Actions = []string{}
		}
		if step.ContentSuggestions == nil {
			step.ContentSuggestions = []string{}
		}
		if step.Channels == nil {
			step.Channels = []string{}
		}
		steps = append(steps, step)
	}

	// Every phase gets at least one step.
	for i, phase := range phaseOrder {
		if !hasPhase(steps, phase) {
			info := phaseInfo[phase]
			steps = append(steps, Step{
				ID:                 fmt.Sprintf("step-%d", len(steps)+1),
				Phase:              phase,
				Title:              info.name,
				Description:        info.description,
				Actions:            []string{},
				ContentSuggestions: []string{},
				Channels:           []string{},
				Order:              i + 1,
			})
		}
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Order < steps[j].Order })

	now := s.now().UTC()
	return Structure{
		ID:             fmt.Sprintf("funnel-%d", now.UnixMilli()),
		Name:           "Funil ERL - " + product,
		Product:        product,
		TargetAudience: targetAudience,
		Steps:          steps,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func hasPhase(steps []Step, phase Phase) bool {
	for _, s := range steps {
		if s.Phase == phase {
			return true
		}
	}
	return false
}

func buildPrompt(product, targetAudience string, profile diagnostic.Profile) string {
	profileLine := ""
	if profile != "" {
		profileLine = fmt.Sprintf("Perfil: %s\n", profile)
	}
	return fmt.Sprintf(`Crie um funil ERL (Entrada, Relacionamento, Lucro) completo para:

Produto: %s
Público-alvo: %s
%s
Para cada fase (Entrada, Relacionamento, Lucro), gere:
- Título da etapa
- Descrição do objetivo
- 3-5 ações específicas
- 3-5 sugestões de conteúdo
- 2-3 canais recomendados

Responda em JSON com esta estrutura:
{
  "steps": [
    {
      "phase": "entrada" | "relacionamento" | "lucro",
      "title": "título",
      "description": "descrição",
      "actions": ["ação1", "ação2"],
      "contentSuggestions": ["conteúdo1", "conteúdo2"],
      "channels": ["canal1", "canal2"]
    }
  ]
}

Responda APENAS com JSON válido, sem markdown.`, product, targetAudience, profileLine)
}

func (s *Service) basicFunnel(product, targetAudience string) Structure {
	now := s.now().UTC()
	return Structure{
		ID:             fmt.Sprintf("funnel-%d", now.UnixMilli()),
		Name:           "Funil ERL - " + product,
		Product:        product,
		TargetAudience: targetAudience,
		CreatedAt:      now,
		UpdatedAt:      now,
		Steps: []Step{
			{
				ID:                 "step-1",
				Phase:              PhaseEntrada,
				Title:              "Atração de Leads",
				Description:        "Capturar atenção do público-alvo através de conteúdo de valor",
				Actions:            []string{"Criar conteúdo educativo", "Oferecer lead magnet", "Usar redes sociais"},
				ContentSuggestions: []string{"Posts educativos", "E-book gratuito", "Webinar"},
				Channels:           []string{"Instagram", "Facebook", "YouTube"},
				Order:              1,
			},
			{
				ID:                 "step-2",
				Phase:              PhaseRelacionamento,
				Title:              "Nutrição e Confiança",
				Description:        "Construir relacionamento e demonstrar valor",
				Actions:            []string{"Enviar sequência de emails", "Oferecer conteúdo exclusivo", "Interagir ativamente"},
				ContentSuggestions: []string{"Email marketing", "Grupo exclusivo", "Casos de sucesso"},
				Channels:           []string{"Email", "WhatsApp", "Grupo privado"},
				Order:              2,
			},
			{
				ID:                 "step-3",
				Phase:              PhaseLucro,
				Title:              "Conversão",
				Description:        "Apresentar oferta e converter leads em clientes",
				Actions:            []string{"Apresentar produto", "Oferecer bônus", "Criar urgência"},
				ContentSuggestions: []string{"Página de vendas", "Depoimentos", "Oferta especial"},
				Channels:           []string{"Landing page", "Email", "WhatsApp"},
				Order:              3,
			},
		},
	}
}

func funnelsKey(email string) string {
	return "erl_lia_funnels_" + identity.Namespace(email)
}

// Save appends the funnel to the user's stored list.
func (s *Service) Save(ctx context.Context, email string, funnel Structure) error {
	funnels, err := s.List(ctx, email)
	if err != nil {
		return err
	}
	funnels = append(funnels, funnel)
	raw, err := json.Marshal(funnels)
	if err != nil {
		return fmt.Errorf("funnel: marshal funnels: %w", err)
	}
	if err := s.kv.Set(ctx, funnelsKey(email), string(raw)); err != nil {
		return fmt.Errorf("funnel: save funnels: %w", err)
	}
	return nil
}

// List returns the user's stored funnels, empty on missing or corrupt data.
func (s *Service) List(ctx context.Context, email string) ([]Structure, error) {
	raw, err := s.kv.Get(ctx, funnelsKey(email))
	if err != nil {
		return nil, fmt.Errorf("funnel: load funnels: %w", err)
	}
	if raw == "" {
		return []Structure{}, nil
	}
	var funnels []Structure
	if err := json.Unmarshal([]byte(raw), &funnels); err != nil {
		s.logger.Warn("stored funnels unparseable, ignoring", "error", err)
		return []Structure{}, nil
	}
	return funnels, nil
}
