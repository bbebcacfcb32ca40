package conversation

import (
	"fmt"
	"strings"

	"github.com/LionGab/lyla-erl/internal/onboarding"
	"github.com/LionGab/lyla-erl/internal/thread"
)

const maxContextLength = 2000

var styleDescriptions = map[string]string{
	"direto":       "Respostas curtas, diretas ao ponto, sem enrolação",
	"amigavel":     "Tom conversacional, caloroso, como um amigo experiente",
	"profissional": "Linguagem formal, termos técnicos, foco em precisão",
	"motivacional": "Tom energético, encorajador, foco em potencial e resultados",
	"educativo":    "Explicações detalhadas, exemplos práticos, passo a passo",
}

// EnrichContext builds the bracketed context block sent alongside the system
// prompt: the user's onboarding profile plus key facts extracted from the
// recent history.
func EnrichContext(messages []thread.Message, data *onboarding.Data) string {
	var parts []string

	if data != nil {
		var info []string
		add := func(label, value string) {
			if value != "" {
				info = append(info, fmt.Sprintf("%s: %s", label, value))
			}
		}
		add("Profissão", data.Profissao)
		add("Habilidade principal", data.HabilidadePrincipal)
		add("Oferta atual", data.OfertaAtual)
		if data.PrecoAtual > 0 {
			info = append(info, fmt.Sprintf("Preço atual: R$ %.2f", data.PrecoAtual))
		}
		add("Tempo disponível", data.TempoDisponivel)
		add("Plataforma principal", data.PlataformaPrincipal)
		add("Formato preferido", data.FormatoPreferido)
		if data.MetaFaturamento > 0 {
			info = append(info, fmt.Sprintf("Meta de faturamento: R$ %.2f", data.MetaFaturamento))
		}
		add("Público-alvo", data.PublicoAlvo)
		add("Problema principal", data.ProblemaPrincipal)
		add("Diferencial", data.Diferencial)
		if desc, ok := styleDescriptions[data.EstiloResposta]; ok {
			info = append(info, fmt.Sprintf("Estilo de resposta preferido: %s", desc))
		} else if data.EstiloResposta != "" {
			info = append(info, fmt.Sprintf("Estilo de resposta preferido: %s", data.EstiloResposta))
		}
		if data.Observacoes != "" {
			info = append(info, fmt.Sprintf("Observações do usuário sobre como quer ser respondido: %s", data.Observacoes))
		}
		if len(info) > 0 {
			parts = append(parts, "[CONTEXTO DO USUÁRIO]\n"+strings.Join(info, "\n"))
		}
	}

	// Key facts from the last five messages.
	recent := messages
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	var facts []string
	for _, msg := range recent {
		if msg.Sender != thread.SenderUser || msg.Text == "" {
			continue
		}
		lower := strings.ToLower(msg.Text)
		snippet := truncate(msg.Text, 100)
		if strings.Contains(lower, "produto") || strings.Contains(lower, "oferta") {
			facts = append(facts, "Mencionou produto/oferta: "+snippet)
		}
		if strings.Contains(lower, "preço") || strings.Contains(lower, "valor") || strings.Contains(lower, "r$") {
			facts = append(facts, "Mencionou preço: "+snippet)
		}
		if strings.Contains(lower, "funil") || strings.Contains(lower, "venda") {
			facts = append(facts, "Mencionou funil/vendas: "+snippet)
		}
	}
	if len(facts) > 0 {
		parts = append(parts, "[INFORMAÇÕES RECENTES DA CONVERSA]\n"+strings.Join(facts, "\n"))
	}

	return strings.Join(parts, "\n\n")
}

// OptimizeContext trims an oversized context block, keeping the section
// headers and as many lines as fit.
func OptimizeContext(context string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = maxContextLength
	}
	if len(context) <= maxLength {
		return context
	}

	lines := strings.Split(context, "\n")
	kept := make([]string, 0, len(lines))
	seen := make(map[string]bool)
	length := 0

	for _, line := range lines {
		if strings.Contains(line, "[CONTEXTO DO USUÁRIO]") || strings.Contains(line, "[INFORMAÇÕES RECENTES") {
			kept = append(kept, line)
			seen[line] = true
			length += len(line)
		}
	}
	for _, line := range lines {
		if seen[line] {
			continue
		}
		if length+len(line) >= maxLength {
			continue
		}
		kept = append(kept, line)
		seen[line] = true
		length += len(line)
	}
	return strings.Join(kept, "\n")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
