package diagnostic

// Recognized question ids. Answers to any other id are kept as narrative
// context but contribute nothing to the score.
const (
	QuestionExperience = "experience"
	QuestionAudience   = "audience"
	QuestionResources  = "resources"
	QuestionTime       = "time"
	QuestionExpertise  = "expertise"
)

var questions = []Question{
	{
		ID:       QuestionExperience,
		Question: "Qual seu nível de experiência com negócios digitais?",
		Type:     TypeMultipleChoice,
		Options: []string{
			"Iniciante (menos de 6 meses)",
			"Intermediário (6 meses - 2 anos)",
			"Avançado (mais de 2 anos)",
		},
		Weight: 3,
	},
	{
		ID:       QuestionAudience,
		Question: "Você já tem um público-alvo definido e engajado?",
		Type:     TypeMultipleChoice,
		Options: []string{
			"Não, ainda não tenho público",
			"Sim, tenho alguns seguidores",
			"Sim, tenho uma audiência engajada",
		},
		Weight: 4,
	},
	{
		ID:       QuestionResources,
		Question: "Quanto você pode investir mensalmente em marketing?",
		Type:     TypeMultipleChoice,
		Options: []string{
			"Até R$ 500",
			"R$ 500 - R$ 2.000",
			"Acima de R$ 2.000",
		},
		Weight: 3,
	},
	{
		ID:       QuestionTime,
		Question: "Quantas horas por semana você pode dedicar ao negócio?",
		Type:     TypeMultipleChoice,
		Options: []string{
			"Menos de 10 horas",
			"10-20 horas",
			"Mais de 20 horas",
		},
		Weight: 2,
	},
	{
		ID:       QuestionExpertise,
		Question: "Você tem expertise em alguma área específica?",
		Type:     TypeText,
		Weight:   2,
	},
}

// Questions returns a copy of the fixed questionnaire catalog.
func Questions() []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}
