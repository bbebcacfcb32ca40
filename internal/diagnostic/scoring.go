package diagnostic

// tier is the low/mid split of a scored question's options. Any other answer
// string counts as the high tier.
type tier struct {
	low string
	mid string
	// lowHighMultiplier scales the weight added by the low and high tiers.
	// The time question intentionally contributes weight*1 there, unlike the
	// other three questions' weight*2.
	lowHighMultiplier int
}

var scoredQuestions = map[string]tier{
	QuestionExperience: {
		low:               "Iniciante (menos de 6 meses)",
		mid:               "Intermediário (6 meses - 2 anos)",
		lowHighMultiplier: 2,
	},
	QuestionAudience: {
		low:               "Não, ainda não tenho público",
		mid:               "Sim, tenho alguns seguidores",
		lowHighMultiplier: 2,
	},
	QuestionResources: {
		low:               "Até R$ 500",
		mid:               "R$ 500 - R$ 2.000",
		lowHighMultiplier: 2,
	},
	QuestionTime: {
		low:               "Menos de 10 horas",
		mid:               "10-20 horas",
		lowHighMultiplier: 1,
	},
}

// ScoreProfile classifies the answers into profile A or B. Low-tier answers
// push toward A, high-tier toward B, mid-tier toward both equally. Answers
// whose question id is not in the catalog, or not one of the four scored
// ids, are skipped. Ties resolve to A.
func ScoreProfile(answers []Answer, catalog []Question) Profile {
	byID := make(map[string]Question, len(catalog))
	for _, q := range catalog {
		byID[q.ID] = q
	}

	scoreA, scoreB := 0, 0
	for _, ans := range answers {
		q, ok := byID[ans.QuestionID]
		if !ok {
			continue
		}
		t, scored := scoredQuestions[q.ID]
		if !scored {
			continue
		}

		switch ans.Answer {
		case t.low:
			scoreA += q.Weight * t.lowHighMultiplier
		case t.mid:
			scoreA += q.Weight
			scoreB += q.Weight
		default:
			scoreB += q.Weight * t.lowHighMultiplier
		}
	}

	if scoreA >= scoreB {
		return ProfileA
	}
	return ProfileB
}
