// Package diagnostic classifies a user's business readiness from a weighted
// questionnaire and elaborates the result through the language model.
package diagnostic

// Profile is the binary business-readiness classification.
type Profile string

const (
	// ProfileA is the beginner track: no audience yet, small budget,
	// starting out.
	ProfileA Profile = "A"
	// ProfileB is the established track: engaged audience, bigger budget,
	// experience.
	ProfileB Profile = "B"
)

// QuestionType discriminates how a question is answered.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple-choice"
	TypeText           QuestionType = "text"
	TypeScale          QuestionType = "scale"
)

// Question is a static catalog entry.
type Question struct {
	ID       string       `json:"id"`
	Question string       `json:"question"`
	Type     QuestionType `json:"type"`
	Options  []string     `json:"options,omitempty"`
	Weight   int          `json:"weight"`
}

// Answer is one user answer, unique by QuestionID, order-independent.
type Answer struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

// Result is the derived diagnostic. Profile and the scoring are
// deterministic; the narrative fields come from the LLM elaboration and
// degrade to a template on failure.
type Result struct {
	Profile         Profile  `json:"profile"`
	Confidence      int      `json:"confidence"`
	Reasoning       string   `json:"reasoning"`
	Recommendations []string `json:"recommendations"`
	Strengths       []string `json:"strengths"`
	AreasForGrowth  []string `json:"areasForGrowth"`
}
