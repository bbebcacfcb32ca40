package conversation

import (
	"context"
	"strings"

	"github.com/LionGab/lyla-erl/internal/thread"
)

// GenerateRequest carries one turn of a conversation to the model. History is
// the ordered prior transcript; Text plus the optional inline media form the
// new user content.
type GenerateRequest struct {
	History       []thread.Message
	Text          string
	ImageData     string // base64, no data-URL prefix
	ImageMimeType string
	AudioData     string
	AudioMimeType string
	SystemPrompt  string
	Temperature   float32
	MaxTokens     int32
}

// GenerateResponse is the model's reply. ImageURL, when present, is a data
// URL ready for the client.
type GenerateResponse struct {
	Text     string
	ImageURL string
	MimeType string
}

// LLMClient abstracts the hosted language model backend.
type LLMClient interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
}

// StripFences removes markdown code fences from model output so the payload
// can be fed to a JSON decoder. Models frequently wrap JSON in ```json blocks
// despite instructions not to.
func StripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
