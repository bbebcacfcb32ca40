package conversation

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"

	"github.com/LionGab/lyla-erl/internal/thread"
)

// Default reply when the model returns no usable content at all.
const emptyResponseFallback = "Desculpe, não consegui processar sua resposta no momento. Podemos tentar novamente?"

// GeminiClient implements LLMClient using Google's Gemini API. Text-only
// turns use the default model; turns carrying inline media use the
// image-capable model.
type GeminiClient struct {
	client       *genai.Client
	modelID      string
	imageModelID string
	tracer       trace.Tracer
}

// NewGeminiClient creates a new Gemini LLM client.
func NewGeminiClient(ctx context.Context, apiKey, modelID, imageModelID string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("conversation: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}
	if strings.TrimSpace(imageModelID) == "" {
		imageModelID = modelID
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("conversation: failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client:       client,
		modelID:      modelID,
		imageModelID: imageModelID,
		tracer:       otel.Tracer("lyla.internal.conversation.gemini"),
	}, nil
}

// Generate sends one conversation turn to Gemini and returns the reply.
func (c *GeminiClient) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	parts, err := buildParts(req)
	if err != nil {
		return GenerateResponse{}, err
	}
	if len(parts) == 0 {
		return GenerateResponse{}, ErrNoContent
	}

	modelID := c.modelID
	if req.ImageData != "" || req.AudioData != "" {
		modelID = c.imageModelID
	}
	model := c.client.GenerativeModel(modelID)

	if req.Temperature > 0 {
		model.SetTemperature(req.Temperature)
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(req.MaxTokens)
	}
	if strings.TrimSpace(req.SystemPrompt) != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.SystemPrompt))
	}

	cs := model.StartChat()
	for _, msg := range req.History {
		content := strings.TrimSpace(msg.Text)
		if content == "" {
			continue
		}
		role := "user"
		if msg.Sender == thread.SenderAI {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(content)},
		})
	}

	ctx, span := c.tracer.Start(ctx, "conversation.gemini.generate")
	defer span.End()

	resp, err := cs.SendMessage(ctx, parts...)
	if err != nil {
		span.RecordError(err)
		return GenerateResponse{}, fmt.Errorf("conversation: gemini completion failed: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return GenerateResponse{}, errors.New("conversation: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return GenerateResponse{Text: emptyResponseFallback}, nil
	}

	var out GenerateResponse
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			text.WriteString(string(p))
		case genai.Blob:
			out.ImageURL = fmt.Sprintf("data:%s;base64,%s", p.MIMEType, base64.StdEncoding.EncodeToString(p.Data))
			out.MimeType = p.MIMEType
		}
	}
	out.Text = strings.TrimSpace(text.String())
	if out.Text == "" && out.ImageURL == "" {
		out.Text = emptyResponseFallback
	}
	return out, nil
}

// buildParts assembles the new-content parts, decoding inline media.
func buildParts(req GenerateRequest) ([]genai.Part, error) {
	var parts []genai.Part

	if req.ImageData != "" {
		data, err := decodeInline(req.ImageData)
		if err != nil {
			return nil, fmt.Errorf("%w: imagem base64 inválida", ErrInvalidMedia)
		}
		if req.ImageMimeType == "" {
			return nil, fmt.Errorf("%w: tipo MIME da imagem é obrigatório", ErrInvalidMedia)
		}
		parts = append(parts, genai.Blob{MIMEType: req.ImageMimeType, Data: data})
	}

	if req.AudioData != "" {
		data, err := decodeInline(req.AudioData)
		if err != nil {
			return nil, fmt.Errorf("%w: áudio base64 inválido", ErrInvalidMedia)
		}
		if req.AudioMimeType == "" {
			return nil, fmt.Errorf("%w: tipo MIME do áudio é obrigatório", ErrInvalidMedia)
		}
		parts = append(parts, genai.Blob{MIMEType: req.AudioMimeType, Data: data})
	}

	if req.Text != "" {
		parts = append(parts, genai.Text(req.Text))
	}
	return parts, nil
}

// decodeInline accepts either raw base64 or a full data URL.
func decodeInline(s string) ([]byte, error) {
	if idx := strings.Index(s, ","); idx >= 0 {
		s = s[idx+1:]
	}
	if s == "" {
		return nil, errors.New("empty payload")
	}
	return base64.StdEncoding.DecodeString(s)
}

// Close releases resources held by the Gemini client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
