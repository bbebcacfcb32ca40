package conversation

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LionGab/lyla-erl/internal/agents"
	"github.com/LionGab/lyla-erl/internal/memory"
	"github.com/LionGab/lyla-erl/internal/observability/metrics"
	"github.com/LionGab/lyla-erl/internal/onboarding"
	"github.com/LionGab/lyla-erl/internal/thread"
	"github.com/LionGab/lyla-erl/pkg/logging"
)

// SendInput is one user turn handed to the orchestrator.
type SendInput struct {
	Text          string `json:"text"`
	ImageData     string `json:"imageData,omitempty"`
	ImageMimeType string `json:"imageMimeType,omitempty"`
	AudioData     string `json:"audioData,omitempty"`
	AudioMimeType string `json:"audioMimeType,omitempty"`
	AgentID       string `json:"agentId,omitempty"`
	Remote        bool   `json:"remote,omitempty"`
}

// SendResult carries both sides of the exchange back to the transport layer.
type SendResult struct {
	UserMessage thread.Message `json:"userMessage"`
	AIMessage   thread.Message `json:"aiMessage"`
	Failed      bool           `json:"failed,omitempty"`
}

// Service orchestrates one chat turn: persist the user message, call the
// model inside the retry envelope, persist the reply. LLM failures surface as
// an assistant message in the thread; the conversation stays usable.
type Service struct {
	llm        LLMClient
	store      *memory.Facade
	onboarding *onboarding.Store
	logger     *logging.Logger
	metrics    *metrics.LLMMetrics
	policy     retryPolicy
	now        func() time.Time
}

// ServiceOptions tunes the retry envelope.
type ServiceOptions struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Timeout     time.Duration
}

func NewService(llm LLMClient, store *memory.Facade, ob *onboarding.Store, logger *logging.Logger, m *metrics.LLMMetrics, opts ServiceOptions) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		llm:        llm,
		store:      store,
		onboarding: ob,
		logger:     logger,
		metrics:    m,
		policy: retryPolicy{
			maxAttempts: opts.MaxAttempts,
			baseDelay:   opts.BaseDelay,
			timeout:     opts.Timeout,
		},
		now: time.Now,
	}
}

// StartConversation opens a new conversation for the user and agent.
func (s *Service) StartConversation(ctx context.Context, email, agentID string) (memory.Conversation, error) {
	return s.store.CreateConversation(ctx, email, agentID)
}

// History returns the conversation's message log.
func (s *Service) History(ctx context.Context, email, conversationID string, remote bool) ([]thread.Message, error) {
	return s.store.LoadMessages(ctx, email, conversationID, remote)
}

// SendMessage runs one chat turn against the conversation id captured here;
// a reply arriving after the user navigated away still lands in the right
// thread. Validation failures return an error before anything is persisted;
// model failures after local persistence degrade to a friendly assistant
// message.
func (s *Service) SendMessage(ctx context.Context, email, conversationID string, in SendInput) (SendResult, error) {
	if err := validateInput(in); err != nil {
		return SendResult{}, err
	}

	userMsg := thread.Message{
		ID:        uuid.NewString(),
		Text:      in.Text,
		Sender:    thread.SenderUser,
		Timestamp: s.now().UnixMilli(),
	}
	if in.ImageData != "" {
		userMsg.ImageURL = dataURL(in.ImageMimeType, in.ImageData)
		userMsg.ImageMimeType = in.ImageMimeType
	}
	if in.AudioData != "" {
		userMsg.AudioURL = dataURL(in.AudioMimeType, in.AudioData)
	}

	// Local persistence is the durability floor; failing it fails the send.
	if err := s.store.SaveMessage(ctx, email, conversationID, userMsg, in.Remote); err != nil {
		return SendResult{}, err
	}

	history, err := s.store.LoadMessages(ctx, email, conversationID, in.Remote)
	if err != nil {
		history = []thread.Message{userMsg}
	}
	if len(history) > 0 {
		history = history[:len(history)-1]
	}

	var profile *onboarding.Data
	if s.onboarding != nil {
		profile, _ = s.onboarding.Load(ctx, email)
	}

	agent := agents.Get(in.AgentID)
	systemPrompt := agent.SystemPrompt
	if enriched := EnrichContext(history, profile); enriched != "" {
		systemPrompt += "\n\n" + OptimizeContext(enriched, maxContextLength)
	}

	req := GenerateRequest{
		History:       history,
		Text:          in.Text,
		ImageData:     in.ImageData,
		ImageMimeType: in.ImageMimeType,
		AudioData:     in.AudioData,
		AudioMimeType: in.AudioMimeType,
		SystemPrompt:  systemPrompt,
	}

	start := s.now()
	var resp GenerateResponse
	err = withRetry(ctx, s.policy, s.logger, func(ctx context.Context) error {
		var callErr error
		resp, callErr = s.llm.Generate(ctx, req)
		return callErr
	})
	elapsed := s.now().Sub(start).Seconds()

	aiMsg := thread.Message{
		ID:        uuid.NewString(),
		Sender:    thread.SenderAI,
		Timestamp: s.now().UnixMilli(),
	}

	failed := false
	if err != nil {
		cat := Classify(err)
		s.metrics.ObserveRequest(cat.String(), elapsed)
		s.logger.Error("llm call failed after retries",
			"conversation_id", conversationID,
			"category", cat.String(),
			"error", err,
		)
		aiMsg.Text = cat.UserMessage()
		failed = true
	} else {
		s.metrics.ObserveRequest("ok", elapsed)
		aiMsg.Text = resp.Text
		aiMsg.ImageURL = resp.ImageURL
		aiMsg.ImageMimeType = resp.MimeType
	}

	if saveErr := s.store.SaveMessage(ctx, email, conversationID, aiMsg, in.Remote); saveErr != nil {
		s.logger.Error("failed to persist assistant message", "conversation_id", conversationID, "error", saveErr)
	}

	return SendResult{UserMessage: userMsg, AIMessage: aiMsg, Failed: failed}, nil
}

func validateInput(in SendInput) error {
	if strings.TrimSpace(in.Text) == "" && in.ImageData == "" && in.AudioData == "" {
		return ErrNoContent
	}
	if in.ImageData != "" {
		if in.ImageMimeType == "" || !validBase64(in.ImageData) {
			return ErrInvalidMedia
		}
	}
	if in.AudioData != "" {
		if in.AudioMimeType == "" || !validBase64(in.AudioData) {
			return ErrInvalidMedia
		}
	}
	return nil
}

func validBase64(s string) bool {
	if idx := strings.Index(s, ","); idx >= 0 {
		s = s[idx+1:]
	}
	if s == "" {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(s)
	return err == nil
}

func dataURL(mimeType, data string) string {
	if strings.HasPrefix(data, "data:") {
		return data
	}
	return "data:" + mimeType + ";base64," + data
}
