package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/LionGab/lyla-erl/internal/agents"
	"github.com/LionGab/lyla-erl/internal/conversation"
	"github.com/LionGab/lyla-erl/pkg/logging"
)

// ChatHandler runs chat turns through the conversation service.
type ChatHandler struct {
	service *conversation.Service
	logger  *logging.Logger
}

func NewChatHandler(service *conversation.Service, logger *logging.Logger) *ChatHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatHandler{service: service, logger: logger}
}

// Agents lists the available assistant personas.
func (h *ChatHandler) Agents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"agents": agents.List()})
}

// Start opens a conversation for the user and chosen agent.
func (h *ChatHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID string `json:"agentId"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	conv, err := h.service.StartConversation(r.Context(), userEmail(r), req.AgentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "falha ao iniciar conversa")
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

// Send runs one chat turn. A model failure still returns 200 with the
// degraded assistant message; only validation and persistence failures are
// HTTP errors.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	var in conversation.SendInput
	if !readJSON(w, r, &in) {
		return
	}

	result, err := h.service.SendMessage(r.Context(), userEmail(r), conversationID, in)
	if err != nil {
		if errors.Is(err, conversation.ErrNoContent) || errors.Is(err, conversation.ErrInvalidMedia) {
			writeError(w, http.StatusBadRequest, conversation.Classify(err).UserMessage())
			return
		}
		h.logger.Error("chat turn failed", "conversation_id", conversationID, "error", err)
		writeError(w, http.StatusInternalServerError, "falha ao enviar mensagem")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// History returns the conversation's message log.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	remote := r.URL.Query().Get("remote") == "true"

	msgs, err := h.service.History(r.Context(), userEmail(r), conversationID, remote)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "falha ao carregar histórico")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}
