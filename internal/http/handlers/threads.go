package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/LionGab/lyla-erl/internal/thread"
	"github.com/LionGab/lyla-erl/pkg/logging"
)

// ThreadsHandler exposes thread CRUD and the legacy-history migration.
type ThreadsHandler struct {
	store  *thread.Store
	logger *logging.Logger
}

func NewThreadsHandler(store *thread.Store, logger *logging.Logger) *ThreadsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ThreadsHandler{store: store, logger: logger}
}

// List returns all of the user's threads with messages joined in.
func (h *ThreadsHandler) List(w http.ResponseWriter, r *http.Request) {
	threads, err := h.store.GetAllThreads(r.Context(), userEmail(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "falha ao carregar conversas")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"threads": threads})
}

// Create opens an empty thread.
func (h *ThreadsHandler) Create(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.CreateThread(r.Context(), userEmail(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "falha ao criar conversa")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// Messages returns one thread's message log.
func (h *ThreadsHandler) Messages(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")
	msgs, err := h.store.GetThreadMessages(r.Context(), userEmail(r), threadID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "falha ao carregar mensagens")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

// SaveMessages replaces a thread's message log wholesale.
func (h *ThreadsHandler) SaveMessages(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")
	var req struct {
		Messages []thread.Message `json:"messages"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if err := h.store.SaveThreadMessages(r.Context(), userEmail(r), threadID, req.Messages); err != nil {
		writeError(w, http.StatusInternalServerError, "falha ao salvar mensagens")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes one thread.
func (h *ThreadsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")
	if err := h.store.DeleteThread(r.Context(), userEmail(r), threadID); err != nil {
		writeError(w, http.StatusInternalServerError, "falha ao excluir conversa")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Migrate upgrades the legacy single-blob history into a thread. Responds
// with the new thread id, or null when there was nothing to migrate.
func (h *ThreadsHandler) Migrate(w http.ResponseWriter, r *http.Request) {
	id, err := h.store.MigrateOldHistory(r.Context(), userEmail(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "falha ao migrar histórico")
		return
	}
	resp := map[string]any{"threadId": nil}
	if id != "" {
		resp["threadId"] = id
	}
	writeJSON(w, http.StatusOK, resp)
}
