package handlers

import (
	"net/http"

	"github.com/LionGab/lyla-erl/internal/diagnostic"
	"github.com/LionGab/lyla-erl/pkg/logging"
)

// DiagnosticHandler serves the questionnaire and runs the diagnostic.
type DiagnosticHandler struct {
	elaborator *diagnostic.Elaborator
	store      *diagnostic.Store
	logger     *logging.Logger
}

func NewDiagnosticHandler(elaborator *diagnostic.Elaborator, store *diagnostic.Store, logger *logging.Logger) *DiagnosticHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DiagnosticHandler{elaborator: elaborator, store: store, logger: logger}
}

// Questions returns the static questionnaire catalog.
func (h *DiagnosticHandler) Questions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"questions": diagnostic.Questions()})
}

// Submit scores the submitted answers, elaborates the result and persists
// the snapshot.
func (h *DiagnosticHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answers []diagnostic.Answer `json:"answers"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if len(req.Answers) == 0 {
		writeError(w, http.StatusBadRequest, "nenhuma resposta enviada")
		return
	}

	email := userEmail(r)
	result := h.elaborator.Process(r.Context(), req.Answers)

	if err := h.store.Save(r.Context(), email, result, req.Answers); err != nil {
		h.logger.Error("failed to persist diagnostic snapshot", "error", err)
	}

	writeJSON(w, http.StatusOK, result)
}

// Latest returns the stored diagnostic snapshot, 404 when none exists.
func (h *DiagnosticHandler) Latest(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Load(r.Context(), userEmail(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "falha ao carregar diagnóstico")
		return
	}
	if snap == nil {
		writeError(w, http.StatusNotFound, "nenhum diagnóstico encontrado")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
