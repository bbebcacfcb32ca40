package handlers

import (
	"net/http"

	"github.com/LionGab/lyla-erl/internal/onboarding"
	"github.com/LionGab/lyla-erl/pkg/logging"
)

// OnboardingHandler reads and writes the user's business profile.
type OnboardingHandler struct {
	store  *onboarding.Store
	logger *logging.Logger
}

func NewOnboardingHandler(store *onboarding.Store, logger *logging.Logger) *OnboardingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &OnboardingHandler{store: store, logger: logger}
}

// Get returns the stored profile, 404 when onboarding was never completed.
func (h *OnboardingHandler) Get(w http.ResponseWriter, r *http.Request) {
	data, err := h.store.Load(r.Context(), userEmail(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "falha ao carregar perfil")
		return
	}
	if data == nil {
		writeError(w, http.StatusNotFound, "perfil não encontrado")
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// Put stores the profile wholesale.
func (h *OnboardingHandler) Put(w http.ResponseWriter, r *http.Request) {
	var data onboarding.Data
	if !readJSON(w, r, &data) {
		return
	}
	if err := h.store.Save(r.Context(), userEmail(r), data); err != nil {
		writeError(w, http.StatusInternalServerError, "falha ao salvar perfil")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
