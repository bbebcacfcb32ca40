package handlers

import (
	"net/http"

	"github.com/LionGab/lyla-erl/internal/diagnostic"
	"github.com/LionGab/lyla-erl/internal/recommend"
	"github.com/LionGab/lyla-erl/pkg/logging"
)

// RecommendHandler generates and serves product recommendations.
type RecommendHandler struct {
	service *recommend.Service
	logger  *logging.Logger
}

func NewRecommendHandler(service *recommend.Service, logger *logging.Logger) *RecommendHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &RecommendHandler{service: service, logger: logger}
}

// Generate builds the recommendation set for the given profile and persists
// it. Generation itself never fails; it degrades to the fixed fallback.
func (h *RecommendHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Profile diagnostic.Profile `json:"profile"`
		Context string             `json:"context,omitempty"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if req.Profile != diagnostic.ProfileA && req.Profile != diagnostic.ProfileB {
		writeError(w, http.StatusBadRequest, "perfil deve ser A ou B")
		return
	}

	email := userEmail(r)
	result := h.service.Generate(r.Context(), req.Profile, req.Context)
	if err := h.service.Save(r.Context(), email, result); err != nil {
		h.logger.Error("failed to persist recommendations", "error", err)
	}
	writeJSON(w, http.StatusOK, result)
}

// Latest returns the stored recommendation set, 404 when none exists.
func (h *RecommendHandler) Latest(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Load(r.Context(), userEmail(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "falha ao carregar recomendações")
		return
	}
	if snap == nil {
		writeError(w, http.StatusNotFound, "nenhuma recomendação encontrada")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
