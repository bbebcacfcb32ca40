package handlers

import (
	"net/http"
	"strings"

	"github.com/LionGab/lyla-erl/internal/diagnostic"
	"github.com/LionGab/lyla-erl/internal/funnel"
	"github.com/LionGab/lyla-erl/pkg/logging"
)

// FunnelHandler generates and lists ERL funnels.
type FunnelHandler struct {
	service *funnel.Service
	logger  *logging.Logger
}

func NewFunnelHandler(service *funnel.Service, logger *logging.Logger) *FunnelHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &FunnelHandler{service: service, logger: logger}
}

// Generate builds a funnel for the product and audience and appends it to
// the user's stored list.
func (h *FunnelHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Product        string             `json:"product"`
		TargetAudience string             `json:"targetAudience"`
		Profile        diagnostic.Profile `json:"profile,omitempty"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Product) == "" || strings.TrimSpace(req.TargetAudience) == "" {
		writeError(w, http.StatusBadRequest, "produto e público-alvo são obrigatórios")
		return
	}

	email := userEmail(r)
	result := h.service.Generate(r.Context(), req.Product, req.TargetAudience, req.Profile)
	if err := h.service.Save(r.Context(), email, result); err != nil {
		h.logger.Error("failed to persist funnel", "error", err)
	}
	writeJSON(w, http.StatusOK, result)
}

// List returns the user's stored funnels.
func (h *FunnelHandler) List(w http.ResponseWriter, r *http.Request) {
	funnels, err := h.service.List(r.Context(), userEmail(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "falha ao carregar funis")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"funnels": funnels})
}
