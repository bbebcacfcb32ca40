package handlers

import (
	"net/http"

	"github.com/LionGab/lyla-erl/internal/financial"
	"github.com/LionGab/lyla-erl/pkg/logging"
)

// SimulationHandler runs financial projections.
type SimulationHandler struct {
	store  *financial.Store
	logger *logging.Logger
}

func NewSimulationHandler(store *financial.Store, logger *logging.Logger) *SimulationHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SimulationHandler{store: store, logger: logger}
}

// SimulationResponse bundles everything the simulator screen renders.
type SimulationResponse struct {
	Parameters financial.Parameters   `json:"parameters"`
	Projection financial.Projection   `json:"projection"`
	Scenarios  []financial.Scenario   `json:"scenarios"`
	Chart      []financial.ChartPoint `json:"chart"`
}

// Run validates the parameters, projects them and persists the snapshot.
func (h *SimulationHandler) Run(w http.ResponseWriter, r *http.Request) {
	var params financial.Parameters
	if !readJSON(w, r, &params) {
		return
	}
	if err := financial.Validate(params); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	projection := financial.Project(params)
	resp := SimulationResponse{
		Parameters: params,
		Projection: projection,
		Scenarios:  financial.Scenarios(params),
		Chart:      financial.ChartSeries(params),
	}

	if err := h.store.Save(r.Context(), userEmail(r), params, projection); err != nil {
		h.logger.Error("failed to persist simulation snapshot", "error", err)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Latest returns the stored simulation snapshot, 404 when none exists.
func (h *SimulationHandler) Latest(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Load(r.Context(), userEmail(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "falha ao carregar simulação")
		return
	}
	if snap == nil {
		writeError(w, http.StatusNotFound, "nenhuma simulação encontrada")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
