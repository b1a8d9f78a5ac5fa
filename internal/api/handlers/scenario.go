package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/wonny/capexwatch/internal/brain"
	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/internal/scenario"
	"github.com/wonny/capexwatch/pkg/logger"
)

// ScenarioHandler serves presets and ad-hoc what-if simulations
type ScenarioHandler struct {
	orchestrator *brain.Orchestrator
	logger       *logger.Logger
}

// NewScenarioHandler creates a new scenario handler
func NewScenarioHandler(o *brain.Orchestrator, log *logger.Logger) *ScenarioHandler {
	return &ScenarioHandler{
		orchestrator: o,
		logger:       log,
	}
}

// PresetItem is one configured preset
type PresetItem struct {
	Name       string                       `json:"name"`
	Parameters contracts.ScenarioParameters `json:"parameters"`
}

// GetPresets lists the configured scenario presets in report order
// GET /api/scenarios/presets
func (h *ScenarioHandler) GetPresets(w http.ResponseWriter, r *http.Request) {
	presets := scenario.Presets(h.orchestrator.Config())
	items := make([]PresetItem, 0, len(presets))
	for _, p := range presets {
		items = append(items, PresetItem{Name: p.Name, Parameters: p.Params})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"presets": items,
		"count":   len(items),
	})
}

// Simulate runs one scenario against the current indicators without persisting
// POST /api/scenarios/simulate
func (h *ScenarioHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req ScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sc, err := req.resolve(h.orchestrator)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sim, err := h.orchestrator.Simulate(r.Context(), sc)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).Error("Simulation failed")
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, sim)
}
