package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/capexwatch/internal/brain"
	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/internal/scenario"
	"github.com/wonny/capexwatch/pkg/logger"
)

// Broadcaster pushes a finished run's dashboard to live subscribers
type Broadcaster interface {
	Broadcast(runID string, d *contracts.WarningDashboard)
}

// PipelineHandler handles pipeline-related API endpoints (S0-S5)
// ⭐ SSOT: 파이프라인 API 핸들러는 여기서만
type PipelineHandler struct {
	orchestrator *brain.Orchestrator
	broadcaster  Broadcaster // optional
	logger       *logger.Logger
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(o *brain.Orchestrator, b Broadcaster, log *logger.Logger) *PipelineHandler {
	return &PipelineHandler{
		orchestrator: o,
		broadcaster:  b,
		logger:       log,
	}
}

// DashboardResponse is the latest dashboard with the run that produced it
type DashboardResponse struct {
	RunID     string                      `json:"run_id"`
	Dashboard *contracts.WarningDashboard `json:"dashboard"`
}

// GetDashboard returns the dashboard of the latest completed run
// GET /api/dashboard
func (h *PipelineHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	runID, d, err := h.orchestrator.LatestDashboard(r.Context())
	if err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound {
			respondError(w, status, "No completed run yet")
			return
		}
		h.logger.WithError(err).Error("Failed to load latest dashboard")
		respondError(w, status, "Failed to load dashboard")
		return
	}

	respondJSON(w, http.StatusOK, DashboardResponse{RunID: runID, Dashboard: d})
}

// GetArtifact returns one stored artifact as-is
// GET /api/runs/{runID}/{kind}   (runID may be "latest")
func (h *PipelineHandler) GetArtifact(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind, err := contracts.ParseArtifactKind(vars["kind"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	runID, payload, err := h.orchestrator.LoadRaw(r.Context(), vars["runID"], kind)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).WithField("kind", kind).Error("Failed to load artifact")
		}
		respondError(w, status, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Run-ID", runID)
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// RunRequest triggers a pipeline run
type RunRequest struct {
	FromStage  string            `json:"from_stage,omitempty"` // "S3" or "S3_SUPPLY_DEMAND"
	ReuseRunID string            `json:"reuse_run_id,omitempty"`
	Scenarios  []ScenarioRequest `json:"scenarios,omitempty"`
}

// RunResponse summarizes a finished run
type RunResponse struct {
	RunID       string                 `json:"run_id"`
	Status      contracts.Severity     `json:"status"`
	AlertLevel  contracts.Severity     `json:"alert_level"`
	HealthScore float64                `json:"health_score"`
	StressScore float64                `json:"stress_score"`
	Active      []string               `json:"active_warnings"`
	Manifest    *contracts.RunManifest `json:"manifest"`
}

// TriggerRun executes the pipeline synchronously
// POST /api/runs
func (h *PipelineHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	config := brain.RunConfig{ReuseRunID: req.ReuseRunID}
	if req.FromStage != "" {
		stage, err := contracts.ParseStage(req.FromStage)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		config.FromStage = stage
	}
	for _, sr := range req.Scenarios {
		sc, err := sr.resolve(h.orchestrator)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		config.Scenarios = append(config.Scenarios, sc)
	}

	result, err := h.orchestrator.Run(r.Context(), config)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.Broadcast(result.RunID, result.Dashboard)
	}

	respondJSON(w, http.StatusCreated, RunResponse{
		RunID:       result.RunID,
		Status:      result.Dashboard.OverallStatus,
		AlertLevel:  result.Health.AlertLevel,
		HealthScore: result.Health.HealthScore,
		StressScore: result.Health.StressScore,
		Active:      result.Dashboard.ActiveWarnings,
		Manifest:    result.Manifest,
	})
}

// ScenarioRequest names a preset, or gives explicit parameters for a custom scenario
type ScenarioRequest struct {
	Name       string                        `json:"name,omitempty"`
	Preset     string                        `json:"preset,omitempty"`
	Parameters *contracts.ScenarioParameters `json:"parameters,omitempty"`
}

func (sr ScenarioRequest) resolve(o *brain.Orchestrator) (scenario.Scenario, error) {
	switch {
	case sr.Parameters != nil:
		return scenario.Custom(sr.Name, *sr.Parameters), nil
	case sr.Preset != "":
		sc, err := scenario.FromPreset(o.Config(), sr.Preset)
		if err != nil {
			return scenario.Scenario{}, err
		}
		if sr.Name != "" {
			sc.Name = sr.Name
		}
		return sc, nil
	default:
		return scenario.Scenario{}, &contracts.InvalidParameterError{Param: "scenario", Reason: "preset or parameters required"}
	}
}
