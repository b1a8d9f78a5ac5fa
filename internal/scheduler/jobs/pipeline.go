package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/capexwatch/internal/brain"
	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/pkg/logger"
)

// Broadcaster receives the dashboard of every scheduled run
type Broadcaster interface {
	Broadcast(runID string, d *contracts.WarningDashboard)
}

// PipelineJob runs the full pipeline (S0-S5) on a cron schedule
type PipelineJob struct {
	orchestrator *brain.Orchestrator
	broadcaster  Broadcaster // optional
	schedule     string
	logger       *logger.Logger
}

// NewPipelineJob creates a new scheduled pipeline job
func NewPipelineJob(o *brain.Orchestrator, b Broadcaster, schedule string, log *logger.Logger) *PipelineJob {
	return &PipelineJob{
		orchestrator: o,
		broadcaster:  b,
		schedule:     schedule,
		logger:       log,
	}
}

// Name returns the job name
func (j *PipelineJob) Name() string {
	return "pipeline"
}

// Schedule returns the configured cron expression
func (j *PipelineJob) Schedule() string {
	return j.schedule
}

// Run executes the pipeline and pushes the dashboard to subscribers
func (j *PipelineJob) Run(ctx context.Context) error {
	result, err := j.orchestrator.Run(ctx, brain.RunConfig{})
	if err != nil {
		return fmt.Errorf("scheduled pipeline run: %w", err)
	}

	if j.broadcaster != nil {
		j.broadcaster.Broadcast(result.RunID, result.Dashboard)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":      result.RunID,
		"alert_level": result.Health.AlertLevel,
		"status":      result.Dashboard.OverallStatus,
		"active":      len(result.Dashboard.ActiveWarnings),
	}).Info("Scheduled pipeline run finished")

	return nil
}
