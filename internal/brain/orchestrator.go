package brain

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/internal/dataset"
	"github.com/wonny/capexwatch/internal/health"
	"github.com/wonny/capexwatch/internal/metrics"
	"github.com/wonny/capexwatch/internal/modelconfig"
	"github.com/wonny/capexwatch/internal/risk"
	"github.com/wonny/capexwatch/internal/scenario"
	"github.com/wonny/capexwatch/internal/supplydemand"
	"github.com/wonny/capexwatch/internal/warning"
	"github.com/wonny/capexwatch/pkg/logger"
)

// Orchestrator coordinates the entire pipeline (S0 → S5)
// ⭐ SSOT: 계산기는 순수 함수, 저장/로드/로그는 여기서만
type Orchestrator struct {
	cfg        *modelconfig.Config
	configHash string

	// Stage components
	resolver   *dataset.Resolver
	calculator *risk.Calculator
	simulator  *scenario.Simulator
	analyzer   *supplydemand.Analyzer
	evaluator  *health.Evaluator
	warnings   *warning.System

	source  dataset.Source
	store   contracts.ArtifactStore
	metrics *metrics.Metrics // optional
	logger  *logger.Logger

	// one run at a time; the latest pointer must follow completion order
	mu sync.Mutex
}

// NewOrchestrator creates a new pipeline orchestrator
func NewOrchestrator(
	cfg *modelconfig.Config,
	source dataset.Source,
	store contracts.ArtifactStore,
	m *metrics.Metrics,
	log *logger.Logger,
) (*Orchestrator, error) {
	if cfg == nil {
		return nil, &contracts.ConfigurationError{Field: "config", Message: "required"}
	}
	if source == nil || store == nil {
		return nil, &contracts.ConfigurationError{Field: "orchestrator", Message: "source and store are required"}
	}
	if log == nil {
		log = logger.NewNop()
	}

	calculator, err := risk.NewCalculator(cfg)
	if err != nil {
		return nil, fmt.Errorf("risk calculator: %w", err)
	}
	evaluator, err := health.NewEvaluator(cfg)
	if err != nil {
		return nil, fmt.Errorf("health evaluator: %w", err)
	}
	hash, err := modelconfig.Hash(cfg)
	if err != nil {
		return nil, fmt.Errorf("hash model config: %w", err)
	}

	return &Orchestrator{
		cfg:        cfg,
		configHash: hash,
		resolver:   dataset.NewResolver(cfg),
		calculator: calculator,
		simulator:  scenario.NewSimulator(cfg),
		analyzer:   supplydemand.NewAnalyzer(cfg),
		evaluator:  evaluator,
		warnings:   warning.NewSystem(cfg),
		source:     source,
		store:      store,
		metrics:    m,
		logger:     log.WithComponent("orchestrator"),
	}, nil
}

// Config returns the model configuration the pipeline runs with
func (o *Orchestrator) Config() *modelconfig.Config {
	return o.cfg
}

// Store returns the artifact store
func (o *Orchestrator) Store() contracts.ArtifactStore {
	return o.store
}

// RunConfig contains configuration for a pipeline run
type RunConfig struct {
	RunID string // generated when empty

	// FromStage > S0 reuses the upstream artifacts of ReuseRunID
	FromStage contracts.Stage
	// ReuseRunID "" or "latest" resolves to the latest completed run
	ReuseRunID string

	// Scenarios are simulated in addition to the configured presets
	Scenarios []scenario.Scenario
}

// RunResult contains the result of a pipeline run
type RunResult struct {
	RunID      string
	Manifest   *contracts.RunManifest
	Dataset    *contracts.Dataset
	Assessment *contracts.RiskAssessment
	Scenarios  *contracts.ScenarioSet
	Projection *contracts.SupplyDemandProjection
	Health     *contracts.HealthReport
	Dashboard  *contracts.WarningDashboard
	Success    bool
	Error      error
	Duration   time.Duration
}

// Run executes the pipeline from config.FromStage to S5
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	startTime := time.Now()
	if config.RunID == "" {
		config.RunID = GenerateRunID()
	}
	if config.FromStage == "" {
		config.FromStage = contracts.StageIndicators
	}
	from := config.FromStage.Index()
	if from < 0 {
		return nil, &contracts.InvalidParameterError{Param: "from_stage", Value: string(config.FromStage), Reason: "unknown stage"}
	}

	log := o.logger.WithRun(config.RunID)
	result := &RunResult{
		RunID: config.RunID,
		Manifest: &contracts.RunManifest{
			RunID:      config.RunID,
			ConfigHash: o.configHash,
			FromStage:  config.FromStage,
			StartedAt:  startTime.UnixMilli(),
			Stages:     []contracts.StageResult{},
		},
	}

	log.WithFields(map[string]interface{}{
		"from_stage": config.FromStage.ShortName(),
		"reuse":      config.ReuseRunID,
		"source":     o.source.Name(),
		"scenarios":  len(config.Scenarios),
	}).Info("Starting pipeline run")

	if from > 0 {
		reuseID, err := o.resolveRun(ctx, config.ReuseRunID)
		if err != nil {
			return o.fail(ctx, log, result, config.FromStage, fmt.Errorf("resolve reused run: %w", err))
		}
		result.Manifest.ReusedRunID = reuseID
		if stage, err := o.loadUpstream(ctx, reuseID, from, result); err != nil {
			return o.fail(ctx, log, result, stage, err)
		}
		log.WithFields(map[string]interface{}{
			"reused_run": reuseID,
			"stages":     from,
		}).Info("Upstream artifacts loaded")
	}

	for _, stage := range contracts.AllStages()[from:] {
		if err := o.runStage(ctx, log, stage, config, result); err != nil {
			return o.fail(ctx, log, result, stage, err)
		}
	}

	result.Duration = time.Since(startTime)
	result.Manifest.FinishedAt = time.Now().UnixMilli()
	result.Manifest.Status = result.Dashboard.OverallStatus
	if err := o.save(ctx, config.RunID, contracts.ArtifactManifest, result.Manifest); err != nil {
		return o.fail(ctx, log, result, contracts.StageWarnings, err)
	}
	if err := o.store.MarkLatest(ctx, config.RunID); err != nil {
		return o.fail(ctx, log, result, contracts.StageWarnings, fmt.Errorf("mark latest: %w", err))
	}
	result.Success = true

	if o.metrics != nil {
		o.metrics.ObserveRun(true)
		o.metrics.ObserveAssessment(result.Assessment)
		o.metrics.ObserveDashboard(result.Dashboard)
	}

	log.WithFields(map[string]interface{}{
		"duration":    result.Duration.String(),
		"stages":      len(result.Manifest.Stages),
		"alert_level": result.Health.AlertLevel,
		"status":      result.Dashboard.OverallStatus,
	}).Info("Pipeline run completed successfully")

	return result, nil
}

// fail records the failed stage, persists the partial manifest and returns the wrapped error
func (o *Orchestrator) fail(ctx context.Context, log *logger.Logger, result *RunResult, stage contracts.Stage, err error) (*RunResult, error) {
	result.Error = fmt.Errorf("%s failed: %w", stage.ShortName(), err)
	result.Success = false
	result.Manifest.FinishedAt = time.Now().UnixMilli()
	result.Duration = time.Duration(result.Manifest.FinishedAt-result.Manifest.StartedAt) * time.Millisecond

	if ctx.Err() == nil {
		if saveErr := o.save(ctx, result.RunID, contracts.ArtifactManifest, result.Manifest); saveErr != nil {
			log.WithError(saveErr).Warn("Failed to save manifest of failed run")
		}
	}
	if o.metrics != nil {
		o.metrics.ObserveRun(false)
	}

	log.WithError(result.Error).WithField("stage", stage.ShortName()).Error("Pipeline run failed")
	return result, result.Error
}

// =============================================================================
// Stage execution
// =============================================================================

// runStage executes one stage, persists its artifact and records the stage result
func (o *Orchestrator) runStage(ctx context.Context, log *logger.Logger, stage contracts.Stage, config RunConfig, result *RunResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Infof("Running %s: %s", stage.ShortName(), stage)

	stageStart := time.Now()
	artifact, meta, err := o.execute(ctx, stage, config, result)
	if err == nil {
		err = o.save(ctx, config.RunID, stage.Artifact(), artifact)
	}
	elapsed := time.Since(stageStart)

	sr := contracts.StageResult{
		Stage:    stage,
		Success:  err == nil,
		Duration: elapsed.Milliseconds(),
		Metadata: meta,
	}
	if err != nil {
		sr.Error = err.Error()
		result.Manifest.Stages = append(result.Manifest.Stages, sr)
		return err
	}
	result.Manifest.Stages = append(result.Manifest.Stages, sr)

	if o.metrics != nil {
		o.metrics.ObserveStage(stage, elapsed)
	}

	fields := map[string]interface{}{
		"stage":    stage.ShortName(),
		"duration": elapsed.String(),
	}
	for k, v := range meta {
		fields[k] = v
	}
	log.WithFields(fields).Info(stage.ShortName() + " completed")
	return nil
}

// execute runs the pure stage computation on the artifacts already in result
func (o *Orchestrator) execute(ctx context.Context, stage contracts.Stage, config RunConfig, result *RunResult) (interface{}, map[string]interface{}, error) {
	switch stage {
	case contracts.StageIndicators:
		doc, err := o.source.Fetch(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("fetch %s: %w", o.source.Name(), err)
		}
		ds := o.resolver.Resolve(doc)
		if ds.AsOf == "" {
			ds.AsOf = time.Now().UTC().Format("2006-01-02")
		}
		result.Dataset = ds
		result.Manifest.AsOf = ds.AsOf
		completeness := dataset.Measure(ds)
		return ds, map[string]interface{}{
			"companies":    len(ds.Companies),
			"notes":        len(ds.Notes),
			"completeness": completeness.Pct,
		}, nil

	case contracts.StageRisk:
		a := o.calculator.Assess(result.Dataset)
		result.Assessment = a
		return a, map[string]interface{}{
			"overall_score": a.OverallScore,
			"risk_level":    a.RiskLevel,
			"companies":     len(a.Companies),
		}, nil

	case contracts.StageScenarios:
		baseline := scenario.BuildBaseline(result.Dataset)
		set, err := o.simulator.RunAll(baseline, result.Dataset.Macro, config.Scenarios...)
		if err != nil {
			return nil, nil, fmt.Errorf("simulate scenarios: %w", err)
		}
		result.Scenarios = set
		return set, map[string]interface{}{
			"scenarios": len(set.Results),
		}, nil

	case contracts.StageSupplyDemand:
		p := o.analyze(result.Scenarios, result.Dataset.Macro)
		result.Projection = p
		return p, map[string]interface{}{
			"scenario":      p.Scenario,
			"balance_ratio": p.BalanceRatio.Value,
			"trend":         p.Trend,
		}, nil

	case contracts.StageHealth:
		h := o.evaluator.Evaluate(result.Assessment, result.Projection, result.Dataset.Macro)
		result.Health = h
		return h, map[string]interface{}{
			"health_score": h.HealthScore,
			"alert_level":  h.AlertLevel,
		}, nil

	case contracts.StageWarnings:
		d := o.warnings.Evaluate(warning.Input{
			Assessment: result.Assessment,
			Scenarios:  result.Scenarios,
			Projection: result.Projection,
			Health:     result.Health,
			Macro:      result.Dataset.Macro,
		})
		result.Dashboard = d
		return d, map[string]interface{}{
			"overall_status": d.OverallStatus,
			"active":         len(d.ActiveWarnings),
		}, nil
	}
	return nil, nil, &contracts.InvalidParameterError{Param: "stage", Value: string(stage), Reason: "unknown stage"}
}

// analyze runs S3 on the configured scenario; a missing scenario analyzes the base period only
func (o *Orchestrator) analyze(set *contracts.ScenarioSet, macro contracts.MacroSnapshot) *contracts.SupplyDemandProjection {
	var baseline contracts.AggregateBaseline
	var chosen *contracts.ScenarioResult
	if set != nil {
		baseline = set.Baseline
		if r, ok := set.Find(o.cfg.Scenarios.SupplyDemandScenario); ok {
			chosen = &r
		}
	}
	conditions := supplydemand.Conditions(o.cfg, macro)
	return o.analyzer.Analyze(supplydemand.SeriesFromScenario(o.cfg, baseline, chosen, conditions))
}

// =============================================================================
// Persistence
// =============================================================================

func (o *Orchestrator) save(ctx context.Context, runID string, kind contracts.ArtifactKind, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	if err := o.store.Save(ctx, runID, kind, payload); err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}
	return nil
}

// resolveRun maps "" and "latest" to the latest completed run
func (o *Orchestrator) resolveRun(ctx context.Context, runID string) (string, error) {
	if runID != "" && runID != LatestRun {
		return runID, nil
	}
	return o.store.Latest(ctx)
}

// loadUpstream restores the artifacts of stages [0, from) from a previous run
// and copies them under the new run ID so the new run is complete on its own
func (o *Orchestrator) loadUpstream(ctx context.Context, runID string, from int, result *RunResult) (contracts.Stage, error) {
	for _, stage := range contracts.AllStages()[:from] {
		var target interface{}
		switch stage {
		case contracts.StageIndicators:
			result.Dataset = &contracts.Dataset{}
			target = result.Dataset
		case contracts.StageRisk:
			result.Assessment = &contracts.RiskAssessment{}
			target = result.Assessment
		case contracts.StageScenarios:
			result.Scenarios = &contracts.ScenarioSet{}
			target = result.Scenarios
		case contracts.StageSupplyDemand:
			result.Projection = &contracts.SupplyDemandProjection{}
			target = result.Projection
		case contracts.StageHealth:
			result.Health = &contracts.HealthReport{}
			target = result.Health
		}
		if err := o.reuse(ctx, runID, result.RunID, stage.Artifact(), target); err != nil {
			return stage, fmt.Errorf("reuse %s from %s: %w", stage.Artifact(), runID, err)
		}
		result.Manifest.Stages = append(result.Manifest.Stages, contracts.StageResult{
			Stage:   stage,
			Success: true,
			Reused:  true,
		})
	}
	result.Manifest.AsOf = result.Dataset.AsOf
	return "", nil
}

// reuse decodes one artifact of fromRun into v and stores the same payload under toRun
func (o *Orchestrator) reuse(ctx context.Context, fromRun, toRun string, kind contracts.ArtifactKind, v interface{}) error {
	payload, err := o.store.Load(ctx, fromRun, kind)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("decode %s/%s: %w", fromRun, kind, err)
	}
	if fromRun == toRun {
		return nil
	}
	if err := o.store.Save(ctx, toRun, kind, payload); err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}
	return nil
}

// LatestRun is the alias accepted wherever a run ID is expected
const LatestRun = "latest"

// GenerateRunID generates a unique run ID
func GenerateRunID() string {
	return fmt.Sprintf("run_%s_%s", time.Now().UTC().Format("20060102_150405"), uuid.NewString()[:8])
}
