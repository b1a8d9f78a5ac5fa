package brain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/internal/scenario"
	"github.com/wonny/capexwatch/internal/supplydemand"
)

// LoadArtifact decodes a stored artifact into v
func LoadArtifact(ctx context.Context, store contracts.ArtifactStore, runID string, kind contracts.ArtifactKind, v interface{}) error {
	payload, err := store.Load(ctx, runID, kind)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("decode %s/%s: %w", runID, kind, err)
	}
	return nil
}

// LoadRaw returns the stored JSON of an artifact; runID may be "latest"
func (o *Orchestrator) LoadRaw(ctx context.Context, runID string, kind contracts.ArtifactKind) (string, []byte, error) {
	id, err := o.resolveRun(ctx, runID)
	if err != nil {
		return "", nil, err
	}
	payload, err := o.store.Load(ctx, id, kind)
	if err != nil {
		return id, nil, err
	}
	return id, payload, nil
}

// LatestDashboard returns the dashboard of the latest completed run
func (o *Orchestrator) LatestDashboard(ctx context.Context) (string, *contracts.WarningDashboard, error) {
	id, err := o.store.Latest(ctx)
	if err != nil {
		return "", nil, err
	}
	d := &contracts.WarningDashboard{}
	if err := LoadArtifact(ctx, o.store, id, contracts.ArtifactWarningDashboard, d); err != nil {
		return id, nil, err
	}
	return id, d, nil
}

// Simulation is an ad-hoc what-if: one scenario and its funding balance, never persisted
type Simulation struct {
	Baseline   contracts.AggregateBaseline       `json:"baseline"`
	Scenario   *contracts.ScenarioResult         `json:"scenario"`
	Projection *contracts.SupplyDemandProjection `json:"supply_demand"`
}

// Simulate projects sc from the current source data without touching the store
func (o *Orchestrator) Simulate(ctx context.Context, sc scenario.Scenario) (*Simulation, error) {
	doc, err := o.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", o.source.Name(), err)
	}
	ds := o.resolver.Resolve(doc)
	baseline := scenario.BuildBaseline(ds)

	r, err := o.simulator.Simulate(baseline, sc)
	if err != nil {
		return nil, err
	}
	conditions := supplydemand.Conditions(o.cfg, ds.Macro)
	p := o.analyzer.Analyze(supplydemand.SeriesFromScenario(o.cfg, baseline, r, conditions))

	o.logger.WithFields(map[string]interface{}{
		"scenario":      r.Name,
		"years":         len(r.Projections),
		"balance_ratio": p.BalanceRatio.Value,
	}).Debug("Ad-hoc simulation")

	return &Simulation{Baseline: baseline, Scenario: r, Projection: p}, nil
}
