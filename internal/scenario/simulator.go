package scenario

import (
	"fmt"
	"math"

	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/internal/modelconfig"
)

// =============================================================================
// Simulator - S2 시나리오 투영
// =============================================================================

// Simulator projects the aggregate baseline forward under constant growth rates.
// ⭐ SSOT: 투영값은 클램프하지 않는다 (음수 매출/갭도 그대로 노출)
type Simulator struct {
	cfg *modelconfig.Config
}

// NewSimulator creates a simulator with the configured parameter bounds
func NewSimulator(cfg *modelconfig.Config) *Simulator {
	return &Simulator{cfg: cfg}
}

// Validate rejects parameters outside the accepted bounds
func (s *Simulator) Validate(p contracts.ScenarioParameters) error {
	b := s.cfg.Scenarios
	if p.YearsToSimulate < 0 || p.YearsToSimulate > b.MaxYears {
		return &contracts.InvalidParameterError{
			Param:  "years_to_simulate",
			Value:  p.YearsToSimulate,
			Reason: fmt.Sprintf("must be between 0 and %d", b.MaxYears),
		}
	}

	growth := []struct {
		name  string
		value float64
	}{
		{"capex_growth_rate", p.CapexGrowthRate},
		{"revenue_growth_rate", p.RevenueGrowthRate},
		{"debt_growth_rate", p.DebtGrowthRate},
	}
	for _, g := range growth {
		if !within(g.value, b.GrowthMin, b.GrowthMax) {
			return &contracts.InvalidParameterError{
				Param:  g.name,
				Value:  g.value,
				Reason: fmt.Sprintf("must be within [%g, %g]", b.GrowthMin, b.GrowthMax),
			}
		}
	}

	if !within(p.InterestRate, b.InterestMin, b.InterestMax) {
		return &contracts.InvalidParameterError{
			Param:  "interest_rate",
			Value:  p.InterestRate,
			Reason: fmt.Sprintf("must be within [%g, %g]", b.InterestMin, b.InterestMax),
		}
	}
	return nil
}

// Simulate runs the projection recurrence for one scenario:
//
//	capex[i]   = capex[i-1]   × (1 + capex growth)
//	revenue[i] = revenue[i-1] × (1 + revenue growth)
//	debt[i]    = debt[i-1]    × (1 + debt growth)
//	interest[i] = debt[i] × interest rate
//	gap[i]     = revenue[i] − capex[i] − interest[i]
//
// Zero years yields an empty projection, not an error.
func (s *Simulator) Simulate(b contracts.AggregateBaseline, sc Scenario) (*contracts.ScenarioResult, error) {
	p := sc.Params
	if err := s.Validate(p); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	result := &contracts.ScenarioResult{
		Name:        sc.Name,
		Preset:      sc.Preset,
		Parameters:  p,
		BaseYear:    b.BaseYear,
		Projections: make([]contracts.YearProjection, 0, p.YearsToSimulate),
		Warnings:    []string{},
	}

	capex, revenue, debt := b.Capex, b.Revenue, b.Debt
	for i := 1; i <= p.YearsToSimulate; i++ {
		capex *= 1 + p.CapexGrowthRate
		revenue *= 1 + p.RevenueGrowthRate
		debt *= 1 + p.DebtGrowthRate
		interest := debt * p.InterestRate
		gap := revenue - capex - interest

		result.Projections = append(result.Projections, contracts.YearProjection{
			Year:           i,
			Capex:          round4(capex),
			Revenue:        round4(revenue),
			Debt:           round4(debt),
			InterestBurden: round4(interest),
			Gap:            round4(gap),
		})
		if gap < 0 && result.CriticalYear == nil {
			year := i
			result.CriticalYear = &year
		}
	}

	result.Warnings = s.warnings(result)
	result.Summary = summarize(result)
	return result, nil
}

// RunAll simulates every configured preset plus any extra scenarios.
// Each scenario is independent; the first invalid one aborts the set.
func (s *Simulator) RunAll(b contracts.AggregateBaseline, macro contracts.MacroSnapshot, extra ...Scenario) (*contracts.ScenarioSet, error) {
	scenarios := Presets(s.cfg)
	if s.cfg.Scenarios.DeriveHistorical {
		for i, sc := range scenarios {
			if sc.Name == modelconfig.PresetHistoricalTrend {
				scenarios[i] = DeriveHistorical(s.cfg, b, macro)
			}
		}
	}
	scenarios = append(scenarios, extra...)

	set := &contracts.ScenarioSet{Baseline: b, Results: make([]contracts.ScenarioResult, 0, len(scenarios))}
	for _, sc := range scenarios {
		r, err := s.Simulate(b, sc)
		if err != nil {
			return nil, err
		}
		set.Results = append(set.Results, *r)
	}
	return set, nil
}

// =============================================================================
// Narrative
// =============================================================================

func (s *Simulator) warnings(r *contracts.ScenarioResult) []string {
	warnings := []string{}
	if r.CriticalYear != nil {
		warnings = append(warnings, fmt.Sprintf("Funding gap turns negative in %s", yearLabel(r.BaseYear, *r.CriticalYear)))
	}

	n := len(r.Projections)
	if n < 2 {
		return warnings
	}
	first, last := r.Projections[0].Gap, r.Projections[n-1].Gap
	if first > 0 {
		erosion := (first - last) / first
		if erosion > s.cfg.Scenarios.ErosionWarningPct {
			warnings = append(warnings, fmt.Sprintf("Funding gap erodes by %.0f%% over the horizon", erosion*100))
		}
	}
	for _, y := range r.Projections {
		if y.Revenue < 0 || y.Capex < 0 {
			warnings = append(warnings, fmt.Sprintf("Projected values turn negative in %s", yearLabel(r.BaseYear, y.Year)))
			break
		}
	}
	return warnings
}

func summarize(r *contracts.ScenarioResult) string {
	n := len(r.Projections)
	if n == 0 {
		return fmt.Sprintf("%s: no years simulated", r.Name)
	}
	last := r.Projections[n-1]
	outcome := "gap stays positive"
	if r.CriticalYear != nil {
		outcome = "gap turns negative in " + yearLabel(r.BaseYear, *r.CriticalYear)
	}
	return fmt.Sprintf("%s: after %d years capex %.1f, revenue %.1f, interest %.1f, gap %.1f (%s)",
		r.Name, n, last.Capex, last.Revenue, last.InterestBurden, last.Gap, outcome)
}

func yearLabel(baseYear, offset int) string {
	if baseYear > 0 {
		return fmt.Sprintf("%d", baseYear+offset)
	}
	return fmt.Sprintf("year %d", offset)
}

func within(v, lo, hi float64) bool {
	return v >= lo && v <= hi // NaN fails both
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
