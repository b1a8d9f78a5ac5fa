package scenario

import (
	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/internal/modelconfig"
)

// CustomPreset marks caller-supplied parameters
const CustomPreset = "custom"

// Scenario names a parameter set to simulate
type Scenario struct {
	Name   string
	Preset string
	Params contracts.ScenarioParameters
}

// Custom wraps caller-supplied parameters
func Custom(name string, p contracts.ScenarioParameters) Scenario {
	if name == "" {
		name = CustomPreset
	}
	return Scenario{Name: name, Preset: CustomPreset, Params: p}
}

// FromPreset looks up a configured preset by name
func FromPreset(cfg *modelconfig.Config, name string) (Scenario, error) {
	p, ok := cfg.Scenarios.Presets[name]
	if !ok {
		return Scenario{}, &contracts.InvalidParameterError{Param: "preset", Value: name, Reason: "unknown preset"}
	}
	return Scenario{Name: name, Preset: name, Params: p.Parameters()}, nil
}

// Presets returns every configured preset in report order
func Presets(cfg *modelconfig.Config) []Scenario {
	out := make([]Scenario, 0, len(cfg.Scenarios.Presets))
	for _, name := range modelconfig.PresetOrder() {
		if s, err := FromPreset(cfg, name); err == nil {
			out = append(out, s)
		}
	}
	return out
}

// DeriveHistorical replaces the historical preset with observed growth:
// aggregate capex/revenue/debt growth and the fed funds rate as the borrowing cost.
// Observed rates are clamped into the accepted parameter bounds.
func DeriveHistorical(cfg *modelconfig.Config, b contracts.AggregateBaseline, macro contracts.MacroSnapshot) Scenario {
	bounds := cfg.Scenarios
	base := cfg.Scenarios.Presets[modelconfig.PresetHistoricalTrend]

	p := base.Parameters()
	p.CapexGrowthRate = clamp(b.CapexGrowth, bounds.GrowthMin, bounds.GrowthMax)
	p.RevenueGrowthRate = clamp(b.RevenueGrowth, bounds.GrowthMin, bounds.GrowthMax)
	p.DebtGrowthRate = clamp(b.DebtGrowth, bounds.GrowthMin, bounds.GrowthMax)
	if _, ok := macro.Get(contracts.IndFedFundsRate); ok {
		p.InterestRate = clamp(macro.Value(contracts.IndFedFundsRate)/100, bounds.InterestMin, bounds.InterestMax)
	}
	return Scenario{Name: modelconfig.PresetHistoricalTrend, Preset: modelconfig.PresetHistoricalTrend, Params: p}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
