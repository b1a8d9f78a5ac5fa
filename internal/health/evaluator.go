package health

import (
	"math"

	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/internal/modelconfig"
	"github.com/wonny/capexwatch/internal/risk"
)

// Component names
const (
	ComponentCredit       = "credit"
	ComponentEquity       = "equity"
	ComponentCompany      = "company"
	ComponentSupplyDemand = "supply_demand"
)

// Evaluator combines credit, equity, company and supply-demand health.
// ⭐ SSOT: health = Σ weight × component (higher = healthier), stress = 100 − health
type Evaluator struct {
	cfg   *modelconfig.Config
	curve risk.Curve
}

// NewEvaluator creates an evaluator using the configured scoring curve
func NewEvaluator(cfg *modelconfig.Config) (*Evaluator, error) {
	curve, err := risk.NewCurve(cfg.Scoring)
	if err != nil {
		return nil, err
	}
	return &Evaluator{cfg: cfg, curve: curve}, nil
}

// Evaluate builds the health report. A nil projection drops the supply-demand
// component and the remaining weights are renormalized.
func (e *Evaluator) Evaluate(a *contracts.RiskAssessment, p *contracts.SupplyDemandProjection, macro contracts.MacroSnapshot) *contracts.HealthReport {
	w := e.cfg.Health
	components := []contracts.HealthComponent{
		{Name: ComponentCredit, Score: 100 - e.meanSubScore(macro, modelconfig.MetricHighYieldSpread, modelconfig.MetricInvestmentGradeSpread), Weight: w.Credit},
		{Name: ComponentEquity, Score: 100 - e.meanSubScore(macro, modelconfig.MetricVIX, modelconfig.MetricTechETFWeeklyReturn), Weight: w.Equity},
	}

	companyRisk := 0.0
	report := &contracts.HealthReport{}
	if a != nil {
		companyRisk = a.OverallScore
		report.AsOf = a.AsOf
	}
	components = append(components, contracts.HealthComponent{Name: ComponentCompany, Score: 100 - companyRisk, Weight: w.Company})
	if p != nil {
		components = append(components, contracts.HealthComponent{Name: ComponentSupplyDemand, Score: p.SustainabilityScore, Weight: w.SupplyDemand})
	}

	var total, wsum float64
	for _, c := range components {
		wsum += c.Weight
	}
	if math.Abs(wsum-1) < 1e-9 {
		wsum = 1
	}
	for i := range components {
		c := &components[i]
		c.Score = round2(clamp(c.Score))
		if wsum > 0 {
			c.Contribution = round2(c.Weight / wsum * c.Score)
			total += c.Weight / wsum * c.Score
		}
	}

	report.HealthScore = round2(clamp(total))
	report.StressScore = round2(100 - report.HealthScore)
	report.AlertLevel = e.cfg.Alerts.Level(report.StressScore)
	report.Status = e.cfg.Alerts.Status.For(report.AlertLevel)
	report.Components = components
	return report
}

// meanSubScore averages the risk sub-scores of the macro metrics present
func (e *Evaluator) meanSubScore(macro contracts.MacroSnapshot, metrics ...string) float64 {
	var sum float64
	var n int
	for _, m := range metrics {
		t, ok := e.cfg.Thresholds[m]
		if !ok {
			continue
		}
		if _, ok := macro.Get(m); !ok {
			continue
		}
		sum += e.curve.Score(macro.Value(m), t)
		n++
	}
	if n == 0 {
		return e.cfg.Sentiment.Neutral
	}
	return sum / float64(n)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
