package warning

import (
	"fmt"
	"math"
	"sort"

	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/internal/modelconfig"
)

// =============================================================================
// Warning System - S5 조기 경보
// =============================================================================

// Input carries every upstream artifact the signals read.
// Missing artifacts silence the signals that depend on them.
type Input struct {
	Assessment *contracts.RiskAssessment
	Scenarios  *contracts.ScenarioSet
	Projection *contracts.SupplyDemandProjection
	Health     *contracts.HealthReport
	Macro      contracts.MacroSnapshot
}

// System classifies each configured signal independently.
// ⭐ SSOT: 전체 상태 = 최악 신호 (worst-of), 실행 간 히스테리시스 없음
type System struct {
	cfg *modelconfig.Config
}

// NewSystem creates a warning system over the configured signal rules
func NewSystem(cfg *modelconfig.Config) *System {
	return &System{cfg: cfg}
}

// reading is a signal input before classification
type reading struct {
	metric    string
	value     float64
	estimated bool
	// abundant marks an undefined supply/demand ratio; always GREEN
	abundant bool
}

// Evaluate builds the warning dashboard
func (s *System) Evaluate(in Input) *contracts.WarningDashboard {
	d := &contracts.WarningDashboard{
		Signals:         []contracts.WarningSignal{},
		Counts:          make(map[contracts.Severity]int, 4),
		ActiveWarnings:  []string{},
		WatchList:       []string{},
		Recommendations: []string{},
	}
	for _, sev := range contracts.AllSeverities() {
		d.Counts[sev] = 0
	}
	if in.Assessment != nil {
		d.AsOf = in.Assessment.AsOf
	}
	if in.Health != nil {
		d.HealthScore = in.Health.HealthScore
		d.StressScore = in.Health.StressScore
	}

	for _, id := range modelconfig.SignalOrder() {
		rule, ok := s.cfg.Signals[id]
		if !ok {
			continue
		}
		r, ok := s.read(id, in)
		if !ok {
			continue
		}
		d.Signals = append(d.Signals, Build(id, rule, r.metric, r.value, r.estimated, r.abundant))
	}

	severities := make([]contracts.Severity, 0, len(d.Signals))
	for _, sig := range d.Signals {
		severities = append(severities, sig.Severity)
		d.Counts[sig.Severity]++
	}
	d.OverallStatus = contracts.MaxSeverity(severities...)

	d.ActiveWarnings, d.WatchList = triage(d.Signals)
	d.StatusMessage = s.statusMessage(d)
	d.Recommendations = recommendations(d)
	return d
}

// read extracts the value behind a signal; false when its input is absent
func (s *System) read(id string, in Input) (reading, bool) {
	a := in.Assessment
	switch id {
	case modelconfig.SignalCompositeStress:
		if in.Health == nil {
			return reading{}, false
		}
		return reading{metric: "stress_score", value: in.Health.StressScore, estimated: a != nil && a.EstimatedCount > 0}, true

	case modelconfig.SignalConsumptionRisk, modelconfig.SignalSupplyRisk, modelconfig.SignalEfficiencyRisk:
		if a == nil {
			return reading{}, false
		}
		category := categoryOf(id)
		return reading{
			metric:    category + "_score",
			value:     categoryScore(a.CategoryScores, category),
			estimated: anyEstimated(a, func(m contracts.MetricScore) bool { return m.Category == category }),
		}, true

	case modelconfig.SignalHYSpread:
		return macroReading(in.Macro, contracts.IndHighYieldSpread)
	case modelconfig.SignalIGSpread:
		return macroReading(in.Macro, contracts.IndInvestmentGradeSpread)
	case modelconfig.SignalTEDSpread:
		return macroReading(in.Macro, contracts.IndTEDSpread)
	case modelconfig.SignalYieldCurve:
		return macroReading(in.Macro, contracts.IndYieldCurve10Y2Y)
	case modelconfig.SignalVIX:
		return macroReading(in.Macro, contracts.IndVIX)
	case modelconfig.SignalTechETFReturn:
		return macroReading(in.Macro, contracts.IndTechETFWeeklyReturn)
	case modelconfig.SignalAIStocksReturn:
		return macroReading(in.Macro, contracts.IndAIStocksWeeklyReturn)

	case modelconfig.SignalCapexToCashFlow:
		if in.Scenarios == nil || in.Scenarios.Baseline.CompanyCount == 0 {
			return reading{}, false
		}
		b := in.Scenarios.Baseline
		return reading{
			metric:    modelconfig.MetricCapexToCashFlow,
			value:     ratio(b.Capex, b.OperatingCashFlow),
			estimated: metricEstimated(a, modelconfig.MetricCapexToCashFlow),
		}, true
	case modelconfig.SignalDebtToCash:
		if in.Scenarios == nil || in.Scenarios.Baseline.CompanyCount == 0 {
			return reading{}, false
		}
		b := in.Scenarios.Baseline
		return reading{
			metric:    modelconfig.MetricDebtToCash,
			value:     ratio(b.Debt, b.Cash),
			estimated: metricEstimated(a, modelconfig.MetricDebtToCash),
		}, true

	case modelconfig.SignalCompanyRiskAvg:
		if a == nil || len(a.Companies) == 0 {
			return reading{}, false
		}
		var sum float64
		for _, p := range a.Companies {
			sum += p.OverallScore
		}
		return reading{
			metric:    "company_risk_avg",
			value:     math.Round(sum/float64(len(a.Companies))*100) / 100,
			estimated: companyEstimated(a),
		}, true
	case modelconfig.SignalHighRiskCount:
		if a == nil {
			return reading{}, false
		}
		return reading{metric: "high_risk_count", value: float64(a.CountByLevel(contracts.RiskHigh)), estimated: companyEstimated(a)}, true

	case modelconfig.SignalSupplyDemandRatio:
		if in.Projection == nil {
			return reading{}, false
		}
		r := in.Projection.BalanceRatio
		return reading{
			metric:    "balance_ratio",
			value:     r.Value,
			estimated: companyEstimated(a),
			abundant:  !r.IsDefined(),
		}, true
	}
	return reading{}, false
}

// Build classifies one reading into a signal
func Build(id string, rule modelconfig.SignalRule, metric string, value float64, estimated, abundant bool) contracts.WarningSignal {
	sig := contracts.WarningSignal{
		ID:         id,
		Category:   rule.Category,
		Name:       rule.Name,
		Metric:     metric,
		Direction:  rule.Direction,
		Thresholds: rule.Thresholds(),
		Estimated:  estimated,
	}

	switch {
	case abundant:
		sig.Severity = contracts.SeverityGreen
		sig.Message = fmt.Sprintf("%s undefined (no capital demand) - supply abundant", rule.Name)
		return sig
	case math.IsInf(value, 1):
		// unbounded ratio: zero denominator with a positive numerator
		sig.Severity = contracts.SeverityRed
		red := rule.Red
		sig.TriggeredAt = &red
		sig.Triggered = true
		sig.Message = fmt.Sprintf("%s unbounded - immediate attention required", rule.Name)
		return sig
	}

	sig.Value = math.Round(value*10000) / 10000
	sig.Severity, sig.TriggeredAt = Classify(value, rule)
	sig.Triggered = sig.Severity != contracts.SeverityGreen
	sig.Message = Message(rule.Name, value, sig.Severity)
	return sig
}

// Classify places a value in its severity band (lower bound inclusive in the risk direction;
// RED is strict for rules with RedExclusive)
func Classify(value float64, rule modelconfig.SignalRule) (contracts.Severity, *float64) {
	beyond := func(threshold float64, strict bool) bool {
		if rule.Direction == contracts.LowerIsWorse {
			return value < threshold || (!strict && value == threshold)
		}
		return value > threshold || (!strict && value == threshold)
	}

	bands := []struct {
		sev       contracts.Severity
		threshold float64
		strict    bool
	}{
		{contracts.SeverityRed, rule.Red, rule.RedExclusive},
		{contracts.SeverityOrange, rule.Orange, false},
		{contracts.SeverityYellow, rule.Yellow, false},
	}
	for _, b := range bands {
		if beyond(b.threshold, b.strict) {
			t := b.threshold
			return b.sev, &t
		}
	}
	return contracts.SeverityGreen, nil
}

// Message renders the per-severity signal text
func Message(name string, value float64, sev contracts.Severity) string {
	switch sev {
	case contracts.SeverityRed:
		return fmt.Sprintf("%s at critical levels (%.2f) - immediate attention required", name, value)
	case contracts.SeverityOrange:
		return fmt.Sprintf("%s at warning levels (%.2f) - monitor closely", name, value)
	case contracts.SeverityYellow:
		return fmt.Sprintf("%s approaching concern levels (%.2f)", name, value)
	default:
		return fmt.Sprintf("%s at normal levels (%.2f)", name, value)
	}
}

// triage splits ORANGE/RED into active warnings and YELLOW into the watch list,
// most severe first, then in signal order
func triage(signals []contracts.WarningSignal) (active, watch []string) {
	ordered := make([]contracts.WarningSignal, len(signals))
	copy(ordered, signals)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Severity.Rank() > ordered[j].Severity.Rank()
	})

	active, watch = []string{}, []string{}
	for _, sig := range ordered {
		switch sig.Severity {
		case contracts.SeverityRed, contracts.SeverityOrange:
			active = append(active, sig.ID)
		case contracts.SeverityYellow:
			watch = append(watch, sig.ID)
		}
	}
	return active, watch
}

func (s *System) statusMessage(d *contracts.WarningDashboard) string {
	return fmt.Sprintf("%s (%d red, %d orange, %d yellow, %d green)",
		s.cfg.Alerts.Status.For(d.OverallStatus),
		d.Counts[contracts.SeverityRed], d.Counts[contracts.SeverityOrange],
		d.Counts[contracts.SeverityYellow], d.Counts[contracts.SeverityGreen])
}

func recommendations(d *contracts.WarningDashboard) []string {
	var recs []string
	switch d.OverallStatus {
	case contracts.SeverityRed:
		recs = append(recs, "HIGH ALERT: Review all funding positions immediately", "Consider defensive measures for AI investments")
	case contracts.SeverityOrange:
		recs = append(recs, "Elevated monitoring recommended", "Review contingency funding plans")
	case contracts.SeverityYellow:
		recs = append(recs, "Continue normal monitoring with increased attention")
	default:
		recs = append(recs, "Funding environment healthy - maintain standard monitoring")
	}

	active := make(map[string]bool)
	for _, sig := range d.Signals {
		if sig.Severity == contracts.SeverityOrange || sig.Severity == contracts.SeverityRed {
			active[sig.Category] = true
		}
	}
	if active["credit"] {
		recs = append(recs, "Credit market stress detected - review debt refinancing plans")
	}
	if active["equity"] {
		recs = append(recs, "Market sentiment weak - equity financing may be challenging")
	}
	if active["company"] {
		recs = append(recs, "Some companies showing stress - review individual positions")
	}
	if active["supply_demand"] {
		recs = append(recs, "Funding supply is not keeping pace with capex demand - stress-test runway")
	}
	return recs
}

// =============================================================================
// Helpers
// =============================================================================

func macroReading(macro contracts.MacroSnapshot, name string) (reading, bool) {
	ind, ok := macro.Get(name)
	if !ok {
		return reading{}, false
	}
	return reading{metric: name, value: contracts.Finite(ind.Value), estimated: ind.IsEstimated()}, true
}

func categoryOf(id string) string {
	switch id {
	case modelconfig.SignalConsumptionRisk:
		return contracts.CategoryConsumption
	case modelconfig.SignalSupplyRisk:
		return contracts.CategorySupply
	default:
		return contracts.CategoryEfficiency
	}
}

func categoryScore(c contracts.CategoryScores, category string) float64 {
	switch category {
	case contracts.CategoryConsumption:
		return c.Consumption
	case contracts.CategorySupply:
		return c.Supply
	default:
		return c.Efficiency
	}
}

func anyEstimated(a *contracts.RiskAssessment, match func(contracts.MetricScore) bool) bool {
	if a == nil {
		return false
	}
	for _, p := range a.Companies {
		for _, m := range p.Metrics {
			if match(m) && m.Estimated {
				return true
			}
		}
	}
	return false
}

func metricEstimated(a *contracts.RiskAssessment, metric string) bool {
	return anyEstimated(a, func(m contracts.MetricScore) bool { return m.Name == metric })
}

func companyEstimated(a *contracts.RiskAssessment) bool {
	if a == nil {
		return false
	}
	for _, p := range a.Companies {
		if p.EstimatedCount > 0 {
			return true
		}
	}
	return false
}

// ratio returns +Inf for a positive numerator over a non-positive denominator
func ratio(num, den float64) float64 {
	if den <= 0 {
		if num > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return num / den
}
