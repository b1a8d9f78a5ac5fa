package risk

import (
	"fmt"
	"strings"

	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/internal/modelconfig"
)

// imbalanceGap is the consumption/supply spread that counts as a finding
const imbalanceGap = 15.0

func keyFindings(a *contracts.RiskAssessment) []string {
	findings := []string{}

	if len(a.Companies) == 0 {
		findings = append(findings, "No company data available; assessment reflects macro conditions only")
	}

	var high, aggressive []string
	for _, p := range a.Companies {
		if p.RiskLevel == contracts.RiskHigh {
			high = append(high, p.Ticker)
		}
		for _, m := range p.Metrics {
			if m.Name == modelconfig.MetricCapexGrowth && m.Level == contracts.RiskHigh {
				aggressive = append(aggressive, p.Ticker)
			}
		}
	}
	if len(high) > 0 {
		findings = append(findings, "High risk identified for: "+strings.Join(high, ", "))
	}

	cat := a.CategoryScores
	switch {
	case cat.Consumption > cat.Supply+imbalanceGap:
		findings = append(findings, "Capital consumption rate exceeds sustainable supply indicators")
	case cat.Supply > cat.Consumption+imbalanceGap:
		findings = append(findings, "Funding supply pressure exceeds consumption pressure - watch credit availability")
	}

	switch a.Macro.Environment {
	case EnvRestrictive:
		findings = append(findings, "Macroeconomic environment is restrictive for new funding")
	case EnvFavorable:
		findings = append(findings, "Favorable macroeconomic conditions support continued investment")
	}
	findings = append(findings, a.Macro.RiskFactors...)

	if len(aggressive) >= 3 {
		findings = append(findings, "Multiple companies with aggressive capex growth: "+strings.Join(aggressive, ", "))
	}

	if a.DataCompleteness < 100 && a.IndicatorCount > 0 {
		findings = append(findings, fmt.Sprintf("%d of %d required indicators were estimated (completeness %.2f%%)",
			a.EstimatedCount, a.IndicatorCount, a.DataCompleteness))
	}

	if len(findings) == 0 {
		findings = append(findings, "No significant risk factors identified")
	}
	return findings
}

func recommendations(a *contracts.RiskAssessment) []string {
	var recs []string
	switch a.RiskLevel {
	case contracts.RiskHigh:
		recs = append(recs,
			"Consider reducing exposure to highest-risk companies",
			"Monitor debt levels and cash flow coverage closely",
			"Evaluate sustainability of current investment pace",
		)
	case contracts.RiskMedium:
		recs = append(recs,
			"Maintain diversified exposure across AI infrastructure players",
			"Monitor quarterly earnings for deterioration in key metrics",
		)
	default:
		recs = append(recs,
			"Current funding environment appears sustainable",
			"Continue monitoring for early warning signs",
		)
	}

	if a.Macro.Environment == EnvRestrictive {
		recs = append(recs, "Rising rates may pressure companies with high debt levels")
	}
	return recs
}
