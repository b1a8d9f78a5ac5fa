package risk

import (
	"fmt"

	"github.com/wonny/capexwatch/internal/contracts"
)

// Funding environment labels
const (
	EnvFavorable   = "favorable"
	EnvCautious    = "cautious"
	EnvRestrictive = "restrictive"
)

// sentiment is the mean sub-score of the configured sentiment metrics
func (c *Calculator) sentiment(macro contracts.MacroSnapshot) float64 {
	var sum float64
	var n int
	for _, metric := range c.cfg.Sentiment.Metrics {
		if _, ok := macro.Get(metric); !ok {
			continue
		}
		sum += c.SubScore(metric, macro.Value(metric))
		n++
	}
	if n == 0 {
		return c.cfg.Sentiment.Neutral
	}
	return sum / float64(n)
}

// assessMacro labels the funding backdrop by counting macro metrics at or beyond warning
func (c *Calculator) assessMacro(macro contracts.MacroSnapshot) contracts.MacroEnvironment {
	env := contracts.MacroEnvironment{
		Metrics:     []contracts.MetricScore{},
		RiskFactors: []string{},
	}

	seen := make(map[string]bool)
	elevated := 0
	for _, metric := range append(append([]string{}, c.cfg.Macro.Metrics...), c.cfg.Sentiment.Metrics...) {
		if seen[metric] {
			continue
		}
		seen[metric] = true

		ind, ok := macro.Get(metric)
		if !ok {
			continue
		}
		value := contracts.Finite(ind.Value)
		sub := c.SubScore(metric, value)
		env.Metrics = append(env.Metrics, contracts.MetricScore{
			Name:      metric,
			Category:  "macro",
			Value:     roundValue(value),
			SubScore:  Round2(sub),
			Level:     c.cfg.Scoring.RiskLevels.Level(Round2(sub)),
			Estimated: ind.IsEstimated(),
		})

		if !c.isMacroMetric(metric) {
			continue
		}
		t := c.cfg.Thresholds[metric]
		if atOrBeyond(value, t.Warning, t.Direction) {
			elevated++
			env.RiskFactors = append(env.RiskFactors,
				fmt.Sprintf("%s at %.2f is at or beyond its warning level (%.2f)", metricLabel(metric), value, t.Warning))
		}
	}

	switch {
	case elevated >= c.cfg.Macro.RestrictiveCount:
		env.Environment = EnvRestrictive
	case elevated >= c.cfg.Macro.CautiousCount:
		env.Environment = EnvCautious
	default:
		env.Environment = EnvFavorable
	}
	return env
}

func (c *Calculator) isMacroMetric(metric string) bool {
	for _, m := range c.cfg.Macro.Metrics {
		if m == metric {
			return true
		}
	}
	return false
}

// atOrBeyond compares in the risk direction (lower bound inclusive)
func atOrBeyond(value, threshold float64, dir contracts.Direction) bool {
	if dir == contracts.LowerIsWorse {
		return value <= threshold
	}
	return value >= threshold
}

func metricLabel(metric string) string {
	switch metric {
	case contracts.IndFedFundsRate:
		return "Fed funds rate"
	case contracts.IndInvestmentGradeSpread:
		return "Investment grade spread"
	case contracts.IndHighYieldSpread:
		return "High yield spread"
	case contracts.IndVIX:
		return "VIX"
	default:
		return metric
	}
}
