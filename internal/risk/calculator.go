package risk

import (
	"fmt"
	"math"
	"sort"

	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/internal/dataset"
	"github.com/wonny/capexwatch/internal/modelconfig"
)

// =============================================================================
// Calculator - S1 순수 계산기
// =============================================================================

// Calculator scores companies and the aggregate from a resolved dataset.
// ⭐ SSOT: 데이터 로드/저장은 상위 레이어(brain)에서 조립, 여기서는 순수 계산만
type Calculator struct {
	cfg        *modelconfig.Config
	curve      Curve
	configHash string
}

// NewCalculator builds a calculator for a validated config
func NewCalculator(cfg *modelconfig.Config) (*Calculator, error) {
	if cfg == nil {
		return nil, &contracts.ConfigurationError{Field: "config", Message: "required"}
	}
	curve, err := NewCurve(cfg.Scoring)
	if err != nil {
		return nil, err
	}
	hash, err := modelconfig.Hash(cfg)
	if err != nil {
		return nil, fmt.Errorf("hash model config: %w", err)
	}
	return &Calculator{cfg: cfg, curve: curve, configHash: hash}, nil
}

// Curve returns the active scoring curve
func (c *Calculator) Curve() Curve {
	return c.curve
}

// SubScore scores a value against the named metric's thresholds (0 for unknown metrics)
func (c *Calculator) SubScore(metric string, value float64) float64 {
	t, ok := c.cfg.Thresholds[metric]
	if !ok {
		return 0
	}
	return c.curve.Score(value, t)
}

// Assess produces the systemic risk assessment.
// Never fails: missing data has already been replaced by estimates in S0.
func (c *Calculator) Assess(ds *contracts.Dataset) *contracts.RiskAssessment {
	if ds == nil {
		ds = &contracts.Dataset{}
	}

	profiles := make([]contracts.CompanyRiskProfile, 0, len(ds.Companies))
	for _, rec := range ds.Companies {
		profiles = append(profiles, c.ScoreCompany(rec, ds.Macro))
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Ticker < profiles[j].Ticker })

	categories := c.aggregateCategories(profiles)
	base := c.cfg.Blend.Consumption*categories.Consumption +
		c.cfg.Blend.Supply*categories.Supply +
		c.cfg.Blend.Efficiency*categories.Efficiency

	macro := c.assessMacro(ds.Macro)
	sentiment := c.sentiment(ds.Macro)
	adjustment := clamp((sentiment-c.cfg.Sentiment.Neutral)*c.cfg.Sentiment.Sensitivity, -c.cfg.Sentiment.Cap, c.cfg.Sentiment.Cap)
	overall := clamp(base+adjustment, 0, 100)
	macro.Sentiment = Round2(sentiment)

	completeness := dataset.Measure(ds)
	level := c.cfg.Scoring.RiskLevels.Level(Round2(overall))

	assessment := &contracts.RiskAssessment{
		AsOf:                ds.AsOf,
		OverallScore:        Round2(overall),
		RiskLevel:           level,
		BaseScore:           Round2(base),
		SentimentAdjustment: Round2(adjustment),
		CategoryScores:      roundCategories(categories),
		DataCompleteness:    completeness.Pct,
		EstimatedCount:      completeness.Estimated,
		IndicatorCount:      completeness.Total,
		Aggregation:         c.aggregationMethod(profiles),
		Interpolation:       c.curve.Name(),
		Companies:           profiles,
		Macro:               macro,
		ConfigHash:          c.configHash,
	}
	assessment.KeyFindings = keyFindings(assessment)
	assessment.Recommendations = recommendations(assessment)
	return assessment
}

// =============================================================================
// Company scoring
// =============================================================================

type metricInput struct {
	value     float64
	estimated bool
}

// ScoreCompany scores one company's categories and overall risk
func (c *Calculator) ScoreCompany(rec contracts.CompanyRecord, macro contracts.MacroSnapshot) contracts.CompanyRiskProfile {
	profile := contracts.CompanyRiskProfile{
		Ticker:    rec.Ticker,
		Name:      rec.Name,
		MarketCap: Round2(rec.Value(contracts.IndMarketCap)),
		Metrics:   []contracts.MetricScore{},
	}

	scores := make(map[string]float64, 3)
	for _, category := range []string{contracts.CategoryConsumption, contracts.CategorySupply, contracts.CategoryEfficiency} {
		weights := c.cfg.Categories.ByName(category)
		var sum, wsum float64
		for _, metric := range sortedMetrics(weights) {
			in, ok := c.metricValue(metric, rec, macro)
			if !ok {
				continue
			}
			sub := c.SubScore(metric, in.value)
			w := weights[metric]
			sum += w * sub
			wsum += w
			profile.Metrics = append(profile.Metrics, c.metricScore(metric, category, in, sub, w))
		}
		if wsum > 0 {
			scores[category] = sum / wsum
		}
	}

	cat := contracts.CategoryScores{
		Consumption: scores[contracts.CategoryConsumption],
		Supply:      scores[contracts.CategorySupply],
		Efficiency:  scores[contracts.CategoryEfficiency],
	}
	overall := c.cfg.Blend.Consumption*cat.Consumption + c.cfg.Blend.Supply*cat.Supply + c.cfg.Blend.Efficiency*cat.Efficiency

	pct, estimated, total := dataset.CompanyEstimatedPct(rec)
	profile.CategoryScores = roundCategories(cat)
	profile.OverallScore = Round2(clamp(overall, 0, 100))
	profile.RiskLevel = c.cfg.Scoring.RiskLevels.Level(profile.OverallScore)
	profile.Quality = c.cfg.Quality.Rating(pct)
	profile.EstimatedCount = estimated
	profile.IndicatorCount = total
	profile.Summary = fmt.Sprintf("%s: %s risk (%.1f) - consumption %.1f, supply %.1f, efficiency %.1f, data quality %s",
		rec.Ticker, profile.RiskLevel, profile.OverallScore,
		profile.CategoryScores.Consumption, profile.CategoryScores.Supply, profile.CategoryScores.Efficiency,
		profile.Quality)
	return profile
}

// metricValue derives a scored metric from company and macro indicators.
// Unknown metric names fall back to a macro indicator of the same name.
func (c *Calculator) metricValue(metric string, rec contracts.CompanyRecord, macro contracts.MacroSnapshot) (metricInput, bool) {
	est := func(names ...string) bool {
		for _, n := range names {
			if rec.IsEstimated(n) {
				return true
			}
		}
		return false
	}

	switch metric {
	case modelconfig.MetricCapexToCashFlow:
		return metricInput{
			value:     ratio(rec.Value(contracts.IndCapex), rec.Value(contracts.IndOperatingCashFlow)),
			estimated: est(contracts.IndCapex, contracts.IndOperatingCashFlow),
		}, true
	case modelconfig.MetricCapexGrowth:
		return metricInput{rec.CapexGrowth(), est(contracts.IndCapex, contracts.IndPriorCapex)}, true
	case modelconfig.MetricDebtToCash:
		return metricInput{
			value:     ratio(rec.Value(contracts.IndTotalDebt), rec.Value(contracts.IndCash)),
			estimated: est(contracts.IndTotalDebt, contracts.IndCash),
		}, true
	case modelconfig.MetricDebtGrowth:
		return metricInput{rec.DebtGrowth(), est(contracts.IndTotalDebt, contracts.IndPriorTotalDebt)}, true
	case modelconfig.MetricRevenueGrowth:
		return metricInput{rec.RevenueGrowth(), est(contracts.IndRevenue, contracts.IndPriorRevenue)}, true
	case modelconfig.MetricDebtToRevenueGrowth:
		return metricInput{
			value:     debtToRevenueGrowth(rec.DebtGrowth(), rec.RevenueGrowth()),
			estimated: est(contracts.IndTotalDebt, contracts.IndPriorTotalDebt, contracts.IndRevenue, contracts.IndPriorRevenue),
		}, true
	}

	if ind, ok := macro.Get(metric); ok {
		return metricInput{value: contracts.Finite(ind.Value), estimated: ind.IsEstimated()}, true
	}
	return metricInput{}, false
}

func (c *Calculator) metricScore(metric, category string, in metricInput, sub, weight float64) contracts.MetricScore {
	ms := contracts.MetricScore{
		Name:      metric,
		Category:  category,
		SubScore:  Round2(sub),
		Weight:    weight,
		Level:     c.cfg.Scoring.RiskLevels.Level(Round2(sub)),
		Estimated: in.estimated,
	}
	if math.IsInf(in.value, 0) {
		ms.Unbounded = true
	} else {
		ms.Value = roundValue(in.value)
	}
	return ms
}

// =============================================================================
// Aggregation
// =============================================================================

func (c *Calculator) aggregationMethod(profiles []contracts.CompanyRiskProfile) string {
	if c.cfg.Aggregation.Method == "market_cap" && totalMarketCap(profiles) > 0 {
		return "market_cap"
	}
	return "unweighted"
}

// aggregateCategories averages company category scores.
// market_cap weighting falls back to unweighted when no caps are known.
func (c *Calculator) aggregateCategories(profiles []contracts.CompanyRiskProfile) contracts.CategoryScores {
	if len(profiles) == 0 {
		return contracts.CategoryScores{}
	}

	weights := make([]float64, len(profiles))
	if c.aggregationMethod(profiles) == "market_cap" {
		for i, p := range profiles {
			weights[i] = p.MarketCap
		}
	} else {
		for i := range weights {
			weights[i] = 1
		}
	}

	var out contracts.CategoryScores
	var wsum float64
	for i, p := range profiles {
		w := weights[i]
		out.Consumption += w * p.CategoryScores.Consumption
		out.Supply += w * p.CategoryScores.Supply
		out.Efficiency += w * p.CategoryScores.Efficiency
		wsum += w
	}
	out.Consumption /= wsum
	out.Supply /= wsum
	out.Efficiency /= wsum
	return out
}

func totalMarketCap(profiles []contracts.CompanyRiskProfile) float64 {
	var total float64
	for _, p := range profiles {
		total += p.MarketCap
	}
	return total
}

func roundCategories(c contracts.CategoryScores) contracts.CategoryScores {
	return contracts.CategoryScores{
		Consumption: Round2(c.Consumption),
		Supply:      Round2(c.Supply),
		Efficiency:  Round2(c.Efficiency),
	}
}

// roundValue keeps ratios readable without losing small growth rates
func roundValue(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func sortedMetrics(weights map[string]float64) []string {
	names := make([]string, 0, len(weights))
	for k := range weights {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
