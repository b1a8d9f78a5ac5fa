package modelconfig

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/wonny/capexwatch/internal/contracts"
)

// Config는 자금조달 리스크 모델의 전체 설정
// ⭐ SSOT: 모든 임계값/가중치는 여기서만 온다 (코드에 하드코딩 금지)
type Config struct {
	Meta         Meta                  `yaml:"meta" json:"meta" validate:"required"`
	Scoring      Scoring               `yaml:"scoring" json:"scoring"`
	Quality      Quality               `yaml:"quality" json:"quality"`
	Thresholds   map[string]Threshold  `yaml:"thresholds" json:"thresholds" validate:"required,dive"`
	Categories   Categories            `yaml:"categories" json:"categories"`
	Blend        Blend                 `yaml:"blend" json:"blend"`
	Aggregation  Aggregation           `yaml:"aggregation" json:"aggregation"`
	Sentiment    Sentiment             `yaml:"sentiment" json:"sentiment"`
	Macro        MacroEnvironment      `yaml:"macro_environment" json:"macro_environment"`
	Defaults     Defaults              `yaml:"defaults" json:"defaults"`
	Scenarios    Scenarios             `yaml:"scenarios" json:"scenarios"`
	SupplyDemand SupplyDemand          `yaml:"supply_demand" json:"supply_demand"`
	Health       Health                `yaml:"health" json:"health"`
	Alerts       Alerts                `yaml:"alerts" json:"alerts"`
	Signals      map[string]SignalRule `yaml:"signals" json:"signals" validate:"required,dive"`
}

// Meta 메타 정보
type Meta struct {
	ModelID string `yaml:"model_id" json:"model_id" validate:"required"`
	Version string `yaml:"version" json:"version" validate:"required"`
}

// Scoring selects the threshold-to-score curve
type Scoring struct {
	Interpolation string     `yaml:"interpolation" json:"interpolation" validate:"oneof=linear step"`
	Anchors       Anchors    `yaml:"anchors" json:"anchors"`
	Step          StepScores `yaml:"step" json:"step"`
	RiskLevels    RiskLevels `yaml:"risk_levels" json:"risk_levels"`
}

// Anchors are the sub-scores assigned at normal/warning/danger
type Anchors struct {
	Normal  float64 `yaml:"normal" json:"normal" validate:"gte=0,lte=100"`
	Warning float64 `yaml:"warning" json:"warning" validate:"gte=0,lte=100"`
	Danger  float64 `yaml:"danger" json:"danger" validate:"gte=0,lte=100"`
}

// StepScores are the tiers of the legacy curve: Low below normal, BandLow..BandHigh
// interpolated between normal and danger, High at or beyond danger
type StepScores struct {
	Low      float64 `yaml:"low" json:"low" validate:"gte=0,lte=100"`
	BandLow  float64 `yaml:"band_low" json:"band_low" validate:"gte=0,lte=100"`
	BandHigh float64 `yaml:"band_high" json:"band_high" validate:"gte=0,lte=100"`
	High     float64 `yaml:"high" json:"high" validate:"gte=0,lte=100"`
}

// RiskLevels: LOW < Medium <= MEDIUM <= High < HIGH
type RiskLevels struct {
	Medium float64 `yaml:"medium" json:"medium" validate:"gte=0,lte=100"`
	High   float64 `yaml:"high" json:"high" validate:"gte=0,lte=100"`
}

// Level classifies a 0-100 score
func (r RiskLevels) Level(score float64) contracts.RiskLevel {
	switch {
	case score > r.High:
		return contracts.RiskHigh
	case score >= r.Medium:
		return contracts.RiskMedium
	default:
		return contracts.RiskLow
	}
}

// Quality 추정치 비율(%) 기준 데이터 품질
type Quality struct {
	HighMaxEstimatedPct   float64 `yaml:"high_max_estimated_pct" json:"high_max_estimated_pct" validate:"gte=0,lte=100"`
	MediumMaxEstimatedPct float64 `yaml:"medium_max_estimated_pct" json:"medium_max_estimated_pct" validate:"gte=0,lte=100"`
}

// Rating maps an estimated share (percent) to a quality rating
func (q Quality) Rating(estimatedPct float64) contracts.QualityRating {
	switch {
	case estimatedPct <= q.HighMaxEstimatedPct:
		return contracts.QualityHigh
	case estimatedPct <= q.MediumMaxEstimatedPct:
		return contracts.QualityMedium
	default:
		return contracts.QualityLow
	}
}

// Threshold is the normal/warning/danger table of one metric.
// For lower-is-worse metrics the values descend.
type Threshold struct {
	Normal    float64             `yaml:"normal" json:"normal"`
	Warning   float64             `yaml:"warning" json:"warning"`
	Danger    float64             `yaml:"danger" json:"danger"`
	Direction contracts.Direction `yaml:"direction" json:"direction" validate:"oneof=higher_is_worse lower_is_worse"`
}

// Categories holds metric weights per risk category (each map sums to 1.0)
type Categories struct {
	Consumption map[string]float64 `yaml:"consumption" json:"consumption" validate:"required,dive,gte=0,lte=1"`
	Supply      map[string]float64 `yaml:"supply" json:"supply" validate:"required,dive,gte=0,lte=1"`
	Efficiency  map[string]float64 `yaml:"efficiency" json:"efficiency" validate:"required,dive,gte=0,lte=1"`
}

// ByName returns the metric weights of a category
func (c Categories) ByName(category string) map[string]float64 {
	switch category {
	case contracts.CategoryConsumption:
		return c.Consumption
	case contracts.CategorySupply:
		return c.Supply
	case contracts.CategoryEfficiency:
		return c.Efficiency
	default:
		return nil
	}
}

// UnmarshalYAML replaces a category's weight map instead of merging into the defaults:
// a category given in YAML carries its complete metric set.
func (c *Categories) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: categories must be a mapping", value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, body := value.Content[i], value.Content[i+1]
		var weights map[string]float64
		if err := body.Decode(&weights); err != nil {
			return err
		}
		switch key.Value {
		case contracts.CategoryConsumption:
			c.Consumption = weights
		case contracts.CategorySupply:
			c.Supply = weights
		case contracts.CategoryEfficiency:
			c.Efficiency = weights
		default:
			// KnownFields does not reach custom unmarshalers
			return fmt.Errorf("line %d: field %s not found in type modelconfig.Categories", key.Line, key.Value)
		}
	}
	return nil
}

// Blend weights categories into the overall score (sums to 1.0)
type Blend struct {
	Consumption float64 `yaml:"consumption" json:"consumption" validate:"gte=0,lte=1"`
	Supply      float64 `yaml:"supply" json:"supply" validate:"gte=0,lte=1"`
	Efficiency  float64 `yaml:"efficiency" json:"efficiency" validate:"gte=0,lte=1"`
}

// Sum returns the total blend weight
func (b Blend) Sum() float64 {
	return b.Consumption + b.Supply + b.Efficiency
}

// Aggregation 다수 기업 → 종합 점수 방식
type Aggregation struct {
	Method string `yaml:"method" json:"method" validate:"oneof=unweighted market_cap"`
}

// Sentiment 시장 심리 보정
type Sentiment struct {
	Metrics     []string `yaml:"metrics" json:"metrics" validate:"required,min=1"`
	Neutral     float64  `yaml:"neutral" json:"neutral" validate:"gte=0,lte=100"`
	Sensitivity float64  `yaml:"sensitivity" json:"sensitivity" validate:"gte=0"`
	Cap         float64  `yaml:"cap" json:"cap" validate:"gte=0,lte=50"`
}

// MacroEnvironment counts metrics at or above warning to label the backdrop
type MacroEnvironment struct {
	Metrics          []string `yaml:"metrics" json:"metrics" validate:"required,min=1"`
	CautiousCount    int      `yaml:"cautious_count" json:"cautious_count" validate:"gte=1"`
	RestrictiveCount int      `yaml:"restrictive_count" json:"restrictive_count" validate:"gtefield=CautiousCount"`
}

// Defaults are substituted for missing indicators and marked estimated
type Defaults struct {
	Company map[string]float64 `yaml:"company" json:"company" validate:"required"`
	Macro   map[string]float64 `yaml:"macro" json:"macro" validate:"required"`
}

// Scenarios 시나리오 파라미터 범위와 프리셋
type Scenarios struct {
	MaxYears             int               `yaml:"max_years" json:"max_years" validate:"gte=1,lte=100"`
	GrowthMin            float64           `yaml:"growth_min" json:"growth_min"`
	GrowthMax            float64           `yaml:"growth_max" json:"growth_max" validate:"gtfield=GrowthMin"`
	InterestMin          float64           `yaml:"interest_min" json:"interest_min" validate:"gte=0"`
	InterestMax          float64           `yaml:"interest_max" json:"interest_max" validate:"gtfield=InterestMin"`
	ErosionWarningPct    float64           `yaml:"erosion_warning_pct" json:"erosion_warning_pct" validate:"gt=0,lte=1"`
	DeriveHistorical     bool              `yaml:"derive_historical" json:"derive_historical"`
	SupplyDemandScenario string            `yaml:"supply_demand_scenario" json:"supply_demand_scenario" validate:"required"`
	Presets              map[string]Preset `yaml:"presets" json:"presets" validate:"required,dive"`
}

// Preset is one named parameter tuple (rates as decimals)
type Preset struct {
	CapexGrowth   float64 `yaml:"capex_growth" json:"capex_growth"`
	RevenueGrowth float64 `yaml:"revenue_growth" json:"revenue_growth"`
	InterestRate  float64 `yaml:"interest_rate" json:"interest_rate"`
	DebtGrowth    float64 `yaml:"debt_growth" json:"debt_growth"`
	Years         int     `yaml:"years" json:"years" validate:"gte=0"`
}

// Parameters converts the preset into simulator parameters
func (p Preset) Parameters() contracts.ScenarioParameters {
	return contracts.ScenarioParameters{
		CapexGrowthRate:   p.CapexGrowth,
		RevenueGrowthRate: p.RevenueGrowth,
		InterestRate:      p.InterestRate,
		DebtGrowthRate:    p.DebtGrowth,
		YearsToSimulate:   p.Years,
	}
}

// SupplyDemand 자금 공급/수요 균형 파라미터
type SupplyDemand struct {
	RatioFloor     float64              `yaml:"ratio_floor" json:"ratio_floor" validate:"gte=0"`
	RatioCeiling   float64              `yaml:"ratio_ceiling" json:"ratio_ceiling" validate:"gtfield=RatioFloor"`
	TrendTolerance float64              `yaml:"trend_tolerance" json:"trend_tolerance" validate:"gte=0,lt=1"`
	DebtHeadroom   float64              `yaml:"debt_headroom" json:"debt_headroom" validate:"gte=0,lte=1"`
	EquityRaise    float64              `yaml:"equity_raise" json:"equity_raise" validate:"gte=0,lte=1"`
	Multipliers    ConditionMultipliers `yaml:"multipliers" json:"multipliers"`
	Intensity      IntensityBands       `yaml:"intensity" json:"intensity"`
}

// ConditionMultipliers scale first-year supply by credit conditions
type ConditionMultipliers struct {
	Favorable float64 `yaml:"favorable" json:"favorable" validate:"gt=0"`
	Neutral   float64 `yaml:"neutral" json:"neutral" validate:"gt=0"`
	Tight     float64 `yaml:"tight" json:"tight" validate:"gt=0"`
}

// IntensityBands classify aggregate capex/OCF (strict lower bounds)
type IntensityBands struct {
	VeryHigh float64 `yaml:"very_high" json:"very_high" validate:"gtfield=High"`
	High     float64 `yaml:"high" json:"high" validate:"gtfield=Moderate"`
	Moderate float64 `yaml:"moderate" json:"moderate" validate:"gte=0"`
}

// Health 종합 건전성 가중치
type Health struct {
	Credit       float64 `yaml:"credit" json:"credit" validate:"gte=0,lte=1"`
	Equity       float64 `yaml:"equity" json:"equity" validate:"gte=0,lte=1"`
	Company      float64 `yaml:"company" json:"company" validate:"gte=0,lte=1"`
	SupplyDemand float64 `yaml:"supply_demand" json:"supply_demand" validate:"gte=0,lte=1"`
}

// Sum returns the total component weight
func (h Health) Sum() float64 {
	return h.Credit + h.Equity + h.Company + h.SupplyDemand
}

// Alerts stress-score bands (lower bound inclusive) and status templates
type Alerts struct {
	Yellow float64        `yaml:"yellow" json:"yellow" validate:"gt=0"`
	Orange float64        `yaml:"orange" json:"orange" validate:"gtfield=Yellow"`
	Red    float64        `yaml:"red" json:"red" validate:"gtfield=Orange,lte=100"`
	Status StatusMessages `yaml:"status" json:"status"`
}

// Level maps a stress score to an alert level
func (a Alerts) Level(stress float64) contracts.Severity {
	switch {
	case stress >= a.Red:
		return contracts.SeverityRed
	case stress >= a.Orange:
		return contracts.SeverityOrange
	case stress >= a.Yellow:
		return contracts.SeverityYellow
	default:
		return contracts.SeverityGreen
	}
}

// StatusMessages are the per-level status texts
type StatusMessages struct {
	Green  string `yaml:"green" json:"green" validate:"required"`
	Yellow string `yaml:"yellow" json:"yellow" validate:"required"`
	Orange string `yaml:"orange" json:"orange" validate:"required"`
	Red    string `yaml:"red" json:"red" validate:"required"`
}

// For returns the template of a severity
func (s StatusMessages) For(level contracts.Severity) string {
	switch level {
	case contracts.SeverityRed:
		return s.Red
	case contracts.SeverityOrange:
		return s.Orange
	case contracts.SeverityYellow:
		return s.Yellow
	default:
		return s.Green
	}
}

// SignalRule is the threshold table of one warning signal
type SignalRule struct {
	Name      string              `yaml:"name" json:"name" validate:"required"`
	Category  string              `yaml:"category" json:"category" validate:"oneof=composite company credit equity supply_demand"`
	Yellow    float64             `yaml:"yellow" json:"yellow"`
	Orange    float64             `yaml:"orange" json:"orange"`
	Red       float64             `yaml:"red" json:"red"`
	Direction contracts.Direction `yaml:"direction" json:"direction" validate:"oneof=higher_is_worse lower_is_worse"`
	Optional  bool                `yaml:"optional" json:"optional"`

	// RedExclusive: RED starts strictly beyond Red (danger zones written as "> red")
	RedExclusive bool `yaml:"red_exclusive" json:"red_exclusive"`
}

// Thresholds returns the rule as a contracts value
func (r SignalRule) Thresholds() contracts.SignalThresholds {
	return contracts.SignalThresholds{Yellow: r.Yellow, Orange: r.Orange, Red: r.Red}
}
