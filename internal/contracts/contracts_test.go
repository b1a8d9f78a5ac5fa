package contracts

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageOrder(t *testing.T) {
	stages := AllStages()
	require.Len(t, stages, 6)
	for i, s := range stages {
		assert.Equal(t, i, s.Index())
		assert.NotEmpty(t, s.Artifact())
	}
	assert.Equal(t, "S2", StageScenarios.ShortName())
	assert.Equal(t, "UNKNOWN", Stage("S9_X").ShortName())
	assert.True(t, IsValidStage("S5_WARNINGS"))
	assert.False(t, IsValidStage("S5"))
}

func TestParseStage(t *testing.T) {
	tests := []struct {
		in   string
		want Stage
	}{
		{"S0_INDICATORS", StageIndicators},
		{"s3", StageSupplyDemand},
		{" S4_health ", StageHealth},
	}
	for _, tt := range tests {
		got, err := ParseStage(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseStage("S7")
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestParseArtifactKind(t *testing.T) {
	k, err := ParseArtifactKind("health_report")
	require.NoError(t, err)
	assert.Equal(t, ArtifactHealthReport, k)

	_, err = ParseArtifactKind("portfolio")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestErrorsUnwrap(t *testing.T) {
	var err error = &ConfigurationError{Field: "blend", Message: "weights must sum to 1"}
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "blend")

	err = &InvalidParameterError{Param: "years", Value: -1, Reason: "must be >= 0"}
	assert.ErrorIs(t, err, ErrInvalidParameter)
	var ipe *InvalidParameterError
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, "years", ipe.Param)
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, SeverityGreen, MaxSeverity())
	assert.Equal(t, SeverityRed, MaxSeverity(SeverityYellow, SeverityRed, SeverityOrange))
	assert.True(t, SeverityOrange.WorseThan(SeverityYellow))
	assert.False(t, SeverityGreen.WorseThan(SeverityGreen))
}

func TestIndicatorCleaning(t *testing.T) {
	assert.Equal(t, 0.0, NonNegative(math.NaN()))
	assert.Equal(t, 0.0, NonNegative(math.Inf(1)))
	assert.Equal(t, 0.0, NonNegative(-3))
	assert.Equal(t, -3.0, Finite(-3))
	assert.Equal(t, 0.0, Finite(math.Inf(-1)))

	est := Estimated(IndCapex, 50, "USD_B", "")
	assert.True(t, est.IsEstimated())
	assert.Equal(t, "missing", est.Provenance.Reason)
	assert.False(t, Real(IndCapex, 50, "USD_B", "FY2024", "10-K").IsEstimated())
}

func TestCompanyRecordDerived(t *testing.T) {
	c := CompanyRecord{
		Ticker: "MSFT",
		Indicators: map[string]Indicator{
			IndCapex:             Real(IndCapex, 60, "", "", ""),
			IndPriorCapex:        Real(IndPriorCapex, 40, "", "", ""),
			IndOperatingCashFlow: Real(IndOperatingCashFlow, 100, "", "", ""),
			IndRevenue:           Real(IndRevenue, 110, "", "", ""),
			IndPriorRevenue:      Real(IndPriorRevenue, 0, "", "", ""),
		},
	}
	assert.InDelta(t, 0.5, c.CapexGrowth(), 1e-9)
	assert.Equal(t, 0.0, c.RevenueGrowth())
	assert.InDelta(t, 40.0, c.FreeCashFlow(), 1e-9)
	assert.Equal(t, 0.0, c.Value(IndMarketCap))
}
