package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/internal/modelconfig"
)

func fullCompany(ticker string) CompanyDocument {
	return CompanyDocument{
		Ticker: ticker,
		Name:   ticker + " Corp",
		Period: "FY2024",
		Source: "10-K",
		Indicators: map[string]*float64{
			contracts.IndCapex:             Float(55),
			contracts.IndPriorCapex:        Float(42),
			contracts.IndOperatingCashFlow: Float(110),
			contracts.IndTotalDebt:         Float(60),
			contracts.IndPriorTotalDebt:    Float(58),
			contracts.IndCash:              Float(75),
			contracts.IndRevenue:           Float(245),
			contracts.IndPriorRevenue:      Float(212),
		},
	}
}

func fullMacro() MacroDocument {
	return MacroDocument{
		Period: "2024-12-31",
		Source: "FRED",
		Indicators: map[string]*float64{
			contracts.IndHighYieldSpread:       Float(3.1),
			contracts.IndInvestmentGradeSpread: Float(0.9),
			contracts.IndYieldCurve10Y2Y:       Float(0.3),
			contracts.IndVIX:                   Float(16),
			contracts.IndFedFundsRate:          Float(4.4),
			contracts.IndTechETFWeeklyReturn:   Float(1.2),
		},
	}
}

func TestResolve_Complete(t *testing.T) {
	doc := &Document{
		AsOf:      "2024-12-31",
		BaseYear:  2024,
		Companies: []CompanyDocument{fullCompany("msft"), fullCompany("AMZN"), fullCompany("GOOGL")},
		Macro:     fullMacro(),
	}

	ds := NewResolver(modelconfig.Default()).Resolve(doc)

	require.Len(t, ds.Companies, 3)
	assert.Equal(t, "AMZN", ds.Companies[0].Ticker)
	assert.Equal(t, "GOOGL", ds.Companies[1].Ticker)
	assert.Equal(t, "MSFT", ds.Companies[2].Ticker)
	assert.Empty(t, ds.Notes)

	c := Measure(ds)
	assert.Equal(t, 30, c.Total)
	assert.Equal(t, 0, c.Estimated)
	assert.Equal(t, 100.0, c.Pct)
}

func TestResolve_ThreeOfThirtyEstimated(t *testing.T) {
	a, b, m := fullCompany("AAA"), fullCompany("BBB"), fullMacro()
	delete(a.Indicators, contracts.IndCapex)
	b.Indicators[contracts.IndRevenue] = nil
	delete(m.Indicators, contracts.IndVIX)

	doc := &Document{Companies: []CompanyDocument{a, b, fullCompany("CCC")}, Macro: m}
	ds := NewResolver(modelconfig.Default()).Resolve(doc)

	c := Measure(ds)
	assert.Equal(t, 30, c.Total)
	assert.Equal(t, 3, c.Estimated)
	assert.Equal(t, 90.0, c.Pct)

	rec, ok := ds.Company("AAA")
	require.True(t, ok)
	ind, _ := rec.Get(contracts.IndCapex)
	assert.True(t, ind.IsEstimated())
	assert.Equal(t, 50.0, ind.Value)
	assert.Equal(t, "missing", ind.Provenance.Reason)

	vix, _ := ds.Macro.Get(contracts.IndVIX)
	assert.True(t, vix.IsEstimated())
	assert.Equal(t, 20.0, vix.Value)

	missing := 0
	for _, n := range ds.Notes {
		if n.Code == NoteMissingData {
			missing++
		}
	}
	assert.Equal(t, 3, missing)
}

func TestResolve_EmptyCompanyBecomesFullyEstimated(t *testing.T) {
	doc := &Document{Companies: []CompanyDocument{{Ticker: "NEWCO"}}}
	ds := NewResolver(modelconfig.Default()).Resolve(doc)

	require.Len(t, ds.Companies, 1)
	pct, est, total := CompanyEstimatedPct(ds.Companies[0])
	assert.Equal(t, 100.0, pct)
	assert.Equal(t, 8, est)
	assert.Equal(t, 8, total)
	assert.Equal(t, "NEWCO", ds.Companies[0].Name)

	// no FCF / market cap estimation
	_, ok := ds.Companies[0].Get(contracts.IndMarketCap)
	assert.False(t, ok)
}

func TestResolve_DegenerateInputs(t *testing.T) {
	c := fullCompany("NEG")
	c.Indicators[contracts.IndCash] = Float(-5)
	c.Indicators[contracts.IndFreeCashFlow] = Float(-12)
	c.Indicators["ebitda"] = Float(30)

	doc := &Document{Companies: []CompanyDocument{c, {Ticker: ""}, fullCompany("neg")}, Macro: fullMacro()}
	ds := NewResolver(modelconfig.Default()).Resolve(doc)

	require.Len(t, ds.Companies, 1)
	rec := ds.Companies[0]
	cash, _ := rec.Get(contracts.IndCash)
	assert.False(t, cash.IsEstimated())
	assert.Equal(t, 0.0, rec.Value(contracts.IndCash))
	assert.Equal(t, -12.0, rec.FreeCashFlow())

	codes := map[string]int{}
	for _, n := range ds.Notes {
		codes[n.Code]++
	}
	assert.Equal(t, 2, codes[NoteInvalidValue]) // negative cash, blank ticker
	assert.Equal(t, 1, codes[NoteUnknownIndicator])
	assert.Equal(t, 1, codes[NoteDuplicateTicker])
}

func TestResolve_NilDocument(t *testing.T) {
	ds := NewResolver(modelconfig.Default()).Resolve(nil)
	assert.Empty(t, ds.Companies)

	c := Measure(ds)
	assert.Equal(t, 6, c.Total)
	assert.Equal(t, 6, c.Estimated)
	assert.Equal(t, 0.0, c.Pct)
}

func TestDecodeAndFileSource(t *testing.T) {
	body := `{
		"as_of": "2024-12-31",
		"base_year": 2024,
		"companies": [{"ticker": "META", "indicators": {"capex": 39.2, "revenue": null}}],
		"macro": {"indicators": {"vix": 17.4}}
	}`
	doc, err := Decode(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, 2024, doc.BaseYear)
	assert.Nil(t, doc.Companies[0].Indicators[contracts.IndRevenue])
	assert.Equal(t, 39.2, *doc.Companies[0].Indicators[contracts.IndCapex])

	_, err = Decode(strings.NewReader(`{"companies": [], "extra": 1}`))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "indicators.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	src := FileSource{Path: path}
	fetched, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31", fetched.AsOf)
	assert.Equal(t, "file:"+path, src.Name())
}
