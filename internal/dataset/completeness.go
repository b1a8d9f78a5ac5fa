package dataset

import (
	"math"

	"github.com/wonny/capexwatch/internal/contracts"
)

// Completeness summarizes how much of the required input was observed
type Completeness struct {
	Total     int     `json:"total"`
	Estimated int     `json:"estimated"`
	Pct       float64 `json:"pct"` // 100 × (total − estimated) / total
}

// Measure counts required company and macro indicators.
// Optional indicators (FCF, market cap, TED, AI stocks) never count.
func Measure(ds *contracts.Dataset) Completeness {
	var c Completeness
	for _, company := range ds.Companies {
		for _, name := range contracts.RequiredCompanyIndicators() {
			c.Total++
			if company.IsEstimated(name) {
				c.Estimated++
			}
		}
	}
	for _, name := range contracts.RequiredMacroIndicators() {
		c.Total++
		if ind, ok := ds.Macro.Get(name); !ok || ind.IsEstimated() {
			c.Estimated++
		}
	}

	if c.Total > 0 {
		c.Pct = round2(100 * float64(c.Total-c.Estimated) / float64(c.Total))
	}
	return c
}

// CompanyEstimatedPct is the share (percent) of a company's required indicators that were estimated
func CompanyEstimatedPct(rec contracts.CompanyRecord) (pct float64, estimated, total int) {
	for _, name := range contracts.RequiredCompanyIndicators() {
		total++
		if ind, ok := rec.Get(name); !ok || ind.IsEstimated() {
			estimated++
		}
	}
	return 100 * float64(estimated) / float64(total), estimated, total
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
