package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/internal/modelconfig"
)

// Data note codes
const (
	NoteMissingData      = "MISSING_DATA"
	NoteInvalidValue     = "INVALID_VALUE"
	NoteUnknownIndicator = "UNKNOWN_INDICATOR"
	NoteDuplicateTicker  = "DUPLICATE_TICKER"
)

const unitUSDBillions = "USD_B"

// Resolver turns a raw document into the S0 dataset.
// ⭐ SSOT: 누락 지표는 설정 기본값 + Estimated 표시 (에러로 중단하지 않음)
type Resolver struct {
	cfg *modelconfig.Config
}

// NewResolver creates a resolver backed by the model defaults
func NewResolver(cfg *modelconfig.Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve never fails on missing or degenerate data; problems become notes
func (r *Resolver) Resolve(doc *Document) *contracts.Dataset {
	if doc == nil {
		doc = &Document{}
	}

	ds := &contracts.Dataset{
		AsOf:     doc.AsOf,
		BaseYear: doc.BaseYear,
		Notes:    []contracts.DataNote{},
	}

	seen := make(map[string]bool)
	for i, cd := range doc.Companies {
		ticker := strings.ToUpper(strings.TrimSpace(cd.Ticker))
		if ticker == "" {
			ds.Notes = append(ds.Notes, contracts.DataNote{
				Code:    NoteInvalidValue,
				Subject: fmt.Sprintf("companies[%d]", i),
				Field:   "ticker",
				Message: "company without ticker skipped",
			})
			continue
		}
		if seen[ticker] {
			ds.Notes = append(ds.Notes, contracts.DataNote{
				Code:    NoteDuplicateTicker,
				Subject: ticker,
				Message: "duplicate company entry ignored; first occurrence kept",
			})
			continue
		}
		seen[ticker] = true
		ds.Companies = append(ds.Companies, r.resolveCompany(ticker, cd, &ds.Notes))
	}

	// 결정적 출력: ticker 오름차순
	sort.Slice(ds.Companies, func(i, j int) bool {
		return ds.Companies[i].Ticker < ds.Companies[j].Ticker
	})

	ds.Macro = r.resolveMacro(doc.Macro, &ds.Notes)
	return ds
}

func (r *Resolver) resolveCompany(ticker string, cd CompanyDocument, notes *[]contracts.DataNote) contracts.CompanyRecord {
	rec := contracts.CompanyRecord{
		Ticker:     ticker,
		Name:       cd.Name,
		Indicators: make(map[string]contracts.Indicator),
	}
	if rec.Name == "" {
		rec.Name = ticker
	}

	known := make(map[string]bool)
	for _, name := range contracts.RequiredCompanyIndicators() {
		known[name] = true
		raw := cd.Indicators[name]
		if ind, ok := r.observed(ticker, name, raw, cd.Period, cd.Source, true, notes); ok {
			rec.Indicators[name] = ind
			continue
		}
		rec.Indicators[name] = contracts.Estimated(name, r.cfg.Defaults.Company[name], unitUSDBillions, reason(raw))
	}

	// 선택 지표: 있으면 사용, 없으면 추정하지 않음
	for _, name := range []string{contracts.IndFreeCashFlow, contracts.IndMarketCap} {
		known[name] = true
		raw, present := cd.Indicators[name]
		if !present || raw == nil {
			continue
		}
		// FCF may legitimately be negative
		if ind, ok := r.observed(ticker, name, raw, cd.Period, cd.Source, name != contracts.IndFreeCashFlow, notes); ok {
			rec.Indicators[name] = ind
		}
	}

	for _, name := range sortedNames(cd.Indicators) {
		if !known[name] {
			*notes = append(*notes, contracts.DataNote{
				Code:    NoteUnknownIndicator,
				Subject: ticker,
				Field:   name,
				Message: "indicator not used by the model",
			})
		}
	}
	return rec
}

func (r *Resolver) resolveMacro(md MacroDocument, notes *[]contracts.DataNote) contracts.MacroSnapshot {
	snap := contracts.MacroSnapshot{Indicators: make(map[string]contracts.Indicator)}

	known := make(map[string]bool)
	for _, name := range contracts.RequiredMacroIndicators() {
		known[name] = true
		raw := md.Indicators[name]
		if ind, ok := r.observed("macro", name, raw, md.Period, md.Source, false, notes); ok {
			snap.Indicators[name] = ind
			continue
		}
		snap.Indicators[name] = contracts.Estimated(name, r.cfg.Defaults.Macro[name], macroUnit(name), reason(raw))
	}

	for _, name := range contracts.OptionalMacroIndicators() {
		known[name] = true
		if raw := md.Indicators[name]; raw != nil {
			if ind, ok := r.observed("macro", name, raw, md.Period, md.Source, false, notes); ok {
				snap.Indicators[name] = ind
			}
		}
	}

	for _, name := range sortedNames(md.Indicators) {
		if !known[name] {
			*notes = append(*notes, contracts.DataNote{
				Code:    NoteUnknownIndicator,
				Subject: "macro",
				Field:   name,
				Message: "indicator not used by the model",
			})
		}
	}
	return snap
}

// observed validates a raw value. Non-finite values are treated as missing;
// negative values on non-negative indicators are kept but flagged (they are
// clamped to zero before any ratio).
func (r *Resolver) observed(subject, name string, raw *float64, period, source string, nonNegative bool, notes *[]contracts.DataNote) (contracts.Indicator, bool) {
	if raw == nil {
		*notes = append(*notes, contracts.DataNote{
			Code:    NoteMissingData,
			Subject: subject,
			Field:   name,
			Message: "not reported; configured default used",
		})
		return contracts.Indicator{}, false
	}
	v := *raw
	if math.IsNaN(v) || math.IsInf(v, 0) {
		*notes = append(*notes, contracts.DataNote{
			Code:    NoteInvalidValue,
			Subject: subject,
			Field:   name,
			Message: "non-finite value; configured default used",
		})
		return contracts.Indicator{}, false
	}
	if nonNegative && v < 0 {
		*notes = append(*notes, contracts.DataNote{
			Code:    NoteInvalidValue,
			Subject: subject,
			Field:   name,
			Message: fmt.Sprintf("negative value %.4g clamped to zero", v),
		})
	}

	unit := unitUSDBillions
	if subject == "macro" {
		unit = macroUnit(name)
	}
	return contracts.Real(name, v, unit, period, source), true
}

func reason(raw *float64) string {
	if raw == nil {
		return "missing"
	}
	return "non_finite"
}

func macroUnit(name string) string {
	switch name {
	case contracts.IndVIX:
		return "index"
	default:
		return "pct"
	}
}

func sortedNames(m map[string]*float64) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
