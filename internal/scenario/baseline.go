package scenario

import "github.com/wonny/capexwatch/internal/contracts"

// BuildBaseline sums company indicators into one composite entity.
// Growth rates are ratios of sums, so larger companies dominate.
func BuildBaseline(ds *contracts.Dataset) contracts.AggregateBaseline {
	b := contracts.AggregateBaseline{}
	if ds == nil {
		return b
	}
	b.BaseYear = ds.BaseYear
	b.CompanyCount = len(ds.Companies)

	var priorCapex, priorRevenue, priorDebt float64
	for _, c := range ds.Companies {
		b.Capex += c.Value(contracts.IndCapex)
		b.Revenue += c.Value(contracts.IndRevenue)
		b.Debt += c.Value(contracts.IndTotalDebt)
		b.Cash += c.Value(contracts.IndCash)
		b.OperatingCashFlow += c.Value(contracts.IndOperatingCashFlow)
		b.FreeCashFlow += c.FreeCashFlow()
		b.MarketCap += c.Value(contracts.IndMarketCap)

		priorCapex += c.Value(contracts.IndPriorCapex)
		priorRevenue += c.Value(contracts.IndPriorRevenue)
		priorDebt += c.Value(contracts.IndPriorTotalDebt)
	}

	b.CapexGrowth = contracts.Growth(b.Capex, priorCapex)
	b.RevenueGrowth = contracts.Growth(b.Revenue, priorRevenue)
	b.DebtGrowth = contracts.Growth(b.Debt, priorDebt)
	return b
}
