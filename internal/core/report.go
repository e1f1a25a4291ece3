package core

import "github.com/shopspring/decimal"

type (
	// ChartData is the {labels, data} payload shape consumed by the
	// dashboard charts.
	ChartData struct {
		Labels []string  `json:"labels"`
		Data   []float64 `json:"data"`
	}

	// AccountTotal is one row of the per-account spend breakdown.
	AccountTotal struct {
		Account string
		Total   decimal.Decimal
	}

	// DashboardReport bundles every derived figure for one reporting period.
	//
	// TotalExpenses and UnexpectedExpenses reflect the active account
	// filter. Remaining and the two chart payloads are always computed from
	// the unfiltered (global) transaction set: the household budget is
	// shared, so an individual's view must not misrepresent it.
	DashboardReport struct {
		Month int
		Year  int

		Budget      *Budget
		TotalBudget decimal.Decimal

		TotalExpenses      decimal.Decimal
		UnexpectedExpenses decimal.Decimal
		Remaining          decimal.Decimal

		Transactions  []Transaction
		AccountFilter string
		Accounts      []Account

		BudgetVsActual ChartData
		SpendByAccount ChartData
	}
)
