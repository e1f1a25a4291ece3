// Package report implements the budget reconciliation and reporting engine.
//
// Every figure is recomputed from the store on each call; the engine holds
// no state of its own. "No data" conditions (missing budget row, empty
// period) degrade to zero-valued aggregates rather than errors.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"famfin/internal/core"
)

// Engine computes derived financial figures for a reporting period.
type Engine struct {
	store  Store
	writer TransactionWriter
}

func NewEngine(store Store, writer TransactionWriter) *Engine {
	return &Engine{store: store, writer: writer}
}

// RollingBalance returns the remaining balance for a period: the budget
// limit plus rollover, minus all expenses recorded in that month and year.
// A period without a budget row yields zero.
func (e *Engine) RollingBalance(ctx context.Context, month, year int) (decimal.Decimal, error) {
	budget, err := e.store.BudgetByPeriod(ctx, month, year)
	if err != nil {
		return decimal.Zero, fmt.Errorf("budget for %d/%d: %w", month, year, err)
	}
	if budget == nil {
		return decimal.Zero, nil
	}

	totalCents, err := e.store.ExpenseTotal(ctx, month, year, "", false)
	if err != nil {
		return decimal.Zero, fmt.Errorf("expense total for %d/%d: %w", month, year, err)
	}

	return budget.TotalBudget().Sub(core.FromCents(totalCents)), nil
}

// Dashboard assembles the full report for a period and optional account
// filter. The filter restricts the transaction list and the two expense
// cards; Remaining and both chart payloads always reflect the whole
// household (the budget is shared).
func (e *Engine) Dashboard(ctx context.Context, month, year int, accountFilter string) (core.DashboardReport, error) {
	rep := core.DashboardReport{
		Month:         month,
		Year:          year,
		AccountFilter: accountFilter,
	}

	budget, err := e.store.BudgetByPeriod(ctx, month, year)
	if err != nil {
		return rep, fmt.Errorf("budget for %d/%d: %w", month, year, err)
	}
	rep.Budget = budget
	rep.TotalBudget = decimal.Zero
	if budget != nil {
		rep.TotalBudget = budget.TotalBudget()
	}

	globalCents, err := e.store.ExpenseTotal(ctx, month, year, "", false)
	if err != nil {
		return rep, fmt.Errorf("global expense total: %w", err)
	}
	globalExpenses := core.FromCents(globalCents)
	rep.Remaining = rep.TotalBudget.Sub(globalExpenses)

	account := effectiveFilter(accountFilter)

	rep.Transactions, err = e.store.TransactionsByPeriod(ctx, month, year, account)
	if err != nil {
		return rep, fmt.Errorf("list transactions: %w", err)
	}

	filteredCents, err := e.store.ExpenseTotal(ctx, month, year, account, false)
	if err != nil {
		return rep, fmt.Errorf("filtered expense total: %w", err)
	}
	rep.TotalExpenses = core.FromCents(filteredCents)

	unexpectedCents, err := e.store.ExpenseTotal(ctx, month, year, account, true)
	if err != nil {
		return rep, fmt.Errorf("unexpected expense total: %w", err)
	}
	rep.UnexpectedExpenses = core.FromCents(unexpectedCents)

	rep.Accounts, err = e.store.Accounts(ctx)
	if err != nil {
		return rep, fmt.Errorf("list accounts: %w", err)
	}

	// Budget vs actual is global regardless of filter so an individual view
	// never shows the shared budget as fully available. Overspend clamps the
	// remaining bucket at zero for the chart only.
	remainingBucket := decimal.Max(rep.Remaining, decimal.Zero)
	rep.BudgetVsActual = core.ChartData{
		Labels: []string{"Remaining Budget", "Global Expenses"},
		Data:   []float64{remainingBucket.InexactFloat64(), globalExpenses.InexactFloat64()},
	}

	totals, err := e.store.AccountTotals(ctx, month, year)
	if err != nil {
		return rep, fmt.Errorf("account totals: %w", err)
	}
	byAccount := core.ChartData{Labels: []string{}, Data: []float64{}}
	for _, t := range totals {
		byAccount.Labels = append(byAccount.Labels, t.Account)
		byAccount.Data = append(byAccount.Data, t.Total.InexactFloat64())
	}
	rep.SpendByAccount = byAccount

	slog.DebugContext(ctx, "Dashboard computed",
		"month", month,
		"year", year,
		"account_filter", accountFilter,
		"transactions", len(rep.Transactions))

	return rep, nil
}

// effectiveFilter maps the "All" sentinel and blank input to "no filter".
func effectiveFilter(accountFilter string) string {
	f := strings.TrimSpace(accountFilter)
	if f == core.AccountFilterAll {
		return ""
	}
	return f
}

// TransactionInput carries raw form values for a new transaction.
type TransactionInput struct {
	Date        string
	Amount      string
	Description string
	Category    string
	Account     string
	Unexpected  bool
}

// FieldErrors maps field names to human-readable validation messages.
type FieldErrors map[string]string

// CreateTransaction validates structural well-formedness of the input,
// resolves the account and category references and persists the
// transaction. On validation failure it returns the per-field errors and
// persists nothing; only the shape of the input is checked, never business
// rules (no budget check, no duplicate detection, negative amounts pass).
func (e *Engine) CreateTransaction(ctx context.Context, in TransactionInput) (*core.Transaction, FieldErrors, error) {
	fieldErrs := FieldErrors{}

	date, err := core.ParseDate(in.Date)
	if err != nil {
		fieldErrs["date"] = "Enter a valid date (YYYY-MM-DD)."
	}

	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		fieldErrs["amount"] = "Enter a valid amount with at most two decimal places."
	}

	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		fieldErrs["description"] = "Enter a description."
	} else if len(desc) > 255 {
		fieldErrs["description"] = "Description must be at most 255 characters."
	}

	var account *core.Account
	if strings.TrimSpace(in.Account) == "" {
		fieldErrs["account"] = "Select an account."
	} else {
		account, err = e.store.AccountByName(ctx, strings.TrimSpace(in.Account))
		if err != nil {
			return nil, nil, fmt.Errorf("resolve account %q: %w", in.Account, err)
		}
		if account == nil {
			fieldErrs["account"] = "Select a valid account."
		}
	}

	var category *core.Category
	if strings.TrimSpace(in.Category) == "" {
		fieldErrs["category"] = "Select a category."
	} else {
		category, err = e.store.CategoryByName(ctx, strings.TrimSpace(in.Category))
		if err != nil {
			return nil, nil, fmt.Errorf("resolve category %q: %w", in.Category, err)
		}
		if category == nil {
			fieldErrs["category"] = "Select a valid category."
		}
	}

	if len(fieldErrs) > 0 {
		return nil, fieldErrs, nil
	}

	tx := core.Transaction{
		Date:        date,
		Amount:      amount,
		Description: desc,
		CategoryID:  category.ID,
		Category:    category.Name,
		AccountID:   account.ID,
		Account:     account.Name,
		Unexpected:  in.Unexpected,
	}

	created, err := e.writer.CreateTransaction(ctx, tx)
	if err != nil {
		return nil, nil, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", created.ID,
		"account", created.Account,
		"category", created.Category,
		"amount", core.FormatAmount(created.Amount),
		"unexpected", created.Unexpected)

	return &created, nil, nil
}

// References returns the account and category lists for form rendering.
func (e *Engine) References(ctx context.Context) ([]core.Account, []core.Category, error) {
	accounts, err := e.store.Accounts(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list accounts: %w", err)
	}
	categories, err := e.store.Categories(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list categories: %w", err)
	}
	return accounts, categories, nil
}
