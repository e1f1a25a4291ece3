// Package seed creates the baseline reference data: the three household
// accounts, the four default categories and a budget row for the current
// month. Every step is get-or-create; re-running never modifies or deletes
// existing rows.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"famfin/internal/core"
)

// DefaultCategories are the baseline spending categories.
var DefaultCategories = []string{"Groceries", "Rent", "Entertainment", "Unexpected"}

// DefaultAccounts is the fixed account enumeration.
var DefaultAccounts = []string{core.AccountHusband, core.AccountWife, core.AccountJoint}

// Store is the write surface seeding needs.
type Store interface {
	EnsureAccount(ctx context.Context, name string) (core.Account, bool, error)
	EnsureCategory(ctx context.Context, name string) (core.Category, bool, error)
	EnsureBudget(ctx context.Context, month, year int, limitCents, rolloverCents int64) (core.Budget, bool, error)
}

// Run ensures the baseline accounts, categories and the current-month budget
// exist. budgetLimit applies only when the budget row is created; an
// existing row keeps its amounts.
func Run(ctx context.Context, store Store, budgetLimit decimal.Decimal) error {
	for _, name := range DefaultAccounts {
		account, created, err := store.EnsureAccount(ctx, name)
		if err != nil {
			return fmt.Errorf("ensure account %q: %w", name, err)
		}
		slog.InfoContext(ctx, "Account ensured", "name", account.Name, "id", account.ID, "created", created)
	}

	for _, name := range DefaultCategories {
		category, created, err := store.EnsureCategory(ctx, name)
		if err != nil {
			return fmt.Errorf("ensure category %q: %w", name, err)
		}
		slog.InfoContext(ctx, "Category ensured", "name", category.Name, "id", category.ID, "created", created)
	}

	now := time.Now()
	budget, created, err := store.EnsureBudget(ctx, int(now.Month()), now.Year(),
		core.ToCents(budgetLimit), 0)
	if err != nil {
		return fmt.Errorf("ensure budget %d/%d: %w", int(now.Month()), now.Year(), err)
	}
	slog.InfoContext(ctx, "Budget ensured",
		"month", budget.Month,
		"year", budget.Year,
		"limit", core.FormatAmount(budget.Limit),
		"rollover", core.FormatAmount(budget.Rollover),
		"created", created)

	return nil
}
