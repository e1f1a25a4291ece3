package report

import (
	"context"

	"famfin/internal/core"
)

// Ports consumed by the reporting engine. The engine never touches a
// concrete store; internal/storage provides the SQLite implementation and
// tests substitute in-memory fakes.
type (
	// BudgetReader resolves the budget row for a period.
	BudgetReader interface {
		// BudgetByPeriod returns nil (not an error) when no budget exists
		// for the given month and year.
		BudgetByPeriod(ctx context.Context, month, year int) (*core.Budget, error)
	}

	// TransactionReader provides the filtered and aggregate transaction
	// queries. Period matching is on the month and year components of the
	// date only. An empty account string means "all accounts".
	TransactionReader interface {
		// TransactionsByPeriod lists transactions for the period ordered by
		// date, most recent first.
		TransactionsByPeriod(ctx context.Context, month, year int, account string) ([]core.Transaction, error)

		// ExpenseTotal sums transaction amounts (in cents) over the period,
		// optionally restricted to one account and to unexpected expenses.
		// Empty periods sum to zero.
		ExpenseTotal(ctx context.Context, month, year int, account string, unexpectedOnly bool) (int64, error)

		// AccountTotals groups the period's transactions by account name,
		// summing amounts. Ordered by account name so chart rendering is
		// deterministic.
		AccountTotals(ctx context.Context, month, year int) ([]core.AccountTotal, error)
	}

	// ReferenceReader lists and resolves the immutable reference data.
	ReferenceReader interface {
		Accounts(ctx context.Context) ([]core.Account, error)
		Categories(ctx context.Context) ([]core.Category, error)
		// AccountByName and CategoryByName return nil when no row matches.
		AccountByName(ctx context.Context, name string) (*core.Account, error)
		CategoryByName(ctx context.Context, name string) (*core.Category, error)
	}

	// Store is the full read surface the engine depends on.
	Store interface {
		BudgetReader
		TransactionReader
		ReferenceReader
	}

	// TransactionWriter persists a new transaction. The returned value
	// carries the assigned ID.
	TransactionWriter interface {
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	}
)
