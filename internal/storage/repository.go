package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"famfin/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements the report engine's store ports over a local
// SQLite database. Sums are computed in SQL over integer cents so aggregate
// results stay exact.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// BudgetByPeriod implements report.BudgetReader. A missing budget row is
// reported as nil, not an error.
func (r *SQLiteRepository) BudgetByPeriod(ctx context.Context, month, year int) (*core.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, month, year, limit_cents, rollover_cents
		 FROM budgets WHERE month = ? AND year = ?`, month, year)

	var b core.Budget
	var limitCents, rolloverCents int64
	err := row.Scan(&b.ID, &b.Month, &b.Year, &limitCents, &rolloverCents)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget %d/%d: %w", month, year, err)
	}
	b.Limit = core.FromCents(limitCents)
	b.Rollover = core.FromCents(rolloverCents)
	return &b, nil
}

// TransactionsByPeriod implements report.TransactionReader. An empty account
// name means all accounts. Results are ordered by date, most recent first.
func (r *SQLiteRepository) TransactionsByPeriod(ctx context.Context, month, year int, account string) ([]core.Transaction, error) {
	query := `SELECT t.id, t.date, t.amount_cents, t.description,
	                 t.category_id, c.name, t.account_id, a.name, t.is_unexpected
	          FROM transactions t
	          JOIN categories c ON c.id = t.category_id
	          JOIN accounts a ON a.id = t.account_id
	          WHERE CAST(strftime('%m', t.date) AS INTEGER) = ?
	            AND CAST(strftime('%Y', t.date) AS INTEGER) = ?`
	args := []any{month, year}
	if account != "" {
		query += ` AND a.name = ?`
		args = append(args, account)
	}
	query += ` ORDER BY t.date DESC, t.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions %d/%d: %w", month, year, err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var date string
		var amountCents int64
		if err := rows.Scan(&t.ID, &date, &amountCents, &t.Description,
			&t.CategoryID, &t.Category, &t.AccountID, &t.Account, &t.Unexpected); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Date, err = time.Parse(core.DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", date, err)
		}
		t.Amount = core.FromCents(amountCents)
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

// ExpenseTotal implements report.TransactionReader. Empty periods sum to
// zero via COALESCE.
func (r *SQLiteRepository) ExpenseTotal(ctx context.Context, month, year int, account string, unexpectedOnly bool) (int64, error) {
	query := `SELECT COALESCE(SUM(t.amount_cents), 0)
	          FROM transactions t
	          JOIN accounts a ON a.id = t.account_id
	          WHERE CAST(strftime('%m', t.date) AS INTEGER) = ?
	            AND CAST(strftime('%Y', t.date) AS INTEGER) = ?`
	args := []any{month, year}
	if account != "" {
		query += ` AND a.name = ?`
		args = append(args, account)
	}
	if unexpectedOnly {
		query += ` AND t.is_unexpected = 1`
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum expenses %d/%d: %w", month, year, err)
	}
	return total, nil
}

// AccountTotals implements report.TransactionReader. The breakdown is
// ordered by account name so chart rendering is deterministic.
func (r *SQLiteRepository) AccountTotals(ctx context.Context, month, year int) ([]core.AccountTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.name, SUM(t.amount_cents)
		 FROM transactions t
		 JOIN accounts a ON a.id = t.account_id
		 WHERE CAST(strftime('%m', t.date) AS INTEGER) = ?
		   AND CAST(strftime('%Y', t.date) AS INTEGER) = ?
		 GROUP BY a.name
		 ORDER BY a.name`, month, year)
	if err != nil {
		return nil, fmt.Errorf("account totals %d/%d: %w", month, year, err)
	}
	defer rows.Close()

	var totals []core.AccountTotal
	for rows.Next() {
		var name string
		var cents int64
		if err := rows.Scan(&name, &cents); err != nil {
			return nil, fmt.Errorf("scan account total: %w", err)
		}
		totals = append(totals, core.AccountTotal{Account: name, Total: core.FromCents(cents)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account totals: %w", err)
	}
	return totals, nil
}

type namedRow struct {
	id   int64
	name string
}

// Accounts implements report.ReferenceReader.
func (r *SQLiteRepository) Accounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.listNamed(ctx, "accounts")
	if err != nil {
		return nil, err
	}
	accounts := make([]core.Account, len(rows))
	for i, row := range rows {
		accounts[i] = core.Account{ID: row.id, Name: row.name}
	}
	return accounts, nil
}

// Categories implements report.ReferenceReader.
func (r *SQLiteRepository) Categories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.listNamed(ctx, "categories")
	if err != nil {
		return nil, err
	}
	categories := make([]core.Category, len(rows))
	for i, row := range rows {
		categories[i] = core.Category{ID: row.id, Name: row.name}
	}
	return categories, nil
}

func (r *SQLiteRepository) listNamed(ctx context.Context, table string) ([]namedRow, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM `+table+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var out []namedRow
	for rows.Next() {
		var row namedRow
		if err := rows.Scan(&row.id, &row.name); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return out, nil
}

// AccountByName implements report.ReferenceReader. Returns nil when no row
// matches.
func (r *SQLiteRepository) AccountByName(ctx context.Context, name string) (*core.Account, error) {
	var a core.Account
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM accounts WHERE name = ?`, name).
		Scan(&a.ID, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account %q: %w", name, err)
	}
	return &a, nil
}

// CategoryByName implements report.ReferenceReader. Returns nil when no row
// matches.
func (r *SQLiteRepository) CategoryByName(ctx context.Context, name string) (*core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE name = ?`, name).
		Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category %q: %w", name, err)
	}
	return &c, nil
}

// CreateTransaction implements report.TransactionWriter.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (date, amount_cents, description, category_id, account_id, is_unexpected)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.Date.Format(core.DateLayout), core.ToCents(t.Amount), t.Description,
		t.CategoryID, t.AccountID, t.Unexpected)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"description", t.Description,
		"amount_cents", core.ToCents(t.Amount),
		"account", t.Account,
		"category", t.Category)

	return t, nil
}

// TransactionCount reports the number of stored transactions.
func (r *SQLiteRepository) TransactionCount(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// EnsureAccount creates the account if absent and returns the stored row.
func (r *SQLiteRepository) EnsureAccount(ctx context.Context, name string) (core.Account, bool, error) {
	created, err := r.ensureNamed(ctx, "accounts", name)
	if err != nil {
		return core.Account{}, false, err
	}
	a, err := r.AccountByName(ctx, name)
	if err != nil {
		return core.Account{}, false, err
	}
	return *a, created, nil
}

// EnsureCategory creates the category if absent and returns the stored row.
func (r *SQLiteRepository) EnsureCategory(ctx context.Context, name string) (core.Category, bool, error) {
	created, err := r.ensureNamed(ctx, "categories", name)
	if err != nil {
		return core.Category{}, false, err
	}
	c, err := r.CategoryByName(ctx, name)
	if err != nil {
		return core.Category{}, false, err
	}
	return *c, created, nil
}

func (r *SQLiteRepository) ensureNamed(ctx context.Context, table, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO `+table+` (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return false, fmt.Errorf("ensure %s %q: %w", table, name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ensure %s %q: %w", table, name, err)
	}
	return n > 0, nil
}

// EnsureBudget creates a budget row for the period if none exists. An
// existing row is left untouched, including its amounts.
func (r *SQLiteRepository) EnsureBudget(ctx context.Context, month, year int, limitCents, rolloverCents int64) (core.Budget, bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (month, year, limit_cents, rollover_cents)
		 VALUES (?, ?, ?, ?) ON CONFLICT (month, year) DO NOTHING`,
		month, year, limitCents, rolloverCents)
	if err != nil {
		return core.Budget{}, false, fmt.Errorf("ensure budget %d/%d: %w", month, year, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Budget{}, false, fmt.Errorf("ensure budget %d/%d: %w", month, year, err)
	}

	b, err := r.BudgetByPeriod(ctx, month, year)
	if err != nil {
		return core.Budget{}, false, err
	}
	if b == nil {
		return core.Budget{}, false, fmt.Errorf("ensure budget %d/%d: row missing after insert", month, year)
	}
	return *b, n > 0, nil
}
