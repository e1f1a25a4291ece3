package report

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"famfin/internal/core"
)

// fakeStore is an in-memory store implementing the engine's ports.
type fakeStore struct {
	budgets    []core.Budget
	txs        []core.Transaction
	accounts   []core.Account
	categories []core.Category
	nextID     int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: []core.Account{
			{ID: 1, Name: core.AccountHusband},
			{ID: 2, Name: core.AccountWife},
			{ID: 3, Name: core.AccountJoint},
		},
		categories: []core.Category{
			{ID: 1, Name: "Groceries"},
			{ID: 2, Name: "Rent"},
		},
		nextID: 1,
	}
}

func (f *fakeStore) BudgetByPeriod(_ context.Context, month, year int) (*core.Budget, error) {
	for i := range f.budgets {
		if f.budgets[i].Month == month && f.budgets[i].Year == year {
			b := f.budgets[i]
			return &b, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) inPeriod(t core.Transaction, month, year int) bool {
	return int(t.Date.Month()) == month && t.Date.Year() == year
}

func (f *fakeStore) TransactionsByPeriod(_ context.Context, month, year int, account string) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, t := range f.txs {
		if !f.inPeriod(t, month, year) {
			continue
		}
		if account != "" && t.Account != account {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeStore) ExpenseTotal(_ context.Context, month, year int, account string, unexpectedOnly bool) (int64, error) {
	var total int64
	for _, t := range f.txs {
		if !f.inPeriod(t, month, year) {
			continue
		}
		if account != "" && t.Account != account {
			continue
		}
		if unexpectedOnly && !t.Unexpected {
			continue
		}
		total += core.ToCents(t.Amount)
	}
	return total, nil
}

func (f *fakeStore) AccountTotals(_ context.Context, month, year int) ([]core.AccountTotal, error) {
	cents := map[string]int64{}
	for _, t := range f.txs {
		if f.inPeriod(t, month, year) {
			cents[t.Account] += core.ToCents(t.Amount)
		}
	}
	names := make([]string, 0, len(cents))
	for name := range cents {
		names = append(names, name)
	}
	sort.Strings(names)
	totals := make([]core.AccountTotal, len(names))
	for i, name := range names {
		totals[i] = core.AccountTotal{Account: name, Total: core.FromCents(cents[name])}
	}
	return totals, nil
}

func (f *fakeStore) Accounts(_ context.Context) ([]core.Account, error)     { return f.accounts, nil }
func (f *fakeStore) Categories(_ context.Context) ([]core.Category, error) { return f.categories, nil }

func (f *fakeStore) AccountByName(_ context.Context, name string) (*core.Account, error) {
	for i := range f.accounts {
		if f.accounts[i].Name == name {
			a := f.accounts[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CategoryByName(_ context.Context, name string) (*core.Category, error) {
	for i := range f.categories {
		if f.categories[i].Name == name {
			c := f.categories[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = f.nextID
	f.nextID++
	f.txs = append(f.txs, t)
	return t, nil
}

func (f *fakeStore) addBudget(month, year int, limit, rollover string) {
	f.budgets = append(f.budgets, core.Budget{
		ID:       int64(len(f.budgets) + 1),
		Month:    month,
		Year:     year,
		Limit:    decimal.RequireFromString(limit),
		Rollover: decimal.RequireFromString(rollover),
	})
}

func (f *fakeStore) addTx(day int, month, year int, amount, description, account string, unexpected bool) {
	f.txs = append(f.txs, core.Transaction{
		ID:          f.nextID,
		Date:        time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString(amount),
		Description: description,
		CategoryID:  1,
		Category:    "Groceries",
		AccountID:   1,
		Account:     account,
		Unexpected:  unexpected,
	})
	f.nextID++
}

func mustEqual(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s = %s, want %s", name, got, want)
	}
}

func TestRollingBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("no budget configured yields zero", func(t *testing.T) {
		store := newFakeStore()
		store.addTx(10, 3, 2024, "120.00", "groceries", core.AccountJoint, false)
		engine := NewEngine(store, store)

		balance, err := engine.RollingBalance(ctx, 3, 2024)
		if err != nil {
			t.Fatalf("RollingBalance: %v", err)
		}
		mustEqual(t, "balance", balance, "0")
	})

	t.Run("limit plus rollover minus expenses", func(t *testing.T) {
		store := newFakeStore()
		store.addBudget(3, 2024, "1000.00", "200.00")
		store.addTx(10, 3, 2024, "100.00", "groceries", core.AccountJoint, false)
		store.addTx(12, 3, 2024, "50.00", "cinema", core.AccountHusband, false)
		// Different period, must not count
		store.addTx(10, 4, 2024, "999.00", "other month", core.AccountJoint, false)
		engine := NewEngine(store, store)

		balance, err := engine.RollingBalance(ctx, 3, 2024)
		if err != nil {
			t.Fatalf("RollingBalance: %v", err)
		}
		mustEqual(t, "balance", balance, "1050.00")
	})

	t.Run("no transactions sums to zero", func(t *testing.T) {
		store := newFakeStore()
		store.addBudget(3, 2024, "1000.00", "0.00")
		engine := NewEngine(store, store)

		balance, err := engine.RollingBalance(ctx, 3, 2024)
		if err != nil {
			t.Fatalf("RollingBalance: %v", err)
		}
		mustEqual(t, "balance", balance, "1000.00")
	})
}

func TestDashboardUnfiltered(t *testing.T) {
	store := newFakeStore()
	store.addBudget(3, 2024, "1000.00", "0.00")
	store.addTx(10, 3, 2024, "100.00", "Joint Transaction", core.AccountJoint, false)
	store.addTx(12, 3, 2024, "50.00", "Husband Transaction", core.AccountHusband, false)
	engine := NewEngine(store, store)

	rep, err := engine.Dashboard(context.Background(), 3, 2024, "")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	mustEqual(t, "TotalBudget", rep.TotalBudget, "1000.00")
	mustEqual(t, "TotalExpenses", rep.TotalExpenses, "150.00")
	mustEqual(t, "Remaining", rep.Remaining, "850.00")
	if len(rep.Transactions) != 2 {
		t.Fatalf("transactions = %d, want 2", len(rep.Transactions))
	}
	// Most recent first
	if rep.Transactions[0].Description != "Husband Transaction" {
		t.Errorf("first transaction = %q, want most recent", rep.Transactions[0].Description)
	}
	if rep.Budget == nil {
		t.Error("Budget reference missing")
	}
	if len(rep.Accounts) != 3 {
		t.Errorf("accounts = %d, want 3", len(rep.Accounts))
	}
}

func TestDashboardAccountFilter(t *testing.T) {
	store := newFakeStore()
	store.addBudget(3, 2024, "1000.00", "0.00")
	store.addTx(10, 3, 2024, "100.00", "Joint Transaction", core.AccountJoint, false)
	store.addTx(12, 3, 2024, "50.00", "Husband Transaction", core.AccountHusband, true)
	engine := NewEngine(store, store)

	rep, err := engine.Dashboard(context.Background(), 3, 2024, core.AccountHusband)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	// Filtered figures
	mustEqual(t, "TotalExpenses", rep.TotalExpenses, "50.00")
	mustEqual(t, "UnexpectedExpenses", rep.UnexpectedExpenses, "50.00")
	if len(rep.Transactions) != 1 || rep.Transactions[0].Account != core.AccountHusband {
		t.Fatalf("transactions = %+v, want only Husband", rep.Transactions)
	}
	if rep.AccountFilter != core.AccountHusband {
		t.Errorf("AccountFilter = %q", rep.AccountFilter)
	}

	// Global figures unchanged by the filter
	mustEqual(t, "Remaining", rep.Remaining, "850.00")
	wantChart := []float64{850, 150}
	for i, v := range rep.BudgetVsActual.Data {
		if v != wantChart[i] {
			t.Errorf("BudgetVsActual.Data[%d] = %v, want %v", i, v, wantChart[i])
		}
	}
	if len(rep.SpendByAccount.Labels) != 2 {
		t.Fatalf("SpendByAccount.Labels = %v, want both accounts", rep.SpendByAccount.Labels)
	}
}

func TestDashboardFilterAll(t *testing.T) {
	store := newFakeStore()
	store.addBudget(3, 2024, "1000.00", "0.00")
	store.addTx(10, 3, 2024, "100.00", "Joint Transaction", core.AccountJoint, false)
	store.addTx(12, 3, 2024, "50.00", "Husband Transaction", core.AccountHusband, false)
	engine := NewEngine(store, store)

	rep, err := engine.Dashboard(context.Background(), 3, 2024, core.AccountFilterAll)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	mustEqual(t, "TotalExpenses", rep.TotalExpenses, "150.00")
	if len(rep.Transactions) != 2 {
		t.Fatalf("transactions = %d, want 2", len(rep.Transactions))
	}
}

func TestDashboardNoBudget(t *testing.T) {
	store := newFakeStore()
	store.addTx(10, 3, 2024, "100.00", "groceries", core.AccountJoint, false)
	engine := NewEngine(store, store)

	rep, err := engine.Dashboard(context.Background(), 3, 2024, "")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if rep.Budget != nil {
		t.Error("Budget should be nil")
	}
	mustEqual(t, "TotalBudget", rep.TotalBudget, "0")
	mustEqual(t, "Remaining", rep.Remaining, "-100.00")
	// Chart clamps the remaining bucket at zero; expenses stay visible.
	if rep.BudgetVsActual.Data[0] != 0 {
		t.Errorf("remaining bucket = %v, want 0", rep.BudgetVsActual.Data[0])
	}
	if rep.BudgetVsActual.Data[1] != 100 {
		t.Errorf("expenses bucket = %v, want 100", rep.BudgetVsActual.Data[1])
	}
}

func TestDashboardEmptyPeriod(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, store)

	rep, err := engine.Dashboard(context.Background(), 1, 2030, "")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	mustEqual(t, "TotalBudget", rep.TotalBudget, "0")
	mustEqual(t, "TotalExpenses", rep.TotalExpenses, "0")
	mustEqual(t, "UnexpectedExpenses", rep.UnexpectedExpenses, "0")
	mustEqual(t, "Remaining", rep.Remaining, "0")
	if len(rep.Transactions) != 0 {
		t.Errorf("transactions = %d, want 0", len(rep.Transactions))
	}
	if len(rep.SpendByAccount.Labels) != 0 || len(rep.SpendByAccount.Data) != 0 {
		t.Errorf("SpendByAccount = %+v, want empty payload", rep.SpendByAccount)
	}
}

func TestDashboardUnexpectedSubset(t *testing.T) {
	store := newFakeStore()
	store.addBudget(3, 2024, "1000.00", "0.00")
	store.addTx(10, 3, 2024, "100.00", "planned", core.AccountJoint, false)
	store.addTx(11, 3, 2024, "40.00", "car repair", core.AccountJoint, true)
	store.addTx(12, 3, 2024, "60.00", "vet", core.AccountWife, true)
	engine := NewEngine(store, store)

	rep, err := engine.Dashboard(context.Background(), 3, 2024, "")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	mustEqual(t, "TotalExpenses", rep.TotalExpenses, "200.00")
	mustEqual(t, "UnexpectedExpenses", rep.UnexpectedExpenses, "100.00")
	if rep.UnexpectedExpenses.GreaterThan(rep.TotalExpenses) {
		t.Error("unexpected expenses exceed total expenses")
	}
}

func TestDashboardAccountTotalsSorted(t *testing.T) {
	store := newFakeStore()
	store.addTx(10, 3, 2024, "10.00", "a", core.AccountWife, false)
	store.addTx(11, 3, 2024, "20.00", "b", core.AccountHusband, false)
	store.addTx(12, 3, 2024, "30.00", "c", core.AccountJoint, false)
	engine := NewEngine(store, store)

	rep, err := engine.Dashboard(context.Background(), 3, 2024, "")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	wantLabels := []string{core.AccountHusband, core.AccountJoint, core.AccountWife}
	wantData := []float64{20, 30, 10}
	for i, l := range wantLabels {
		if rep.SpendByAccount.Labels[i] != l {
			t.Errorf("Labels[%d] = %q, want %q", i, rep.SpendByAccount.Labels[i], l)
		}
		if rep.SpendByAccount.Data[i] != wantData[i] {
			t.Errorf("Data[%d] = %v, want %v", i, rep.SpendByAccount.Data[i], wantData[i])
		}
	}
}

func TestCreateTransaction(t *testing.T) {
	ctx := context.Background()

	validInput := func() TransactionInput {
		return TransactionInput{
			Date:        "2024-03-15",
			Amount:      "25.00",
			Description: "New Transaction",
			Category:    "Groceries",
			Account:     core.AccountJoint,
			Unexpected:  false,
		}
	}

	t.Run("valid input persists", func(t *testing.T) {
		store := newFakeStore()
		engine := NewEngine(store, store)

		created, fieldErrs, err := engine.CreateTransaction(ctx, validInput())
		if err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
		if fieldErrs != nil {
			t.Fatalf("unexpected field errors: %v", fieldErrs)
		}
		if created.ID == 0 {
			t.Error("created transaction has no ID")
		}
		if created.AccountID != 3 || created.Account != core.AccountJoint {
			t.Errorf("account not resolved: %+v", created)
		}
		if len(store.txs) != 1 {
			t.Fatalf("stored transactions = %d, want 1", len(store.txs))
		}

		// The new transaction shows up in subsequent reports.
		rep, err := engine.Dashboard(ctx, 3, 2024, "")
		if err != nil {
			t.Fatalf("Dashboard: %v", err)
		}
		mustEqual(t, "TotalExpenses", rep.TotalExpenses, "25.00")
	})

	t.Run("negative amount persists", func(t *testing.T) {
		store := newFakeStore()
		engine := NewEngine(store, store)

		in := validInput()
		in.Amount = "-25.00"
		_, fieldErrs, err := engine.CreateTransaction(ctx, in)
		if err != nil || fieldErrs != nil {
			t.Fatalf("CreateTransaction: err=%v fieldErrs=%v", err, fieldErrs)
		}
		if len(store.txs) != 1 {
			t.Fatalf("stored transactions = %d, want 1", len(store.txs))
		}
	})

	t.Run("invalid fields persist nothing", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*TransactionInput)
			field  string
		}{
			{"bad amount", func(in *TransactionInput) { in.Amount = "abc" }, "amount"},
			{"three decimals", func(in *TransactionInput) { in.Amount = "1.999" }, "amount"},
			{"missing date", func(in *TransactionInput) { in.Date = "" }, "date"},
			{"bad date", func(in *TransactionInput) { in.Date = "15/03/2024" }, "date"},
			{"blank description", func(in *TransactionInput) { in.Description = "  " }, "description"},
			{"missing account", func(in *TransactionInput) { in.Account = "" }, "account"},
			{"dangling account", func(in *TransactionInput) { in.Account = "Stranger" }, "account"},
			{"missing category", func(in *TransactionInput) { in.Category = "" }, "category"},
			{"dangling category", func(in *TransactionInput) { in.Category = "Yachts" }, "category"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				store := newFakeStore()
				engine := NewEngine(store, store)

				in := validInput()
				tt.mutate(&in)
				created, fieldErrs, err := engine.CreateTransaction(ctx, in)
				if err != nil {
					t.Fatalf("CreateTransaction: %v", err)
				}
				if created != nil {
					t.Error("created should be nil on validation failure")
				}
				if _, ok := fieldErrs[tt.field]; !ok {
					t.Errorf("missing field error for %q: %v", tt.field, fieldErrs)
				}
				if len(store.txs) != 0 {
					t.Errorf("stored transactions = %d, want 0", len(store.txs))
				}
			})
		}
	})
}

func TestReferences(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, store)

	accounts, categories, err := engine.References(context.Background())
	if err != nil {
		t.Fatalf("References: %v", err)
	}
	if len(accounts) != 3 || len(categories) != 2 {
		t.Fatalf("accounts=%d categories=%d", len(accounts), len(categories))
	}
}
