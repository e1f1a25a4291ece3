package http

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"famfin/internal/core"
)

type transactionView struct {
	Date        string
	Description string
	Category    string
	Account     string
	Amount      string
	Unexpected  bool
}

type dashboardView struct {
	Month int
	Year  int

	HasBudget          bool
	TotalBudget        string
	TotalExpenses      string
	UnexpectedExpenses string
	Remaining          string
	Overspent          bool

	AccountFilter string
	Accounts      []string
	Transactions  []transactionView

	BudgetVsActualJSON template.JS
	SpendByAccountJSON template.JS
}

// handleDashboard renders the report view for an optional month/year/account
// query. All "no data" cases render as zeroes, never as errors.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	month, year := ParsePeriodParams(r.URL.Query())
	account := strings.TrimSpace(r.URL.Query().Get("account"))

	rep, err := s.engine.Dashboard(r.Context(), month, year, account)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard computation failed",
			"error", err, "month", month, "year", year, "account", account)
		http.Error(w, "failed to compute report", http.StatusInternalServerError)
		return
	}

	view, err := buildDashboardView(rep)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard view build failed", "error", err)
		http.Error(w, "failed to render report", http.StatusInternalServerError)
		return
	}

	if err := s.templates.ExecuteTemplate(w, "dashboard.html", view); err != nil {
		slog.ErrorContext(r.Context(), "Dashboard template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func buildDashboardView(rep core.DashboardReport) (dashboardView, error) {
	view := dashboardView{
		Month:              rep.Month,
		Year:               rep.Year,
		HasBudget:          rep.Budget != nil,
		TotalBudget:        core.FormatAmount(rep.TotalBudget),
		TotalExpenses:      core.FormatAmount(rep.TotalExpenses),
		UnexpectedExpenses: core.FormatAmount(rep.UnexpectedExpenses),
		Remaining:          core.FormatAmount(rep.Remaining),
		Overspent:          rep.Remaining.IsNegative(),
		AccountFilter:      rep.AccountFilter,
	}

	for _, a := range rep.Accounts {
		view.Accounts = append(view.Accounts, a.Name)
	}
	for _, t := range rep.Transactions {
		view.Transactions = append(view.Transactions, transactionView{
			Date:        t.Date.Format(core.DateLayout),
			Description: t.Description,
			Category:    t.Category,
			Account:     t.Account,
			Amount:      core.FormatAmount(t.Amount),
			Unexpected:  t.Unexpected,
		})
	}

	budgetJSON, err := json.Marshal(rep.BudgetVsActual)
	if err != nil {
		return view, err
	}
	accountJSON, err := json.Marshal(rep.SpendByAccount)
	if err != nil {
		return view, err
	}
	view.BudgetVsActualJSON = template.JS(budgetJSON)
	view.SpendByAccountJSON = template.JS(accountJSON)

	return view, nil
}
