package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"famfin/internal/core"
	"famfin/internal/report"
)

type transactionFormView struct {
	Accounts   []string
	Categories []string

	// Entered values, echoed back on validation failure.
	Date        string
	Amount      string
	Description string
	Category    string
	Account     string
	Unexpected  bool

	Errors report.FieldErrors
}

// handleNewTransaction renders an empty transaction form pre-filled with the
// current date.
func (s *Server) handleNewTransaction(w http.ResponseWriter, r *http.Request) {
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

	view := transactionFormView{
		Date: time.Now().Format(core.DateLayout),
	}
	if err := s.fillReferences(r, &view); err != nil {
		http.Error(w, "failed to load form data", http.StatusInternalServerError)
		return
	}

	if err := s.templates.ExecuteTemplate(w, "transaction_form.html", view); err != nil {
		slog.ErrorContext(r.Context(), "Transaction form template failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleCreateTransaction persists a submitted transaction. Valid input
// redirects to the report view; invalid input redisplays the form with
// field-level errors and persists nothing.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	in := report.TransactionInput{
		Date:        r.Form.Get("date"),
		Amount:      r.Form.Get("amount"),
		Description: sanitizeInput(r.Form.Get("description")),
		Category:    r.Form.Get("category"),
		Account:     r.Form.Get("account"),
		Unexpected:  r.Form.Get("is_unexpected") != "",
	}

	created, fieldErrs, err := s.engine.CreateTransaction(r.Context(), in)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction create failed", "error", err)
		http.Error(w, "failed to save transaction", http.StatusInternalServerError)
		return
	}
	if fieldErrs != nil {
		view := transactionFormView{
			Date:        in.Date,
			Amount:      in.Amount,
			Description: in.Description,
			Category:    in.Category,
			Account:     in.Account,
			Unexpected:  in.Unexpected,
			Errors:      fieldErrs,
		}
		if err := s.fillReferences(r, &view); err != nil {
			http.Error(w, "failed to load form data", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		if s.templates == nil {
			return
		}
		if err := s.templates.ExecuteTemplate(w, "transaction_form.html", view); err != nil {
			slog.ErrorContext(r.Context(), "Transaction form template failed", "error", err)
		}
		return
	}

	slog.InfoContext(r.Context(), "Transaction recorded",
		"id", created.ID, "account", created.Account)

	// Land on the period the transaction belongs to, not necessarily the
	// current month.
	target := fmt.Sprintf("/?month=%d&year=%d", int(created.Date.Month()), created.Date.Year())
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) fillReferences(r *http.Request, view *transactionFormView) error {
	accounts, categories, err := s.engine.References(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Reference data load failed", "error", err)
		return err
	}
	for _, a := range accounts {
		view.Accounts = append(view.Accounts, a.Name)
	}
	for _, c := range categories {
		view.Categories = append(view.Categories, c.Name)
	}
	return nil
}
