package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Account names form a fixed enumeration seeded at install time.
const (
	AccountHusband = "Husband"
	AccountWife    = "Wife"
	AccountJoint   = "Joint"
)

// AccountFilterAll is the sentinel filter value meaning "no account filter".
const AccountFilterAll = "All"

type (
	// Account is immutable reference data identifying who spent.
	Account struct {
		ID   int64
		Name string
	}

	// Category is immutable reference data classifying a transaction.
	Category struct {
		ID   int64
		Name string
	}

	// Budget holds the spending limit for one (month, year) period.
	// Rollover is a carried-forward adjustment added to the limit before
	// computing the remaining balance.
	Budget struct {
		ID       int64
		Month    int
		Year     int
		Limit    decimal.Decimal
		Rollover decimal.Decimal
	}

	// Transaction is a single recorded expense. Account and Category carry
	// the resolved names alongside the row IDs so views never need a second
	// lookup.
	Transaction struct {
		ID          int64
		Date        time.Time
		Amount      decimal.Decimal
		Description string
		CategoryID  int64
		Category    string
		AccountID   int64
		Account     string
		Unexpected  bool
	}
)

var (
	ErrMissingDate        = errors.New("date is required")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("description is required")
	ErrDescriptionTooLong = errors.New("description too long (max 255 characters)")
	ErrUnknownAccount     = errors.New("unknown account")
	ErrUnknownCategory    = errors.New("unknown category")
)

// TotalBudget returns the limit plus the rollover adjustment.
func (b Budget) TotalBudget() decimal.Decimal {
	return b.Limit.Add(b.Rollover)
}

// DateLayout is the wire and storage format for transaction dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrMissingDate
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// Validate checks structural well-formedness of a transaction. Business
// rules are deliberately absent: negative amounts are allowed (a refund is a
// negative expense) and nothing checks the remaining budget.
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 255 {
		return ErrDescriptionTooLong
	}
	if t.AccountID == 0 {
		return ErrUnknownAccount
	}
	if t.CategoryID == 0 {
		return ErrUnknownCategory
	}
	return nil
}
