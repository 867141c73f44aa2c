package core

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of an expense date.
const DateLayout = "2006-01-02"

const (
	Monthly Period = "monthly"
	Weekly  Period = "weekly"
)

type (
	Period string

	// Date is a calendar day held at UTC midnight.
	Date struct {
		time.Time
	}

	// Money is an INR amount in paise.
	Money struct {
		Paise int64
	}

	Expense struct {
		ID         string
		CategoryID string
		Amount     Money
		Date       Date
		Notes      string
	}

	Budget struct {
		Amount Money
		Period Period
	}

	ProfileSettings struct {
		EnableBudgetAlerts bool
	}

	User struct {
		ID           string
		Email        string
		PasswordHash string
		Verified     bool
		CreatedAt    time.Time
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNegativeAmount  = errors.New("amount cannot be negative")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidPeriod   = errors.New("invalid budget period")
	ErrEmptyEmail      = errors.New("email is required")
)

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.UTC().Format(DateLayout)
}

// Display renders the date as "January 2, 2006" in UTC.
func (d Date) Display() string {
	return d.UTC().Format("January 2, 2006")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Paise <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (p Period) Valid() bool {
	return p == Monthly || p == Weekly
}

// ParsePeriod maps form input to a Period; empty input means monthly.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return Monthly, nil
	case Monthly, Weekly:
		return p, nil
	default:
		return "", ErrInvalidPeriod
	}
}

func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if _, ok := LookupCategory(e.CategoryID); !ok {
		return ErrUnknownCategory
	}
	return nil
}

func (b Budget) Validate() error {
	if b.Amount.Paise < 0 {
		return ErrNegativeAmount
	}
	if !b.Period.Valid() {
		return ErrInvalidPeriod
	}
	return nil
}

// DefaultBudget is what a user sees before saving a budget.
func DefaultBudget() Budget {
	return Budget{Amount: Rupees(1000), Period: Monthly}
}

func DefaultProfileSettings() ProfileSettings {
	return ProfileSettings{EnableBudgetAlerts: true}
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SortExpenses orders expenses by date descending, keeping insertion order for equal dates.
func SortExpenses(expenses []Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Date.After(expenses[j].Date.Time)
	})
}
