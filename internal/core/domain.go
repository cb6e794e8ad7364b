package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TxType = "Income"
	Expense TxType = "Expense"
)

const (
	Week  Duration = "Week"
	Month Duration = "Month"
	Year  Duration = "Year"
)

// StoredDateLayout is the layout transaction dates are persisted with (MM/DD/YYYY).
const StoredDateLayout = "01/02/2006"

type (
	TxType string

	// Duration is a budget evaluation period.
	Duration string

	// Date is a calendar date. The time component is always midnight UTC.
	Date struct {
		time.Time
	}

	// Record is a transaction exactly as it is kept in the store.
	Record struct {
		ID          string
		User        string
		Type        TxType
		Category    string
		Amount      Money
		Date        string // MM/DD/YYYY
		Description string
	}

	// Transaction is a Record whose date has been parsed once at load time.
	// DateOK is false when the stored date string did not parse; such
	// transactions still count in category summaries but never fall inside
	// a date window.
	Transaction struct {
		ID          string
		User        string
		Type        TxType
		Category    string
		Amount      Money
		Date        Date
		DateOK      bool
		RawDate     string
		Description string
	}

	BudgetConfig struct {
		Active   bool
		Budget   Money
		Duration Duration
	}

	// Account is the user record: current balance and budget settings.
	Account struct {
		User    string
		Balance Money
		Budget  BudgetConfig
	}
)

var (
	ErrAccountNotFound        = errors.New("account not found")
	ErrEmptyDataset           = errors.New("no transactions found")
	ErrEmptySelection         = errors.New("no categories selected")
	ErrNoMatchingTransactions = errors.New("no matching transactions")
	ErrMalformedDate          = errors.New("malformed date")
	ErrInvalidType            = errors.New("invalid transaction type")
	ErrInvalidDuration        = errors.New("invalid duration")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidRange           = errors.New("invalid date range")
)

// ParseTxType accepts "income"/"expense" in any case.
func ParseTxType(s string) (TxType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

func (t TxType) String() string {
	return string(t)
}

// ParseDuration accepts "week"/"month"/"year" in any case.
func ParseDuration(s string) (Duration, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "week":
		return Week, nil
	case "month":
		return Month, nil
	case "year":
		return Year, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDuration, s)
}

// DurationOr parses s and returns fallback when it is not a known duration.
func DurationOr(s string, fallback Duration) Duration {
	d, err := ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// Days returns the fixed window length: Week=7, Month=31, Year=365.
func (d Duration) Days() int {
	switch d {
	case Week:
		return 7
	case Year:
		return 365
	default:
		return 31
	}
}

// Adjective returns "weekly", "monthly" or "yearly".
func (d Duration) Adjective() string {
	return strings.ToLower(string(d)) + "ly"
}

func (d Duration) Valid() bool {
	return d == Week || d == Month || d == Year
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t as seen in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseStoredDate parses the MM/DD/YYYY storage layout.
func ParseStoredDate(s string) (Date, error) {
	t, err := time.Parse(StoredDateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	return Date{Time: t}, nil
}

// ParseISODate parses a YYYY-MM-DD date as used by HTML date inputs.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	return Date{Time: t}, nil
}

// Format renders the date in the storage layout.
func (d Date) Format() string {
	return d.Time.Format(StoredDateLayout)
}

// ISO renders the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Time.Format("2006-01-02")
}

// AddDays returns the date n calendar days later (earlier when n < 0).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool  { return d.Time.Equal(o.Time) }

// Between reports whether d lies in [start, end], both ends inclusive.
func (d Date) Between(start, end Date) bool {
	return !d.Before(start) && !d.After(end)
}

func (r Record) Validate() error {
	if !r.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, r.Type)
	}
	if r.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// Parse converts the record, parsing its date. The returned error wraps
// ErrMalformedDate when the date does not match the storage layout; the
// transaction is still returned with DateOK=false.
func (r Record) Parse() (Transaction, error) {
	tx := Transaction{
		ID:          r.ID,
		User:        r.User,
		Type:        r.Type,
		Category:    r.Category,
		Amount:      r.Amount,
		RawDate:     r.Date,
		Description: r.Description,
	}
	d, err := ParseStoredDate(r.Date)
	if err != nil {
		return tx, err
	}
	tx.Date = d
	tx.DateOK = true
	return tx, nil
}

func (b BudgetConfig) Validate() error {
	if b.Budget.IsNegative() {
		return ErrInvalidAmount
	}
	if !b.Duration.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDuration, b.Duration)
	}
	return nil
}
