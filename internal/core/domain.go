package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DateLayout is the ISO calendar date format used for transaction dates.
	DateLayout = "2006-01-02"
	// MonthLayout is the year-month format used to bucket transactions.
	MonthLayout = "2006-01"
)

const (
	IncomeCategory  CategoryType = "income"
	ExpenseCategory CategoryType = "expense"
)

type (
	CategoryType string

	Date struct {
		time.Time
	}

	Transaction struct {
		ID          int64 // Assigned by the store on insert
		Date        Date
		Amount      decimal.Decimal // Positive is income, negative is expense
		Category    string
		Description string
	}

	Category struct {
		Name string
		Type CategoryType
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a strict YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	raw := strings.TrimSpace(s)
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return Date{}, &ValidationError{Field: "date", Value: s, Err: ErrInvalidDate}
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return &ValidationError{Field: "date", Value: "", Err: ErrInvalidDate}
	}
	return nil
}

// String returns the date in ISO form.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MonthKey returns the YYYY-MM bucket the date falls into.
func (d Date) MonthKey() string {
	return d.Format(MonthLayout)
}

// NewTransaction builds a transaction from raw text fields, validating the
// date and the amount.
func NewTransaction(date, amount, category, description string) (Transaction, error) {
	d, err := ParseDate(date)
	if err != nil {
		return Transaction{}, err
	}
	a, err := ParseAmount(amount)
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{
		Date:        d,
		Amount:      a,
		Category:    category,
		Description: description,
	}, nil
}

func (t Transaction) Validate() error {
	return t.Date.Validate()
}

// IsIncome reports whether the transaction adds money to the ledger.
func (t Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// IsExpense reports whether the transaction takes money out of the ledger.
// Zero amounts are neither income nor expense.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

func (ct CategoryType) String() string {
	return string(ct)
}

// IsValid returns true if the category type is known
func (ct CategoryType) IsValid() bool {
	switch ct {
	case IncomeCategory, ExpenseCategory:
		return true
	default:
		return false
	}
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("empty category name")
	}
	if !c.Type.IsValid() {
		return errors.New("invalid category type: " + string(c.Type))
	}
	return nil
}

// DefaultCategories is the reference list seeded into a new ledger.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Income", Type: IncomeCategory},
		{Name: "Salary", Type: IncomeCategory},
		{Name: "Groceries", Type: ExpenseCategory},
		{Name: "Rent", Type: ExpenseCategory},
		{Name: "Utilities", Type: ExpenseCategory},
		{Name: "Transportation", Type: ExpenseCategory},
		{Name: "Entertainment", Type: ExpenseCategory},
		{Name: "Healthcare", Type: ExpenseCategory},
		{Name: "Shopping", Type: ExpenseCategory},
		{Name: "Dining Out", Type: ExpenseCategory},
		{Name: "Other", Type: ExpenseCategory},
	}
}
