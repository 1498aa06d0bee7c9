package core

import "github.com/shopspring/decimal"

// DefaultTopExpensesLimit is the number of expenses ranked when no limit is given.
const DefaultTopExpensesLimit = 10

// MonthlySummary aggregates a single YYYY-MM bucket.
type MonthlySummary struct {
	Month    string
	Income   decimal.Decimal
	Expenses decimal.Decimal // Absolute value of outgoing amounts
	Net      decimal.Decimal
}

// CategorySummary aggregates the expense rows of a single category.
type CategorySummary struct {
	Category         string
	TransactionCount int
	TotalAmount      decimal.Decimal
	AvgAmount        decimal.Decimal
}

// TopExpense is an expense projected to its absolute amount.
type TopExpense struct {
	Date        Date
	Category    string
	Description string
	Amount      decimal.Decimal
}

// OverallStats summarises the whole ledger.
type OverallStats struct {
	TotalIncome      decimal.Decimal
	TotalExpenses    decimal.Decimal
	NetSavings       decimal.Decimal
	TransactionCount int
}

// SavingsRate returns net savings as a percentage of income rounded to one
// decimal place. ok is false when there is no income to divide by.
func (s OverallStats) SavingsRate() (rate decimal.Decimal, ok bool) {
	if !s.TotalIncome.IsPositive() {
		return decimal.Zero, false
	}
	return s.NetSavings.Div(s.TotalIncome).Mul(decimal.NewFromInt(100)).Round(1), true
}

// Analysis bundles every derived view of the ledger computed at one point.
type Analysis struct {
	Monthly     []MonthlySummary
	Categories  []CategorySummary
	TopExpenses []TopExpense
	TopLimit    int
	Stats       OverallStats
}
