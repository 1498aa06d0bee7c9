package services

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
)

// MonthlySummaries buckets transactions by YYYY-MM, newest month first.
// Positive amounts add to income, negative amounts add their absolute value
// to expenses; zero amounts only make their month appear.
func MonthlySummaries(txs []core.Transaction) []core.MonthlySummary {
	byMonth := make(map[string]*core.MonthlySummary)
	for _, t := range txs {
		key := t.Date.MonthKey()
		m, ok := byMonth[key]
		if !ok {
			m = &core.MonthlySummary{Month: key}
			byMonth[key] = m
		}
		switch {
		case t.IsIncome():
			m.Income = m.Income.Add(t.Amount)
		case t.IsExpense():
			m.Expenses = m.Expenses.Add(t.Amount.Abs())
		}
		m.Net = m.Net.Add(t.Amount)
	}

	out := make([]core.MonthlySummary, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	// ISO months sort chronologically as strings.
	slices.SortFunc(out, func(a, b core.MonthlySummary) int {
		return strings.Compare(b.Month, a.Month)
	})
	return out
}

// CategorySummaries totals expense rows per category, largest total first.
// Equal totals are ordered by category name.
func CategorySummaries(txs []core.Transaction) []core.CategorySummary {
	byCategory := make(map[string]*core.CategorySummary)
	for _, t := range txs {
		if !t.IsExpense() {
			continue
		}
		c, ok := byCategory[t.Category]
		if !ok {
			c = &core.CategorySummary{Category: t.Category}
			byCategory[t.Category] = c
		}
		c.TransactionCount++
		c.TotalAmount = c.TotalAmount.Add(t.Amount.Abs())
	}

	out := make([]core.CategorySummary, 0, len(byCategory))
	for _, c := range byCategory {
		c.AvgAmount = c.TotalAmount.Div(decimal.NewFromInt(int64(c.TransactionCount)))
		out = append(out, *c)
	}
	slices.SortFunc(out, func(a, b core.CategorySummary) int {
		if c := b.TotalAmount.Cmp(a.TotalAmount); c != 0 {
			return c
		}
		return strings.Compare(a.Category, b.Category)
	})
	return out
}

// TopExpenses returns the limit largest expenses by absolute amount. Equal
// amounts keep their input order. A limit <= 0 yields an empty result.
func TopExpenses(txs []core.Transaction, limit int) []core.TopExpense {
	if limit <= 0 {
		return []core.TopExpense{}
	}

	out := make([]core.TopExpense, 0, min(limit, len(txs)))
	for _, t := range txs {
		if !t.IsExpense() {
			continue
		}
		out = append(out, core.TopExpense{
			Date:        t.Date,
			Category:    t.Category,
			Description: t.Description,
			Amount:      t.Amount.Abs(),
		})
	}
	slices.SortStableFunc(out, func(a, b core.TopExpense) int {
		return b.Amount.Cmp(a.Amount)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ComputeOverallStats totals the whole ledger.
func ComputeOverallStats(txs []core.Transaction) core.OverallStats {
	var s core.OverallStats
	for _, t := range txs {
		switch {
		case t.IsIncome():
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case t.IsExpense():
			s.TotalExpenses = s.TotalExpenses.Add(t.Amount.Abs())
		}
	}
	s.NetSavings = s.TotalIncome.Sub(s.TotalExpenses)
	s.TransactionCount = len(txs)
	return s
}
