// Package report renders ledger analyses as plain text.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"finledger/internal/core"
)

// NotAvailable is shown for values that cannot be computed, such as the
// savings rate of a ledger without income.
const NotAvailable = "N/A"

const width = 60

// Presenter formats a core.Analysis for a terminal.
type Presenter struct {
	printer *message.Printer
}

func NewPresenter() *Presenter {
	return &Presenter{printer: message.NewPrinter(language.English)}
}

// Money formats an amount with thousands separators and two decimals,
// e.g. -$1,200.50.
func (p *Presenter) Money(d decimal.Decimal) string {
	d = d.Round(2)
	s := p.printer.Sprintf("$%.2f", d.Abs().InexactFloat64())
	if d.IsNegative() {
		return "-" + s
	}
	return s
}

// SavingsRate formats the savings rate with one decimal, or NotAvailable.
func (p *Presenter) SavingsRate(s core.OverallStats) string {
	rate, ok := s.SavingsRate()
	if !ok {
		return NotAvailable
	}
	return rate.StringFixed(1) + "%"
}

// Render writes the full report to w.
func (p *Presenter) Render(w io.Writer, a core.Analysis) error {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, "PERSONAL FINANCE ANALYSIS")
	separator(&buf)

	p.monthly(&buf, a.Monthly)
	separator(&buf)

	p.categories(&buf, a.Categories)
	separator(&buf)

	p.topExpenses(&buf, a.TopExpenses, a.TopLimit)
	separator(&buf)

	p.stats(&buf, a.Stats)
	separator(&buf)

	_, err := w.Write(buf.Bytes())
	return err
}

func (p *Presenter) monthly(buf *bytes.Buffer, rows []core.MonthlySummary) {
	section(buf, "MONTHLY SUMMARY")
	if len(rows) == 0 {
		fmt.Fprintln(buf, "No transactions found.")
		return
	}
	tw := table(buf)
	fmt.Fprintln(tw, "Month\tIncome\tExpenses\tNet\t")
	for _, m := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", m.Month, p.Money(m.Income), p.Money(m.Expenses), p.Money(m.Net))
	}
	tw.Flush()
}

func (p *Presenter) categories(buf *bytes.Buffer, rows []core.CategorySummary) {
	section(buf, "SPENDING BY CATEGORY")
	if len(rows) == 0 {
		fmt.Fprintln(buf, "No expense transactions found.")
		return
	}
	tw := table(buf)
	fmt.Fprintln(tw, "Category\tTransactions\tTotal\tAverage\t")
	total := decimal.Zero
	for _, c := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t\n", c.Category, c.TransactionCount, p.Money(c.TotalAmount), p.Money(c.AvgAmount))
		total = total.Add(c.TotalAmount)
	}
	tw.Flush()
	fmt.Fprintf(buf, "\nTotal Expenses: %s\n", p.Money(total))
}

func (p *Presenter) topExpenses(buf *bytes.Buffer, rows []core.TopExpense, limit int) {
	section(buf, fmt.Sprintf("TOP %d LARGEST EXPENSES", limit))
	if len(rows) == 0 {
		fmt.Fprintln(buf, "No expenses found.")
		return
	}
	tw := table(buf)
	fmt.Fprintln(tw, "Date\tCategory\tDescription\tAmount\t")
	for _, e := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", e.Date, e.Category, e.Description, p.Money(e.Amount))
	}
	tw.Flush()
}

func (p *Presenter) stats(buf *bytes.Buffer, s core.OverallStats) {
	section(buf, "OVERALL STATISTICS")
	tw := tabwriter.NewWriter(buf, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total Income:\t%s\n", p.Money(s.TotalIncome))
	fmt.Fprintf(tw, "Total Expenses:\t%s\n", p.Money(s.TotalExpenses))
	fmt.Fprintf(tw, "Net Savings:\t%s\n", p.Money(s.NetSavings))
	fmt.Fprintf(tw, "Savings Rate:\t%s\n", p.SavingsRate(s))
	fmt.Fprintf(tw, "Total Transactions:\t%d\n", s.TransactionCount)
	tw.Flush()
}

func table(buf *bytes.Buffer) *tabwriter.Writer {
	return tabwriter.NewWriter(buf, 0, 0, 2, ' ', tabwriter.AlignRight)
}

func section(buf *bytes.Buffer, title string) {
	fmt.Fprintln(buf, title)
	fmt.Fprintln(buf, strings.Repeat("-", width))
}

func separator(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "\n%s\n\n", strings.Repeat("=", width))
}
