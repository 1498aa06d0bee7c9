// Package charts renders ledger summaries as PNG images.
package charts

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/sync/errgroup"

	"finledger/internal/core"
	applog "finledger/internal/log"
)

const (
	MonthlySummaryFile    = "monthly_summary.png"
	CategoryBreakdownFile = "category_breakdown.png"
	SavingsTrendFile      = "savings_trend.png"

	// MaxPieSlices is the number of categories drawn before the remainder is
	// folded into a single "Other" slice.
	MaxPieSlices = 8
	OtherLabel   = "Other"
)

var (
	incomeColor  = drawing.ColorFromHex("2e7d32")
	expenseColor = drawing.ColorFromHex("c62828")
	trendColor   = drawing.ColorFromHex("1565c0")
	zeroColor    = drawing.ColorFromHex("9e9e9e")
)

// Slice is one segment of the category pie.
type Slice struct {
	Label string
	Value decimal.Decimal
}

// Renderer writes chart files into a directory.
type Renderer struct {
	dir    string
	width  int
	height int
}

func NewRenderer(dir string) *Renderer {
	return &Renderer{dir: dir, width: 1200, height: 600}
}

// Dir returns the output directory.
func (r *Renderer) Dir() string { return r.dir }

// RenderAll draws every chart that has data and returns the paths written.
// monthly may be in any order; months are plotted oldest first.
func (r *Renderer) RenderAll(ctx context.Context, monthly []core.MonthlySummary, categories []core.CategorySummary) ([]string, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return nil, fmt.Errorf("create charts directory: %w", err)
	}

	months := slices.Clone(monthly)
	slices.SortFunc(months, func(a, b core.MonthlySummary) int { return cmp.Compare(a.Month, b.Month) })

	type job struct {
		file   string
		render func(io.Writer) error
	}
	var jobs []job
	if len(months) > 0 {
		jobs = append(jobs,
			job{MonthlySummaryFile, func(w io.Writer) error { return r.monthlyBars(w, months) }},
			job{SavingsTrendFile, func(w io.Writer) error { return r.savingsTrend(w, months) }},
		)
	} else {
		slog.InfoContext(ctx, "No monthly data, skipping monthly charts")
	}
	if pie := PieSlices(categories); len(pie) > 0 {
		jobs = append(jobs, job{CategoryBreakdownFile, func(w io.Writer) error { return r.categoryPie(w, pie) }})
	} else {
		slog.InfoContext(ctx, "No expense data, skipping category chart")
	}

	paths := make([]string, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i, j := range jobs {
		paths[i] = filepath.Join(r.dir, j.file)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return writeFile(paths[i], j.render)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, p := range paths {
		slog.InfoContext(ctx, "Saved chart", applog.FieldOperation, applog.OpRender, applog.FieldPath, p)
	}
	return paths, nil
}

func writeFile(path string, render func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", filepath.Base(path), cerr)
		}
	}()
	if err := render(f); err != nil {
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	return nil
}

// PieSlices keeps the largest categories and folds the rest into "Other".
func PieSlices(categories []core.CategorySummary) []Slice {
	sorted := slices.Clone(categories)
	slices.SortStableFunc(sorted, func(a, b core.CategorySummary) int {
		return b.TotalAmount.Cmp(a.TotalAmount)
	})

	out := make([]Slice, 0, min(len(sorted), MaxPieSlices+1))
	rest := decimal.Zero
	for i, c := range sorted {
		if !c.TotalAmount.IsPositive() {
			continue
		}
		if i < MaxPieSlices {
			out = append(out, Slice{Label: c.Category, Value: c.TotalAmount})
			continue
		}
		rest = rest.Add(c.TotalAmount)
	}
	if rest.IsPositive() {
		out = append(out, Slice{Label: OtherLabel, Value: rest})
	}
	return out
}

func (r *Renderer) monthlyBars(w io.Writer, months []core.MonthlySummary) error {
	bars := make([]chart.Value, 0, 2*len(months))
	top := 0.0
	for _, m := range months {
		in, out := m.Income.InexactFloat64(), m.Expenses.InexactFloat64()
		top = max(top, in, out)
		bars = append(bars,
			chart.Value{Label: m.Month, Value: in, Style: chart.Style{FillColor: incomeColor, StrokeColor: incomeColor}},
			chart.Value{Label: "", Value: out, Style: chart.Style{FillColor: expenseColor, StrokeColor: expenseColor}},
		)
	}
	if top == 0 {
		top = 1
	}

	graph := chart.BarChart{
		Title:      "Monthly Income (green) vs Expenses (red)",
		Width:      max(r.width, 60*len(bars)+120),
		Height:     r.height,
		BarWidth:   40,
		BarSpacing: 10,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		YAxis: chart.YAxis{
			Name:           "Amount ($)",
			Range:          &chart.ContinuousRange{Min: 0, Max: top * 1.1},
			ValueFormatter: dollars,
		},
		Bars: bars,
	}
	return graph.Render(chart.PNG, w)
}

func (r *Renderer) categoryPie(w io.Writer, pie []Slice) error {
	values := make([]chart.Value, len(pie))
	for i, s := range pie {
		values[i] = chart.Value{Label: s.Label, Value: s.Value.InexactFloat64()}
	}
	graph := chart.PieChart{
		Title:  "Spending by Category",
		Width:  r.height + 200,
		Height: r.height + 200,
		Values: values,
	}
	return graph.Render(chart.PNG, w)
}

func (r *Renderer) savingsTrend(w io.Writer, months []core.MonthlySummary) error {
	xs := make([]float64, len(months))
	ys := make([]float64, len(months))
	ticks := make([]chart.Tick, len(months))
	lo, hi := 0.0, 0.0
	for i, m := range months {
		xs[i] = float64(i)
		ys[i] = m.Net.InexactFloat64()
		ticks[i] = chart.Tick{Value: xs[i], Label: m.Month}
		lo, hi = min(lo, ys[i]), max(hi, ys[i])
	}
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = 1
	}
	xmax := max(float64(len(months)-1), 1)

	graph := chart.Chart{
		Title:      "Monthly Net Savings Trend",
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Name:  "Month",
			Range: &chart.ContinuousRange{Min: 0, Max: xmax},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:           "Net Savings ($)",
			Range:          &chart.ContinuousRange{Min: lo - pad, Max: hi + pad},
			ValueFormatter: dollars,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "zero",
				XValues: []float64{0, xmax},
				YValues: []float64{0, 0},
				Style:   chart.Style{StrokeColor: zeroColor, StrokeWidth: 1, StrokeDashArray: []float64{5, 5}},
			},
			chart.ContinuousSeries{
				Name:    "net",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: trendColor,
					StrokeWidth: 2,
					FillColor:   trendColor.WithAlpha(48),
					DotColor:    trendColor,
					DotWidth:    4,
				},
			},
		},
	}
	return graph.Render(chart.PNG, w)
}

func dollars(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("$%.0f", f)
	}
	return ""
}
