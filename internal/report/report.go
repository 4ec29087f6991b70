// Package report renders chart views as terminal tables.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"money-manager/internal/analytics"
	"money-manager/internal/core"
	"money-manager/internal/currency"
)

// Options controls table rendering.
type Options struct {
	// Color enables ANSI colouring of savings and totals.
	Color bool
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	return t
}

func rightAlign(t table.Writer, from, to int) {
	cfgs := make([]table.ColumnConfig, 0, to-from+1)
	for n := from; n <= to; n++ {
		cfgs = append(cfgs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignFooter: text.AlignRight})
	}
	t.SetColumnConfigs(cfgs)
}

func (o Options) paint(c text.Colors, s string) string {
	if !o.Color {
		return s
	}
	return c.Sprint(s)
}

// Monthly writes one row per month plus a totals footer.
func Monthly(w io.Writer, view analytics.MonthlyView, opts Options) {
	money := currency.NewFormatter(view.Currency)
	fmt.Fprintf(w, "Monthly overview %s\n", view.Range.Label)

	t := newTable(w)
	t.AppendHeader(table.Row{"Month", "Income", "Expenses", "Savings", "Transactions"})
	for _, m := range view.Months {
		t.AppendRow(table.Row{
			m.Label,
			money.Format(m.Income),
			money.Format(m.Expenses),
			opts.savings(money, m.Savings),
			m.IncomeCount + m.ExpenseCount,
		})
	}
	t.AppendSeparator()
	t.AppendFooter(table.Row{
		opts.paint(text.Colors{text.Bold}, "Total"),
		money.Format(view.Totals.Income),
		money.Format(view.Totals.Expenses),
		opts.savings(money, view.Totals.Savings),
		"",
	})
	rightAlign(t, 2, 5)
	t.Render()
	unconverted(w, view.Unconverted)
}

func (o Options) savings(money currency.Formatter, amount float64) string {
	s := money.Format(amount)
	if amount < 0 {
		return o.paint(text.Colors{text.FgRed}, s)
	}
	return o.paint(text.Colors{text.FgGreen}, s)
}

// Categories writes the displayed slices, then the categories folded into
// "Others" when there are any.
func Categories(w io.Writer, view analytics.CategoryView, opts Options) {
	money := currency.NewFormatter(view.Currency)
	fmt.Fprintf(w, "%s by category %s\n", typeLabel(view.Type), view.Range.Label)

	t := newTable(w)
	t.AppendHeader(table.Row{"Category", "Total", "Share", "Count", "Average", "Min", "Max", "Dates"})
	for _, c := range view.Breakdown.ChartData {
		t.AppendRow(table.Row{
			c.Name,
			money.Format(c.TotalAmount),
			fmt.Sprintf("%.1f%%", c.Percentage),
			c.Count,
			money.Format(c.AverageAmount),
			money.Format(c.MinAmount),
			money.Format(c.MaxAmount),
			c.DateRangeLabel,
		})
	}
	t.AppendSeparator()
	t.AppendFooter(table.Row{opts.paint(text.Colors{text.Bold}, "Total"), money.Format(view.Breakdown.Total), "", "", "", "", "", ""})
	rightAlign(t, 2, 7)
	t.Render()

	if len(view.Breakdown.SmallCategories) > 0 {
		fmt.Fprintln(w, "Others")
		small := newTable(w)
		small.AppendHeader(table.Row{"Category", "Total", "Share"})
		for _, c := range view.Breakdown.SmallCategories {
			small.AppendRow(table.Row{c.Name, money.Format(c.TotalAmount), fmt.Sprintf("%.1f%%", c.Percentage)})
		}
		rightAlign(small, 2, 3)
		small.Render()
	}
	unconverted(w, view.Unconverted)
}

// Calendar writes the day × month grid as transaction counts, followed by
// the monthly totals.
func Calendar(w io.Writer, view analytics.CalendarView, opts Options) {
	money := currency.NewFormatter(view.Currency)
	grid := view.Calendar
	fmt.Fprintf(w, "%s calendar %v\n", typeLabel(view.Type), grid.Years)

	header := table.Row{"Day"}
	for m := time.January; m <= time.December; m++ {
		header = append(header, m.String()[:3])
	}

	t := newTable(w)
	t.AppendHeader(header)
	for _, row := range grid.Grid {
		if len(row) == 0 || row[0].IsMonthlyTotal {
			continue
		}
		out := table.Row{row[0].Day}
		for _, cell := range row {
			out = append(out, opts.cell(grid, cell))
		}
		t.AppendRow(out)
	}
	rightAlign(t, 1, 13)
	t.Render()

	totals := newTable(w)
	totals.AppendHeader(table.Row{"Month", "Count", "Amount"})
	if n := len(grid.Grid); n > 0 {
		for _, cell := range grid.Grid[n-1] {
			if !cell.IsMonthlyTotal {
				continue
			}
			totals.AppendRow(table.Row{time.Month(cell.Month + 1).String(), cell.Count, money.Format(cell.Amount)})
		}
	}
	rightAlign(totals, 2, 3)
	totals.Render()
	unconverted(w, view.Unconverted)
}

// cell renders invalid days as "·", empty days blank, and busy days
// highlighted by their capped intensity.
func (o Options) cell(grid core.CalendarGrid, c core.CalendarCell) string {
	switch {
	case !c.IsCurrentMonth:
		return "·"
	case c.Count == 0:
		return ""
	}
	s := strconv.Itoa(c.Count)
	if c.IsToday {
		s += "*"
	}
	if grid.Intensity(c.Amount) >= 1 {
		return o.paint(text.Colors{text.Bold, text.FgYellow}, s)
	}
	return s
}

func typeLabel(t core.TransactionType) string {
	if t == core.Income {
		return "Income"
	}
	return "Expenses"
}

func unconverted(w io.Writer, n int) {
	if n > 0 {
		fmt.Fprintf(w, "warning: %d transactions had no exchange rate and were left unconverted\n", n)
	}
}
