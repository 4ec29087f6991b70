package aggregate

import (
	"sort"
	"time"

	"money-manager/internal/core"
)

const (
	// SmallCategoryShare is the share of the grand total (in percent) below
	// which a category is folded into Others.
	SmallCategoryShare = 2.5

	OthersCategory = "Others"
)

// ByCategory groups records by category name and splits the result into
// significant categories plus one Others bucket for the long tail.
func ByCategory(records []core.Transaction) core.CategoryBreakdown {
	groups := make(map[string]*core.CategoryAggregate)
	order := make([]string, 0)

	for _, r := range records {
		name := r.CategoryName()
		g, ok := groups[name]
		if !ok {
			g = &core.CategoryAggregate{
				Name:         name,
				MinAmount:    r.Amount,
				MaxAmount:    r.Amount,
				EarliestDate: r.Date,
				LatestDate:   r.Date,
			}
			groups[name] = g
			order = append(order, name)
		}
		g.TotalAmount += r.Amount
		g.Count++
		if r.Amount < g.MinAmount {
			g.MinAmount = r.Amount
		}
		if r.Amount > g.MaxAmount {
			g.MaxAmount = r.Amount
		}
		g.EarliestDate, g.LatestDate = widen(g.EarliestDate, g.LatestDate, r.Date, r.Date)
	}

	raw := make([]core.CategoryAggregate, 0, len(order))
	var total float64
	for _, name := range order {
		g := groups[name]
		total += g.TotalAmount
		raw = append(raw, *g)
	}

	// stable: equal totals keep first-seen order
	sort.SliceStable(raw, func(i, j int) bool { return raw[i].TotalAmount > raw[j].TotalAmount })
	for i := range raw {
		finish(&raw[i], total)
	}

	out := core.CategoryBreakdown{
		ChartData:       []core.CategoryAggregate{},
		RawChartData:    raw,
		Total:           total,
		SmallCategories: []core.CategoryAggregate{},
	}
	if total == 0 {
		return out
	}

	for _, c := range raw {
		if c.TotalAmount*100 >= SmallCategoryShare*total {
			out.ChartData = append(out.ChartData, c)
		} else {
			out.SmallCategories = append(out.SmallCategories, c)
		}
	}
	if len(out.SmallCategories) > 0 {
		out.ChartData = append(out.ChartData, others(out.SmallCategories, total))
	}
	return out
}

func others(small []core.CategoryAggregate, total float64) core.CategoryAggregate {
	o := core.CategoryAggregate{
		Name:         OthersCategory,
		MinAmount:    small[0].MinAmount,
		MaxAmount:    small[0].MaxAmount,
		EarliestDate: small[0].EarliestDate,
		LatestDate:   small[0].LatestDate,
	}
	for _, c := range small {
		o.TotalAmount += c.TotalAmount
		o.Count += c.Count
		if c.MinAmount < o.MinAmount {
			o.MinAmount = c.MinAmount
		}
		if c.MaxAmount > o.MaxAmount {
			o.MaxAmount = c.MaxAmount
		}
		o.EarliestDate, o.LatestDate = widen(o.EarliestDate, o.LatestDate, c.EarliestDate, c.LatestDate)
	}
	finish(&o, total)
	return o
}

func finish(c *core.CategoryAggregate, total float64) {
	c.AverageAmount = 0
	if c.Count > 0 {
		c.AverageAmount = c.TotalAmount / float64(c.Count)
	}
	c.Percentage = 0
	if total > 0 {
		c.Percentage = c.TotalAmount / total * 100
	}
	c.DateRangeLabel = dateRangeLabel(c.EarliestDate, c.LatestDate)
}

// widen extends [lo, hi] by [from, to], ignoring zero times.
func widen(lo, hi, from, to time.Time) (time.Time, time.Time) {
	if !from.IsZero() && (lo.IsZero() || from.Before(lo)) {
		lo = from
	}
	if !to.IsZero() && (hi.IsZero() || to.After(hi)) {
		hi = to
	}
	return lo, hi
}

func dateRangeLabel(earliest, latest time.Time) string {
	const layout = "Jan 2, 2006"
	switch {
	case earliest.IsZero() && latest.IsZero():
		return ""
	case earliest.IsZero():
		return latest.Format(layout)
	case latest.IsZero():
		return earliest.Format(layout)
	}
	if earliest.Year() == latest.Year() && earliest.YearDay() == latest.YearDay() {
		return earliest.Format(layout)
	}
	return earliest.Format(layout) + " - " + latest.Format(layout)
}

// CategoryNames returns the sorted distinct category names across both
// lists. With typ set, only names that have nonzero activity of that type
// are returned.
func CategoryNames(incomes, expenses []core.Transaction, typ *core.TransactionType) []string {
	seen := make(map[string]struct{})
	collect := func(records []core.Transaction, activeOnly bool) {
		for _, r := range records {
			if activeOnly && r.Amount == 0 {
				continue
			}
			seen[r.CategoryName()] = struct{}{}
		}
	}

	switch {
	case typ == nil:
		collect(incomes, false)
		collect(expenses, false)
	case *typ == core.Income:
		collect(incomes, true)
	case *typ == core.Expense:
		collect(expenses, true)
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
