// Package aggregate turns filtered transaction lists into chart-ready
// summaries: monthly totals, category breakdowns and calendar heatmaps.
//
// Every function here is pure: same input, same output, no errors. Bad data
// degrades to empty or zero values instead of failing a render.
package aggregate

import (
	"fmt"
	"sort"
	"time"

	"money-manager/internal/core"
)

// MonthKey returns the "YYYY-MM" grouping key for t.
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// Monthly groups incomes and expenses by calendar month and returns one row
// per month present in either list, ascending by month key. Records without
// a date are skipped.
func Monthly(incomes, expenses []core.Transaction) []core.MonthlyAggregate {
	months := make(map[string]*core.MonthlyAggregate)

	row := func(t time.Time) *core.MonthlyAggregate {
		key := MonthKey(t)
		m, ok := months[key]
		if !ok {
			first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
			m = &core.MonthlyAggregate{
				MonthKey: key,
				Label:    first.Format("Jan 2006"),
				Date:     first,
			}
			months[key] = m
		}
		return m
	}

	for _, r := range incomes {
		if r.Date.IsZero() {
			continue
		}
		m := row(r.Date)
		m.Income += r.Amount
		m.IncomeCount++
	}
	for _, r := range expenses {
		if r.Date.IsZero() {
			continue
		}
		m := row(r.Date)
		m.Expenses += r.Amount
		m.ExpenseCount++
	}

	out := make([]core.MonthlyAggregate, 0, len(months))
	for _, m := range months {
		m.Savings = m.Income - m.Expenses
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MonthKey < out[j].MonthKey })
	return out
}

// MonthlyForCategory is Monthly restricted to one category of the given
// type; the other type's list contributes nothing.
func MonthlyForCategory(incomes, expenses []core.Transaction, name string, typ core.TransactionType) []core.MonthlyAggregate {
	switch typ {
	case core.Income:
		return Monthly(byCategory(incomes, name), nil)
	case core.Expense:
		return Monthly(nil, byCategory(expenses, name))
	default:
		return []core.MonthlyAggregate{}
	}
}

func byCategory(records []core.Transaction, name string) []core.Transaction {
	out := make([]core.Transaction, 0, len(records))
	for _, r := range records {
		if r.CategoryName() == name {
			out = append(out, r)
		}
	}
	return out
}
