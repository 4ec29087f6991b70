package core

import "time"

// TimeRange is the effective window a view is computed over. Nil bounds are
// open-ended.
type TimeRange struct {
	HasExplicitRange bool       `json:"hasExplicitRange"`
	StartDate        *time.Time `json:"startDate"`
	EndDate          *time.Time `json:"endDate"`
	Label            string     `json:"label"`
}

// Unbounded reports whether the range filters nothing.
func (r TimeRange) Unbounded() bool {
	return r.StartDate == nil && r.EndDate == nil
}

// Contains reports whether t falls inside the range, both ends inclusive.
// A zero time never matches a bounded range.
func (r TimeRange) Contains(t time.Time) bool {
	if r.Unbounded() {
		return true
	}
	if t.IsZero() {
		return false
	}
	if r.StartDate != nil && t.Before(*r.StartDate) {
		return false
	}
	if r.EndDate != nil && t.After(*r.EndDate) {
		return false
	}
	return true
}

// MonthlyAggregate holds income and expense totals for one calendar month.
type MonthlyAggregate struct {
	MonthKey     string    `json:"monthKey"` // YYYY-MM
	Label        string    `json:"label"`
	Date         time.Time `json:"date"` // first of month
	Income       float64   `json:"income"`
	Expenses     float64   `json:"expenses"`
	Savings      float64   `json:"savings"`
	IncomeCount  int       `json:"incomeCount"`
	ExpenseCount int       `json:"expenseCount"`
}

// CategoryAggregate summarises all transactions of one category.
type CategoryAggregate struct {
	Name           string    `json:"name"`
	TotalAmount    float64   `json:"totalAmount"`
	Count          int       `json:"count"`
	MinAmount      float64   `json:"minAmount"`
	MaxAmount      float64   `json:"maxAmount"`
	AverageAmount  float64   `json:"averageAmount"`
	Percentage     float64   `json:"percentage"`
	EarliestDate   time.Time `json:"earliestDate"`
	LatestDate     time.Time `json:"latestDate"`
	DateRangeLabel string    `json:"dateRangeLabel"`
}

// CategoryBreakdown is the category aggregator's output.
type CategoryBreakdown struct {
	ChartData       []CategoryAggregate `json:"chartData"`
	RawChartData    []CategoryAggregate `json:"rawChartData"`
	Total           float64             `json:"total"`
	SmallCategories []CategoryAggregate `json:"smallCategories"`
}

// YearAmount is one year's contribution to a calendar cell.
type YearAmount struct {
	Year   int     `json:"year"`
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// CalendarCell is one (day, month) position of the heatmap, or a monthly
// total when IsMonthlyTotal is set.
type CalendarCell struct {
	Date           time.Time    `json:"date"`
	Day            int          `json:"day"`   // 1..31, 0 for monthly totals
	Month          int          `json:"month"` // 0..11
	Count          int          `json:"count"`
	Amount         float64      `json:"amount"`
	IsCurrentMonth bool         `json:"isCurrentMonth"`
	IsToday        bool         `json:"isToday"`
	YearBreakdown  []YearAmount `json:"yearBreakdown,omitempty"`
	IsMonthlyTotal bool         `json:"isMonthlyTotal"`
}

// CalendarGrid is 31 day rows plus a trailing monthly-total row, each with
// 12 month columns.
type CalendarGrid struct {
	Grid      [][]CalendarCell `json:"grid"`
	Years     []int            `json:"years"`
	MaxCount  int              `json:"maxCount"`
	MaxAmount float64          `json:"maxAmount"`
}

// Intensity maps an amount onto [0, 1] against the capped scale.
func (g CalendarGrid) Intensity(amount float64) float64 {
	if amount <= 0 || g.MaxAmount <= 0 {
		return 0
	}
	if amount >= g.MaxAmount {
		return 1
	}
	return amount / g.MaxAmount
}
