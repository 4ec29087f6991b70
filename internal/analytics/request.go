package analytics

import (
	"strings"
	"time"

	"money-manager/internal/cache"
	"money-manager/internal/core"
	"money-manager/internal/filter"
	"money-manager/internal/timerange"
)

// Request carries the parameters every chart view shares.
type Request struct {
	StartDate string // YYYY-MM-DD, optional
	EndDate   string // YYYY-MM-DD, optional
	AllTime   bool
	Mode      timerange.Mode
	Currency  string // display currency; empty means the service default
	Filter    filter.Options
}

func (r Request) input() timerange.Input {
	return timerange.Input{StartDate: r.StartDate, EndDate: r.EndDate, AllTime: r.AllTime}
}

func (r Request) hasExplicitDates() bool {
	return strings.TrimSpace(r.StartDate) != "" || strings.TrimSpace(r.EndDate) != ""
}

// Totals sums a monthly series.
type Totals struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Savings  float64 `json:"savings"`
}

// MonthlyView is the income/expense/savings series for a range.
type MonthlyView struct {
	Range       core.TimeRange          `json:"range"`
	Currency    string                  `json:"currency"`
	Months      []core.MonthlyAggregate `json:"months"`
	Totals      Totals                  `json:"totals"`
	Unconverted int                     `json:"unconverted,omitempty"`
}

// CategoryView is the category breakdown of one transaction type.
type CategoryView struct {
	Range       core.TimeRange         `json:"range"`
	Currency    string                 `json:"currency"`
	Type        core.TransactionType   `json:"type"`
	Breakdown   core.CategoryBreakdown `json:"breakdown"`
	Unconverted int                    `json:"unconverted,omitempty"`
}

// CalendarView is the day-by-month heatmap of one transaction type.
type CalendarView struct {
	Range       core.TimeRange       `json:"range"`
	Currency    string               `json:"currency"`
	Type        core.TransactionType `json:"type"`
	Calendar    core.CalendarGrid    `json:"calendar"`
	Unconverted int                  `json:"unconverted,omitempty"`
}

// CacheStats reports hit and miss counts across all view caches.
type CacheStats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Entries int    `json:"entries"`
	KeyMode string `json:"keyMode"`
}

// Options configures a Service.
type Options struct {
	DisplayCurrency string
	CacheSize       int
	CacheTTL        time.Duration
	KeyMode         cache.KeyMode
	Now             func() time.Time
	// Location is the zone ranges are resolved and records are grouped in.
	// Nil means the location of Now.
	Location *time.Location
}

func (o Options) withDefaults() Options {
	if o.DisplayCurrency == "" {
		o.DisplayCurrency = "EUR"
	}
	o.DisplayCurrency = strings.ToUpper(o.DisplayCurrency)
	if o.CacheSize <= 0 {
		o.CacheSize = 64
	}
	if o.KeyMode == "" {
		o.KeyMode = cache.KeyModeChecksum
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Location == nil {
		o.Location = o.Now().Location()
	}
	return o
}
