package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"money-manager/internal/aggregate"
	"money-manager/internal/cache"
	"money-manager/internal/core"
	"money-manager/internal/currency"
	"money-manager/internal/filter"
	"money-manager/internal/source/memory"
	"money-manager/internal/timerange"
)

var fixedNow = time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func rec(id int64, typ core.TransactionType, amount float64, code string, date time.Time, category string) core.Transaction {
	t := core.Transaction{ID: id, Type: typ, Amount: amount, Currency: code, Date: date}
	if category != "" {
		t.Category = &core.Category{Name: category, Type: typ}
	}
	return t
}

func newService(t *testing.T, records ...core.Transaction) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New(records...)
	table := currency.NewTable(currency.NewRates("EUR", map[string]float64{"USD": 1.1, "GBP": 0.85}))
	svc := NewService(store, currency.NewNormalizer(table), Options{
		DisplayCurrency: "EUR",
		CacheSize:       16,
		CacheTTL:        time.Hour,
		Now:             func() time.Time { return fixedNow },
	}, nil, nil)
	return svc, store
}

func TestMonthly_ScenarioA(t *testing.T) {
	svc, _ := newService(t,
		rec(1, core.Income, 100, "EUR", day(2024, 1, 15), "Salary"),
		rec(2, core.Income, 50, "EUR", day(2024, 2, 10), "Salary"),
	)

	view, err := svc.Monthly(context.Background(), Request{AllTime: true})
	require.NoError(t, err)

	require.Len(t, view.Months, 2)
	assert.Equal(t, "2024-01", view.Months[0].MonthKey)
	assert.Equal(t, 100.0, view.Months[0].Income)
	assert.Equal(t, 50.0, view.Months[1].Income)
	assert.Equal(t, Totals{Income: 150, Savings: 150}, view.Totals)
	assert.Equal(t, "EUR", view.Currency)
	assert.Equal(t, timerange.LabelAllTime, view.Range.Label)
}

func TestMonthly_DefaultRangeIsSixMonths(t *testing.T) {
	svc, _ := newService(t,
		rec(1, core.Expense, 10, "EUR", day(2024, 1, 31), "Old"),
		rec(2, core.Expense, 20, "EUR", day(2024, 2, 1), "Food"),
		rec(3, core.Expense, 30, "EUR", day(2024, 7, 31), "Food"),
	)

	view, err := svc.Monthly(context.Background(), Request{})
	require.NoError(t, err)

	assert.Equal(t, "(Feb 2024 - Jul 2024)", view.Range.Label)
	require.Len(t, view.Months, 2)
	assert.Equal(t, 50.0, view.Totals.Expenses)
}

func TestMonthly_NormalisesCurrency(t *testing.T) {
	svc, _ := newService(t,
		rec(1, core.Expense, 110, "USD", day(2024, 3, 1), "Travel"),
		rec(2, core.Expense, 5, "XYZ", day(2024, 3, 2), "Odd"),
	)

	view, err := svc.Monthly(context.Background(), Request{AllTime: true})
	require.NoError(t, err)
	require.Len(t, view.Months, 1)
	assert.InDelta(t, 105.0, view.Months[0].Expenses, 1e-9, "unknown code passes through unchanged")
	assert.Equal(t, 1, view.Unconverted)

	view, err = svc.Monthly(context.Background(), Request{AllTime: true, Currency: "usd"})
	require.NoError(t, err)
	assert.Equal(t, "USD", view.Currency)
	assert.InDelta(t, 115.0, view.Months[0].Expenses, 1e-9)
}

func TestCategories_ScenarioB(t *testing.T) {
	svc, _ := newService(t,
		rec(1, core.Expense, 80, "EUR", day(2024, 5, 1), "A"),
		rec(2, core.Expense, 15, "EUR", day(2024, 5, 2), "B"),
		rec(3, core.Expense, 5, "EUR", day(2024, 5, 3), "C"),
		rec(4, core.Income, 999, "EUR", day(2024, 5, 3), "Salary"),
	)

	view, err := svc.Categories(context.Background(), Request{AllTime: true}, core.Expense)
	require.NoError(t, err)

	assert.Equal(t, core.Expense, view.Type)
	assert.Equal(t, 100.0, view.Breakdown.Total)
	require.Len(t, view.Breakdown.ChartData, 3)
	assert.Empty(t, view.Breakdown.SmallCategories)
}

func TestCategories_Filtered(t *testing.T) {
	svc, _ := newService(t,
		rec(1, core.Expense, 80, "EUR", day(2024, 5, 1), "A"),
		core.Transaction{ID: 2, Type: core.Expense, Amount: 20, Currency: "EUR", Date: day(2024, 5, 2), Bank: "Nabil"},
	)

	view, err := svc.Categories(context.Background(), Request{AllTime: true, Filter: filter.Options{Bank: "Nabil"}}, core.Expense)
	require.NoError(t, err)
	require.Len(t, view.Breakdown.RawChartData, 1)
	assert.Equal(t, core.UnknownCategory, view.Breakdown.RawChartData[0].Name)
}

func TestCalendar_DefaultsToAllTime(t *testing.T) {
	svc, _ := newService(t,
		rec(1, core.Expense, 10, "EUR", day(2020, 2, 29), "A"),
		rec(2, core.Expense, 20, "EUR", day(2024, 2, 29), "A"),
	)

	view, err := svc.Calendar(context.Background(), Request{}, core.Expense, aggregate.AllYears())
	require.NoError(t, err)

	assert.Equal(t, timerange.LabelAllTime, view.Range.Label)
	assert.Equal(t, []int{2020, 2024}, view.Calendar.Years)
	cell := view.Calendar.Grid[28][1]
	assert.Equal(t, 2, cell.Count)
	assert.Equal(t, 30.0, cell.Amount)
	assert.Len(t, cell.YearBreakdown, 2)

	view, err = svc.Calendar(context.Background(), Request{}, core.Expense, aggregate.Years(2024))
	require.NoError(t, err)
	assert.Equal(t, 20.0, view.Calendar.Grid[28][1].Amount)
}

func TestCategoryNames(t *testing.T) {
	svc, _ := newService(t,
		rec(1, core.Expense, 8, "EUR", day(2024, 5, 1), "Food"),
		rec(2, core.Income, 9, "EUR", day(2024, 5, 1), "Salary"),
	)

	names, err := svc.CategoryNames(context.Background(), Request{AllTime: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Food", "Salary"}, names)

	income := core.Income
	names, err = svc.CategoryNames(context.Background(), Request{AllTime: true}, &income)
	require.NoError(t, err)
	assert.Equal(t, []string{"Salary"}, names)
}

func TestMonthlyForCategory(t *testing.T) {
	svc, _ := newService(t,
		rec(1, core.Expense, 8, "EUR", day(2024, 5, 1), "Food"),
		rec(2, core.Expense, 2, "EUR", day(2024, 6, 1), "Food"),
		rec(3, core.Expense, 50, "EUR", day(2024, 6, 1), "Rent"),
	)

	view, err := svc.MonthlyForCategory(context.Background(), Request{AllTime: true}, "Food", core.Expense)
	require.NoError(t, err)
	require.Len(t, view.Months, 2)
	assert.Equal(t, 10.0, view.Totals.Expenses)
}

func TestViewCache(t *testing.T) {
	svc, store := newService(t, rec(1, core.Expense, 8, "EUR", day(2024, 5, 1), "Food"))
	ctx := context.Background()
	req := Request{AllTime: true}

	_, err := svc.Categories(ctx, req, core.Expense)
	require.NoError(t, err)
	_, err = svc.Categories(ctx, req, core.Expense)
	require.NoError(t, err)

	st := svc.Stats()
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, uint64(1), st.Misses)
	assert.Equal(t, 1, st.Entries)
	assert.Equal(t, string(cache.KeyModeChecksum), st.KeyMode)

	_, err = store.Insert(ctx, rec(0, core.Expense, 3, "EUR", day(2024, 5, 2), "Food"))
	require.NoError(t, err)

	view, err := svc.Categories(ctx, req, core.Expense)
	require.NoError(t, err)
	assert.Equal(t, 11.0, view.Breakdown.Total, "new data must not be served from cache")
	assert.Equal(t, uint64(2), svc.Stats().Misses)

	svc.Invalidate()
	assert.Zero(t, svc.Stats().Entries)
}

func TestErrors(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Monthly(ctx, Request{Currency: "EURO"})
	assert.ErrorIs(t, err, core.ErrInvalidCurrency)

	_, err = svc.Categories(ctx, Request{}, "TRANSFER")
	assert.ErrorIs(t, err, core.ErrInvalidType)

	boom := errors.New("boom")
	failing := NewService(failingSource{err: boom}, nil, Options{}, nil, nil)
	_, err = failing.Monthly(ctx, Request{})
	assert.ErrorIs(t, err, boom)
}

func TestEmptyDataDegradesGracefully(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	monthly, err := svc.Monthly(ctx, Request{})
	require.NoError(t, err)
	assert.Empty(t, monthly.Months)

	cats, err := svc.Categories(ctx, Request{}, core.Expense)
	require.NoError(t, err)
	assert.Empty(t, cats.Breakdown.ChartData)

	cal, err := svc.Calendar(ctx, Request{}, core.Income, aggregate.AllYears())
	require.NoError(t, err)
	assert.Equal(t, 1.0, cal.Calendar.MaxAmount)
	assert.Equal(t, []int{2024}, cal.Calendar.Years)
}

func TestTimePeriod(t *testing.T) {
	svc, _ := newService(t)

	assert.Equal(t, "(Feb 2024 - Jul 2024)", svc.TimePeriod(Request{}))
	assert.Equal(t, "(Jun 2024 - Jul 2024)", svc.TimePeriod(Request{Mode: timerange.ModeTrend}))
	assert.Equal(t, timerange.LabelAllTime, svc.TimePeriod(Request{AllTime: true}))
	assert.Equal(t, "(Jan 2023 - Mar 2023)", svc.TimePeriod(Request{StartDate: "2023-01-10", EndDate: "2023-03-02"}))
}

type failingSource struct{ err error }

func (f failingSource) ListTransactions(context.Context, core.TransactionType) ([]core.Transaction, error) {
	return nil, f.err
}

func TestRatesReplacementReachesViews(t *testing.T) {
	store := memory.New(rec(1, core.Expense, 110, "USD", day(2024, 3, 1), "Travel"))
	table := currency.NewTable(currency.NewRates("EUR", map[string]float64{"USD": 1.1}))
	svc := NewService(store, currency.NewNormalizer(table), Options{
		Now: func() time.Time { return fixedNow },
	}, nil, nil)
	ctx := context.Background()

	view, err := svc.Categories(ctx, Request{AllTime: true}, core.Expense)
	require.NoError(t, err)
	assert.InDelta(t, 100, view.Breakdown.Total, 1e-9)

	table.Replace(currency.NewRates("EUR", map[string]float64{"USD": 2.2}))

	view, err = svc.Categories(ctx, Request{AllTime: true}, core.Expense)
	require.NoError(t, err)
	assert.InDelta(t, 50, view.Breakdown.Total, 1e-9, "a new rate table must not reuse old conversions")
}

func TestNonUTCLocationKeepsRecordDays(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	// seed and storage dates parse as UTC midnight
	march1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	store := memory.New(rec(1, core.Expense, 10, "EUR", march1, "Food"))
	svc := NewService(store, nil, Options{
		DisplayCurrency: "EUR",
		Now:             func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, est) },
	}, nil, nil)
	ctx := context.Background()

	cats, err := svc.Categories(ctx, Request{StartDate: "2024-03-01", EndDate: "2024-03-01"}, core.Expense)
	require.NoError(t, err)
	assert.Equal(t, 10.0, cats.Breakdown.Total, "a single-day range includes that day's records")

	monthly, err := svc.Monthly(ctx, Request{StartDate: "2024-03-01", EndDate: "2024-03-31"})
	require.NoError(t, err)
	require.Len(t, monthly.Months, 1)
	assert.Equal(t, "2024-03", monthly.Months[0].MonthKey)

	monthly, err = svc.Monthly(ctx, Request{StartDate: "2024-02-01", EndDate: "2024-02-29"})
	require.NoError(t, err)
	assert.Empty(t, monthly.Months)

	cal, err := svc.Calendar(ctx, Request{}, core.Expense, aggregate.Years(2024))
	require.NoError(t, err)
	assert.Equal(t, 1, cal.Calendar.Grid[0][2].Count, "March 1 cell")
	assert.Zero(t, cal.Calendar.Grid[28][1].Count, "nothing on February 29")
}

// editableSource returns the current contents of records on every call.
type editableSource struct {
	records []core.Transaction
}

func (e *editableSource) ListTransactions(_ context.Context, typ core.TransactionType) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, r := range e.records {
		if r.Type == typ {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestEditedRecordIsNotServedStale(t *testing.T) {
	src := &editableSource{records: []core.Transaction{
		rec(1, core.Expense, 10, "EUR", day(2024, 1, 10), "Food"),
	}}
	svc := NewService(src, nil, Options{
		DisplayCurrency: "EUR",
		KeyMode:         cache.KeyModeStrict,
		CacheTTL:        time.Hour,
		Now:             func() time.Time { return fixedNow },
	}, nil, nil)
	ctx := context.Background()
	january := Request{StartDate: "2024-01-01", EndDate: "2024-01-31"}
	june := Request{StartDate: "2024-06-01", EndDate: "2024-06-30"}

	view, err := svc.Categories(ctx, january, core.Expense)
	require.NoError(t, err)
	assert.Equal(t, 10.0, view.Breakdown.Total)

	src.records[0].Date = day(2024, 6, 10)
	src.records[0].Category = &core.Category{Name: "Travel", Type: core.Expense}

	view, err = svc.Categories(ctx, january, core.Expense)
	require.NoError(t, err)
	assert.Zero(t, view.Breakdown.Total, "the record moved out of January")

	view, err = svc.Categories(ctx, june, core.Expense)
	require.NoError(t, err)
	assert.Equal(t, 10.0, view.Breakdown.Total)
	require.Len(t, view.Breakdown.ChartData, 1)
	assert.Equal(t, "Travel", view.Breakdown.ChartData[0].Name)
}
