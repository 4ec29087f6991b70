// Package analytics runs the chart pipeline: load transactions from a
// source, convert them to one display currency, resolve the time range,
// filter, then aggregate through the derived-view caches.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"money-manager/internal/aggregate"
	"money-manager/internal/cache"
	"money-manager/internal/core"
	"money-manager/internal/currency"
	"money-manager/internal/filter"
	"money-manager/internal/log"
	"money-manager/internal/source"
	"money-manager/internal/timerange"
)

const (
	ViewMonthly            = "monthly"
	ViewCategories         = "categories"
	ViewCalendar           = "calendar"
	ViewCategoryNames      = "category_names"
	ViewMonthlyForCategory = "monthly_for_category"
)

type Service struct {
	src        source.TransactionLister
	normalizer *currency.Normalizer
	opts       Options
	logger     *log.Logger
	structured *log.StructuredLogger

	monthly    *cache.LRUCache[[]core.MonthlyAggregate]
	categories *cache.LRUCache[core.CategoryBreakdown]
	calendar   *cache.LRUCache[core.CalendarGrid]
	names      *cache.LRUCache[[]string]
}

// NewService wires the pipeline. manager may be nil; when set the view
// caches are registered for periodic cleanup and purging.
func NewService(src source.TransactionLister, normalizer *currency.Normalizer, opts Options, manager *cache.Manager, logger *log.Logger) *Service {
	opts = opts.withDefaults()
	if logger == nil {
		logger = log.Discard()
	}
	if normalizer == nil {
		normalizer = currency.NewNormalizer(nil)
	}
	logger = logger.WithComponent(log.ComponentAnalytics)

	s := &Service{
		src:        src,
		normalizer: normalizer,
		opts:       opts,
		logger:     logger,
		structured: log.NewStructuredLogger(logger),
		monthly:    cache.NewLRUCache[[]core.MonthlyAggregate](opts.CacheSize, opts.CacheTTL),
		categories: cache.NewLRUCache[core.CategoryBreakdown](opts.CacheSize, opts.CacheTTL),
		calendar:   cache.NewLRUCache[core.CalendarGrid](opts.CacheSize, opts.CacheTTL),
		names:      cache.NewLRUCache[[]string](opts.CacheSize, opts.CacheTTL),
	}
	if manager != nil {
		manager.Register(s.monthly)
		manager.Register(s.categories)
		manager.Register(s.calendar)
		manager.Register(s.names)
	}
	return s
}

// dataset is one request's filtered, normalised input.
type dataset struct {
	incomes     []core.Transaction
	expenses    []core.Transaction
	rng         core.TimeRange
	currency    string
	rates       string
	unconverted int
}

func (d dataset) of(typ core.TransactionType) []core.Transaction {
	if typ == core.Income {
		return d.incomes
	}
	return d.expenses
}

func (s *Service) displayCurrency(req Request) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Currency))
	if code == "" {
		return s.opts.DisplayCurrency, nil
	}
	if !currency.IsISO(code) {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidCurrency, req.Currency)
	}
	return code, nil
}

// now is the current time in the service location.
func (s *Service) now() time.Time {
	return s.opts.Now().In(s.opts.Location)
}

// load fetches both transaction types concurrently.
func (s *Service) load(ctx context.Context) (incomes, expenses []core.Transaction, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		incomes, err = s.src.ListTransactions(gctx, core.Income)
		if err != nil {
			return fmt.Errorf("list incomes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		expenses, err = s.src.ListTransactions(gctx, core.Expense)
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	s.logger.DebugContext(ctx, "Transactions loaded",
		log.FieldOperation, log.OpLoad,
		"incomes", len(incomes),
		"expenses", len(expenses))
	return incomes, expenses, nil
}

func (s *Service) prepare(ctx context.Context, req Request, mode timerange.Mode) (dataset, error) {
	code, err := s.displayCurrency(req)
	if err != nil {
		return dataset{}, err
	}
	incomes, expenses, err := s.load(ctx)
	if err != nil {
		return dataset{}, err
	}

	version := s.normalizer.RatesVersion()
	in, unconvIn := s.normalizer.NormalizeAll(incomes, code)
	ex, unconvEx := s.normalizer.NormalizeAll(expenses, code)
	unconverted := unconvIn + unconvEx
	if unconverted > 0 {
		s.logger.WarnContext(ctx, "Transactions left unconverted",
			log.FieldOperation, log.OpNormalize,
			log.FieldUnconverted, unconverted,
			log.FieldCurrency, code)
	}
	s.localize(in)
	s.localize(ex)

	rng := timerange.Resolve(req.input(), mode, s.now())
	return dataset{
		incomes:     filter.Apply(in, rng, req.Filter),
		expenses:    filter.Apply(ex, rng, req.Filter),
		rng:         rng,
		currency:    code,
		rates:       strconv.FormatUint(version, 10),
		unconverted: unconverted,
	}, nil
}

// localize reads each record's date as a wall-clock time in the service
// location, so a date stored as "2024-03-01" stays on March 1 whatever zone
// it was parsed in. records must be a copy owned by the caller.
func (s *Service) localize(records []core.Transaction) {
	loc := s.opts.Location
	for i := range records {
		d := records[i].Date
		if d.IsZero() || d.Location() == loc {
			continue
		}
		records[i].Date = time.Date(d.Year(), d.Month(), d.Day(),
			d.Hour(), d.Minute(), d.Second(), d.Nanosecond(), loc)
	}
}

func (s *Service) key(parts ...string) string {
	return strings.Join(parts, "|")
}

func (s *Service) fingerprint(records []core.Transaction) string {
	return cache.KeyOf(records, s.opts.KeyMode).String()
}

// Monthly returns the monthly series for the request's range.
func (s *Service) Monthly(ctx context.Context, req Request) (MonthlyView, error) {
	d, err := s.prepare(ctx, req, req.Mode)
	if err != nil {
		return MonthlyView{}, err
	}
	fp := s.fingerprint(d.incomes) + "/" + s.fingerprint(d.expenses)
	key := s.key(ViewMonthly, d.currency, d.rates, req.Filter.Key(), fp)

	months, hit := s.monthly.Get(key)
	if !hit {
		months = aggregate.Monthly(d.incomes, d.expenses)
		s.monthly.Set(key, months)
	}
	s.structured.LogView(ctx, ViewMonthly, "all", d.rng.Label, len(d.incomes)+len(d.expenses), fp, hit, d.currency)

	return MonthlyView{
		Range:       d.rng,
		Currency:    d.currency,
		Months:      months,
		Totals:      totals(months),
		Unconverted: d.unconverted,
	}, nil
}

// MonthlyForCategory is Monthly restricted to one category of typ.
func (s *Service) MonthlyForCategory(ctx context.Context, req Request, name string, typ core.TransactionType) (MonthlyView, error) {
	if !typ.IsValid() {
		return MonthlyView{}, core.ErrInvalidType
	}
	d, err := s.prepare(ctx, req, req.Mode)
	if err != nil {
		return MonthlyView{}, err
	}
	records := d.of(typ)
	fp := s.fingerprint(records)
	key := s.key(ViewMonthlyForCategory, typ.String(), name, d.currency, d.rates, req.Filter.Key(), fp)

	months, hit := s.monthly.Get(key)
	if !hit {
		months = aggregate.MonthlyForCategory(d.incomes, d.expenses, name, typ)
		s.monthly.Set(key, months)
	}
	s.structured.LogView(ctx, ViewMonthlyForCategory, typ.String(), d.rng.Label, len(records), fp, hit, d.currency)

	return MonthlyView{
		Range:       d.rng,
		Currency:    d.currency,
		Months:      months,
		Totals:      totals(months),
		Unconverted: d.unconverted,
	}, nil
}

// Categories returns the category breakdown of typ.
func (s *Service) Categories(ctx context.Context, req Request, typ core.TransactionType) (CategoryView, error) {
	if !typ.IsValid() {
		return CategoryView{}, core.ErrInvalidType
	}
	d, err := s.prepare(ctx, req, req.Mode)
	if err != nil {
		return CategoryView{}, err
	}
	records := d.of(typ)
	fp := s.fingerprint(records)
	key := s.key(ViewCategories, typ.String(), d.currency, d.rates, req.Filter.Key(), fp)

	breakdown, hit := s.categories.Get(key)
	if !hit {
		breakdown = aggregate.ByCategory(records)
		s.categories.Set(key, breakdown)
	}
	s.structured.LogView(ctx, ViewCategories, typ.String(), d.rng.Label, len(records), fp, hit, d.currency)

	return CategoryView{
		Range:       d.rng,
		Currency:    d.currency,
		Type:        typ,
		Breakdown:   breakdown,
		Unconverted: d.unconverted,
	}, nil
}

// Calendar returns the heatmap of typ. Without explicit dates the calendar
// covers all time; the year selection then picks which years are shown.
func (s *Service) Calendar(ctx context.Context, req Request, typ core.TransactionType, years aggregate.YearSelection) (CalendarView, error) {
	if !typ.IsValid() {
		return CalendarView{}, core.ErrInvalidType
	}
	if !req.hasExplicitDates() {
		req.AllTime = true
	}
	d, err := s.prepare(ctx, req, req.Mode)
	if err != nil {
		return CalendarView{}, err
	}
	records := d.of(typ)
	today := s.now()
	fp := s.fingerprint(records)
	key := s.key(ViewCalendar, typ.String(), d.currency, d.rates, req.Filter.Key(), yearsKey(years), today.Format("2006-01-02"), fp)

	grid, hit := s.calendar.Get(key)
	if !hit {
		grid = aggregate.Calendar(records, years, today)
		s.calendar.Set(key, grid)
	}
	s.structured.LogView(ctx, ViewCalendar, typ.String(), d.rng.Label, len(records), fp, hit, d.currency)

	return CalendarView{
		Range:       d.rng,
		Currency:    d.currency,
		Type:        typ,
		Calendar:    grid,
		Unconverted: d.unconverted,
	}, nil
}

// CategoryNames lists the distinct category names in range. A nil typ
// covers both types.
func (s *Service) CategoryNames(ctx context.Context, req Request, typ *core.TransactionType) ([]string, error) {
	if typ != nil && !typ.IsValid() {
		return nil, core.ErrInvalidType
	}
	d, err := s.prepare(ctx, req, req.Mode)
	if err != nil {
		return nil, err
	}
	typeKey := "all"
	if typ != nil {
		typeKey = typ.String()
	}
	fp := s.fingerprint(d.incomes) + "/" + s.fingerprint(d.expenses)
	key := s.key(ViewCategoryNames, typeKey, req.Filter.Key(), fp)

	names, hit := s.names.Get(key)
	if !hit {
		names = aggregate.CategoryNames(d.incomes, d.expenses, typ)
		s.names.Set(key, names)
	}
	s.structured.LogView(ctx, ViewCategoryNames, typeKey, d.rng.Label, len(d.incomes)+len(d.expenses), fp, hit, d.currency)
	return names, nil
}

// TimePeriod returns the label of the range the request resolves to.
func (s *Service) TimePeriod(req Request) string {
	return timerange.Resolve(req.input(), req.Mode, s.now()).Label
}

// Invalidate drops every cached view.
func (s *Service) Invalidate() {
	s.monthly.Purge()
	s.categories.Purge()
	s.calendar.Purge()
	s.names.Purge()
}

// Stats sums the counters of all view caches.
func (s *Service) Stats() CacheStats {
	st := CacheStats{KeyMode: string(s.opts.KeyMode)}
	add := func(hits, misses uint64, size int) {
		st.Hits += hits
		st.Misses += misses
		st.Entries += size
	}
	h, m := s.monthly.Stats()
	add(h, m, s.monthly.Size())
	h, m = s.categories.Stats()
	add(h, m, s.categories.Size())
	h, m = s.calendar.Stats()
	add(h, m, s.calendar.Size())
	h, m = s.names.Stats()
	add(h, m, s.names.Size())
	return st
}

func totals(months []core.MonthlyAggregate) Totals {
	var t Totals
	for _, m := range months {
		t.Income += m.Income
		t.Expenses += m.Expenses
	}
	t.Savings = t.Income - t.Expenses
	return t
}

func yearsKey(sel aggregate.YearSelection) string {
	if sel.All || len(sel.Years) == 0 {
		return "all"
	}
	years := append([]int(nil), sel.Years...)
	sort.Ints(years)
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, ",")
}
