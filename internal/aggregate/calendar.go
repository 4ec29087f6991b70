package aggregate

import (
	"sort"
	"time"

	"money-manager/internal/core"
)

const (
	daysPerRow  = 31
	monthsInRow = 12

	// scalePercentile caps the heatmap colour scale.
	scalePercentile = 0.80
)

// YearSelection picks the years a calendar covers. A nil or empty Years
// with All set means every year present in the data.
type YearSelection struct {
	Years []int
	All   bool
}

// Years selects explicit years.
func Years(years ...int) YearSelection { return YearSelection{Years: years} }

// AllYears selects every year with data.
func AllYears() YearSelection { return YearSelection{All: true} }

type dayKey struct {
	year  int
	month time.Month
	day   int
}

type dayTotal struct {
	count  int
	amount float64
}

// Calendar builds the day × month heatmap. Rows 0..30 are days 1..31, the
// final row holds monthly totals. With more than one target year every cell
// sums across the years in which that day exists and carries a per-year
// breakdown of the years that contributed.
func Calendar(records []core.Transaction, sel YearSelection, today time.Time) core.CalendarGrid {
	totals := make(map[dayKey]dayTotal)
	present := make(map[int]struct{})
	for _, r := range records {
		if r.Date.IsZero() {
			continue
		}
		k := dayKey{r.Date.Year(), r.Date.Month(), r.Date.Day()}
		t := totals[k]
		t.count++
		t.amount += r.Amount
		totals[k] = t
		present[r.Date.Year()] = struct{}{}
	}

	years := targetYears(sel, present, today)
	multi := len(years) > 1
	loc := today.Location()

	grid := make([][]core.CalendarCell, 0, daysPerRow+1)
	monthly := make([]core.CalendarCell, monthsInRow)
	monthlyYears := make([]map[int]*core.YearAmount, monthsInRow)
	for m := range monthly {
		monthly[m] = core.CalendarCell{
			Date:           time.Date(years[len(years)-1], time.Month(m+1), 1, 0, 0, 0, 0, loc),
			Month:          m,
			IsCurrentMonth: true,
			IsMonthlyTotal: true,
		}
		monthlyYears[m] = make(map[int]*core.YearAmount)
	}

	nonZero := make([]float64, 0)
	maxCount := 0

	for day := 1; day <= daysPerRow; day++ {
		row := make([]core.CalendarCell, monthsInRow)
		for m := 0; m < monthsInRow; m++ {
			month := time.Month(m + 1)
			cell := core.CalendarCell{Day: day, Month: m}

			for _, y := range years {
				if day > DaysInMonth(y, month) {
					continue
				}
				cell.IsCurrentMonth = true
				cell.Date = time.Date(y, month, day, 0, 0, 0, 0, loc)
				if y == today.Year() && month == today.Month() && day == today.Day() {
					cell.IsToday = true
				}

				t, ok := totals[dayKey{y, month, day}]
				if !ok {
					continue
				}
				cell.Count += t.count
				cell.Amount += t.amount
				if multi {
					cell.YearBreakdown = append(cell.YearBreakdown, core.YearAmount{Year: y, Count: t.count, Amount: t.amount})
					ya, ok := monthlyYears[m][y]
					if !ok {
						ya = &core.YearAmount{Year: y}
						monthlyYears[m][y] = ya
					}
					ya.Count += t.count
					ya.Amount += t.amount
				}
			}

			if !cell.IsCurrentMonth {
				// day does not exist in any target year
				cell.Date = time.Time{}
			}
			if cell.Count > maxCount {
				maxCount = cell.Count
			}
			if cell.Amount > 0 {
				nonZero = append(nonZero, cell.Amount)
			}
			monthly[m].Count += cell.Count
			monthly[m].Amount += cell.Amount
			row[m] = cell
		}
		grid = append(grid, row)
	}

	if multi {
		for m := range monthly {
			monthly[m].YearBreakdown = flattenYears(monthlyYears[m])
		}
	}
	grid = append(grid, monthly)

	if maxCount == 0 {
		maxCount = 1
	}
	return core.CalendarGrid{
		Grid:      grid,
		Years:     years,
		MaxCount:  maxCount,
		MaxAmount: PercentileCap(nonZero, scalePercentile),
	}
}

// targetYears resolves the selection into an ascending, de-duplicated list.
// It never returns an empty list: with nothing to go on, today's year is used.
func targetYears(sel YearSelection, present map[int]struct{}, today time.Time) []int {
	set := make(map[int]struct{})
	if sel.All || len(sel.Years) == 0 {
		for y := range present {
			set[y] = struct{}{}
		}
	} else {
		for _, y := range sel.Years {
			set[y] = struct{}{}
		}
	}
	if len(set) == 0 {
		set[today.Year()] = struct{}{}
	}
	years := make([]int, 0, len(set))
	for y := range set {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func flattenYears(m map[int]*core.YearAmount) []core.YearAmount {
	if len(m) == 0 {
		return nil
	}
	out := make([]core.YearAmount, 0, len(m))
	for _, ya := range m {
		out = append(out, *ya)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// DaysInMonth returns the number of days in month of year, leap years
// included.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// PercentileCap returns the value at index floor(p*n) of the sorted amounts,
// with the index clamped to at least 1 and to the slice bounds. It returns 1
// when amounts is empty so intensity math never divides by zero. amounts is
// sorted in place.
func PercentileCap(amounts []float64, p float64) float64 {
	n := len(amounts)
	if n == 0 {
		return 1
	}
	sort.Float64s(amounts)
	idx := int(p * float64(n))
	if idx < 1 {
		idx = 1
	}
	if idx > n-1 {
		idx = n - 1
	}
	if amounts[idx] <= 0 {
		return 1
	}
	return amounts[idx]
}
