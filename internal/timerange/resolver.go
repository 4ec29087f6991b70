// Package timerange resolves the effective date window of a chart view from
// optional explicit bounds, an all-time flag, or a per-view default.
package timerange

import (
	"fmt"
	"strings"
	"time"

	"money-manager/internal/core"
)

// Mode selects the default window used when no explicit bounds are given.
type Mode string

const (
	// ModeAggregate defaults to six calendar months ending with the current one.
	ModeAggregate Mode = "aggregate"
	// ModeTrend defaults to the trailing 30 days.
	ModeTrend Mode = "trend"
)

const (
	dateLayout    = "2006-01-02"
	labelLayout   = "Jan 2006"
	defaultMonths = 6
	defaultDays   = 30

	LabelAllTime = "(All Time)"
)

// Input carries the caller-supplied bounds as YYYY-MM-DD strings.
type Input struct {
	StartDate string
	EndDate   string
	AllTime   bool
}

// ParseMode accepts "trend" or "aggregate"; anything else is aggregate.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeTrend)) {
		return ModeTrend
	}
	return ModeAggregate
}

// Resolve computes the effective range in now's location. Explicit bounds
// win over AllTime, which wins over the mode default. An unparseable bound
// is treated as absent.
func Resolve(in Input, mode Mode, now time.Time) core.TimeRange {
	loc := now.Location()
	start, startOK := parseDay(in.StartDate, loc)
	end, endOK := parseDay(in.EndDate, loc)

	if startOK || endOK {
		r := core.TimeRange{HasExplicitRange: true}
		if startOK {
			s := startOfDay(start)
			r.StartDate = &s
		}
		if endOK {
			e := endOfDay(end)
			r.EndDate = &e
		}
		r.Label = Label(r.StartDate, r.EndDate)
		return r
	}

	if in.AllTime {
		return core.TimeRange{HasExplicitRange: true, Label: LabelAllTime}
	}

	if mode == ModeTrend {
		s := startOfDay(now.AddDate(0, 0, -defaultDays))
		e := endOfDay(now)
		return core.TimeRange{StartDate: &s, EndDate: &e, Label: Label(&s, &e)}
	}

	year, month := monthsBack(now.Year(), now.Month(), defaultMonths-1)
	s := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	e := endOfDay(time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, loc))
	return core.TimeRange{StartDate: &s, EndDate: &e, Label: Label(&s, &e)}
}

// Label renders the human-readable period for a pair of bounds.
func Label(start, end *time.Time) string {
	switch {
	case start != nil && end != nil:
		return fmt.Sprintf("(%s - %s)", start.Format(labelLayout), end.Format(labelLayout))
	case start != nil:
		return fmt.Sprintf("(From %s)", start.Format(labelLayout))
	case end != nil:
		return fmt.Sprintf("(Until %s)", end.Format(labelLayout))
	default:
		return LabelAllTime
	}
}

// monthsBack subtracts n months, rolling the year over January.
func monthsBack(year int, month time.Month, n int) (int, time.Month) {
	m := int(month) - n
	for m < 1 {
		m += 12
		year--
	}
	return year, time.Month(m)
}

func parseDay(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if len(s) > len(dateLayout) {
		// accept full timestamps, keep the calendar day
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.In(loc), true
		}
		s = s[:len(dateLayout)]
	}
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}
