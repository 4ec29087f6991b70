package timerange

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolve_ExplicitRange(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		in        Input
		wantStart *time.Time
		wantEnd   *time.Time
		wantLabel string
	}{
		{
			name:      "both bounds",
			in:        Input{StartDate: "2024-01-10", EndDate: "2024-03-05"},
			wantStart: ptr(day(2024, 1, 10)),
			wantEnd:   ptr(time.Date(2024, 3, 5, 23, 59, 59, 999000000, time.UTC)),
			wantLabel: "(Jan 2024 - Mar 2024)",
		},
		{
			name:      "start only",
			in:        Input{StartDate: "2024-02-01"},
			wantStart: ptr(day(2024, 2, 1)),
			wantLabel: "(From Feb 2024)",
		},
		{
			name:      "end only",
			in:        Input{EndDate: "2024-04-30"},
			wantEnd:   ptr(time.Date(2024, 4, 30, 23, 59, 59, 999000000, time.UTC)),
			wantLabel: "(Until Apr 2024)",
		},
		{
			name:      "explicit wins over all time",
			in:        Input{StartDate: "2024-02-01", AllTime: true},
			wantStart: ptr(day(2024, 2, 1)),
			wantLabel: "(From Feb 2024)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Resolve(tt.in, ModeAggregate, now)
			if !r.HasExplicitRange {
				t.Errorf("expected explicit range")
			}
			assertTime(t, "start", r.StartDate, tt.wantStart)
			assertTime(t, "end", r.EndDate, tt.wantEnd)
			if r.Label != tt.wantLabel {
				t.Errorf("label = %q, want %q", r.Label, tt.wantLabel)
			}
		})
	}
}

func TestResolve_SameDayIncludesWholeDay(t *testing.T) {
	r := Resolve(Input{StartDate: "2024-03-01", EndDate: "2024-03-01"}, ModeAggregate, time.Now().UTC())

	if !r.Contains(time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)) {
		t.Errorf("transaction at 23:00 on the same day should be included")
	}
	if r.Contains(time.Date(2024, 3, 2, 0, 0, 1, 0, time.UTC)) {
		t.Errorf("transaction on the next day should be excluded")
	}
}

func TestResolve_AllTime(t *testing.T) {
	r := Resolve(Input{AllTime: true}, ModeTrend, time.Now())
	if !r.HasExplicitRange || r.StartDate != nil || r.EndDate != nil {
		t.Fatalf("all time should be explicit and unbounded: %+v", r)
	}
	if r.Label != LabelAllTime {
		t.Errorf("label = %q", r.Label)
	}
}

func TestResolve_AggregateDefault(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantStart time.Time
		wantLabel string
	}{
		{"mid year", time.Date(2024, 8, 20, 9, 0, 0, 0, time.UTC), day(2024, 3, 1), "(Mar 2024 - Aug 2024)"},
		{"crosses january", time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC), day(2023, 9, 1), "(Sep 2023 - Feb 2024)"},
		{"may", time.Date(2024, 5, 31, 9, 0, 0, 0, time.UTC), day(2023, 12, 1), "(Dec 2023 - May 2024)"},
		{"june", time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC), day(2024, 1, 1), "(Jan 2024 - Jun 2024)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Resolve(Input{}, ModeAggregate, tt.now)
			if r.HasExplicitRange {
				t.Errorf("default range must not be explicit")
			}
			assertTime(t, "start", r.StartDate, &tt.wantStart)
			if r.EndDate == nil || r.EndDate.Month() != tt.now.Month() || r.EndDate.Day() < 28 {
				t.Errorf("end should be the last day of the current month, got %v", r.EndDate)
			}
			if r.Label != tt.wantLabel {
				t.Errorf("label = %q, want %q", r.Label, tt.wantLabel)
			}
		})
	}
}

func TestResolve_TrendDefault(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	r := Resolve(Input{}, ModeTrend, now)

	assertTime(t, "start", r.StartDate, ptr(day(2024, 2, 9)))
	assertTime(t, "end", r.EndDate, ptr(time.Date(2024, 3, 10, 23, 59, 59, 999000000, time.UTC)))
	if r.Label != "(Feb 2024 - Mar 2024)" {
		t.Errorf("label = %q", r.Label)
	}
}

func TestResolve_InvalidBoundIgnored(t *testing.T) {
	r := Resolve(Input{StartDate: "not-a-date", EndDate: "2024-04-30"}, ModeAggregate, time.Now().UTC())
	if r.StartDate != nil {
		t.Errorf("invalid start should be dropped")
	}
	if r.Label != "(Until Apr 2024)" {
		t.Errorf("label = %q", r.Label)
	}

	r = Resolve(Input{StartDate: "garbage"}, ModeTrend, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	if r.HasExplicitRange || r.Label != "(Feb 2024 - Mar 2024)" {
		t.Errorf("fully invalid input should fall back to default: %+v", r)
	}
}

func TestParseMode(t *testing.T) {
	if ParseMode("TREND") != ModeTrend || ParseMode("") != ModeAggregate || ParseMode("x") != ModeAggregate {
		t.Fatalf("unexpected mode parsing")
	}
}

func ptr(t time.Time) *time.Time { return &t }

func assertTime(t *testing.T, name string, got, want *time.Time) {
	t.Helper()
	switch {
	case got == nil && want == nil:
	case got == nil || want == nil:
		t.Errorf("%s = %v, want %v", name, got, want)
	case !got.Equal(*want):
		t.Errorf("%s = %v, want %v", name, *got, *want)
	}
}
