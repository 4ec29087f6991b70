package aggregate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidYears is returned for a malformed year list.
var ErrInvalidYears = errors.New("invalid years")

const (
	minYear = 1900
	maxYear = 9999
)

// ParseYearSelection accepts "all" (or nothing) and comma separated years
// such as "2023,2024". Duplicates are dropped, order is kept.
func ParseYearSelection(raw string) (YearSelection, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return AllYears(), nil
	}

	var years []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil || y < minYear || y > maxYear {
			return YearSelection{}, fmt.Errorf("%w: %q", ErrInvalidYears, part)
		}
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	if len(years) == 0 {
		return YearSelection{}, fmt.Errorf("%w: %q", ErrInvalidYears, raw)
	}
	return Years(years...), nil
}
