package http

import (
	"net/url"
	"strconv"
	"strings"

	"money-manager/internal/aggregate"
	"money-manager/internal/analytics"
	"money-manager/internal/core"
	"money-manager/internal/filter"
	"money-manager/internal/timerange"
)

// ErrInvalidYears is returned for a malformed years parameter.
var ErrInvalidYears = aggregate.ErrInvalidYears

// ParseChartRequest reads the query parameters shared by every chart
// endpoint. Date strings are passed through untouched; the range resolver
// ignores bounds it cannot parse.
func ParseChartRequest(query url.Values) analytics.Request {
	return analytics.Request{
		StartDate: strings.TrimSpace(query.Get("start")),
		EndDate:   strings.TrimSpace(query.Get("end")),
		AllTime:   parseBool(query.Get("all")),
		Mode:      timerange.ParseMode(query.Get("mode")),
		Currency:  strings.TrimSpace(query.Get("currency")),
		Filter: filter.Options{
			Category: query.Get("category"),
			Bank:     query.Get("bank"),
			Search:   query.Get("search"),
		},
	}
}

// ParseType reads the type parameter, falling back to def when absent.
func ParseType(query url.Values, def core.TransactionType) (core.TransactionType, error) {
	raw := strings.TrimSpace(query.Get("type"))
	if raw == "" {
		return def, nil
	}
	return core.ParseTransactionType(raw)
}

// ParseOptionalType returns nil when no type parameter is given.
func ParseOptionalType(query url.Values) (*core.TransactionType, error) {
	raw := strings.TrimSpace(query.Get("type"))
	if raw == "" {
		return nil, nil
	}
	typ, err := core.ParseTransactionType(raw)
	if err != nil {
		return nil, err
	}
	return &typ, nil
}

// ParseYears reads the years parameter; see aggregate.ParseYearSelection.
func ParseYears(query url.Values) (aggregate.YearSelection, error) {
	return aggregate.ParseYearSelection(query.Get("years"))
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}
