// Package filter narrows a transaction list to a time range and optional
// category, bank and free-text criteria.
package filter

import (
	"strings"

	"money-manager/internal/core"
)

// Options holds the optional non-date criteria. Empty fields do not filter.
type Options struct {
	Category string
	Bank     string
	Search   string
}

// IsEmpty reports whether no criterion is set.
func (o Options) IsEmpty() bool {
	return strings.TrimSpace(o.Category) == "" &&
		strings.TrimSpace(o.Bank) == "" &&
		strings.TrimSpace(o.Search) == ""
}

// Key renders the options for cache keys.
func (o Options) Key() string {
	return strings.TrimSpace(o.Category) + "\x1f" +
		strings.TrimSpace(o.Bank) + "\x1f" +
		strings.ToLower(strings.TrimSpace(o.Search))
}

// Apply returns the records inside rng that match opts, preserving order.
// Checks run in order: date, category, bank, search. When nothing would be
// filtered the input slice itself is returned.
func Apply(records []core.Transaction, rng core.TimeRange, opts Options) []core.Transaction {
	if rng.Unbounded() && opts.IsEmpty() {
		return records
	}

	category := strings.TrimSpace(opts.Category)
	bank := strings.TrimSpace(opts.Bank)
	search := strings.ToLower(strings.TrimSpace(opts.Search))

	out := make([]core.Transaction, 0, len(records))
	for _, r := range records {
		if !rng.Contains(r.Date) {
			continue
		}
		if category != "" && r.CategoryName() != category {
			continue
		}
		if bank != "" && r.Bank != bank {
			continue
		}
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// matchesSearch expects needle already lower-cased.
func matchesSearch(r core.Transaction, needle string) bool {
	if strings.Contains(strings.ToLower(r.Title), needle) ||
		strings.Contains(strings.ToLower(r.Description), needle) ||
		strings.Contains(strings.ToLower(r.Notes), needle) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}
