package currency

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"
)

// Rates is an immutable snapshot of exchange rates. Each rate is the number
// of units of that currency per one unit of Base.
type Rates struct {
	Base      string             `yaml:"base" json:"base"`
	Rates     map[string]float64 `yaml:"rates" json:"rates"`
	UpdatedAt time.Time          `yaml:"updated_at,omitempty" json:"updatedAt"`
}

// NewRates normalises codes to upper case and drops non-positive rates.
func NewRates(base string, rates map[string]float64) Rates {
	base = strings.ToUpper(strings.TrimSpace(base))
	out := make(map[string]float64, len(rates)+1)
	for code, rate := range rates {
		if rate <= 0 {
			continue
		}
		out[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	if base != "" {
		out[base] = 1
	}
	return Rates{Base: base, Rates: out, UpdatedAt: time.Now()}
}

// Lookup returns the rate for code relative to Base.
func (r Rates) Lookup(code string) (float64, bool) {
	rate, ok := r.Rates[strings.ToUpper(code)]
	if !ok || rate <= 0 {
		return 0, false
	}
	return rate, true
}

func (r Rates) Validate() error {
	if r.Base == "" {
		return fmt.Errorf("rates: base currency is required")
	}
	if !IsISO(r.Base) {
		return fmt.Errorf("rates: base currency %q is not an ISO 4217 code", r.Base)
	}
	for code, rate := range r.Rates {
		if rate <= 0 {
			return fmt.Errorf("rates: rate for %s must be positive, got %v", code, rate)
		}
	}
	return nil
}

// Table holds the live rate snapshot. Readers never block; updates swap the
// whole snapshot.
type Table struct {
	current atomic.Pointer[Rates]
	version atomic.Uint64
}

func NewTable(r Rates) *Table {
	t := &Table{}
	t.Replace(r)
	return t
}

// Snapshot returns the current rates.
func (t *Table) Snapshot() Rates {
	if r := t.current.Load(); r != nil {
		return *r
	}
	return Rates{}
}

// Replace swaps in a new snapshot.
func (t *Table) Replace(r Rates) {
	t.current.Store(&r)
	t.version.Add(1)
}

// Version increases with every Replace.
func (t *Table) Version() uint64 {
	return t.version.Load()
}

type ratesFile struct {
	Base  string             `yaml:"base"`
	Rates map[string]float64 `yaml:"rates"`
}

// LoadTable reads a YAML rate file:
//
//	base: EUR
//	rates:
//	  USD: 1.08
//	  GBP: 0.85
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rates file: %w", err)
	}

	var f ratesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rates file: %w", err)
	}

	r := NewRates(f.Base, f.Rates)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return NewTable(r), nil
}
