// Package currency converts transaction amounts into a single display
// currency and formats them for output.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"

	"money-manager/internal/core"
)

// Normalizer converts amounts using the live rate table. It never fails:
// an unknown code leaves the amount as it is so charts still render with
// incomplete rate data.
type Normalizer struct {
	table *Table
}

func NewNormalizer(table *Table) *Normalizer {
	if table == nil {
		table = NewTable(Rates{})
	}
	return &Normalizer{table: table}
}

// RatesVersion identifies the rate snapshot conversions currently use.
func (n *Normalizer) RatesVersion() uint64 {
	return n.table.Version()
}

// Convert returns amount expressed in to.
func (n *Normalizer) Convert(amount float64, from, to string) float64 {
	v, _ := n.convert(n.table.Snapshot(), amount, from, to)
	return v
}

func (n *Normalizer) convert(rates Rates, amount float64, from, to string) (float64, bool) {
	if strings.EqualFold(strings.TrimSpace(from), strings.TrimSpace(to)) {
		return amount, true
	}
	fromRate, ok := rates.Lookup(strings.TrimSpace(from))
	if !ok {
		return amount, false
	}
	toRate, ok := rates.Lookup(strings.TrimSpace(to))
	if !ok {
		return amount, false
	}
	v, _ := decimal.NewFromFloat(amount).
		Div(decimal.NewFromFloat(fromRate)).
		Mul(decimal.NewFromFloat(toRate)).
		Float64()
	return v, true
}

// NormalizeAll returns copies of records with Amount and Currency expressed
// in to. Records whose currency could not be converted keep their amount
// and are counted in unconverted. The input slice is not modified.
func (n *Normalizer) NormalizeAll(records []core.Transaction, to string) (out []core.Transaction, unconverted int) {
	if len(records) == 0 {
		return records, 0
	}
	to = strings.ToUpper(strings.TrimSpace(to))
	rates := n.table.Snapshot()

	out = make([]core.Transaction, len(records))
	for i, r := range records {
		v, ok := n.convert(rates, r.Amount, r.Currency, to)
		if !ok {
			unconverted++
		} else {
			r.Currency = to
		}
		r.Amount = v
		out[i] = r
	}
	return out, unconverted
}
