package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"money-manager/internal/core"
)

// Seed is the on-disk JSON shape of a transaction dump.
type Seed struct {
	Transactions []SeedTransaction `json:"transactions"`
}

type SeedCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SeedTransaction accepts the amount as a JSON number or string and the date
// as YYYY-MM-DD or RFC 3339.
type SeedTransaction struct {
	ID          int64           `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Date        string          `json:"date"`
	Category    *SeedCategory   `json:"category,omitempty"`
	Bank        string          `json:"bank,omitempty"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
}

// Transaction converts the seed entry into a validated domain record.
func (s SeedTransaction) Transaction() (core.Transaction, error) {
	typ, err := core.ParseTransactionType(s.Type)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", s.ID, err)
	}
	date, err := ParseDate(s.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", s.ID, err)
	}
	amount, _ := s.Amount.Float64()

	t := core.Transaction{
		ID:          s.ID,
		Type:        typ,
		Amount:      amount,
		Currency:    strings.ToUpper(strings.TrimSpace(s.Currency)),
		Date:        date,
		Bank:        s.Bank,
		Title:       s.Title,
		Description: s.Description,
		Notes:       s.Notes,
		Tags:        s.Tags,
	}
	if s.Category != nil && strings.TrimSpace(s.Category.Name) != "" {
		t.Category = &core.Category{ID: s.Category.ID, Name: strings.TrimSpace(s.Category.Name), Type: typ}
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", s.ID, err)
	}
	return t, nil
}

// ParseDate accepts YYYY-MM-DD (UTC midnight) or RFC 3339.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, core.ErrInvalidDate
}

// LoadSeed reads and converts a seed file. The first invalid entry aborts
// the load.
func LoadSeed(path string) ([]core.Transaction, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	out := make([]core.Transaction, 0, len(seed.Transactions))
	for _, st := range seed.Transactions {
		t, err := st.Transaction()
		if err != nil {
			return nil, fmt.Errorf("seed file %s: %w", path, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// Import writes records into w in order and returns how many were stored.
func Import(ctx context.Context, w TransactionWriter, records []core.Transaction) (int, error) {
	for i, r := range records {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if _, err := w.Insert(ctx, r); err != nil {
			return i, fmt.Errorf("import transaction %d: %w", r.ID, err)
		}
	}
	return len(records), nil
}
