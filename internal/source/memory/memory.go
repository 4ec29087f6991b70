package memory

import (
	"context"
	"sync"

	"money-manager/internal/core"
	"money-manager/internal/source"
)

// Store keeps transactions in memory. IDs are assigned on Insert when the
// record has none.
type Store struct {
	mu     sync.Mutex
	items  []core.Transaction
	nextID int64
}

func New(records ...core.Transaction) *Store {
	s := &Store{}
	for _, r := range records {
		s.add(r)
	}
	return s
}

// NewFromFile seeds the store from a JSON seed file. An empty path yields an
// empty store.
func NewFromFile(path string) (*Store, error) {
	if path == "" {
		return New(), nil
	}
	records, err := source.LoadSeed(path)
	if err != nil {
		return nil, err
	}
	return New(records...), nil
}

// Insert validates and stores t.
func (s *Store) Insert(_ context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(t), nil
}

func (s *Store) add(t core.Transaction) int64 {
	if t.ID == 0 {
		s.nextID++
		t.ID = s.nextID
	} else if t.ID > s.nextID {
		s.nextID = t.ID
	}
	t.Tags = append([]string(nil), t.Tags...)
	s.items = append(s.items, t)
	return t.ID
}

// ListTransactions returns copies of the stored records of typ in insertion
// order.
func (s *Store) ListTransactions(_ context.Context, typ core.TransactionType) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.items))
	for _, t := range s.items {
		if t.Type == typ {
			out = append(out, t)
		}
	}
	return out, nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
