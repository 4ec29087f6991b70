package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

// UnknownCategory is the grouping name for transactions without a category.
const UnknownCategory = "Unknown Category"

type (
	// TransactionType tells incomes and expenses apart. A transaction never
	// changes type once recorded.
	TransactionType string

	// CategoryType mirrors TransactionType for category entities.
	CategoryType = TransactionType

	Category struct {
		ID   int64
		Name string
		Type CategoryType
	}

	Transaction struct {
		ID          int64
		Type        TransactionType
		Amount      float64 // non-negative, denominated in Currency
		Currency    string
		Date        time.Time // when the transaction occurred
		Category    *Category
		Bank        string // account or bank name, used by filters only
		Title       string
		Description string
		Notes       string
		Tags        []string
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidCurrency = errors.New("invalid currency")
)

// ParseTransactionType accepts "income"/"expense" in any case.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToUpper(strings.TrimSpace(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	}
	return "", ErrInvalidType
}

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

// String implements fmt.Stringer
func (t TransactionType) String() string {
	return string(t)
}

// CategoryName returns the category name, or UnknownCategory when unset.
func (t Transaction) CategoryName() string {
	if t.Category == nil || strings.TrimSpace(t.Category.Name) == "" {
		return UnknownCategory
	}
	return t.Category.Name
}

func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if t.Amount < 0 {
		return ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(t.Currency)) != 3 {
		return ErrInvalidCurrency
	}
	if t.Category != nil && t.Category.Type != "" && t.Category.Type != t.Type {
		return errors.New("category type does not match transaction type")
	}
	return nil
}
