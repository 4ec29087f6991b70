package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"money-manager/internal/core"
)

func tx(id int64, amount float64, date string, category string) core.Transaction {
	t := core.Transaction{ID: id, Amount: amount, Currency: "EUR"}
	if date != "" {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			panic(err)
		}
		t.Date = d.Add(12 * time.Hour)
	}
	if category != "" {
		t.Category = &core.Category{Name: category}
	}
	return t
}

func TestMonthly_ScenarioA(t *testing.T) {
	incomes := []core.Transaction{
		tx(1, 100, "2024-01-15", "Salary"),
		tx(2, 50, "2024-02-10", "Salary"),
	}

	got := Monthly(incomes, nil)

	require.Len(t, got, 2)
	assert.Equal(t, "2024-01", got[0].MonthKey)
	assert.Equal(t, 100.0, got[0].Income)
	assert.Equal(t, 1, got[0].IncomeCount)
	assert.Equal(t, "Jan 2024", got[0].Label)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got[0].Date)
	assert.Equal(t, "2024-02", got[1].MonthKey)
	assert.Equal(t, 50.0, got[1].Income)
	assert.Equal(t, 50.0, got[1].Savings)
}

func TestMonthly_SavingsInvariant(t *testing.T) {
	incomes := []core.Transaction{
		tx(1, 1000.10, "2023-12-01", "Salary"),
		tx(2, 250.25, "2024-01-15", "Bonus"),
		tx(3, 0.3, "2024-03-02", "Interest"),
	}
	expenses := []core.Transaction{
		tx(10, 80.5, "2023-12-24", "Food"),
		tx(11, 300, "2024-01-03", "Rent"),
		tx(12, 0.1, "2024-02-11", "Fees"),
		tx(13, 0.2, "2024-02-12", "Fees"),
	}

	got := Monthly(incomes, expenses)

	require.Len(t, got, 4)
	keys := make([]string, 0, len(got))
	for _, m := range got {
		keys = append(keys, m.MonthKey)
		assert.Equal(t, m.Income-m.Expenses, m.Savings, "month %s", m.MonthKey)
	}
	assert.Equal(t, []string{"2023-12", "2024-01", "2024-02", "2024-03"}, keys)

	feb := got[2]
	assert.Equal(t, 0, feb.IncomeCount)
	assert.Equal(t, 2, feb.ExpenseCount)
	assert.Equal(t, 0.0, feb.Income)
}

func TestMonthly_EmptyAndZeroValued(t *testing.T) {
	assert.Empty(t, Monthly(nil, nil))
	assert.NotNil(t, Monthly(nil, nil))

	got := Monthly([]core.Transaction{tx(1, 0, "2024-05-05", "Gift")}, nil)
	require.Len(t, got, 1, "a zero-valued month is still a month")
	assert.Equal(t, 0.0, got[0].Income)
	assert.Equal(t, 1, got[0].IncomeCount)
}

func TestMonthly_SkipsUndatedRecords(t *testing.T) {
	got := Monthly([]core.Transaction{tx(1, 10, "", "A")}, nil)
	assert.Empty(t, got)
}

func TestMonthly_Idempotent(t *testing.T) {
	incomes := []core.Transaction{tx(1, 10, "2024-01-01", "A"), tx(2, 20, "2024-02-01", "B")}
	expenses := []core.Transaction{tx(3, 5, "2024-01-09", "C")}

	first := Monthly(incomes, expenses)
	copied := append([]core.Transaction(nil), incomes...)
	second := Monthly(copied, append([]core.Transaction(nil), expenses...))

	assert.Equal(t, first, second)
}

func TestMonthlyForCategory(t *testing.T) {
	incomes := []core.Transaction{tx(1, 100, "2024-01-15", "Salary"), tx(2, 7, "2024-01-20", "Gift")}
	expenses := []core.Transaction{tx(3, 40, "2024-01-02", "Salary"), tx(4, 9, "2024-02-02", "Food")}

	got := MonthlyForCategory(incomes, expenses, "Salary", core.Income)
	require.Len(t, got, 1)
	assert.Equal(t, 100.0, got[0].Income)
	assert.Equal(t, 0.0, got[0].Expenses, "expenses of the same name must not leak into an income view")

	got = MonthlyForCategory(incomes, expenses, "Food", core.Expense)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-02", got[0].MonthKey)
	assert.Equal(t, -9.0, got[0].Savings)

	assert.Empty(t, MonthlyForCategory(incomes, expenses, "Salary", "OTHER"))
}
