package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"money-manager/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "money.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestNewSQLiteRepository_Migrates(t *testing.T) {
	repo := newTestRepo(t)
	assert.Equal(t, uint(1), repo.SchemaVersion())

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "money.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	repo.Close()

	version, err := RunMigrations(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}

func TestInsertAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	salary := core.Transaction{
		Type:     core.Income,
		Amount:   1500.5,
		Currency: "EUR",
		Date:     time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC),
		Category: &core.Category{Name: "Salary"},
		Bank:     "Nabil",
		Title:    "January",
		Tags:     []string{"work", "monthly"},
	}
	id, err := repo.Insert(ctx, salary)
	require.NoError(t, err)
	assert.NotZero(t, id)

	_, err = repo.Insert(ctx, core.Transaction{
		ID:       42,
		Type:     core.Expense,
		Amount:   12.3,
		Currency: "USD",
		Date:     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Notes:    "no category",
	})
	require.NoError(t, err)

	// same category name twice reuses the row
	_, err = repo.Insert(ctx, core.Transaction{
		Type: core.Income, Amount: 10, Currency: "EUR",
		Date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Category: &core.Category{Name: "Salary"},
	})
	require.NoError(t, err)

	incomes, err := repo.ListTransactions(ctx, core.Income)
	require.NoError(t, err)
	require.Len(t, incomes, 2)
	assert.Equal(t, 10.0, incomes[0].Amount, "ordered by date")
	got := incomes[1]
	assert.Equal(t, 1500.5, got.Amount)
	assert.Equal(t, "Salary", got.CategoryName())
	assert.Equal(t, core.Income, got.Category.Type)
	assert.Equal(t, incomes[0].Category.ID, got.Category.ID)
	assert.True(t, salary.Date.Equal(got.Date))
	assert.Equal(t, []string{"work", "monthly"}, got.Tags)
	assert.Equal(t, "Nabil", got.Bank)

	expenses, err := repo.ListTransactions(ctx, core.Expense)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, int64(42), expenses[0].ID)
	assert.Nil(t, expenses[0].Category)
	assert.Equal(t, core.UnknownCategory, expenses[0].CategoryName())
	assert.Empty(t, expenses[0].Tags)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestInsertRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.Insert(context.Background(), core.Transaction{Type: core.Expense, Amount: 1, Currency: "EUR"})
	assert.ErrorIs(t, err, core.ErrInvalidDate)
}
