// Package storage persists transactions in SQLite. Amounts are stored as
// decimal strings and dates as RFC 3339 text so rows stay readable with the
// sqlite3 shell.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"money-manager/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db            *sql.DB
	schemaVersion uint
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc sqlite serialises writers; one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, schemaVersion: version}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SchemaVersion returns the migration version applied at open time.
func (r *SQLiteRepository) SchemaVersion() uint {
	return r.schemaVersion
}

const listTransactions = `
SELECT t.id, t.type, t.amount, t.currency, t.date,
       c.id, c.name, c.type,
       t.bank, t.title, t.description, t.notes, t.tags
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id
WHERE t.type = ?
ORDER BY t.date, t.id`

// ListTransactions implements source.TransactionLister
func (r *SQLiteRepository) ListTransactions(ctx context.Context, typ core.TransactionType) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, listTransactions, string(typ))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		var (
			t                          core.Transaction
			rawType, amount, date      string
			catID                      sql.NullInt64
			catName, catType, tagsJSON sql.NullString
		)
		if err := rows.Scan(&t.ID, &rawType, &amount, &t.Currency, &date,
			&catID, &catName, &catType,
			&t.Bank, &t.Title, &t.Description, &t.Notes, &tagsJSON); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}

		t.Type = core.TransactionType(rawType)
		if t.Amount, err = core.ParseAmount(amount); err != nil {
			return nil, fmt.Errorf("transaction %d amount %q: %w", t.ID, amount, err)
		}
		if t.Date, err = time.Parse(time.RFC3339, date); err != nil {
			// unparseable dates degrade to zero and are skipped by the aggregators
			slog.WarnContext(ctx, "Transaction has unparseable date", "id", t.ID, "date", date)
			t.Date = time.Time{}
		}
		if catID.Valid {
			t.Category = &core.Category{ID: catID.Int64, Name: catName.String, Type: core.CategoryType(catType.String)}
		}
		if tagsJSON.Valid && tagsJSON.String != "" {
			if err := json.Unmarshal([]byte(tagsJSON.String), &t.Tags); err != nil {
				return nil, fmt.Errorf("transaction %d tags: %w", t.ID, err)
			}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Insert implements source.TransactionWriter. A zero ID lets SQLite assign
// one; a category is created on first use.
func (r *SQLiteRepository) Insert(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var categoryID sql.NullInt64
	if t.Category != nil && t.Category.Name != "" {
		id, err := upsertCategory(ctx, tx, t.Category.Name, t.Type)
		if err != nil {
			return 0, err
		}
		categoryID = sql.NullInt64{Int64: id, Valid: true}
	}

	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return 0, fmt.Errorf("encode tags: %w", err)
	}

	var id any
	if t.ID != 0 {
		id = t.ID
	}
	res, err := tx.ExecContext(ctx, `
INSERT INTO transactions (id, type, amount, currency, date, category_id, bank, title, description, notes, tags)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, string(t.Type), core.FormatAmount(t.Amount), t.Currency, t.Date.Format(time.RFC3339),
		categoryID, t.Bank, t.Title, t.Description, t.Notes, string(tagsJSON))
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", newID,
		"type", t.Type,
		"amount", t.Amount,
		"currency", t.Currency)

	return newID, nil
}

func upsertCategory(ctx context.Context, tx *sql.Tx, name string, typ core.TransactionType) (int64, error) {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO categories (name, type) VALUES (?, ?) ON CONFLICT (name, type) DO NOTHING`,
		name, string(typ)); err != nil {
		return 0, fmt.Errorf("upsert category %q: %w", name, err)
	}
	var id int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM categories WHERE name = ? AND type = ?`, name, string(typ)).Scan(&id); err != nil {
		return 0, fmt.Errorf("lookup category %q: %w", name, err)
	}
	return id, nil
}

// Count returns the number of stored transactions.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}
