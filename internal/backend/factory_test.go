package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"money-manager/internal/config"
	"money-manager/internal/core"
)

const seed = `{"transactions":[
	{"id":1,"type":"income","amount":"100","currency":"EUR","date":"2024-01-15","category":{"name":"Salary"}},
	{"id":2,"type":"expense","amount":"40","currency":"EUR","date":"2024-01-20","category":{"name":"Food"}}
]}`

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return path
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "postgres"}); err == nil || !strings.Contains(err.Error(), "[sqlite memory]") {
		t.Errorf("expected unknown backend error listing valid types, got %v", err)
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", SeedFile: "s.json"})
	if err != nil || cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "x.db" || cfg.SeedFile != "s.json" {
		t.Errorf("FromAppConfig() = %+v, %v", cfg, err)
	}
}

func TestBackendTypeIsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
	if BackendType("sheets").IsValid() {
		t.Error("sheets should not be valid")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "a.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"unknown", Config{Type: "postgres"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, SeedFile: writeSeed(t)})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	incomes, _ := res.Store.ListTransactions(context.Background(), core.Income)
	if len(incomes) != 1 {
		t.Fatalf("expected 1 income, got %d", len(incomes))
	}
	if res.Cleanup != nil {
		t.Error("memory backend needs no cleanup")
	}
}

func TestCreateSQLiteBackendSeedsOnce(t *testing.T) {
	ctx := context.Background()
	cfg := Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "money.db"),
		SeedFile:     writeSeed(t),
	}
	f := NewFactory(nil)

	for i := 0; i < 2; i++ {
		res, err := f.CreateBackend(ctx, cfg)
		if err != nil {
			t.Fatalf("CreateBackend #%d: %v", i, err)
		}
		expenses, err := res.Store.ListTransactions(ctx, core.Expense)
		if err != nil {
			t.Fatalf("ListTransactions: %v", err)
		}
		if len(expenses) != 1 {
			t.Fatalf("run %d: expected 1 expense, got %d", i, len(expenses))
		}
		if err := res.Cleanup(); err != nil {
			t.Fatalf("Cleanup: %v", err)
		}
	}
}
