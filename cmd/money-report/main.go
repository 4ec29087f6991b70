package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"

	"money-manager/internal/aggregate"
	"money-manager/internal/analytics"
	"money-manager/internal/backend"
	"money-manager/internal/core"
	"money-manager/internal/currency"
	"money-manager/internal/log"
	"money-manager/internal/report"
	"money-manager/internal/timerange"
)

type Params struct {
	Backend  string `descr:"Data backend" alts:"sqlite,memory" strict:"true" default:"sqlite"`
	DB       string `name:"db" descr:"Path to the SQLite database" default:"./data/money.db"`
	Seed     string `descr:"JSON seed file (memory backend, or an empty database)" optional:"true"`
	Currency string `descr:"Display currency (ISO 4217)" default:"EUR"`
	Rates    string `descr:"YAML exchange-rate file" optional:"true"`
	View     string `descr:"View to print" alts:"monthly,categories,calendar" strict:"true" default:"monthly"`
	Type     string `descr:"Transaction type for categories and calendar" alts:"expense,income" strict:"true" default:"expense"`
	Start    string `descr:"Start date (YYYY-MM-DD)" optional:"true"`
	End      string `descr:"End date (YYYY-MM-DD)" optional:"true"`
	All      bool   `descr:"Cover all time" optional:"true"`
	Trend    bool   `descr:"Default to the last 30 days instead of six months" optional:"true"`
	Years    string `descr:"Calendar years: all or a comma separated list" default:"all"`
	Category string `descr:"Only this category" optional:"true"`
	Bank     string `descr:"Only this bank or account" optional:"true"`
	Search   string `descr:"Free-text search over title, description and notes" optional:"true"`
	Color    bool   `descr:"Colour the output" optional:"true"`
	Verbose  bool   `descr:"Log pipeline details to stderr" optional:"true"`
}

func main() {
	boa.NewCmdT[Params]("money-report").
		WithShort("Print income, expense and category charts as tables").
		WithLong("Loads transactions from a money-manager database or seed file, converts them to one display currency and prints the monthly, category or calendar view.").
		WithRunFunc(func(params *Params) {
			if err := run(context.Background(), params); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}).
		Run()
}

func run(ctx context.Context, p *Params) error {
	logger := log.Discard()
	if p.Verbose {
		logger = log.New(log.Config{Level: log.ParseLevel("debug"), Output: os.Stderr})
	}

	result, err := backend.NewFactory(logger).CreateBackend(ctx, backend.Config{
		Type:         backend.BackendType(p.Backend),
		SQLiteDBPath: p.DB,
		SeedFile:     p.Seed,
	})
	if err != nil {
		return err
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	table := currency.NewTable(currency.NewRates(p.Currency, nil))
	if p.Rates != "" {
		if table, err = currency.LoadTable(p.Rates); err != nil {
			return err
		}
	}

	svc := analytics.NewService(result.Store, currency.NewNormalizer(table), analytics.Options{
		DisplayCurrency: p.Currency,
	}, nil, logger)

	mode := timerange.ModeAggregate
	if p.Trend {
		mode = timerange.ModeTrend
	}
	req := analytics.Request{
		StartDate: p.Start,
		EndDate:   p.End,
		AllTime:   p.All,
		Mode:      mode,
		Currency:  p.Currency,
	}
	req.Filter.Category = p.Category
	req.Filter.Bank = p.Bank
	req.Filter.Search = p.Search

	typ, err := core.ParseTransactionType(p.Type)
	if err != nil {
		return err
	}
	opts := report.Options{Color: p.Color}

	switch strings.ToLower(p.View) {
	case "categories":
		view, err := svc.Categories(ctx, req, typ)
		if err != nil {
			return err
		}
		report.Categories(os.Stdout, view, opts)
	case "calendar":
		years, err := aggregate.ParseYearSelection(p.Years)
		if err != nil {
			return err
		}
		view, err := svc.Calendar(ctx, req, typ, years)
		if err != nil {
			return err
		}
		report.Calendar(os.Stdout, view, opts)
	default:
		view, err := svc.Monthly(ctx, req)
		if err != nil {
			return err
		}
		report.Monthly(os.Stdout, view, opts)
	}
	return nil
}
