package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/joho/godotenv"

	"money-manager/internal/amqp"
	"money-manager/internal/config"
	"money-manager/internal/currency"
	"money-manager/internal/log"
)

type Params struct {
	File     string `descr:"YAML exchange-rate file to publish" positional:"true"`
	AMQPURL  string `name:"amqp-url" descr:"Broker URL (defaults to AMQP_URL)" optional:"true"`
	Exchange string `descr:"Exchange name (defaults to AMQP_EXCHANGE)" optional:"true"`
	Queue    string `descr:"Queue name (defaults to AMQP_QUEUE)" optional:"true"`
}

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	boa.NewCmdT[Params]("money-rates").
		WithShort("Publish an exchange-rate table to running money-manager servers").
		WithLong("Reads a YAML rate file (base plus per-currency rates) and publishes it as a rates.updated message. Every server consuming the queue swaps its rate table and drops cached views.").
		WithRunFunc(func(params *Params) {
			if err := run(params); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}).
		Run()
}

func run(p *Params) error {
	cfg := config.Load()
	if p.AMQPURL != "" {
		cfg.AMQPURL = p.AMQPURL
	}
	if p.Exchange != "" {
		cfg.AMQPExchange = p.Exchange
	}
	if p.Queue != "" {
		cfg.AMQPQueue = p.Queue
	}
	if !cfg.AMQPEnabled() {
		return fmt.Errorf("no broker configured: set AMQP_URL or --amqp-url")
	}

	table, err := currency.LoadTable(p.File)
	if err != nil {
		return err
	}

	logger := log.New(log.Config{Level: log.ParseLevel(cfg.LogLevel), Format: cfg.LogFormat, Output: os.Stderr})
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rates := table.Snapshot()
	if err := client.PublishRatesUpdated(ctx, amqp.NewRatesUpdatedMessage(rates)); err != nil {
		return err
	}
	fmt.Printf("Published %d rates (base %s)\n", len(rates.Rates), rates.Base)
	return nil
}
