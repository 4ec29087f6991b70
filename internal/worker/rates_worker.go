// Package worker applies exchange-rate updates received over AMQP.
package worker

import (
	"context"
	"fmt"

	"money-manager/internal/amqp"
	"money-manager/internal/currency"
	"money-manager/internal/log"
)

// RatesConsumer delivers decoded rate updates until ctx is done.
type RatesConsumer interface {
	ConsumeRatesUpdated(ctx context.Context, handler amqp.RatesHandler) error
}

// RatesWorker swaps the shared rate table whenever an update arrives.
type RatesWorker struct {
	table    *currency.Table
	onChange func()
	logger   *log.Logger
}

// NewRatesWorker returns a worker writing into table. onChange, if set, runs
// after every applied update; callers use it to drop derived views.
func NewRatesWorker(table *currency.Table, onChange func(), logger *log.Logger) *RatesWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &RatesWorker{
		table:    table,
		onChange: onChange,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleRatesMessage processes a single rates message from AMQP
func (w *RatesWorker) HandleRatesMessage(ctx context.Context, msg *amqp.RatesUpdatedMessage) error {
	rates, err := msg.ToRates()
	if err != nil {
		return fmt.Errorf("convert rates message: %w", err)
	}

	previous := w.table.Snapshot()
	w.table.Replace(rates)

	if w.onChange != nil {
		w.onChange()
	}

	w.logger.InfoContext(ctx, "Exchange rates replaced",
		log.FieldCurrency, rates.Base,
		"previous_base", previous.Base,
		"rates", len(rates.Rates),
		"updated_at", rates.UpdatedAt)
	return nil
}

// Run blocks consuming updates until ctx is cancelled.
func (w *RatesWorker) Run(ctx context.Context, consumer RatesConsumer) error {
	w.logger.InfoContext(ctx, "Rates worker started")
	err := consumer.ConsumeRatesUpdated(ctx, w.HandleRatesMessage)
	if ctx.Err() != nil {
		w.logger.InfoContext(ctx, "Rates worker stopped")
		return nil
	}
	return err
}
