package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"money-manager/internal/amqp"
	"money-manager/internal/currency"
)

type stubConsumer struct {
	messages []*amqp.RatesUpdatedMessage
	errs     []error
	err      error
}

func (s *stubConsumer) ConsumeRatesUpdated(ctx context.Context, handler amqp.RatesHandler) error {
	for _, msg := range s.messages {
		s.errs = append(s.errs, handler(ctx, msg))
	}
	return s.err
}

func TestHandleRatesMessage(t *testing.T) {
	table := currency.NewTable(currency.NewRates("EUR", map[string]float64{"USD": 1.1}))
	changes := 0
	w := NewRatesWorker(table, func() { changes++ }, nil)

	msg := &amqp.RatesUpdatedMessage{Base: "usd", Rates: map[string]float64{"EUR": 0.9, "GBP": 0.8}}
	require.NoError(t, w.HandleRatesMessage(context.Background(), msg))

	snap := table.Snapshot()
	assert.Equal(t, "USD", snap.Base)
	rate, ok := snap.Lookup("GBP")
	assert.True(t, ok)
	assert.Equal(t, 0.8, rate)
	assert.Equal(t, 1, changes)
}

func TestHandleRatesMessage_InvalidKeepsTable(t *testing.T) {
	table := currency.NewTable(currency.NewRates("EUR", map[string]float64{"USD": 1.1}))
	changes := 0
	w := NewRatesWorker(table, func() { changes++ }, nil)

	err := w.HandleRatesMessage(context.Background(), &amqp.RatesUpdatedMessage{Base: "EUR"})
	require.Error(t, err)
	assert.Equal(t, "EUR", table.Snapshot().Base)
	assert.Zero(t, changes)
}

func TestRun(t *testing.T) {
	t.Run("applies every delivered message", func(t *testing.T) {
		table := currency.NewTable(currency.NewRates("EUR", nil))
		consumer := &stubConsumer{messages: []*amqp.RatesUpdatedMessage{
			{Base: "EUR", Rates: map[string]float64{"USD": 1.1}},
			{Base: "EUR", Rates: map[string]float64{"USD": 1.2}},
		}}
		w := NewRatesWorker(table, nil, nil)

		require.NoError(t, w.Run(context.Background(), consumer))
		assert.Equal(t, []error{nil, nil}, consumer.errs)
		rate, _ := table.Snapshot().Lookup("USD")
		assert.Equal(t, 1.2, rate)
	})

	t.Run("consumer error is returned", func(t *testing.T) {
		boom := errors.New("boom")
		w := NewRatesWorker(currency.NewTable(currency.NewRates("EUR", nil)), nil, nil)
		assert.ErrorIs(t, w.Run(context.Background(), &stubConsumer{err: boom}), boom)
	})

	t.Run("cancellation is a clean stop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		w := NewRatesWorker(currency.NewTable(currency.NewRates("EUR", nil)), nil, nil)
		assert.NoError(t, w.Run(ctx, &stubConsumer{err: context.Canceled}))
	})
}
