package amqp

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"money-manager/internal/currency"
)

// RoutingKeyRatesUpdated is the routing key rate publishers use.
const RoutingKeyRatesUpdated = "rates.updated"

// RatesUpdatedMessage carries a complete replacement rate table. Each rate is
// units of that currency per one unit of Base.
type RatesUpdatedMessage struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	Timestamp time.Time          `json:"timestamp"`
}

// NewRatesUpdatedMessage builds a message from a rate snapshot
func NewRatesUpdatedMessage(r currency.Rates) *RatesUpdatedMessage {
	rates := make(map[string]float64, len(r.Rates))
	for code, rate := range r.Rates {
		rates[code] = rate
	}
	return &RatesUpdatedMessage{
		Base:      r.Base,
		Rates:     rates,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RatesUpdatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ToRates converts the message into a validated rate snapshot.
func (m *RatesUpdatedMessage) ToRates() (currency.Rates, error) {
	if strings.TrimSpace(m.Base) == "" {
		return currency.Rates{}, fmt.Errorf("rates message without base currency")
	}
	if len(m.Rates) == 0 {
		return currency.Rates{}, fmt.Errorf("rates message without rates")
	}
	r := currency.NewRates(m.Base, m.Rates)
	if err := r.Validate(); err != nil {
		return currency.Rates{}, err
	}
	if !m.Timestamp.IsZero() {
		r.UpdatedAt = m.Timestamp
	}
	return r, nil
}

// RatesUpdatedMessageFromJSON decodes and validates a message. A message
// that fails here can never succeed and should not be requeued.
func RatesUpdatedMessageFromJSON(data []byte) (*RatesUpdatedMessage, error) {
	var msg RatesUpdatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if _, err := msg.ToRates(); err != nil {
		return nil, err
	}
	return &msg, nil
}
