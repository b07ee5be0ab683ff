package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is an immutable conversion rate between two currencies.
type ExchangeRate struct {
	From      string
	To        string
	Rate      decimal.Decimal
	Timestamp time.Time
	Source    string
}

// NewExchangeRate validates and builds a rate entry.
func NewExchangeRate(from, to string, rate decimal.Decimal, source string) (*ExchangeRate, error) {
	if !rate.IsPositive() {
		return nil, fmt.Errorf("exchange rate must be positive, got %s", rate)
	}
	if source == "" {
		source = "SYSTEM"
	}
	return &ExchangeRate{
		From:      from,
		To:        to,
		Rate:      rate,
		Timestamp: time.Now(),
		Source:    source,
	}, nil
}

// Pair returns the currency pair string, e.g. "USD/EUR".
func (r *ExchangeRate) Pair() string {
	return r.From + "/" + r.To
}

// Convert applies the rate to an amount, rounded to 2 decimal places.
func (r *ExchangeRate) Convert(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(r.Rate).Round(2)
}

// Inverse derives the reverse rate with 10-digit precision.
func (r *ExchangeRate) Inverse() *ExchangeRate {
	return &ExchangeRate{
		From:      r.To,
		To:        r.From,
		Rate:      decimal.NewFromInt(1).DivRound(r.Rate, 10),
		Timestamp: r.Timestamp,
		Source:    r.Source,
	}
}

// Stale reports whether the rate is older than maxAge.
func (r *ExchangeRate) Stale(maxAge time.Duration) bool {
	return time.Since(r.Timestamp) > maxAge
}
