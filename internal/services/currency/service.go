package currency

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"vaultpay/internal/models"

	"github.com/shopspring/decimal"
)

// ErrUnsupportedConversion is returned when no rate is known for a pair.
var ErrUnsupportedConversion = errors.New("unsupported currency conversion")

// Service converts amounts between currencies using an in-memory rate
// table. Setting a rate also sets the inverse so every registered pair
// converts both ways.
type Service struct {
	mu    sync.RWMutex
	rates map[string]*models.ExchangeRate
}

// NewService creates a converter seeded with the default rate table.
func NewService() *Service {
	s := &Service{rates: make(map[string]*models.ExchangeRate)}
	s.seedDefaults()
	return s
}

func (s *Service) seedDefaults() {
	defaults := map[[2]string]string{
		{"USD", "EUR"}: "0.9",
		{"USD", "GBP"}: "0.78",
		{"USD", "JPY"}: "148.5",
		{"USD", "CAD"}: "1.36",
		{"EUR", "GBP"}: "0.867",
	}
	for pair, rate := range defaults {
		s.SetRate(pair[0], pair[1], decimal.RequireFromString(rate))
	}
}

// SetRate registers a rate for from->to and its inverse for to->from.
func (s *Service) SetRate(from, to string, rate decimal.Decimal) error {
	fwd, err := models.NewExchangeRate(from, to, rate, "manual")
	if err != nil {
		return err
	}
	inv := fwd.Inverse()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[fwd.Pair()] = fwd
	s.rates[inv.Pair()] = inv
	return nil
}

// Rate returns the registered exchange rate for from->to. Same-currency
// pairs always resolve to 1.
func (s *Service) Rate(from, to string) (*models.ExchangeRate, error) {
	if from == to {
		return &models.ExchangeRate{
			From:      from,
			To:        to,
			Rate:      decimal.NewFromInt(1),
			Timestamp: time.Now(),
			Source:    "identity",
		}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	rate, ok := s.rates[from+"/"+to]
	if !ok {
		return nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion, from, to)
	}
	return rate, nil
}

// Convert returns amount expressed in the target currency, rounded to two
// decimal places.
func (s *Service) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	rate, err := s.Rate(from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return rate.Convert(amount), nil
}

// IsSupported reports whether a conversion from->to can be performed.
func (s *Service) IsSupported(from, to string) bool {
	_, err := s.Rate(from, to)
	return err == nil
}
