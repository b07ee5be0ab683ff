package wallet

import (
	"context"

	"vaultpay/internal/models"

	"github.com/shopspring/decimal"
)

// Config holds configuration for wallet operations.
type Config struct {
	DefaultCurrency             string
	LowBalanceThreshold         decimal.Decimal
	DefaultDailyTransferLimit   decimal.Decimal
	DefaultDailyWithdrawalLimit decimal.Decimal
}

// MetricsCollector defines the interface for collecting wallet metrics.
type MetricsCollector interface {
	RecordTransaction(kind string, amount decimal.Decimal)
	RecordBalanceChange(walletID uint, oldBalance, newBalance decimal.Decimal)
	RecordError(operation, errType string)
}

// NoopCache satisfies CacheOperator without caching anything. Used in
// tests and deployments without Redis.
type NoopCache struct{}

func (NoopCache) GetWallet(context.Context, uint) (*models.Wallet, error) {
	return nil, ErrCacheMiss
}
func (NoopCache) SetWallet(context.Context, *models.Wallet) error { return nil }
func (NoopCache) InvalidateWallet(context.Context, uint) error    { return nil }
