package repositories

import (
	"errors"
	"time"

	"vaultpay/internal/models"

	"github.com/shopspring/decimal"
)

var ErrTransferNotFound = errors.New("transfer not found")

// TransferRepository stores transfer records, with secondary lookups by
// idempotency key and status, plus the aggregate queries the fraud and
// validation collaborators need.
type TransferRepository interface {
	Create(t *models.Transfer) error
	Update(t *models.Transfer) error
	GetByPublicID(publicID string) (*models.Transfer, error)
	FindByIdempotencyKey(key string) (*models.Transfer, error)
	ListByWallet(walletID uint) ([]*models.Transfer, error)
	ListBySource(walletID uint) ([]*models.Transfer, error)
	ListByTarget(walletID uint) ([]*models.Transfer, error)
	ListByStatus(status string) ([]*models.Transfer, error)

	// CountBySourceSince counts transfers initiated by a wallet after the
	// given instant, regardless of outcome.
	CountBySourceSince(walletID uint, since time.Time) (int64, error)
	// SumBySourceSince totals the requested amounts of completed and
	// in-flight transfers initiated by a wallet after the given instant.
	SumBySourceSince(walletID uint, since time.Time) (decimal.Decimal, error)
	// HasTransferred reports whether the source wallet has ever sent funds
	// to the target wallet before.
	HasTransferred(fromWalletID, toWalletID uint) (bool, error)
}
