package repositories

import (
	"errors"
	"time"

	"vaultpay/internal/models"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionRepository stores the append-only ledger. Entries are never
// deleted; the only mutation is a status transition via Update.
type TransactionRepository interface {
	Create(tx *models.Transaction) error
	Update(tx *models.Transaction) error
	GetByTransactionID(transactionID string) (*models.Transaction, error)
	FindByIdempotencyKey(key string) (*models.Transaction, error)
	ListByWallet(walletID uint, limit, offset int) ([]*models.Transaction, error)
	ListByWalletAndRange(walletID uint, start, end time.Time) ([]*models.Transaction, error)
	ListByReference(reference string) ([]*models.Transaction, error)
}
