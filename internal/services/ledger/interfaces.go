package ledger

import (
	"context"
	"time"

	"vaultpay/internal/models"

	"github.com/shopspring/decimal"
)

// Wallets is the slice of the wallet service the ledger needs: the atomic
// mutation primitives plus a snapshot read. Satisfied by wallet.Service.
type Wallets interface {
	Credit(ctx context.Context, walletID uint, amount decimal.Decimal, currency string) (*models.Wallet, error)
	Debit(ctx context.Context, walletID uint, amount decimal.Decimal, currency string) (*models.Wallet, error)
	GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error)
}

// Service is the transaction ledger: an append-only record of every
// balance-affecting event. Append merges the wallet mutation and the
// ledger write into one operation so the balance-after snapshot can never
// drift from the mutation it records; callers must hold the wallet's lock
// around Append and the related status transitions.
type Service interface {
	Append(ctx context.Context, walletID uint, kind string, amount decimal.Decimal, currency, description, reference, idempotencyKey string) (*models.Transaction, error)
	Complete(ctx context.Context, transactionID string) error
	Fail(ctx context.Context, transactionID string, reason string) error
	Reverse(ctx context.Context, transactionID string, reason string) (*models.Transaction, error)
	Compensate(ctx context.Context, transactionID string, reason string) (*models.Transaction, error)

	Get(ctx context.Context, transactionID string) (*models.Transaction, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*models.Transaction, error)
	ListByWallet(ctx context.Context, walletID uint, limit, offset int) ([]*models.Transaction, error)
	Statement(ctx context.Context, walletID uint, start, end time.Time) (*Statement, error)
}
