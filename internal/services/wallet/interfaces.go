package wallet

import (
	"context"

	"vaultpay/internal/models"

	"github.com/shopspring/decimal"
)

// Service defines the wallet service interface. Credit and Debit are the
// atomic mutation primitives the transfer engine calls while holding the
// wallet's lock from the lock registry; they do not lock themselves.
type Service interface {
	// Wallet management
	CreateWallet(ctx context.Context, userID uint, currency string) (*models.Wallet, error)
	GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error)
	GetWalletByUser(ctx context.Context, userID uint) (*models.Wallet, error)

	// Balance operations
	Balance(ctx context.Context, walletID uint, currency string) (decimal.Decimal, error)
	Credit(ctx context.Context, walletID uint, amount decimal.Decimal, currency string) (*models.Wallet, error)
	Debit(ctx context.Context, walletID uint, amount decimal.Decimal, currency string) (*models.Wallet, error)

	// Limit configuration; enforcement happens in the validation collaborator
	SetDailyTransferLimit(ctx context.Context, walletID uint, limit decimal.Decimal) error
	SetDailyWithdrawalLimit(ctx context.Context, walletID uint, limit decimal.Decimal) error

	// Status management; wallets are deactivated, never deleted
	Deactivate(ctx context.Context, walletID uint, reason string) error
	Activate(ctx context.Context, walletID uint) error
}

// CacheOperator is the read-path cache the service consults for wallet
// snapshots. Entries are invalidated on every balance mutation.
type CacheOperator interface {
	GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error)
	SetWallet(ctx context.Context, wallet *models.Wallet) error
	InvalidateWallet(ctx context.Context, walletID uint) error
}
