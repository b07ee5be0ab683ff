// Package repositories provides the data access layer: repository
// interfaces, their GORM/Postgres implementations, and in-memory
// implementations used by tests and single-process deployments.
package repositories

import (
	"errors"

	"vaultpay/internal/models"
)

var (
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrDuplicateWallet   = errors.New("wallet already exists for user")
	ErrDuplicateKey      = errors.New("idempotency key already used")
	ErrInvalidWalletData = errors.New("invalid wallet data")
)

// WalletRepository defines wallet persistence. Balance fields are mutable;
// wallets are deactivated, never deleted.
type WalletRepository interface {
	Create(wallet *models.Wallet) error
	GetByID(id uint) (*models.Wallet, error)
	GetByUserID(userID uint) (*models.Wallet, error)
	Update(wallet *models.Wallet) error
	GetByStatus(status string) ([]*models.Wallet, error)
}
