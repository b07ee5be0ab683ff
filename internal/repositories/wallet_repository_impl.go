package repositories

import (
	"errors"
	"fmt"

	"vaultpay/internal/models"

	"gorm.io/gorm"
)

type walletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a Postgres-backed WalletRepository.
func NewWalletRepository(db *gorm.DB) WalletRepository {
	if db == nil {
		panic("db is required")
	}
	return &walletRepository{db: db}
}

func (r *walletRepository) Create(wallet *models.Wallet) error {
	if wallet == nil {
		return ErrInvalidWalletData
	}
	var count int64
	if err := r.db.Model(&models.Wallet{}).Where("user_id = ?", wallet.UserID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check wallet uniqueness: %w", err)
	}
	if count > 0 {
		return ErrDuplicateWallet
	}
	return r.db.Create(wallet).Error
}

func (r *walletRepository) GetByID(id uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.First(&wallet, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) Update(wallet *models.Wallet) error {
	return r.db.Save(wallet).Error
}

func (r *walletRepository) GetByStatus(status string) ([]*models.Wallet, error) {
	var wallets []*models.Wallet
	if err := r.db.Where("status = ?", status).Find(&wallets).Error; err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, nil
}
