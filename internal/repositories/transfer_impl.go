package repositories

import (
	"errors"
	"fmt"
	"time"

	"vaultpay/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type transferRepository struct {
	db *gorm.DB
}

// NewTransferRepository creates a Postgres-backed TransferRepository.
func NewTransferRepository(db *gorm.DB) TransferRepository {
	if db == nil {
		panic("db is required")
	}
	return &transferRepository{db: db}
}

func (r *transferRepository) Create(t *models.Transfer) error {
	if err := r.db.Create(t).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return err
	}
	return nil
}

func (r *transferRepository) Update(t *models.Transfer) error {
	return r.db.Save(t).Error
}

func (r *transferRepository) GetByPublicID(publicID string) (*models.Transfer, error) {
	var t models.Transfer
	if err := r.db.Where("public_id = ?", publicID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return &t, nil
}

func (r *transferRepository) FindByIdempotencyKey(key string) (*models.Transfer, error) {
	var t models.Transfer
	if err := r.db.Where("idempotency_key = ?", key).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to look up idempotency key: %w", err)
	}
	return &t, nil
}

func (r *transferRepository) ListByWallet(walletID uint) ([]*models.Transfer, error) {
	var ts []*models.Transfer
	err := r.db.Where("from_wallet_id = ? OR to_wallet_id = ?", walletID, walletID).
		Order("created_at DESC").Find(&ts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return ts, nil
}

func (r *transferRepository) ListBySource(walletID uint) ([]*models.Transfer, error) {
	var ts []*models.Transfer
	if err := r.db.Where("from_wallet_id = ?", walletID).Order("created_at DESC").Find(&ts).Error; err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return ts, nil
}

func (r *transferRepository) ListByTarget(walletID uint) ([]*models.Transfer, error) {
	var ts []*models.Transfer
	if err := r.db.Where("to_wallet_id = ?", walletID).Order("created_at DESC").Find(&ts).Error; err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return ts, nil
}

func (r *transferRepository) ListByStatus(status string) ([]*models.Transfer, error) {
	var ts []*models.Transfer
	if err := r.db.Where("status = ?", status).Order("created_at ASC").Find(&ts).Error; err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return ts, nil
}

func (r *transferRepository) CountBySourceSince(walletID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Transfer{}).
		Where("from_wallet_id = ? AND created_at >= ?", walletID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count transfers: %w", err)
	}
	return count, nil
}

func (r *transferRepository) SumBySourceSince(walletID uint, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.Model(&models.Transfer{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("from_wallet_id = ? AND created_at >= ? AND status IN ?",
			walletID, since, []string{models.TransferCompleted, models.TransferProcessing}).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transfers: %w", err)
	}
	return total, nil
}

func (r *transferRepository) HasTransferred(fromWalletID, toWalletID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Transfer{}).
		Where("from_wallet_id = ? AND to_wallet_id = ?", fromWalletID, toWalletID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check transfer history: %w", err)
	}
	return count > 0, nil
}
