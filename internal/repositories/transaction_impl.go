package repositories

import (
	"errors"
	"fmt"
	"time"

	"vaultpay/internal/models"

	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a Postgres-backed TransactionRepository.
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	if db == nil {
		panic("db is required")
	}
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(tx *models.Transaction) error {
	if err := r.db.Create(tx).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return err
	}
	return nil
}

func (r *transactionRepository) Update(tx *models.Transaction) error {
	return r.db.Save(tx).Error
}

func (r *transactionRepository) GetByTransactionID(transactionID string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.Where("transaction_id = ?", transactionID).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (r *transactionRepository) FindByIdempotencyKey(key string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.Where("idempotency_key = ?", key).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to look up idempotency key: %w", err)
	}
	return &tx, nil
}

func (r *transactionRepository) ListByWallet(walletID uint, limit, offset int) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	q := r.db.Where("wallet_id = ?", walletID).Order("created_at DESC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

func (r *transactionRepository) ListByWalletAndRange(walletID uint, start, end time.Time) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	err := r.db.Where("wallet_id = ? AND created_at BETWEEN ? AND ?", walletID, start, end).
		Order("created_at ASC").Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

func (r *transactionRepository) ListByReference(reference string) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	if err := r.db.Where("reference = ?", reference).Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}
