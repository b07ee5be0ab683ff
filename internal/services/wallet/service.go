package wallet

import (
	"context"
	"errors"
	"fmt"

	"vaultpay/internal/models"
	"vaultpay/internal/repositories"
	"vaultpay/internal/services/notification"

	"github.com/shopspring/decimal"
)

type service struct {
	repo     repositories.WalletRepository
	cache    CacheOperator
	notifier *notification.Service
	config   Config
	metrics  MetricsCollector
}

// NewService creates a new wallet service
func NewService(
	repo repositories.WalletRepository,
	cache CacheOperator,
	notifier *notification.Service,
	config Config,
	metrics MetricsCollector,
) Service {
	if repo == nil {
		panic("repo is required")
	}
	if cache == nil {
		cache = NoopCache{}
	}
	if notifier == nil {
		notifier = notification.NewService()
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	// Default configuration values if not provided
	if config.DefaultCurrency == "" {
		config.DefaultCurrency = "USD"
	}
	if config.LowBalanceThreshold.IsZero() {
		config.LowBalanceThreshold = decimal.NewFromInt(100)
	}
	if config.DefaultDailyTransferLimit.IsZero() {
		config.DefaultDailyTransferLimit = decimal.NewFromInt(10000)
	}
	if config.DefaultDailyWithdrawalLimit.IsZero() {
		config.DefaultDailyWithdrawalLimit = decimal.NewFromInt(5000)
	}

	return &service{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		config:   config,
		metrics:  metrics,
	}
}

func (s *service) CreateWallet(ctx context.Context, userID uint, currency string) (*models.Wallet, error) {
	if currency == "" {
		currency = s.config.DefaultCurrency
	}

	wallet := &models.Wallet{
		UserID:               userID,
		Balances:             models.BalanceMap{currency: decimal.Zero},
		DefaultCurrency:      currency,
		Status:               models.WalletStatusActive,
		DailyTransferLimit:   s.config.DefaultDailyTransferLimit,
		DailyWithdrawalLimit: s.config.DefaultDailyWithdrawalLimit,
	}

	if err := s.repo.Create(wallet); err != nil {
		if errors.Is(err, repositories.ErrDuplicateWallet) {
			return nil, ErrDuplicateWallet
		}
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	s.cache.SetWallet(ctx, wallet)
	return wallet, nil
}

func (s *service) GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error) {
	// Try cache first
	if wallet, err := s.cache.GetWallet(ctx, walletID); err == nil {
		return wallet, nil
	}

	wallet, err := s.repo.GetByID(walletID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	s.cache.SetWallet(ctx, wallet)
	return wallet, nil
}

func (s *service) GetWalletByUser(ctx context.Context, userID uint) (*models.Wallet, error) {
	wallet, err := s.repo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return wallet, nil
}

func (s *service) Balance(ctx context.Context, walletID uint, currency string) (decimal.Decimal, error) {
	wallet, err := s.GetWallet(ctx, walletID)
	if err != nil {
		return decimal.Zero, err
	}
	return wallet.AvailableBalance(currency), nil
}

// Credit increases a wallet balance. The caller must hold the wallet's
// lock; the ledger entry recording this mutation must be written in the
// same lock scope.
func (s *service) Credit(ctx context.Context, walletID uint, amount decimal.Decimal, currency string) (*models.Wallet, error) {
	wallet, err := s.repo.GetByID(walletID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	oldBalance := wallet.AvailableBalance(currency)
	if err := wallet.Credit(amount, currency); err != nil {
		s.metrics.RecordError("credit", err.Error())
		return nil, err
	}
	if err := s.repo.Update(wallet); err != nil {
		s.metrics.RecordError("credit", err.Error())
		return nil, fmt.Errorf("failed to update wallet: %w", err)
	}

	s.cache.InvalidateWallet(ctx, walletID)
	newBalance := wallet.AvailableBalance(currency)
	s.notifier.BalanceChanged(wallet, currency, oldBalance, newBalance)
	s.metrics.RecordTransaction(models.KindCredit, amount)
	s.metrics.RecordBalanceChange(walletID, oldBalance, newBalance)

	return wallet, nil
}

// Debit decreases a wallet balance, failing with models.ErrInsufficientFunds
// when the available balance cannot cover the amount. Same locking contract
// as Credit.
func (s *service) Debit(ctx context.Context, walletID uint, amount decimal.Decimal, currency string) (*models.Wallet, error) {
	wallet, err := s.repo.GetByID(walletID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	oldBalance := wallet.AvailableBalance(currency)
	if err := wallet.Debit(amount, currency); err != nil {
		s.metrics.RecordError("debit", err.Error())
		return nil, err
	}
	if err := s.repo.Update(wallet); err != nil {
		s.metrics.RecordError("debit", err.Error())
		return nil, fmt.Errorf("failed to update wallet: %w", err)
	}

	s.cache.InvalidateWallet(ctx, walletID)
	newBalance := wallet.AvailableBalance(currency)
	s.notifier.BalanceChanged(wallet, currency, oldBalance, newBalance)
	if newBalance.LessThan(s.config.LowBalanceThreshold) {
		s.notifier.LowBalance(wallet, currency, newBalance)
	}
	s.metrics.RecordTransaction(models.KindDebit, amount)
	s.metrics.RecordBalanceChange(walletID, oldBalance, newBalance)

	return wallet, nil
}

func (s *service) SetDailyTransferLimit(ctx context.Context, walletID uint, limit decimal.Decimal) error {
	return s.updateWallet(ctx, walletID, func(w *models.Wallet) {
		w.DailyTransferLimit = limit
	})
}

func (s *service) SetDailyWithdrawalLimit(ctx context.Context, walletID uint, limit decimal.Decimal) error {
	return s.updateWallet(ctx, walletID, func(w *models.Wallet) {
		w.DailyWithdrawalLimit = limit
	})
}

func (s *service) Deactivate(ctx context.Context, walletID uint, reason string) error {
	return s.updateWallet(ctx, walletID, func(w *models.Wallet) {
		w.Deactivate(reason)
	})
}

func (s *service) Activate(ctx context.Context, walletID uint) error {
	return s.updateWallet(ctx, walletID, func(w *models.Wallet) {
		w.Activate()
	})
}

func (s *service) updateWallet(ctx context.Context, walletID uint, mutate func(*models.Wallet)) error {
	wallet, err := s.repo.GetByID(walletID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return ErrWalletNotFound
		}
		return fmt.Errorf("failed to get wallet: %w", err)
	}

	mutate(wallet)

	if err := s.repo.Update(wallet); err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}
	s.cache.InvalidateWallet(ctx, walletID)
	return nil
}
