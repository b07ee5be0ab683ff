package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vaultpay/internal/models"
	"vaultpay/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type service struct {
	repo    repositories.TransactionRepository
	wallets Wallets
}

// NewService creates a new ledger service
func NewService(repo repositories.TransactionRepository, wallets Wallets) Service {
	if repo == nil {
		panic("repo is required")
	}
	if wallets == nil {
		panic("wallets is required")
	}
	return &service{repo: repo, wallets: wallets}
}

// Append applies the balance mutation for the given kind and records it as
// a pending ledger entry. Fee entries are informational: the fee amount is
// collected as part of the covering debit, so they record the post-debit
// balance without mutating it. A non-empty idempotency key makes the call
// replay-safe: a second append with the same key returns the existing
// entry without touching the balance.
func (s *service) Append(ctx context.Context, walletID uint, kind string, amount decimal.Decimal, currency, description, reference, idempotencyKey string) (*models.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, models.ErrInvalidAmount
	}
	if idempotencyKey == "" {
		idempotencyKey = uuid.New().String()
	} else if existing, err := s.FindByIdempotencyKey(ctx, idempotencyKey); err == nil {
		return existing, nil
	}

	var (
		wallet *models.Wallet
		err    error
	)
	switch kind {
	case models.KindCredit, models.KindTransferIn, models.KindReversal, models.KindRefund:
		wallet, err = s.wallets.Credit(ctx, walletID, amount, currency)
	case models.KindDebit, models.KindTransferOut, models.KindWithdrawal:
		wallet, err = s.wallets.Debit(ctx, walletID, amount, currency)
	case models.KindFee:
		wallet, err = s.wallets.GetWallet(ctx, walletID)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if err != nil {
		return nil, err
	}

	entry := &models.Transaction{
		TransactionID:  uuid.New().String(),
		WalletID:       walletID,
		Kind:           kind,
		Amount:         amount,
		Currency:       currency,
		BalanceAfter:   wallet.AvailableBalance(currency),
		IdempotencyKey: idempotencyKey,
		Status:         models.TransactionPending,
		Description:    description,
		Reference:      reference,
	}

	if err := s.repo.Create(entry); err != nil {
		s.undoMutation(ctx, walletID, kind, amount, currency)
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}
	return entry, nil
}

// undoMutation rolls back an applied balance change when the ledger write
// itself fails, so the wallet never carries a movement with no record.
func (s *service) undoMutation(ctx context.Context, walletID uint, kind string, amount decimal.Decimal, currency string) {
	switch kind {
	case models.KindCredit, models.KindTransferIn, models.KindReversal, models.KindRefund:
		s.wallets.Debit(ctx, walletID, amount, currency)
	case models.KindDebit, models.KindTransferOut, models.KindWithdrawal:
		s.wallets.Credit(ctx, walletID, amount, currency)
	}
}

func (s *service) Complete(ctx context.Context, transactionID string) error {
	entry, err := s.Get(ctx, transactionID)
	if err != nil {
		return err
	}
	if err := entry.MarkCompleted(); err != nil {
		return err
	}
	return s.repo.Update(entry)
}

func (s *service) Fail(ctx context.Context, transactionID string, reason string) error {
	entry, err := s.Get(ctx, transactionID)
	if err != nil {
		return err
	}
	if err := entry.MarkFailed(reason); err != nil {
		return err
	}
	return s.repo.Update(entry)
}

// Reverse marks a completed entry reversed and appends a compensating
// entry of the opposite kind, restoring the balance movement. The
// compensating entry references the original by transaction ID. Fee
// entries never mutated the balance, so reversing one is refused; the
// reversal of the covering debit already returns the fee.
func (s *service) Reverse(ctx context.Context, transactionID string, reason string) (*models.Transaction, error) {
	original, err := s.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if original.Kind == models.KindFee {
		return nil, ErrNotReversible
	}
	if err := original.MarkReversed(); err != nil {
		return nil, err
	}
	return s.writeReversal(ctx, original, reason)
}

// Compensate undoes an applied entry during a rollback. Unlike Reverse it
// also accepts entries still pending: the balance mutation happens at
// Append time, so an entry whose completion never landed still has to be
// undone before the wallet locks release.
func (s *service) Compensate(ctx context.Context, transactionID string, reason string) (*models.Transaction, error) {
	original, err := s.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if original.Kind == models.KindFee {
		return nil, ErrNotReversible
	}
	if original.Status == models.TransactionPending {
		if err := original.MarkCompleted(); err != nil {
			return nil, err
		}
	}
	if err := original.MarkReversed(); err != nil {
		return nil, err
	}
	return s.writeReversal(ctx, original, reason)
}

// writeReversal persists the reversed original and appends the completed
// compensating entry of the opposite kind.
func (s *service) writeReversal(ctx context.Context, original *models.Transaction, reason string) (*models.Transaction, error) {
	if err := s.repo.Update(original); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	kind := models.KindReversal
	if original.IsCredit() {
		kind = models.KindRefund
	}
	description := "Reversal: " + reason
	compensating, err := s.Append(ctx, original.WalletID, kind, original.Amount, original.Currency, description, original.TransactionID, "")
	if err != nil {
		return nil, err
	}
	if err := s.Complete(ctx, compensating.TransactionID); err != nil {
		return nil, err
	}
	compensating.Status = models.TransactionCompleted
	return compensating, nil
}

func (s *service) Get(ctx context.Context, transactionID string) (*models.Transaction, error) {
	entry, err := s.repo.GetByTransactionID(transactionID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return entry, nil
}

func (s *service) FindByIdempotencyKey(ctx context.Context, key string) (*models.Transaction, error) {
	entry, err := s.repo.FindByIdempotencyKey(key)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return entry, nil
}

func (s *service) ListByWallet(ctx context.Context, walletID uint, limit, offset int) ([]*models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByWallet(walletID, limit, offset)
}

func (s *service) Statement(ctx context.Context, walletID uint, start, end time.Time) (*Statement, error) {
	entries, err := s.repo.ListByWalletAndRange(walletID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	stmt := &Statement{
		WalletID:     walletID,
		Start:        start,
		End:          end,
		Entries:      entries,
		TotalCredits: decimal.Zero,
		TotalDebits:  decimal.Zero,
		TotalFees:    decimal.Zero,
	}
	for _, e := range entries {
		if e.Status != models.TransactionCompleted {
			continue
		}
		switch {
		case e.Kind == models.KindFee:
			stmt.TotalFees = stmt.TotalFees.Add(e.Amount)
		case e.IsCredit():
			stmt.TotalCredits = stmt.TotalCredits.Add(e.Amount)
		default:
			stmt.TotalDebits = stmt.TotalDebits.Add(e.Amount)
		}
	}
	return stmt, nil
}
