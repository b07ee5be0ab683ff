package validation

import (
	"context"
	"fmt"
	"time"

	"vaultpay/internal/models"

	"github.com/shopspring/decimal"
)

// Error is a business-rule rejection. Transfers failing validation are
// never persisted, so the message is the whole payload.
type Error struct {
	Rule    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func fail(rule, format string, args ...interface{}) *Error {
	return &Error{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// Volumes reports a wallet's recent outbound activity, used to enforce
// daily limits. Satisfied by repositories.TransferRepository.
type Volumes interface {
	SumBySourceSince(walletID uint, since time.Time) (decimal.Decimal, error)
}

// TransferValidator checks a drafted transfer against the business rules
// before any money moves. Checks run in order and the first failure wins.
type TransferValidator struct {
	volumes Volumes
}

// NewTransferValidator creates a validator backed by the given volume source.
func NewTransferValidator(volumes Volumes) *TransferValidator {
	if volumes == nil {
		panic("volumes is required")
	}
	return &TransferValidator{volumes: volumes}
}

// Validate runs every rule against the drafted transfer and the already
// loaded wallets. to is nil for external transfers.
func (v *TransferValidator) Validate(ctx context.Context, transfer *models.Transfer, from, to *models.Wallet) error {
	if !transfer.Amount.IsPositive() {
		return fail("amount", "transfer amount must be positive, got %s", transfer.Amount)
	}
	if !from.Active() {
		return fail("source_status", "source wallet %d is not active", from.ID)
	}
	if to != nil {
		if from.ID == to.ID {
			return fail("self_transfer", "cannot transfer to the same wallet")
		}
		if !to.Active() {
			return fail("target_status", "target wallet %d is not active", to.ID)
		}
	}

	total := transfer.TotalDebit()
	if !from.HasSufficientBalance(total, transfer.SourceCurrency) {
		return fail("balance", "insufficient balance: need %s %s, have %s",
			total, transfer.SourceCurrency, from.AvailableBalance(transfer.SourceCurrency))
	}

	return v.checkDailyLimit(transfer, from)
}

func (v *TransferValidator) checkDailyLimit(transfer *models.Transfer, from *models.Wallet) error {
	limit := from.DailyTransferLimit
	rule := "daily_transfer_limit"
	if transfer.External() {
		limit = from.DailyWithdrawalLimit
		rule = "daily_withdrawal_limit"
	}
	if limit.IsZero() {
		return nil
	}

	// Midnight on the wall clock, not a UTC-aligned 24h boundary.
	now := time.Now()
	year, month, day := now.Date()
	dayStart := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	used, err := v.volumes.SumBySourceSince(from.ID, dayStart)
	if err != nil {
		return fmt.Errorf("failed to read daily volume: %w", err)
	}
	if used.Add(transfer.Amount).GreaterThan(limit) {
		return fail(rule, "daily limit exceeded: %s used of %s, requested %s", used, limit, transfer.Amount)
	}
	return nil
}
