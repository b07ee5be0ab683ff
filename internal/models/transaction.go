package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger entry kinds
const (
	KindCredit      = "credit"
	KindDebit       = "debit"
	KindTransferIn  = "transfer_in"
	KindTransferOut = "transfer_out"
	KindFee         = "fee"
	KindReversal    = "reversal"
	KindRefund      = "refund"
	KindWithdrawal  = "withdrawal"
)

// Ledger entry statuses
const (
	TransactionPending   = "pending"
	TransactionCompleted = "completed"
	TransactionFailed    = "failed"
	TransactionReversed  = "reversed"
)

// KindIsCredit reports whether a kind increases the wallet balance.
func KindIsCredit(kind string) bool {
	switch kind {
	case KindCredit, KindTransferIn, KindReversal, KindRefund:
		return true
	}
	return false
}

// InvalidTransitionError is returned when a status change would violate
// the monotonic state machine of a transaction or transfer.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// Transaction is one append-only ledger entry recording a single
// balance-affecting event. Immutable except for status transitions.
// BalanceAfter is only correct because every entry is written inside the
// same lock scope as the wallet mutation it records.
type Transaction struct {
	ID             uint            `gorm:"primarykey" json:"-"`
	TransactionID  string          `gorm:"uniqueIndex;not null" json:"transaction_id"`
	WalletID       uint            `gorm:"index;not null" json:"wallet_id"`
	Kind           string          `gorm:"not null" json:"kind"`
	Amount         decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"amount"`
	Currency       string          `gorm:"default:'USD'" json:"currency"`
	BalanceAfter   decimal.Decimal `gorm:"type:numeric(20,4)" json:"balance_after"`
	IdempotencyKey string          `gorm:"uniqueIndex;not null" json:"idempotency_key"`
	Status         string          `gorm:"not null;default:'pending'" json:"status"`
	Description    string          `json:"description,omitempty"`
	Reference      string          `gorm:"index" json:"reference,omitempty"`
	FailureReason  string          `json:"failure_reason,omitempty"`
	Metadata       JSON            `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// MarkCompleted transitions pending -> completed.
func (t *Transaction) MarkCompleted() error {
	if t.Status != TransactionPending {
		return &InvalidTransitionError{From: t.Status, To: TransactionCompleted}
	}
	t.Status = TransactionCompleted
	return nil
}

// MarkFailed transitions pending -> failed with a reason.
func (t *Transaction) MarkFailed(reason string) error {
	if t.Status != TransactionPending {
		return &InvalidTransitionError{From: t.Status, To: TransactionFailed}
	}
	t.Status = TransactionFailed
	t.FailureReason = reason
	return nil
}

// MarkReversed transitions completed -> reversed. Only applied entries can
// be reversed; the compensating entry is created by the ledger service.
func (t *Transaction) MarkReversed() error {
	if t.Status != TransactionCompleted {
		return &InvalidTransitionError{From: t.Status, To: TransactionReversed}
	}
	t.Status = TransactionReversed
	return nil
}

// IsCredit reports whether this entry increased the wallet balance.
func (t *Transaction) IsCredit() bool {
	return KindIsCredit(t.Kind)
}
