package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transfer types
const (
	TransferTypeInternal = "internal"
	TransferTypeExternal = "external"
)

// Transfer statuses
const (
	TransferPending     = "pending"
	TransferProcessing  = "processing"
	TransferNeedsReview = "needs_review"
	TransferCompleted   = "completed"
	TransferFailed      = "failed"
	TransferCancelled   = "cancelled"
)

var ErrMissingRecipient = errors.New("transfer requires a target wallet or external account")

// transferTransitions encodes the monotonic state machine. Terminal states
// (completed, failed, cancelled) have no outgoing edges.
var transferTransitions = map[string][]string{
	TransferPending:     {TransferProcessing, TransferNeedsReview, TransferFailed, TransferCancelled},
	TransferNeedsReview: {TransferProcessing, TransferFailed},
	TransferProcessing:  {TransferCompleted, TransferFailed},
}

func canTransition(from, to string) bool {
	for _, next := range transferTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transfer is a money-movement workflow between two wallets or from a
// wallet to an external account. A completed internal transfer always has
// both a debit and a credit transaction id; a completed external transfer
// has a debit id and a settlement reference.
type Transfer struct {
	ID                  uint            `gorm:"primarykey" json:"-"`
	PublicID            string          `gorm:"uniqueIndex;not null" json:"id"`
	Type                string          `gorm:"not null" json:"type"`
	FromWalletID        uint            `gorm:"index;not null" json:"from_wallet_id"`
	ToWalletID          *uint           `gorm:"index" json:"to_wallet_id,omitempty"`
	ExternalAccountID   string          `json:"external_account_id,omitempty"`
	Amount              decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"amount"`
	SourceCurrency      string          `gorm:"not null" json:"source_currency"`
	TargetCurrency      string          `gorm:"not null" json:"target_currency"`
	ConvertedAmount     decimal.Decimal `gorm:"type:numeric(20,4)" json:"converted_amount"`
	Fee                 decimal.Decimal `gorm:"type:numeric(20,4)" json:"fee"`
	Description         string          `json:"description,omitempty"`
	IdempotencyKey      string          `gorm:"uniqueIndex;not null" json:"idempotency_key"`
	Status              string          `gorm:"index;not null;default:'pending'" json:"status"`
	FailureReason       string          `json:"failure_reason,omitempty"`
	SourceTransactionID string          `json:"source_transaction_id,omitempty"`
	TargetTransactionID string          `json:"target_transaction_id,omitempty"`
	SettlementRef       string          `json:"settlement_ref,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	CompletedAt         *time.Time      `json:"completed_at,omitempty"`
}

// NewTransfer builds a pending transfer draft, enforcing required fields
// at call time. An empty idempotency key gets a generated one.
func NewTransfer(transferType string, fromWalletID uint, toWalletID *uint, externalAccountID string,
	amount decimal.Decimal, sourceCurrency, targetCurrency string,
	convertedAmount, fee decimal.Decimal, description, idempotencyKey string) (*Transfer, error) {

	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if toWalletID == nil && externalAccountID == "" {
		return nil, ErrMissingRecipient
	}
	if targetCurrency == "" {
		targetCurrency = sourceCurrency
	}
	if convertedAmount.IsZero() {
		convertedAmount = amount
	}
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}

	return &Transfer{
		PublicID:          uuid.NewString(),
		Type:              transferType,
		FromWalletID:      fromWalletID,
		ToWalletID:        toWalletID,
		ExternalAccountID: externalAccountID,
		Amount:            amount,
		SourceCurrency:    sourceCurrency,
		TargetCurrency:    targetCurrency,
		ConvertedAmount:   convertedAmount,
		Fee:               fee,
		Description:       description,
		IdempotencyKey:    idempotencyKey,
		Status:            TransferPending,
	}, nil
}

// TotalDebit is the full amount removed from the source wallet (amount + fee).
func (t *Transfer) TotalDebit() decimal.Decimal {
	return t.Amount.Add(t.Fee)
}

// CrossCurrency reports whether source and target currencies differ.
func (t *Transfer) CrossCurrency() bool {
	return t.SourceCurrency != t.TargetCurrency
}

// External reports whether this transfer leaves the wallet system.
func (t *Transfer) External() bool {
	return t.Type == TransferTypeExternal
}

// Terminal reports whether the transfer has reached a final state.
func (t *Transfer) Terminal() bool {
	switch t.Status {
	case TransferCompleted, TransferFailed, TransferCancelled:
		return true
	}
	return false
}

func (t *Transfer) transition(to string) error {
	if !canTransition(t.Status, to) {
		return &InvalidTransitionError{From: t.Status, To: to}
	}
	t.Status = to
	return nil
}

// MarkProcessing moves the transfer into the locked execution phase.
func (t *Transfer) MarkProcessing() error {
	return t.transition(TransferProcessing)
}

// MarkNeedsReview parks the transfer for manual fraud review.
func (t *Transfer) MarkNeedsReview(reason string) error {
	if err := t.transition(TransferNeedsReview); err != nil {
		return err
	}
	t.FailureReason = reason
	return nil
}

// MarkCompleted records the linked ledger entries and finishes the transfer.
func (t *Transfer) MarkCompleted(sourceTransactionID, targetTransactionID string) error {
	if err := t.transition(TransferCompleted); err != nil {
		return err
	}
	t.SourceTransactionID = sourceTransactionID
	t.TargetTransactionID = targetTransactionID
	t.FailureReason = ""
	now := time.Now()
	t.CompletedAt = &now
	return nil
}

// MarkFailed finishes the transfer with the captured reason.
func (t *Transfer) MarkFailed(reason string) error {
	if err := t.transition(TransferFailed); err != nil {
		return err
	}
	t.FailureReason = reason
	now := time.Now()
	t.CompletedAt = &now
	return nil
}

// MarkCancelled is only legal while the transfer is still pending.
func (t *Transfer) MarkCancelled() error {
	if t.Status != TransferPending {
		return &InvalidTransitionError{From: t.Status, To: TransferCancelled}
	}
	t.Status = TransferCancelled
	now := time.Now()
	t.CompletedAt = &now
	return nil
}
