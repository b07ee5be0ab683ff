package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Wallet statuses
const (
	WalletStatusActive   = "active"
	WalletStatusInactive = "inactive"
)

var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrWalletInactive    = errors.New("wallet is not active")
)

// BalanceMap holds per-currency balances and is stored as jsonb.
type BalanceMap map[string]decimal.Decimal

// Value implements the driver.Valuer interface
func (b BalanceMap) Value() (driver.Value, error) {
	if b == nil {
		return json.Marshal(BalanceMap{})
	}
	return json.Marshal(b)
}

// Scan implements the sql.Scanner interface
func (b *BalanceMap) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, b)
}

// Wallet is a user's multi-currency balance store. Exactly one wallet
// exists per user. Balance mutations assume the caller holds the wallet's
// lock from the lock registry; the model only enforces the arithmetic
// invariants (positive amounts, non-negative balances, active status).
type Wallet struct {
	ID                   uint            `gorm:"primarykey" json:"id"`
	UserID               uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	Balances             BalanceMap      `gorm:"type:jsonb" json:"balances"`
	DefaultCurrency      string          `gorm:"default:'USD'" json:"default_currency"`
	Status               string          `gorm:"default:'active'" json:"status"`
	StatusReason         string          `gorm:"default:''" json:"status_reason,omitempty"`
	DailyTransferLimit   decimal.Decimal `gorm:"type:numeric(20,4)" json:"daily_transfer_limit"`
	DailyWithdrawalLimit decimal.Decimal `gorm:"type:numeric(20,4)" json:"daily_withdrawal_limit"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// Active reports whether the wallet can take part in balance mutations.
func (w *Wallet) Active() bool {
	return w.Status == WalletStatusActive
}

// AvailableBalance returns the point-in-time balance for a currency.
// Callers needing strong consistency must read under the wallet's lock.
func (w *Wallet) AvailableBalance(currency string) decimal.Decimal {
	if w.Balances == nil {
		return decimal.Zero
	}
	return w.Balances[currency]
}

// Credit increases the balance for a currency. Credits have no upper bound.
func (w *Wallet) Credit(amount decimal.Decimal, currency string) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !w.Active() {
		return ErrWalletInactive
	}
	if w.Balances == nil {
		w.Balances = BalanceMap{}
	}
	w.Balances[currency] = w.Balances[currency].Add(amount)
	return nil
}

// Debit decreases the balance for a currency. The balance never goes
// negative; a debit larger than the available balance fails with
// ErrInsufficientFunds and leaves the balance unchanged.
func (w *Wallet) Debit(amount decimal.Decimal, currency string) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !w.Active() {
		return ErrWalletInactive
	}
	available := w.AvailableBalance(currency)
	if available.LessThan(amount) {
		return ErrInsufficientFunds
	}
	if w.Balances == nil {
		w.Balances = BalanceMap{}
	}
	w.Balances[currency] = available.Sub(amount)
	return nil
}

// HasSufficientBalance checks a prospective debit without applying it.
func (w *Wallet) HasSufficientBalance(amount decimal.Decimal, currency string) bool {
	return w.AvailableBalance(currency).GreaterThanOrEqual(amount)
}

// Deactivate marks the wallet inactive. Wallets are never deleted.
func (w *Wallet) Deactivate(reason string) {
	w.Status = WalletStatusInactive
	w.StatusReason = reason
}

// Activate restores an inactive wallet.
func (w *Wallet) Activate() {
	w.Status = WalletStatusActive
	w.StatusReason = ""
}
