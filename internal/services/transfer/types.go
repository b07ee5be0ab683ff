package transfer

import "github.com/shopspring/decimal"

// TransferRequest initiates an internal wallet-to-wallet transfer.
// Currency defaults to the source wallet's default currency and
// TargetCurrency to the destination wallet's; a conversion happens when
// they differ. An empty IdempotencyKey gets a generated one, which makes
// the request single-shot.
type TransferRequest struct {
	FromWalletID   uint            `json:"from_wallet_id"`
	ToWalletID     uint            `json:"to_wallet_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency,omitempty"`
	TargetCurrency string          `json:"target_currency,omitempty"`
	Description    string          `json:"description,omitempty"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}

// ExternalTransferRequest initiates a withdrawal settled over the payout
// rail to an external account.
type ExternalTransferRequest struct {
	FromWalletID      uint            `json:"from_wallet_id"`
	ExternalAccountID string          `json:"external_account_id"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency,omitempty"`
	TargetCurrency    string          `json:"target_currency,omitempty"`
	Description       string          `json:"description,omitempty"`
	IdempotencyKey    string          `json:"idempotency_key,omitempty"`
}

// DepositRequest credits external funds into a wallet.
type DepositRequest struct {
	WalletID       uint            `json:"wallet_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency,omitempty"`
	Reference      string          `json:"reference,omitempty"`
	Description    string          `json:"description,omitempty"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}
