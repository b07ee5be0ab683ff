package ledger

import (
	"time"

	"vaultpay/internal/models"

	"github.com/shopspring/decimal"
)

// Statement is a wallet's activity over a time window. Totals only count
// balance-affecting completed entries; informational fee records are
// listed but excluded from the sums so credits minus debits reconciles
// with the balance movement.
type Statement struct {
	WalletID     uint                  `json:"wallet_id"`
	Start        time.Time             `json:"start"`
	End          time.Time             `json:"end"`
	Entries      []*models.Transaction `json:"entries"`
	TotalCredits decimal.Decimal       `json:"total_credits"`
	TotalDebits  decimal.Decimal       `json:"total_debits"`
	TotalFees    decimal.Decimal       `json:"total_fees"`
}
