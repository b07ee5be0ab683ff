package transfer

import (
	"context"
	"time"

	"vaultpay/internal/models"
	"vaultpay/internal/services/fraud"
	"vaultpay/internal/services/ledger"

	"github.com/shopspring/decimal"
)

// Service orchestrates money movement: internal transfers between
// wallets, external transfers settled over a payout rail, deposits, and
// the lifecycle operations around them.
type Service interface {
	Transfer(ctx context.Context, req TransferRequest) (*models.Transfer, error)
	TransferToExternal(ctx context.Context, req ExternalTransferRequest) (*models.Transfer, error)
	Deposit(ctx context.Context, req DepositRequest) (*models.Transaction, error)

	Cancel(ctx context.Context, publicID string) (*models.Transfer, error)
	Resolve(ctx context.Context, publicID string, approve bool, reason string) (*models.Transfer, error)

	Get(ctx context.Context, publicID string) (*models.Transfer, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*models.Transfer, error)
	ListByWallet(ctx context.Context, walletID uint) ([]*models.Transfer, error)
	ListPendingReview(ctx context.Context) ([]*models.Transfer, error)
	Statement(ctx context.Context, walletID uint, start, end time.Time) (*ledger.Statement, error)
}

// Wallets is the read-side slice of the wallet service the orchestrator
// needs; mutations go through the ledger.
type Wallets interface {
	GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error)
}

// Converter turns a source-currency amount into the target currency.
type Converter interface {
	Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error)
	IsSupported(from, to string) bool
}

// FeeCalculator prices a transfer before execution.
type FeeCalculator interface {
	CalculateFee(amount decimal.Decimal, external, crossCurrency bool) decimal.Decimal
}

// FraudDetector screens a drafted transfer.
type FraudDetector interface {
	Screen(ctx context.Context, transfer *models.Transfer) (fraud.Result, error)
}

// Validator checks a drafted transfer against the business rules.
type Validator interface {
	Validate(ctx context.Context, transfer *models.Transfer, from, to *models.Wallet) error
}

// Locks grants exclusive access to a set of wallets for the duration of
// an execution. The returned release closure is idempotent.
type Locks interface {
	Acquire(ctx context.Context, walletIDs ...uint) (func(), error)
}

// Rail settles external transfers outside the wallet system.
type Rail interface {
	Settle(ctx context.Context, transfer *models.Transfer) (string, error)
}
