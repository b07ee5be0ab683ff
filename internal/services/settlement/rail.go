package settlement

import (
	"context"
	"fmt"
	"strings"

	"vaultpay/internal/models"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/payout"
)

// Rail moves funds out of the wallet system to an external account and
// returns a settlement reference. Implementations must be safe to retry:
// the caller compensates the debit if Settle returns an error.
type Rail interface {
	Settle(ctx context.Context, transfer *models.Transfer) (string, error)
}

// StripeRail settles external transfers as Stripe payouts.
type StripeRail struct{}

// NewStripeRail configures the Stripe client and returns the rail.
func NewStripeRail(apiKey string) *StripeRail {
	if apiKey == "" {
		panic("stripe api key is required")
	}
	stripe.Key = apiKey
	return &StripeRail{}
}

func (r *StripeRail) Settle(ctx context.Context, transfer *models.Transfer) (string, error) {
	// Stripe amounts are integer minor units.
	amount := transfer.ConvertedAmount.Mul(hundred).IntPart()

	params := &stripe.PayoutParams{
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(strings.ToLower(transfer.TargetCurrency)),
		Destination: stripe.String(transfer.ExternalAccountID),
		Description: stripe.String(transfer.Description),
	}
	params.Context = ctx

	p, err := payout.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe payout failed: %w", err)
	}
	return p.ID, nil
}
