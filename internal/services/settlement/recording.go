package settlement

import (
	"context"
	"fmt"
	"sync"

	"vaultpay/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RecordingRail captures settlement requests in memory. Used in tests and
// local development where no payout provider is configured; Err makes it
// double as a failure injector.
type RecordingRail struct {
	mu      sync.Mutex
	Settled []*models.Transfer
	Err     error
}

func NewRecordingRail() *RecordingRail {
	return &RecordingRail{}
}

func (r *RecordingRail) Settle(ctx context.Context, transfer *models.Transfer) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return "", r.Err
	}
	r.Settled = append(r.Settled, transfer)
	return fmt.Sprintf("po_local_%d", len(r.Settled)), nil
}
