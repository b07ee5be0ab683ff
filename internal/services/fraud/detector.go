package fraud

import (
	"context"
	"fmt"
	"log"
	"time"

	"vaultpay/internal/models"

	"github.com/shopspring/decimal"
)

// History is the transfer activity the rules consult. Satisfied by
// repositories.TransferRepository.
type History interface {
	CountBySourceSince(walletID uint, since time.Time) (int64, error)
	SumBySourceSince(walletID uint, since time.Time) (decimal.Decimal, error)
	HasTransferred(fromWalletID, toWalletID uint) (bool, error)
}

// Config holds the rule thresholds.
type Config struct {
	SingleTransferLimit decimal.Decimal // single amount above this -> review
	HourlyAmountLimit   decimal.Decimal // rolling hour total above this -> review
	HourlyCountLimit    int64           // rolling hour count at or above this -> block
	NewRecipientLimit   decimal.Decimal // amount above this to a first-time recipient -> flag
	EscalationScore     int             // aggregate score at or above this -> review
}

// Detector screens transfers with a fixed rule set over recent wallet
// activity. Rules run in order and their results are merged; history
// lookups that fail degrade to allow rather than blocking payments on an
// infrastructure error.
type Detector struct {
	history History
	config  Config
}

// NewDetector creates a detector with the given history source. Zero
// config fields fall back to the default thresholds.
func NewDetector(history History, config Config) *Detector {
	if history == nil {
		panic("history is required")
	}
	if config.SingleTransferLimit.IsZero() {
		config.SingleTransferLimit = decimal.NewFromInt(10000)
	}
	if config.HourlyAmountLimit.IsZero() {
		config.HourlyAmountLimit = decimal.NewFromInt(25000)
	}
	if config.HourlyCountLimit == 0 {
		config.HourlyCountLimit = 20
	}
	if config.NewRecipientLimit.IsZero() {
		config.NewRecipientLimit = decimal.NewFromInt(5000)
	}
	if config.EscalationScore == 0 {
		config.EscalationScore = 80
	}
	return &Detector{history: history, config: config}
}

// Screen evaluates a transfer before execution and returns the merged
// verdict of all rules.
func (d *Detector) Screen(ctx context.Context, transfer *models.Transfer) (Result, error) {
	result := Allow()
	result = merge(result, d.checkSingleAmount(transfer))
	result = merge(result, d.checkVelocity(transfer))
	result = merge(result, d.checkHourlyAmount(transfer))
	result = merge(result, d.checkNewRecipient(transfer))

	if result.Score >= d.config.EscalationScore && severity[result.Action] < severity[ActionReview] {
		result.Action = ActionReview
		if result.Reason == "" {
			result.Reason = fmt.Sprintf("combined risk score %d", result.Score)
		}
	}
	return result, nil
}

func (d *Detector) checkSingleAmount(t *models.Transfer) Result {
	if t.Amount.GreaterThan(d.config.SingleTransferLimit) {
		return Review(fmt.Sprintf("single transfer of %s exceeds %s", t.Amount, d.config.SingleTransferLimit), 50)
	}
	return Allow()
}

func (d *Detector) checkVelocity(t *models.Transfer) Result {
	count, err := d.history.CountBySourceSince(t.FromWalletID, time.Now().Add(-time.Hour))
	if err != nil {
		log.Printf("fraud: velocity lookup failed for wallet %d: %v", t.FromWalletID, err)
		return Allow()
	}
	if count >= d.config.HourlyCountLimit {
		return Block(fmt.Sprintf("%d transfers in the last hour", count), 100)
	}
	return Allow()
}

func (d *Detector) checkHourlyAmount(t *models.Transfer) Result {
	total, err := d.history.SumBySourceSince(t.FromWalletID, time.Now().Add(-time.Hour))
	if err != nil {
		log.Printf("fraud: hourly amount lookup failed for wallet %d: %v", t.FromWalletID, err)
		return Allow()
	}
	if total.Add(t.Amount).GreaterThan(d.config.HourlyAmountLimit) {
		return Review(fmt.Sprintf("hourly volume %s exceeds %s", total.Add(t.Amount), d.config.HourlyAmountLimit), 60)
	}
	return Allow()
}

func (d *Detector) checkNewRecipient(t *models.Transfer) Result {
	if t.ToWalletID == nil || t.Amount.LessThanOrEqual(d.config.NewRecipientLimit) {
		return Allow()
	}
	seen, err := d.history.HasTransferred(t.FromWalletID, *t.ToWalletID)
	if err != nil {
		log.Printf("fraud: recipient lookup failed for wallet %d: %v", t.FromWalletID, err)
		return Allow()
	}
	if !seen {
		return Flag(fmt.Sprintf("large transfer of %s to first-time recipient", t.Amount), 30)
	}
	return Allow()
}
