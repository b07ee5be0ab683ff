package notification

import (
	"log"

	"vaultpay/internal/models"

	"github.com/shopspring/decimal"
)

// AuditLogger is a log-backed observer that records every transfer and
// balance event, forming a lightweight audit trail.
type AuditLogger struct{}

func NewAuditLogger() *AuditLogger { return &AuditLogger{} }

func (a *AuditLogger) OnTransferInitiated(t *models.Transfer) {
	log.Printf("[AUDIT] transfer %s initiated: %s %s from wallet %d", t.PublicID, t.Amount, t.SourceCurrency, t.FromWalletID)
}

func (a *AuditLogger) OnTransferCompleted(t *models.Transfer) {
	log.Printf("[AUDIT] transfer %s completed: debit tx %s credit tx %s fee %s", t.PublicID, t.SourceTransactionID, t.TargetTransactionID, t.Fee)
}

func (a *AuditLogger) OnTransferFailed(t *models.Transfer, reason string) {
	log.Printf("[AUDIT] transfer %s failed: %s", t.PublicID, reason)
}

func (a *AuditLogger) OnTransferNeedsReview(t *models.Transfer, reason string) {
	log.Printf("[AUDIT] transfer %s needs review: %s", t.PublicID, reason)
}

func (a *AuditLogger) OnBalanceChanged(w *models.Wallet, currency string, oldBalance, newBalance decimal.Decimal) {
	log.Printf("[AUDIT] wallet %d balance %s: %s -> %s", w.ID, currency, oldBalance, newBalance)
}

func (a *AuditLogger) OnLowBalance(w *models.Wallet, currency string, balance decimal.Decimal) {
	log.Printf("[AUDIT] wallet %d low balance warning: %s %s", w.ID, balance, currency)
}
