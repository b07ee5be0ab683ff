package transfer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"vaultpay/internal/models"
	"vaultpay/internal/repositories"
	"vaultpay/internal/services/fraud"
	"vaultpay/internal/services/ledger"
	"vaultpay/internal/services/notification"
)

type service struct {
	repo      repositories.TransferRepository
	wallets   Wallets
	ledger    ledger.Service
	locks     Locks
	converter Converter
	fees      FeeCalculator
	fraud     FraudDetector
	validator Validator
	rail      Rail
	notifier  *notification.Service
}

// NewService wires the transfer orchestrator. All collaborators except
// the notifier and rail are required; a nil rail rejects external
// transfers at execution time.
func NewService(
	repo repositories.TransferRepository,
	wallets Wallets,
	ledgerSvc ledger.Service,
	locks Locks,
	converter Converter,
	fees FeeCalculator,
	detector FraudDetector,
	validator Validator,
	rail Rail,
	notifier *notification.Service,
) Service {
	if repo == nil {
		panic("repo is required")
	}
	if wallets == nil {
		panic("wallets is required")
	}
	if ledgerSvc == nil {
		panic("ledger is required")
	}
	if locks == nil {
		panic("locks is required")
	}
	if converter == nil {
		panic("converter is required")
	}
	if fees == nil {
		panic("fee calculator is required")
	}
	if detector == nil {
		panic("fraud detector is required")
	}
	if validator == nil {
		panic("validator is required")
	}
	if notifier == nil {
		notifier = notification.NewService()
	}
	return &service{
		repo:      repo,
		wallets:   wallets,
		ledger:    ledgerSvc,
		locks:     locks,
		converter: converter,
		fees:      fees,
		fraud:     detector,
		validator: validator,
		rail:      rail,
		notifier:  notifier,
	}
}

// Transfer runs the full internal transfer workflow: idempotency lookup,
// pricing, validation, fraud screening, then the locked execution phase.
// Transfers rejected by validation or blocked by fraud are never
// persisted; screened transfers held for review are persisted in
// needs_review and resume through Resolve.
func (s *service) Transfer(ctx context.Context, req TransferRequest) (*models.Transfer, error) {
	if req.FromWalletID == req.ToWalletID {
		return nil, ErrSelfTransfer
	}
	if existing, ok := s.replay(req.IdempotencyKey); ok {
		return existing, nil
	}

	from, err := s.wallets.GetWallet(ctx, req.FromWalletID)
	if err != nil {
		return nil, err
	}
	to, err := s.wallets.GetWallet(ctx, req.ToWalletID)
	if err != nil {
		return nil, err
	}

	sourceCurrency := req.Currency
	if sourceCurrency == "" {
		sourceCurrency = from.DefaultCurrency
	}
	targetCurrency := req.TargetCurrency
	if targetCurrency == "" {
		targetCurrency = to.DefaultCurrency
	}

	converted, err := s.converter.Convert(req.Amount, sourceCurrency, targetCurrency)
	if err != nil {
		return nil, err
	}
	fee := s.fees.CalculateFee(req.Amount, false, sourceCurrency != targetCurrency)

	toID := to.ID
	draft, err := models.NewTransfer(models.TransferTypeInternal, from.ID, &toID, "",
		req.Amount, sourceCurrency, targetCurrency, converted, fee, req.Description, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	if err := s.screen(ctx, draft, from, to); err != nil {
		return nil, err
	}

	created, replayed, err := s.createTransfer(draft)
	if err != nil {
		return nil, err
	}
	if replayed {
		return created, nil
	}
	if created.Status == models.TransferNeedsReview {
		s.notifier.TransferNeedsReview(created, created.FailureReason)
		return created, nil
	}
	return s.execute(ctx, created)
}

// TransferToExternal withdraws funds and settles them over the payout
// rail. The source debit is compensated if settlement fails.
func (s *service) TransferToExternal(ctx context.Context, req ExternalTransferRequest) (*models.Transfer, error) {
	if req.ExternalAccountID == "" {
		return nil, ErrMissingRecipient
	}
	if existing, ok := s.replay(req.IdempotencyKey); ok {
		return existing, nil
	}

	from, err := s.wallets.GetWallet(ctx, req.FromWalletID)
	if err != nil {
		return nil, err
	}

	sourceCurrency := req.Currency
	if sourceCurrency == "" {
		sourceCurrency = from.DefaultCurrency
	}
	targetCurrency := req.TargetCurrency
	if targetCurrency == "" {
		targetCurrency = sourceCurrency
	}

	converted, err := s.converter.Convert(req.Amount, sourceCurrency, targetCurrency)
	if err != nil {
		return nil, err
	}
	fee := s.fees.CalculateFee(req.Amount, true, sourceCurrency != targetCurrency)

	draft, err := models.NewTransfer(models.TransferTypeExternal, from.ID, nil, req.ExternalAccountID,
		req.Amount, sourceCurrency, targetCurrency, converted, fee, req.Description, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	if err := s.screen(ctx, draft, from, nil); err != nil {
		return nil, err
	}

	created, replayed, err := s.createTransfer(draft)
	if err != nil {
		return nil, err
	}
	if replayed {
		return created, nil
	}
	if created.Status == models.TransferNeedsReview {
		s.notifier.TransferNeedsReview(created, created.FailureReason)
		return created, nil
	}
	return s.execute(ctx, created)
}

// createTransfer persists a draft. Two concurrent submissions with the
// same idempotency key can both pass the replay lookup; the loser of the
// insert race gets the transfer that won instead of a duplicate-key error.
func (s *service) createTransfer(draft *models.Transfer) (*models.Transfer, bool, error) {
	if err := s.repo.Create(draft); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			if existing, findErr := s.repo.FindByIdempotencyKey(draft.IdempotencyKey); findErr == nil {
				return existing, true, nil
			}
		}
		return nil, false, fmt.Errorf("failed to create transfer: %w", err)
	}
	return draft, false, nil
}

// Deposit credits external funds into a wallet as a single completed
// ledger entry. A repeated idempotency key returns the original entry.
func (s *service) Deposit(ctx context.Context, req DepositRequest) (*models.Transaction, error) {
	if req.IdempotencyKey != "" {
		if existing, err := s.ledger.FindByIdempotencyKey(ctx, req.IdempotencyKey); err == nil {
			return existing, nil
		}
	}

	wallet, err := s.wallets.GetWallet(ctx, req.WalletID)
	if err != nil {
		return nil, err
	}
	currency := req.Currency
	if currency == "" {
		currency = wallet.DefaultCurrency
	}

	release, err := s.locks.Acquire(ctx, req.WalletID)
	if err != nil {
		return nil, err
	}
	defer release()

	entry, err := s.ledger.Append(ctx, req.WalletID, models.KindCredit, req.Amount, currency,
		req.Description, req.Reference, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Complete(ctx, entry.TransactionID); err != nil {
		return nil, err
	}
	entry.Status = models.TransactionCompleted
	return entry, nil
}

// Cancel aborts a transfer that has not started executing. The source
// wallet lock serializes cancellation against the execution phase, so a
// cancel can never land in the middle of a running transfer.
func (s *service) Cancel(ctx context.Context, publicID string) (*models.Transfer, error) {
	t, err := s.Get(ctx, publicID)
	if err != nil {
		return nil, err
	}

	release, err := s.locks.Acquire(ctx, t.FromWalletID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Re-read under the lock: execution may have advanced the status
	// while we waited.
	t, err = s.Get(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if err := t.MarkCancelled(); err != nil {
		return nil, ErrNotCancellable
	}
	if err := s.repo.Update(t); err != nil {
		return nil, fmt.Errorf("failed to update transfer: %w", err)
	}
	return t, nil
}

// Resolve decides a transfer held for fraud review: approval resumes the
// locked execution phase, rejection fails the transfer with the given
// reason. No funds moved while the transfer was held.
func (s *service) Resolve(ctx context.Context, publicID string, approve bool, reason string) (*models.Transfer, error) {
	t, err := s.Get(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if t.Status != models.TransferNeedsReview {
		return nil, ErrNotReviewable
	}

	if !approve {
		if reason == "" {
			reason = "rejected after manual review"
		}
		if err := t.MarkFailed(reason); err != nil {
			return nil, err
		}
		if err := s.repo.Update(t); err != nil {
			return nil, fmt.Errorf("failed to update transfer: %w", err)
		}
		s.notifier.TransferFailed(t, reason)
		return t, nil
	}
	return s.execute(ctx, t)
}

func (s *service) Get(ctx context.Context, publicID string) (*models.Transfer, error) {
	t, err := s.repo.GetByPublicID(publicID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransferNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return t, nil
}

func (s *service) FindByIdempotencyKey(ctx context.Context, key string) (*models.Transfer, error) {
	t, err := s.repo.FindByIdempotencyKey(key)
	if err != nil {
		if errors.Is(err, repositories.ErrTransferNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to find transfer: %w", err)
	}
	return t, nil
}

func (s *service) ListByWallet(ctx context.Context, walletID uint) ([]*models.Transfer, error) {
	return s.repo.ListByWallet(walletID)
}

func (s *service) ListPendingReview(ctx context.Context) ([]*models.Transfer, error) {
	return s.repo.ListByStatus(models.TransferNeedsReview)
}

func (s *service) Statement(ctx context.Context, walletID uint, start, end time.Time) (*ledger.Statement, error) {
	return s.ledger.Statement(ctx, walletID, start, end)
}

// replay returns the existing transfer for a repeated idempotency key.
func (s *service) replay(key string) (*models.Transfer, bool) {
	if key == "" {
		return nil, false
	}
	existing, err := s.repo.FindByIdempotencyKey(key)
	if err != nil {
		return nil, false
	}
	return existing, true
}

// screen runs validation then fraud rules over a draft. A block is an
// error; a review verdict parks the draft in needs_review; a flag is
// recorded and execution continues.
func (s *service) screen(ctx context.Context, draft *models.Transfer, from, to *models.Wallet) error {
	if err := s.validator.Validate(ctx, draft, from, to); err != nil {
		return err
	}

	verdict, err := s.fraud.Screen(ctx, draft)
	if err != nil {
		return fmt.Errorf("fraud screening failed: %w", err)
	}
	switch {
	case verdict.Blocked():
		return &FraudBlockedError{Reason: verdict.Reason, Score: verdict.Score}
	case verdict.NeedsReview():
		return draft.MarkNeedsReview(verdict.Reason)
	case verdict.Action == fraud.ActionFlag:
		log.Printf("transfer %s flagged: %s (score %d)", draft.PublicID, verdict.Reason, verdict.Score)
	}
	return nil
}

// execute is the locked phase shared by Transfer, TransferToExternal and
// Resolve. The transfer is already persisted; from here every outcome is
// recorded on it.
func (s *service) execute(ctx context.Context, t *models.Transfer) (*models.Transfer, error) {
	ids := []uint{t.FromWalletID}
	if t.ToWalletID != nil {
		ids = append(ids, *t.ToWalletID)
	}
	release, err := s.locks.Acquire(ctx, ids...)
	if err != nil {
		return s.failTransfer(t, fmt.Sprintf("lock acquisition failed: %v", err), err)
	}
	defer release()

	// Re-read under the locks: a cancellation may have landed while we
	// waited, and a blind write here would resurrect it.
	t, err = s.Get(ctx, t.PublicID)
	if err != nil {
		return nil, err
	}
	if err := t.MarkProcessing(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(t); err != nil {
		return s.failTransfer(t, fmt.Sprintf("failed to persist processing state: %v", err), err)
	}
	s.notifier.TransferInitiated(t)

	if t.External() {
		return s.executeExternal(ctx, t)
	}
	return s.executeInternal(ctx, t)
}

// executeInternal moves amount+fee out of the source wallet, the
// converted amount into the target wallet, and records the fee. Any
// failure after the source debit has been applied rolls back every
// applied entry before the locks release.
func (s *service) executeInternal(ctx context.Context, t *models.Transfer) (*models.Transfer, error) {
	debit, err := s.ledger.Append(ctx, t.FromWalletID, models.KindTransferOut, t.TotalDebit(),
		t.SourceCurrency, t.Description, t.PublicID, "")
	if err != nil {
		return s.failTransfer(t, fmt.Sprintf("debit failed: %v", err), err)
	}
	if err := s.ledger.Complete(ctx, debit.TransactionID); err != nil {
		return s.rollback(ctx, t, "debit completion failed", err, debit)
	}

	credit, err := s.ledger.Append(ctx, *t.ToWalletID, models.KindTransferIn, t.ConvertedAmount,
		t.TargetCurrency, t.Description, t.PublicID, "")
	if err != nil {
		return s.rollback(ctx, t, "credit failed", err, debit)
	}
	if err := s.ledger.Complete(ctx, credit.TransactionID); err != nil {
		return s.rollback(ctx, t, "credit completion failed", err, debit, credit)
	}

	s.recordFee(ctx, t)

	if err := s.completeTransfer(t, debit.TransactionID, credit.TransactionID); err != nil {
		return s.rollback(ctx, t, "completion failed", err, debit, credit)
	}
	s.notifier.TransferCompleted(t)
	return t, nil
}

// executeExternal debits amount+fee, settles over the rail, and records
// the fee. Any failure after the debit compensates it.
func (s *service) executeExternal(ctx context.Context, t *models.Transfer) (*models.Transfer, error) {
	if s.rail == nil {
		return s.failTransfer(t, "no settlement rail configured", errors.New("no settlement rail configured"))
	}

	debit, err := s.ledger.Append(ctx, t.FromWalletID, models.KindWithdrawal, t.TotalDebit(),
		t.SourceCurrency, t.Description, t.PublicID, "")
	if err != nil {
		return s.failTransfer(t, fmt.Sprintf("debit failed: %v", err), err)
	}
	if err := s.ledger.Complete(ctx, debit.TransactionID); err != nil {
		return s.rollback(ctx, t, "debit completion failed", err, debit)
	}

	ref, err := s.rail.Settle(ctx, t)
	if err != nil {
		return s.rollback(ctx, t, "settlement failed", err, debit)
	}
	t.SettlementRef = ref

	s.recordFee(ctx, t)

	if err := s.completeTransfer(t, debit.TransactionID, ""); err != nil {
		return s.rollback(ctx, t, "completion failed", err, debit)
	}
	s.notifier.TransferCompleted(t)
	return t, nil
}

// rollback compensates the applied ledger entries in reverse order and
// records the failure. Every debit taken from the source either reaches
// the target or is returned before the wallet locks release.
func (s *service) rollback(ctx context.Context, t *models.Transfer, reason string, cause error, applied ...*models.Transaction) (*models.Transfer, error) {
	for i := len(applied) - 1; i >= 0; i-- {
		if _, err := s.ledger.Compensate(ctx, applied[i].TransactionID, reason); err != nil {
			log.Printf("transfer %s: compensation of %s failed: %v", t.PublicID, applied[i].TransactionID, err)
		}
	}
	return s.failTransfer(t, fmt.Sprintf("%s: %v", reason, cause), cause)
}

// completeTransfer finishes the transfer and persists it. The in-memory
// status is restored on a persistence failure so the caller can still
// record the transfer as failed.
func (s *service) completeTransfer(t *models.Transfer, sourceTxID, targetTxID string) error {
	prev := t.Status
	if err := t.MarkCompleted(sourceTxID, targetTxID); err != nil {
		return err
	}
	if err := s.repo.Update(t); err != nil {
		t.Status = prev
		t.CompletedAt = nil
		return fmt.Errorf("failed to update transfer: %w", err)
	}
	return nil
}

// recordFee writes the informational fee entry. The fee was already
// collected by the covering debit, so a failure here loses bookkeeping
// detail, not money.
func (s *service) recordFee(ctx context.Context, t *models.Transfer) {
	if !t.Fee.IsPositive() {
		return
	}
	entry, err := s.ledger.Append(ctx, t.FromWalletID, models.KindFee, t.Fee, t.SourceCurrency,
		"Transfer fee", t.PublicID, "")
	if err != nil {
		log.Printf("transfer %s: fee record failed: %v", t.PublicID, err)
		return
	}
	if err := s.ledger.Complete(ctx, entry.TransactionID); err != nil {
		log.Printf("transfer %s: fee record failed: %v", t.PublicID, err)
	}
}

// failTransfer records a failure on the persisted transfer and returns
// the causing error.
func (s *service) failTransfer(t *models.Transfer, reason string, cause error) (*models.Transfer, error) {
	if err := t.MarkFailed(reason); err != nil {
		log.Printf("transfer %s: cannot mark failed: %v", t.PublicID, err)
	} else if err := s.repo.Update(t); err != nil {
		log.Printf("transfer %s: failed to persist failure: %v", t.PublicID, err)
	}
	s.notifier.TransferFailed(t, reason)
	return nil, cause
}
