package ledger

import (
	"context"
	"testing"
	"time"

	"vaultpay/internal/models"
	"vaultpay/internal/repositories"
	"vaultpay/internal/services/wallet"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) (Service, wallet.Service, *models.Wallet) {
	t.Helper()
	walletRepo := repositories.NewMemoryWalletRepository()
	walletSvc := wallet.NewService(walletRepo, nil, nil, wallet.Config{}, nil)

	w, err := walletSvc.CreateWallet(context.Background(), 1, "USD")
	require.NoError(t, err)
	_, err = walletSvc.Credit(context.Background(), w.ID, decimal.NewFromInt(1000), "USD")
	require.NoError(t, err)

	return NewService(repositories.NewMemoryTransactionRepository(), walletSvc), walletSvc, w
}

func TestService_AppendMutatesBalance(t *testing.T) {
	svc, walletSvc, w := newTestLedger(t)
	ctx := context.Background()

	entry, err := svc.Append(ctx, w.ID, models.KindDebit, decimal.NewFromInt(300), "USD", "bill", "ref-1", "")
	require.NoError(t, err)

	assert.Equal(t, models.TransactionPending, entry.Status)
	assert.NotEmpty(t, entry.TransactionID)
	assert.NotEmpty(t, entry.IdempotencyKey)
	assert.True(t, entry.BalanceAfter.Equal(decimal.NewFromInt(700)), "balance-after records the post-mutation balance")

	balance, err := walletSvc.Balance(ctx, w.ID, "USD")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(700)))
}

func TestService_AppendFeeDoesNotMutate(t *testing.T) {
	svc, walletSvc, w := newTestLedger(t)
	ctx := context.Background()

	entry, err := svc.Append(ctx, w.ID, models.KindFee, decimal.NewFromInt(25), "USD", "fee", "ref", "")
	require.NoError(t, err)
	assert.True(t, entry.BalanceAfter.Equal(decimal.NewFromInt(1000)))

	balance, err := walletSvc.Balance(ctx, w.ID, "USD")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(1000)), "fee entries are informational")
}

func TestService_AppendErrors(t *testing.T) {
	svc, walletSvc, w := newTestLedger(t)
	ctx := context.Background()

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := svc.Append(ctx, w.ID, models.KindCredit, decimal.Zero, "USD", "", "", "")
		assert.ErrorIs(t, err, models.ErrInvalidAmount)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := svc.Append(ctx, w.ID, "teleport", decimal.NewFromInt(1), "USD", "", "", "")
		assert.ErrorIs(t, err, ErrUnknownKind)
	})

	t.Run("insufficient funds leaves no entry", func(t *testing.T) {
		_, err := svc.Append(ctx, w.ID, models.KindDebit, decimal.NewFromInt(5000), "USD", "", "", "")
		assert.ErrorIs(t, err, models.ErrInsufficientFunds)

		balance, err := walletSvc.Balance(ctx, w.ID, "USD")
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(1000)))

		entries, err := svc.ListByWallet(ctx, w.ID, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestService_AppendIdempotency(t *testing.T) {
	svc, walletSvc, w := newTestLedger(t)
	ctx := context.Background()

	first, err := svc.Append(ctx, w.ID, models.KindCredit, decimal.NewFromInt(100), "USD", "topup", "", "dep-key-1")
	require.NoError(t, err)

	second, err := svc.Append(ctx, w.ID, models.KindCredit, decimal.NewFromInt(100), "USD", "topup", "", "dep-key-1")
	require.NoError(t, err)
	assert.Equal(t, first.TransactionID, second.TransactionID)

	balance, err := walletSvc.Balance(ctx, w.ID, "USD")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(1100)), "replayed append must not double-credit")
}

func TestService_CompleteAndFail(t *testing.T) {
	svc, _, w := newTestLedger(t)
	ctx := context.Background()

	entry, err := svc.Append(ctx, w.ID, models.KindCredit, decimal.NewFromInt(10), "USD", "", "", "")
	require.NoError(t, err)

	require.NoError(t, svc.Complete(ctx, entry.TransactionID))
	got, err := svc.Get(ctx, entry.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionCompleted, got.Status)

	assert.Error(t, svc.Complete(ctx, entry.TransactionID), "completed entries cannot transition again")
	assert.Error(t, svc.Fail(ctx, entry.TransactionID, "late failure"))
}

func TestService_Reverse(t *testing.T) {
	svc, walletSvc, w := newTestLedger(t)
	ctx := context.Background()

	entry, err := svc.Append(ctx, w.ID, models.KindTransferOut, decimal.NewFromInt(200), "USD", "payment", "t-1", "")
	require.NoError(t, err)
	require.NoError(t, svc.Complete(ctx, entry.TransactionID))

	compensating, err := svc.Reverse(ctx, entry.TransactionID, "counterparty failed")
	require.NoError(t, err)

	assert.Equal(t, models.KindReversal, compensating.Kind)
	assert.Equal(t, models.TransactionCompleted, compensating.Status)
	assert.Equal(t, entry.TransactionID, compensating.Reference)

	original, err := svc.Get(ctx, entry.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionReversed, original.Status)

	balance, err := walletSvc.Balance(ctx, w.ID, "USD")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(1000)), "reversal restores the original balance")
}

func TestService_ReverseRules(t *testing.T) {
	svc, _, w := newTestLedger(t)
	ctx := context.Background()

	t.Run("credit entries reverse as refunds", func(t *testing.T) {
		entry, err := svc.Append(ctx, w.ID, models.KindTransferIn, decimal.NewFromInt(50), "USD", "", "", "")
		require.NoError(t, err)
		require.NoError(t, svc.Complete(ctx, entry.TransactionID))

		compensating, err := svc.Reverse(ctx, entry.TransactionID, "sender dispute")
		require.NoError(t, err)
		assert.Equal(t, models.KindRefund, compensating.Kind)
	})

	t.Run("pending entries cannot be reversed", func(t *testing.T) {
		entry, err := svc.Append(ctx, w.ID, models.KindDebit, decimal.NewFromInt(10), "USD", "", "", "")
		require.NoError(t, err)

		_, err = svc.Reverse(ctx, entry.TransactionID, "too early")
		var transitionErr *models.InvalidTransitionError
		assert.ErrorAs(t, err, &transitionErr)
	})

	t.Run("fee entries are not reversible", func(t *testing.T) {
		entry, err := svc.Append(ctx, w.ID, models.KindFee, decimal.NewFromInt(5), "USD", "", "", "")
		require.NoError(t, err)
		require.NoError(t, svc.Complete(ctx, entry.TransactionID))

		_, err = svc.Reverse(ctx, entry.TransactionID, "refund fee")
		assert.ErrorIs(t, err, ErrNotReversible)
	})

	t.Run("unknown transaction", func(t *testing.T) {
		_, err := svc.Reverse(ctx, "no-such-id", "x")
		assert.ErrorIs(t, err, ErrTransactionNotFound)
	})
}

func TestService_Compensate(t *testing.T) {
	svc, walletSvc, w := newTestLedger(t)
	ctx := context.Background()

	t.Run("pending entries are undone", func(t *testing.T) {
		entry, err := svc.Append(ctx, w.ID, models.KindTransferOut, decimal.NewFromInt(200), "USD", "payment", "t-1", "")
		require.NoError(t, err)

		// The mutation landed at Append time even though the entry never
		// completed, so a rollback still has to put the money back.
		compensating, err := svc.Compensate(ctx, entry.TransactionID, "execution aborted")
		require.NoError(t, err)
		assert.Equal(t, models.KindReversal, compensating.Kind)
		assert.Equal(t, models.TransactionCompleted, compensating.Status)
		assert.Equal(t, entry.TransactionID, compensating.Reference)

		original, err := svc.Get(ctx, entry.TransactionID)
		require.NoError(t, err)
		assert.Equal(t, models.TransactionReversed, original.Status)

		balance, err := walletSvc.Balance(ctx, w.ID, "USD")
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("completed entries are undone", func(t *testing.T) {
		entry, err := svc.Append(ctx, w.ID, models.KindTransferIn, decimal.NewFromInt(50), "USD", "", "", "")
		require.NoError(t, err)
		require.NoError(t, svc.Complete(ctx, entry.TransactionID))

		compensating, err := svc.Compensate(ctx, entry.TransactionID, "counterparty failed")
		require.NoError(t, err)
		assert.Equal(t, models.KindRefund, compensating.Kind)

		balance, err := walletSvc.Balance(ctx, w.ID, "USD")
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("fee entries are refused", func(t *testing.T) {
		entry, err := svc.Append(ctx, w.ID, models.KindFee, decimal.NewFromInt(5), "USD", "", "", "")
		require.NoError(t, err)

		_, err = svc.Compensate(ctx, entry.TransactionID, "refund fee")
		assert.ErrorIs(t, err, ErrNotReversible)
	})

	t.Run("failed entries are refused", func(t *testing.T) {
		entry, err := svc.Append(ctx, w.ID, models.KindCredit, decimal.NewFromInt(10), "USD", "", "", "")
		require.NoError(t, err)
		require.NoError(t, svc.Fail(ctx, entry.TransactionID, "declined"))

		_, err = svc.Compensate(ctx, entry.TransactionID, "x")
		var transitionErr *models.InvalidTransitionError
		assert.ErrorAs(t, err, &transitionErr)
	})
}

func TestService_Statement(t *testing.T) {
	svc, _, w := newTestLedger(t)
	ctx := context.Background()

	credit, err := svc.Append(ctx, w.ID, models.KindCredit, decimal.NewFromInt(200), "USD", "", "", "")
	require.NoError(t, err)
	require.NoError(t, svc.Complete(ctx, credit.TransactionID))

	debit, err := svc.Append(ctx, w.ID, models.KindTransferOut, decimal.NewFromInt(102), "USD", "", "", "")
	require.NoError(t, err)
	require.NoError(t, svc.Complete(ctx, debit.TransactionID))

	fee, err := svc.Append(ctx, w.ID, models.KindFee, decimal.NewFromInt(2), "USD", "", "", "")
	require.NoError(t, err)
	require.NoError(t, svc.Complete(ctx, fee.TransactionID))

	// A pending entry must not count toward the totals.
	_, err = svc.Append(ctx, w.ID, models.KindCredit, decimal.NewFromInt(999), "USD", "", "", "")
	require.NoError(t, err)

	stmt, err := svc.Statement(ctx, w.ID, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)

	assert.Len(t, stmt.Entries, 4)
	assert.True(t, stmt.TotalCredits.Equal(decimal.NewFromInt(200)), "got %s", stmt.TotalCredits)
	assert.True(t, stmt.TotalDebits.Equal(decimal.NewFromInt(102)), "got %s", stmt.TotalDebits)
	assert.True(t, stmt.TotalFees.Equal(decimal.NewFromInt(2)), "got %s", stmt.TotalFees)
}
