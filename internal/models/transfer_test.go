package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingTransfer(t *testing.T) *Transfer {
	t.Helper()
	to := uint(2)
	tr, err := NewTransfer(TransferTypeInternal, 1, &to, "",
		decimal.NewFromInt(100), "USD", "USD",
		decimal.NewFromInt(100), decimal.NewFromInt(2), "lunch", "")
	require.NoError(t, err)
	return tr
}

func TestNewTransfer(t *testing.T) {
	t.Run("generates public id and idempotency key", func(t *testing.T) {
		tr := pendingTransfer(t)
		assert.NotEmpty(t, tr.PublicID)
		assert.NotEmpty(t, tr.IdempotencyKey)
		assert.Equal(t, TransferPending, tr.Status)
	})

	t.Run("keeps provided idempotency key", func(t *testing.T) {
		to := uint(2)
		tr, err := NewTransfer(TransferTypeInternal, 1, &to, "",
			decimal.NewFromInt(10), "USD", "USD", decimal.NewFromInt(10), decimal.Zero, "", "my-key")
		require.NoError(t, err)
		assert.Equal(t, "my-key", tr.IdempotencyKey)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		to := uint(2)
		_, err := NewTransfer(TransferTypeInternal, 1, &to, "",
			decimal.Zero, "USD", "USD", decimal.Zero, decimal.Zero, "", "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("rejects missing recipient", func(t *testing.T) {
		_, err := NewTransfer(TransferTypeInternal, 1, nil, "",
			decimal.NewFromInt(10), "USD", "USD", decimal.NewFromInt(10), decimal.Zero, "", "")
		assert.ErrorIs(t, err, ErrMissingRecipient)
	})
}

func TestTransfer_TotalDebit(t *testing.T) {
	tr := pendingTransfer(t)
	assert.True(t, tr.TotalDebit().Equal(decimal.NewFromInt(102)))
}

func TestTransfer_StateMachine(t *testing.T) {
	t.Run("happy path pending to completed", func(t *testing.T) {
		tr := pendingTransfer(t)
		require.NoError(t, tr.MarkProcessing())
		require.NoError(t, tr.MarkCompleted("tx-debit", "tx-credit"))

		assert.Equal(t, TransferCompleted, tr.Status)
		assert.Equal(t, "tx-debit", tr.SourceTransactionID)
		assert.Equal(t, "tx-credit", tr.TargetTransactionID)
		assert.NotNil(t, tr.CompletedAt)
		assert.True(t, tr.Terminal())
	})

	t.Run("review path resumes into processing", func(t *testing.T) {
		tr := pendingTransfer(t)
		require.NoError(t, tr.MarkNeedsReview("velocity spike"))
		assert.Equal(t, "velocity spike", tr.FailureReason)
		assert.False(t, tr.Terminal())

		require.NoError(t, tr.MarkProcessing())
		require.NoError(t, tr.MarkCompleted("d", "c"))
		assert.Empty(t, tr.FailureReason)
	})

	t.Run("cannot complete without processing", func(t *testing.T) {
		tr := pendingTransfer(t)
		err := tr.MarkCompleted("d", "c")
		var transitionErr *InvalidTransitionError
		assert.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, TransferPending, transitionErr.From)
	})

	t.Run("terminal states are frozen", func(t *testing.T) {
		tr := pendingTransfer(t)
		require.NoError(t, tr.MarkFailed("insufficient funds"))

		assert.Error(t, tr.MarkProcessing())
		assert.Error(t, tr.MarkCompleted("d", "c"))
		assert.Error(t, tr.MarkCancelled())
		assert.Error(t, tr.MarkNeedsReview("x"))
	})

	t.Run("cancel only from pending", func(t *testing.T) {
		tr := pendingTransfer(t)
		require.NoError(t, tr.MarkCancelled())
		assert.Equal(t, TransferCancelled, tr.Status)

		tr2 := pendingTransfer(t)
		require.NoError(t, tr2.MarkProcessing())
		assert.Error(t, tr2.MarkCancelled())
	})
}

func TestTransaction_StateMachine(t *testing.T) {
	tx := &Transaction{Status: TransactionPending}
	require.NoError(t, tx.MarkCompleted())
	assert.Error(t, tx.MarkCompleted(), "completed is not re-enterable")

	require.NoError(t, tx.MarkReversed())
	assert.Equal(t, TransactionReversed, tx.Status)

	failed := &Transaction{Status: TransactionPending}
	require.NoError(t, failed.MarkFailed("wallet inactive"))
	assert.Equal(t, "wallet inactive", failed.FailureReason)
	assert.Error(t, failed.MarkReversed(), "only completed entries can be reversed")
}

func TestKindIsCredit(t *testing.T) {
	assert.True(t, KindIsCredit(KindCredit))
	assert.True(t, KindIsCredit(KindTransferIn))
	assert.True(t, KindIsCredit(KindReversal))
	assert.True(t, KindIsCredit(KindRefund))
	assert.False(t, KindIsCredit(KindDebit))
	assert.False(t, KindIsCredit(KindTransferOut))
	assert.False(t, KindIsCredit(KindWithdrawal))
	assert.False(t, KindIsCredit(KindFee))
}
