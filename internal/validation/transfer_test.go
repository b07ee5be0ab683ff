package validation

import (
	"context"
	"testing"
	"time"

	"vaultpay/internal/models"
	"vaultpay/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWallet(id uint, balance int64) *models.Wallet {
	return &models.Wallet{
		ID:                   id,
		UserID:               id,
		Balances:             models.BalanceMap{"USD": decimal.NewFromInt(balance)},
		DefaultCurrency:      "USD",
		Status:               models.WalletStatusActive,
		DailyTransferLimit:   decimal.NewFromInt(10000),
		DailyWithdrawalLimit: decimal.NewFromInt(5000),
	}
}

func internalDraft(t *testing.T, from, to uint, amount, fee int64) *models.Transfer {
	t.Helper()
	tr, err := models.NewTransfer(models.TransferTypeInternal, from, &to, "",
		decimal.NewFromInt(amount), "USD", "USD",
		decimal.NewFromInt(amount), decimal.NewFromInt(fee), "", "")
	require.NoError(t, err)
	return tr
}

func TestTransferValidator_Validate(t *testing.T) {
	v := NewTransferValidator(repositories.NewMemoryTransferRepository())
	ctx := context.Background()

	t.Run("valid transfer passes", func(t *testing.T) {
		err := v.Validate(ctx, internalDraft(t, 1, 2, 100, 2), testWallet(1, 500), testWallet(2, 0))
		assert.NoError(t, err)
	})

	t.Run("self transfer rejected", func(t *testing.T) {
		w := testWallet(1, 500)
		err := v.Validate(ctx, internalDraft(t, 1, 1, 100, 2), w, w)
		var vErr *Error
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "self_transfer", vErr.Rule)
	})

	t.Run("inactive source rejected", func(t *testing.T) {
		from := testWallet(1, 500)
		from.Deactivate("fraud hold")
		err := v.Validate(ctx, internalDraft(t, 1, 2, 100, 2), from, testWallet(2, 0))
		var vErr *Error
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "source_status", vErr.Rule)
	})

	t.Run("inactive target rejected", func(t *testing.T) {
		to := testWallet(2, 0)
		to.Deactivate("closed")
		err := v.Validate(ctx, internalDraft(t, 1, 2, 100, 2), testWallet(1, 500), to)
		var vErr *Error
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "target_status", vErr.Rule)
	})

	t.Run("balance must cover amount plus fee", func(t *testing.T) {
		// 100 + 2 fee against a balance of 101.
		err := v.Validate(ctx, internalDraft(t, 1, 2, 100, 2), testWallet(1, 101), testWallet(2, 0))
		var vErr *Error
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "balance", vErr.Rule)

		err = v.Validate(ctx, internalDraft(t, 1, 2, 100, 2), testWallet(1, 102), testWallet(2, 0))
		assert.NoError(t, err, "exactly amount plus fee is sufficient")
	})
}

func TestTransferValidator_DailyLimits(t *testing.T) {
	repo := repositories.NewMemoryTransferRepository()
	v := NewTransferValidator(repo)
	ctx := context.Background()

	// 9500 already moved today.
	spent := internalDraft(t, 1, 2, 9500, 0)
	require.NoError(t, spent.MarkProcessing())
	require.NoError(t, spent.MarkCompleted("d", "c"))
	require.NoError(t, repo.Create(spent))

	t.Run("within remaining headroom", func(t *testing.T) {
		err := v.Validate(ctx, internalDraft(t, 1, 2, 500, 0), testWallet(1, 50000), testWallet(2, 0))
		assert.NoError(t, err)
	})

	t.Run("over the daily transfer limit", func(t *testing.T) {
		err := v.Validate(ctx, internalDraft(t, 1, 2, 501, 0), testWallet(1, 50000), testWallet(2, 0))
		var vErr *Error
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "daily_transfer_limit", vErr.Rule)
	})

	t.Run("withdrawals use the withdrawal limit", func(t *testing.T) {
		ext, err := models.NewTransfer(models.TransferTypeExternal, 3, nil, "acct_123",
			decimal.NewFromInt(5001), "USD", "USD",
			decimal.NewFromInt(5001), decimal.Zero, "", "")
		require.NoError(t, err)

		vErr := new(Error)
		err = v.Validate(ctx, ext, testWallet(3, 50000), nil)
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "daily_withdrawal_limit", vErr.Rule)
	})

	t.Run("zero limit disables the check", func(t *testing.T) {
		from := testWallet(4, 50000)
		from.DailyTransferLimit = decimal.Zero
		err := v.Validate(ctx, internalDraft(t, 4, 2, 30000, 0), from, testWallet(2, 0))
		assert.NoError(t, err)
	})
}

func TestTransferValidator_DailyLimitResetsAtLocalMidnight(t *testing.T) {
	repo := repositories.NewMemoryTransferRepository()
	v := NewTransferValidator(repo)
	ctx := context.Background()

	// Nearly the whole limit spent, but just before today's local
	// midnight. The window starts at midnight on the wall clock, so this
	// spend belongs to yesterday.
	spent := internalDraft(t, 1, 2, 9800, 0)
	require.NoError(t, spent.MarkProcessing())
	require.NoError(t, spent.MarkCompleted("d", "c"))
	require.NoError(t, repo.Create(spent))

	now := time.Now()
	year, month, day := now.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	spent.CreatedAt = midnight.Add(-10 * time.Minute)
	require.NoError(t, repo.Update(spent))

	err := v.Validate(ctx, internalDraft(t, 1, 2, 9000, 0), testWallet(1, 50000), testWallet(2, 0))
	assert.NoError(t, err, "yesterday's volume must not count against today's limit")
}
