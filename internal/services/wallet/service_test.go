package wallet

import (
	"context"
	"testing"

	"vaultpay/internal/models"
	"vaultpay/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	return NewService(repositories.NewMemoryWalletRepository(), nil, nil, Config{}, nil)
}

func TestService_CreateWallet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	w, err := svc.CreateWallet(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, "USD", w.DefaultCurrency, "empty currency falls back to the default")
	assert.Equal(t, models.WalletStatusActive, w.Status)
	assert.True(t, w.DailyTransferLimit.Equal(decimal.NewFromInt(10000)))
	assert.True(t, w.DailyWithdrawalLimit.Equal(decimal.NewFromInt(5000)))
	assert.True(t, w.AvailableBalance("USD").IsZero())

	t.Run("one wallet per user", func(t *testing.T) {
		_, err := svc.CreateWallet(ctx, 1, "EUR")
		assert.ErrorIs(t, err, ErrDuplicateWallet)
	})

	t.Run("lookup by user", func(t *testing.T) {
		got, err := svc.GetWalletByUser(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, w.ID, got.ID)
	})
}

func TestService_CreditDebit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	w, err := svc.CreateWallet(ctx, 1, "USD")
	require.NoError(t, err)

	updated, err := svc.Credit(ctx, w.ID, decimal.NewFromInt(500), "USD")
	require.NoError(t, err)
	assert.True(t, updated.AvailableBalance("USD").Equal(decimal.NewFromInt(500)), "credit returns the updated snapshot")

	updated, err = svc.Debit(ctx, w.ID, decimal.NewFromInt(120), "USD")
	require.NoError(t, err)
	assert.True(t, updated.AvailableBalance("USD").Equal(decimal.NewFromInt(380)))

	balance, err := svc.Balance(ctx, w.ID, "USD")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(380)), "mutation is persisted")

	t.Run("insufficient funds", func(t *testing.T) {
		_, err := svc.Debit(ctx, w.ID, decimal.NewFromInt(1000), "USD")
		assert.ErrorIs(t, err, models.ErrInsufficientFunds)

		balance, err := svc.Balance(ctx, w.ID, "USD")
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(380)), "failed debit leaves the balance unchanged")
	})

	t.Run("unknown wallet", func(t *testing.T) {
		_, err := svc.Credit(ctx, 999, decimal.NewFromInt(1), "USD")
		assert.ErrorIs(t, err, ErrWalletNotFound)
	})
}

func TestService_StatusManagement(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	w, err := svc.CreateWallet(ctx, 1, "USD")
	require.NoError(t, err)
	_, err = svc.Credit(ctx, w.ID, decimal.NewFromInt(100), "USD")
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, w.ID, "chargeback review"))
	got, err := svc.GetWallet(ctx, w.ID)
	require.NoError(t, err)
	assert.False(t, got.Active())
	assert.Equal(t, "chargeback review", got.StatusReason)

	_, err = svc.Debit(ctx, w.ID, decimal.NewFromInt(10), "USD")
	assert.ErrorIs(t, err, models.ErrWalletInactive)

	require.NoError(t, svc.Activate(ctx, w.ID))
	_, err = svc.Debit(ctx, w.ID, decimal.NewFromInt(10), "USD")
	assert.NoError(t, err)
}

func TestService_Limits(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	w, err := svc.CreateWallet(ctx, 1, "USD")
	require.NoError(t, err)

	require.NoError(t, svc.SetDailyTransferLimit(ctx, w.ID, decimal.NewFromInt(250)))
	require.NoError(t, svc.SetDailyWithdrawalLimit(ctx, w.ID, decimal.NewFromInt(50)))

	got, err := svc.GetWallet(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, got.DailyTransferLimit.Equal(decimal.NewFromInt(250)))
	assert.True(t, got.DailyWithdrawalLimit.Equal(decimal.NewFromInt(50)))
}

func TestService_RequiresRepository(t *testing.T) {
	assert.Panics(t, func() {
		NewService(nil, nil, nil, Config{}, nil)
	})
}
