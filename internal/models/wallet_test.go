package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func activeWallet(balance int64, currency string) *Wallet {
	return &Wallet{
		ID:              1,
		UserID:          1,
		Balances:        BalanceMap{currency: decimal.NewFromInt(balance)},
		DefaultCurrency: currency,
		Status:          WalletStatusActive,
	}
}

func TestWallet_Credit(t *testing.T) {
	tests := []struct {
		name    string
		wallet  *Wallet
		amount  decimal.Decimal
		wantErr error
		want    decimal.Decimal
	}{
		{
			name:   "successful credit",
			wallet: activeWallet(100, "USD"),
			amount: decimal.NewFromInt(50),
			want:   decimal.NewFromInt(150),
		},
		{
			name:   "credit into empty balance map",
			wallet: &Wallet{Status: WalletStatusActive},
			amount: decimal.NewFromInt(25),
			want:   decimal.NewFromInt(25),
		},
		{
			name:    "zero amount rejected",
			wallet:  activeWallet(100, "USD"),
			amount:  decimal.Zero,
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount rejected",
			wallet:  activeWallet(100, "USD"),
			amount:  decimal.NewFromInt(-10),
			wantErr: ErrInvalidAmount,
		},
		{
			name: "inactive wallet rejected",
			wallet: &Wallet{
				Balances: BalanceMap{"USD": decimal.NewFromInt(100)},
				Status:   WalletStatusInactive,
			},
			amount:  decimal.NewFromInt(10),
			wantErr: ErrWalletInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.wallet.AvailableBalance("USD")
			err := tt.wallet.Credit(tt.amount, "USD")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, tt.wallet.AvailableBalance("USD").Equal(before), "failed credit must not change the balance")
				return
			}
			assert.NoError(t, err)
			assert.True(t, tt.wallet.AvailableBalance("USD").Equal(tt.want))
		})
	}
}

func TestWallet_Debit(t *testing.T) {
	tests := []struct {
		name    string
		wallet  *Wallet
		amount  decimal.Decimal
		wantErr error
		want    decimal.Decimal
	}{
		{
			name:   "successful debit",
			wallet: activeWallet(100, "USD"),
			amount: decimal.NewFromInt(40),
			want:   decimal.NewFromInt(60),
		},
		{
			name:   "debit to exactly zero",
			wallet: activeWallet(100, "USD"),
			amount: decimal.NewFromInt(100),
			want:   decimal.Zero,
		},
		{
			name:    "insufficient funds",
			wallet:  activeWallet(30, "USD"),
			amount:  decimal.NewFromInt(31),
			wantErr: ErrInsufficientFunds,
		},
		{
			name:    "unknown currency has zero balance",
			wallet:  activeWallet(100, "USD"),
			amount:  decimal.NewFromInt(1),
			wantErr: ErrInsufficientFunds,
		},
		{
			name:    "negative amount rejected",
			wallet:  activeWallet(100, "USD"),
			amount:  decimal.NewFromInt(-5),
			wantErr: ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			currency := "USD"
			if tt.name == "unknown currency has zero balance" {
				currency = "EUR"
			}
			before := tt.wallet.AvailableBalance(currency)
			err := tt.wallet.Debit(tt.amount, currency)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, tt.wallet.AvailableBalance(currency).Equal(before), "failed debit must not change the balance")
				return
			}
			assert.NoError(t, err)
			assert.True(t, tt.wallet.AvailableBalance(currency).Equal(tt.want))
		})
	}
}

func TestWallet_MultiCurrencyIsolation(t *testing.T) {
	w := activeWallet(100, "USD")
	assert.NoError(t, w.Credit(decimal.NewFromInt(80), "EUR"))
	assert.NoError(t, w.Debit(decimal.NewFromInt(30), "USD"))

	assert.True(t, w.AvailableBalance("USD").Equal(decimal.NewFromInt(70)))
	assert.True(t, w.AvailableBalance("EUR").Equal(decimal.NewFromInt(80)))
}

func TestWallet_StatusManagement(t *testing.T) {
	w := activeWallet(100, "USD")
	assert.True(t, w.Active())

	w.Deactivate("compliance hold")
	assert.False(t, w.Active())
	assert.Equal(t, "compliance hold", w.StatusReason)
	assert.ErrorIs(t, w.Debit(decimal.NewFromInt(1), "USD"), ErrWalletInactive)

	w.Activate()
	assert.True(t, w.Active())
	assert.Empty(t, w.StatusReason)
	assert.NoError(t, w.Debit(decimal.NewFromInt(1), "USD"))
}

func TestWallet_HasSufficientBalance(t *testing.T) {
	w := activeWallet(100, "USD")
	assert.True(t, w.HasSufficientBalance(decimal.NewFromInt(100), "USD"))
	assert.False(t, w.HasSufficientBalance(decimal.RequireFromString("100.01"), "USD"))
	assert.False(t, w.HasSufficientBalance(decimal.NewFromInt(1), "EUR"))
}
