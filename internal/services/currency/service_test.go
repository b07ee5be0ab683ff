package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Convert(t *testing.T) {
	s := NewService()

	t.Run("seeded rate", func(t *testing.T) {
		got, err := s.Convert(decimal.NewFromInt(100), "USD", "EUR")
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(90)), "got %s", got)
	})

	t.Run("rounds to two decimal places", func(t *testing.T) {
		got, err := s.Convert(decimal.RequireFromString("33.33"), "USD", "EUR")
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.RequireFromString("30.00")), "got %s", got)
	})

	t.Run("same currency is identity", func(t *testing.T) {
		amount := decimal.RequireFromString("123.456")
		got, err := s.Convert(amount, "USD", "USD")
		require.NoError(t, err)
		assert.True(t, got.Equal(amount))
	})

	t.Run("inverse pair registered automatically", func(t *testing.T) {
		got, err := s.Convert(decimal.NewFromInt(90), "EUR", "USD")
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(100)), "got %s", got)
	})

	t.Run("unknown pair rejected", func(t *testing.T) {
		_, err := s.Convert(decimal.NewFromInt(10), "USD", "XXX")
		assert.ErrorIs(t, err, ErrUnsupportedConversion)
	})
}

func TestService_SetRate(t *testing.T) {
	s := NewService()

	require.NoError(t, s.SetRate("USD", "CHF", decimal.RequireFromString("0.88")))
	assert.True(t, s.IsSupported("USD", "CHF"))
	assert.True(t, s.IsSupported("CHF", "USD"))

	got, err := s.Convert(decimal.NewFromInt(200), "USD", "CHF")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(176)), "got %s", got)

	assert.Error(t, s.SetRate("USD", "CHF", decimal.Zero), "non-positive rates rejected")
	assert.Error(t, s.SetRate("USD", "CHF", decimal.NewFromInt(-1)))
}

func TestService_IsSupported(t *testing.T) {
	s := NewService()
	assert.True(t, s.IsSupported("USD", "USD"))
	assert.True(t, s.IsSupported("USD", "GBP"))
	assert.False(t, s.IsSupported("GBP", "JPY"))
}
