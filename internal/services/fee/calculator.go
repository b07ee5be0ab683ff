package fee

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Tier maps an amount floor (inclusive) to the percentage rate charged for
// amounts at or above it, up to the next tier's floor.
type Tier struct {
	Floor decimal.Decimal
	Rate  decimal.Decimal
}

// Multipliers applied on top of the tiered base rate.
var (
	externalMultiplier      = decimal.RequireFromString("1.5")
	crossCurrencyMultiplier = decimal.RequireFromString("1.25")
)

// TieredCalculator computes transfer fees from a banded rate table. Larger
// transfers pay a lower percentage; external settlement and currency
// conversion each scale the fee up.
type TieredCalculator struct {
	tiers []Tier
}

// NewTieredCalculator builds a calculator with the default fee bands.
func NewTieredCalculator() *TieredCalculator {
	return NewTieredCalculatorWithTiers([]Tier{
		{Floor: decimal.Zero, Rate: decimal.RequireFromString("0.025")},
		{Floor: decimal.NewFromInt(100), Rate: decimal.RequireFromString("0.02")},
		{Floor: decimal.NewFromInt(500), Rate: decimal.RequireFromString("0.015")},
		{Floor: decimal.NewFromInt(1000), Rate: decimal.RequireFromString("0.01")},
		{Floor: decimal.NewFromInt(5000), Rate: decimal.RequireFromString("0.005")},
	})
}

// NewTieredCalculatorWithTiers builds a calculator with a custom rate
// table. Tiers are sorted by floor; the first tier should start at zero.
func NewTieredCalculatorWithTiers(tiers []Tier) *TieredCalculator {
	if len(tiers) == 0 {
		panic("at least one fee tier is required")
	}
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Floor.LessThan(sorted[j].Floor)
	})
	return &TieredCalculator{tiers: sorted}
}

// CalculateFee returns the fee for a transfer of the given amount, rounded
// to two decimal places. Amounts at a tier boundary pay the higher tier's
// lower rate.
func (c *TieredCalculator) CalculateFee(amount decimal.Decimal, external, crossCurrency bool) decimal.Decimal {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	rate := c.tiers[0].Rate
	for _, t := range c.tiers {
		if amount.GreaterThanOrEqual(t.Floor) {
			rate = t.Rate
		}
	}

	fee := amount.Mul(rate)
	if external {
		fee = fee.Mul(externalMultiplier)
	}
	if crossCurrency {
		fee = fee.Mul(crossCurrencyMultiplier)
	}
	return fee.Round(2)
}
