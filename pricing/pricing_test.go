package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"polyclob/internal/primitives"
	"polyclob/pricing"
)

func TestGetRoundConfig_KnownTicks(t *testing.T) {
	cases := []struct {
		tick string
		want pricing.RoundConfig
	}{
		{"0.1", pricing.RoundConfig{Price: 1, Size: 2, Amount: 3}},
		{"0.01", pricing.RoundConfig{Price: 2, Size: 2, Amount: 4}},
		{"0.001", pricing.RoundConfig{Price: 3, Size: 2, Amount: 5}},
		{"0.0001", pricing.RoundConfig{Price: 4, Size: 2, Amount: 6}},
	}
	for _, c := range cases {
		got, err := pricing.GetRoundConfig(c.tick)
		require.NoError(t, err)
		require.Equal(t, c.want, got)
	}
}

func TestGetRoundConfig_UnknownTick(t *testing.T) {
	_, err := pricing.GetRoundConfig("0.05")
	require.Error(t, err)
}

func TestPriceValid(t *testing.T) {
	require.True(t, pricing.PriceValid(0.5, "0.01"))
	require.True(t, pricing.PriceValid(0.01, "0.01"))
	require.True(t, pricing.PriceValid(0.99, "0.01"))
	require.False(t, pricing.PriceValid(0.005, "0.01"))
	require.False(t, pricing.PriceValid(0.995, "0.01"))
}

func TestRoundDownAndUp(t *testing.T) {
	require.Equal(t, 1.23, pricing.RoundDown(1.239, 2))
	require.Equal(t, 1.24, pricing.RoundUp(1.231, 2))
	require.Equal(t, 1.5, pricing.RoundDown(1.5, 2))
}

func TestRoundNormal_HalfAwayFromZero(t *testing.T) {
	require.Equal(t, 1.24, pricing.RoundNormal(1.235, 2))
}

func TestCalculateBuyMarketPrice_WalksFromWorstToBest(t *testing.T) {
	asks := []pricing.Level{
		{Price: 0.10, Size: 1000}, // best
		{Price: 0.20, Size: 10},
		{Price: 0.30, Size: 10}, // worst
	}
	// worst level alone (10*0.30=3.0) isn't enough; worst+next (10*0.20=2.0
	// more, totalling 5.0) is, so the walk stops there without touching the
	// best level.
	price, err := pricing.CalculateBuyMarketPrice(asks, 5, pricing.OrderTypeGTC)
	require.NoError(t, err)
	require.Equal(t, 0.20, price)
}

func TestCalculateBuyMarketPrice_FOK_NoMatch(t *testing.T) {
	asks := []pricing.Level{
		{Price: 0.10, Size: 1},
	}
	_, err := pricing.CalculateBuyMarketPrice(asks, 1000, pricing.OrderTypeFOK)
	require.Error(t, err)
}

func TestCalculateBuyMarketPrice_NonFOK_SettlesAtBest(t *testing.T) {
	asks := []pricing.Level{
		{Price: 0.10, Size: 1},
	}
	price, err := pricing.CalculateBuyMarketPrice(asks, 1000, pricing.OrderTypeGTC)
	require.NoError(t, err)
	require.Equal(t, 0.10, price)
}

func TestCalculateSellMarketPrice_WalksBySizeOnly(t *testing.T) {
	bids := []pricing.Level{
		{Price: 0.80, Size: 3}, // best
		{Price: 0.70, Size: 3},
		{Price: 0.60, Size: 3}, // worst
	}
	price, err := pricing.CalculateSellMarketPrice(bids, 4, pricing.OrderTypeGTC)
	require.NoError(t, err)
	require.Equal(t, 0.70, price)
}

func TestResolveBuyAmounts_DerivesTakerFromMaker(t *testing.T) {
	cfg := pricing.RoundConfig{Price: 2, Size: 2, Amount: 4}
	resolved := pricing.ResolveBuyAmounts(10.0, 0.5, cfg)
	require.Equal(t, 10.0, resolved.MakerSize)
	require.Equal(t, 20.0, resolved.TakerSize)
}

func TestResolveSellAmounts_DerivesTakerFromMaker(t *testing.T) {
	cfg := pricing.RoundConfig{Price: 2, Size: 2, Amount: 4}
	resolved := pricing.ResolveSellAmounts(10.0, 0.5, cfg)
	require.Equal(t, 10.0, resolved.MakerSize)
	require.Equal(t, 5.0, resolved.TakerSize)
}

// TestResolveBuyAmounts_TwoStageRoundingExercisesRoundUpThenDown exercises
// the two-stage RoundAmount path: 1.00/0.57 has far more than 4 decimal
// places, so it must round up to 8 decimals first, then down to 4, rather
// than landing on a value with zero fractional digits like the other
// ResolveBuyAmounts test.
func TestResolveBuyAmounts_TwoStageRoundingExercisesRoundUpThenDown(t *testing.T) {
	cfg, err := pricing.GetRoundConfig("0.01")
	require.NoError(t, err)

	resolved := pricing.ResolveBuyAmounts(1.00, 0.57, cfg)
	require.Equal(t, 1.00, resolved.MakerSize)
	require.Equal(t, 1.7543, resolved.TakerSize)

	units, err := primitives.ToBaseUnits(resolved.TakerSize, 6, true)
	require.NoError(t, err)
	require.Equal(t, "1754300", units)
}
