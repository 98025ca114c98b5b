package solana_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	solanago "github.com/ANAVHEOBA/meteora-fee-router/solana"
)

func TestAmountToUI(t *testing.T) {
	require.Equal(t, "1.5", solanago.AmountToUI(1_500_000, 6).String())
	require.Equal(t, "0.000001", solanago.AmountToUI(1, 6).String())
	require.Equal(t, "7", solanago.AmountToUI(7, 0).String())
	require.True(t, solanago.AmountToUI(0, 9).IsZero())
}

func TestUIToAmount(t *testing.T) {
	require.Equal(t, uint64(1_500_000), solanago.UIToAmount(decimal.RequireFromString("1.5"), 6))

	// anything below one base unit truncates
	require.Equal(t, uint64(1_500_000), solanago.UIToAmount(decimal.RequireFromString("1.5000009"), 6))
	require.Zero(t, solanago.UIToAmount(decimal.RequireFromString("-3"), 6))

	// round trip through the display value is lossless
	raw := uint64(987_654_321)
	require.Equal(t, raw, solanago.UIToAmount(solanago.AmountToUI(raw, 9), 9))
}
