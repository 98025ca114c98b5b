package distribution_test

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/ANAVHEOBA/meteora-fee-router/distribution"
	"github.com/ANAVHEOBA/meteora-fee-router/streamflow"
)

func snapshotsOf(locked ...uint64) ([]*streamflow.InvestorSnapshot, uint64) {
	var (
		snapshots []*streamflow.InvestorSnapshot
		total     uint64
	)
	for _, amount := range locked {
		snapshots = append(snapshots, &streamflow.InvestorSnapshot{
			Investor:      solana.NewWallet().PublicKey(),
			Stream:        solana.NewWallet().PublicKey(),
			PayoutAccount: solana.NewWallet().PublicKey(),
			LockedAmount:  amount,
		})
		total += amount
	}
	return snapshots, total
}

func TestCalculatePartialLocks(t *testing.T) {
	// 3 investors locked 300k/500k/200k of 1,000,000 against Y0=2,000,000:
	// half locked, so the 5000 bps share caps at 5000 bps of 10000 claimed.
	snapshots, totalLocked := snapshotsOf(300_000, 500_000, 200_000)

	calc := distribution.Calculate(10_000, snapshots, totalLocked, 2_000_000, 5000, 0)

	require.Equal(t, uint64(5000), calc.LockedFractionBps)
	require.Equal(t, uint64(5000), calc.EligibleShareBps)
	require.Equal(t, uint64(5000), calc.InvestorFeeQuote)

	require.Len(t, calc.Payouts, 3)
	require.Equal(t, uint64(1500), calc.Payouts[0].PayoutAmount)
	require.Equal(t, uint64(2500), calc.Payouts[1].PayoutAmount)
	require.Equal(t, uint64(1000), calc.Payouts[2].PayoutAmount)
	require.Equal(t, uint64(5000), calc.TotalDistributed)
	require.Equal(t, uint64(0), calc.DustAmount)
	require.Equal(t, uint64(5000), calc.CreatorRemainder)

	require.NoError(t, distribution.ValidateCalculation(calc, 10_000))
}

func TestCalculateAllUnlocked(t *testing.T) {
	calc := distribution.Calculate(10_000, nil, 0, 2_000_000, 5000, 0)

	require.Equal(t, uint64(0), calc.InvestorFeeQuote)
	require.Equal(t, uint64(0), calc.TotalDistributed)
	require.Equal(t, uint64(10_000), calc.CreatorRemainder)
	require.Empty(t, calc.Payouts)
	require.NoError(t, distribution.ValidateCalculation(calc, 10_000))
}

func TestCalculateDust(t *testing.T) {
	// Three equal thirds of 100 leave 1 behind.
	snapshots, totalLocked := snapshotsOf(333_333, 333_333, 333_333)

	calc := distribution.Calculate(100, snapshots, totalLocked, totalLocked, 10_000, 0)

	require.Equal(t, uint64(100), calc.InvestorFeeQuote)
	for _, p := range calc.Payouts {
		require.Equal(t, uint64(33), p.PayoutAmount)
		require.True(t, p.MeetsMinimum)
	}
	require.Equal(t, uint64(99), calc.TotalDistributed)
	require.Equal(t, uint64(1), calc.DustAmount)
	require.Equal(t, uint64(0), calc.CreatorRemainder)
	require.NoError(t, distribution.ValidateCalculation(calc, 100))
}

func TestCalculateBelowMinimum(t *testing.T) {
	snapshots, totalLocked := snapshotsOf(1, 999_999)

	calc := distribution.Calculate(1_000_000, snapshots, totalLocked, totalLocked, 10_000, 100)

	require.Equal(t, uint64(1_000_000), calc.InvestorFeeQuote)

	small := calc.Payouts[0]
	require.False(t, small.MeetsMinimum)
	require.Equal(t, uint64(0), small.PayoutAmount)
	// the weight is still reported for observability
	require.Equal(t, uint64(0), small.WeightBps) // floor(1*10000/1000000)

	big := calc.Payouts[1]
	require.True(t, big.MeetsMinimum)
	require.Equal(t, uint64(999_999), big.PayoutAmount)

	require.Equal(t, uint64(999_999), calc.TotalDistributed)
	require.Equal(t, uint64(1), calc.DustAmount)
	require.NoError(t, distribution.ValidateCalculation(calc, 1_000_000))
}

func TestApplyDailyCapScalesProportionally(t *testing.T) {
	snapshots, totalLocked := snapshotsOf(1_000, 500)

	// full share of 1500 claimed: payouts 1000 and 500
	calc := distribution.Calculate(1500, snapshots, totalLocked, totalLocked, 10_000, 0)
	require.Equal(t, uint64(1500), calc.TotalDistributed)

	calc = distribution.ApplyDailyCap(calc, 1000)

	require.True(t, calc.CapApplied)
	require.Equal(t, uint64(6666), calc.ScaleBps)
	require.Equal(t, uint64(666), calc.Payouts[0].PayoutAmount)
	require.Equal(t, uint64(333), calc.Payouts[1].PayoutAmount)
	require.Equal(t, uint64(999), calc.TotalDistributed)
	require.LessOrEqual(t, calc.TotalDistributed, uint64(1000))
	require.Equal(t, uint64(1), calc.DustAmount)
}

func TestApplyDailyCapPassThrough(t *testing.T) {
	snapshots, totalLocked := snapshotsOf(1_000, 500)
	calc := distribution.Calculate(1500, snapshots, totalLocked, totalLocked, 10_000, 0)

	before := calc.TotalDistributed
	calc = distribution.ApplyDailyCap(calc, 5_000)

	require.False(t, calc.CapApplied)
	require.Equal(t, before, calc.TotalDistributed)
}

func TestCalculateWeightsWithinRange(t *testing.T) {
	snapshots, totalLocked := snapshotsOf(10, 20, 30, 40)
	calc := distribution.Calculate(12_345, snapshots, totalLocked, totalLocked, 10_000, 0)

	var weightSum uint64
	for _, p := range calc.Payouts {
		require.LessOrEqual(t, p.WeightBps, uint64(10_000))
		weightSum += p.WeightBps
	}
	require.LessOrEqual(t, weightSum, uint64(10_000))
	require.NoError(t, distribution.ValidateCalculation(calc, 12_345))
}

func TestCalculateConservation(t *testing.T) {
	snapshots, totalLocked := snapshotsOf(17, 293, 4_481, 99_999)
	claimed := uint64(777_777)

	calc := distribution.Calculate(claimed, snapshots, totalLocked, 200_000, 7_500, 3)

	require.Equal(t, claimed, calc.TotalDistributed+calc.DustAmount+calc.CreatorRemainder)
	require.NoError(t, distribution.ValidateCalculation(calc, claimed))
}
