package distribution

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/ANAVHEOBA/meteora-fee-router/feemath"
	"github.com/ANAVHEOBA/meteora-fee-router/streamflow"
)

// InvestorPayout is one investor's computed payout for a page.
type InvestorPayout struct {
	Investor      solana.PublicKey
	PayoutAccount solana.PublicKey
	PayoutAmount  uint64
	WeightBps     uint64
	MeetsMinimum  bool
}

// DistributionCalculation is the pure output of the payout calculator for
// one page. Nothing in it is persisted.
type DistributionCalculation struct {
	LockedFractionBps uint64
	EligibleShareBps  uint64
	InvestorFeeQuote  uint64
	Payouts           []InvestorPayout
	TotalDistributed  uint64
	DustAmount        uint64
	CreatorRemainder  uint64
	CapApplied        bool
	ScaleBps          uint64
}

// Calculate computes per-investor payouts for one page.
//
// The investor pool's share of claimedQuote is capped both by the policy's
// fee share and by the fraction of the initial allocation still locked:
// fully vested investors shift the whole stream to the creator. Per-investor
// amounts are floor divisions; amounts below minPayout are zeroed into dust
// rather than paid.
func Calculate(
	claimedQuote uint64,
	snapshots []*streamflow.InvestorSnapshot,
	totalLocked uint64,
	initialTotalAllocation uint64,
	investorFeeShareBps uint64,
	minPayout uint64,
) *DistributionCalculation {
	calc := &DistributionCalculation{}

	calc.LockedFractionBps = feemath.Bps(totalLocked, initialTotalAllocation)
	if calc.LockedFractionBps > feemath.MaxBps {
		calc.LockedFractionBps = feemath.MaxBps
	}
	calc.EligibleShareBps = feemath.Min(investorFeeShareBps, calc.LockedFractionBps)
	calc.InvestorFeeQuote = feemath.ApplyBps(claimedQuote, calc.EligibleShareBps)

	if totalLocked == 0 || calc.InvestorFeeQuote == 0 {
		calc.InvestorFeeQuote = 0
		calc.CreatorRemainder = claimedQuote
		return calc
	}

	for _, snapshot := range snapshots {
		payout := InvestorPayout{
			Investor:      snapshot.Investor,
			PayoutAccount: snapshot.PayoutAccount,
			WeightBps:     feemath.Bps(snapshot.LockedAmount, totalLocked),
		}
		amount, _ := feemath.MulDivFloor(calc.InvestorFeeQuote, snapshot.LockedAmount, totalLocked)
		if amount >= minPayout && amount > 0 {
			payout.PayoutAmount = amount
			payout.MeetsMinimum = true
			calc.TotalDistributed = feemath.SaturatingAdd(calc.TotalDistributed, amount)
		}
		calc.Payouts = append(calc.Payouts, payout)
	}

	calc.DustAmount = feemath.SaturatingSub(calc.InvestorFeeQuote, calc.TotalDistributed)
	calc.CreatorRemainder = feemath.SaturatingSub(claimedQuote, calc.InvestorFeeQuote)
	return calc
}

// ApplyDailyCap scales a calculation down to fit within capRemaining. A
// calculation already under the cap passes through untouched. Scaling is
// proportional in basis points with floor division and deliberately does not
// re-check the per-investor minimum.
func ApplyDailyCap(calc *DistributionCalculation, capRemaining uint64) *DistributionCalculation {
	if calc.TotalDistributed <= capRemaining {
		return calc
	}

	scaleBps, _ := feemath.MulDivFloor(capRemaining, feemath.BpsDenominator, calc.TotalDistributed)
	calc.CapApplied = true
	calc.ScaleBps = scaleBps

	var newTotal uint64
	for i := range calc.Payouts {
		if calc.Payouts[i].PayoutAmount == 0 {
			continue
		}
		scaled := feemath.ApplyBps(calc.Payouts[i].PayoutAmount, scaleBps)
		calc.Payouts[i].PayoutAmount = scaled
		newTotal = feemath.SaturatingAdd(newTotal, scaled)
	}
	calc.TotalDistributed = newTotal
	calc.DustAmount = feemath.SaturatingSub(capRemaining, newTotal)
	return calc
}

// ValidateCalculation is the post-hoc invariant check run before any payout
// is executed.
func ValidateCalculation(calc *DistributionCalculation, claimedQuote uint64) error {
	total := feemath.SaturatingAdd(calc.TotalDistributed, calc.DustAmount)
	total = feemath.SaturatingAdd(total, calc.CreatorRemainder)
	if !calc.CapApplied && total > claimedQuote {
		return fmt.Errorf("calculation distributes %d, exceeding claimed %d", total, claimedQuote)
	}
	if calc.TotalDistributed > claimedQuote {
		return fmt.Errorf("payout total %d exceeds claimed %d", calc.TotalDistributed, claimedQuote)
	}
	if calc.LockedFractionBps > feemath.MaxBps {
		return fmt.Errorf("locked fraction %d bps out of range", calc.LockedFractionBps)
	}
	for _, p := range calc.Payouts {
		if p.WeightBps > feemath.MaxBps {
			return fmt.Errorf("investor %s weight %d bps out of range", p.Investor, p.WeightBps)
		}
	}
	return nil
}
