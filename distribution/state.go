// Package distribution implements the daily fee distribution core: the
// persisted policy / global / per-day records, the pure payout calculator
// with its daily cap limiter, and the state machine that drives a day from
// start through paged investor payouts to completion.
package distribution

import (
	"crypto/sha256"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/ANAVHEOBA/meteora-fee-router/feemath"
)

// PolicyState is the immutable distribution policy for one quote mint.
type PolicyState struct {
	QuoteMint              solana.PublicKey
	CreatorAccount         solana.PublicKey
	PolicyAuthority        solana.PublicKey
	InvestorFeeShareBps    uint64
	DailyCapAmount         uint64 // 0 = unlimited
	MinPayoutAmount        uint64
	InitialTotalAllocation uint64 // Y0
	CreatedAt              int64
}

// Validate rejects a policy that could corrupt payout math downstream.
func (p *PolicyState) Validate() error {
	if p.QuoteMint.IsZero() {
		return fmt.Errorf("%w: quote mint is zero", ErrInvalidPolicy)
	}
	if p.CreatorAccount.IsZero() {
		return fmt.Errorf("%w: creator account is zero", ErrInvalidPolicy)
	}
	if p.InvestorFeeShareBps > feemath.MaxBps {
		return fmt.Errorf("%w: investor fee share %d bps exceeds %d", ErrInvalidPolicy, p.InvestorFeeShareBps, feemath.MaxBps)
	}
	if p.InitialTotalAllocation == 0 {
		return fmt.Errorf("%w: initial total allocation is zero", ErrInvalidPolicy)
	}
	return nil
}

// GlobalDistributionState tracks lifetime distribution totals for one quote
// mint. Mutated only when a day completes; every field is non-decreasing.
type GlobalDistributionState struct {
	QuoteMint                   solana.PublicKey
	LastDistributionDay         int64
	TotalDistributionsCompleted uint64
	LifetimeAmountDistributed   uint64
}

// DailyDistributionState is the progress record of one quote mint's
// distribution on one calendar day. Created at day start, terminal once
// IsComplete latches.
type DailyDistributionState struct {
	QuoteMint       solana.PublicKey
	DistributionDay int64 // day-aligned unix timestamp
	TreasuryAccount solana.PublicKey

	// InvestorStreams is the ordered stream set frozen at day start. Pages
	// must walk this set in order; a stream appearing mid-day cannot shift
	// the page windows.
	InvestorStreams []solana.PublicKey

	TotalAmountToDistribute uint64 // treasury balance snapshot at start
	AmountDistributed       uint64
	DustCarriedOver         uint64 // dust carried in from the previous day
	DustAccrued             uint64 // dust produced by this day's pages

	CurrentCursor      uint64
	TotalInvestors     uint64
	InvestorsProcessed uint64
	PagesProcessed     uint64
	FailedPayoutsCount uint64

	DailyCapTotal     uint64
	DailyCapRemaining uint64

	// Policy snapshots, frozen at day start so a mid-day policy change can
	// never alter an in-flight distribution.
	MinPayoutThreshold  uint64
	InitialTotalDeposit uint64
	InvestorFeeShareBps uint64

	LastPageHash        [32]byte
	ProcessedPageHashes [][32]byte

	IsComplete  bool
	Aborted     bool
	StartedAt   int64
	CompletedAt int64
}

// EffectiveDistributionAmount is the total the day can pay out: the treasury
// snapshot plus any dust carried in.
func (d *DailyDistributionState) EffectiveDistributionAmount() uint64 {
	return feemath.SaturatingAdd(d.TotalAmountToDistribute, d.DustCarriedOver)
}

// AvailableAmount is what remains undistributed.
func (d *DailyDistributionState) AvailableAmount() uint64 {
	return feemath.SaturatingSub(d.EffectiveDistributionAmount(), d.AmountDistributed)
}

// RemainingInvestors reports how many investors have not been processed yet.
func (d *DailyDistributionState) RemainingInvestors() uint64 {
	return feemath.SaturatingSub(d.TotalInvestors, d.InvestorsProcessed)
}

// NextPage returns the next unprocessed window of the frozen stream set, at
// most limit entries. Empty once every investor has been processed.
func (d *DailyDistributionState) NextPage(limit int) []solana.PublicKey {
	start := int(d.InvestorsProcessed)
	if limit <= 0 || start >= len(d.InvestorStreams) {
		return nil
	}
	end := start + limit
	if end > len(d.InvestorStreams) {
		end = len(d.InvestorStreams)
	}
	return d.InvestorStreams[start:end]
}

// HasProcessedPage reports whether a page with this digest was already
// accepted today.
func (d *DailyDistributionState) HasProcessedPage(hash [32]byte) bool {
	if hash == d.LastPageHash {
		return true
	}
	for _, h := range d.ProcessedPageHashes {
		if h == hash {
			return true
		}
	}
	return false
}

// ApplyPage folds one accepted page into the record. All counters move
// forward together; none ever decreases. Page dust is not subtracted from
// the available pool: it stays undistributed and reaches the creator at
// completion.
func (d *DailyDistributionState) ApplyPage(hash [32]byte, investorsInPage, amountPaid, dust, failedPayouts uint64) {
	d.AmountDistributed = feemath.SaturatingAdd(d.AmountDistributed, amountPaid)
	d.DustAccrued = feemath.SaturatingAdd(d.DustAccrued, dust)
	d.CurrentCursor = feemath.SaturatingAdd(d.CurrentCursor, investorsInPage)
	d.InvestorsProcessed = feemath.SaturatingAdd(d.InvestorsProcessed, investorsInPage)
	d.PagesProcessed++
	d.FailedPayoutsCount = feemath.SaturatingAdd(d.FailedPayoutsCount, failedPayouts)
	d.LastPageHash = hash
	d.ProcessedPageHashes = append(d.ProcessedPageHashes, hash)
	if d.DailyCapTotal > 0 {
		d.DailyCapRemaining = feemath.SaturatingSub(d.DailyCapRemaining, amountPaid)
	}
}

// Complete latches the terminal state. Returns false if already complete.
func (d *DailyDistributionState) Complete(completedAt int64) bool {
	if d.IsComplete {
		return false
	}
	d.IsComplete = true
	d.CompletedAt = completedAt
	return true
}

// CheckInvariants verifies the record's internal consistency.
func (d *DailyDistributionState) CheckInvariants() error {
	if d.InvestorsProcessed > d.TotalInvestors {
		return fmt.Errorf("investors processed %d exceeds total %d", d.InvestorsProcessed, d.TotalInvestors)
	}
	if d.AmountDistributed > d.EffectiveDistributionAmount() {
		return fmt.Errorf("amount distributed %d exceeds effective amount %d", d.AmountDistributed, d.EffectiveDistributionAmount())
	}
	return nil
}

// TreasuryState tracks cumulative fee claims into the treasury account.
type TreasuryState struct {
	QuoteMint          solana.PublicKey
	TreasuryAccount    solana.PublicKey
	ClaimAuthority     solana.PublicKey
	TotalFeesClaimed   uint64
	LastClaimTimestamp int64
	ClaimCount         uint64
}

// Pending operation kinds.
const (
	PendingPage  uint8 = 1
	PendingClose uint8 = 2
)

// PendingOperation journals a payout about to be sent on chain. It commits
// before the transfer and is deleted once the day record has absorbed the
// result, so an entry that survives a crash is settled as paid on the next
// call instead of being paid again.
type PendingOperation struct {
	QuoteMint        solana.PublicKey
	Day              int64
	Kind             uint8
	PageHash         [32]byte
	InvestorsInPage  uint64
	AmountPaid       uint64
	Dust             uint64
	FailedPayouts    uint64
	CreatorRemainder uint64
	Aborted          bool
	CreatedAt        int64
}

// PositionMetadata records the honorary fee position so every later claim
// can verify it is draining the pool and position it was created for.
type PositionMetadata struct {
	Pool            solana.PublicKey
	Position        solana.PublicKey
	PositionNftMint solana.PublicKey
	QuoteMint       solana.PublicKey
	QuoteSide       uint8
	CreatedAt       int64
}

// PageDigest computes the idempotency digest of an ordered investor page:
// sha256 over the concatenated account keys. Order matters; the same set in
// a different order is a different page.
func PageDigest(keys []solana.PublicKey) [32]byte {
	h := sha256.New()
	for _, k := range keys {
		h.Write(k.Bytes())
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Record keys. Each persisted record is addressed by a deterministic
// derivation from (tag, quote mint[, day]).
func policyKey(mint solana.PublicKey) []byte {
	return []byte("policy:" + base58.Encode(mint.Bytes()))
}

func globalKey(mint solana.PublicKey) []byte {
	return []byte("global:" + base58.Encode(mint.Bytes()))
}

func dailyKey(mint solana.PublicKey, day int64) []byte {
	return []byte(fmt.Sprintf("daily:%s:%d", base58.Encode(mint.Bytes()), day))
}

func treasuryKey(mint solana.PublicKey) []byte {
	return []byte("treasury:" + base58.Encode(mint.Bytes()))
}

func positionKey(mint solana.PublicKey) []byte {
	return []byte("position:" + base58.Encode(mint.Bytes()))
}

func pendingKey(mint solana.PublicKey, day int64) []byte {
	return []byte(fmt.Sprintf("pending:%s:%d", base58.Encode(mint.Bytes()), day))
}
