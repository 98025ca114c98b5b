package distribution_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/ANAVHEOBA/meteora-fee-router/distribution"
	"github.com/ANAVHEOBA/meteora-fee-router/streamflow"
)

type fakeVesting struct {
	data map[solana.PublicKey][]byte
}

func (f *fakeVesting) ReadStreams(ctx context.Context, streams []solana.PublicKey) ([]streamflow.StreamAccount, error) {
	accounts := make([]streamflow.StreamAccount, len(streams))
	for i, key := range streams {
		accounts[i] = streamflow.StreamAccount{Address: key, Data: f.data[key]}
	}
	return accounts, nil
}

type fakePayouts struct {
	investorPaid map[solana.PublicKey]uint64
	creatorPaid  uint64
	creator      solana.PublicKey
	failNextPage bool
}

func (f *fakePayouts) PayInvestors(ctx context.Context, payouts []distribution.InvestorPayout) (uint64, error) {
	if f.failNextPage {
		f.failNextPage = false
		return 0, errors.New("rpc unavailable")
	}
	if f.investorPaid == nil {
		f.investorPaid = make(map[solana.PublicKey]uint64)
	}
	for _, p := range payouts {
		if p.PayoutAmount > 0 {
			f.investorPaid[p.Investor] += p.PayoutAmount
		}
	}
	return 0, nil
}

func (f *fakePayouts) PayCreator(ctx context.Context, creator solana.PublicKey, amount uint64) error {
	f.creator = creator
	f.creatorPaid += amount
	return nil
}

type fakeTreasury struct {
	balance uint64
}

func (f *fakeTreasury) Balance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	return f.balance, nil
}

type fakeClaimer struct {
	quote, base uint64
	treasury    *fakeTreasury
}

func (f *fakeClaimer) ClaimFees(ctx context.Context) (uint64, uint64, error) {
	if f.base == 0 {
		f.treasury.balance += f.quote
	}
	return f.quote, f.base, nil
}

type engineFixture struct {
	engine   *distribution.Engine
	store    *distribution.Store
	clock    *clockwork.FakeClock
	vesting  *fakeVesting
	payouts  *fakePayouts
	treasury *fakeTreasury
	claimer  *fakeClaimer

	quoteMint solana.PublicKey
	creator   solana.PublicKey
	authority solana.PublicKey
	policy    *distribution.PolicyState
}

func newEngineFixture(t *testing.T, policyEdits func(*distribution.PolicyState)) *engineFixture {
	t.Helper()

	f := &engineFixture{
		clock:     clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0)),
		vesting:   &fakeVesting{data: make(map[solana.PublicKey][]byte)},
		payouts:   &fakePayouts{},
		treasury:  &fakeTreasury{balance: 10_000},
		quoteMint: solana.NewWallet().PublicKey(),
		creator:   solana.NewWallet().PublicKey(),
		authority: solana.NewWallet().PublicKey(),
	}
	f.claimer = &fakeClaimer{quote: 700, treasury: f.treasury}

	store := openTestStore(t)
	f.store = store
	engine, err := distribution.New(distribution.Config{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:       f.clock,
		Store:       store,
		Vesting:     f.vesting,
		Payouts:     f.payouts,
		Claimer:     f.claimer,
		Treasury:    f.treasury,
		QuoteMint:   f.quoteMint,
		MaxPageSize: 3,
	})
	require.NoError(t, err)
	f.engine = engine

	f.policy = &distribution.PolicyState{
		QuoteMint:              f.quoteMint,
		CreatorAccount:         f.creator,
		PolicyAuthority:        f.authority,
		InvestorFeeShareBps:    10_000,
		InitialTotalAllocation: 1_000_000,
	}
	if policyEdits != nil {
		policyEdits(f.policy)
	}

	ctx := context.Background()
	require.NoError(t, engine.InitializePolicy(ctx, f.policy))
	require.NoError(t, engine.InitializeGlobal(ctx))
	require.NoError(t, engine.InitializeTreasury(ctx, solana.NewWallet().PublicKey(), f.authority))
	return f
}

// addStream registers a vesting stream locked 50% at the fixture's current
// time and returns its account key.
func (f *engineFixture) addStream(t *testing.T, deposited uint64) solana.PublicKey {
	t.Helper()
	now := uint64(f.clock.Now().Unix())
	stream := &streamflow.Stream{
		StartTime:       now - 1000,
		EndTime:         now + 1000,
		DepositedAmount: deposited,
		Recipient:       solana.NewWallet().PublicKey(),
		Sender:          solana.NewWallet().PublicKey(),
		Mint:            solana.NewWallet().PublicKey(),
	}
	data, err := binary.MarshalBin(stream)
	require.NoError(t, err)

	key := solana.NewWallet().PublicKey()
	f.vesting.data[key] = data
	return key
}

func randomKeys(n int) []solana.PublicKey {
	keys := make([]solana.PublicKey, n)
	for i := range keys {
		keys[i] = solana.NewWallet().PublicKey()
	}
	return keys
}

func TestEngineFullDayFlow(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	// two streams, each 1,000,000 deposited and 500,000 still locked:
	// the full initial allocation is locked, investors get everything
	s1 := f.addStream(t, 1_000_000)
	s2 := f.addStream(t, 1_000_000)

	daily, err := f.engine.StartDay(ctx, []solana.PublicKey{s1, s2})
	require.NoError(t, err)
	require.Equal(t, uint64(10_000), daily.TotalAmountToDistribute)
	require.Equal(t, uint64(2), daily.TotalInvestors)

	result, err := f.engine.ProcessPage(ctx, daily.DistributionDay, []solana.PublicKey{s1, s2})
	require.NoError(t, err)
	require.Equal(t, uint64(10_000), result.Calculation.TotalDistributed)
	require.Empty(t, result.SnapshotErrors)

	// every investor got half
	require.Len(t, f.payouts.investorPaid, 2)
	for _, amount := range f.payouts.investorPaid {
		require.Equal(t, uint64(5_000), amount)
	}

	// nothing remains for another page
	_, err = f.engine.ProcessPage(ctx, daily.DistributionDay, []solana.PublicKey{s1})
	require.ErrorIs(t, err, distribution.ErrNoInvestorsRemaining)

	require.NoError(t, f.engine.CompleteDay(ctx, daily.DistributionDay))
	require.Zero(t, f.payouts.creatorPaid) // fully distributed, no remainder

	global, err := f.engine.Global(ctx)
	require.NoError(t, err)
	require.Equal(t, daily.DistributionDay, global.LastDistributionDay)
	require.Equal(t, uint64(1), global.TotalDistributionsCompleted)
	require.Equal(t, uint64(10_000), global.LifetimeAmountDistributed)

	// completion is a one-way latch
	err = f.engine.CompleteDay(ctx, daily.DistributionDay)
	require.ErrorIs(t, err, distribution.ErrDayComplete)

	// same calendar day cannot start again
	_, err = f.engine.StartDay(ctx, []solana.PublicKey{s1, s2})
	require.ErrorIs(t, err, distribution.ErrTooSoonToDistribute)

	// the next day can
	f.clock.Advance(24 * time.Hour)
	_, err = f.engine.StartDay(ctx, []solana.PublicKey{s1, s2})
	require.NoError(t, err)
}

func TestEngineCreatorRemainder(t *testing.T) {
	// at 5000 bps the investors split half and the creator gets the rest
	f := newEngineFixture(t, func(p *distribution.PolicyState) {
		p.InvestorFeeShareBps = 5_000
	})
	ctx := context.Background()

	s1 := f.addStream(t, 1_000_000)
	s2 := f.addStream(t, 1_000_000)

	daily, err := f.engine.StartDay(ctx, []solana.PublicKey{s1, s2})
	require.NoError(t, err)

	result, err := f.engine.ProcessPage(ctx, daily.DistributionDay, []solana.PublicKey{s1, s2})
	require.NoError(t, err)
	require.Equal(t, uint64(5_000), result.Calculation.TotalDistributed)

	require.NoError(t, f.engine.CompleteDay(ctx, daily.DistributionDay))
	require.Equal(t, f.creator, f.payouts.creator)
	require.Equal(t, uint64(5_000), f.payouts.creatorPaid)
}

func TestEngineDuplicatePageRejected(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	s1 := f.addStream(t, 1_000_000)
	s2 := f.addStream(t, 1_000_000)

	daily, err := f.engine.StartDay(ctx, []solana.PublicKey{s1, s2})
	require.NoError(t, err)

	page := []solana.PublicKey{s1}
	_, err = f.engine.ProcessPage(ctx, daily.DistributionDay, page)
	require.NoError(t, err)

	before, err := f.engine.Daily(ctx, daily.DistributionDay)
	require.NoError(t, err)

	// identical resubmission is rejected and mutates nothing
	_, err = f.engine.ProcessPage(ctx, daily.DistributionDay, page)
	require.ErrorIs(t, err, distribution.ErrDuplicatePage)

	after, err := f.engine.Daily(ctx, daily.DistributionDay)
	require.NoError(t, err)
	require.Equal(t, before.AmountDistributed, after.AmountDistributed)
	require.Equal(t, before.InvestorsProcessed, after.InvestorsProcessed)
	require.Equal(t, before.PagesProcessed, after.PagesProcessed)

	// a different page still goes through, and the first page stays
	// protected even though it is no longer the most recent
	_, err = f.engine.ProcessPage(ctx, daily.DistributionDay, []solana.PublicKey{s2})
	require.NoError(t, err)
	_, err = f.engine.ProcessPage(ctx, daily.DistributionDay, page)
	require.ErrorIs(t, err, distribution.ErrDuplicatePage)
}

func TestEnginePageBounds(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	_, err := f.engine.StartDay(ctx, randomKeys(10))
	require.NoError(t, err)
	day := int64(1_700_000_000)

	_, err = f.engine.ProcessPage(ctx, day, nil)
	require.ErrorIs(t, err, distribution.ErrEmptyPage)

	// MaxPageSize is 3 in the fixture
	oversized := []solana.PublicKey{
		solana.NewWallet().PublicKey(),
		solana.NewWallet().PublicKey(),
		solana.NewWallet().PublicKey(),
		solana.NewWallet().PublicKey(),
	}
	_, err = f.engine.ProcessPage(ctx, day, oversized)
	require.ErrorIs(t, err, distribution.ErrPageTooLarge)
}

func TestEngineProcessPageWithoutStart(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	_, err := f.engine.ProcessPage(ctx, f.clock.Now().Unix(), []solana.PublicKey{solana.NewWallet().PublicKey()})
	require.ErrorIs(t, err, distribution.ErrDayNotStarted)
}

func TestEngineFailedPayoutLeavesStateUnchanged(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	s1 := f.addStream(t, 1_000_000)

	daily, err := f.engine.StartDay(ctx, []solana.PublicKey{s1})
	require.NoError(t, err)

	f.payouts.failNextPage = true
	_, err = f.engine.ProcessPage(ctx, daily.DistributionDay, []solana.PublicKey{s1})
	require.Error(t, err)

	after, err := f.engine.Daily(ctx, daily.DistributionDay)
	require.NoError(t, err)
	require.Zero(t, after.AmountDistributed)
	require.Zero(t, after.PagesProcessed)

	// the same page can be retried; it was never recorded
	_, err = f.engine.ProcessPage(ctx, daily.DistributionDay, []solana.PublicKey{s1})
	require.NoError(t, err)
}

func TestEngineDailyCap(t *testing.T) {
	f := newEngineFixture(t, func(p *distribution.PolicyState) {
		p.DailyCapAmount = 1_000
	})
	ctx := context.Background()

	s1 := f.addStream(t, 1_000_000)
	s2 := f.addStream(t, 1_000_000)

	daily, err := f.engine.StartDay(ctx, []solana.PublicKey{s1, s2})
	require.NoError(t, err)
	require.Equal(t, uint64(1_000), daily.DailyCapRemaining)

	result, err := f.engine.ProcessPage(ctx, daily.DistributionDay, []solana.PublicKey{s1, s2})
	require.NoError(t, err)
	require.True(t, result.Calculation.CapApplied)
	require.LessOrEqual(t, result.Calculation.TotalDistributed, uint64(1_000))

	after, err := f.engine.Daily(ctx, daily.DistributionDay)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000)-result.Calculation.TotalDistributed, after.DailyCapRemaining)
}

func TestEngineAbortDay(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	daily, err := f.engine.StartDay(ctx, randomKeys(5))
	require.NoError(t, err)

	// only the policy authority may abort
	err = f.engine.AbortDay(ctx, daily.DistributionDay, solana.NewWallet().PublicKey())
	require.ErrorIs(t, err, distribution.ErrUnauthorized)

	require.NoError(t, f.engine.AbortDay(ctx, daily.DistributionDay, f.authority))
	require.Equal(t, uint64(10_000), f.payouts.creatorPaid)

	after, err := f.engine.Daily(ctx, daily.DistributionDay)
	require.NoError(t, err)
	require.True(t, after.IsComplete)
	require.True(t, after.Aborted)

	// the abort unblocks the next day
	f.clock.Advance(24 * time.Hour)
	_, err = f.engine.StartDay(ctx, randomKeys(5))
	require.NoError(t, err)
}

func TestEngineClaimFees(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	claimed, err := f.engine.ClaimFees(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(700), claimed)

	treasury, err := f.engine.TreasuryInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(700), treasury.TotalFeesClaimed)
	require.Equal(t, uint64(1), treasury.ClaimCount)
	require.Equal(t, f.clock.Now().Unix(), treasury.LastClaimTimestamp)

	// cooldown blocks an immediate second claim
	_, err = f.engine.ClaimFees(ctx)
	require.ErrorIs(t, err, distribution.ErrClaimCooldown)

	f.clock.Advance(time.Hour)
	_, err = f.engine.ClaimFees(ctx)
	require.NoError(t, err)
}

func TestEngineClaimRejectsBaseFees(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	f.claimer.base = 5
	_, err := f.engine.ClaimFees(ctx)
	require.ErrorIs(t, err, distribution.ErrBaseFeesClaimed)

	// bookkeeping untouched by the rejected claim
	treasury, err := f.engine.TreasuryInfo(ctx)
	require.NoError(t, err)
	require.Zero(t, treasury.TotalFeesClaimed)
	require.Zero(t, treasury.ClaimCount)
}

func TestEngineStartRequiresBalance(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	f.treasury.balance = 0
	streams := randomKeys(1)
	_, err := f.engine.StartDay(ctx, streams)
	require.ErrorIs(t, err, distribution.ErrNothingToDistribute)

	// nothing was created; funding the treasury lets the same day start
	f.treasury.balance = 500
	_, err = f.engine.StartDay(ctx, streams)
	require.NoError(t, err)
}

func TestEngineVerifyPosition(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	meta := &distribution.PositionMetadata{
		Pool:            solana.NewWallet().PublicKey(),
		Position:        solana.NewWallet().PublicKey(),
		PositionNftMint: solana.NewWallet().PublicKey(),
		QuoteMint:       f.quoteMint,
	}
	require.NoError(t, f.engine.RecordPosition(ctx, meta))

	require.NoError(t, f.engine.VerifyPosition(ctx, meta.Pool, meta.Position))

	err := f.engine.VerifyPosition(ctx, solana.NewWallet().PublicKey(), meta.Position)
	require.ErrorIs(t, err, distribution.ErrPositionMetadataMismatch)

	err = f.engine.VerifyPosition(ctx, meta.Pool, solana.NewWallet().PublicKey())
	require.ErrorIs(t, err, distribution.ErrPositionMetadataMismatch)
}

func TestEnginePageMustMatchRecordedStreams(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	s1 := f.addStream(t, 1_000_000)
	s2 := f.addStream(t, 1_000_000)
	s3 := f.addStream(t, 1_000_000)

	daily, err := f.engine.StartDay(ctx, []solana.PublicKey{s1, s2, s3})
	require.NoError(t, err)

	// skipping ahead in the recorded set is rejected
	_, err = f.engine.ProcessPage(ctx, daily.DistributionDay, []solana.PublicKey{s2})
	require.ErrorIs(t, err, distribution.ErrPageMismatch)

	// so is a page carrying a stream the day never recorded
	intruder := f.addStream(t, 1_000_000)
	_, err = f.engine.ProcessPage(ctx, daily.DistributionDay, []solana.PublicKey{s1, intruder})
	require.ErrorIs(t, err, distribution.ErrPageMismatch)

	// the next window of the recorded set goes through
	_, err = f.engine.ProcessPage(ctx, daily.DistributionDay, []solana.PublicKey{s1, s2})
	require.NoError(t, err)

	// a stream appearing mid-day cannot shift the remaining windows: only
	// the recorded tail is accepted, and no investor is paid twice
	_, err = f.engine.ProcessPage(ctx, daily.DistributionDay, []solana.PublicKey{intruder})
	require.ErrorIs(t, err, distribution.ErrPageMismatch)
	_, err = f.engine.ProcessPage(ctx, daily.DistributionDay, []solana.PublicKey{s3})
	require.NoError(t, err)

	after, err := f.engine.Daily(ctx, daily.DistributionDay)
	require.NoError(t, err)
	require.Equal(t, uint64(3), after.InvestorsProcessed)
	require.Zero(t, after.RemainingInvestors())

	// transfers reconcile exactly with the day record, so no investor was
	// paid more than once
	var paid uint64
	for _, amount := range f.payouts.investorPaid {
		paid += amount
	}
	require.Equal(t, after.AmountDistributed, paid)
	require.LessOrEqual(t, paid, after.TotalAmountToDistribute)
}

func TestEngineSettlesInterruptedPage(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	s1 := f.addStream(t, 1_000_000)
	s2 := f.addStream(t, 1_000_000)

	daily, err := f.engine.StartDay(ctx, []solana.PublicKey{s1, s2})
	require.NoError(t, err)

	// journal what a call that died after sending the transfers for page
	// [s1] would have left behind
	hash := distribution.PageDigest([]solana.PublicKey{s1})
	require.NoError(t, f.store.Update(func(tx *distribution.Tx) error {
		return tx.PutPending(&distribution.PendingOperation{
			QuoteMint:       f.quoteMint,
			Day:             daily.DistributionDay,
			Kind:            distribution.PendingPage,
			PageHash:        hash,
			InvestorsInPage: 1,
			AmountPaid:      5_000,
		})
	}))

	// resubmitting the page settles the journal as paid and rejects the
	// duplicate; nobody is paid a second time
	_, err = f.engine.ProcessPage(ctx, daily.DistributionDay, []solana.PublicKey{s1})
	require.ErrorIs(t, err, distribution.ErrDuplicatePage)
	require.Empty(t, f.payouts.investorPaid)

	after, err := f.engine.Daily(ctx, daily.DistributionDay)
	require.NoError(t, err)
	require.Equal(t, uint64(5_000), after.AmountDistributed)
	require.Equal(t, uint64(1), after.InvestorsProcessed)
	require.True(t, after.HasProcessedPage(hash))

	// the day continues from the settled cursor
	_, err = f.engine.ProcessPage(ctx, daily.DistributionDay, []solana.PublicKey{s2})
	require.NoError(t, err)
}

func TestEngineSettlesInterruptedClose(t *testing.T) {
	f := newEngineFixture(t, func(p *distribution.PolicyState) {
		p.InvestorFeeShareBps = 5_000
	})
	ctx := context.Background()

	s1 := f.addStream(t, 1_000_000)

	daily, err := f.engine.StartDay(ctx, []solana.PublicKey{s1})
	require.NoError(t, err)

	_, err = f.engine.ProcessPage(ctx, daily.DistributionDay, []solana.PublicKey{s1})
	require.NoError(t, err)

	// journal a close whose creator transfer went out before the call died
	require.NoError(t, f.store.Update(func(tx *distribution.Tx) error {
		return tx.PutPending(&distribution.PendingOperation{
			QuoteMint:        f.quoteMint,
			Day:              daily.DistributionDay,
			Kind:             distribution.PendingClose,
			CreatorRemainder: 5_000,
		})
	}))

	// the retry settles the close instead of paying the creator again
	err = f.engine.CompleteDay(ctx, daily.DistributionDay)
	require.ErrorIs(t, err, distribution.ErrDayComplete)
	require.Zero(t, f.payouts.creatorPaid)

	after, err := f.engine.Daily(ctx, daily.DistributionDay)
	require.NoError(t, err)
	require.True(t, after.IsComplete)

	global, err := f.engine.Global(ctx)
	require.NoError(t, err)
	require.Equal(t, daily.DistributionDay, global.LastDistributionDay)
	require.Equal(t, uint64(1), global.TotalDistributionsCompleted)
}
