package distribution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"

	"github.com/ANAVHEOBA/meteora-fee-router/feemath"
	"github.com/ANAVHEOBA/meteora-fee-router/streamflow"
)

// DefaultMaxPageSize bounds how many investor streams one page may carry.
const DefaultMaxPageSize = 50

// DefaultClaimCooldown is the minimum interval between fee claims.
const DefaultClaimCooldown = time.Hour

// VestingReader fetches raw vesting stream accounts for a page.
type VestingReader interface {
	ReadStreams(ctx context.Context, streams []solana.PublicKey) ([]streamflow.StreamAccount, error)
}

// PayoutExecutor moves quote tokens out of the treasury. PayInvestors skips
// zero-amount payouts, returns how many transfers failed, and returns an
// error only when the page as a whole could not be executed.
type PayoutExecutor interface {
	PayInvestors(ctx context.Context, payouts []InvestorPayout) (failed uint64, err error)
	PayCreator(ctx context.Context, creator solana.PublicKey, amount uint64) error
}

// FeeClaimer drains accrued fees from the honorary position into the
// treasury and reports how much of each pool token was claimed.
type FeeClaimer interface {
	ClaimFees(ctx context.Context) (quoteClaimed, baseClaimed uint64, err error)
}

// TreasuryReader reads the treasury token account balance.
type TreasuryReader interface {
	Balance(ctx context.Context, account solana.PublicKey) (uint64, error)
}

// Config wires the engine's collaborators.
type Config struct {
	Logger   *slog.Logger
	Clock    clockwork.Clock
	Store    *Store
	Vesting  VestingReader
	Payouts  PayoutExecutor
	Claimer  FeeClaimer
	Treasury TreasuryReader

	QuoteMint solana.PublicKey
	// VestingMint, when set, is checked against each stream's mint. Zero
	// disables the check.
	VestingMint solana.PublicKey

	MaxPageSize   int
	ClaimCooldown time.Duration
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Clock == nil {
		return errors.New("clock is required")
	}
	if c.Store == nil {
		return errors.New("store is required")
	}
	if c.Vesting == nil {
		return errors.New("vesting reader is required")
	}
	if c.Payouts == nil {
		return errors.New("payout executor is required")
	}
	if c.Treasury == nil {
		return errors.New("treasury reader is required")
	}
	if c.QuoteMint.IsZero() {
		return errors.New("quote mint is required")
	}
	return nil
}

// Engine is the daily distribution state machine. Every operation runs in a
// single store transaction: it either fully commits or leaves no trace, so
// any failed call can be retried from unchanged state.
type Engine struct {
	cfg Config
	log *slog.Logger
}

func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("distribution: invalid config: %w", err)
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = DefaultMaxPageSize
	}
	if cfg.ClaimCooldown <= 0 {
		cfg.ClaimCooldown = DefaultClaimCooldown
	}
	return &Engine{
		cfg: cfg,
		log: cfg.Logger.With("component", "distribution"),
	}, nil
}

// InitializePolicy persists the distribution policy. One-time; fails if a
// policy already exists for the quote mint.
func (e *Engine) InitializePolicy(ctx context.Context, policy *PolicyState) error {
	if !policy.QuoteMint.Equals(e.cfg.QuoteMint) {
		return fmt.Errorf("%w: policy %s, engine %s", ErrQuoteMintMismatch, policy.QuoteMint, e.cfg.QuoteMint)
	}
	if err := policy.Validate(); err != nil {
		return err
	}
	policy.CreatedAt = e.cfg.Clock.Now().Unix()
	return e.cfg.Store.Update(func(tx *Tx) error {
		return tx.CreatePolicy(policy)
	})
}

// InitializeGlobal creates the lifetime totals record.
func (e *Engine) InitializeGlobal(ctx context.Context) error {
	return e.cfg.Store.Update(func(tx *Tx) error {
		return tx.CreateGlobal(&GlobalDistributionState{QuoteMint: e.cfg.QuoteMint})
	})
}

// InitializeTreasury records the treasury token account fees are claimed
// into.
func (e *Engine) InitializeTreasury(ctx context.Context, treasuryAccount, claimAuthority solana.PublicKey) error {
	return e.cfg.Store.Update(func(tx *Tx) error {
		return tx.CreateTreasury(&TreasuryState{
			QuoteMint:       e.cfg.QuoteMint,
			TreasuryAccount: treasuryAccount,
			ClaimAuthority:  claimAuthority,
		})
	})
}

// RecordPosition persists the honorary position's metadata so later claims
// can verify they drain the position that was actually created.
func (e *Engine) RecordPosition(ctx context.Context, meta *PositionMetadata) error {
	if !meta.QuoteMint.Equals(e.cfg.QuoteMint) {
		return fmt.Errorf("%w: position %s, engine %s", ErrQuoteMintMismatch, meta.QuoteMint, e.cfg.QuoteMint)
	}
	meta.CreatedAt = e.cfg.Clock.Now().Unix()
	return e.cfg.Store.Update(func(tx *Tx) error {
		return tx.CreatePosition(meta)
	})
}

// VerifyPosition checks a pool/position pair against the recorded metadata.
func (e *Engine) VerifyPosition(ctx context.Context, pool, position solana.PublicKey) error {
	return e.cfg.Store.View(func(tx *Tx) error {
		meta, err := tx.Position(e.cfg.QuoteMint)
		if err != nil {
			return err
		}
		if !meta.Pool.Equals(pool) || !meta.Position.Equals(position) {
			return fmt.Errorf("%w: recorded pool %s position %s", ErrPositionMetadataMismatch, meta.Pool, meta.Position)
		}
		return nil
	})
}

// ClaimFees harvests accrued position fees into the treasury. The claim is
// rejected outright if the position produced any base token fees or if the
// treasury balance after the claim does not cover the claimed amount.
func (e *Engine) ClaimFees(ctx context.Context) (uint64, error) {
	if e.cfg.Claimer == nil {
		return 0, errors.New("distribution: no fee claimer configured")
	}
	var claimed uint64
	err := e.cfg.Store.Update(func(tx *Tx) error {
		treasury, err := tx.Treasury(e.cfg.QuoteMint)
		if err != nil {
			return err
		}
		now := e.cfg.Clock.Now()
		if treasury.LastClaimTimestamp > 0 {
			nextAllowed := treasury.LastClaimTimestamp + int64(e.cfg.ClaimCooldown/time.Second)
			if now.Unix() < nextAllowed {
				return fmt.Errorf("%w: next claim at %d", ErrClaimCooldown, nextAllowed)
			}
		}

		balanceBefore, err := e.cfg.Treasury.Balance(ctx, treasury.TreasuryAccount)
		if err != nil {
			return fmt.Errorf("read treasury balance: %w", err)
		}

		quoteClaimed, baseClaimed, err := e.cfg.Claimer.ClaimFees(ctx)
		if err != nil {
			return fmt.Errorf("claim fees: %w", err)
		}
		if baseClaimed != 0 {
			return fmt.Errorf("%w: %d base tokens claimed", ErrBaseFeesClaimed, baseClaimed)
		}

		balanceAfter, err := e.cfg.Treasury.Balance(ctx, treasury.TreasuryAccount)
		if err != nil {
			return fmt.Errorf("read treasury balance: %w", err)
		}
		if balanceAfter < feemath.SaturatingAdd(balanceBefore, quoteClaimed) {
			return fmt.Errorf("%w: before %d claimed %d after %d", ErrTreasuryBalanceMismatch, balanceBefore, quoteClaimed, balanceAfter)
		}

		treasury.TotalFeesClaimed = feemath.SaturatingAdd(treasury.TotalFeesClaimed, quoteClaimed)
		treasury.LastClaimTimestamp = now.Unix()
		treasury.ClaimCount++
		claimed = quoteClaimed
		if err := tx.PutTreasury(treasury); err != nil {
			return err
		}
		e.emit(FeesClaimed{
			QuoteMint:    e.cfg.QuoteMint,
			QuoteClaimed: quoteClaimed,
			TotalClaimed: treasury.TotalFeesClaimed,
			ClaimCount:   treasury.ClaimCount,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return claimed, nil
}

// StartDay opens a new distribution day over the given ordered investor
// stream set. At most one distribution per calendar day; the treasury must
// hold something to distribute. The stream set and the policy's cap, minimum
// and share are frozen into the day record.
func (e *Engine) StartDay(ctx context.Context, streams []solana.PublicKey) (*DailyDistributionState, error) {
	now := e.cfg.Clock.Now().Unix()
	day := feemath.DayStart(now)

	var daily *DailyDistributionState
	err := e.cfg.Store.Update(func(tx *Tx) error {
		policy, err := tx.Policy(e.cfg.QuoteMint)
		if err != nil {
			return fmt.Errorf("load policy: %w", err)
		}
		global, err := tx.Global(e.cfg.QuoteMint)
		if err != nil {
			return fmt.Errorf("load global state: %w", err)
		}
		if day <= global.LastDistributionDay {
			return fmt.Errorf("%w: last distribution day %d", ErrTooSoonToDistribute, global.LastDistributionDay)
		}
		if _, err := tx.Daily(e.cfg.QuoteMint, day); err == nil {
			return ErrDayAlreadyStarted
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		treasury, err := tx.Treasury(e.cfg.QuoteMint)
		if err != nil {
			return fmt.Errorf("load treasury: %w", err)
		}
		balance, err := e.cfg.Treasury.Balance(ctx, treasury.TreasuryAccount)
		if err != nil {
			return fmt.Errorf("read treasury balance: %w", err)
		}
		if balance == 0 {
			return ErrNothingToDistribute
		}

		daily = &DailyDistributionState{
			QuoteMint:               e.cfg.QuoteMint,
			DistributionDay:         day,
			TreasuryAccount:         treasury.TreasuryAccount,
			InvestorStreams:         streams,
			TotalAmountToDistribute: balance,
			TotalInvestors:          uint64(len(streams)),
			DailyCapTotal:           policy.DailyCapAmount,
			DailyCapRemaining:       policy.DailyCapAmount,
			MinPayoutThreshold:      policy.MinPayoutAmount,
			InitialTotalDeposit:     policy.InitialTotalAllocation,
			InvestorFeeShareBps:     policy.InvestorFeeShareBps,
			StartedAt:               now,
		}
		if err := tx.CreateDaily(daily); err != nil {
			return err
		}
		e.emit(DayStarted{
			Day:            day,
			TotalAmount:    balance,
			TotalInvestors: uint64(len(streams)),
			DailyCap:       policy.DailyCapAmount,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return daily, nil
}

// PageResult reports what one accepted page did.
type PageResult struct {
	Day            int64
	PageHash       [32]byte
	Calculation    *DistributionCalculation
	SnapshotErrors []*streamflow.SnapshotError
	FailedPayouts  uint64
}

// ProcessPage distributes one page of investors on an open day. The page
// must be the next window of the stream set frozen at day start, and its
// digest must not match any page already accepted today. The payout intent
// is journaled before the transfers go out: a crash mid-payout is settled as
// paid on the next call, a clean payout failure leaves the day record
// exactly as it was so the caller can resubmit the same page.
func (e *Engine) ProcessPage(ctx context.Context, day int64, page []solana.PublicKey) (*PageResult, error) {
	day = feemath.DayStart(day)
	if len(page) == 0 {
		return nil, ErrEmptyPage
	}
	if len(page) > e.cfg.MaxPageSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrPageTooLarge, len(page), e.cfg.MaxPageSize)
	}
	hash := PageDigest(page)

	if err := e.settleDay(day); err != nil {
		return nil, err
	}

	var (
		calc     *DistributionCalculation
		snapErrs []*streamflow.SnapshotError
	)
	err := e.cfg.Store.Update(func(tx *Tx) error {
		daily, err := e.openDay(tx, day)
		if err != nil {
			return err
		}
		// duplicate detection outranks the roster check so an already
		// processed page is reported as such even after the day is exhausted
		if daily.HasProcessedPage(hash) {
			return ErrDuplicatePage
		}
		if daily.RemainingInvestors() == 0 {
			return ErrNoInvestorsRemaining
		}
		expected := daily.NextPage(len(page))
		if len(expected) != len(page) {
			return fmt.Errorf("%w: %d streams submitted, %d remain", ErrPageMismatch, len(page), len(expected))
		}
		for i := range page {
			if !page[i].Equals(expected[i]) {
				return fmt.Errorf("%w: stream %s at index %d, recorded %s", ErrPageMismatch, page[i], i, expected[i])
			}
		}

		accounts, err := e.cfg.Vesting.ReadStreams(ctx, page)
		if err != nil {
			return fmt.Errorf("read vesting streams: %w", err)
		}

		now := uint64(e.cfg.Clock.Now().Unix())
		var snapshots []*streamflow.InvestorSnapshot
		var totalLocked uint64
		snapshots, totalLocked, snapErrs = streamflow.SnapshotPage(accounts, now, e.cfg.VestingMint, e.cfg.QuoteMint)
		for _, se := range snapErrs {
			e.log.Warn("investor snapshot failed",
				"stream", se.Stream,
				"kind", se.Kind.String(),
				"detail", se.Message,
			)
		}

		available := daily.AvailableAmount()
		calc = Calculate(available, snapshots, totalLocked,
			daily.InitialTotalDeposit, daily.InvestorFeeShareBps, daily.MinPayoutThreshold)
		if daily.DailyCapTotal > 0 {
			calc = ApplyDailyCap(calc, daily.DailyCapRemaining)
		}
		if err := ValidateCalculation(calc, available); err != nil {
			return fmt.Errorf("calculation invariant: %w", err)
		}

		return tx.PutPending(&PendingOperation{
			QuoteMint:       e.cfg.QuoteMint,
			Day:             day,
			Kind:            PendingPage,
			PageHash:        hash,
			InvestorsInPage: uint64(len(page)),
			AmountPaid:      calc.TotalDistributed,
			Dust:            calc.DustAmount,
			CreatedAt:       e.cfg.Clock.Now().Unix(),
		})
	})
	if err != nil {
		return nil, err
	}

	failed, payErr := e.cfg.Payouts.PayInvestors(ctx, calc.Payouts)

	var result *PageResult
	err = e.cfg.Store.Update(func(tx *Tx) error {
		if payErr != nil {
			return tx.DeletePending(e.cfg.QuoteMint, day)
		}
		daily, err := tx.Daily(e.cfg.QuoteMint, day)
		if err != nil {
			return err
		}
		daily.ApplyPage(hash, uint64(len(page)), calc.TotalDistributed, calc.DustAmount, failed)
		if err := daily.CheckInvariants(); err != nil {
			return err
		}
		if err := tx.PutDaily(daily); err != nil {
			return err
		}
		if err := tx.DeletePending(e.cfg.QuoteMint, day); err != nil {
			return err
		}

		result = &PageResult{
			Day:            day,
			PageHash:       hash,
			Calculation:    calc,
			SnapshotErrors: snapErrs,
			FailedPayouts:  failed,
		}
		e.emit(PageProcessed{
			Day:            day,
			Page:           daily.PagesProcessed,
			Investors:      uint64(len(page)),
			AmountPaid:     calc.TotalDistributed,
			Dust:           calc.DustAmount,
			CapApplied:     calc.CapApplied,
			FailedPayouts:  failed,
			SnapshotErrors: uint64(len(snapErrs)),
		})
		return nil
	})
	if payErr != nil {
		if err != nil {
			e.log.Error("payout failed and its journal entry could not be cleared",
				"day", day, "err", err)
		}
		return nil, fmt.Errorf("execute payouts: %w", payErr)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CompleteDay closes an open day once every investor has been processed.
// The undistributed remainder, dust included, is paid to the creator, the
// completion latch is set, and the day's totals roll into the global record.
func (e *Engine) CompleteDay(ctx context.Context, day int64) error {
	day = feemath.DayStart(day)
	if err := e.settleDay(day); err != nil {
		return err
	}

	var (
		creator   solana.PublicKey
		remainder uint64
	)
	err := e.cfg.Store.Update(func(tx *Tx) error {
		daily, err := e.openDay(tx, day)
		if err != nil {
			return err
		}
		if daily.RemainingInvestors() > 0 {
			return fmt.Errorf("%w: %d of %d processed", ErrInvestorsRemaining, daily.InvestorsProcessed, daily.TotalInvestors)
		}
		policy, err := tx.Policy(e.cfg.QuoteMint)
		if err != nil {
			return fmt.Errorf("load policy: %w", err)
		}
		creator = policy.CreatorAccount
		remainder = daily.AvailableAmount()
		return tx.PutPending(&PendingOperation{
			QuoteMint:        e.cfg.QuoteMint,
			Day:              day,
			Kind:             PendingClose,
			CreatorRemainder: remainder,
			CreatedAt:        e.cfg.Clock.Now().Unix(),
		})
	})
	if err != nil {
		return err
	}
	return e.settleClose(ctx, day, creator, remainder, false)
}

// AbortDay force-closes a day that cannot make progress. Only the policy
// authority may abort; the undistributed remainder goes to the creator and
// the day counts as completed so the next day can start.
func (e *Engine) AbortDay(ctx context.Context, day int64, authority solana.PublicKey) error {
	day = feemath.DayStart(day)
	if err := e.settleDay(day); err != nil {
		return err
	}

	var (
		creator   solana.PublicKey
		remainder uint64
	)
	err := e.cfg.Store.Update(func(tx *Tx) error {
		policy, err := tx.Policy(e.cfg.QuoteMint)
		if err != nil {
			return fmt.Errorf("load policy: %w", err)
		}
		if !authority.Equals(policy.PolicyAuthority) {
			return ErrUnauthorized
		}
		daily, err := e.openDay(tx, day)
		if err != nil {
			return err
		}
		creator = policy.CreatorAccount
		remainder = daily.AvailableAmount()
		return tx.PutPending(&PendingOperation{
			QuoteMint:        e.cfg.QuoteMint,
			Day:              day,
			Kind:             PendingClose,
			CreatorRemainder: remainder,
			Aborted:          true,
			CreatedAt:        e.cfg.Clock.Now().Unix(),
		})
	})
	if err != nil {
		return err
	}
	return e.settleClose(ctx, day, creator, remainder, true)
}

// openDay loads a day record and rejects completed days.
func (e *Engine) openDay(tx *Tx, day int64) (*DailyDistributionState, error) {
	daily, err := tx.Daily(e.cfg.QuoteMint, day)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrDayNotStarted
	} else if err != nil {
		return nil, err
	}
	if daily.IsComplete {
		return nil, ErrDayComplete
	}
	return daily, nil
}

// settleDay commits any surviving journal entry for the day in its own
// transaction, so the settlement sticks even when the current call is
// rejected afterwards.
func (e *Engine) settleDay(day int64) error {
	return e.cfg.Store.Update(func(tx *Tx) error {
		daily, err := tx.Daily(e.cfg.QuoteMint, day)
		if errors.Is(err, ErrNotFound) {
			return nil
		} else if err != nil {
			return err
		}
		return e.settlePending(tx, daily)
	})
}

// settlePending folds a surviving journal entry into the day record. The
// journaled transfer may have reached the chain before the previous call
// died; settling it as paid can shortchange a transfer that never landed,
// but never pays the same page or remainder twice.
func (e *Engine) settlePending(tx *Tx, daily *DailyDistributionState) error {
	pending, err := tx.Pending(e.cfg.QuoteMint, daily.DistributionDay)
	if errors.Is(err, ErrNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	switch pending.Kind {
	case PendingPage:
		e.log.Warn("settling interrupted page as paid",
			"day", daily.DistributionDay,
			"amount", pending.AmountPaid,
		)
		daily.ApplyPage(pending.PageHash, pending.InvestorsInPage, pending.AmountPaid, pending.Dust, pending.FailedPayouts)
		if err := daily.CheckInvariants(); err != nil {
			return err
		}
		if err := tx.PutDaily(daily); err != nil {
			return err
		}
	case PendingClose:
		e.log.Warn("settling interrupted close as paid",
			"day", daily.DistributionDay,
			"creator_remainder", pending.CreatorRemainder,
		)
		if err := e.finalizeDay(tx, daily, pending.CreatorRemainder, pending.Aborted); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown pending operation kind %d", pending.Kind)
	}
	return tx.DeletePending(e.cfg.QuoteMint, daily.DistributionDay)
}

// settleClose executes the journaled creator payout and finalizes the day,
// or clears the journal when the payout cleanly failed.
func (e *Engine) settleClose(ctx context.Context, day int64, creator solana.PublicKey, remainder uint64, aborted bool) error {
	var payErr error
	if remainder > 0 {
		payErr = e.cfg.Payouts.PayCreator(ctx, creator, remainder)
	}

	err := e.cfg.Store.Update(func(tx *Tx) error {
		if payErr != nil {
			return tx.DeletePending(e.cfg.QuoteMint, day)
		}
		daily, err := tx.Daily(e.cfg.QuoteMint, day)
		if err != nil {
			return err
		}
		if err := e.finalizeDay(tx, daily, remainder, aborted); err != nil {
			return err
		}
		return tx.DeletePending(e.cfg.QuoteMint, day)
	})
	if payErr != nil {
		if err != nil {
			e.log.Error("creator payout failed and its journal entry could not be cleared",
				"day", day, "err", err)
		}
		return fmt.Errorf("pay creator remainder: %w", payErr)
	}
	return err
}

// finalizeDay latches the day complete and rolls its totals into the global
// record. The creator transfer has already happened (or been settled).
func (e *Engine) finalizeDay(tx *Tx, daily *DailyDistributionState, remainder uint64, aborted bool) error {
	policy, err := tx.Policy(e.cfg.QuoteMint)
	if err != nil {
		return fmt.Errorf("load policy: %w", err)
	}

	if aborted {
		daily.Aborted = true
	}
	daily.Complete(e.cfg.Clock.Now().Unix())
	if err := tx.PutDaily(daily); err != nil {
		return err
	}

	global, err := tx.Global(e.cfg.QuoteMint)
	if err != nil {
		return fmt.Errorf("load global state: %w", err)
	}
	if daily.DistributionDay > global.LastDistributionDay {
		global.LastDistributionDay = daily.DistributionDay
	}
	global.TotalDistributionsCompleted++
	global.LifetimeAmountDistributed = feemath.SaturatingAdd(global.LifetimeAmountDistributed, daily.AmountDistributed)
	if err := tx.PutGlobal(global); err != nil {
		return err
	}

	if remainder > 0 {
		e.emit(CreatorPaid{Day: daily.DistributionDay, Creator: policy.CreatorAccount, Amount: remainder})
	}
	e.emit(DayCompleted{
		Day:               daily.DistributionDay,
		AmountToInvestors: daily.AmountDistributed,
		CreatorRemainder:  remainder,
		PagesProcessed:    daily.PagesProcessed,
		Aborted:           aborted,
	})
	return nil
}

// Policy returns the persisted policy.
func (e *Engine) Policy(ctx context.Context) (*PolicyState, error) {
	var p *PolicyState
	err := e.cfg.Store.View(func(tx *Tx) error {
		var err error
		p, err = tx.Policy(e.cfg.QuoteMint)
		return err
	})
	return p, err
}

// Global returns the lifetime totals record.
func (e *Engine) Global(ctx context.Context) (*GlobalDistributionState, error) {
	var g *GlobalDistributionState
	err := e.cfg.Store.View(func(tx *Tx) error {
		var err error
		g, err = tx.Global(e.cfg.QuoteMint)
		return err
	})
	return g, err
}

// Daily returns a day record.
func (e *Engine) Daily(ctx context.Context, day int64) (*DailyDistributionState, error) {
	var d *DailyDistributionState
	err := e.cfg.Store.View(func(tx *Tx) error {
		var err error
		d, err = tx.Daily(e.cfg.QuoteMint, feemath.DayStart(day))
		return err
	})
	return d, err
}

// PositionInfo returns the recorded honorary position metadata.
func (e *Engine) PositionInfo(ctx context.Context) (*PositionMetadata, error) {
	var p *PositionMetadata
	err := e.cfg.Store.View(func(tx *Tx) error {
		var err error
		p, err = tx.Position(e.cfg.QuoteMint)
		return err
	})
	return p, err
}

// TreasuryInfo returns the treasury bookkeeping record.
func (e *Engine) TreasuryInfo(ctx context.Context) (*TreasuryState, error) {
	var t *TreasuryState
	err := e.cfg.Store.View(func(tx *Tx) error {
		var err error
		t, err = tx.Treasury(e.cfg.QuoteMint)
		return err
	})
	return t, err
}
