// Package router is the operator-facing client. It wires the distribution
// engine to Solana RPC: claiming fees from the honorary DAMM v2 position,
// reading Streamflow vesting pages, and executing investor and creator
// payouts from the treasury.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/jonboulle/clockwork"

	"github.com/ANAVHEOBA/meteora-fee-router/dammv2"
	"github.com/ANAVHEOBA/meteora-fee-router/distribution"
	solanago "github.com/ANAVHEOBA/meteora-fee-router/solana"
	"github.com/ANAVHEOBA/meteora-fee-router/solana/token2022"
)

type FeeRouter struct {
	rpcClient *rpc.Client
	wsClient  *ws.Client
	store     *distribution.Store
	engine    *distribution.Engine
	log       *slog.Logger
	clock     clockwork.Clock

	payer     *solana.Wallet
	authority *solana.Wallet

	quoteMint   solana.PublicKey
	vestingMint solana.PublicKey
	pool        solana.PublicKey

	poolAuthority  solana.PublicKey
	eventAuthority solana.PublicKey

	treasuryAccount solana.PublicKey
	quoteDecimals   uint8

	maxPageSize   int
	claimCooldown time.Duration
	bSimulate     bool
}

type Option func(*FeeRouter)

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *FeeRouter) { r.log = log }
}

// WithClock injects the clock used for day gating and claim cooldowns.
func WithClock(clock clockwork.Clock) Option {
	return func(r *FeeRouter) { r.clock = clock }
}

// WithSimulate makes every transaction a simulation instead of a send.
func WithSimulate(simulate bool) Option {
	return func(r *FeeRouter) { r.bSimulate = simulate }
}

// WithMaxPageSize bounds how many investor streams one page may carry.
func WithMaxPageSize(n int) Option {
	return func(r *FeeRouter) { r.maxPageSize = n }
}

// WithClaimCooldown sets the minimum interval between fee claims.
func WithClaimCooldown(d time.Duration) Option {
	return func(r *FeeRouter) { r.claimCooldown = d }
}

// WithVestingMint restricts pages to streams vesting the given mint.
func WithVestingMint(mint solana.PublicKey) Option {
	return func(r *FeeRouter) { r.vestingMint = mint }
}

// NewFeeRouter builds the client. authority owns the honorary position and
// the treasury token account; payer funds transactions.
func NewFeeRouter(
	ctx context.Context,
	rpcClient *rpc.Client,
	wsClient *ws.Client,
	store *distribution.Store,
	payer *solana.Wallet,
	authority *solana.Wallet,
	quoteMint solana.PublicKey,
	pool solana.PublicKey,
	opts ...Option,
) (*FeeRouter, error) {
	r := &FeeRouter{
		rpcClient:     rpcClient,
		wsClient:      wsClient,
		store:         store,
		payer:         payer,
		authority:     authority,
		quoteMint:     quoteMint,
		pool:          pool,
		log:           slog.Default(),
		clock:         clockwork.NewRealClock(),
		maxPageSize:   distribution.DefaultMaxPageSize,
		claimCooldown: distribution.DefaultClaimCooldown,
		bSimulate:     solanago.IsSimulate,
	}
	for _, fn := range opts {
		fn(r)
	}

	var err error
	if r.poolAuthority, err = dammv2.DerivePoolAuthorityPDA(); err != nil {
		return nil, err
	}
	if r.eventAuthority, err = dammv2.DeriveEventAuthorityPDA(); err != nil {
		return nil, err
	}

	// The treasury is the authority's quote ATA; claimed fees land there
	// directly and payouts leave from there.
	r.treasuryAccount, _, err = solana.FindAssociatedTokenAddress(authority.PublicKey(), quoteMint)
	if err != nil {
		return nil, err
	}

	var mint *solanago.Token
	if r.vestingMint.IsZero() {
		mint, err = solanago.GetToken(ctx, rpcClient, quoteMint)
		if err != nil {
			return nil, fmt.Errorf("fetch quote mint %s: %w", quoteMint, err)
		}
	} else {
		mints, err := solanago.GetMultipleToken(ctx, rpcClient, quoteMint, r.vestingMint)
		if err != nil {
			return nil, fmt.Errorf("fetch mints: %w", err)
		}
		if mints[0] == nil {
			return nil, fmt.Errorf("quote mint %s not found", quoteMint)
		}
		if mints[1] == nil {
			return nil, fmt.Errorf("vesting mint %s not found", r.vestingMint)
		}
		mint = mints[0]
	}
	r.quoteDecimals = mint.Decimals

	// A Token-2022 quote mint with a transfer fee delivers payouts net of
	// the fee; surface the rate so the operator knows amounts will differ.
	if mint.Owner.Equals(solana.Token2022ProgramID) {
		if cfg, err := token2022.GetTransferFeeConfig(ctx, rpcClient, quoteMint); err == nil && cfg != nil {
			epoch, err := solanago.GetCurrentEpoch(ctx, rpcClient)
			if err == nil {
				if fee := token2022.GetEpochFee(cfg, epoch); fee.BasisPoints > 0 {
					r.log.Warn("quote mint charges a transfer fee",
						"basis_points", fee.BasisPoints,
						"maximum_fee", fee.MaximumFee,
					)
				}
			}
		}
	}

	r.engine, err = distribution.New(distribution.Config{
		Logger:        r.log,
		Clock:         r.clock,
		Store:         store,
		Vesting:       &rpcVestingReader{rpcClient: rpcClient},
		Payouts:       &rpcPayoutExecutor{r: r},
		Claimer:       &positionFeeClaimer{r: r},
		Treasury:      &rpcTreasuryReader{rpcClient: rpcClient},
		QuoteMint:     quoteMint,
		VestingMint:   r.vestingMint,
		MaxPageSize:   r.maxPageSize,
		ClaimCooldown: r.claimCooldown,
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Engine exposes the underlying state machine for status reads.
func (r *FeeRouter) Engine() *distribution.Engine {
	return r.engine
}

// TreasuryAccount is the quote token account fees are claimed into.
func (r *FeeRouter) TreasuryAccount() solana.PublicKey {
	return r.treasuryAccount
}

// QuoteDecimals is the quote mint's decimal count, for display conversion.
func (r *FeeRouter) QuoteDecimals() uint8 {
	return r.quoteDecimals
}

// InitializePolicy persists the distribution policy for the quote mint.
func (r *FeeRouter) InitializePolicy(ctx context.Context,
	creator solana.PublicKey,
	investorFeeShareBps uint64,
	dailyCap uint64,
	minPayout uint64,
	initialTotalAllocation uint64,
) error {
	return r.engine.InitializePolicy(ctx, &distribution.PolicyState{
		QuoteMint:              r.quoteMint,
		CreatorAccount:         creator,
		PolicyAuthority:        r.authority.PublicKey(),
		InvestorFeeShareBps:    investorFeeShareBps,
		DailyCapAmount:         dailyCap,
		MinPayoutAmount:        minPayout,
		InitialTotalAllocation: initialTotalAllocation,
	})
}

// InitializeGlobal creates the lifetime totals record.
func (r *FeeRouter) InitializeGlobal(ctx context.Context) error {
	return r.engine.InitializeGlobal(ctx)
}

// InitializeTreasury ensures the treasury token account exists on chain and
// records it.
func (r *FeeRouter) InitializeTreasury(ctx context.Context) error {
	var instructions []solana.Instruction
	_, err := solanago.PrepareTokenATA(ctx, r.rpcClient, r.authority.PublicKey(), r.quoteMint, r.payer.PublicKey(), &instructions)
	if err != nil {
		return err
	}
	if len(instructions) > 0 {
		if _, err = solanago.SendTransaction(ctx, r.rpcClient, r.wsClient, instructions,
			r.payer, []*solana.Wallet{r.authority}, r.bSimulate); err != nil {
			return fmt.Errorf("create treasury account: %w", err)
		}
	}
	return r.engine.InitializeTreasury(ctx, r.treasuryAccount, r.authority.PublicKey())
}
