package router

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/ANAVHEOBA/meteora-fee-router/dammv2"
	"github.com/ANAVHEOBA/meteora-fee-router/feemath"
	solanago "github.com/ANAVHEOBA/meteora-fee-router/solana"
)

// ClaimFees harvests accrued quote fees from the honorary position into the
// treasury. Cooldown, base-fee rejection and bookkeeping live in the engine;
// this wires the chain flow underneath it.
func (r *FeeRouter) ClaimFees(ctx context.Context) (uint64, error) {
	return r.engine.ClaimFees(ctx)
}

// positionFeeClaimer executes the on-chain claim and reports the amounts of
// each pool token actually received, measured as treasury balance deltas.
type positionFeeClaimer struct {
	r *FeeRouter
}

func (c *positionFeeClaimer) ClaimFees(ctx context.Context) (uint64, uint64, error) {
	r := c.r

	meta, err := r.engine.PositionInfo(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("load position metadata: %w", err)
	}
	if err := r.engine.VerifyPosition(ctx, r.pool, meta.Position); err != nil {
		return 0, 0, err
	}

	pool, err := dammv2.FetchPool(ctx, r.rpcClient, r.pool)
	if err != nil {
		return 0, 0, err
	}

	// Re-validate the pool config on every claim; a pool whose fee mode
	// changed out from under us must not be drained.
	side, err := dammv2.ValidateQuoteOnlyPool(pool, r.quoteMint)
	if err != nil {
		return 0, 0, err
	}

	position, err := dammv2.FetchPosition(ctx, r.rpcClient, meta.Position)
	if err != nil {
		return 0, 0, err
	}
	if !position.Pool.Equals(r.pool) {
		return 0, 0, fmt.Errorf("position %s belongs to pool %s", meta.Position, position.Pool)
	}

	// Any pending base fee disqualifies the claim before a transaction is
	// even built.
	if basePending := side.BasePendingFee(position); basePending > 0 {
		return 0, basePending, nil
	}

	positionNftAccount, err := dammv2.DerivePositionNftAccount(meta.PositionNftMint)
	if err != nil {
		return 0, 0, err
	}

	var instructions []solana.Instruction

	tokenAAccount, err := solanago.PrepareTokenATA(ctx, r.rpcClient, r.authority.PublicKey(), pool.TokenAMint, r.payer.PublicKey(), &instructions)
	if err != nil {
		return 0, 0, err
	}
	tokenBAccount, err := solanago.PrepareTokenATA(ctx, r.rpcClient, r.authority.PublicKey(), pool.TokenBMint, r.payer.PublicKey(), &instructions)
	if err != nil {
		return 0, 0, err
	}

	quoteAccount, baseAccount := tokenBAccount, tokenAAccount
	if side == dammv2.QuoteIsTokenA {
		quoteAccount, baseAccount = tokenAAccount, tokenBAccount
	}

	quoteBefore, err := solanago.GetTokenBalanceAmount(ctx, r.rpcClient, quoteAccount)
	if err != nil {
		return 0, 0, err
	}
	baseBefore, err := solanago.GetTokenBalanceAmount(ctx, r.rpcClient, baseAccount)
	if err != nil {
		return 0, 0, err
	}

	claimIx, err := dammv2.NewClaimPositionFeeInstruction(
		r.poolAuthority,
		r.pool,
		meta.Position,
		tokenAAccount,
		tokenBAccount,
		pool.TokenAVault,
		pool.TokenBVault,
		pool.TokenAMint,
		pool.TokenBMint,
		positionNftAccount,
		r.authority.PublicKey(),
		dammv2.GetTokenProgram(dammv2.TokenType(pool.TokenAFlag)),
		dammv2.GetTokenProgram(dammv2.TokenType(pool.TokenBFlag)),
		r.eventAuthority,
		dammv2.ProgramID,
	)
	if err != nil {
		return 0, 0, err
	}
	instructions = append(instructions, claimIx)

	sig, err := solanago.SendTransaction(ctx, r.rpcClient, r.wsClient, instructions,
		r.payer, []*solana.Wallet{r.authority}, r.bSimulate)
	if err != nil {
		return 0, 0, fmt.Errorf("claim position fee: %w", err)
	}

	quoteAfter, err := solanago.GetTokenBalanceAmount(ctx, r.rpcClient, quoteAccount)
	if err != nil {
		return 0, 0, err
	}
	baseAfter, err := solanago.GetTokenBalanceAmount(ctx, r.rpcClient, baseAccount)
	if err != nil {
		return 0, 0, err
	}

	quoteClaimed := feemath.SaturatingSub(quoteAfter, quoteBefore)
	baseClaimed := feemath.SaturatingSub(baseAfter, baseBefore)
	r.log.Info("position fees claimed",
		"quote_claimed", quoteClaimed,
		"base_claimed", baseClaimed,
		"signature", sig,
	)
	return quoteClaimed, baseClaimed, nil
}
