package router

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/ANAVHEOBA/meteora-fee-router/dammv2"
	"github.com/ANAVHEOBA/meteora-fee-router/distribution"
	solanago "github.com/ANAVHEOBA/meteora-fee-router/solana"
)

// InitializeHonoraryPosition creates the fee-accruing position owned by the
// router authority. The pool is validated up front: its collect fee mode
// must route every fee to the configured quote mint, so the position can
// never accrue base token fees. The position's identity is persisted and
// checked on every later claim.
func (r *FeeRouter) InitializeHonoraryPosition(ctx context.Context) (string, error) {
	pool, err := dammv2.FetchPool(ctx, r.rpcClient, r.pool)
	if err != nil {
		return "", err
	}

	side, err := dammv2.ValidateQuoteOnlyPool(pool, r.quoteMint)
	if err != nil {
		return "", err
	}

	positionNft := solana.NewWallet()

	position, err := dammv2.DerivePositionAddress(positionNft.PublicKey())
	if err != nil {
		return "", err
	}

	positionNftAccount, err := dammv2.DerivePositionNftAccount(positionNft.PublicKey())
	if err != nil {
		return "", err
	}

	createIx, err := dammv2.NewCreatePositionInstruction(
		r.authority.PublicKey(),
		positionNft.PublicKey(),
		positionNftAccount,
		r.pool,
		position,
		r.poolAuthority,
		r.payer.PublicKey(),
		solana.Token2022ProgramID,
		solana.SystemProgramID,
		r.eventAuthority,
		dammv2.ProgramID,
	)
	if err != nil {
		return "", err
	}

	sig, err := solanago.SendTransaction(ctx, r.rpcClient, r.wsClient,
		[]solana.Instruction{createIx},
		r.payer, []*solana.Wallet{r.authority, positionNft}, r.bSimulate)
	if err != nil {
		return "", fmt.Errorf("create position: %w", err)
	}

	if err := r.engine.RecordPosition(ctx, &distribution.PositionMetadata{
		Pool:            r.pool,
		Position:        position,
		PositionNftMint: positionNft.PublicKey(),
		QuoteMint:       r.quoteMint,
		QuoteSide:       uint8(side),
	}); err != nil {
		return "", err
	}

	r.log.Info("honorary position created",
		"pool", r.pool,
		"position", position,
		"quote_side", side.String(),
		"signature", sig,
	)
	return sig, nil
}
