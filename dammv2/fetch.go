package dammv2

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// FetchPool fetches and decodes a cp-amm pool account.
func FetchPool(ctx context.Context, rpcClient *rpc.Client, address solana.PublicKey) (*Pool, error) {
	out, err := rpcClient.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch pool %s: %w", address, err)
	}
	if out == nil || out.Value == nil {
		return nil, fmt.Errorf("pool %s not found", address)
	}
	pool, err := ParsePool(out.Value.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("decode pool %s: %w", address, err)
	}

	// The vaults are PDAs of (mint, pool); a pool whose recorded vaults do
	// not derive was not created by cp-amm.
	vaultA, err := DeriveTokenVaultAddress(pool.TokenAMint, address)
	if err != nil {
		return nil, err
	}
	vaultB, err := DeriveTokenVaultAddress(pool.TokenBMint, address)
	if err != nil {
		return nil, err
	}
	if !pool.TokenAVault.Equals(vaultA) || !pool.TokenBVault.Equals(vaultB) {
		return nil, fmt.Errorf("pool %s token vaults do not match their derived addresses", address)
	}
	return pool, nil
}

// FetchPosition fetches and decodes a cp-amm position account.
func FetchPosition(ctx context.Context, rpcClient *rpc.Client, address solana.PublicKey) (*Position, error) {
	out, err := rpcClient.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch position %s: %w", address, err)
	}
	if out == nil || out.Value == nil {
		return nil, fmt.Errorf("position %s not found", address)
	}
	position, err := ParsePosition(out.Value.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("decode position %s: %w", address, err)
	}
	return position, nil
}
