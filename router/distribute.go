package router

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/gagliardetto/solana-go"

	"github.com/ANAVHEOBA/meteora-fee-router/distribution"
	solanago "github.com/ANAVHEOBA/meteora-fee-router/solana"
	"github.com/ANAVHEOBA/meteora-fee-router/streamflow"
)

// ListInvestorStreams enumerates the vesting stream accounts for the
// configured vesting mint, in a deterministic order so every caller pages
// through the same sequence.
func (r *FeeRouter) ListInvestorStreams(ctx context.Context) ([]solana.PublicKey, error) {
	if r.vestingMint.IsZero() {
		return nil, errors.New("router: vesting mint not configured")
	}

	opts := solanago.GenMemcmpFilter(streamflow.MintOffset, r.vestingMint.Bytes())
	out, err := r.rpcClient.GetProgramAccountsWithOpts(ctx, streamflow.ProgramID, opts)
	if err != nil {
		return nil, fmt.Errorf("list vesting streams: %w", err)
	}

	streams := make([]solana.PublicKey, 0, len(out))
	for _, account := range out {
		streams = append(streams, account.Pubkey)
	}
	sort.Slice(streams, func(i, j int) bool {
		return bytes.Compare(streams[i][:], streams[j][:]) < 0
	})
	return streams, nil
}

// StartDay opens today's distribution. The current set of vesting streams is
// frozen into the day record; pages walk that set, so streams created after
// the start cannot join or reorder the day.
func (r *FeeRouter) StartDay(ctx context.Context) (*distribution.DailyDistributionState, error) {
	streams, err := r.ListInvestorStreams(ctx)
	if err != nil {
		return nil, err
	}
	return r.engine.StartDay(ctx, streams)
}

// ProcessPage distributes one page of investor streams on the given day.
func (r *FeeRouter) ProcessPage(ctx context.Context, day int64, page []solana.PublicKey) (*distribution.PageResult, error) {
	return r.engine.ProcessPage(ctx, day, page)
}

// CompleteDay closes the given day, paying the remainder to the creator.
func (r *FeeRouter) CompleteDay(ctx context.Context, day int64) error {
	return r.engine.CompleteDay(ctx, day)
}

// AbortDay force-closes a stuck day. Only the policy authority may abort.
func (r *FeeRouter) AbortDay(ctx context.Context, day int64) error {
	return r.engine.AbortDay(ctx, day, r.authority.PublicKey())
}

// DistributeDay runs a whole day end to end: start, page through every
// investor stream, complete. Each step commits independently; on failure the
// day can be resumed with the individual operations.
func (r *FeeRouter) DistributeDay(ctx context.Context) error {
	daily, err := r.StartDay(ctx)
	if err != nil {
		return err
	}

	streams := daily.InvestorStreams
	for start := 0; start < len(streams); start += r.maxPageSize {
		end := start + r.maxPageSize
		if end > len(streams) {
			end = len(streams)
		}
		if _, err := r.engine.ProcessPage(ctx, daily.DistributionDay, streams[start:end]); err != nil {
			return fmt.Errorf("process page at cursor %d: %w", start, err)
		}
	}

	return r.engine.CompleteDay(ctx, daily.DistributionDay)
}
