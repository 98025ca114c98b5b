package router

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/ANAVHEOBA/meteora-fee-router/distribution"
	solanago "github.com/ANAVHEOBA/meteora-fee-router/solana"
	"github.com/ANAVHEOBA/meteora-fee-router/streamflow"
)

// rpcVestingReader fetches raw stream accounts for a page in one
// getMultipleAccounts call.
type rpcVestingReader struct {
	rpcClient *rpc.Client
}

func (v *rpcVestingReader) ReadStreams(ctx context.Context, streams []solana.PublicKey) ([]streamflow.StreamAccount, error) {
	outs, err := solanago.GetMultipleAccountInfo(ctx, v.rpcClient, streams)
	if err != nil {
		return nil, err
	}
	accounts := make([]streamflow.StreamAccount, len(streams))
	for i, out := range outs.Value {
		accounts[i].Address = streams[i]
		if out != nil {
			accounts[i].Data = out.Data.GetBinary()
		}
	}
	return accounts, nil
}

// rpcTreasuryReader reads the treasury token account balance.
type rpcTreasuryReader struct {
	rpcClient *rpc.Client
}

func (t *rpcTreasuryReader) Balance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	return solanago.GetTokenBalanceAmount(ctx, t.rpcClient, account)
}

// rpcPayoutExecutor moves quote tokens out of the treasury. A whole page of
// investor payouts goes into a single transaction so the page commits or
// fails as a unit, matching the engine's all-or-nothing page semantics.
type rpcPayoutExecutor struct {
	r *FeeRouter
}

func (p *rpcPayoutExecutor) PayInvestors(ctx context.Context, payouts []distribution.InvestorPayout) (uint64, error) {
	r := p.r

	var instructions []solana.Instruction
	count := 0
	for _, payout := range payouts {
		if payout.PayoutAmount == 0 {
			continue
		}
		payoutAccount, err := solanago.PrepareTokenATA(ctx, r.rpcClient, payout.Investor, r.quoteMint, r.payer.PublicKey(), &instructions)
		if err != nil {
			return 0, fmt.Errorf("prepare payout account for %s: %w", payout.Investor, err)
		}
		instructions = append(instructions, solanago.TransferToAccountInstruction(
			r.treasuryAccount,
			payoutAccount,
			r.quoteMint,
			r.authority.PublicKey(),
			r.quoteDecimals,
			payout.PayoutAmount,
		))
		count++
	}
	if count == 0 {
		return 0, nil
	}

	instructions = solanago.MergeInstructions(instructions)

	sig, err := solanago.SendTransaction(ctx, r.rpcClient, r.wsClient, instructions,
		r.payer, []*solana.Wallet{r.authority}, r.bSimulate)
	if err != nil {
		return 0, err
	}
	r.log.Info("investor payouts sent", "count", count, "signature", sig)
	return 0, nil
}

func (p *rpcPayoutExecutor) PayCreator(ctx context.Context, creator solana.PublicKey, amount uint64) error {
	r := p.r

	instructions, err := solanago.TransferInstruction(ctx, r.rpcClient,
		r.payer.PublicKey(),
		r.authority.PublicKey(),
		r.authority.PublicKey(),
		creator,
		r.quoteMint,
		r.quoteDecimals,
		amount,
	)
	if err != nil {
		return err
	}

	sig, err := solanago.SendTransaction(ctx, r.rpcClient, r.wsClient, instructions,
		r.payer, []*solana.Wallet{r.authority}, r.bSimulate)
	if err != nil {
		return err
	}
	r.log.Info("creator remainder sent", "creator", creator, "amount", amount, "signature", sig)
	return nil
}
