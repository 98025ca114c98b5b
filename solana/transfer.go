package solana

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

// TransferInstruction builds the instructions to move amount of mint from
// sender to receiver, creating either party's associated token account when
// missing. authority must be able to sign for the sender's account.
func TransferInstruction(
	ctx context.Context,
	rpcClient *rpc.Client,
	payer solana.PublicKey,
	authority solana.PublicKey,
	sender solana.PublicKey,
	receiver solana.PublicKey,
	mint solana.PublicKey,
	decimals uint8,
	amount uint64,
) ([]solana.Instruction, error) {

	var instructions []solana.Instruction

	sendTokenAccount, err := PrepareTokenATA(ctx, rpcClient, sender, mint, payer, &instructions)
	if err != nil {
		return nil, err
	}

	receiveTokenAccount, err := PrepareTokenATA(ctx, rpcClient, receiver, mint, payer, &instructions)
	if err != nil {
		return nil, err
	}

	transferIx := token.NewTransferCheckedInstruction(
		amount,
		decimals,
		sendTokenAccount,
		mint,
		receiveTokenAccount,
		authority,
		[]solana.PublicKey{},
	).Build()

	return append(instructions, transferIx), nil
}

// TransferToAccountInstruction moves amount directly between two existing
// token accounts, without ATA resolution. Used when the destination account
// is already known (treasury, pre-derived investor ATAs).
func TransferToAccountInstruction(
	sourceAccount solana.PublicKey,
	destinationAccount solana.PublicKey,
	mint solana.PublicKey,
	authority solana.PublicKey,
	decimals uint8,
	amount uint64,
) solana.Instruction {
	return token.NewTransferCheckedInstruction(
		amount,
		decimals,
		sourceAccount,
		mint,
		destinationAccount,
		authority,
		[]solana.PublicKey{},
	).Build()
}
