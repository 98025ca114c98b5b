package dammv2

import (
	"github.com/gagliardetto/solana-go"
)

// NewClaimPositionFeeInstruction builds the cp-amm claim_position_fee
// instruction. Fees accrued by the position are transferred from the pool
// vaults to the owner's token accounts.
func NewClaimPositionFeeInstruction(
	poolAuthority solana.PublicKey,
	pool solana.PublicKey,
	position solana.PublicKey,
	tokenAAccount solana.PublicKey,
	tokenBAccount solana.PublicKey,
	tokenAVault solana.PublicKey,
	tokenBVault solana.PublicKey,
	tokenAMint solana.PublicKey,
	tokenBMint solana.PublicKey,
	positionNftAccount solana.PublicKey,
	owner solana.PublicKey,
	tokenAProgram solana.PublicKey,
	tokenBProgram solana.PublicKey,
	eventAuthority solana.PublicKey,
	program solana.PublicKey,
) (solana.Instruction, error) {
	accounts := solana.AccountMetaSlice{
		solana.Meta(poolAuthority),
		solana.Meta(pool),
		solana.Meta(position).WRITE(),
		solana.Meta(tokenAAccount).WRITE(),
		solana.Meta(tokenBAccount).WRITE(),
		solana.Meta(tokenAVault).WRITE(),
		solana.Meta(tokenBVault).WRITE(),
		solana.Meta(tokenAMint),
		solana.Meta(tokenBMint),
		solana.Meta(positionNftAccount),
		solana.Meta(owner).SIGNER(),
		solana.Meta(tokenAProgram),
		solana.Meta(tokenBProgram),
		solana.Meta(eventAuthority),
		solana.Meta(program),
	}
	return solana.NewInstruction(ProgramID, accounts, instructionDiscriminator("claim_position_fee")), nil
}

// NewCreatePositionInstruction builds the cp-amm create_position
// instruction. The position NFT mint must be a fresh keypair signing the
// transaction; ownership of the position follows the NFT.
func NewCreatePositionInstruction(
	owner solana.PublicKey,
	positionNftMint solana.PublicKey,
	positionNftAccount solana.PublicKey,
	pool solana.PublicKey,
	position solana.PublicKey,
	poolAuthority solana.PublicKey,
	payer solana.PublicKey,
	tokenProgram solana.PublicKey,
	systemProgram solana.PublicKey,
	eventAuthority solana.PublicKey,
	program solana.PublicKey,
) (solana.Instruction, error) {
	accounts := solana.AccountMetaSlice{
		solana.Meta(owner),
		solana.Meta(positionNftMint).WRITE().SIGNER(),
		solana.Meta(positionNftAccount).WRITE(),
		solana.Meta(pool).WRITE(),
		solana.Meta(position).WRITE(),
		solana.Meta(poolAuthority),
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(tokenProgram),
		solana.Meta(systemProgram),
		solana.Meta(eventAuthority),
		solana.Meta(program),
	}
	return solana.NewInstruction(ProgramID, accounts, instructionDiscriminator("create_position")), nil
}
