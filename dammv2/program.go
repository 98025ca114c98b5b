// Package dammv2 is the Meteora DAMM v2 (cp-amm) integration used by the fee
// router: program addresses, PDA derivations, the account layouts the router
// reads, and the instruction builders it submits.
package dammv2

import (
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
)

// ProgramID is the Meteora DAMM v2 (cp-amm) program.
var ProgramID = solana.MustPublicKeyFromBase58("cpamdpZCGKUy5JxQXB4dcpGPiikHawvSWAd6mEn1sGG")

// Account key constants for cp-amm account discriminators.
var (
	AccountKeyPool     = "Pool"
	AccountKeyPosition = "Position"
)

// AccountDiscriminator returns the 8-byte anchor discriminator for a named
// account type.
func AccountDiscriminator(name string) []byte {
	hash := sha256.Sum256([]byte("account:" + name))
	out := make([]byte, 8)
	copy(out, hash[:8])
	return out
}

func instructionDiscriminator(name string) []byte {
	hash := sha256.Sum256([]byte("global:" + name))
	out := make([]byte, 8)
	copy(out, hash[:8])
	return out
}

func DerivePoolAuthorityPDA() (solana.PublicKey, error) {
	seeds := [][]byte{[]byte("pool_authority")}
	address, _, err := solana.FindProgramAddress(seeds, ProgramID)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return address, nil
}

// DeriveEventAuthorityPDA derives the anchor event authority PDA.
func DeriveEventAuthorityPDA() (solana.PublicKey, error) {
	seeds := [][]byte{[]byte("__event_authority")}
	address, _, err := solana.FindProgramAddress(seeds, ProgramID)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return address, nil
}

func DerivePositionAddress(positionNft solana.PublicKey) (solana.PublicKey, error) {
	seeds := [][]byte{[]byte("position"), positionNft.Bytes()}

	pda, _, err := solana.FindProgramAddress(seeds, ProgramID)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return pda, nil
}

func DerivePositionNftAccount(positionNftMint solana.PublicKey) (solana.PublicKey, error) {
	seeds := [][]byte{
		[]byte("position_nft_account"),
		positionNftMint.Bytes(),
	}
	pda, _, err := solana.FindProgramAddress(seeds, ProgramID)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return pda, nil
}

func DeriveTokenVaultAddress(tokenMint, pool solana.PublicKey) (solana.PublicKey, error) {
	seeds := [][]byte{[]byte("token_vault"), tokenMint.Bytes(), pool.Bytes()}

	pda, _, err := solana.FindProgramAddress(seeds, ProgramID)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return pda, nil
}

// TokenType represents the token program a pool token belongs to.
type TokenType uint8

const (
	TokenTypeSPL TokenType = iota
	TokenTypeToken2022
)

func GetTokenProgram(tokenType TokenType) solana.PublicKey {
	if tokenType == TokenTypeSPL {
		return solana.TokenProgramID
	}
	return solana.Token2022ProgramID
}

// CollectFeeMode represents how the pool accrues trading fees.
type CollectFeeMode uint8

const (
	// CollectFeeModeBothToken accrues fees in both pool tokens.
	CollectFeeModeBothToken CollectFeeMode = iota
	// CollectFeeModeOnlyA accrues fees only in token A.
	CollectFeeModeOnlyA
	// CollectFeeModeOnlyB accrues fees only in token B.
	CollectFeeModeOnlyB
)
