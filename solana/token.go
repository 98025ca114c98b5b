package solana

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/shopspring/decimal"
)

// Token represents a token mint together with its owning program.
type Token struct {
	token.Mint
	// Owner program of the mint (SPL token or Token-2022)
	Owner solana.PublicKey
}

// TokenLayout provides methods for decoding mint data
type TokenLayout struct {
}

func (l *TokenLayout) Decode(data []byte) (*Token, error) {
	mint := token.Mint{}

	if err := mint.Decode(data); err != nil {
		return nil, err
	}
	return &Token{Mint: mint}, nil
}

// AmountToUI converts a raw token amount to its display value.
func AmountToUI(amount uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromUint64(amount).Shift(-int32(decimals))
}

// UIToAmount converts a display value to the raw token amount, truncating
// anything below one base unit.
func UIToAmount(ui decimal.Decimal, decimals uint8) uint64 {
	shifted := ui.Shift(int32(decimals)).Truncate(0)
	if shifted.IsNegative() {
		return 0
	}
	return shifted.BigInt().Uint64()
}
