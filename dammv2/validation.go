package dammv2

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// QuoteSide identifies which pool token is the quote mint.
type QuoteSide uint8

const (
	QuoteIsTokenA QuoteSide = iota
	QuoteIsTokenB
)

func (s QuoteSide) String() string {
	if s == QuoteIsTokenA {
		return "token_a"
	}
	return "token_b"
}

var (
	ErrQuoteMintNotInPool = errors.New("dammv2: quote mint is not a pool token")
	ErrPoolAccruesBaseFees = errors.New("dammv2: pool collect fee mode accrues base token fees")
)

// ResolveQuoteSide finds which side of the pool the quote mint sits on.
func ResolveQuoteSide(pool *Pool, quoteMint solana.PublicKey) (QuoteSide, error) {
	switch {
	case pool.TokenAMint.Equals(quoteMint):
		return QuoteIsTokenA, nil
	case pool.TokenBMint.Equals(quoteMint):
		return QuoteIsTokenB, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrQuoteMintNotInPool, quoteMint)
	}
}

// ValidateQuoteOnlyPool checks, before any position is created, that the
// pool's collect fee mode routes every fee to the quote mint. A pool that
// would ever accrue base token fees is rejected outright rather than caught
// at claim time.
func ValidateQuoteOnlyPool(pool *Pool, quoteMint solana.PublicKey) (QuoteSide, error) {
	side, err := ResolveQuoteSide(pool, quoteMint)
	if err != nil {
		return 0, err
	}

	mode := CollectFeeMode(pool.CollectFeeMode)
	switch side {
	case QuoteIsTokenA:
		if mode != CollectFeeModeOnlyA {
			return 0, fmt.Errorf("%w: quote is token A but collect fee mode is %d", ErrPoolAccruesBaseFees, mode)
		}
	case QuoteIsTokenB:
		if mode != CollectFeeModeOnlyB {
			return 0, fmt.Errorf("%w: quote is token B but collect fee mode is %d", ErrPoolAccruesBaseFees, mode)
		}
	}
	return side, nil
}

// QuoteVault returns the pool vault holding the quote token.
func (s QuoteSide) QuoteVault(pool *Pool) solana.PublicKey {
	if s == QuoteIsTokenA {
		return pool.TokenAVault
	}
	return pool.TokenBVault
}

// BaseMint returns the pool mint on the non-quote side.
func (s QuoteSide) BaseMint(pool *Pool) solana.PublicKey {
	if s == QuoteIsTokenA {
		return pool.TokenBMint
	}
	return pool.TokenAMint
}

// QuotePendingFee returns the position's unclaimed fee on the quote side.
func (s QuoteSide) QuotePendingFee(position *Position) uint64 {
	if s == QuoteIsTokenA {
		return position.FeeAPending
	}
	return position.FeeBPending
}

// BasePendingFee returns the position's unclaimed fee on the base side.
func (s QuoteSide) BasePendingFee(position *Position) uint64 {
	if s == QuoteIsTokenA {
		return position.FeeBPending
	}
	return position.FeeAPending
}
