// Package streamflow reads Streamflow vesting stream accounts and turns them
// into locked-amount snapshots for the distribution engine.
package streamflow

import (
	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/ANAVHEOBA/meteora-fee-router/feemath"
)

// ProgramID is the Streamflow protocol program.
var ProgramID = solana.MustPublicKeyFromBase58("strmRqUCoQUgGUan5YhzUZa6KqdzwX5L6FpUxfmKg5m")

// Byte offsets into the stream account layout, for memcmp account filters.
const (
	RecipientOffset = 56
	MintOffset      = 120
)

// Stream is the on-chain layout of a Streamflow vesting stream.
type Stream struct {
	Magic           uint64
	Version         uint64
	CreatedAt       uint64
	StartTime       uint64
	EndTime         uint64
	DepositedAmount uint64
	WithdrawnAmount uint64
	Recipient       solana.PublicKey
	Sender          solana.PublicKey
	Mint            solana.PublicKey
	EscrowTokens    solana.PublicKey
	Name            [64]byte
	CanCancel       bool
	CanTransfer     bool
	Cancelled       bool
	Metadata        [128]byte
}

// StreamLayout decodes stream account data.
type StreamLayout struct {
}

func (l *StreamLayout) Decode(data []byte) (*Stream, error) {
	stream := &Stream{}
	if err := binary.NewBinDecoder(data).Decode(stream); err != nil {
		return nil, err
	}
	return stream, nil
}

// UnlockedAmount returns the amount vested at the given timestamp. Vesting is
// linear between StartTime and EndTime; a zero-duration stream counts as
// fully vested.
func (s *Stream) UnlockedAmount(currentTimestamp uint64) uint64 {
	if currentTimestamp < s.StartTime {
		return 0
	}
	if currentTimestamp >= s.EndTime {
		return s.DepositedAmount
	}
	duration := s.EndTime - s.StartTime
	if duration == 0 {
		return s.DepositedAmount
	}
	elapsed := currentTimestamp - s.StartTime
	unlocked, _ := feemath.MulDivFloor(s.DepositedAmount, elapsed, duration)
	return unlocked
}

// LockedAmount returns the amount still time-locked at the given timestamp.
func (s *Stream) LockedAmount(currentTimestamp uint64) uint64 {
	return feemath.SaturatingSub(s.DepositedAmount, s.UnlockedAmount(currentTimestamp))
}

// WithdrawableAmount returns the unlocked amount not yet withdrawn.
func (s *Stream) WithdrawableAmount(currentTimestamp uint64) uint64 {
	return feemath.SaturatingSub(s.UnlockedAmount(currentTimestamp), s.WithdrawnAmount)
}

// IsFullyVested reports whether the stream has reached its end time.
func (s *Stream) IsFullyVested(currentTimestamp uint64) bool {
	return currentTimestamp >= s.EndTime
}
