package streamflow

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/ANAVHEOBA/meteora-fee-router/feemath"
)

// InvestorSnapshot is one investor's locked-amount fact, recomputed fresh
// from the vesting service every page. It is never persisted because locked
// amounts decay continuously with time.
type InvestorSnapshot struct {
	Investor       solana.PublicKey
	Stream         solana.PublicKey
	LockedAmount   uint64
	TotalDeposited uint64
	PayoutAccount  solana.PublicKey
}

// SnapshotErrorKind classifies a non-fatal per-stream failure.
type SnapshotErrorKind uint8

const (
	ErrKindDeserialization SnapshotErrorKind = iota
	ErrKindExpired
	ErrKindMintMismatch
	ErrKindMissingPayoutAccount
)

func (k SnapshotErrorKind) String() string {
	switch k {
	case ErrKindDeserialization:
		return "deserialization_failed"
	case ErrKindExpired:
		return "stream_expired"
	case ErrKindMintMismatch:
		return "mint_mismatch"
	case ErrKindMissingPayoutAccount:
		return "missing_payout_account"
	default:
		return "unknown"
	}
}

// SnapshotError records why a single stream in a page could not be
// snapshotted. It never aborts the page.
type SnapshotError struct {
	Stream   solana.PublicKey
	Investor solana.PublicKey // zero when unknown
	Kind     SnapshotErrorKind
	Message  string
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("stream %s: %s: %s", e.Stream, e.Kind, e.Message)
}

// StreamAccount pairs a stream address with its raw account data.
type StreamAccount struct {
	Address solana.PublicKey
	Data    []byte
}

// SnapshotPage decodes an ordered batch of stream accounts and computes each
// investor's locked amount at currentTimestamp. Streams with zero locked
// amount are skipped silently; malformed or expired streams produce a typed
// error and processing continues, so a single bad record cannot block the
// rest of the page.
//
// expectedMint, when non-zero, is the mint the streams must vest. payoutMint
// is the quote mint payouts are made in; each snapshot carries the
// investor's associated token account for it.
func SnapshotPage(
	accounts []StreamAccount,
	currentTimestamp uint64,
	expectedMint solana.PublicKey,
	payoutMint solana.PublicKey,
) ([]*InvestorSnapshot, uint64, []*SnapshotError) {
	var (
		snapshots   []*InvestorSnapshot
		totalLocked uint64
		errs        []*SnapshotError
	)

	for _, account := range accounts {
		snapshot, err := snapshotStream(account, currentTimestamp, expectedMint, payoutMint)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if snapshot == nil {
			continue
		}
		totalLocked = feemath.SaturatingAdd(totalLocked, snapshot.LockedAmount)
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, totalLocked, errs
}

func snapshotStream(
	account StreamAccount,
	currentTimestamp uint64,
	expectedMint solana.PublicKey,
	payoutMint solana.PublicKey,
) (*InvestorSnapshot, *SnapshotError) {
	stream, err := new(StreamLayout).Decode(account.Data)
	if err != nil {
		return nil, &SnapshotError{
			Stream:  account.Address,
			Kind:    ErrKindDeserialization,
			Message: err.Error(),
		}
	}

	if !expectedMint.IsZero() && !stream.Mint.Equals(expectedMint) {
		return nil, &SnapshotError{
			Stream:   account.Address,
			Investor: stream.Recipient,
			Kind:     ErrKindMintMismatch,
			Message:  fmt.Sprintf("stream mint %s, expected %s", stream.Mint, expectedMint),
		}
	}

	if stream.EndTime < currentTimestamp {
		return nil, &SnapshotError{
			Stream:   account.Address,
			Investor: stream.Recipient,
			Kind:     ErrKindExpired,
			Message:  fmt.Sprintf("stream ended at %d", stream.EndTime),
		}
	}

	locked := stream.LockedAmount(currentTimestamp)
	if locked == 0 {
		// Fully unlocked streams drop out of the distribution, not an error.
		return nil, nil
	}

	if stream.Recipient.IsZero() {
		return nil, &SnapshotError{
			Stream:  account.Address,
			Kind:    ErrKindMissingPayoutAccount,
			Message: "stream has no recipient",
		}
	}

	payoutAccount, _, err := solana.FindAssociatedTokenAddress(stream.Recipient, payoutMint)
	if err != nil {
		return nil, &SnapshotError{
			Stream:   account.Address,
			Investor: stream.Recipient,
			Kind:     ErrKindMissingPayoutAccount,
			Message:  err.Error(),
		}
	}

	return &InvestorSnapshot{
		Investor:       stream.Recipient,
		Stream:         account.Address,
		LockedAmount:   locked,
		TotalDeposited: stream.DepositedAmount,
		PayoutAccount:  payoutAccount,
	}, nil
}
