package streamflow

import (
	"testing"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func encodeStream(t *testing.T, s *Stream) []byte {
	t.Helper()
	data, err := binary.MarshalBin(s)
	require.NoError(t, err)
	return data
}

func TestSnapshotPage(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	payoutMint := solana.NewWallet().PublicKey()

	locked := testStream(1000, 2000, 1_000_000)
	locked.Mint = mint
	// fully unlocked at its exact end instant: zero locked, not yet expired
	unlocked := testStream(0, 1500, 500_000)
	unlocked.Mint = mint

	accounts := []StreamAccount{
		{Address: solana.NewWallet().PublicKey(), Data: encodeStream(t, locked)},
		{Address: solana.NewWallet().PublicKey(), Data: encodeStream(t, unlocked)},
	}

	snapshots, totalLocked, errs := SnapshotPage(accounts, 1500, mint, payoutMint)
	require.Empty(t, errs)
	require.Len(t, snapshots, 1)
	require.Equal(t, uint64(500_000), totalLocked)
	require.Equal(t, locked.Recipient, snapshots[0].Investor)
	require.Equal(t, uint64(500_000), snapshots[0].LockedAmount)

	expectedATA, _, err := solana.FindAssociatedTokenAddress(locked.Recipient, payoutMint)
	require.NoError(t, err)
	require.Equal(t, expectedATA, snapshots[0].PayoutAccount)
}

func TestSnapshotPageExpiredStream(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	expired := testStream(0, 100, 500_000)
	expired.Mint = mint

	accounts := []StreamAccount{
		{Address: solana.NewWallet().PublicKey(), Data: encodeStream(t, expired)},
	}

	snapshots, totalLocked, errs := SnapshotPage(accounts, 1500, mint, mint)
	require.Empty(t, snapshots)
	require.Zero(t, totalLocked)
	require.Len(t, errs, 1)
	require.Equal(t, ErrKindExpired, errs[0].Kind)
}

func TestSnapshotPageZeroLockedSkippedSilently(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	empty := testStream(1000, 2000, 0)
	empty.Mint = mint

	accounts := []StreamAccount{
		{Address: solana.NewWallet().PublicKey(), Data: encodeStream(t, empty)},
	}

	snapshots, totalLocked, errs := SnapshotPage(accounts, 1500, mint, mint)
	require.Empty(t, snapshots)
	require.Empty(t, errs)
	require.Zero(t, totalLocked)
}

func TestSnapshotPageMalformedDoesNotAbort(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	good := testStream(1000, 2000, 1_000_000)
	good.Mint = mint

	accounts := []StreamAccount{
		{Address: solana.NewWallet().PublicKey(), Data: []byte{1, 2, 3}},
		{Address: solana.NewWallet().PublicKey(), Data: encodeStream(t, good)},
	}

	snapshots, totalLocked, errs := SnapshotPage(accounts, 1500, mint, mint)
	require.Len(t, snapshots, 1)
	require.Equal(t, uint64(500_000), totalLocked)
	require.Len(t, errs, 1)
	require.Equal(t, ErrKindDeserialization, errs[0].Kind)
}

func TestSnapshotPageMintMismatch(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	other := testStream(1000, 2000, 1_000_000)

	accounts := []StreamAccount{
		{Address: solana.NewWallet().PublicKey(), Data: encodeStream(t, other)},
	}

	_, _, errs := SnapshotPage(accounts, 1500, mint, mint)
	require.Len(t, errs, 1)
	require.Equal(t, ErrKindMintMismatch, errs[0].Kind)

	// A zero expected mint disables the check.
	snapshots, _, errs := SnapshotPage(accounts, 1500, solana.PublicKey{}, mint)
	require.Empty(t, errs)
	require.Len(t, snapshots, 1)
}
