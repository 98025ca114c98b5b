// Package token2022 reads the Token-2022 transfer fee extension. Quote
// mints carrying a transfer fee shortchange every payout by the fee, so the
// router surfaces the configured rate before distributing.
package token2022

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// TransferFee is one epoch's fee configuration.
type TransferFee struct {
	Epoch       uint64
	MaximumFee  uint64
	BasisPoints uint16
}

// TransferFeeConfig is the mint's transfer fee extension state.
type TransferFeeConfig struct {
	TransferFeeConfigAuthority *solana.PublicKey
	WithdrawWithheldAuthority  *solana.PublicKey
	WithheldAmount             uint64
	OlderTransferFee           TransferFee
	NewerTransferFee           TransferFee
}

func parseCOptionPubkey(data []byte) (*solana.PublicKey, int, error) {
	if len(data) < 1 {
		return nil, 0, errors.New("data too short for COption tag")
	}

	switch data[0] {
	case 0: // None
		return nil, 1, nil
	case 1: // Some(pubkey)
		if len(data) < 33 {
			return nil, 0, errors.New("data too short for Pubkey")
		}
		key := solana.PublicKeyFromBytes(data[1:33])
		return &key, 33, nil
	default:
		return nil, 0, errors.New("invalid COption tag")
	}
}

// GetTransferFeeConfig fetches a mint and extracts its transfer fee
// extension. A nil config means the mint carries no transfer fee.
func GetTransferFeeConfig(ctx context.Context, rpcClient *rpc.Client, mint solana.PublicKey) (*TransferFeeConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()
	out, err := rpcClient.GetAccountInfoWithOpts(ctx, mint, &rpc.GetAccountInfoOpts{Commitment: rpc.CommitmentFinalized})
	if err != nil {
		return nil, err
	}
	return getTransferFeeConfig(out.GetBinary())
}

func getTransferFeeConfig(data []byte) (*TransferFeeConfig, error) {
	// Token2022 TransferFee extension discriminator
	idx := bytes.Index(data, []byte{0xad, 0x65, 0x2b, 0x54, 0x0e, 0x4d, 0x0d, 0x27})
	if idx < 0 {
		return nil, nil
	}

	buf := data[idx+8:]

	cfg := &TransferFeeConfig{}

	auth, n, err := parseCOptionPubkey(buf)
	if err != nil {
		return nil, err
	}
	cfg.TransferFeeConfigAuthority = auth
	buf = buf[n:]

	withdrawAuth, n, err := parseCOptionPubkey(buf)
	if err != nil {
		return nil, err
	}
	cfg.WithdrawWithheldAuthority = withdrawAuth
	buf = buf[n:]

	if len(buf) < 8 {
		return nil, errors.New("data too short for WithheldAmount")
	}
	cfg.WithheldAmount = binary.LittleEndian.Uint64(buf[:8])
	buf = buf[8:]

	if len(buf) < 18 {
		return nil, errors.New("data too short for OlderTransferFee")
	}
	cfg.OlderTransferFee = TransferFee{
		Epoch:       binary.LittleEndian.Uint64(buf[:8]),
		MaximumFee:  binary.LittleEndian.Uint64(buf[8:16]),
		BasisPoints: binary.LittleEndian.Uint16(buf[16:18]),
	}
	buf = buf[18:]

	if len(buf) < 18 {
		return nil, errors.New("data too short for NewerTransferFee")
	}
	cfg.NewerTransferFee = TransferFee{
		Epoch:       binary.LittleEndian.Uint64(buf[:8]),
		MaximumFee:  binary.LittleEndian.Uint64(buf[8:16]),
		BasisPoints: binary.LittleEndian.Uint16(buf[16:18]),
	}

	return cfg, nil
}

// GetEpochFee returns the fee configuration in force at currentEpoch.
func GetEpochFee(cfg *TransferFeeConfig, currentEpoch uint64) TransferFee {
	if cfg == nil {
		return TransferFee{}
	}
	if currentEpoch >= cfg.NewerTransferFee.Epoch {
		return cfg.NewerTransferFee
	}
	return cfg.OlderTransferFee
}

// CalculateFee computes the transfer fee withheld from a payout of amount.
func CalculateFee(tf TransferFee, amount uint64) uint64 {
	if tf.BasisPoints == 0 {
		return 0
	}
	fee := amount / 10000 * uint64(tf.BasisPoints)
	rem := amount % 10000 * uint64(tf.BasisPoints) / 10000
	fee += rem
	if fee > tf.MaximumFee {
		return tf.MaximumFee
	}
	return fee
}
