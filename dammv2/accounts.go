package dammv2

import (
	"bytes"
	"fmt"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// BaseFeeStruct is the static fee configuration of a pool.
type BaseFeeStruct struct {
	CliffFeeNumerator uint64
	FeeSchedulerMode  uint8
	Padding0          [5]uint8
	NumberOfPeriod    uint16
	PeriodFrequency   uint64
	ReductionFactor   uint64
	Padding1          uint64
}

// DynamicFeeStruct is the volatility-based fee state of a pool.
type DynamicFeeStruct struct {
	Initialized              uint8
	Padding                  [7]uint8
	MaxVolatilityAccumulator uint32
	VariableFeeControl       uint32
	BinStep                  uint16
	FilterPeriod             uint16
	DecayPeriod              uint16
	ReductionFactor          uint16
	LastUpdateTimestamp      uint64
	BinStepU128              binary.Uint128
	SqrtPriceReference       binary.Uint128
	VolatilityAccumulator    binary.Uint128
	VolatilityReference      binary.Uint128
}

// PoolFeesStruct aggregates all fee configuration of a pool.
type PoolFeesStruct struct {
	BaseFee            BaseFeeStruct
	ProtocolFeePercent uint8
	PartnerFeePercent  uint8
	ReferralFeePercent uint8
	Padding0           [5]uint8
	DynamicFee         DynamicFeeStruct
	Padding1           [2]uint64
}

// PoolMetrics tracks lifetime pool fee totals.
type PoolMetrics struct {
	TotalLpAFee       binary.Uint128
	TotalLpBFee       binary.Uint128
	TotalProtocolAFee uint64
	TotalProtocolBFee uint64
	TotalPartnerAFee  uint64
	TotalPartnerBFee  uint64
	TotalPosition     uint64
	Padding           uint64
}

// RewardInfo is one of the pool's farming reward slots.
type RewardInfo struct {
	Initialized                     uint8
	RewardTokenFlag                 uint8
	Padding0                        [6]uint8
	Mint                            solana.PublicKey
	Vault                           solana.PublicKey
	Funder                          solana.PublicKey
	RewardDuration                  uint64
	RewardDurationEnd               uint64
	RewardRate                      binary.Uint128
	RewardPerTokenStored            [32]uint8
	LastUpdateTime                  uint64
	CumulativeSecondsWithEmptyLiquidityReward uint64
}

// Pool is the cp-amm pool account layout.
type Pool struct {
	PoolFees         PoolFeesStruct
	TokenAMint       solana.PublicKey
	TokenBMint       solana.PublicKey
	TokenAVault      solana.PublicKey
	TokenBVault      solana.PublicKey
	WhitelistedVault solana.PublicKey
	Partner          solana.PublicKey
	Liquidity        binary.Uint128
	Padding          binary.Uint128
	ProtocolAFee     uint64
	ProtocolBFee     uint64
	PartnerAFee      uint64
	PartnerBFee      uint64
	SqrtMinPrice     binary.Uint128
	SqrtMaxPrice     binary.Uint128
	SqrtPrice        binary.Uint128
	ActivationPoint  uint64
	ActivationType   uint8
	PoolStatus       uint8
	TokenAFlag       uint8
	TokenBFlag       uint8
	CollectFeeMode   uint8
	PoolType         uint8
	Version          uint8
	Padding0         uint8
	FeeAPerLiquidity [32]uint8
	FeeBPerLiquidity [32]uint8
	PermanentLockLiquidity binary.Uint128
	Metrics          PoolMetrics
	Creator          solana.PublicKey
	Padding1         [6]uint64
	RewardInfos      [2]RewardInfo
}

// PositionMetrics tracks lifetime claimed fees of a position.
type PositionMetrics struct {
	TotalClaimedAFee uint64
	TotalClaimedBFee uint64
}

// UserRewardInfo is one of a position's farming reward slots.
type UserRewardInfo struct {
	RewardPerTokenCheckpoint [32]uint8
	RewardPendings           uint64
	TotalClaimedRewards      uint64
}

// Position is the cp-amm position account layout.
type Position struct {
	Pool                     solana.PublicKey
	NftMint                  solana.PublicKey
	FeeAPerTokenCheckpoint   [32]uint8
	FeeBPerTokenCheckpoint   [32]uint8
	FeeAPending              uint64
	FeeBPending              uint64
	UnlockedLiquidity        binary.Uint128
	VestedLiquidity          binary.Uint128
	PermanentLockedLiquidity binary.Uint128
	Metrics                  PositionMetrics
	RewardInfos              [2]UserRewardInfo
	Padding                  [6]binary.Uint128
}

// ParsePool decodes a pool account, verifying the discriminator.
func ParsePool(data []byte) (*Pool, error) {
	if err := checkDiscriminator(data, AccountKeyPool); err != nil {
		return nil, err
	}
	pool := &Pool{}
	if err := binary.NewBorshDecoder(data[8:]).Decode(pool); err != nil {
		return nil, err
	}
	return pool, nil
}

// ParsePosition decodes a position account, verifying the discriminator.
func ParsePosition(data []byte) (*Position, error) {
	if err := checkDiscriminator(data, AccountKeyPosition); err != nil {
		return nil, err
	}
	position := &Position{}
	if err := binary.NewBorshDecoder(data[8:]).Decode(position); err != nil {
		return nil, err
	}
	return position, nil
}

func checkDiscriminator(data []byte, name string) error {
	if len(data) < 8 {
		return fmt.Errorf("account data too short for %s", name)
	}
	if !bytes.Equal(data[:8], AccountDiscriminator(name)) {
		return fmt.Errorf("account discriminator mismatch, want %s", name)
	}
	return nil
}
