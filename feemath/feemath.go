// Package feemath provides the integer arithmetic used by the fee
// distribution core. All ratios are expressed in basis points and every
// multiply-then-divide widens to 128 bits before the multiply, with floor
// division, so payout math is bit-exact across re-execution. Float types are
// never used here.
package feemath

import (
	"errors"
	"math"
	"math/big"
)

// BpsDenominator is the basis point denominator (10000 = 100%).
const BpsDenominator = 10_000

// MaxBps is the largest valid basis point value.
const MaxBps = 10_000

// SecondsPerDay is the length of one distribution day.
const SecondsPerDay = 86_400

var ErrDivisionByZero = errors.New("feemath: division by zero")

// MulDivFloor computes floor(x * y / denominator) with a 128-bit
// intermediate product.
func MulDivFloor(x, y, denominator uint64) (uint64, error) {
	if denominator == 0 {
		return 0, ErrDivisionByZero
	}
	prod := new(big.Int).Mul(new(big.Int).SetUint64(x), new(big.Int).SetUint64(y))
	prod.Div(prod, new(big.Int).SetUint64(denominator))
	if !prod.IsUint64() {
		return math.MaxUint64, nil
	}
	return prod.Uint64(), nil
}

// Bps computes floor(amount * numerator / Y) as basis points, i.e.
// floor(numerator * 10000 / denominator). Returns 0 when denominator is 0.
func Bps(numerator, denominator uint64) uint64 {
	if denominator == 0 {
		return 0
	}
	bps, _ := MulDivFloor(numerator, BpsDenominator, denominator)
	return bps
}

// ApplyBps computes floor(amount * bps / 10000).
func ApplyBps(amount, bps uint64) uint64 {
	out, _ := MulDivFloor(amount, bps, BpsDenominator)
	return out
}

// SaturatingAdd clamps to MaxUint64 instead of wrapping.
func SaturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

// SaturatingSub clamps to 0 instead of wrapping.
func SaturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

func Min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// DayStart rounds a unix timestamp down to the start of its distribution day.
func DayStart(timestamp int64) int64 {
	return (timestamp / SecondsPerDay) * SecondsPerDay
}
