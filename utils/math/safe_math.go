// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package math

import (
	"errors"

	"github.com/holiman/uint256"
)

// AmountBits is the width of every balance and weight on the ledger.
const AmountBits = 128

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

var (
	ErrOverflow  = errors.New("overflow")
	ErrUnderflow = errors.New("underflow")

	// MaxAmount is 2^128 - 1.
	MaxAmount = *new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), AmountBits), 1)
)

// MaxUint returns the maximum value of an unsigned integer of type T.
func MaxUint[T Unsigned]() T {
	return ^T(0)
}

// Add returns:
// 1) a + b
// 2) If there is overflow, an error
func Add[T Unsigned](a, b T) (T, error) {
	if a > MaxUint[T]()-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// Sub returns:
// 1) a - b
// 2) If there is underflow, an error
func Sub[T Unsigned](a, b T) (T, error) {
	if a < b {
		return 0, ErrUnderflow
	}
	return a - b, nil
}

// AddAmount returns a + b, or ErrOverflow if the result does not fit in
// [AmountBits].
func AddAmount(a, b uint256.Int) (uint256.Int, error) {
	var sum uint256.Int
	if _, overflow := sum.AddOverflow(&a, &b); overflow || sum.Gt(&MaxAmount) {
		return uint256.Int{}, ErrOverflow
	}
	return sum, nil
}

// SubAmount returns a - b, or ErrUnderflow if b > a.
func SubAmount(a, b uint256.Int) (uint256.Int, error) {
	if a.Lt(&b) {
		return uint256.Int{}, ErrUnderflow
	}
	var diff uint256.Int
	diff.Sub(&a, &b)
	return diff, nil
}

// MulDivAmount returns a * num / den. The intermediate product is computed in
// 256 bits so any 128-bit [a] with a 64-bit [num] is exact.
func MulDivAmount(a uint256.Int, num, den uint64) uint256.Int {
	if den == 0 {
		return uint256.Int{}
	}
	var r uint256.Int
	r.Mul(&a, uint256.NewInt(num))
	r.Div(&r, uint256.NewInt(den))
	return r
}

// MaxAmountOf returns the largest of the provided amounts.
func MaxAmountOf(first uint256.Int, rest ...uint256.Int) uint256.Int {
	for i := range rest {
		if rest[i].Gt(&first) {
			first = rest[i]
		}
	}
	return first
}
