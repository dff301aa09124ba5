// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package math

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	require := require.New(t)

	sum, err := Add[uint64](1, 2)
	require.NoError(err)
	require.Equal(uint64(3), sum)

	_, err = Add(MaxUint[uint64](), 1)
	require.ErrorIs(err, ErrOverflow)
}

func TestSub(t *testing.T) {
	require := require.New(t)

	diff, err := Sub[uint64](3, 2)
	require.NoError(err)
	require.Equal(uint64(1), diff)

	_, err = Sub[uint64](2, 3)
	require.ErrorIs(err, ErrUnderflow)
}

func TestAddAmount(t *testing.T) {
	require := require.New(t)

	sum, err := AddAmount(*uint256.NewInt(5), *uint256.NewInt(7))
	require.NoError(err)
	require.Equal(uint64(12), sum.Uint64())

	sum, err = AddAmount(MaxAmount, uint256.Int{})
	require.NoError(err)
	require.True(sum.Eq(&MaxAmount))

	_, err = AddAmount(MaxAmount, *uint256.NewInt(1))
	require.ErrorIs(err, ErrOverflow)
}

func TestSubAmount(t *testing.T) {
	require := require.New(t)

	diff, err := SubAmount(*uint256.NewInt(7), *uint256.NewInt(5))
	require.NoError(err)
	require.Equal(uint64(2), diff.Uint64())

	_, err = SubAmount(*uint256.NewInt(5), *uint256.NewInt(7))
	require.ErrorIs(err, ErrUnderflow)
}

func TestMulDivAmount(t *testing.T) {
	require := require.New(t)

	r := MulDivAmount(MaxAmount, 67, 100)
	require.Equal(128, MaxAmount.BitLen())
	require.True(r.Lt(&MaxAmount))

	r = MulDivAmount(*uint256.NewInt(1000), 67, 100)
	require.Equal(uint64(670), r.Uint64())

	r = MulDivAmount(*uint256.NewInt(1000), 1, 0)
	require.True(r.IsZero())
}

func TestMaxAmountOf(t *testing.T) {
	require := require.New(t)

	r := MaxAmountOf(*uint256.NewInt(3), *uint256.NewInt(9), *uint256.NewInt(4))
	require.Equal(uint64(9), r.Uint64())
}
