// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package json

import (
	"encoding/json"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestAmountJSON(t *testing.T) {
	require := require.New(t)

	v := uint256.MustFromDecimal("340282366920938463463374607431768211455")
	b, err := json.Marshal(Amount(*v))
	require.NoError(err)
	require.JSONEq(`"340282366920938463463374607431768211455"`, string(b))

	var parsed Amount
	require.NoError(json.Unmarshal(b, &parsed))
	got := parsed.Int()
	require.True(got.Eq(v))

	require.Error(json.Unmarshal([]byte(`"12x"`), &parsed))
}

func TestHex64JSON(t *testing.T) {
	require := require.New(t)

	b, err := json.Marshal(Hex64(0xfffffff800000000))
	require.NoError(err)
	require.Equal(`"fffffff800000000"`, string(b))

	var parsed Hex64
	require.NoError(json.Unmarshal(b, &parsed))
	require.Equal(Hex64(0xfffffff800000000), parsed)
}

func TestUint64JSON(t *testing.T) {
	require := require.New(t)

	var u Uint64
	require.NoError(json.Unmarshal([]byte(`"42"`), &u))
	require.Equal(Uint64(42), u)
	require.NoError(json.Unmarshal([]byte(Null), &u))
	require.Equal(Uint64(42), u)
}
