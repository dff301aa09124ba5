// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package compression

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZstdRoundTrip(t *testing.T) {
	require := require.New(t)

	z, err := NewZstd(1024)
	require.NoError(err)

	msg := bytes.Repeat([]byte{0x42}, 1024)
	compressed, err := z.Compress(msg)
	require.NoError(err)
	require.Less(len(compressed), len(msg))

	decompressed, err := z.Decompress(compressed)
	require.NoError(err)
	require.Equal(msg, decompressed)
}

func TestZstdLimits(t *testing.T) {
	require := require.New(t)

	_, err := NewZstd(math.MaxInt64)
	require.ErrorIs(err, ErrInvalidMaxSize)

	small, err := NewZstd(16)
	require.NoError(err)
	_, err = small.Compress(make([]byte, 17))
	require.ErrorIs(err, ErrTooLarge)

	large, err := NewZstd(1024)
	require.NoError(err)
	compressed, err := large.Compress(make([]byte, 1024))
	require.NoError(err)
	_, err = small.Decompress(compressed)
	require.ErrorIs(err, ErrTooLarge)
}
