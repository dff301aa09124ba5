// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vote

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ids"

	"github.com/luxfi/nano/block"
)

func newKey(t *testing.T) ed25519.PrivateKey {
	_, key, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return key
}

func TestVoteRoundTrip(t *testing.T) {
	require := require.New(t)

	key := newKey(t)
	hashes := []ids.ID{ids.GenerateTestID(), ids.GenerateTestID()}
	v, err := New(key, 7, hashes)
	require.NoError(err)
	require.True(v.Verify())
	require.False(v.IsFinal())

	parsed, err := Parse(v.Bytes())
	require.NoError(err)
	require.Equal(v.Hash(), parsed.Hash())
	require.Equal(v.Account, parsed.Account)
	require.Equal(hashes, parsed.Hashes)
	require.True(parsed.Verify())
}

func TestVoteHashCoversTimestamp(t *testing.T) {
	require := require.New(t)

	key := newKey(t)
	hashes := []ids.ID{ids.GenerateTestID()}
	a, err := New(key, 1, hashes)
	require.NoError(err)
	b, err := New(key, 2, hashes)
	require.NoError(err)
	require.NotEqual(a.Hash(), b.Hash())

	final, err := New(key, FinalTimestamp, hashes)
	require.NoError(err)
	require.True(final.IsFinal())
}

func TestVoteTampered(t *testing.T) {
	require := require.New(t)

	v, err := New(newKey(t), 1, []ids.ID{ids.GenerateTestID()})
	require.NoError(err)
	v.Signature[0] ^= 1
	require.False(v.Verify())

	other, err := New(newKey(t), 1, v.Hashes)
	require.NoError(err)
	other.Account = v.Account
	require.False(other.Verify())
}

func TestVoteShape(t *testing.T) {
	tests := []struct {
		name   string
		hashes int
		err    error
	}{
		{
			name:   "empty",
			hashes: 0,
			err:    errNoHashes,
		},
		{
			name:   "max",
			hashes: MaxHashes,
		},
		{
			name:   "too many",
			hashes: MaxHashes + 1,
			err:    errTooManyHashes,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			hashes := make([]ids.ID, test.hashes)
			for i := range hashes {
				hashes[i] = ids.GenerateTestID()
			}
			_, err := New(newKey(t), 1, hashes)
			require.ErrorIs(t, err, test.err)
		})
	}
}

func TestTierOf(t *testing.T) {
	total := *new(block.Amount).SetUint64(1_000_000)
	tests := []struct {
		weight uint64
		want   Tier
	}{
		{weight: 0, want: TierNone},
		{weight: 999, want: TierNone},
		{weight: 1_000, want: Tier1},
		{weight: 9_999, want: Tier1},
		{weight: 10_000, want: Tier2},
		{weight: 49_999, want: Tier2},
		{weight: 50_000, want: Tier3},
		{weight: 1_000_000, want: Tier3},
	}
	for _, test := range tests {
		t.Run(test.want.String(), func(t *testing.T) {
			weight := *new(block.Amount).SetUint64(test.weight)
			require.Equal(t, test.want, TierOf(weight, total))
		})
	}
}
