// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package block

import (
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ids"
)

func newKey(t *testing.T) (ed25519.PrivateKey, Account) {
	pk, sk, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return sk, AccountFromPublicKey(pk)
}

func TestAccountString(t *testing.T) {
	tests := []struct {
		name string
		key  string
		text string
	}{
		{
			name: "burn",
			key:  "0000000000000000000000000000000000000000000000000000000000000000",
			text: "nano_1111111111111111111111111111111111111111111111111111hifc8npp",
		},
		{
			name: "live genesis",
			key:  "E89208DD038FBB269987689621D52292AE9C35941A7484756ECCED92A65093BA",
			text: "nano_3t6k35gi95xu6tergt6p69ck76ogmitsa8mnijtpxm9fkcm736xtoncuohr3",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			keyBytes, err := hex.DecodeString(test.key)
			require.NoError(err)
			var a Account
			copy(a[:], keyBytes)

			require.Equal(test.text, a.String())

			parsed, err := AccountFromString(test.text)
			require.NoError(err)
			require.Equal(a, parsed)

			legacy, err := AccountFromString("xrb_" + test.text[len("nano_"):])
			require.NoError(err)
			require.Equal(a, legacy)
		})
	}
}

func TestAccountFromStringErrors(t *testing.T) {
	valid := "nano_3t6k35gi95xu6tergt6p69ck76ogmitsa8mnijtpxm9fkcm736xtoncuohr3"
	tests := []struct {
		name        string
		text        string
		expectedErr error
	}{
		{
			name:        "prefix",
			text:        "ban_" + valid[len("nano_"):],
			expectedErr: errAccountPrefix,
		},
		{
			name:        "length",
			text:        valid[:len(valid)-1],
			expectedErr: errAccountLength,
		},
		{
			name:        "checksum",
			text:        valid[:len(valid)-1] + "4",
			expectedErr: errAccountChecksum,
		},
		{
			name:        "alphabet",
			text:        valid[:10] + "0" + valid[11:],
			expectedErr: errAccountEncoding,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := AccountFromString(test.text)
			require.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestBlockParse(t *testing.T) {
	key, account := newKey(t)
	_, other := newKey(t)
	previous := ids.GenerateTestID()
	source := ids.GenerateTestID()
	balance := *uint256.NewInt(1_000)

	send, err := NewSend(previous, other, balance, key, 7)
	require.NoError(t, err)
	receive, err := NewReceive(previous, source, key, 8)
	require.NoError(t, err)
	open, err := NewOpen(source, other, account, key, 9)
	require.NoError(t, err)
	change, err := NewChange(previous, other, key, 10)
	require.NoError(t, err)
	state, err := NewState(account, previous, other, balance, source, key, 11)
	require.NoError(t, err)

	tests := []struct {
		blk  Block
		root ids.ID
	}{
		{blk: send, root: previous},
		{blk: receive, root: previous},
		{blk: open, root: account.ID()},
		{blk: change, root: previous},
		{blk: state, root: previous},
	}
	for _, test := range tests {
		t.Run(test.blk.Type().String(), func(t *testing.T) {
			require := require.New(t)

			require.Equal(test.root, test.blk.Root())
			require.True(Verify(account, test.blk.Hash(), test.blk.Signature()))

			parsed, err := Parse(test.blk.Bytes())
			require.NoError(err)
			require.Equal(test.blk.Type(), parsed.Type())
			require.Equal(test.blk.Hash(), parsed.Hash())
			require.Equal(test.blk.Work(), parsed.Work())
			require.Equal(test.blk.Signature(), parsed.Signature())
			require.Equal(test.blk.Bytes(), parsed.Bytes())
		})
	}
}

func TestHashExcludesSignatureAndWork(t *testing.T) {
	require := require.New(t)

	key1, account := newKey(t)
	key2, _ := newKey(t)
	previous := ids.GenerateTestID()
	balance := *uint256.NewInt(5)

	a, err := NewState(account, previous, account, balance, ids.Empty, key1, 1)
	require.NoError(err)
	b, err := NewState(account, previous, account, balance, ids.Empty, key2, 2)
	require.NoError(err)
	require.Equal(a.Hash(), b.Hash())
	require.NotEqual(a.Bytes(), b.Bytes())

	c, err := NewState(account, previous, account, *uint256.NewInt(6), ids.Empty, key1, 1)
	require.NoError(err)
	require.NotEqual(a.Hash(), c.Hash())
}

func TestStateBlockOpenRoot(t *testing.T) {
	require := require.New(t)

	key, account := newKey(t)
	blk, err := NewState(account, ids.Empty, account, *uint256.NewInt(1), ids.GenerateTestID(), key, 0)
	require.NoError(err)
	require.True(blk.IsOpen())
	require.Equal(account.ID(), blk.Root())
	require.Equal(ids.Empty, blk.Previous())
}

func TestProjections(t *testing.T) {
	require := require.New(t)

	key, account := newKey(t)
	source := ids.GenerateTestID()
	open, err := NewOpen(source, account, account, key, 0)
	require.NoError(err)

	got, ok := AccountOf(open)
	require.True(ok)
	require.Equal(account, got)

	rep, ok := RepresentativeOf(open)
	require.True(ok)
	require.Equal(account, rep)

	src, ok := SourceOf(open)
	require.True(ok)
	require.Equal(source, src)

	_, ok = BalanceOf(open)
	require.False(ok)
}

func TestEpochLink(t *testing.T) {
	require := require.New(t)

	require.Equal(ids.Empty, EpochLink(Epoch0))
	link := EpochLink(Epoch1)
	require.Equal("epoch v1 block", string(link[:14]))
	require.NotEqual(EpochLink(Epoch1), EpochLink(Epoch2))
}

func TestNewRejectsBadKey(t *testing.T) {
	_, err := NewChange(ids.Empty, Account{}, ed25519.PrivateKey{1, 2, 3}, 0)
	require.ErrorIs(t, err, errBadKey)
}
