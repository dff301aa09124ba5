// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"crypto/ed25519"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/nano/block"
)

func newTestStore(t *testing.T) *Store {
	s, err := New(memdb.New(), metric.NewRegistry(), log.NewNoOpLogger())
	require.NoError(t, err)
	return s
}

func testAccount(b byte) block.Account {
	var a block.Account
	a[0] = b
	return a
}

func TestWriteTxVisibility(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)
	account := testAccount(1)

	w := s.BeginWrite()
	require.NoError(w.PutAccount(account, &AccountInfo{BlockCount: 3}))

	// The write transaction sees its own write.
	info, err := w.Account(account)
	require.NoError(err)
	require.Equal(uint64(3), info.BlockCount)

	// Readers do not see it before commit.
	r := s.BeginRead()
	_, err = r.Account(account)
	require.ErrorIs(err, database.ErrNotFound)
	r.Discard()

	require.NoError(w.Commit())

	r = s.BeginRead()
	defer r.Discard()
	info, err = r.Account(account)
	require.NoError(err)
	require.Equal(uint64(3), info.BlockCount)
}

func TestWriteTxAbort(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)
	account := testAccount(1)

	hookRan := false
	w := s.BeginWrite()
	w.OnCommit(func() { hookRan = true })
	require.NoError(w.PutAccount(account, &AccountInfo{}))
	w.Abort()
	w.Abort()
	require.False(hookRan)

	r := s.BeginRead()
	defer r.Discard()
	_, err := r.Account(account)
	require.ErrorIs(err, database.ErrNotFound)
}

func TestCommitHooksRunInOrder(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)

	var order []int
	w := s.BeginWrite()
	w.OnCommit(func() { order = append(order, 1) })
	w.OnCommit(func() { order = append(order, 2) })
	require.NoError(w.Commit())
	require.Equal([]int{1, 2}, order)

	require.ErrorIs(w.Commit(), errTxDone)

	// The write lock was released.
	w = s.BeginWrite()
	w.Abort()
}

func TestPendingFor(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)
	dest := testAccount(1)
	other := testAccount(2)

	w := s.BeginWrite()
	keys := []PendingKey{
		{Account: dest, Hash: ids.ID{3}},
		{Account: dest, Hash: ids.ID{1}},
		{Account: other, Hash: ids.ID{2}},
	}
	for i, key := range keys {
		require.NoError(w.PutPending(key, &PendingInfo{
			Source: testAccount(9),
			Amount: *uint256.NewInt(uint64(i + 1)),
		}))
	}
	require.NoError(w.Commit())

	r := s.BeginRead()
	defer r.Discard()

	entries, err := r.PendingFor(dest)
	require.NoError(err)
	require.Len(entries, 2)
	require.Equal(ids.ID{1}, entries[0].Key.Hash)
	require.Equal(ids.ID{3}, entries[1].Key.Hash)
	require.Equal(uint64(2), entries[0].Info.Amount.Uint64())

	found, err := r.AnyPending(other)
	require.NoError(err)
	require.True(found)

	found, err = r.AnyPending(testAccount(7))
	require.NoError(err)
	require.False(found)

	count, err := r.Count(Pending)
	require.NoError(err)
	require.Equal(uint64(3), count)
}

func TestRepWeightZeroDeletes(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)
	rep := testAccount(1)

	w := s.BeginWrite()
	require.NoError(w.PutRepWeight(rep, *uint256.NewInt(10)))
	require.NoError(w.Commit())

	w = s.BeginWrite()
	weight, err := w.RepWeight(rep)
	require.NoError(err)
	require.Equal(uint64(10), weight.Uint64())
	require.NoError(w.PutRepWeight(rep, uint256.Int{}))
	require.NoError(w.Commit())

	r := s.BeginRead()
	defer r.Discard()
	weights, err := r.RepWeights()
	require.NoError(err)
	require.Empty(weights)
}

func TestBlockSideband(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)

	_, key, err := ed25519.GenerateKey(nil)
	require.NoError(err)
	blk, err := block.NewChange(ids.GenerateTestID(), testAccount(4), key, 0)
	require.NoError(err)

	w := s.BeginWrite()
	require.NoError(w.PutBlock(blk, &block.Sideband{Height: 2}))
	successor := ids.GenerateTestID()
	require.NoError(w.SetSuccessor(blk.Hash(), successor))
	require.NoError(w.Commit())

	r := s.BeginRead()
	defer r.Discard()

	exists, err := r.BlockExists(blk.Hash())
	require.NoError(err)
	require.True(exists)

	got, sideband, err := r.Block(blk.Hash())
	require.NoError(err)
	require.Equal(blk.Hash(), got.Hash())
	require.Equal(uint64(2), sideband.Height)
	require.Equal(successor, sideband.Successor)

	_, _, err = r.Block(ids.GenerateTestID())
	require.ErrorIs(err, database.ErrNotFound)
}

func TestConfirmationHeightDefault(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)
	account := testAccount(1)

	r := s.BeginRead()
	info, err := r.ConfirmationHeight(account)
	require.NoError(err)
	require.Zero(info.Height)
	r.Discard()

	w := s.BeginWrite()
	require.NoError(w.PutConfirmationHeight(account, ConfirmationHeightInfo{Height: 5, Frontier: ids.ID{5}}))
	require.NoError(w.Commit())

	r = s.BeginRead()
	defer r.Discard()
	info, err = r.ConfirmationHeight(account)
	require.NoError(err)
	require.Equal(uint64(5), info.Height)
	require.Equal(ids.ID{5}, info.Frontier)
}

func TestInitialized(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)

	w := s.BeginWrite()
	initialized, err := w.Initialized()
	require.NoError(err)
	require.False(initialized)
	require.NoError(w.SetInitialized())
	require.NoError(w.Commit())

	r := s.BeginRead()
	defer r.Discard()
	initialized, err = r.Initialized()
	require.NoError(err)
	require.True(initialized)
}
