// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/nano/block"
	"github.com/luxfi/nano/consensus/election"
	"github.com/luxfi/nano/ledger"
	"github.com/luxfi/nano/ledger/ledgertest"

	safemath "github.com/luxfi/nano/utils/math"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type noWeights struct{}

func (noWeights) Get(block.Account) block.Amount {
	return block.Amount{}
}

type fixedQuorum struct{}

func (fixedQuorum) Delta() block.Amount {
	return ledgertest.Amount(1)
}

func newActive(size int) *election.Active {
	config := election.DefaultConfig
	config.Size = size
	return election.NewActive(config, noWeights{}, fixedQuorum{}, nil, nil, metric.NewRegistry(), log.NewNoOpLogger())
}

func newBucket(active *election.Active, config BucketConfig) *Bucket {
	b := NewBucket(0, block.Amount{}, config, active)
	active.Stopped.Add(func(s election.Status) {
		b.ElectionStopped(s.Root)
	})
	return b
}

// unrelated returns a block with a fresh root.
func unrelated(t *testing.T) block.Block {
	key := ledgertest.NewKey(t)
	return ledgertest.Send(t, key, ids.GenerateTestID(), ledgertest.Account(key), ledgertest.Amount(0))
}

func TestBucketMinimums(t *testing.T) {
	require := require.New(t)

	minimums := bucketMinimums()
	require.Len(minimums, 63)
	require.True(minimums[0].IsZero())
	require.Equal(pow2(79), minimums[1])
	require.Equal(pow2(88), minimums[2])
	require.Equal(pow2(120), minimums[62])
	for i := 1; i < len(minimums); i++ {
		require.True(minimums[i-1].Lt(&minimums[i]))
	}
}

func TestBucketPushDropsLowestPriority(t *testing.T) {
	require := require.New(t)

	b := newBucket(newActive(10), BucketConfig{MaxBlocks: 2, ReservedElections: 1, MaxElections: 1})
	blocks := []block.Block{unrelated(t), unrelated(t), unrelated(t), unrelated(t)}

	require.True(b.Push(3, blocks[0]))
	require.False(b.Push(3, blocks[0]))
	require.True(b.Push(1, blocks[1]))
	require.True(b.Push(2, blocks[2]))
	require.False(b.Push(5, blocks[3]))
	require.Equal(2, b.Len())

	require.True(b.Activate())
	e, ok := b.active.Election(blocks[1].Root())
	require.True(ok)
	require.Equal(election.Priority, e.Behavior())
}

func TestBucketLimits(t *testing.T) {
	require := require.New(t)

	active := newActive(1)
	b := newBucket(active, BucketConfig{MaxBlocks: 10, ReservedElections: 1, MaxElections: 2})
	for i := range 3 {
		require.True(b.Push(uint64(i), unrelated(t)))
	}

	require.True(b.Available())
	require.True(b.Activate())
	require.Equal(1, b.ElectionCount())

	// Past the reservation the bucket needs global vacancy.
	require.Zero(active.Vacancy())
	require.False(b.Available())
}

func TestBucketKeepsBlockWithoutVacancy(t *testing.T) {
	require := require.New(t)

	active := newActive(1)
	other := unrelated(t)
	_, inserted := active.Insert(other, election.Priority)
	require.True(inserted)

	b := newBucket(active, BucketConfig{MaxBlocks: 10, ReservedElections: 2, MaxElections: 2})
	blk := unrelated(t)
	require.True(b.Push(1, blk))

	// The reservation offers a slot the election container cannot give.
	require.True(b.Available())
	require.False(b.Activate())
	require.Equal(1, b.Len())
	require.Zero(b.ElectionCount())
	_, ok := active.Election(blk.Root())
	require.False(ok)

	active.Erase(other.Root())
	require.True(b.Activate())
	require.Zero(b.Len())
	require.Equal(1, b.ElectionCount())
	_, ok = active.Election(blk.Root())
	require.True(ok)
}

func TestBucketCancelsLowestElection(t *testing.T) {
	require := require.New(t)

	active := newActive(10)
	b := newBucket(active, BucketConfig{MaxBlocks: 10, ReservedElections: 1, MaxElections: 1})
	low := unrelated(t)
	high := unrelated(t)

	require.True(b.Push(5, low))
	require.True(b.Activate())
	require.False(b.Available())

	require.True(b.Push(1, high))
	require.True(b.Available())
	require.True(b.Activate())

	_, ok := active.Election(low.Root())
	require.False(ok)
	_, ok = active.Election(high.Root())
	require.True(ok)
	require.Equal(1, b.ElectionCount())
}

func newPriority(env *ledgertest.Env, active Active) *Priority {
	return NewPriority(DefaultConfig, env.Store, env.Ledger, active, metric.NewRegistry(), log.NewNoOpLogger())
}

func TestPriorityActivate(t *testing.T) {
	require := require.New(t)

	env := ledgertest.New(t)
	p := newPriority(env, newActive(10))
	genesis := env.GenesisAccount()
	key2 := ledgertest.NewKey(t)
	account2 := ledgertest.Account(key2)

	var remaining block.Amount
	remaining.SubUint64(&safemath.MaxAmount, 1)
	send := ledgertest.Send(t, env.GenesisKey, env.Head(t, genesis), account2, remaining)
	require.Equal(ledger.Progress, env.Process(t, send))
	open := ledgertest.Open(t, key2, send.Hash(), account2)
	require.Equal(ledger.Progress, env.Process(t, open))

	r := env.Store.BeginRead()
	activated, err := p.Activate(r, genesis)
	require.NoError(err)
	require.True(activated)

	// Already queued.
	activated, err = p.Activate(r, genesis)
	require.NoError(err)
	require.False(activated)

	// The open waits for its send to be cemented.
	activated, err = p.Activate(r, account2)
	require.NoError(err)
	require.False(activated)
	r.Discard()

	require.Equal(1, p.Bucket(safemath.MaxAmount).Len())
	require.Equal(1, p.Len())

	env.Confirm(t, send.Hash())

	r = env.Store.BeginRead()
	defer r.Discard()
	require.NoError(p.ActivateSuccessors(r, send))
	require.Equal(2, p.Len())
	require.Equal(1, p.Bucket(ledgertest.Amount(1)).Len())
}

func TestPriorityStartsElections(t *testing.T) {
	require := require.New(t)

	env := ledgertest.New(t)
	active := newActive(10)
	p := newPriority(env, active)
	active.Stopped.Add(func(s election.Status) {
		p.ElectionStopped(s.Root)
	})

	var remaining block.Amount
	remaining.SubUint64(&safemath.MaxAmount, 1)
	send := ledgertest.Send(t, env.GenesisKey, env.Head(t, env.GenesisAccount()), ledgertest.Account(ledgertest.NewKey(t)), remaining)
	require.Equal(ledger.Progress, env.Process(t, send))

	p.Start(context.Background())
	defer p.Stop()

	p.ActivateAll()
	require.Eventually(func() bool {
		_, ok := active.Election(send.Root())
		return ok
	}, 5*time.Second, 10*time.Millisecond)
	require.Zero(p.Len())
}
