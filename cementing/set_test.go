// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cementing

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
	"github.com/luxfi/nano/ledger"
	"github.com/luxfi/nano/ledger/ledgertest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestSet(env *ledgertest.Env, config Config) *Set {
	return New(config, env.Store, env.Ledger, metric.NewRegistry(), log.NewNoOpLogger())
}

func hashes(cemented []Cemented) []ids.ID {
	out := make([]ids.ID, len(cemented))
	for i, c := range cemented {
		out[i] = c.Block.Hash()
	}
	return out
}

// sends commits [n] sends from genesis and returns them in order.
func sends(t *testing.T, env *ledgertest.Env, destination block.Account, n int) []block.Block {
	balance := env.GenesisBalance(t)
	blocks := make([]block.Block, n)
	for i := range blocks {
		balance.SubUint64(&balance, 1)
		blk := ledgertest.Send(t, env.GenesisKey, env.Head(t, env.GenesisAccount()), destination, balance)
		require.Equal(t, ledger.Progress, env.Process(t, blk))
		blocks[i] = blk
	}
	return blocks
}

func TestCementsDependenciesFirst(t *testing.T) {
	require := require.New(t)

	env := ledgertest.New(t)
	key2 := ledgertest.NewKey(t)
	account2 := ledgertest.Account(key2)
	s1 := sends(t, env, account2, 1)[0]
	open := ledgertest.Open(t, key2, s1.Hash(), account2)
	require.Equal(ledger.Progress, env.Process(t, open))

	s := newTestSet(env, DefaultConfig)
	var batches [][]Cemented
	s.BatchCemented.Add(func(c []Cemented) {
		batches = append(batches, c)
	})

	require.True(s.Add(open.Hash()))
	require.True(s.Exists(open.Hash()))
	require.NoError(s.processBatch())

	require.Len(batches, 1)
	require.Equal([]ids.ID{s1.Hash(), open.Hash()}, hashes(batches[0]))
	require.Equal(uint64(1), batches[0][1].Sideband.Height)
	require.Equal(uint64(3), env.Ledger.CementedCount())
	require.False(s.Exists(open.Hash()))
	require.Zero(s.Len())
}

func TestBatchCementedOnce(t *testing.T) {
	require := require.New(t)

	env := ledgertest.New(t)
	s1 := sends(t, env, ledgertest.Account(ledgertest.NewKey(t)), 1)[0]

	s := newTestSet(env, DefaultConfig)
	var (
		batches [][]Cemented
		already []ids.ID
	)
	s.BatchCemented.Add(func(c []Cemented) {
		batches = append(batches, c)
	})
	s.AlreadyCemented.Add(func(hash ids.ID) {
		already = append(already, hash)
	})

	require.True(s.Add(s1.Hash()))
	require.False(s.Add(s1.Hash()))
	require.NoError(s.processBatch())
	require.NoError(s.processBatch())

	require.Len(batches, 1)
	require.Equal([]ids.ID{s1.Hash()}, hashes(batches[0]))
	require.Empty(already)

	// Queuing it again reports it as cemented.
	require.True(s.Add(s1.Hash()))
	require.NoError(s.processBatch())
	require.Len(batches, 1)
	require.Equal([]ids.ID{s1.Hash()}, already)
}

func TestBatchSizeLimit(t *testing.T) {
	require := require.New(t)

	env := ledgertest.New(t)
	blocks := sends(t, env, ledgertest.Account(ledgertest.NewKey(t)), 3)

	config := DefaultConfig
	config.BatchSize = 2
	s := newTestSet(env, config)
	var batches [][]Cemented
	s.BatchCemented.Add(func(c []Cemented) {
		batches = append(batches, c)
	})

	require.True(s.Add(blocks[2].Hash()))
	require.NoError(s.processBatch())
	require.Equal(1, s.Len())
	require.NoError(s.processBatch())
	require.Zero(s.Len())

	require.Len(batches, 2)
	require.Equal([]ids.ID{blocks[0].Hash(), blocks[1].Hash()}, hashes(batches[0]))
	require.Equal([]ids.ID{blocks[2].Hash()}, hashes(batches[1]))
}

func TestMissingBlockDropped(t *testing.T) {
	require := require.New(t)

	env := ledgertest.New(t)
	s := newTestSet(env, DefaultConfig)
	s.BatchCemented.Add(func([]Cemented) {
		require.FailNow("nothing to cement")
	})

	require.True(s.Add(ids.GenerateTestID()))
	require.NoError(s.processBatch())
	require.Zero(s.Len())
}

func TestQueueLimit(t *testing.T) {
	require := require.New(t)

	config := DefaultConfig
	config.MaxQueue = 1
	s := newTestSet(ledgertest.New(t), config)
	require.True(s.Add(ids.GenerateTestID()))
	require.False(s.Add(ids.GenerateTestID()))
}

func TestWorkerCements(t *testing.T) {
	require := require.New(t)

	env := ledgertest.New(t)
	s1 := sends(t, env, ledgertest.Account(ledgertest.NewKey(t)), 1)[0]

	s := newTestSet(env, DefaultConfig)
	cemented := make(chan []Cemented, 1)
	s.BatchCemented.Add(func(c []Cemented) {
		cemented <- c
	})
	s.Start(context.Background())
	defer s.Stop()

	require.True(s.Add(s1.Hash()))
	select {
	case c := <-cemented:
		require.Equal([]ids.ID{s1.Hash()}, hashes(c))
	case <-time.After(5 * time.Second):
		require.FailNow("block was not cemented")
	}
}
