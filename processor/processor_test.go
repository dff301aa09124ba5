// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package processor

import (
	"context"
	"sync"
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

type fakeResolver struct {
	lock      sync.Mutex
	winners   map[ids.ID]ids.ID
	published []ids.ID
}

func (r *fakeResolver) Winner(root ids.ID) (ids.ID, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	winner, ok := r.winners[root]
	return winner, ok
}

func (r *fakeResolver) Publish(blk block.Block) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.published = append(r.published, blk.Hash())
	return true
}

func (r *fakeResolver) Published() []ids.ID {
	r.lock.Lock()
	defer r.lock.Unlock()

	return append([]ids.ID(nil), r.published...)
}

func newTestProcessor(t *testing.T, env *ledgertest.Env, config Config) *Processor {
	t.Helper()
	p := New(config, env.Store, env.Ledger, metric.NewRegistry(), log.NewNoOpLogger())
	p.Start(context.Background())
	t.Cleanup(p.Stop)
	return p
}

func send(t *testing.T, env *ledgertest.Env, previous ids.ID, balance block.Amount, to block.Account) *block.StateBlock {
	return ledgertest.State(t, env.GenesisKey, previous, env.GenesisAccount(), balance, to.ID())
}

func minus(a block.Amount, v uint64) block.Amount {
	var r block.Amount
	r.SubUint64(&a, v)
	return r
}

func TestFairQueue(t *testing.T) {
	require := require.New(t)

	var sizes, priorities [numSources]int
	sizes[Live], priorities[Live] = 2, 1
	sizes[Local], priorities[Local] = 8, 2
	q := newFairQueue[int](sizes, priorities)

	require.True(q.push(Live, 1))
	require.True(q.push(Live, 2))
	require.False(q.push(Live, 3))
	require.False(q.push(Bootstrap, 4))
	for i := 10; i < 14; i++ {
		require.True(q.push(Local, i))
	}
	require.Equal(6, q.len())

	var order []int
	for {
		_, v, ok := q.pop()
		if !ok {
			break
		}
		order = append(order, v)
	}
	require.Equal([]int{1, 10, 11, 2, 12, 13}, order)
	require.Zero(q.len())
}

func TestAddBlocking(t *testing.T) {
	require := require.New(t)

	env := ledgertest.New(t)
	p := newTestProcessor(t, env, DefaultConfig)

	account := ledgertest.Account(ledgertest.NewKey(t))
	blk := send(t, env, env.Head(t, env.GenesisAccount()), minus(env.GenesisBalance(t), 1), account)

	result, err := p.AddBlocking(context.Background(), blk)
	require.NoError(err)
	require.Equal(ledger.Progress, result)

	result, err = p.AddBlocking(context.Background(), blk)
	require.NoError(err)
	require.Equal(ledger.Old, result)
	require.Equal(blk.Hash(), env.Head(t, env.GenesisAccount()))
}

func TestAddBlockingQueueFull(t *testing.T) {
	require := require.New(t)

	env := ledgertest.New(t)
	config := DefaultConfig
	config.MaxSystemQueue = 0
	p := New(config, env.Store, env.Ledger, metric.NewRegistry(), log.NewNoOpLogger())

	account := ledgertest.Account(ledgertest.NewKey(t))
	blk := send(t, env, env.Head(t, env.GenesisAccount()), minus(env.GenesisBalance(t), 1), account)

	_, err := p.AddBlocking(context.Background(), blk)
	require.ErrorIs(err, ErrQueueFull)
	require.False(p.Add(blk, Bootstrap, ids.EmptyNodeID))
}

func TestAddBlockingCanceled(t *testing.T) {
	require := require.New(t)

	env := ledgertest.New(t)
	p := New(DefaultConfig, env.Store, env.Ledger, metric.NewRegistry(), log.NewNoOpLogger())

	account := ledgertest.Account(ledgertest.NewKey(t))
	blk := send(t, env, env.Head(t, env.GenesisAccount()), minus(env.GenesisBalance(t), 1), account)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.AddBlocking(ctx, blk)
	require.ErrorIs(err, context.Canceled)
	require.Equal(1, p.Len())

	p.Stop()
	require.Zero(p.Len())
}

func TestGapResolvedByDependency(t *testing.T) {
	require := require.New(t)

	env := ledgertest.New(t)
	p := newTestProcessor(t, env, DefaultConfig)

	processed := make(chan Processed, 8)
	p.BlockProcessed.Add(func(e Processed) {
		processed <- e
	})

	key := ledgertest.NewKey(t)
	account := ledgertest.Account(key)
	s1 := send(t, env, env.Head(t, env.GenesisAccount()), minus(env.GenesisBalance(t), 5), account)
	open := ledgertest.State(t, key, ids.Empty, account, ledgertest.Amount(5), s1.Hash())

	result, err := p.AddBlocking(context.Background(), open)
	require.NoError(err)
	require.Equal(ledger.GapSource, result)
	require.Equal(ledger.GapSource, (<-processed).Result)

	require.True(p.Add(s1, Live, ids.GenerateTestNodeID()))

	e := <-processed
	require.Equal(ledger.Progress, e.Result)
	require.Equal(s1.Hash(), e.Context.Block.Hash())
	require.Equal(Live, e.Context.Source)

	e = <-processed
	require.Equal(ledger.Progress, e.Result)
	require.Equal(open.Hash(), e.Context.Block.Hash())
	require.Equal(open.Hash(), env.Head(t, account))
}

func TestForkPublishedToResolver(t *testing.T) {
	require := require.New(t)

	env := ledgertest.New(t)
	resolver := &fakeResolver{}
	p := New(DefaultConfig, env.Store, env.Ledger, metric.NewRegistry(), log.NewNoOpLogger())
	p.SetForkResolver(resolver)
	p.Start(context.Background())
	defer p.Stop()

	head := env.Head(t, env.GenesisAccount())
	balance := minus(env.GenesisBalance(t), 1)
	s1 := send(t, env, head, balance, ledgertest.Account(ledgertest.NewKey(t)))
	fork := send(t, env, head, balance, ledgertest.Account(ledgertest.NewKey(t)))

	result, err := p.AddBlocking(context.Background(), s1)
	require.NoError(err)
	require.Equal(ledger.Progress, result)

	result, err = p.AddBlocking(context.Background(), fork)
	require.NoError(err)
	require.Equal(ledger.Fork, result)
	require.Equal(s1.Hash(), env.Head(t, env.GenesisAccount()))
	require.Eventually(func() bool {
		return len(resolver.Published()) == 1
	}, time.Second, 10*time.Millisecond)
	require.Equal(fork.Hash(), resolver.Published()[0])
}

func TestWinnerReplacesCompetitor(t *testing.T) {
	require := require.New(t)

	env := ledgertest.New(t)
	resolver := &fakeResolver{winners: make(map[ids.ID]ids.ID)}
	p := New(DefaultConfig, env.Store, env.Ledger, metric.NewRegistry(), log.NewNoOpLogger())
	p.SetForkResolver(resolver)
	p.Start(context.Background())
	defer p.Stop()

	rolledBack := make(chan RolledBack, 1)
	p.RolledBack.Add(func(e RolledBack) {
		rolledBack <- e
	})

	head := env.Head(t, env.GenesisAccount())
	balance := minus(env.GenesisBalance(t), 1)
	s1 := send(t, env, head, balance, ledgertest.Account(ledgertest.NewKey(t)))
	fork := send(t, env, head, balance, ledgertest.Account(ledgertest.NewKey(t)))

	result, err := p.AddBlocking(context.Background(), s1)
	require.NoError(err)
	require.Equal(ledger.Progress, result)

	resolver.lock.Lock()
	resolver.winners[head] = fork.Hash()
	resolver.lock.Unlock()

	result, err = p.AddBlocking(context.Background(), fork)
	require.NoError(err)
	require.Equal(ledger.Progress, result)
	require.Equal(fork.Hash(), env.Head(t, env.GenesisAccount()))

	e := <-rolledBack
	require.Equal(fork.Hash(), e.Winner)
	require.Len(e.Blocks, 1)
	require.Equal(s1.Hash(), e.Blocks[0].Hash())
}

func TestForceReplacesCompetitor(t *testing.T) {
	require := require.New(t)

	env := ledgertest.New(t)
	p := newTestProcessor(t, env, DefaultConfig)

	processed := make(chan Processed, 4)
	p.BlockProcessed.Add(func(e Processed) {
		processed <- e
	})

	head := env.Head(t, env.GenesisAccount())
	balance := minus(env.GenesisBalance(t), 1)
	s1 := send(t, env, head, balance, ledgertest.Account(ledgertest.NewKey(t)))
	fork := send(t, env, head, balance, ledgertest.Account(ledgertest.NewKey(t)))

	result, err := p.AddBlocking(context.Background(), s1)
	require.NoError(err)
	require.Equal(ledger.Progress, result)
	<-processed

	p.Force(fork)
	e := <-processed
	require.Equal(ledger.Progress, e.Result)
	require.Equal(Forced, e.Context.Source)
	require.Equal(fork.Hash(), env.Head(t, env.GenesisAccount()))
}

func TestForceKeepsCementedCompetitor(t *testing.T) {
	require := require.New(t)

	env := ledgertest.New(t)
	p := newTestProcessor(t, env, DefaultConfig)

	processed := make(chan Processed, 4)
	p.BlockProcessed.Add(func(e Processed) {
		processed <- e
	})

	head := env.Head(t, env.GenesisAccount())
	balance := minus(env.GenesisBalance(t), 1)
	s1 := send(t, env, head, balance, ledgertest.Account(ledgertest.NewKey(t)))
	fork := send(t, env, head, balance, ledgertest.Account(ledgertest.NewKey(t)))

	require.Equal(ledger.Progress, env.Process(t, s1))
	env.Confirm(t, s1.Hash())

	p.Force(fork)
	e := <-processed
	require.Equal(ledger.Fork, e.Result)
	require.Equal(s1.Hash(), env.Head(t, env.GenesisAccount()))
}
