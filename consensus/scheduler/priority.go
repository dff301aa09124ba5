// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package scheduler decides which unconfirmed blocks get elections. Blocks
// are bucketed by the balance of their account so that high value accounts
// always have election slots.
package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/nano/block"
	"github.com/luxfi/nano/ledger"
	"github.com/luxfi/nano/state"

	safemath "github.com/luxfi/nano/utils/math"
)

var DefaultConfig = Config{
	Bucket: BucketConfig{
		MaxBlocks:         8 * 1024,
		ReservedElections: 100,
		MaxElections:      150,
	},
	RetryInterval: time.Second,
}

type Config struct {
	Bucket BucketConfig `json:"bucket"`
	// RetryInterval is how often buckets are re-examined without a wake up.
	RetryInterval time.Duration `json:"retry-interval"`
}

// Priority assigns the next uncemented block of each account to a bucket and
// activates buckets while they have room.
type Priority struct {
	config  Config
	store   *state.Store
	ledger  *ledger.Ledger
	log     log.Logger
	metrics *metrics

	buckets []*Bucket

	notify chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPriority(
	config Config,
	store *state.Store,
	l *ledger.Ledger,
	active Active,
	registry metric.Registry,
	log log.Logger,
) *Priority {
	minimums := bucketMinimums()
	buckets := make([]*Bucket, len(minimums))
	for i, minimum := range minimums {
		buckets[i] = NewBucket(i, minimum, config.Bucket, active)
	}
	return &Priority{
		config:  config,
		store:   store,
		ledger:  l,
		log:     log,
		metrics: newMetrics(registry),
		buckets: buckets,
		notify:  make(chan struct{}, 1),
	}
}

// bucketMinimums splits the balance range into buckets that are densest
// around the balances most accounts hold.
func bucketMinimums() []block.Amount {
	var minimums []block.Amount
	region := func(begin, end uint, count uint64) {
		start := pow2(begin)
		var width block.Amount
		width.Sub(ptr(pow2(end)), &start)
		width = safemath.MulDivAmount(width, 1, count)
		for i := range count {
			step := safemath.MulDivAmount(width, i, 1)
			var minimum block.Amount
			minimum.Add(&start, &step)
			minimums = append(minimums, minimum)
		}
	}
	minimums = append(minimums, block.Amount{})
	region(79, 88, 1)
	region(88, 92, 2)
	region(92, 96, 4)
	region(96, 100, 8)
	region(100, 104, 16)
	region(104, 108, 16)
	region(108, 112, 8)
	region(112, 116, 4)
	region(116, 120, 2)
	return append(minimums, pow2(120))
}

func pow2(n uint) block.Amount {
	var a block.Amount
	a.Lsh(ptr(*new(block.Amount).SetOne()), n)
	return a
}

func ptr(a block.Amount) *block.Amount {
	return &a
}

// Bucket returns the bucket covering [balance].
func (p *Priority) Bucket(balance block.Amount) *Bucket {
	i := sort.Search(len(p.buckets), func(i int) bool {
		return balance.Lt(&p.buckets[i].minBalance)
	})
	return p.buckets[max(i-1, 0)]
}

func (p *Priority) Buckets() []*Bucket {
	return p.buckets
}

// Activate queues the first uncemented block of [account] if everything it
// depends on is cemented. It returns whether a block was queued.
func (p *Priority) Activate(tx state.Reader, account block.Account) (bool, error) {
	info, err := p.ledger.AccountInfo(tx, account)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	confirmed, err := p.ledger.ConfirmationHeight(tx, account)
	if err != nil {
		return false, err
	}
	if confirmed.Height >= info.BlockCount {
		return false, nil
	}

	hash := info.OpenBlock
	if confirmed.Height > 0 {
		successor, ok, err := p.ledger.Successor(tx, confirmed.Frontier)
		if err != nil || !ok {
			return false, err
		}
		hash = successor
	}
	ready, err := p.ledger.DependentsConfirmed(tx, hash)
	if err != nil || !ready {
		return false, err
	}
	blk, sideband, err := p.ledger.Block(tx, hash)
	if err != nil {
		return false, err
	}

	// A send is prioritized by the balance it spends from.
	balance := sideband.Balance
	if previous := blk.Previous(); previous != ids.Empty {
		prevBalance, err := p.ledger.Balance(tx, previous)
		if err != nil {
			return false, err
		}
		balance = safemath.MaxAmountOf(balance, prevBalance)
	}

	if !p.Bucket(balance).Push(info.Modified, blk) {
		return false, nil
	}
	p.metrics.activated.Inc()
	p.Notify()
	return true, nil
}

// ActivateSuccessors queues the next blocks unlocked by cementing [blk]: the
// successor in its own account and, for a send, the destination's block.
func (p *Priority) ActivateSuccessors(tx state.Reader, blk block.Block) error {
	sideband, err := p.ledger.Sideband(tx, blk.Hash())
	if err != nil {
		return err
	}
	if _, err := p.Activate(tx, sideband.Account); err != nil {
		return err
	}
	if destination, ok := ledger.Destination(blk, sideband); ok && destination != sideband.Account {
		if _, err := p.Activate(tx, destination); err != nil {
			return err
		}
	}
	return nil
}

// ElectionStopped releases the bucket slot of the election at [root].
func (p *Priority) ElectionStopped(root ids.ID) {
	for _, b := range p.buckets {
		if b.ElectionStopped(root) {
			p.Notify()
			return
		}
	}
}

// Notify wakes the activation loop.
func (p *Priority) Notify() {
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// Len is the number of queued blocks across all buckets.
func (p *Priority) Len() int {
	var n int
	for _, b := range p.buckets {
		n += b.Len()
	}
	return n
}

// activateBuckets starts elections until no bucket has room.
func (p *Priority) activateBuckets(ctx context.Context) {
	for ctx.Err() == nil {
		var started bool
		for _, b := range p.buckets {
			if b.Available() && b.Activate() {
				started = true
				p.metrics.started.Inc()
			}
		}
		if !started {
			break
		}
	}
	p.metrics.queued.Set(float64(p.Len()))
}

func (p *Priority) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(p.config.RetryInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.notify:
			case <-ticker.C:
			}
			p.activateBuckets(ctx)
		}
	}()
}

func (p *Priority) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

// ActivateAll queues the next block of every account. It is used once the
// ledger is loaded.
func (p *Priority) ActivateAll() {
	r := p.store.BeginRead()
	var accounts []block.Account
	err := r.Accounts(func(account block.Account, _ *state.AccountInfo) error {
		accounts = append(accounts, account)
		return nil
	})
	if err != nil {
		r.Discard()
		p.log.Error("failed to list accounts", zap.Error(err))
		return
	}
	for _, account := range accounts {
		if _, err := p.Activate(r, account); err != nil {
			p.log.Error("failed to activate account",
				log.Stringer("account", account),
				zap.Error(err),
			)
		}
	}
	r.Discard()
}
