// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package processor turns untrusted blocks into ledger commits. Blocks are
// queued per source and a single writer drains them in batches, one write
// transaction per batch.
package processor

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/nano/block"
	"github.com/luxfi/nano/ledger"
	"github.com/luxfi/nano/state"
	"github.com/luxfi/nano/utils/event"
)

var (
	ErrQueueFull = errors.New("block queue is full")
	ErrStopped   = errors.New("block processor stopped")
)

// ForkResolver is consulted when a block conflicts with a committed one.
type ForkResolver interface {
	// Winner returns the block currently leading the election at [root].
	Winner(root ids.ID) (ids.ID, bool)
	// Publish offers [blk] as a candidate in the election at its root.
	Publish(blk block.Block) bool
}

type Processor struct {
	config   Config
	log      log.Logger
	store    *state.Store
	ledger   *ledger.Ledger
	resolver ForkResolver
	metrics  *metrics

	lock      sync.Mutex
	queue     *fairQueue[*Context]
	notify    chan struct{}
	unchecked *unchecked

	BlockProcessed event.Observers[Processed]
	BatchProcessed event.Observers[[]Processed]
	RolledBack     event.Observers[RolledBack]

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(
	config Config,
	store *state.Store,
	l *ledger.Ledger,
	registry metric.Registry,
	log log.Logger,
) *Processor {
	return &Processor{
		config:    config,
		log:       log,
		store:     store,
		ledger:    l,
		metrics:   newMetrics(registry),
		queue:     newFairQueue[*Context](config.queueSizes(), config.priorities()),
		notify:    make(chan struct{}, 1),
		unchecked: newUnchecked(config.UncheckedSize),
	}
}

// SetForkResolver must be called before Start.
func (p *Processor) SetForkResolver(resolver ForkResolver) {
	p.resolver = resolver
}

// Add queues [blk] without blocking. It returns false if the queue of
// [source] is full.
func (p *Processor) Add(blk block.Block, source Source, origin ids.NodeID) bool {
	return p.enqueue(&Context{
		Block:   blk,
		Source:  source,
		Origin:  origin,
		Arrival: time.Now(),
	})
}

// AddBlocking queues [blk] as a local block and waits for its first
// processing result.
func (p *Processor) AddBlocking(ctx context.Context, blk block.Block) (ledger.Result, error) {
	done := make(chan outcome, 1)
	c := &Context{
		Block:   blk,
		Source:  Local,
		Arrival: time.Now(),
		done:    done,
	}
	if !p.enqueue(c) {
		return 0, ErrQueueFull
	}
	select {
	case o := <-done:
		return o.result, o.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Force queues [blk] ahead of every other source. If a different block
// occupies its root, that block and its dependents are rolled back.
func (p *Processor) Force(blk block.Block) {
	if !p.enqueue(&Context{
		Block:   blk,
		Source:  Forced,
		Arrival: time.Now(),
	}) {
		p.log.Warn("dropping forced block",
			log.Stringer("hash", blk.Hash()),
		)
	}
}

func (p *Processor) enqueue(c *Context) bool {
	p.lock.Lock()
	ok := p.queue.push(c.Source, c)
	size := p.queue.lenOf(c.Source)
	p.lock.Unlock()

	if !ok {
		p.metrics.overfill.WithLabelValues(c.Source.String()).Inc()
		return false
	}
	p.metrics.queued.WithLabelValues(c.Source.String()).Set(float64(size))
	select {
	case p.notify <- struct{}{}:
	default:
	}
	return true
}

// Len is the number of queued blocks.
func (p *Processor) Len() int {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.queue.len()
}

// Start launches the writer. Stop must be called to release it.
func (p *Processor) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(ctx)
	}()
}

func (p *Processor) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	// Unblock submitters still waiting on a result.
	p.lock.Lock()
	defer p.lock.Unlock()
	for {
		_, c, ok := p.queue.pop()
		if !ok {
			return
		}
		c.respond(0, ErrStopped)
	}
}

func (p *Processor) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.notify:
		}
		for p.Len() > 0 {
			if ctx.Err() != nil {
				return
			}
			if err := p.processBatch(); err != nil {
				p.log.Error("failed to process block batch", zap.Error(err))
			}
		}
	}
}

// next pops the next block, forced blocks first.
func (p *Processor) next() (*Context, bool) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if c, ok := p.queue.popFrom(Forced); ok {
		return c, true
	}
	_, c, ok := p.queue.pop()
	return c, ok
}

type batchItem struct {
	Processed
	rolledBack []block.Block
}

func (p *Processor) processBatch() error {
	start := time.Now()
	tx := p.store.BeginWrite()

	var items []batchItem
	for len(items) < p.config.BatchSize && time.Since(start) < p.config.MaxBatchTime {
		c, ok := p.next()
		if !ok {
			break
		}
		result, rolledBack, err := p.processOne(tx, c)
		if err != nil {
			tx.Abort()
			c.respond(0, err)
			for _, item := range items {
				item.Context.respond(0, err)
			}
			return err
		}
		items = append(items, batchItem{
			Processed:  Processed{Result: result, Context: c},
			rolledBack: rolledBack,
		})
	}
	if len(items) == 0 {
		tx.Abort()
		return nil
	}
	if err := tx.Commit(); err != nil {
		for _, item := range items {
			item.Context.respond(0, err)
		}
		return err
	}

	p.metrics.batchTime.Observe(float64(time.Since(start)))
	p.finish(items)
	return nil
}

// processOne runs [c] through the ledger. A fork is resolved in place when
// the block is forced or is already the election winner for its root.
func (p *Processor) processOne(tx *state.WriteTx, c *Context) (ledger.Result, []block.Block, error) {
	blk := c.Block
	result, err := p.ledger.Process(tx, blk)
	if err != nil || result != ledger.Fork {
		return result, nil, err
	}
	if !p.shouldReplace(c) {
		return result, nil, nil
	}

	competitor, ok, err := p.ledger.Competitor(tx, blk)
	if err != nil || !ok {
		return result, nil, err
	}
	cemented, err := p.ledger.BlockConfirmed(tx, competitor)
	if err != nil {
		return result, nil, err
	}
	if cemented {
		p.log.Warn("fork winner conflicts with a cemented block",
			log.Stringer("winner", blk.Hash()),
			log.Stringer("cemented", competitor),
		)
		return result, nil, nil
	}

	rolledBack, err := p.ledger.Rollback(tx, competitor)
	if err != nil {
		return result, nil, err
	}
	p.log.Debug("rolled back fork loser",
		log.Stringer("winner", blk.Hash()),
		log.Stringer("loser", competitor),
		log.Int("blocks", len(rolledBack)),
	)
	result, err = p.ledger.Process(tx, blk)
	return result, rolledBack, err
}

func (p *Processor) shouldReplace(c *Context) bool {
	if c.Source == Forced {
		return true
	}
	if p.resolver == nil {
		return false
	}
	winner, ok := p.resolver.Winner(c.Block.Root())
	return ok && winner == c.Block.Hash()
}

// finish publishes the outcome of a committed batch.
func (p *Processor) finish(items []batchItem) {
	processed := make([]Processed, len(items))
	for i, item := range items {
		processed[i] = item.Processed
		c := item.Context
		blk := c.Block

		p.metrics.processed.WithLabelValues(item.Result.String()).Inc()
		c.respond(item.Result, nil)

		if len(item.rolledBack) > 0 {
			p.metrics.rolledBack.Add(float64(len(item.rolledBack)))
			p.RolledBack.Notify(RolledBack{
				Blocks: item.rolledBack,
				Winner: blk.Hash(),
			})
		}

		switch item.Result {
		case ledger.Progress:
			for _, waiting := range p.unchecked.trigger(blk.Hash()) {
				p.enqueue(waiting)
			}
		case ledger.GapPrevious, ledger.GapSource:
			if dep, ok := dependency(blk, item.Result); ok {
				p.unchecked.put(dep, c)
			}
		case ledger.Fork:
			if p.resolver != nil {
				p.resolver.Publish(blk)
			}
		}
		p.BlockProcessed.Notify(item.Processed)
	}
	p.metrics.unchecked.Set(float64(p.unchecked.len()))
	p.BatchProcessed.Notify(processed)
}
