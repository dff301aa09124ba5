// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package cementing makes confirmed blocks irreversible. Hashes confirmed by
// elections are queued and a single writer advances confirmation heights in
// batches, dependencies first.
package cementing

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/math/set"
	"github.com/luxfi/metric"

	"github.com/luxfi/nano/block"
	"github.com/luxfi/nano/ledger"
	"github.com/luxfi/nano/state"
	"github.com/luxfi/nano/utils/event"
)

var DefaultConfig = Config{
	BatchSize:    256,
	MaxBatchTime: 250 * time.Millisecond,
	MaxQueue:     128 * 1024,
}

type Config struct {
	// BatchSize bounds the blocks cemented per write transaction.
	BatchSize    int           `json:"batch-size"`
	MaxBatchTime time.Duration `json:"max-batch-time"`
	MaxQueue     int           `json:"max-queue"`
}

// Cemented is a block that became irreversible.
type Cemented struct {
	Block    block.Block
	Sideband *block.Sideband
}

// Set is the worklist of confirmed hashes waiting to be cemented.
type Set struct {
	config  Config
	log     log.Logger
	store   *state.Store
	ledger  *ledger.Ledger
	metrics *metrics

	lock   sync.Mutex
	queue  []ids.ID
	queued set.Set[ids.ID]
	notify chan struct{}

	// BatchCemented is notified once per committed batch with the blocks it
	// cemented, dependencies first.
	BatchCemented event.Observers[[]Cemented]
	// AlreadyCemented is notified for queued hashes that were cemented by
	// the time they were reached.
	AlreadyCemented event.Observers[ids.ID]

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(
	config Config,
	store *state.Store,
	l *ledger.Ledger,
	registry metric.Registry,
	log log.Logger,
) *Set {
	return &Set{
		config:  config,
		log:     log,
		store:   store,
		ledger:  l,
		metrics: newMetrics(registry),
		queued:  set.NewSet[ids.ID](0),
		notify:  make(chan struct{}, 1),
	}
}

// Add queues [hash]. It returns false if the hash is already queued or the
// queue is full.
func (s *Set) Add(hash ids.ID) bool {
	s.lock.Lock()
	if s.queued.Contains(hash) {
		s.lock.Unlock()
		return false
	}
	if len(s.queue) >= s.config.MaxQueue {
		s.lock.Unlock()
		s.metrics.dropped.Inc()
		s.log.Warn("cementing queue is full",
			log.Stringer("hash", hash),
		)
		return false
	}
	s.queue = append(s.queue, hash)
	s.queued.Add(hash)
	s.metrics.queued.Set(float64(len(s.queue)))
	s.lock.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
	return true
}

// Exists reports whether [hash] is waiting to be cemented.
func (s *Set) Exists(hash ids.ID) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.queued.Contains(hash)
}

func (s *Set) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.queue)
}

func (s *Set) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

func (s *Set) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Set) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.notify:
		}
		for s.Len() > 0 {
			if ctx.Err() != nil {
				return
			}
			if err := s.processBatch(); err != nil {
				s.log.Error("failed to cement batch", zap.Error(err))
			}
		}
	}
}

// done removes the first [n] hashes from the queue.
func (s *Set) done(n int) {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, hash := range s.queue[:n] {
		s.queued.Remove(hash)
	}
	s.queue = s.queue[n:]
	s.metrics.queued.Set(float64(len(s.queue)))
}

// processBatch cements queued hashes until the batch is full. A hash whose
// dependencies do not fit stays at the front of the queue.
func (s *Set) processBatch() error {
	start := time.Now()
	tx := s.store.BeginWrite()

	var (
		cemented []Cemented
		already  []ids.ID
		finished int
	)
	for len(cemented) < s.config.BatchSize && time.Since(start) < s.config.MaxBatchTime {
		hash, ok := s.at(finished)
		if !ok {
			break
		}

		confirmed, err := s.ledger.BlockConfirmed(tx, hash)
		if errors.Is(err, database.ErrNotFound) {
			s.log.Warn("dropping missing block from cementing",
				log.Stringer("hash", hash),
			)
			finished++
			continue
		}
		if err != nil {
			tx.Abort()
			return err
		}
		if confirmed {
			already = append(already, hash)
			finished++
			continue
		}

		blocks, err := s.ledger.Confirm(tx, hash, s.config.BatchSize-len(cemented))
		if err != nil {
			tx.Abort()
			return err
		}
		for _, blk := range blocks {
			_, sideband, err := tx.Block(blk.Hash())
			if err != nil {
				tx.Abort()
				return err
			}
			cemented = append(cemented, Cemented{Block: blk, Sideband: sideband})
		}

		confirmed, err = s.ledger.BlockConfirmed(tx, hash)
		if err != nil {
			tx.Abort()
			return err
		}
		if !confirmed {
			break
		}
		finished++
	}

	if len(cemented) == 0 {
		tx.Abort()
	} else if err := tx.Commit(); err != nil {
		return err
	}
	s.done(finished)

	s.metrics.cemented.Add(float64(len(cemented)))
	s.metrics.alreadyCemented.Add(float64(len(already)))
	s.metrics.batchTime.Observe(float64(time.Since(start)))
	if len(cemented) > 0 {
		s.BatchCemented.Notify(cemented)
	}
	for _, hash := range already {
		s.AlreadyCemented.Notify(hash)
	}
	return nil
}

func (s *Set) at(i int) (ids.ID, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if i >= len(s.queue) {
		return ids.Empty, false
	}
	return s.queue[i], true
}
