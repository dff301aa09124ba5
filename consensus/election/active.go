// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package election

import (
	"context"
	"sync"
	"time"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/nano/block"
	"github.com/luxfi/nano/utils/event"
	"github.com/luxfi/nano/utils/timer/mockable"
)

// Request asks peers to vote on [Hash] at [Root].
type Request struct {
	Root ids.ID
	Hash ids.ID
}

// Broadcaster sends election traffic to peers.
type Broadcaster interface {
	Flood(blk block.Block)
	RequestConfirmation(requests []Request)
}

// Active holds the running elections, indexed by root.
type Active struct {
	config      Config
	weights     Weights
	quorum      Quorum
	broadcaster Broadcaster
	clock       *mockable.Clock
	log         log.Logger
	metrics     *metrics

	Router *Router
	recent *RecentlyConfirmed
	cache  *VoteCache

	lock      sync.RWMutex
	elections map[ids.ID]*Election

	// Confirmed is notified once per election, when it reaches quorum.
	Confirmed event.Observers[Status]
	// Stopped is notified when an election leaves the container.
	Stopped event.Observers[Status]
	// VacancyChanged is notified with the new vacancy.
	VacancyChanged event.Observers[int]

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewActive(
	config Config,
	weights Weights,
	quorum Quorum,
	broadcaster Broadcaster,
	clock *mockable.Clock,
	registry metric.Registry,
	log log.Logger,
) *Active {
	if clock == nil {
		clock = &mockable.Clock{}
	}
	a := &Active{
		config:      config,
		weights:     weights,
		quorum:      quorum,
		broadcaster: broadcaster,
		clock:       clock,
		log:         log,
		metrics:     newMetrics(registry),
		recent:      NewRecentlyConfirmed(config.RecentlyConfirmedSize),
		cache:       NewVoteCache(config.VoteCacheSize),
		elections:   make(map[ids.ID]*Election),
	}
	a.Router = NewRouter(a, a.recent, a.cache)
	return a
}

// Insert starts an election for [blk]. It returns the election at the
// block's root and whether it was created by this call.
func (a *Active) Insert(blk block.Block, behavior Behavior) (*Election, bool) {
	root := blk.Root()

	a.lock.Lock()
	if e, ok := a.elections[root]; ok {
		a.lock.Unlock()
		return e, false
	}
	if a.recent.ContainsRoot(root) {
		a.lock.Unlock()
		return nil, false
	}
	if behavior == Priority && len(a.elections) >= a.config.Size {
		a.lock.Unlock()
		return nil, false
	}
	e := newElection(blk, behavior, a.weights, a.quorum, a.clock, a.log, a.confirmed)
	a.elections[root] = e
	a.Router.Connect(blk.Hash(), root)
	vacancy := a.config.Size - len(a.elections)
	a.metrics.active.Set(float64(len(a.elections)))
	a.lock.Unlock()

	a.metrics.started.WithLabelValues(behavior.String()).Inc()
	a.applyCached(e, blk.Hash())
	a.VacancyChanged.Notify(vacancy)
	return e, true
}

// Publish adds [blk] as a candidate to the election at its root. It returns
// false if there is no such election or it did not accept the block.
func (a *Active) Publish(blk block.Block) bool {
	e, ok := a.Election(blk.Root())
	if !ok || !e.publish(blk) {
		return false
	}
	a.Router.Connect(blk.Hash(), e.Root())
	a.applyCached(e, blk.Hash())
	return true
}

func (a *Active) applyCached(e *Election, hash ids.ID) {
	for _, v := range a.cache.Find(hash) {
		e.Vote(v.Rep, v.Timestamp, hash)
	}
	a.cache.Erase(hash)
	a.metrics.cached.Set(float64(a.cache.Len()))
}

// Winner returns the confirmed winner of the election at [root], or its first
// candidate while it is still running.
func (a *Active) Winner(root ids.ID) (ids.ID, bool) {
	e, ok := a.Election(root)
	if !ok {
		return ids.Empty, false
	}
	return e.Winner().Hash(), true
}

func (a *Active) Election(root ids.ID) (*Election, bool) {
	a.lock.RLock()
	defer a.lock.RUnlock()

	e, ok := a.elections[root]
	return e, ok
}

// RecentlyConfirmed reports whether [hash] won an election that has since
// been removed.
func (a *Active) RecentlyConfirmed(hash ids.ID) bool {
	return a.recent.Contains(hash)
}

// Erase removes the election at [root]. A running election is cancelled.
func (a *Active) Erase(root ids.ID) {
	a.lock.Lock()
	e, ok := a.elections[root]
	if !ok {
		a.lock.Unlock()
		return
	}
	delete(a.elections, root)
	vacancy := a.config.Size - len(a.elections)
	a.metrics.active.Set(float64(len(a.elections)))
	a.lock.Unlock()

	e.cancel()
	for _, blk := range e.Blocks() {
		a.Router.Disconnect(blk.Hash())
	}
	status := e.Status()
	a.metrics.stopped.WithLabelValues(status.State.String()).Inc()
	a.Stopped.Notify(status)
	a.VacancyChanged.Notify(vacancy)
}

func (a *Active) Len() int {
	a.lock.RLock()
	defer a.lock.RUnlock()

	return len(a.elections)
}

// Vacancy is the number of priority elections that may still start. It is
// negative when manual elections overfill the container.
func (a *Active) Vacancy() int {
	a.lock.RLock()
	defer a.lock.RUnlock()

	return a.config.Size - len(a.elections)
}

func (a *Active) list() []*Election {
	a.lock.RLock()
	defer a.lock.RUnlock()

	elections := make([]*Election, 0, len(a.elections))
	for _, e := range a.elections {
		elections = append(elections, e)
	}
	return elections
}

// Tick expires stale elections, removes finished ones and sends the
// broadcasts that are due.
func (a *Active) Tick() {
	var requests []Request
	for _, e := range a.list() {
		if e.State() != Running || e.expire(a.config.ElectionTimeout) {
			a.Erase(e.Root())
			continue
		}
		if a.broadcaster == nil {
			continue
		}
		for _, blk := range e.flood() {
			a.broadcaster.Flood(blk)
		}
		if blk, ok := e.request(a.config.ConfirmReqInterval); ok {
			requests = append(requests, Request{
				Root: e.Root(),
				Hash: blk.Hash(),
			})
		}
	}
	if len(requests) > 0 {
		a.broadcaster.RequestConfirmation(requests)
	}
}

func (a *Active) confirmed(e *Election) {
	status := e.Status()
	a.recent.Put(status.Root, status.Winner.Hash())
	a.log.Debug("election confirmed",
		log.Stringer("root", status.Root),
		log.Stringer("winner", status.Winner.Hash()),
		log.Int("voters", status.Voters),
	)
	a.Confirmed.Notify(status)
}

// Start launches the tick loop. Stop must be called to release it.
func (a *Active) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		ticker := time.NewTicker(a.config.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.Tick()
			}
		}
	}()
}

func (a *Active) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
}
