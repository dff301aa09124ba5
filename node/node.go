// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package node assembles the ledger, the block processor, elections and
// cementing into a running node core.
package node

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/nano/block"
	"github.com/luxfi/nano/cementing"
	"github.com/luxfi/nano/config"
	"github.com/luxfi/nano/consensus/election"
	"github.com/luxfi/nano/consensus/online"
	"github.com/luxfi/nano/consensus/scheduler"
	"github.com/luxfi/nano/consensus/vote"
	"github.com/luxfi/nano/ledger"
	"github.com/luxfi/nano/network"
	"github.com/luxfi/nano/processor"
	"github.com/luxfi/nano/repweights"
	"github.com/luxfi/nano/state"
	"github.com/luxfi/nano/utils/timer/mockable"
	"github.com/luxfi/nano/work"
)

// Node owns every component and the observers connecting them.
type Node struct {
	log log.Logger

	Store     *state.Store
	Weights   *repweights.Table
	Ledger    *ledger.Ledger
	Processor *processor.Processor
	Online    *online.Reps
	Active    *election.Active
	Votes     *vote.Processor
	Scheduler *scheduler.Priority
	Cementing *cementing.Set
	Flooder   *network.Flooder
	Handler   *network.Handler
}

// New builds a node over [db]. [clock] may be nil to follow wall time.
func New(
	cfg *config.Config,
	db database.Database,
	peers network.Peers,
	clock *mockable.Clock,
	registry metric.Registry,
	log log.Logger,
) (*Node, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = &mockable.Clock{}
	}

	store, err := state.New(db, registry, log)
	if err != nil {
		return nil, err
	}
	n, err := build(cfg, store, peers, clock, registry, log)
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}
	return n, nil
}

func build(
	cfg *config.Config,
	store *state.Store,
	peers network.Peers,
	clock *mockable.Clock,
	registry metric.Registry,
	log log.Logger,
) (*Node, error) {
	weights := repweights.New()
	l, err := ledger.New(store, weights, ledger.Config{
		Genesis: cfg.Genesis,
		Epochs:  cfg.LedgerEpochs(),
		Work:    work.NewValidator(cfg.Work),
		Clock:   clock,
	}, log)
	if err != nil {
		return nil, err
	}

	n := &Node{
		log:       log,
		Store:     store,
		Weights:   weights,
		Ledger:    l,
		Processor: processor.New(cfg.Processor, store, l, registry, log),
		Online:    online.New(cfg.Online, weights, clock, registry, log),
		Cementing: cementing.New(cfg.Cementing, store, l, registry, log),
	}

	netMetrics := network.NewMetrics(registry)
	n.Flooder = network.NewFlooder(peers, cfg.Network.Fanout, netMetrics, log)
	n.Active = election.NewActive(cfg.Elections, weights, n.Online, n.Flooder, clock, registry, log)
	n.Scheduler = scheduler.NewPriority(cfg.Scheduler, store, l, n.Active, registry, log)
	n.Votes, err = vote.NewProcessor(cfg.Votes, n.Active.Router, weights, n.Online, registry, log)
	if err != nil {
		return nil, err
	}
	n.Handler = network.NewHandler(n.Processor, n.Votes, netMetrics, log)

	n.Processor.SetForkResolver(n.Active)
	n.wire()
	return n, nil
}

func (n *Node) wire() {
	n.Processor.BatchProcessed.Add(n.batchProcessed)
	n.Processor.RolledBack.Add(n.rolledBack)
	n.Active.Confirmed.Add(n.confirmed)
	n.Active.Stopped.Add(func(s election.Status) {
		n.Scheduler.ElectionStopped(s.Root)
	})
	n.Active.VacancyChanged.Add(func(int) {
		n.Scheduler.Notify()
	})
	n.Votes.VoteProcessed.Add(n.voteProcessed)
	n.Cementing.BatchCemented.Add(n.batchCemented)
	n.Cementing.AlreadyCemented.Add(n.alreadyCemented)
}

// batchProcessed queues newly committed blocks for elections. A block whose
// election finished before it arrived goes straight to cementing.
func (n *Node) batchProcessed(batch []processor.Processed) {
	r := n.Store.BeginRead()
	defer r.Discard()

	for _, p := range batch {
		if p.Result != ledger.Progress {
			continue
		}
		hash := p.Context.Block.Hash()
		if n.Active.RecentlyConfirmed(hash) {
			n.Cementing.Add(hash)
			continue
		}
		sideband, err := n.Ledger.Sideband(r, hash)
		if err != nil {
			n.log.Error("failed to read processed block",
				log.Stringer("hash", hash),
				zap.Error(err),
			)
			continue
		}
		if _, err := n.Scheduler.Activate(r, sideband.Account); err != nil {
			n.log.Error("failed to activate account",
				log.Stringer("account", sideband.Account),
				zap.Error(err),
			)
		}
	}
}

// rolledBack stops the elections of blocks that lost a fork, except the one
// the winner is contesting.
func (n *Node) rolledBack(r processor.RolledBack) {
	for _, blk := range r.Blocks {
		root := blk.Root()
		if e, ok := n.Active.Election(root); ok && e.Contains(r.Winner) {
			continue
		}
		n.Active.Erase(root)
	}
}

// confirmed cements the winner, or forces it into the ledger first when a
// different block holds its root.
func (n *Node) confirmed(s election.Status) {
	hash := s.Winner.Hash()

	r := n.Store.BeginRead()
	exists, err := n.Ledger.BlockExists(r, hash)
	r.Discard()
	if err != nil {
		n.log.Error("failed to look up confirmed block",
			log.Stringer("hash", hash),
			zap.Error(err),
		)
		return
	}
	if exists {
		n.Cementing.Add(hash)
		return
	}
	n.Processor.Force(s.Winner)
}

func (n *Node) voteProcessed(p vote.Processed) {
	for _, code := range p.Codes {
		if code != vote.Invalid {
			n.Online.Observe(p.Vote.Account)
			return
		}
	}
}

// batchCemented retires finished elections and queues the blocks that
// cementing unlocked.
func (n *Node) batchCemented(batch []cementing.Cemented) {
	for _, c := range batch {
		n.Active.Erase(c.Block.Root())
	}

	r := n.Store.BeginRead()
	defer r.Discard()

	for _, c := range batch {
		if err := n.Scheduler.ActivateSuccessors(r, c.Block); err != nil {
			n.log.Error("failed to activate successors",
				log.Stringer("hash", c.Block.Hash()),
				zap.Error(err),
			)
		}
	}
}

func (n *Node) alreadyCemented(hash ids.ID) {
	r := n.Store.BeginRead()
	root, err := n.Ledger.HashRoot(r, hash)
	r.Discard()
	if err != nil {
		n.log.Warn("failed to look up cemented block",
			log.Stringer("hash", hash),
			zap.Error(err),
		)
		return
	}
	n.Active.Erase(root)
}

// Start launches every worker and queues the first uncemented block of each
// account.
func (n *Node) Start(ctx context.Context) {
	n.Processor.Start(ctx)
	n.Votes.Start(ctx)
	n.Online.Start(ctx)
	n.Active.Start(ctx)
	n.Scheduler.Start(ctx)
	n.Cementing.Start(ctx)
	n.Scheduler.ActivateAll()

	n.log.Info("node started",
		log.Stringer("genesis", n.Ledger.Genesis().Block.Hash()),
		log.Uint64("blocks", n.Ledger.BlockCount()),
		log.Uint64("cemented", n.Ledger.CementedCount()),
	)
}

// Stop halts the workers, producers first, and closes the store.
func (n *Node) Stop() error {
	n.Scheduler.Stop()
	n.Active.Stop()
	n.Votes.Stop()
	n.Online.Stop()
	n.Processor.Stop()
	n.Cementing.Stop()

	return n.Store.Close()
}

// Process queues a block received from [nodeID].
func (n *Node) Process(blk block.Block, nodeID ids.NodeID) bool {
	return n.Processor.Add(blk, processor.Live, nodeID)
}

// ProcessLocal submits a locally created block and waits for the result.
// A block that commits is also flooded to peers.
func (n *Node) ProcessLocal(ctx context.Context, blk block.Block) (ledger.Result, error) {
	result, err := n.Processor.AddBlocking(ctx, blk)
	if err == nil && result == ledger.Progress {
		n.Flooder.Flood(blk)
	}
	return result, err
}

// Vote queues a vote received from [nodeID].
func (n *Node) Vote(v *vote.Vote, nodeID ids.NodeID) bool {
	return n.Votes.Add(v, nodeID)
}

// HandleMessage dispatches an inbound peer message.
func (n *Node) HandleMessage(nodeID ids.NodeID, bytes []byte) error {
	return n.Handler.HandleMessage(nodeID, bytes)
}
