// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package election

import (
	"sync"
	"time"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/nano/block"
	"github.com/luxfi/nano/consensus/vote"
	"github.com/luxfi/nano/utils/timer/mockable"

	safemath "github.com/luxfi/nano/utils/math"
)

// MaxBlocks bounds the candidates of one election.
const MaxBlocks = 10

type Weights interface {
	Get(rep block.Account) block.Amount
}

// Quorum supplies the weight a candidate needs to be confirmed.
type Quorum interface {
	Delta() block.Amount
}

type lastVote struct {
	hash      ids.ID
	timestamp uint64
	time      time.Time
}

// Election decides between the blocks competing for one root by tallying the
// latest vote of every representative.
type Election struct {
	root     ids.ID
	behavior Behavior
	weights  Weights
	quorum   Quorum
	clock    *mockable.Clock
	log      log.Logger

	// onConfirm runs once, after the election confirms, without the lock.
	onConfirm func(*Election)

	lock        sync.Mutex
	state       State
	blocks      map[ids.ID]block.Block
	lastVotes   map[block.Account]lastVote
	winner      block.Block
	tally       block.Amount
	finalTally  block.Amount
	start       time.Time
	end         time.Time
	lastRequest time.Time
	flooded     bool
}

func newElection(
	blk block.Block,
	behavior Behavior,
	weights Weights,
	quorum Quorum,
	clock *mockable.Clock,
	log log.Logger,
	onConfirm func(*Election),
) *Election {
	return &Election{
		root:      blk.Root(),
		behavior:  behavior,
		weights:   weights,
		quorum:    quorum,
		clock:     clock,
		log:       log,
		onConfirm: onConfirm,
		blocks:    map[ids.ID]block.Block{blk.Hash(): blk},
		lastVotes: make(map[block.Account]lastVote),
		winner:    blk,
		start:     clock.Time(),
	}
}

func (e *Election) Root() ids.ID {
	return e.root
}

func (e *Election) Behavior() Behavior {
	return e.behavior
}

func (e *Election) State() State {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.state
}

// Winner is the confirmed block, or the first candidate while running.
func (e *Election) Winner() block.Block {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.winner
}

func (e *Election) Blocks() []block.Block {
	e.lock.Lock()
	defer e.lock.Unlock()

	blocks := make([]block.Block, 0, len(e.blocks))
	for _, blk := range e.blocks {
		blocks = append(blocks, blk)
	}
	return blocks
}

func (e *Election) Contains(hash ids.ID) bool {
	e.lock.Lock()
	defer e.lock.Unlock()

	_, ok := e.blocks[hash]
	return ok
}

// Vote records that [rep] voted for [hash] at [timestamp]. A vote that is
// not newer than the representative's last vote in this election is a
// replay and leaves the tally unchanged.
func (e *Election) Vote(rep block.Account, timestamp uint64, hash ids.ID) vote.Code {
	e.lock.Lock()
	if _, ok := e.blocks[hash]; !ok {
		e.lock.Unlock()
		return vote.Indeterminate
	}
	if e.state != Running {
		e.lock.Unlock()
		return vote.Ignored
	}
	weight := e.weights.Get(rep)
	if weight.IsZero() {
		e.lock.Unlock()
		return vote.Ignored
	}
	if last, ok := e.lastVotes[rep]; ok && last.timestamp >= timestamp {
		e.lock.Unlock()
		return vote.Replay
	}
	e.lastVotes[rep] = lastVote{
		hash:      hash,
		timestamp: timestamp,
		time:      e.clock.Time(),
	}
	confirmed := e.tryConfirm()
	e.lock.Unlock()

	if confirmed && e.onConfirm != nil {
		e.onConfirm(e)
	}
	return vote.Counted
}

// Tally sums the weight behind each candidate. Representatives are counted
// at their current weight.
func (e *Election) Tally() map[ids.ID]block.Amount {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.tallyLocked(false)
}

// LeaderTally is the weight of the best supported candidate.
func (e *Election) LeaderTally() block.Amount {
	e.lock.Lock()
	defer e.lock.Unlock()

	_, weight, _ := leaders(e.tallyLocked(false))
	return weight
}

func (e *Election) tallyLocked(finalOnly bool) map[ids.ID]block.Amount {
	tally := make(map[ids.ID]block.Amount, len(e.blocks))
	for rep, v := range e.lastVotes {
		if finalOnly && v.timestamp != vote.FinalTimestamp {
			continue
		}
		weight := e.weights.Get(rep)
		sum, err := safemath.AddAmount(tally[v.hash], weight)
		if err != nil {
			sum = safemath.MaxAmount
		}
		tally[v.hash] = sum
	}
	return tally
}

// leaders returns the best supported hash, its weight and the weight of the
// runner up.
func leaders(tally map[ids.ID]block.Amount) (ids.ID, block.Amount, block.Amount) {
	var (
		leader        ids.ID
		first, second block.Amount
	)
	for hash, weight := range tally {
		switch {
		case weight.Gt(&first):
			second = first
			leader, first = hash, weight
		case weight.Gt(&second) || weight.Eq(&second):
			second = weight
		}
	}
	return leader, first, second
}

// tryConfirm confirms the leader if it reached quorum and is not tied.
func (e *Election) tryConfirm() bool {
	delta := e.quorum.Delta()

	final := e.tallyLocked(true)
	var finalQuorums int
	for _, weight := range final {
		if !weight.Lt(&delta) {
			finalQuorums++
		}
	}
	if finalQuorums > 1 {
		e.log.Error("conflicting final vote quorums",
			log.Stringer("root", e.root),
			log.Int("candidates", finalQuorums),
		)
		return false
	}

	leader, first, second := leaders(e.tallyLocked(false))
	if first.Lt(&delta) || first.Eq(&second) {
		return false
	}
	e.state = Confirmed
	e.winner = e.blocks[leader]
	e.tally = first
	e.finalTally = final[leader]
	e.end = e.clock.Time()
	return true
}

// publish adds [blk] as a candidate. It returns false if the block is
// already a candidate, belongs to another root, or the election is full.
func (e *Election) publish(blk block.Block) bool {
	e.lock.Lock()
	defer e.lock.Unlock()

	if blk.Root() != e.root || e.state != Running {
		return false
	}
	if _, ok := e.blocks[blk.Hash()]; ok {
		return false
	}
	if len(e.blocks) >= MaxBlocks {
		return false
	}
	e.blocks[blk.Hash()] = blk
	return true
}

// expire moves a running election past [timeout] to Expired.
func (e *Election) expire(timeout time.Duration) bool {
	e.lock.Lock()
	defer e.lock.Unlock()

	now := e.clock.Time()
	if e.state != Running || now.Sub(e.start) < timeout {
		return false
	}
	e.state = Expired
	e.end = now
	return true
}

func (e *Election) cancel() {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.state == Running {
		e.state = Cancelled
		e.end = e.clock.Time()
	}
}

// request reports whether a confirmation request is due and, if so,
// returns the block to ask about.
func (e *Election) request(interval time.Duration) (block.Block, bool) {
	e.lock.Lock()
	defer e.lock.Unlock()

	now := e.clock.Time()
	if e.state != Running || now.Sub(e.lastRequest) < interval {
		return nil, false
	}
	e.lastRequest = now
	return e.winner, true
}

// flood returns the blocks to broadcast the first time it is called.
func (e *Election) flood() []block.Block {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.flooded {
		return nil
	}
	e.flooded = true
	blocks := make([]block.Block, 0, len(e.blocks))
	for _, blk := range e.blocks {
		blocks = append(blocks, blk)
	}
	return blocks
}

func (e *Election) Status() Status {
	e.lock.Lock()
	defer e.lock.Unlock()

	end := e.end
	if end.IsZero() {
		end = e.clock.Time()
	}
	return Status{
		Root:       e.root,
		Winner:     e.winner,
		State:      e.state,
		Behavior:   e.behavior,
		Tally:      e.tally,
		FinalTally: e.finalTally,
		Voters:     len(e.lastVotes),
		Blocks:     len(e.blocks),
		Duration:   end.Sub(e.start),
	}
}
