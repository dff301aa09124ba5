// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scheduler

import (
	"bytes"
	"sync"

	"github.com/google/btree"

	"github.com/luxfi/ids"

	"github.com/luxfi/nano/block"
	"github.com/luxfi/nano/consensus/election"
)

const defaultTreeDegree = 2

var _ btree.LessFunc[entry] = entry.Less

// Active is the election container the scheduler feeds.
type Active interface {
	Insert(blk block.Block, behavior election.Behavior) (*election.Election, bool)
	Election(root ids.ID) (*election.Election, bool)
	Erase(root ids.ID)
	Vacancy() int
}

// entry is a queued block. Accounts that have been quiet longer sort first.
type entry struct {
	time  uint64
	hash  ids.ID
	block block.Block
}

func (e entry) Less(o entry) bool {
	if e.time != o.time {
		return e.time < o.time
	}
	return bytes.Compare(e.hash[:], o.hash[:]) < 0
}

type BucketConfig struct {
	// MaxBlocks bounds the queue. The lowest priority block is dropped when
	// it overflows.
	MaxBlocks int `json:"max-blocks"`
	// ReservedElections may always run, regardless of global vacancy.
	ReservedElections int `json:"reserved-elections"`
	// MaxElections may run while the container has vacancy.
	MaxElections int `json:"max-elections"`
}

// Bucket queues the blocks of accounts within one balance range and bounds
// the elections they occupy.
type Bucket struct {
	index      int
	minBalance block.Amount
	config     BucketConfig
	active     Active

	lock      sync.Mutex
	queue     *btree.BTreeG[entry]
	queued    map[ids.ID]entry
	elections map[ids.ID]uint64 // root -> priority time
}

func NewBucket(index int, minBalance block.Amount, config BucketConfig, active Active) *Bucket {
	return &Bucket{
		index:      index,
		minBalance: minBalance,
		config:     config,
		active:     active,
		queue:      btree.NewG(defaultTreeDegree, entry.Less),
		queued:     make(map[ids.ID]entry),
		elections:  make(map[ids.ID]uint64),
	}
}

func (b *Bucket) Index() int {
	return b.index
}

// Push queues [blk] with priority [time]. It returns false if the block was
// already queued or was dropped as the lowest priority.
func (b *Bucket) Push(time uint64, blk block.Block) bool {
	b.lock.Lock()
	defer b.lock.Unlock()

	hash := blk.Hash()
	if _, ok := b.queued[hash]; ok {
		return false
	}
	e := entry{time: time, hash: hash, block: blk}
	b.queue.ReplaceOrInsert(e)
	b.queued[hash] = e
	if b.queue.Len() <= b.config.MaxBlocks {
		return true
	}
	worst, _ := b.queue.DeleteMax()
	delete(b.queued, worst.hash)
	return worst.hash != hash
}

// Available reports whether the top block may start an election now.
func (b *Bucket) Available() bool {
	b.lock.Lock()
	defer b.lock.Unlock()

	top, ok := b.queue.Min()
	if !ok {
		return false
	}
	running := len(b.elections)
	switch {
	case running < b.config.ReservedElections:
		return true
	case running < b.config.MaxElections:
		return b.active.Vacancy() > 0
	default:
		worst, ok := b.worstPriority()
		return ok && top.time < worst
	}
}

func (b *Bucket) worstPriority() (uint64, bool) {
	var (
		worst uint64
		found bool
	)
	for _, time := range b.elections {
		if !found || time > worst {
			worst, found = time, true
		}
	}
	return worst, found
}

// Activate starts an election for the top block. A full bucket first
// cancels its weakest election. A block the election container has no room
// for stays queued, even when it was offered a reserved slot.
func (b *Bucket) Activate() bool {
	b.lock.Lock()
	top, ok := b.queue.DeleteMin()
	if !ok {
		b.lock.Unlock()
		return false
	}
	delete(b.queued, top.hash)
	full := len(b.elections) >= b.config.MaxElections
	b.lock.Unlock()

	if full {
		b.CancelLowestElection()
	}

	e, inserted := b.active.Insert(top.block, election.Priority)
	if e == nil && !inserted && b.active.Vacancy() <= 0 {
		// Refused for lack of room; retry once elections finish.
		b.Push(top.time, top.block)
		return false
	}
	if !inserted {
		return false
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	// The election may have finished while inserting.
	if e.State() == election.Running {
		b.elections[e.Root()] = top.time
	}
	return true
}

// CancelLowestElection erases the election with the least weight behind its
// leader. Ties go to the lowest priority.
func (b *Bucket) CancelLowestElection() {
	b.lock.Lock()
	var (
		lowest     ids.ID
		lowestTime uint64
		tally      block.Amount
		found      bool
	)
	for root, time := range b.elections {
		e, ok := b.active.Election(root)
		if !ok {
			continue
		}
		weight := e.LeaderTally()
		switch {
		case !found, weight.Lt(&tally), weight.Eq(&tally) && time > lowestTime:
			lowest, lowestTime, tally, found = root, time, weight, true
		}
	}
	b.lock.Unlock()

	if found {
		b.active.Erase(lowest)
	}
}

// ElectionStopped releases the slot held by the election at [root].
func (b *Bucket) ElectionStopped(root ids.ID) bool {
	b.lock.Lock()
	defer b.lock.Unlock()

	_, ok := b.elections[root]
	delete(b.elections, root)
	return ok
}

func (b *Bucket) Len() int {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.queue.Len()
}

func (b *Bucket) ElectionCount() int {
	b.lock.Lock()
	defer b.lock.Unlock()

	return len(b.elections)
}
