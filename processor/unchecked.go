// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package processor

import (
	"sync"

	"github.com/luxfi/cache"
	"github.com/luxfi/cache/lru"
	"github.com/luxfi/ids"

	"github.com/luxfi/nano/block"
	"github.com/luxfi/nano/ledger"
)

// maxUncheckedPerDependency bounds how many blocks may wait on one missing
// block.
const maxUncheckedPerDependency = 16

// unchecked holds blocks whose previous or source block has not arrived,
// keyed by the missing block. The least recently touched dependencies are
// dropped first.
type unchecked struct {
	lock    sync.Mutex
	waiting cache.Cacher[ids.ID, []*Context]
}

func newUnchecked(size int) *unchecked {
	return &unchecked{
		waiting: lru.NewCache[ids.ID, []*Context](size),
	}
}

// put parks [c] until [dependency] is committed.
func (u *unchecked) put(dependency ids.ID, c *Context) {
	u.lock.Lock()
	defer u.lock.Unlock()

	waiting, _ := u.waiting.Get(dependency)
	for _, w := range waiting {
		if w.Block.Hash() == c.Block.Hash() {
			return
		}
	}
	if len(waiting) >= maxUncheckedPerDependency {
		return
	}
	u.waiting.Put(dependency, append(waiting, c))
}

// trigger removes and returns everything waiting on [dependency].
func (u *unchecked) trigger(dependency ids.ID) []*Context {
	u.lock.Lock()
	defer u.lock.Unlock()

	waiting, ok := u.waiting.Get(dependency)
	if !ok {
		return nil
	}
	u.waiting.Evict(dependency)
	return waiting
}

func (u *unchecked) len() int {
	u.lock.Lock()
	defer u.lock.Unlock()

	return u.waiting.Len()
}

// dependency returns the block a gapped block is waiting for.
func dependency(blk block.Block, result ledger.Result) (ids.ID, bool) {
	switch result {
	case ledger.GapPrevious:
		return blk.Previous(), true
	case ledger.GapSource:
		if source, ok := block.SourceOf(blk); ok {
			return source, true
		}
		if b, ok := blk.(*block.StateBlock); ok && b.Link != ids.Empty {
			return b.Link, true
		}
	}
	return ids.Empty, false
}
