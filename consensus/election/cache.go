// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package election

import (
	"sync"

	"github.com/luxfi/cache"
	"github.com/luxfi/cache/lru"
	"github.com/luxfi/ids"

	"github.com/luxfi/nano/block"
)

// maxCachedVoters bounds the representatives remembered per block.
const maxCachedVoters = 64

// CachedVote is a vote that arrived before its election.
type CachedVote struct {
	Rep       block.Account
	Timestamp uint64
}

// VoteCache holds votes for blocks no election is tracking yet, so an
// election started later begins with them.
type VoteCache struct {
	lock  sync.Mutex
	votes cache.Cacher[ids.ID, []CachedVote]
}

func NewVoteCache(size int) *VoteCache {
	return &VoteCache{
		votes: lru.NewCache[ids.ID, []CachedVote](size),
	}
}

// Observe remembers that [rep] voted for [hash] at [timestamp]. Only the
// newest vote of each representative is kept.
func (c *VoteCache) Observe(rep block.Account, timestamp uint64, hash ids.ID) {
	c.lock.Lock()
	defer c.lock.Unlock()

	votes, _ := c.votes.Get(hash)
	for i := range votes {
		if votes[i].Rep == rep {
			votes[i].Timestamp = max(votes[i].Timestamp, timestamp)
			return
		}
	}
	if len(votes) >= maxCachedVoters {
		return
	}
	c.votes.Put(hash, append(votes, CachedVote{Rep: rep, Timestamp: timestamp}))
}

func (c *VoteCache) Find(hash ids.ID) []CachedVote {
	c.lock.Lock()
	defer c.lock.Unlock()

	votes, _ := c.votes.Get(hash)
	return append([]CachedVote(nil), votes...)
}

func (c *VoteCache) Erase(hash ids.ID) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.votes.Evict(hash)
}

func (c *VoteCache) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.votes.Len()
}

// RecentlyConfirmed remembers the winners of recent elections so their
// roots are not elected again and late votes are recognized.
type RecentlyConfirmed struct {
	lock   sync.Mutex
	byRoot cache.Cacher[ids.ID, ids.ID]
	byHash cache.Cacher[ids.ID, ids.ID]
}

func NewRecentlyConfirmed(size int) *RecentlyConfirmed {
	return &RecentlyConfirmed{
		byRoot: lru.NewCache[ids.ID, ids.ID](size),
		byHash: lru.NewCache[ids.ID, ids.ID](size),
	}
}

func (r *RecentlyConfirmed) Put(root, hash ids.ID) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.byRoot.Put(root, hash)
	r.byHash.Put(hash, root)
}

func (r *RecentlyConfirmed) Contains(hash ids.ID) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	_, ok := r.byHash.Get(hash)
	return ok
}

func (r *RecentlyConfirmed) ContainsRoot(root ids.ID) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	_, ok := r.byRoot.Get(root)
	return ok
}

func (r *RecentlyConfirmed) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.byHash.Len()
}
