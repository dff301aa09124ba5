// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package election

import (
	"sync"

	"github.com/luxfi/ids"

	"github.com/luxfi/nano/consensus/vote"
)

var _ vote.Router = (*Router)(nil)

type elections interface {
	Election(root ids.ID) (*Election, bool)
}

// Router maps candidate hashes to the root of the election tracking them
// and delivers votes there. It stores roots, never elections, so a vote for
// an election that has just been erased is simply indeterminate.
type Router struct {
	elections elections
	recent    *RecentlyConfirmed
	cache     *VoteCache

	lock  sync.RWMutex
	roots map[ids.ID]ids.ID
}

func NewRouter(elections elections, recent *RecentlyConfirmed, cache *VoteCache) *Router {
	return &Router{
		elections: elections,
		recent:    recent,
		cache:     cache,
		roots:     make(map[ids.ID]ids.ID),
	}
}

func (r *Router) Connect(hash, root ids.ID) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.roots[hash] = root
}

func (r *Router) Disconnect(hash ids.ID) {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.roots, hash)
}

// Active reports whether an election is tracking [hash].
func (r *Router) Active(hash ids.ID) bool {
	r.lock.RLock()
	defer r.lock.RUnlock()

	_, ok := r.roots[hash]
	return ok
}

// Vote applies [v] to every election tracking one of its hashes. Live votes
// for untracked blocks are cached for elections started later.
func (r *Router) Vote(v *vote.Vote, source vote.Source) map[ids.ID]vote.Code {
	codes := make(map[ids.ID]vote.Code, len(v.Hashes))
	for _, hash := range v.Hashes {
		r.lock.RLock()
		root, ok := r.roots[hash]
		r.lock.RUnlock()

		var e *Election
		if ok {
			e, ok = r.elections.Election(root)
		}
		if !ok {
			if r.recent.Contains(hash) {
				codes[hash] = vote.Replay
				continue
			}
			if source == vote.Live {
				r.cache.Observe(v.Account, v.Timestamp, hash)
			}
			codes[hash] = vote.Indeterminate
			continue
		}
		codes[hash] = e.Vote(v.Account, v.Timestamp, hash)
	}
	return codes
}
