// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vote

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	lru "github.com/hashicorp/golang-lru"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/nano/block"
	"github.com/luxfi/nano/utils/event"
)

var DefaultConfig = Config{
	MaxRepQueue:       256,
	MaxNonRepQueue:    32,
	BatchSize:         1024,
	VerifyWorkers:     4,
	VerifiedCacheSize: 64 * 1024,
	NonRepRate:        100,
	NonRepBurst:       100,
}

type Config struct {
	// MaxRepQueue bounds the queue of each representative tier.
	MaxRepQueue int `json:"max-rep-queue"`
	// MaxNonRepQueue bounds the queue of votes from accounts below tier 1.
	MaxNonRepQueue    int     `json:"max-non-rep-queue"`
	BatchSize         int     `json:"batch-size"`
	VerifyWorkers     int     `json:"verify-workers"`
	VerifiedCacheSize int     `json:"verified-cache-size"`
	NonRepRate        float64 `json:"non-rep-rate"`
	NonRepBurst       int     `json:"non-rep-burst"`
}

// Router applies verified votes to elections.
type Router interface {
	Vote(v *Vote, source Source) map[ids.ID]Code
}

type Weights interface {
	Get(rep block.Account) block.Amount
}

type OnlineWeight interface {
	Trended() block.Amount
}

// Processed is emitted for every vote taken off the queue.
type Processed struct {
	Vote   *Vote
	Origin ids.NodeID
	Codes  map[ids.ID]Code
}

// verifiedKey identifies a checked signature. The vote hash alone is shared
// by every representative voting for the same blocks.
type verifiedKey struct {
	hash      ids.ID
	account   block.Account
	signature block.Signature
}

type entry struct {
	vote   *Vote
	origin ids.NodeID
}

// tierPriority is how many votes each tier contributes per round.
var tierPriority = [numTiers]int{
	TierNone: 1,
	Tier1:    2,
	Tier2:    3,
	Tier3:    4,
}

// Processor verifies queued votes in batches and hands them to the router.
type Processor struct {
	config  Config
	log     log.Logger
	router  Router
	weights Weights
	online  OnlineWeight
	metrics *metrics

	verified *lru.Cache
	limiter  *rate.Limiter

	lock   sync.Mutex
	queues [numTiers][]entry
	size   int
	notify chan struct{}

	VoteProcessed event.Observers[Processed]

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewProcessor(
	config Config,
	router Router,
	weights Weights,
	online OnlineWeight,
	registry metric.Registry,
	log log.Logger,
) (*Processor, error) {
	verified, err := lru.New(config.VerifiedCacheSize)
	if err != nil {
		return nil, err
	}
	return &Processor{
		config:   config,
		log:      log,
		router:   router,
		weights:  weights,
		online:   online,
		metrics:  newMetrics(registry),
		verified: verified,
		limiter:  rate.NewLimiter(rate.Limit(config.NonRepRate), config.NonRepBurst),
		notify:   make(chan struct{}, 1),
	}, nil
}

func (p *Processor) tier(rep block.Account) Tier {
	return TierOf(p.weights.Get(rep), p.online.Trended())
}

// Add queues [v] for verification. It returns false if the vote was dropped
// by the rate limit or a full queue.
func (p *Processor) Add(v *Vote, origin ids.NodeID) bool {
	tier := p.tier(v.Account)
	limit := p.config.MaxRepQueue
	if tier == TierNone {
		limit = p.config.MaxNonRepQueue
		if !p.limiter.Allow() {
			p.metrics.dropped.WithLabelValues(tier.String()).Inc()
			return false
		}
	}

	p.lock.Lock()
	if len(p.queues[tier]) >= limit {
		p.lock.Unlock()
		p.metrics.dropped.WithLabelValues(tier.String()).Inc()
		return false
	}
	p.queues[tier] = append(p.queues[tier], entry{vote: v, origin: origin})
	p.size++
	p.lock.Unlock()

	select {
	case p.notify <- struct{}{}:
	default:
	}
	return true
}

func (p *Processor) Len() int {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.size
}

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
}

func (p *Processor) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.notify:
		}
		for {
			batch := p.nextBatch()
			if len(batch) == 0 || ctx.Err() != nil {
				break
			}
			p.processBatch(batch)
		}
	}
}

// nextBatch takes up to BatchSize votes, visiting tiers from the highest
// down and taking tierPriority votes from each per round.
func (p *Processor) nextBatch() []entry {
	p.lock.Lock()
	defer p.lock.Unlock()

	batch := make([]entry, 0, min(p.size, p.config.BatchSize))
	for len(batch) < p.config.BatchSize && p.size > 0 {
		for tier := numTiers - 1; ; tier-- {
			n := min(tierPriority[tier], len(p.queues[tier]), p.config.BatchSize-len(batch))
			batch = append(batch, p.queues[tier][:n]...)
			p.queues[tier] = p.queues[tier][n:]
			p.size -= n
			if tier == TierNone {
				break
			}
		}
	}
	return batch
}

func (p *Processor) processBatch(batch []entry) {
	start := time.Now()
	valid := make([]bool, len(batch))

	var g errgroup.Group
	g.SetLimit(max(p.config.VerifyWorkers, 1))
	for i, e := range batch {
		g.Go(func() error {
			key := verifiedKey{
				hash:      e.vote.Hash(),
				account:   e.vote.Account,
				signature: e.vote.Signature,
			}
			if p.verified.Contains(key) {
				valid[i] = true
				return nil
			}
			valid[i] = e.vote.Verify()
			if valid[i] {
				p.verified.Add(key, struct{}{})
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, e := range batch {
		var codes map[ids.ID]Code
		if valid[i] {
			codes = p.router.Vote(e.vote, Live)
		} else {
			codes = make(map[ids.ID]Code, len(e.vote.Hashes))
			for _, hash := range e.vote.Hashes {
				codes[hash] = Invalid
			}
		}
		for _, code := range codes {
			p.metrics.processed.WithLabelValues(code.String()).Inc()
		}
		p.VoteProcessed.Notify(Processed{
			Vote:   e.vote,
			Origin: e.origin,
			Codes:  codes,
		})
	}
	p.metrics.batchTime.Observe(float64(time.Since(start)))
}
