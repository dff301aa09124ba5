// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package online tracks which representatives are voting and derives the
// quorum threshold from their weight.
package online

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/holiman/uint256"

	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/nano/block"
	"github.com/luxfi/nano/utils/json"
	"github.com/luxfi/nano/utils/timer/mockable"

	safemath "github.com/luxfi/nano/utils/math"
)

var DefaultConfig = Config{
	QuorumPercent:  67,
	MinimumWeight:  json.Amount(*new(block.Amount).Mul(uint256.NewInt(60_000_000), &mnanoRaw)),
	Window:         5 * time.Minute,
	SampleInterval: 5 * time.Minute,
	TrendSamples:   4032,
}

type Config struct {
	// QuorumPercent of the effective online weight must back a block for it
	// to be confirmed.
	QuorumPercent uint64 `json:"quorum-percent"`
	// MinimumWeight floors the effective online weight so a quiet network
	// cannot be confirmed by a handful of representatives.
	MinimumWeight json.Amount `json:"minimum-weight"`
	// Window is how long a representative counts as online after a vote.
	Window         time.Duration `json:"window"`
	SampleInterval time.Duration `json:"sample-interval"`
	// TrendSamples bounds the history the trended weight is the median of.
	TrendSamples int `json:"trend-samples"`
}

type Weights interface {
	Get(rep block.Account) block.Amount
}

type Reps struct {
	config  Config
	log     log.Logger
	weights Weights
	clock   *mockable.Clock

	lock     sync.RWMutex
	lastSeen map[block.Account]time.Time
	online   block.Amount
	samples  []block.Amount
	trended  block.Amount

	onlineGauge  metric.Gauge
	trendedGauge metric.Gauge

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(config Config, weights Weights, clock *mockable.Clock, registry metric.Registry, log log.Logger) *Reps {
	metricsInstance := metric.NewWithRegistry("online_reps", registry)
	return &Reps{
		config:   config,
		log:      log,
		weights:  weights,
		clock:    clock,
		lastSeen: make(map[block.Account]time.Time),
		onlineGauge: metricsInstance.NewGauge(
			"online_weight_mnano",
			"current online weight, in units of 10^30 raw",
		),
		trendedGauge: metricsInstance.NewGauge(
			"trended_weight_mnano",
			"median of sampled online weight, in units of 10^30 raw",
		),
	}
}

// Observe records that [rep] just voted. Accounts without weight are not
// representatives and are ignored.
func (r *Reps) Observe(rep block.Account) {
	weight := r.weights.Get(rep)
	if weight.IsZero() {
		return
	}
	now := r.clock.Time()

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.lastSeen[rep]; !ok {
		r.online = safeAdd(r.online, weight)
		r.log.Debug("representative online",
			log.Stringer("rep", rep),
		)
	}
	r.lastSeen[rep] = now
}

// Sample drops representatives that stopped voting, recomputes the online
// weight and records it in the trend.
func (r *Reps) Sample() {
	now := r.clock.Time()

	r.lock.Lock()
	defer r.lock.Unlock()

	var online block.Amount
	for rep, seen := range r.lastSeen {
		if now.Sub(seen) > r.config.Window {
			delete(r.lastSeen, rep)
			continue
		}
		online = safeAdd(online, r.weights.Get(rep))
	}
	r.online = online

	r.samples = append(r.samples, online)
	if over := len(r.samples) - r.config.TrendSamples; over > 0 {
		r.samples = r.samples[over:]
	}
	r.trended = median(r.samples)

	r.onlineGauge.Set(mnano(r.online))
	r.trendedGauge.Set(mnano(r.trended))
}

func (r *Reps) Online() block.Amount {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.online
}

// Trended is the median of the sampled online weight, floored at the
// configured minimum.
func (r *Reps) Trended() block.Amount {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return safemath.MaxAmountOf(r.trended, r.config.MinimumWeight.Int())
}

// Delta is the weight a block needs to be confirmed.
func (r *Reps) Delta() block.Amount {
	r.lock.RLock()
	defer r.lock.RUnlock()

	effective := safemath.MaxAmountOf(r.online, r.trended, r.config.MinimumWeight.Int())
	return safemath.MulDivAmount(effective, r.config.QuorumPercent, 100)
}

// List returns the representatives currently online.
func (r *Reps) List() []block.Account {
	r.lock.RLock()
	defer r.lock.RUnlock()

	reps := make([]block.Account, 0, len(r.lastSeen))
	for rep := range r.lastSeen {
		reps = append(reps, rep)
	}
	return reps
}

func (r *Reps) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.config.SampleInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Sample()
			}
		}
	}()
}

func (r *Reps) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

func median(samples []block.Amount) block.Amount {
	if len(samples) == 0 {
		return block.Amount{}
	}
	sorted := slices.Clone(samples)
	slices.SortFunc(sorted, func(a, b block.Amount) int {
		return a.Cmp(&b)
	})
	return sorted[len(sorted)/2]
}

func safeAdd(a, b block.Amount) block.Amount {
	sum, err := safemath.AddAmount(a, b)
	if err != nil {
		return safemath.MaxAmount
	}
	return sum
}

// mnanoRaw is 10^30 raw, the display unit.
var mnanoRaw = *new(block.Amount).Exp(uint256.NewInt(10), uint256.NewInt(30))

func mnano(a block.Amount) float64 {
	var q block.Amount
	q.Div(&a, &mnanoRaw)
	return float64(q.Uint64())
}
