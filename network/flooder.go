// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package network

import (
	"math/rand/v2"
	"slices"

	"go.uber.org/zap"

	"github.com/luxfi/log"

	"github.com/luxfi/nano/block"
	"github.com/luxfi/nano/consensus/election"
	"github.com/luxfi/nano/consensus/vote"
)

var _ election.Broadcaster = (*Flooder)(nil)

// Flooder sends outbound election traffic to a random subset of peers.
type Flooder struct {
	peers   Peers
	fanout  int
	log     log.Logger
	metrics *Metrics
}

func NewFlooder(peers Peers, fanout int, metrics *Metrics, log log.Logger) *Flooder {
	return &Flooder{
		peers:   peers,
		fanout:  fanout,
		log:     log,
		metrics: metrics,
	}
}

// sample returns up to fanout channels in random order.
func (f *Flooder) sample() []Channel {
	channels := slices.Clone(f.peers.Channels())
	rand.Shuffle(len(channels), func(i, j int) {
		channels[i], channels[j] = channels[j], channels[i]
	})
	if f.fanout > 0 && len(channels) > f.fanout {
		channels = channels[:f.fanout]
	}
	return channels
}

func (f *Flooder) send(msg Message) {
	bytes, err := Encode(msg)
	if err != nil {
		f.log.Error("failed to encode message",
			log.Stringer("op", msg.Op()),
			zap.Error(err),
		)
		return
	}
	for _, c := range f.sample() {
		if err := c.Send(bytes); err != nil {
			f.metrics.sendFailed.WithLabelValues(msg.Op().String()).Inc()
			f.log.Debug("failed to send message",
				log.Stringer("op", msg.Op()),
				log.Stringer("nodeID", c.NodeID()),
				zap.Error(err),
			)
			continue
		}
		f.metrics.sent.WithLabelValues(msg.Op().String()).Inc()
	}
}

// Flood publishes [blk].
func (f *Flooder) Flood(blk block.Block) {
	f.send(&Publish{Block: blk.Bytes()})
}

// RequestConfirmation asks peers to vote on [requests], split into messages
// of at most MaxConfirmReqPairs.
func (f *Flooder) RequestConfirmation(requests []election.Request) {
	for len(requests) > 0 {
		n := min(len(requests), MaxConfirmReqPairs)
		pairs := make([]RootHash, n)
		for i, r := range requests[:n] {
			pairs[i] = RootHash{Root: r.Root, Hash: r.Hash}
		}
		f.send(&ConfirmReq{Pairs: pairs})
		requests = requests[n:]
	}
}

// Vote relays [v].
func (f *Flooder) Vote(v *vote.Vote) {
	f.send(&ConfirmAck{Vote: v.Bytes()})
}
