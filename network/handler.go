// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package network

import (
	"errors"
	"fmt"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/nano/block"
	"github.com/luxfi/nano/consensus/vote"
	"github.com/luxfi/nano/processor"
)

var errUnknownMessage = errors.New("unknown message")

type BlockQueue interface {
	Add(blk block.Block, source processor.Source, origin ids.NodeID) bool
}

type VoteQueue interface {
	Add(v *vote.Vote, origin ids.NodeID) bool
}

// Handler dispatches inbound messages to the block and vote queues.
type Handler struct {
	blocks  BlockQueue
	votes   VoteQueue
	log     log.Logger
	metrics *Metrics
}

func NewHandler(blocks BlockQueue, votes VoteQueue, metrics *Metrics, log log.Logger) *Handler {
	return &Handler{
		blocks:  blocks,
		votes:   votes,
		log:     log,
		metrics: metrics,
	}
}

// HandleMessage processes [bytes] received from [nodeID]. A returned error
// means the peer sent something malformed.
func (h *Handler) HandleMessage(nodeID ids.NodeID, bytes []byte) error {
	msg, err := Decode(bytes)
	if err != nil {
		h.metrics.malformed.Inc()
		return err
	}
	op := msg.Op().String()
	h.metrics.received.WithLabelValues(op).Inc()

	switch m := msg.(type) {
	case *Publish:
		blk, err := block.Parse(m.Block)
		if err != nil {
			h.metrics.malformed.Inc()
			return fmt.Errorf("couldn't parse published block: %w", err)
		}
		if !h.blocks.Add(blk, processor.Live, nodeID) {
			h.metrics.dropped.WithLabelValues(op).Inc()
		}
	case *ConfirmAck:
		v, err := vote.Parse(m.Vote)
		if err != nil {
			h.metrics.malformed.Inc()
			return fmt.Errorf("couldn't parse vote: %w", err)
		}
		if !h.votes.Add(v, nodeID) {
			h.metrics.dropped.WithLabelValues(op).Inc()
		}
	case *ConfirmReq:
		// This node does not vote.
		h.log.Debug("ignoring confirmation request",
			log.Stringer("nodeID", nodeID),
			log.Int("pairs", len(m.Pairs)),
		)
	default:
		return fmt.Errorf("%w: %T", errUnknownMessage, msg)
	}
	return nil
}
