// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package network

import "github.com/luxfi/ids"

// Channel is a connection to one peer. Transport is provided by the host.
type Channel interface {
	NodeID() ids.NodeID
	// Send queues [msg] for delivery. It must not block.
	Send(msg []byte) error
}

// Peers lists the currently connected channels.
type Peers interface {
	Channels() []Channel
}

// StaticPeers is a fixed set of channels.
type StaticPeers []Channel

func (p StaticPeers) Channels() []Channel {
	return p
}
