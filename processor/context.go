// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package processor

import (
	"time"

	"github.com/luxfi/ids"

	"github.com/luxfi/nano/block"
	"github.com/luxfi/nano/ledger"
)

// Context is a block travelling through the processor.
type Context struct {
	Block  block.Block
	Source Source
	// Origin is the peer that relayed a live block.
	Origin  ids.NodeID
	Arrival time.Time

	// done receives the first processing outcome of a blocking submission.
	done chan outcome
}

type outcome struct {
	result ledger.Result
	err    error
}

func (c *Context) respond(result ledger.Result, err error) {
	if c.done == nil {
		return
	}
	c.done <- outcome{result: result, err: err}
	c.done = nil
}

// Processed is emitted for every block the processor handled.
type Processed struct {
	Result  ledger.Result
	Context *Context
}

// RolledBack is emitted when a fork winner displaced committed blocks.
type RolledBack struct {
	Blocks []block.Block
	Winner ids.ID
}
