// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package block

import "github.com/luxfi/ids"

// Details classifies the operation a committed block performed.
type Details struct {
	Epoch     Epoch `serialize:"true"`
	IsSend    bool  `serialize:"true"`
	IsReceive bool  `serialize:"true"`
	IsEpoch   bool  `serialize:"true"`
}

// Sideband is the ledger's derived metadata for a committed block. Legacy
// blocks do not carry their account, balance or representative so those are
// recorded here as the state after the block.
type Sideband struct {
	Account        Account `serialize:"true"`
	Height         uint64  `serialize:"true"`
	Balance        Amount  `serialize:"true"`
	Representative Account `serialize:"true"`
	Successor      ids.ID  `serialize:"true"`
	Timestamp      uint64  `serialize:"true"`
	Details        Details `serialize:"true"`
	SourceEpoch    Epoch   `serialize:"true"`
}
