// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package block

import "github.com/luxfi/ids"

// Epoch is the ledger upgrade level of an account or pending entry.
type Epoch uint8

const (
	Epoch0 Epoch = iota
	Epoch1
	Epoch2

	MaxEpoch = Epoch2
)

func (e Epoch) String() string {
	switch e {
	case Epoch0:
		return "epoch_0"
	case Epoch1:
		return "epoch_1"
	case Epoch2:
		return "epoch_2"
	default:
		return "epoch_invalid"
	}
}

// EpochLink returns the reserved link value marking an upgrade to [e]: the
// ascii message left aligned in 32 zero bytes.
func EpochLink(e Epoch) ids.ID {
	var link ids.ID
	switch e {
	case Epoch1:
		copy(link[:], "epoch v1 block")
	case Epoch2:
		copy(link[:], "epoch v2 block")
	}
	return link
}
