// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package election

import (
	"time"

	"github.com/luxfi/ids"

	"github.com/luxfi/nano/block"
)

// State is the lifecycle of an election
type State uint8

const (
	Running State = iota
	Confirmed
	Expired
	Cancelled
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Confirmed:
		return "confirmed"
	case Expired:
		return "expired"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Behavior is why an election was started.
type Behavior uint8

const (
	// Priority elections are started by the scheduler.
	Priority Behavior = iota
	// Manual elections are started on request.
	Manual
)

func (b Behavior) String() string {
	if b == Manual {
		return "manual"
	}
	return "priority"
}

// Status is a snapshot of an election.
type Status struct {
	Root       ids.ID
	Winner     block.Block
	State      State
	Behavior   Behavior
	Tally      block.Amount
	FinalTally block.Amount
	Voters     int
	Blocks     int
	Duration   time.Duration
}
