// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vote

// Code is what happened to one hash of a vote.
type Code uint8

const (
	// Invalid votes failed signature verification.
	Invalid Code = iota
	// Replay votes were not newer than the representative's last vote for
	// the root.
	Replay
	// Counted votes changed an election's tally.
	Counted
	// Indeterminate votes name a block no election is tracking.
	Indeterminate
	// Ignored votes were well formed but had no effect.
	Ignored
)

func (c Code) String() string {
	switch c {
	case Invalid:
		return "invalid"
	case Replay:
		return "replay"
	case Counted:
		return "vote"
	case Indeterminate:
		return "indeterminate"
	case Ignored:
		return "ignored"
	default:
		return "unknown"
	}
}

// Source is how a vote reached the router.
type Source uint8

const (
	Live Source = iota
	// Cache votes were held before their election existed.
	Cache
)

func (s Source) String() string {
	if s == Cache {
		return "cache"
	}
	return "live"
}
