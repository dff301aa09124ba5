// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package processor

// Source is where a block came from. Each source has its own bounded queue.
type Source uint8

const (
	Live Source = iota
	Bootstrap
	BootstrapLegacy
	Local
	// Forced blocks won an election against a committed competitor. They
	// are processed first and may roll the competitor back.
	Forced

	numSources
)

var sourceNames = [numSources]string{
	Live:            "live",
	Bootstrap:       "bootstrap",
	BootstrapLegacy: "bootstrap_legacy",
	Local:           "local",
	Forced:          "forced",
}

func (s Source) String() string {
	if s < numSources {
		return sourceNames[s]
	}
	return "unknown"
}
