// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package worktest brute forces work for tests.
package worktest

import (
	"github.com/luxfi/ids"
	"github.com/luxfi/nano/work"
)

// Solve returns the first work value for [root] that reaches [threshold].
func Solve(root ids.ID, threshold uint64) uint64 {
	for nonce := uint64(0); ; nonce++ {
		if work.Value(root, nonce) >= threshold {
			return nonce
		}
	}
}
