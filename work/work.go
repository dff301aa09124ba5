// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package work validates the proof of work attached to blocks. Generating
// work is left to wallets.
package work

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"

	"github.com/luxfi/ids"
	"github.com/luxfi/nano/block"
	"github.com/luxfi/nano/utils/json"
)

var (
	// DefaultThresholds are the live network difficulties.
	DefaultThresholds = Thresholds{
		Base:          0xffffffc000000000,
		Epoch2:        0xfffffff800000000,
		Epoch2Receive: 0xfffffe0000000000,
	}

	// DevThresholds are cheap enough to solve on a CPU in tests.
	DevThresholds = Thresholds{
		Base:          0xfe00000000000000,
		Epoch2:        0xffc0000000000000,
		Epoch2Receive: 0xf000000000000000,
	}
)

// Thresholds is the minimum work value per block class.
type Thresholds struct {
	// Base applies to every block below epoch 2.
	Base json.Hex64 `json:"base"`
	// Epoch2 applies to epoch 2 sends and changes.
	Epoch2 json.Hex64 `json:"epoch-2"`
	// Epoch2Receive applies to epoch 2 receives, opens and epoch blocks.
	Epoch2Receive json.Hex64 `json:"epoch-2-receive"`
}

// Value is the difficulty of [work] for [root]: the first 8 bytes of
// blake2b(work || root) read little endian.
func Value(root ids.ID, work uint64) uint64 {
	h, err := blake2b.New(8, nil)
	if err != nil {
		panic(err)
	}
	var w [8]byte
	binary.LittleEndian.PutUint64(w[:], work)
	_, _ = h.Write(w[:])
	_, _ = h.Write(root[:])
	return binary.LittleEndian.Uint64(h.Sum(nil))
}

// Validator checks block work against configured thresholds.
type Validator struct {
	thresholds Thresholds
}

func NewValidator(thresholds Thresholds) *Validator {
	return &Validator{thresholds: thresholds}
}

// Entry is the lowest threshold of any block class. Anything below it can be
// rejected before the block is classified.
func (v *Validator) Entry() uint64 {
	return uint64(min(v.thresholds.Base, v.thresholds.Epoch2, v.thresholds.Epoch2Receive))
}

// Threshold is the precise threshold for a block with [details].
func (v *Validator) Threshold(details block.Details) uint64 {
	if details.Epoch < block.Epoch2 {
		return uint64(v.thresholds.Base)
	}
	if details.IsReceive || details.IsEpoch {
		return uint64(v.thresholds.Epoch2Receive)
	}
	return uint64(v.thresholds.Epoch2)
}

// Validate reports whether [work] meets the entry threshold for [root].
func (v *Validator) Validate(root ids.ID, work uint64) bool {
	return Value(root, work) >= v.Entry()
}

// ValidateDetails reports whether [work] meets the threshold for a block at
// [root] classified as [details].
func (v *Validator) ValidateDetails(root ids.ID, work uint64, details block.Details) bool {
	return Value(root, work) >= v.Threshold(details)
}

// Difficulty returns the work value of [blk].
func Difficulty(blk block.Block) uint64 {
	return Value(blk.Root(), blk.Work())
}
