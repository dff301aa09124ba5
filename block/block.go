// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package block defines the block-lattice block variants, their canonical
// hashing and their wire encoding.
package block

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/luxfi/ids"
)

var errBadKey = errors.New("invalid ed25519 private key")

// Type tags a block variant.
type Type uint8

const (
	InvalidType Type = iota
	SendType
	ReceiveType
	OpenType
	ChangeType
	StateType
)

func (t Type) String() string {
	switch t {
	case SendType:
		return "send"
	case ReceiveType:
		return "receive"
	case OpenType:
		return "open"
	case ChangeType:
		return "change"
	case StateType:
		return "state"
	default:
		return "invalid"
	}
}

// IsLegacy reports whether [t] predates the unified state block.
func (t Type) IsLegacy() bool {
	return t != StateType && t != InvalidType
}

// Block is an immutable, content addressed entry in an account chain.
// Callers dispatch on the concrete variant with a type switch; the methods
// here are the projection every variant shares.
type Block interface {
	Type() Type
	// Hash is the block's identity. It covers every field except the
	// signature and the work.
	Hash() ids.ID
	// Bytes is the serialized block.
	Bytes() []byte
	// Previous is the hash of the preceding block, or empty for the first
	// block of an account.
	Previous() ids.ID
	// Root is the contested position: Previous, or the account for the
	// first block of an account.
	Root() ids.ID
	Signature() Signature
	Work() uint64

	initialize(bytes []byte)
}

// Parse deserializes a block produced by any of the New* constructors.
func Parse(bytes []byte) (Block, error) {
	var blk Block
	if _, err := Codec.Unmarshal(bytes, &blk); err != nil {
		return nil, err
	}
	blk.initialize(bytes)
	return blk, nil
}

func build(blk Block) error {
	bytes, err := Codec.Marshal(CodecVersion, &blk)
	if err != nil {
		return fmt.Errorf("couldn't marshal %s block: %w", blk.Type(), err)
	}
	blk.initialize(bytes)
	return nil
}

// AccountOf returns the account a block names explicitly. Send, receive and
// change blocks only identify their account through their predecessor.
func AccountOf(blk Block) (Account, bool) {
	switch b := blk.(type) {
	case *OpenBlock:
		return b.Account, true
	case *StateBlock:
		return b.Account, true
	default:
		return Account{}, false
	}
}

// RepresentativeOf returns the representative a block sets, if it sets one.
func RepresentativeOf(blk Block) (Account, bool) {
	switch b := blk.(type) {
	case *OpenBlock:
		return b.Representative, true
	case *ChangeBlock:
		return b.Representative, true
	case *StateBlock:
		return b.Representative, true
	default:
		return Account{}, false
	}
}

// BalanceOf returns the balance a block records, if it records one.
func BalanceOf(blk Block) (Amount, bool) {
	switch b := blk.(type) {
	case *SendBlock:
		return b.Balance, true
	case *StateBlock:
		return b.Balance, true
	default:
		return Amount{}, false
	}
}

// SourceOf returns the send a legacy receive or open block claims.
func SourceOf(blk Block) (ids.ID, bool) {
	switch b := blk.(type) {
	case *ReceiveBlock:
		return b.Source, true
	case *OpenBlock:
		return b.Source, true
	default:
		return ids.Empty, false
	}
}

func checkKey(key ed25519.PrivateKey) error {
	if len(key) != ed25519.PrivateKeySize {
		return errBadKey
	}
	return nil
}
