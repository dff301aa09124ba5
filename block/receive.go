// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package block

import (
	"crypto/ed25519"

	"github.com/luxfi/ids"
)

var _ Block = (*ReceiveBlock)(nil)

// ReceiveBlock claims the pending entry created by the send Source.
type ReceiveBlock struct {
	Prev   ids.ID    `serialize:"true"`
	Source ids.ID    `serialize:"true"`
	Sig    Signature `serialize:"true"`
	PoW    uint64    `serialize:"true"`

	hash  ids.ID
	bytes []byte
}

func NewReceive(
	previous ids.ID,
	source ids.ID,
	key ed25519.PrivateKey,
	work uint64,
) (*ReceiveBlock, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	b := &ReceiveBlock{
		Prev:   previous,
		Source: source,
		PoW:    work,
	}
	b.Sig = Sign(key, b.computeHash())
	return b, build(b)
}

func (b *ReceiveBlock) computeHash() ids.ID {
	return Hash(b.Prev[:], b.Source[:])
}

func (b *ReceiveBlock) initialize(bytes []byte) {
	b.bytes = bytes
	b.hash = b.computeHash()
}

func (*ReceiveBlock) Type() Type             { return ReceiveType }
func (b *ReceiveBlock) Hash() ids.ID         { return b.hash }
func (b *ReceiveBlock) Bytes() []byte        { return b.bytes }
func (b *ReceiveBlock) Previous() ids.ID     { return b.Prev }
func (b *ReceiveBlock) Root() ids.ID         { return b.Prev }
func (b *ReceiveBlock) Signature() Signature { return b.Sig }
func (b *ReceiveBlock) Work() uint64         { return b.PoW }
