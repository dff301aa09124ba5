// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package block

import (
	"crypto/ed25519"

	"github.com/luxfi/ids"
)

var _ Block = (*ChangeBlock)(nil)

// ChangeBlock re-delegates an account's balance to a new representative.
type ChangeBlock struct {
	Prev           ids.ID    `serialize:"true"`
	Representative Account   `serialize:"true"`
	Sig            Signature `serialize:"true"`
	PoW            uint64    `serialize:"true"`

	hash  ids.ID
	bytes []byte
}

func NewChange(
	previous ids.ID,
	representative Account,
	key ed25519.PrivateKey,
	work uint64,
) (*ChangeBlock, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	b := &ChangeBlock{
		Prev:           previous,
		Representative: representative,
		PoW:            work,
	}
	b.Sig = Sign(key, b.computeHash())
	return b, build(b)
}

func (b *ChangeBlock) computeHash() ids.ID {
	return Hash(b.Prev[:], b.Representative[:])
}

func (b *ChangeBlock) initialize(bytes []byte) {
	b.bytes = bytes
	b.hash = b.computeHash()
}

func (*ChangeBlock) Type() Type             { return ChangeType }
func (b *ChangeBlock) Hash() ids.ID         { return b.hash }
func (b *ChangeBlock) Bytes() []byte        { return b.bytes }
func (b *ChangeBlock) Previous() ids.ID     { return b.Prev }
func (b *ChangeBlock) Root() ids.ID         { return b.Prev }
func (b *ChangeBlock) Signature() Signature { return b.Sig }
func (b *ChangeBlock) Work() uint64         { return b.PoW }
