// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package block

import (
	"crypto/ed25519"

	"github.com/luxfi/ids"
)

var _ Block = (*OpenBlock)(nil)

// OpenBlock is the first block of a legacy account. It receives Source and
// names the account's first representative.
type OpenBlock struct {
	Source         ids.ID    `serialize:"true"`
	Representative Account   `serialize:"true"`
	Account        Account   `serialize:"true"`
	Sig            Signature `serialize:"true"`
	PoW            uint64    `serialize:"true"`

	hash  ids.ID
	bytes []byte
}

func NewOpen(
	source ids.ID,
	representative Account,
	account Account,
	key ed25519.PrivateKey,
	work uint64,
) (*OpenBlock, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	b := &OpenBlock{
		Source:         source,
		Representative: representative,
		Account:        account,
		PoW:            work,
	}
	b.Sig = Sign(key, b.computeHash())
	return b, build(b)
}

func (b *OpenBlock) computeHash() ids.ID {
	return Hash(b.Source[:], b.Representative[:], b.Account[:])
}

func (b *OpenBlock) initialize(bytes []byte) {
	b.bytes = bytes
	b.hash = b.computeHash()
}

func (*OpenBlock) Type() Type             { return OpenType }
func (b *OpenBlock) Hash() ids.ID         { return b.hash }
func (b *OpenBlock) Bytes() []byte        { return b.bytes }
func (*OpenBlock) Previous() ids.ID       { return ids.Empty }
func (b *OpenBlock) Root() ids.ID         { return b.Account.ID() }
func (b *OpenBlock) Signature() Signature { return b.Sig }
func (b *OpenBlock) Work() uint64         { return b.PoW }
