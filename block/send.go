// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package block

import (
	"crypto/ed25519"

	"github.com/luxfi/ids"
)

var _ Block = (*SendBlock)(nil)

// SendBlock moves funds out of an account. The amount sent is the drop from
// the predecessor's balance to Balance.
type SendBlock struct {
	Prev        ids.ID    `serialize:"true"`
	Destination Account   `serialize:"true"`
	Balance     Amount    `serialize:"true"`
	Sig         Signature `serialize:"true"`
	PoW         uint64    `serialize:"true"`

	hash  ids.ID
	bytes []byte
}

func NewSend(
	previous ids.ID,
	destination Account,
	balance Amount,
	key ed25519.PrivateKey,
	work uint64,
) (*SendBlock, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	b := &SendBlock{
		Prev:        previous,
		Destination: destination,
		Balance:     balance,
		PoW:         work,
	}
	b.Sig = Sign(key, b.computeHash())
	return b, build(b)
}

func (b *SendBlock) computeHash() ids.ID {
	return Hash(b.Prev[:], b.Destination[:], AmountBytes(b.Balance))
}

func (b *SendBlock) initialize(bytes []byte) {
	b.bytes = bytes
	b.hash = b.computeHash()
}

func (*SendBlock) Type() Type             { return SendType }
func (b *SendBlock) Hash() ids.ID         { return b.hash }
func (b *SendBlock) Bytes() []byte        { return b.bytes }
func (b *SendBlock) Previous() ids.ID     { return b.Prev }
func (b *SendBlock) Root() ids.ID         { return b.Prev }
func (b *SendBlock) Signature() Signature { return b.Sig }
func (b *SendBlock) Work() uint64         { return b.PoW }
