// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package block

import (
	"crypto/ed25519"

	"github.com/luxfi/ids"
)

var (
	_ Block = (*StateBlock)(nil)

	statePreamble = func() [32]byte {
		var p [32]byte
		p[31] = 6
		return p
	}()
)

// StateBlock carries the full account state after the block. What it does is
// derived from the balance change and Link:
//   - balance decreased: a send to the account encoded in Link
//   - balance increased: a receive of the send whose hash is Link
//   - balance unchanged, Link empty: a representative change or no-op
//   - balance unchanged, Link an epoch marker: an epoch upgrade
type StateBlock struct {
	Account        Account   `serialize:"true"`
	Prev           ids.ID    `serialize:"true"`
	Representative Account   `serialize:"true"`
	Balance        Amount    `serialize:"true"`
	Link           ids.ID    `serialize:"true"`
	Sig            Signature `serialize:"true"`
	PoW            uint64    `serialize:"true"`

	hash  ids.ID
	bytes []byte
}

func NewState(
	account Account,
	previous ids.ID,
	representative Account,
	balance Amount,
	link ids.ID,
	key ed25519.PrivateKey,
	work uint64,
) (*StateBlock, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	b := &StateBlock{
		Account:        account,
		Prev:           previous,
		Representative: representative,
		Balance:        balance,
		Link:           link,
		PoW:            work,
	}
	b.Sig = Sign(key, b.computeHash())
	return b, build(b)
}

func (b *StateBlock) computeHash() ids.ID {
	return Hash(
		statePreamble[:],
		b.Account[:],
		b.Prev[:],
		b.Representative[:],
		AmountBytes(b.Balance),
		b.Link[:],
	)
}

func (b *StateBlock) initialize(bytes []byte) {
	b.bytes = bytes
	b.hash = b.computeHash()
}

// IsOpen reports whether this is the first block of its account.
func (b *StateBlock) IsOpen() bool {
	return b.Prev == ids.Empty
}

func (*StateBlock) Type() Type             { return StateType }
func (b *StateBlock) Hash() ids.ID         { return b.hash }
func (b *StateBlock) Bytes() []byte        { return b.bytes }
func (b *StateBlock) Previous() ids.ID     { return b.Prev }
func (b *StateBlock) Signature() Signature { return b.Sig }
func (b *StateBlock) Work() uint64         { return b.PoW }

func (b *StateBlock) Root() ids.ID {
	if b.IsOpen() {
		return b.Account.ID()
	}
	return b.Prev
}
