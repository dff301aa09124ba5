// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"github.com/luxfi/ids"
	"github.com/luxfi/nano/block"
)

// Epochs maps epoch link markers to the authority allowed to sign them.
type Epochs struct {
	signers map[block.Epoch]block.Account
	links   map[ids.ID]block.Epoch
}

func NewEpochs() *Epochs {
	return &Epochs{
		signers: make(map[block.Epoch]block.Account),
		links:   make(map[ids.ID]block.Epoch),
	}
}

// Add enables upgrades to [epoch], signed by [signer].
func (e *Epochs) Add(epoch block.Epoch, signer block.Account) {
	e.signers[epoch] = signer
	e.links[block.EpochLink(epoch)] = epoch
}

// Epoch returns the epoch [link] upgrades to, if it is an enabled marker.
func (e *Epochs) Epoch(link ids.ID) (block.Epoch, bool) {
	epoch, ok := e.links[link]
	return epoch, ok
}

func (e *Epochs) IsEpochLink(link ids.ID) bool {
	_, ok := e.links[link]
	return ok
}

func (e *Epochs) Signer(epoch block.Epoch) (block.Account, bool) {
	signer, ok := e.signers[epoch]
	return signer, ok
}
