// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"github.com/luxfi/ids"
	"github.com/luxfi/nano/block"
)

const pendingKeyLen = block.AccountLen + ids.IDLen

// AccountInfo is the ledger's view of one account chain.
type AccountInfo struct {
	Head           ids.ID        `serialize:"true"`
	Representative block.Account `serialize:"true"`
	OpenBlock      ids.ID        `serialize:"true"`
	Balance        block.Amount  `serialize:"true"`
	// Modified is the unix time of the last block committed to the account.
	Modified   uint64      `serialize:"true"`
	BlockCount uint64      `serialize:"true"`
	Epoch      block.Epoch `serialize:"true"`
}

// PendingKey addresses a receivable entry: the destination account and the
// hash of the send that created it.
type PendingKey struct {
	Account block.Account
	Hash    ids.ID
}

func (k PendingKey) Bytes() []byte {
	b := make([]byte, pendingKeyLen)
	copy(b, k.Account[:])
	copy(b[block.AccountLen:], k.Hash[:])
	return b
}

func pendingKeyFromBytes(b []byte) PendingKey {
	var k PendingKey
	copy(k.Account[:], b[:block.AccountLen])
	copy(k.Hash[:], b[block.AccountLen:])
	return k
}

// PendingInfo is a transfer awaiting a receive.
type PendingInfo struct {
	Source block.Account `serialize:"true"`
	Amount block.Amount  `serialize:"true"`
	Epoch  block.Epoch   `serialize:"true"`
}

// PendingEntry pairs a pending key with its value.
type PendingEntry struct {
	Key  PendingKey
	Info PendingInfo
}

// ConfirmationHeightInfo is the cemented prefix of an account chain.
type ConfirmationHeightInfo struct {
	Height   uint64 `serialize:"true"`
	Frontier ids.ID `serialize:"true"`
}

type blockRecord struct {
	Block    []byte         `serialize:"true"`
	Sideband block.Sideband `serialize:"true"`
}
