// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package repweights holds the in-memory representative weight table. The
// durable copy lives in the store and the ledger keeps the two in lock step
// by publishing every committed change here.
package repweights

import (
	"sync"

	"github.com/luxfi/nano/block"

	safemath "github.com/luxfi/nano/utils/math"
)

// Table maps a representative to the total balance delegated to it.
type Table struct {
	lock    sync.RWMutex
	weights map[block.Account]block.Amount
	sum     block.Amount
}

func New() *Table {
	return &Table{
		weights: make(map[block.Account]block.Amount),
	}
}

// Get returns the weight of [rep], zero if it has none.
func (t *Table) Get(rep block.Account) block.Amount {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.weights[rep]
}

// Put sets the weight of [rep]. A zero weight removes the entry.
func (t *Table) Put(rep block.Account, weight block.Amount) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.put(rep, weight)
}

// PutAll applies every entry of [weights] atomically.
func (t *Table) PutAll(weights map[block.Account]block.Amount) {
	t.lock.Lock()
	defer t.lock.Unlock()

	for rep, weight := range weights {
		t.put(rep, weight)
	}
}

func (t *Table) put(rep block.Account, weight block.Amount) {
	old := t.weights[rep]
	t.sum.Sub(&t.sum, &old)
	t.sum.Add(&t.sum, &weight)
	if weight.IsZero() {
		delete(t.weights, rep)
		return
	}
	t.weights[rep] = weight
}

// Add increases the weight of [rep] by [amount].
func (t *Table) Add(rep block.Account, amount block.Amount) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	weight, err := safemath.AddAmount(t.weights[rep], amount)
	if err != nil {
		return err
	}
	t.put(rep, weight)
	return nil
}

// Sub decreases the weight of [rep] by [amount].
func (t *Table) Sub(rep block.Account, amount block.Amount) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	weight, err := safemath.SubAmount(t.weights[rep], amount)
	if err != nil {
		return err
	}
	t.put(rep, weight)
	return nil
}

// Sum is the total of every weight. With every account delegated it equals
// the circulating supply.
func (t *Table) Sum() block.Amount {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.sum
}

// Len is the number of representatives with a non-zero weight.
func (t *Table) Len() int {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return len(t.weights)
}

// Snapshot copies the table.
func (t *Table) Snapshot() map[block.Account]block.Amount {
	t.lock.RLock()
	defer t.lock.RUnlock()

	weights := make(map[block.Account]block.Amount, len(t.weights))
	for rep, weight := range t.weights {
		weights[rep] = weight
	}
	return weights
}
