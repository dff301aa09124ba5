// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledgertest builds in-memory ledgers and signed blocks for tests.
package ledgertest

import (
	"crypto/ed25519"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/nano/block"
	"github.com/luxfi/nano/ledger"
	"github.com/luxfi/nano/repweights"
	"github.com/luxfi/nano/state"
	"github.com/luxfi/nano/utils/timer/mockable"
	"github.com/luxfi/nano/work"
	"github.com/luxfi/nano/work/worktest"

	safemath "github.com/luxfi/nano/utils/math"
)

// Env is a ledger over memdb whose genesis holds the entire supply.
type Env struct {
	Store      *state.Store
	Weights    *repweights.Table
	Ledger     *ledger.Ledger
	Clock      *mockable.Clock
	GenesisKey ed25519.PrivateKey
	Genesis    *ledger.Genesis
}

func New(t testing.TB) *Env {
	require := require.New(t)

	store, err := state.New(memdb.New(), metric.NewRegistry(), log.NewNoOpLogger())
	require.NoError(err)

	key := NewKey(t)
	genesis, err := ledger.NewGenesis(key, safemath.MaxAmount)
	require.NoError(err)

	epochs := ledger.NewEpochs()
	epochs.Add(block.Epoch1, genesis.Account())
	epochs.Add(block.Epoch2, genesis.Account())

	clock := &mockable.Clock{}
	weights := repweights.New()
	l, err := ledger.New(store, weights, ledger.Config{
		Genesis: genesis,
		Epochs:  epochs,
		Work:    work.NewValidator(work.DevThresholds),
		Clock:   clock,
	}, log.NewNoOpLogger())
	require.NoError(err)

	return &Env{
		Store:      store,
		Weights:    weights,
		Ledger:     l,
		Clock:      clock,
		GenesisKey: key,
		Genesis:    genesis,
	}
}

// Process commits [blk] when it is valid and returns the ledger's verdict.
func (e *Env) Process(t testing.TB, blk block.Block) ledger.Result {
	tx := e.Store.BeginWrite()
	result, err := e.Ledger.Process(tx, blk)
	require.NoError(t, err)
	if result != ledger.Progress {
		tx.Abort()
		return result
	}
	require.NoError(t, tx.Commit())
	return result
}

// Head returns the frontier of [account].
func (e *Env) Head(t testing.TB, account block.Account) ids.ID {
	r := e.Store.BeginRead()
	defer r.Discard()

	head, err := e.Ledger.Frontier(r, account)
	require.NoError(t, err)
	return head
}

// Confirm cements [hash] and its dependencies.
func (e *Env) Confirm(t testing.TB, hash ids.ID) []block.Block {
	tx := e.Store.BeginWrite()
	cemented, err := e.Ledger.Confirm(tx, hash, 0)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	return cemented
}

// GenesisAccount is the account funded by genesis.
func (e *Env) GenesisAccount() block.Account {
	return e.Genesis.Account()
}

// GenesisBalance is the current balance of the genesis account.
func (e *Env) GenesisBalance(t testing.TB) block.Amount {
	r := e.Store.BeginRead()
	defer r.Discard()

	balance, err := e.Ledger.AccountBalance(r, e.GenesisAccount())
	require.NoError(t, err)
	return balance
}

func NewKey(t testing.TB) ed25519.PrivateKey {
	_, key, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return key
}

func Account(key ed25519.PrivateKey) block.Account {
	return block.AccountFromPublicKey(key.Public().(ed25519.PublicKey))
}

func Amount(v uint64) block.Amount {
	return *uint256.NewInt(v)
}

// Work solves the dev threshold shared by every block below epoch 2.
func Work(root ids.ID) uint64 {
	return worktest.Solve(root, uint64(work.DevThresholds.Base))
}

// State signs a state block for the account of [key].
func State(
	t testing.TB,
	key ed25519.PrivateKey,
	previous ids.ID,
	rep block.Account,
	balance block.Amount,
	link ids.ID,
) *block.StateBlock {
	account := Account(key)
	root := previous
	if previous == ids.Empty {
		root = account.ID()
	}
	blk, err := block.NewState(account, previous, rep, balance, link, key, Work(root))
	require.NoError(t, err)
	return blk
}

// Epoch signs an upgrade of [account] with [key], the epoch authority.
func Epoch(
	t testing.TB,
	key ed25519.PrivateKey,
	account block.Account,
	previous ids.ID,
	rep block.Account,
	balance block.Amount,
	epoch block.Epoch,
) *block.StateBlock {
	root := previous
	if previous == ids.Empty {
		root = account.ID()
	}
	blk, err := block.NewState(account, previous, rep, balance, block.EpochLink(epoch), key, Work(root))
	require.NoError(t, err)
	return blk
}

func Send(t testing.TB, key ed25519.PrivateKey, previous ids.ID, destination block.Account, balance block.Amount) *block.SendBlock {
	blk, err := block.NewSend(previous, destination, balance, key, Work(previous))
	require.NoError(t, err)
	return blk
}

func Receive(t testing.TB, key ed25519.PrivateKey, previous ids.ID, source ids.ID) *block.ReceiveBlock {
	blk, err := block.NewReceive(previous, source, key, Work(previous))
	require.NoError(t, err)
	return blk
}

func Open(t testing.TB, key ed25519.PrivateKey, source ids.ID, rep block.Account) *block.OpenBlock {
	account := Account(key)
	blk, err := block.NewOpen(source, rep, account, key, Work(account.ID()))
	require.NoError(t, err)
	return blk
}

func Change(t testing.TB, key ed25519.PrivateKey, previous ids.ID, rep block.Account) *block.ChangeBlock {
	blk, err := block.NewChange(previous, rep, key, Work(previous))
	require.NoError(t, err)
	return blk
}
