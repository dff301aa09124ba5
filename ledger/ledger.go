// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger is the block-lattice state machine: it validates blocks,
// commits them into the account, pending and weight tables, rolls back
// uncemented blocks and advances confirmation heights.
package ledger

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/nano/block"
	"github.com/luxfi/nano/repweights"
	"github.com/luxfi/nano/state"
	"github.com/luxfi/nano/utils/timer/mockable"
	"github.com/luxfi/nano/work"

	safemath "github.com/luxfi/nano/utils/math"
)

var errGenesisMismatch = errors.New("store was initialized with a different genesis")

type Config struct {
	Genesis *Genesis
	Epochs  *Epochs
	Work    *work.Validator
	Clock   *mockable.Clock
}

type Ledger struct {
	log     log.Logger
	store   *state.Store
	weights *repweights.Table
	genesis *Genesis
	epochs  *Epochs
	work    *work.Validator
	clock   *mockable.Clock

	blockCount    atomic.Uint64
	cementedCount atomic.Uint64
}

// New opens the ledger held by [store], writing the genesis block if the
// store is empty, and loads the durable weights into [weights].
func New(
	store *state.Store,
	weights *repweights.Table,
	config Config,
	logger log.Logger,
) (*Ledger, error) {
	clock := config.Clock
	if clock == nil {
		clock = &mockable.Clock{}
	}
	epochs := config.Epochs
	if epochs == nil {
		epochs = NewEpochs()
	}
	validator := config.Work
	if validator == nil {
		validator = work.NewValidator(work.DefaultThresholds)
	}
	l := &Ledger{
		log:     logger,
		store:   store,
		weights: weights,
		genesis: config.Genesis,
		epochs:  epochs,
		work:    validator,
		clock:   clock,
	}

	w := store.BeginWrite()
	initialized, err := w.Initialized()
	if err != nil {
		w.Abort()
		return nil, err
	}
	if initialized {
		w.Abort()
	} else {
		if err := l.initialize(w); err != nil {
			w.Abort()
			return nil, fmt.Errorf("couldn't write genesis: %w", err)
		}
		if err := w.Commit(); err != nil {
			return nil, err
		}
	}

	r := store.BeginRead()
	defer r.Discard()

	if err := l.load(r); err != nil {
		return nil, err
	}
	l.log.Info("ledger loaded",
		log.Stringer("genesis", l.genesis.Block.Hash()),
		log.Uint64("blocks", l.blockCount.Load()),
		log.Uint64("cemented", l.cementedCount.Load()),
		log.Int("representatives", l.weights.Len()),
	)
	return l, nil
}

func (l *Ledger) initialize(w *state.WriteTx) error {
	var (
		g        = l.genesis
		hash     = g.Block.Hash()
		account  = g.Account()
		rep      = g.Block.Representative
		now      = l.clock.Unix()
		sideband = &block.Sideband{
			Account:        account,
			Height:         1,
			Balance:        g.Amount,
			Representative: rep,
			Timestamp:      now,
			Details:        block.Details{Epoch: block.Epoch0},
		}
	)
	return errors.Join(
		w.PutBlock(g.Block, sideband),
		w.PutAccount(account, &state.AccountInfo{
			Head:           hash,
			Representative: rep,
			OpenBlock:      hash,
			Balance:        g.Amount,
			Modified:       now,
			BlockCount:     1,
			Epoch:          block.Epoch0,
		}),
		w.PutRepWeight(rep, g.Amount),
		w.PutConfirmationHeight(account, state.ConfirmationHeightInfo{
			Height:   1,
			Frontier: hash,
		}),
		w.SetInitialized(),
	)
}

func (l *Ledger) load(r *state.ReadTx) error {
	exists, err := r.BlockExists(l.genesis.Block.Hash())
	if err != nil {
		return err
	}
	if !exists {
		return errGenesisMismatch
	}

	weights, err := r.RepWeights()
	if err != nil {
		return err
	}
	l.weights.PutAll(weights)

	blocks, err := r.Count(state.Blocks)
	if err != nil {
		return err
	}
	l.blockCount.Store(blocks)

	var cemented uint64
	err = r.Accounts(func(account block.Account, _ *state.AccountInfo) error {
		info, err := r.ConfirmationHeight(account)
		cemented += info.Height
		return err
	})
	l.cementedCount.Store(cemented)
	return err
}

// Process validates [blk] and, if it is valid, applies it to [tx].
func (l *Ledger) Process(tx *state.WriteTx, blk block.Block) (Result, error) {
	result, d, err := l.check(tx, blk)
	if err != nil || result != Progress {
		return result, err
	}
	return Progress, l.apply(tx, blk, d)
}

func (l *Ledger) apply(tx *state.WriteTx, blk block.Block, d *delta) error {
	hash := blk.Hash()
	if err := tx.PutBlock(blk, &d.sideband); err != nil {
		return err
	}
	if previous := blk.Previous(); previous != ids.Empty {
		if err := tx.SetSuccessor(previous, hash); err != nil {
			return err
		}
	}
	if err := tx.PutAccount(d.account, &d.info); err != nil {
		return err
	}
	if d.send != nil {
		if err := tx.PutPending(d.send.Key, &d.send.Info); err != nil {
			return err
		}
	}
	if d.receive != nil {
		if err := tx.DeletePending(*d.receive); err != nil {
			return err
		}
	}

	var removed *weightChange
	if d.old != nil {
		removed = &weightChange{rep: d.old.Representative, amount: d.old.Balance}
	}
	added := &weightChange{rep: d.info.Representative, amount: d.info.Balance}
	if err := l.moveWeight(tx, removed, added); err != nil {
		return err
	}

	tx.OnCommit(func() {
		l.blockCount.Add(1)
	})
	return nil
}

type weightChange struct {
	rep    block.Account
	amount block.Amount
}

// moveWeight subtracts [removed] and adds [added] in the durable weight table
// and mirrors the final values into the in-memory table once [tx] commits.
func (l *Ledger) moveWeight(tx *state.WriteTx, removed, added *weightChange) error {
	changed := make(map[block.Account]block.Amount, 2)
	if removed != nil {
		weight, err := tx.RepWeight(removed.rep)
		if err != nil {
			return err
		}
		weight, err = safemath.SubAmount(weight, removed.amount)
		if err != nil {
			return fmt.Errorf("weight of %s: %w", removed.rep, err)
		}
		if err := tx.PutRepWeight(removed.rep, weight); err != nil {
			return err
		}
		changed[removed.rep] = weight
	}
	if added != nil {
		weight, err := tx.RepWeight(added.rep)
		if err != nil {
			return err
		}
		weight, err = safemath.AddAmount(weight, added.amount)
		if err != nil {
			return fmt.Errorf("weight of %s: %w", added.rep, err)
		}
		if err := tx.PutRepWeight(added.rep, weight); err != nil {
			return err
		}
		changed[added.rep] = weight
	}
	tx.OnCommit(func() {
		l.weights.PutAll(changed)
	})
	return nil
}

// Block returns the block and its sideband, or database.ErrNotFound.
func (l *Ledger) Block(tx state.Reader, hash ids.ID) (block.Block, *block.Sideband, error) {
	return tx.Block(hash)
}

func (l *Ledger) BlockExists(tx state.Reader, hash ids.ID) (bool, error) {
	return tx.BlockExists(hash)
}

// Balance returns the account balance after [hash].
func (l *Ledger) Balance(tx state.Reader, hash ids.ID) (block.Amount, error) {
	_, sideband, err := tx.Block(hash)
	if err != nil {
		return block.Amount{}, err
	}
	return sideband.Balance, nil
}

// Representative returns the representative in effect after [hash].
func (l *Ledger) Representative(tx state.Reader, hash ids.ID) (block.Account, error) {
	_, sideband, err := tx.Block(hash)
	if err != nil {
		return block.Account{}, err
	}
	return sideband.Representative, nil
}

// Successor returns the block following [hash] in its account chain.
func (l *Ledger) Successor(tx state.Reader, hash ids.ID) (ids.ID, bool, error) {
	_, sideband, err := tx.Block(hash)
	if err != nil {
		return ids.Empty, false, err
	}
	return sideband.Successor, sideband.Successor != ids.Empty, nil
}

// Weight returns the committed delegated weight of [rep].
func (l *Ledger) Weight(rep block.Account) block.Amount {
	return l.weights.Get(rep)
}

// AccountBalance returns the balance of [account], zero if it is not open.
func (l *Ledger) AccountBalance(tx state.Reader, account block.Account) (block.Amount, error) {
	info, err := tx.Account(account)
	if errors.Is(err, database.ErrNotFound) {
		return block.Amount{}, nil
	}
	if err != nil {
		return block.Amount{}, err
	}
	return info.Balance, nil
}

func (l *Ledger) AccountInfo(tx state.Reader, account block.Account) (*state.AccountInfo, error) {
	return tx.Account(account)
}

func (l *Ledger) PendingInfo(tx state.Reader, key state.PendingKey) (*state.PendingInfo, error) {
	return tx.Pending(key)
}

func (l *Ledger) ConfirmationHeight(tx state.Reader, account block.Account) (state.ConfirmationHeightInfo, error) {
	return tx.ConfirmationHeight(account)
}

// IsSend reports whether [blk] decreases its account's balance. A state block
// that is not in the ledger is classified against its predecessor.
func (l *Ledger) IsSend(tx state.Reader, blk block.Block) (bool, error) {
	switch b := blk.(type) {
	case *block.SendBlock:
		return true, nil
	case *block.StateBlock:
		_, sideband, err := tx.Block(b.Hash())
		if err == nil {
			return sideband.Details.IsSend, nil
		}
		if !errors.Is(err, database.ErrNotFound) {
			return false, err
		}
		if b.IsOpen() {
			return false, nil
		}
		previous, err := l.Balance(tx, b.Prev)
		if err != nil {
			return false, err
		}
		return b.Balance.Lt(&previous), nil
	default:
		return false, nil
	}
}

// Amount returns how much [hash] moved: sent, received, or zero.
func (l *Ledger) Amount(tx state.Reader, hash ids.ID) (block.Amount, error) {
	blk, sideband, err := tx.Block(hash)
	if err != nil {
		return block.Amount{}, err
	}
	var previous block.Amount
	if prev := blk.Previous(); prev != ids.Empty {
		previous, err = l.Balance(tx, prev)
		if err != nil {
			return block.Amount{}, err
		}
	}
	var amount block.Amount
	if sideband.Balance.Lt(&previous) {
		amount.Sub(&previous, &sideband.Balance)
	} else {
		amount.Sub(&sideband.Balance, &previous)
	}
	return amount, nil
}

// Source returns the send a committed receive claims.
func Source(blk block.Block, sideband *block.Sideband) (ids.ID, bool) {
	if !sideband.Details.IsReceive {
		return ids.Empty, false
	}
	if source, ok := block.SourceOf(blk); ok {
		return source, true
	}
	if b, ok := blk.(*block.StateBlock); ok {
		return b.Link, true
	}
	return ids.Empty, false
}

// Destination returns the account a committed send credits.
func Destination(blk block.Block, sideband *block.Sideband) (block.Account, bool) {
	if !sideband.Details.IsSend {
		return block.Account{}, false
	}
	switch b := blk.(type) {
	case *block.SendBlock:
		return b.Destination, true
	case *block.StateBlock:
		return block.AccountFromID(b.Link), true
	default:
		return block.Account{}, false
	}
}

// Dependents are the blocks that must be cemented before [blk]: its
// predecessor and, for a receive, the send it claims. Absent entries are
// empty.
func Dependents(blk block.Block, sideband *block.Sideband) [2]ids.ID {
	source, _ := Source(blk, sideband)
	return [2]ids.ID{blk.Previous(), source}
}

// BlockConfirmed reports whether [hash] is cemented.
func (l *Ledger) BlockConfirmed(tx state.Reader, hash ids.ID) (bool, error) {
	_, sideband, err := tx.Block(hash)
	if err != nil {
		return false, err
	}
	info, err := tx.ConfirmationHeight(sideband.Account)
	if err != nil {
		return false, err
	}
	return info.Height >= sideband.Height, nil
}

// DependentsConfirmed reports whether every dependency of [hash] is cemented.
func (l *Ledger) DependentsConfirmed(tx state.Reader, hash ids.ID) (bool, error) {
	blk, sideband, err := tx.Block(hash)
	if err != nil {
		return false, err
	}
	for _, dependent := range Dependents(blk, sideband) {
		if dependent == ids.Empty {
			continue
		}
		confirmed, err := l.BlockConfirmed(tx, dependent)
		if err != nil || !confirmed {
			return false, err
		}
	}
	return true, nil
}

// Competitor returns the committed block occupying the root of [blk], if any.
func (l *Ledger) Competitor(tx state.Reader, blk block.Block) (ids.ID, bool, error) {
	if previous := blk.Previous(); previous != ids.Empty {
		successor, ok, err := l.Successor(tx, previous)
		if errors.Is(err, database.ErrNotFound) {
			return ids.Empty, false, nil
		}
		return successor, ok, err
	}
	account, ok := block.AccountOf(blk)
	if !ok {
		return ids.Empty, false, nil
	}
	info, err := tx.Account(account)
	if errors.Is(err, database.ErrNotFound) {
		return ids.Empty, false, nil
	}
	if err != nil {
		return ids.Empty, false, err
	}
	return info.OpenBlock, true, nil
}

func (l *Ledger) Genesis() *Genesis {
	return l.genesis
}

func (l *Ledger) Epochs() *Epochs {
	return l.epochs
}

// BlockCount is the number of committed blocks.
func (l *Ledger) BlockCount() uint64 {
	return l.blockCount.Load()
}

// CementedCount is the number of cemented blocks.
func (l *Ledger) CementedCount() uint64 {
	return l.cementedCount.Load()
}

// Frontier returns the head of [account].
func (l *Ledger) Frontier(tx state.Reader, account block.Account) (ids.ID, error) {
	info, err := tx.Account(account)
	if err != nil {
		return ids.Empty, err
	}
	return info.Head, nil
}

// Sideband returns the ledger metadata of a committed block.
func (l *Ledger) Sideband(tx state.Reader, hash ids.ID) (*block.Sideband, error) {
	_, sideband, err := tx.Block(hash)
	return sideband, err
}

// HashRoot returns the root of the committed block [hash].
func (l *Ledger) HashRoot(tx state.Reader, hash ids.ID) (ids.ID, error) {
	blk, _, err := tx.Block(hash)
	if err != nil {
		return ids.Empty, err
	}
	return blk.Root(), nil
}
