// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"errors"
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"

	"github.com/luxfi/nano/block"
	"github.com/luxfi/nano/state"

	safemath "github.com/luxfi/nano/utils/math"
)

// delta is the mutation a valid block applies to the ledger.
type delta struct {
	account  block.Account
	info     state.AccountInfo
	old      *state.AccountInfo
	sideband block.Sideband
	send     *state.PendingEntry
	receive  *state.PendingKey
}

// checkContext carries what the rules learn about a block as they run. Each
// rule may end the check with a Result; the first one to do so wins.
type checkContext struct {
	l   *Ledger
	tx  state.Reader
	blk block.Block

	hash ids.ID

	account      block.Account
	info         *state.AccountInfo // nil for the first block of an account
	previous     block.Block
	prevSideband *block.Sideband
	prevBalance  block.Amount

	source    block.Block // the send a legacy receive or open claims
	epochLink bool        // state block whose link is an upgrade marker
	details   block.Details
}

// Check classifies [blk] against [tx] without modifying it.
func (l *Ledger) Check(tx state.Reader, blk block.Block) (Result, error) {
	result, _, err := l.check(tx, blk)
	return result, err
}

func (l *Ledger) check(tx state.Reader, blk block.Block) (Result, *delta, error) {
	c := &checkContext{
		l:    l,
		tx:   tx,
		blk:  blk,
		hash: blk.Hash(),
	}
	rules := []func() (Result, error){
		c.checkEntryWork,
		c.checkOld,
		c.checkReserved,
		c.checkPrevious,
		c.checkPosition,
		c.checkSignature,
	}
	for _, rule := range rules {
		result, err := rule()
		if err != nil || result != Progress {
			return result, nil, err
		}
	}

	d, result, err := c.operation()
	if err != nil || result != Progress {
		return result, nil, err
	}
	if !l.work.ValidateDetails(blk.Root(), blk.Work(), d.sideband.Details) {
		return InsufficientWork, nil, nil
	}
	return Progress, d, nil
}

func (c *checkContext) checkEntryWork() (Result, error) {
	if !c.l.work.Validate(c.blk.Root(), c.blk.Work()) {
		return InsufficientWork, nil
	}
	return Progress, nil
}

func (c *checkContext) checkOld() (Result, error) {
	exists, err := c.tx.BlockExists(c.hash)
	if err != nil {
		return Progress, err
	}
	if exists {
		return Old, nil
	}
	return Progress, nil
}

func (c *checkContext) checkReserved() (Result, error) {
	if account, ok := block.AccountOf(c.blk); ok && account.IsZero() {
		return OpenedBurnAccount, nil
	}
	return Progress, nil
}

// checkPrevious resolves the account and requires the block to extend its
// head, or to open an account that does not exist yet.
func (c *checkContext) checkPrevious() (Result, error) {
	previous := c.blk.Previous()
	if previous == ids.Empty {
		// Only open and state blocks name their account; anything else
		// cannot start a chain.
		account, ok := block.AccountOf(c.blk)
		if !ok {
			return BlockPosition, nil
		}
		c.account = account
		_, err := c.tx.Account(c.account)
		switch {
		case err == nil:
			return Fork, nil
		case errors.Is(err, database.ErrNotFound):
			return Progress, nil
		default:
			return Progress, err
		}
	}

	prev, sideband, err := c.tx.Block(previous)
	if errors.Is(err, database.ErrNotFound) {
		return GapPrevious, nil
	}
	if err != nil {
		return Progress, err
	}
	c.previous = prev
	c.prevSideband = sideband
	c.prevBalance = sideband.Balance
	c.account = sideband.Account

	if account, ok := block.AccountOf(c.blk); ok && account != c.account {
		return BadAccountNumber, nil
	}
	info, err := c.tx.Account(c.account)
	if err != nil {
		return Progress, fmt.Errorf("account %s of block %s: %w", c.account, previous, err)
	}
	c.info = info
	if info.Head != previous {
		return Fork, nil
	}
	return Progress, nil
}

// checkPosition keeps legacy blocks out of accounts and sources that have
// moved to state blocks.
func (c *checkContext) checkPosition() (Result, error) {
	if !c.blk.Type().IsLegacy() {
		return Progress, nil
	}
	if c.previous != nil && c.previous.Type() == block.StateType {
		return BlockPosition, nil
	}
	if c.info != nil && c.info.Epoch > block.Epoch0 {
		return BlockPosition, nil
	}
	source, ok := block.SourceOf(c.blk)
	if !ok {
		return Progress, nil
	}
	blk, _, err := c.tx.Block(source)
	if errors.Is(err, database.ErrNotFound) {
		return GapSource, nil
	}
	if err != nil {
		return Progress, err
	}
	if blk.Type() == block.StateType {
		return BlockPosition, nil
	}
	c.source = blk
	return Progress, nil
}

func (c *checkContext) checkSignature() (Result, error) {
	signer := c.account
	if b, ok := c.blk.(*block.StateBlock); ok {
		epoch, isEpoch := c.l.epochs.Epoch(b.Link)
		if isEpoch && b.Balance.Eq(&c.prevBalance) {
			c.epochLink = true
			signer, _ = c.l.epochs.Signer(epoch)
		}
	}
	if !block.Verify(signer, c.hash, c.blk.Signature()) {
		return BadSignature, nil
	}
	return Progress, nil
}

func (c *checkContext) operation() (*delta, Result, error) {
	switch b := c.blk.(type) {
	case *block.SendBlock:
		return c.legacySend(b)
	case *block.ReceiveBlock:
		return c.legacyReceive(b.Source, c.info.Representative)
	case *block.OpenBlock:
		return c.legacyReceive(b.Source, b.Representative)
	case *block.ChangeBlock:
		return c.newDelta(b.Representative, c.prevBalance, block.Details{}, 0), Progress, nil
	case *block.StateBlock:
		return c.state(b)
	default:
		return nil, Progress, fmt.Errorf("unknown block type %s", c.blk.Type())
	}
}

func (c *checkContext) legacySend(b *block.SendBlock) (*delta, Result, error) {
	if b.Balance.Gt(&c.prevBalance) {
		return nil, NegativeSpend, nil
	}
	var amount block.Amount
	amount.Sub(&c.prevBalance, &b.Balance)
	d := c.newDelta(c.info.Representative, b.Balance, block.Details{IsSend: true}, 0)
	d.send = &state.PendingEntry{
		Key: state.PendingKey{Account: b.Destination, Hash: c.hash},
		Info: state.PendingInfo{
			Source: c.account,
			Amount: amount,
			Epoch:  block.Epoch0,
		},
	}
	return d, Progress, nil
}

func (c *checkContext) legacyReceive(source ids.ID, rep block.Account) (*delta, Result, error) {
	key := state.PendingKey{Account: c.account, Hash: source}
	pending, err := c.tx.Pending(key)
	if errors.Is(err, database.ErrNotFound) {
		return nil, Unreceivable, nil
	}
	if err != nil {
		return nil, Progress, err
	}
	if pending.Epoch != block.Epoch0 {
		return nil, Unreceivable, nil
	}
	balance, err := safemath.AddAmount(c.prevBalance, pending.Amount)
	if err != nil {
		return nil, BalanceMismatch, nil
	}
	d := c.newDelta(rep, balance, block.Details{IsReceive: true}, pending.Epoch)
	d.receive = &key
	return d, Progress, nil
}

func (c *checkContext) state(b *block.StateBlock) (*delta, Result, error) {
	epoch := block.Epoch0
	if c.info != nil {
		epoch = c.info.Epoch
	}

	switch {
	case b.Balance.Lt(&c.prevBalance):
		var amount block.Amount
		amount.Sub(&c.prevBalance, &b.Balance)
		d := c.newDelta(b.Representative, b.Balance, block.Details{Epoch: epoch, IsSend: true}, 0)
		d.send = &state.PendingEntry{
			Key: state.PendingKey{Account: block.AccountFromID(b.Link), Hash: c.hash},
			Info: state.PendingInfo{
				Source: c.account,
				Amount: amount,
				Epoch:  epoch,
			},
		}
		return d, Progress, nil

	case b.Balance.Gt(&c.prevBalance):
		if b.Link == ids.Empty {
			return nil, BalanceMismatch, nil
		}
		exists, err := c.tx.BlockExists(b.Link)
		if err != nil {
			return nil, Progress, err
		}
		if !exists {
			return nil, GapSource, nil
		}
		key := state.PendingKey{Account: c.account, Hash: b.Link}
		pending, err := c.tx.Pending(key)
		if errors.Is(err, database.ErrNotFound) {
			return nil, Unreceivable, nil
		}
		if err != nil {
			return nil, Progress, err
		}
		var amount block.Amount
		amount.Sub(&b.Balance, &c.prevBalance)
		if !amount.Eq(&pending.Amount) {
			return nil, BalanceMismatch, nil
		}
		details := block.Details{
			Epoch:     max(epoch, pending.Epoch),
			IsReceive: true,
		}
		d := c.newDelta(b.Representative, b.Balance, details, pending.Epoch)
		d.receive = &key
		return d, Progress, nil

	case c.epochLink:
		return c.epoch(b, epoch)

	case b.Link == ids.Empty:
		if c.info == nil {
			return nil, GapSource, nil
		}
		return c.newDelta(b.Representative, b.Balance, block.Details{Epoch: epoch}, 0), Progress, nil

	default:
		return nil, BalanceMismatch, nil
	}
}

// epoch validates an upgrade: it may not move weight, change the
// representative or skip a level.
func (c *checkContext) epoch(b *block.StateBlock, current block.Epoch) (*delta, Result, error) {
	next, _ := c.l.epochs.Epoch(b.Link)
	var rep block.Account
	if c.info != nil {
		rep = c.info.Representative
	}
	if b.Representative != rep {
		return nil, RepresentativeMismatch, nil
	}
	if c.info == nil {
		pending, err := c.tx.AnyPending(c.account)
		if err != nil {
			return nil, Progress, err
		}
		if !pending {
			return nil, GapSource, nil
		}
	} else if next != current+1 {
		return nil, BlockPosition, nil
	}
	return c.newDelta(rep, b.Balance, block.Details{Epoch: next, IsEpoch: true}, 0), Progress, nil
}

func (c *checkContext) newDelta(
	rep block.Account,
	balance block.Amount,
	details block.Details,
	sourceEpoch block.Epoch,
) *delta {
	now := c.l.clock.Unix()
	d := &delta{
		account: c.account,
		old:     c.info,
		info: state.AccountInfo{
			Head:           c.hash,
			Representative: rep,
			OpenBlock:      c.hash,
			Balance:        balance,
			Modified:       now,
			BlockCount:     1,
			Epoch:          details.Epoch,
		},
		sideband: block.Sideband{
			Account:        c.account,
			Height:         1,
			Balance:        balance,
			Representative: rep,
			Timestamp:      now,
			Details:        details,
			SourceEpoch:    sourceEpoch,
		},
	}
	if c.info != nil {
		d.info.OpenBlock = c.info.OpenBlock
		d.info.BlockCount = c.info.BlockCount + 1
		d.sideband.Height = d.info.BlockCount
	}
	return d
}
