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
)

// Rollback removes [target] and every block committed after it in its
// account chain. Receives of sends being removed are rolled back first. The
// removed blocks are returned in the order they were removed.
//
// Rolling back a cemented block is a broken invariant and panics.
func (l *Ledger) Rollback(tx *state.WriteTx, target ids.ID) ([]block.Block, error) {
	_, sideband, err := tx.Block(target)
	if err != nil {
		return nil, err
	}
	var rolledBack []block.Block
	for {
		exists, err := tx.BlockExists(target)
		if err != nil {
			return rolledBack, err
		}
		if !exists {
			return rolledBack, nil
		}
		if err := l.rollbackHead(tx, sideband.Account, &rolledBack); err != nil {
			return rolledBack, err
		}
	}
}

func (l *Ledger) rollbackHead(tx *state.WriteTx, account block.Account, rolledBack *[]block.Block) error {
	info, err := tx.Account(account)
	if err != nil {
		return fmt.Errorf("account %s: %w", account, err)
	}
	hash := info.Head
	blk, sideband, err := tx.Block(hash)
	if err != nil {
		return fmt.Errorf("head %s of %s: %w", hash, account, err)
	}
	cemented, err := tx.ConfirmationHeight(account)
	if err != nil {
		return err
	}
	if cemented.Height >= sideband.Height {
		panic(fmt.Sprintf("rollback of cemented block %s at height %d", hash, sideband.Height))
	}

	var prevSideband *block.Sideband
	if previous := blk.Previous(); previous != ids.Empty {
		_, prevSideband, err = tx.Block(previous)
		if err != nil {
			return fmt.Errorf("previous %s of %s: %w", previous, hash, err)
		}
	}

	if destination, ok := Destination(blk, sideband); ok {
		if err := l.rollbackReceiver(tx, destination, hash, rolledBack); err != nil {
			return err
		}
	}
	if source, ok := Source(blk, sideband); ok {
		_, sourceSideband, err := tx.Block(source)
		if err != nil {
			return fmt.Errorf("source %s of %s: %w", source, hash, err)
		}
		amount := sideband.Balance
		if prevSideband != nil {
			amount.Sub(&sideband.Balance, &prevSideband.Balance)
		}
		err = tx.PutPending(
			state.PendingKey{Account: account, Hash: source},
			&state.PendingInfo{
				Source: sourceSideband.Account,
				Amount: amount,
				Epoch:  sideband.SourceEpoch,
			},
		)
		if err != nil {
			return err
		}
	}

	removed := &weightChange{rep: info.Representative, amount: info.Balance}
	var added *weightChange
	if prevSideband == nil {
		if err := tx.DeleteAccount(account); err != nil {
			return err
		}
	} else {
		previous := blk.Previous()
		err := tx.PutAccount(account, &state.AccountInfo{
			Head:           previous,
			Representative: prevSideband.Representative,
			OpenBlock:      info.OpenBlock,
			Balance:        prevSideband.Balance,
			Modified:       l.clock.Unix(),
			BlockCount:     info.BlockCount - 1,
			Epoch:          prevSideband.Details.Epoch,
		})
		if err != nil {
			return err
		}
		if err := tx.SetSuccessor(previous, ids.Empty); err != nil {
			return err
		}
		added = &weightChange{rep: prevSideband.Representative, amount: prevSideband.Balance}
	}
	if err := l.moveWeight(tx, removed, added); err != nil {
		return err
	}
	if err := tx.DeleteBlock(hash); err != nil {
		return err
	}
	tx.OnCommit(func() {
		l.blockCount.Add(^uint64(0))
	})
	*rolledBack = append(*rolledBack, blk)
	return nil
}

// rollbackReceiver rolls back [destination] until the pending entry created
// by [send] is back, then removes it.
func (l *Ledger) rollbackReceiver(
	tx *state.WriteTx,
	destination block.Account,
	send ids.ID,
	rolledBack *[]block.Block,
) error {
	key := state.PendingKey{Account: destination, Hash: send}
	for {
		_, err := tx.Pending(key)
		if err == nil {
			return tx.DeletePending(key)
		}
		if !errors.Is(err, database.ErrNotFound) {
			return err
		}
		if err := l.rollbackHead(tx, destination, rolledBack); err != nil {
			return fmt.Errorf("rolling back receiver of %s: %w", send, err)
		}
	}
}
