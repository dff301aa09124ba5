// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"fmt"

	"github.com/luxfi/ids"

	"github.com/luxfi/nano/block"
	"github.com/luxfi/nano/state"
)

// Confirm cements [target] together with every uncemented block it depends
// on, dependencies first. At most [limit] blocks are cemented when [limit] is
// positive; callers detect an unfinished target with BlockConfirmed.
//
// A missing dependency is a broken invariant and panics.
func (l *Ledger) Confirm(tx *state.WriteTx, target ids.ID, limit int) ([]block.Block, error) {
	var (
		stack    = []ids.ID{target}
		cemented []block.Block
	)
	for len(stack) > 0 && (limit <= 0 || len(cemented) < limit) {
		hash := stack[len(stack)-1]
		blk, sideband := mustBlock(tx, hash)
		info, err := tx.ConfirmationHeight(sideband.Account)
		if err != nil {
			return cemented, err
		}
		if info.Height >= sideband.Height {
			stack = stack[:len(stack)-1]
			continue
		}

		blocked := false
		for _, dependent := range Dependents(blk, sideband) {
			if dependent == ids.Empty {
				continue
			}
			_, dependentSideband := mustBlock(tx, dependent)
			dependentInfo, err := tx.ConfirmationHeight(dependentSideband.Account)
			if err != nil {
				return cemented, err
			}
			if dependentInfo.Height < dependentSideband.Height {
				stack = append(stack, dependent)
				blocked = true
			}
		}
		if blocked {
			continue
		}

		stack = stack[:len(stack)-1]
		err = tx.PutConfirmationHeight(sideband.Account, state.ConfirmationHeightInfo{
			Height:   sideband.Height,
			Frontier: hash,
		})
		if err != nil {
			return cemented, err
		}
		cemented = append(cemented, blk)
	}

	count := uint64(len(cemented))
	tx.OnCommit(func() {
		l.cementedCount.Add(count)
	})
	return cemented, nil
}

func mustBlock(tx state.Reader, hash ids.ID) (block.Block, *block.Sideband) {
	blk, sideband, err := tx.Block(hash)
	if err != nil {
		panic(fmt.Sprintf("cementing dependency %s: %v", hash, err))
	}
	return blk, sideband
}
