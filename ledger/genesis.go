// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/luxfi/nano/block"

	utiljson "github.com/luxfi/nano/utils/json"
)

var (
	errGenesisNotOpen = errors.New("genesis block must be an open block")
	errGenesisAccount = errors.New("genesis account does not match its block")
)

// Genesis is the self-funding open block every ledger starts from. It is
// written directly and cemented; it is never validated.
type Genesis struct {
	Block  *block.OpenBlock
	Amount block.Amount
}

// NewGenesis creates a genesis that credits [amount] to the account of [key].
func NewGenesis(key ed25519.PrivateKey, amount block.Amount) (*Genesis, error) {
	account := block.AccountFromPublicKey(key.Public().(ed25519.PublicKey))
	blk, err := block.NewOpen(account.ID(), account, account, key, 0)
	if err != nil {
		return nil, err
	}
	return &Genesis{
		Block:  blk,
		Amount: amount,
	}, nil
}

func (g *Genesis) Account() block.Account {
	return g.Block.Account
}

type genesisJSON struct {
	Account block.Account   `json:"account"`
	Block   string          `json:"block"`
	Amount  utiljson.Amount `json:"amount"`
}

func (g *Genesis) MarshalJSON() ([]byte, error) {
	return json.Marshal(genesisJSON{
		Account: g.Account(),
		Block:   hex.EncodeToString(g.Block.Bytes()),
		Amount:  utiljson.Amount(g.Amount),
	})
}

func (g *Genesis) UnmarshalJSON(b []byte) error {
	var raw genesisJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	bytes, err := hex.DecodeString(raw.Block)
	if err != nil {
		return err
	}
	blk, err := block.Parse(bytes)
	if err != nil {
		return err
	}
	open, ok := blk.(*block.OpenBlock)
	if !ok {
		return errGenesisNotOpen
	}
	if open.Account != raw.Account {
		return errGenesisAccount
	}
	g.Block = open
	g.Amount = raw.Amount.Int()
	return nil
}
