// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package genesis writes a fresh genesis key and the node configuration it
// funds. Files are replaced atomically.
package genesis

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/luxfi/nano/block"
	"github.com/luxfi/nano/config"
	"github.com/luxfi/nano/ledger"
	"github.com/luxfi/nano/work"

	safemath "github.com/luxfi/nano/utils/math"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "genesis",
		Short: "Creates a genesis key and a node configuration funded by it",
		RunE:  genesisFunc,
	}
	flags := c.Flags()
	AddFlags(flags)
	return c
}

func genesisFunc(c *cobra.Command, args []string) error {
	flags := c.Flags()
	cmdConfig, err := ParseFlags(flags, args)
	if err != nil {
		return err
	}

	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return err
	}
	nodeConfig, err := New(key, cmdConfig.Dev)
	if err != nil {
		return err
	}

	configBytes, err := json.MarshalIndent(nodeConfig, "", "  ")
	if err != nil {
		return err
	}
	if err := write(cmdConfig.Out, configBytes); err != nil {
		return err
	}
	if err := write(cmdConfig.KeyOut, []byte(hex.EncodeToString(key))); err != nil {
		return err
	}

	fmt.Fprintf(c.OutOrStdout(), "genesis account %s\n", nodeConfig.Genesis.Account())
	return nil
}

// New returns the default configuration with the full supply credited to
// [key], which also signs both epoch upgrades.
func New(key ed25519.PrivateKey, dev bool) (*config.Config, error) {
	genesis, err := ledger.NewGenesis(key, safemath.MaxAmount)
	if err != nil {
		return nil, err
	}

	c := config.Default
	c.Genesis = genesis
	c.Epochs = []config.EpochSigner{
		{Epoch: block.Epoch1, Signer: genesis.Account()},
		{Epoch: block.Epoch2, Signer: genesis.Account()},
	}
	if dev {
		c.Work = work.DevThresholds
	}
	return &c, c.Verify()
}

func write(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return renameio.WriteFile(path, b, 0o600)
}
