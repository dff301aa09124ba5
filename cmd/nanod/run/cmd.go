// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/luxfi/database/badgerdb"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/nano/network"
	"github.com/luxfi/nano/node"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "run",
		Short: "Runs a node against an on-disk ledger",
		RunE:  runFunc,
	}
	flags := c.Flags()
	AddFlags(flags)
	return c
}

func runFunc(c *cobra.Command, args []string) error {
	flags := c.Flags()
	config, err := ParseFlags(flags, args)
	if err != nil {
		return err
	}

	logger := log.NewLogger("nanod")
	db, err := badgerdb.New(
		config.DataDir,
		nil, // configBytes - use default
		"",  // namespace
		nil, // metrics
	)
	if err != nil {
		return err
	}

	// Peer transport is supplied by the embedding process; standalone the
	// node only serves its own ledger.
	n, err := node.New(config.Node, db, network.StaticPeers{}, nil, metric.NewRegistry(), logger)
	if err != nil {
		return errors.Join(err, db.Close())
	}

	ctx, cancel := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	n.Start(ctx)
	<-ctx.Done()
	logger.Info("shutting down")
	return n.Stop()
}
