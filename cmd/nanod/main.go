// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/nano/cmd/nanod/genesis"
	"github.com/luxfi/nano/cmd/nanod/run"
)

func main() {
	cmd := &cobra.Command{
		Use:   "nanod",
		Short: "Runs and configures a block-lattice node",
	}
	cmd.AddCommand(
		run.Command(),
		genesis.Command(),
	)
	cmd.SilenceUsage = true
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "command failed %v\n", err)
		os.Exit(1)
	}
}
