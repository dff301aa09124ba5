// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"github.com/spf13/pflag"

	"github.com/luxfi/nano/utils"
)

const (
	OutKey    = "out"
	KeyOutKey = "key-out"
	DevKey    = "dev"
)

func AddFlags(flags *pflag.FlagSet) {
	flags.String(OutKey, "~/.nanod/config.json", "Where to write the node configuration")
	flags.String(KeyOutKey, "~/.nanod/genesis.key", "Where to write the hex encoded genesis private key")
	flags.Bool(DevKey, false, "Use work thresholds cheap enough for local testing")
}

type Config struct {
	Out    string
	KeyOut string
	Dev    bool
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	out, err := flags.GetString(OutKey)
	if err != nil {
		return nil, err
	}

	keyOut, err := flags.GetString(KeyOutKey)
	if err != nil {
		return nil, err
	}

	dev, err := flags.GetBool(DevKey)
	if err != nil {
		return nil, err
	}

	return &Config{
		Out:    utils.ExpandHome(out),
		KeyOut: utils.ExpandHome(keyOut),
		Dev:    dev,
	}, nil
}
