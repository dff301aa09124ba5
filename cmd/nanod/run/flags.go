// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"errors"
	"os"

	"github.com/spf13/pflag"

	"github.com/luxfi/nano/config"
	"github.com/luxfi/nano/utils"
)

const (
	DataDirKey    = "data-dir"
	ConfigFileKey = "config-file"
)

var errNoConfigFile = errors.New("config file does not exist")

func AddFlags(flags *pflag.FlagSet) {
	flags.String(DataDirKey, "~/.nanod/db", "Directory of the on-disk ledger")
	flags.String(ConfigFileKey, "~/.nanod/config.json", "Node configuration, including the genesis (required)")
}

type Config struct {
	DataDir string
	Node    *config.Config
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	dataDir, err := flags.GetString(DataDirKey)
	if err != nil {
		return nil, err
	}

	configFile, err := flags.GetString(ConfigFileKey)
	if err != nil {
		return nil, err
	}
	configFile = utils.ExpandHome(configFile)
	if !utils.FileExists(configFile) {
		return nil, errNoConfigFile
	}

	configBytes, err := os.ReadFile(configFile)
	if err != nil {
		return nil, err
	}
	nodeConfig, err := config.GetConfig(configBytes)
	if err != nil {
		return nil, err
	}

	return &Config{
		DataDir: utils.ExpandHome(dataDir),
		Node:    nodeConfig,
	}, nil
}
