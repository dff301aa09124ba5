// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/luxfi/nano/block"
	"github.com/luxfi/nano/cementing"
	"github.com/luxfi/nano/consensus/election"
	"github.com/luxfi/nano/consensus/online"
	"github.com/luxfi/nano/consensus/scheduler"
	"github.com/luxfi/nano/consensus/vote"
	"github.com/luxfi/nano/ledger"
	"github.com/luxfi/nano/processor"
	"github.com/luxfi/nano/work"
)

var (
	errNoGenesis          = errors.New("genesis is required")
	errInvalidQuorum      = errors.New("quorum percent must be in (0, 100]")
	errInvalidBatchSize   = errors.New("batch size must be positive")
	errInvalidQueueSize   = errors.New("queue size must be positive")
	errInvalidElections   = errors.New("election limits are inconsistent")
	errInvalidInterval    = errors.New("interval must be positive")
	errDuplicateEpoch     = errors.New("epoch signer configured twice")
	errUnsupportedEpoch   = errors.New("unsupported epoch")
	errInvalidFanout      = errors.New("fanout must not be negative")
	errInvalidWorkerCount = errors.New("verify workers must be positive")
)

var Default = Config{
	Work:      work.DefaultThresholds,
	Processor: processor.DefaultConfig,
	Elections: election.DefaultConfig,
	Votes:     vote.DefaultConfig,
	Online:    online.DefaultConfig,
	Scheduler: scheduler.DefaultConfig,
	Cementing: cementing.DefaultConfig,
	Network: NetworkConfig{
		Fanout: 8,
	},
}

// Config contains all of the user-configurable parameters of a node.
type Config struct {
	Genesis *ledger.Genesis `json:"genesis"`
	// Epochs lists the accounts allowed to sign each epoch upgrade.
	Epochs []EpochSigner `json:"epochs"`

	Work      work.Thresholds  `json:"work"`
	Processor processor.Config `json:"processor"`
	Elections election.Config  `json:"elections"`
	Votes     vote.Config      `json:"votes"`
	Online    online.Config    `json:"online"`
	Scheduler scheduler.Config `json:"scheduler"`
	Cementing cementing.Config `json:"cementing"`
	Network   NetworkConfig    `json:"network"`
}

type EpochSigner struct {
	Epoch  block.Epoch   `json:"epoch"`
	Signer block.Account `json:"signer"`
}

type NetworkConfig struct {
	// Fanout is the number of peers a block or request is flooded to. Zero
	// floods to every peer.
	Fanout int `json:"fanout"`
}

// GetConfig returns a Config from the provided json encoded bytes. If a
// configuration is not provided in the bytes, the default value is set. If
// empty bytes are provided, the default config is returned.
func GetConfig(b []byte) (*Config, error) {
	ec := Default

	// An empty slice is invalid json, so handle that as a special case.
	if len(b) == 0 {
		return &ec, nil
	}

	return &ec, json.Unmarshal(b, &ec)
}

// LedgerEpochs builds the epoch signer table.
func (c *Config) LedgerEpochs() *ledger.Epochs {
	epochs := ledger.NewEpochs()
	for _, e := range c.Epochs {
		epochs.Add(e.Epoch, e.Signer)
	}
	return epochs
}

// Verify returns an error describing the first invalid parameter.
func (c *Config) Verify() error {
	switch {
	case c.Genesis == nil:
		return errNoGenesis
	case c.Online.QuorumPercent == 0 || c.Online.QuorumPercent > 100:
		return fmt.Errorf("%w: %d", errInvalidQuorum, c.Online.QuorumPercent)
	case c.Processor.BatchSize <= 0:
		return fmt.Errorf("processor: %w", errInvalidBatchSize)
	case c.Votes.BatchSize <= 0:
		return fmt.Errorf("votes: %w", errInvalidBatchSize)
	case c.Cementing.BatchSize <= 0:
		return fmt.Errorf("cementing: %w", errInvalidBatchSize)
	case c.Processor.MaxPeerQueue <= 0 || c.Processor.MaxSystemQueue <= 0:
		return fmt.Errorf("processor: %w", errInvalidQueueSize)
	case c.Votes.MaxRepQueue <= 0 || c.Votes.MaxNonRepQueue <= 0:
		return fmt.Errorf("votes: %w", errInvalidQueueSize)
	case c.Cementing.MaxQueue <= 0:
		return fmt.Errorf("cementing: %w", errInvalidQueueSize)
	case c.Votes.VerifyWorkers <= 0:
		return errInvalidWorkerCount
	case c.Elections.Size <= 0:
		return fmt.Errorf("%w: size %d", errInvalidElections, c.Elections.Size)
	case c.Scheduler.Bucket.ReservedElections > c.Scheduler.Bucket.MaxElections:
		return fmt.Errorf("%w: reserved %d > max %d",
			errInvalidElections,
			c.Scheduler.Bucket.ReservedElections,
			c.Scheduler.Bucket.MaxElections,
		)
	case c.Elections.TickInterval <= 0 || c.Online.SampleInterval <= 0 || c.Scheduler.RetryInterval <= 0:
		return errInvalidInterval
	case c.Network.Fanout < 0:
		return errInvalidFanout
	}

	seen := make(map[block.Epoch]bool, len(c.Epochs))
	for _, e := range c.Epochs {
		if e.Epoch != block.Epoch1 && e.Epoch != block.Epoch2 {
			return fmt.Errorf("%w: %s", errUnsupportedEpoch, e.Epoch)
		}
		if seen[e.Epoch] {
			return fmt.Errorf("%w: %s", errDuplicateEpoch, e.Epoch)
		}
		seen[e.Epoch] = true
	}
	return nil
}
