// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package processor

import "time"

var DefaultConfig = Config{
	MaxPeerQueue:      128,
	MaxSystemQueue:    16 * 1024,
	PriorityLive:      1,
	PriorityBootstrap: 8,
	PriorityLocal:     16,
	BatchSize:         256,
	MaxBatchTime:      500 * time.Millisecond,
	UncheckedSize:     64 * 1024,
}

type Config struct {
	// MaxPeerQueue bounds the live queue.
	MaxPeerQueue int `json:"max-peer-queue"`
	// MaxSystemQueue bounds the bootstrap, local and forced queues.
	MaxSystemQueue    int           `json:"max-system-queue"`
	PriorityLive      int           `json:"priority-live"`
	PriorityBootstrap int           `json:"priority-bootstrap"`
	PriorityLocal     int           `json:"priority-local"`
	BatchSize         int           `json:"batch-size"`
	MaxBatchTime      time.Duration `json:"max-batch-time"`
	UncheckedSize     int           `json:"unchecked-size"`
}

func (c *Config) queueSizes() [numSources]int {
	return [numSources]int{
		Live:            c.MaxPeerQueue,
		Bootstrap:       c.MaxSystemQueue,
		BootstrapLegacy: c.MaxSystemQueue,
		Local:           c.MaxSystemQueue,
		Forced:          c.MaxSystemQueue,
	}
}

func (c *Config) priorities() [numSources]int {
	return [numSources]int{
		Live:            c.PriorityLive,
		Bootstrap:       c.PriorityBootstrap,
		BootstrapLegacy: c.PriorityBootstrap,
		Local:           c.PriorityLocal,
		Forced:          c.PriorityLocal,
	}
}
