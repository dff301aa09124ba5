// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package election

import "time"

var DefaultConfig = Config{
	Size:                  5000,
	ElectionTimeout:       5 * time.Minute,
	TickInterval:          time.Second,
	ConfirmReqInterval:    5 * time.Second,
	RecentlyConfirmedSize: 64 * 1024,
	VoteCacheSize:         64 * 1024,
}

type Config struct {
	// Size is the number of elections that may run at once. Manual
	// elections are admitted past it.
	Size                  int           `json:"size"`
	ElectionTimeout       time.Duration `json:"election-timeout"`
	TickInterval          time.Duration `json:"tick-interval"`
	ConfirmReqInterval    time.Duration `json:"confirm-req-interval"`
	RecentlyConfirmedSize int           `json:"recently-confirmed-size"`
	VoteCacheSize         int           `json:"vote-cache-size"`
}
