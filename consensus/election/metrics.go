// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package election

import "github.com/luxfi/metric"

type metrics struct {
	started metric.CounterVec
	stopped metric.CounterVec
	active  metric.Gauge
	cached  metric.Gauge
}

func newMetrics(registry metric.Registry) *metrics {
	metricsInstance := metric.NewWithRegistry("active_elections", registry)
	return &metrics{
		started: metricsInstance.NewCounterVec(
			"started",
			"number of elections started, by behavior",
			[]string{"behavior"},
		),
		stopped: metricsInstance.NewCounterVec(
			"stopped",
			"number of elections removed, by final state",
			[]string{"state"},
		),
		active: metricsInstance.NewGauge(
			"active",
			"number of elections in the container",
		),
		cached: metricsInstance.NewGauge(
			"cached_votes",
			"number of blocks with votes waiting for an election",
		),
	}
}
