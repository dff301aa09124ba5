// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scheduler

import "github.com/luxfi/metric"

type metrics struct {
	activated metric.Counter
	started   metric.Counter
	queued    metric.Gauge
}

func newMetrics(registry metric.Registry) *metrics {
	metricsInstance := metric.NewWithRegistry("priority_scheduler", registry)
	return &metrics{
		activated: metricsInstance.NewCounter(
			"activated",
			"number of blocks queued in a bucket",
		),
		started: metricsInstance.NewCounter(
			"started",
			"number of elections started from a bucket",
		),
		queued: metricsInstance.NewGauge(
			"queued",
			"number of blocks waiting in buckets",
		),
	}
}
