// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package processor

import (
	"github.com/luxfi/metric"

	utilmetric "github.com/luxfi/nano/utils/metric"
)

type metrics struct {
	processed  metric.CounterVec
	overfill   metric.CounterVec
	queued     metric.GaugeVec
	rolledBack metric.Counter
	unchecked  metric.Gauge
	batchTime  utilmetric.Averager
}

func newMetrics(registry metric.Registry) *metrics {
	metricsInstance := metric.NewWithRegistry("block_processor", registry)
	return &metrics{
		processed: metricsInstance.NewCounterVec(
			"processed",
			"number of blocks processed, by result",
			[]string{"result"},
		),
		overfill: metricsInstance.NewCounterVec(
			"overfill",
			"number of blocks dropped because their queue was full",
			[]string{"source"},
		),
		queued: metricsInstance.NewGaugeVec(
			"queued",
			"number of blocks waiting to be processed",
			[]string{"source"},
		),
		rolledBack: metricsInstance.NewCounter(
			"rolled_back",
			"number of blocks rolled back to admit a fork winner",
		),
		unchecked: metricsInstance.NewGauge(
			"unchecked",
			"number of missing blocks that other blocks are waiting for",
		),
		batchTime: utilmetric.NewAverager(
			"block_processor",
			"batch_duration",
			"time (in ns) spent processing a batch",
			registry,
		),
	}
}
