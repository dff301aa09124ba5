// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cementing

import (
	"github.com/luxfi/metric"

	utilmetric "github.com/luxfi/nano/utils/metric"
)

type metrics struct {
	cemented        metric.Counter
	alreadyCemented metric.Counter
	dropped         metric.Counter
	queued          metric.Gauge
	batchTime       utilmetric.Averager
}

func newMetrics(registry metric.Registry) *metrics {
	metricsInstance := metric.NewWithRegistry("confirming_set", registry)
	return &metrics{
		cemented: metricsInstance.NewCounter(
			"cemented",
			"number of blocks cemented",
		),
		alreadyCemented: metricsInstance.NewCounter(
			"already_cemented",
			"number of queued hashes found cemented",
		),
		dropped: metricsInstance.NewCounter(
			"dropped",
			"number of hashes dropped because the queue was full",
		),
		queued: metricsInstance.NewGauge(
			"queued",
			"number of hashes waiting to be cemented",
		),
		batchTime: utilmetric.NewAverager(
			"confirming_set",
			"batch_duration",
			"time (in ns) spent cementing a batch",
			registry,
		),
	}
}
