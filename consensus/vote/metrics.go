// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vote

import (
	"github.com/luxfi/metric"

	utilmetric "github.com/luxfi/nano/utils/metric"
)

type metrics struct {
	processed metric.CounterVec
	dropped   metric.CounterVec
	batchTime utilmetric.Averager
}

func newMetrics(registry metric.Registry) *metrics {
	metricsInstance := metric.NewWithRegistry("vote_processor", registry)
	return &metrics{
		processed: metricsInstance.NewCounterVec(
			"processed",
			"number of vote hashes processed, by outcome",
			[]string{"code"},
		),
		dropped: metricsInstance.NewCounterVec(
			"dropped",
			"number of votes dropped before verification, by tier",
			[]string{"tier"},
		),
		batchTime: utilmetric.NewAverager(
			"vote_processor",
			"batch_duration",
			"time (in ns) spent verifying and routing a batch",
			registry,
		),
	}
}
