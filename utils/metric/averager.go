// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utilmetric

import "github.com/luxfi/metric"

// Averager exports a count and a sum so the mean can be derived by the
// scraper.
type Averager interface {
	Observe(float64)
}

type averager struct {
	count metric.Counter
	sum   metric.Gauge
}

func NewAverager(namespace, name, desc string, registry metric.Registry) Averager {
	metricsInstance := metric.NewWithRegistry(namespace, registry)
	return &averager{
		count: metricsInstance.NewCounter(
			name+"_count",
			"Total # of observations of "+desc,
		),
		sum: metricsInstance.NewGauge(
			name+"_sum",
			"Sum of "+desc,
		),
	}
}

func (a *averager) Observe(v float64) {
	a.count.Inc()
	a.sum.Add(v)
}
