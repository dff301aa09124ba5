// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package network encodes election traffic and connects it to the block
// processor and the vote processor.
package network

import "github.com/luxfi/metric"

// Metrics is shared by the Flooder and the Handler.
type Metrics struct {
	sent       metric.CounterVec
	sendFailed metric.CounterVec
	received   metric.CounterVec
	dropped    metric.CounterVec
	malformed  metric.Counter
}

func NewMetrics(registry metric.Registry) *Metrics {
	metricsInstance := metric.NewWithRegistry("network", registry)
	return &Metrics{
		sent: metricsInstance.NewCounterVec(
			"sent",
			"number of messages sent, by type",
			[]string{"op"},
		),
		sendFailed: metricsInstance.NewCounterVec(
			"send_failed",
			"number of messages a channel refused, by type",
			[]string{"op"},
		),
		received: metricsInstance.NewCounterVec(
			"received",
			"number of messages received, by type",
			[]string{"op"},
		),
		dropped: metricsInstance.NewCounterVec(
			"dropped",
			"number of received messages dropped by a full queue, by type",
			[]string{"op"},
		),
		malformed: metricsInstance.NewCounter(
			"malformed",
			"number of received messages that could not be decoded",
		),
	}
}
