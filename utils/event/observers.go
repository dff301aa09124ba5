// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package event provides typed observer lists used to fan component events
// out to their subscribers.
package event

import "sync"

// Observers is a list of callbacks invoked in registration order. Callbacks
// run on the notifying goroutine.
type Observers[T any] struct {
	lock      sync.RWMutex
	observers []func(T)
}

// Add registers [f] to be invoked on every Notify.
func (o *Observers[T]) Add(f func(T)) {
	o.lock.Lock()
	defer o.lock.Unlock()

	o.observers = append(o.observers, f)
}

// Notify invokes every registered callback with [v].
func (o *Observers[T]) Notify(v T) {
	o.lock.RLock()
	observers := o.observers
	o.lock.RUnlock()

	for _, f := range observers {
		f(v)
	}
}

// Empty reports whether no callbacks are registered.
func (o *Observers[T]) Empty() bool {
	o.lock.RLock()
	defer o.lock.RUnlock()

	return len(o.observers) == 0
}
