// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package event

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObserversNotifyInOrder(t *testing.T) {
	require := require.New(t)

	var (
		o   Observers[int]
		got []int
	)
	require.True(o.Empty())

	o.Add(func(v int) { got = append(got, v) })
	o.Add(func(v int) { got = append(got, v*10) })
	require.False(o.Empty())

	o.Notify(2)
	o.Notify(3)
	require.Equal([]int{2, 20, 3, 30}, got)
}
