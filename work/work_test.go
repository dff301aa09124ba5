// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package work_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ids"
	"github.com/luxfi/nano/block"
	"github.com/luxfi/nano/work"
	"github.com/luxfi/nano/work/worktest"
)

func TestThresholdByDetails(t *testing.T) {
	v := work.NewValidator(work.DefaultThresholds)

	tests := []struct {
		name     string
		details  block.Details
		expected uint64
	}{
		{
			name:     "epoch 0 send",
			details:  block.Details{Epoch: block.Epoch0, IsSend: true},
			expected: 0xffffffc000000000,
		},
		{
			name:     "epoch 1 receive",
			details:  block.Details{Epoch: block.Epoch1, IsReceive: true},
			expected: 0xffffffc000000000,
		},
		{
			name:     "epoch 2 send",
			details:  block.Details{Epoch: block.Epoch2, IsSend: true},
			expected: 0xfffffff800000000,
		},
		{
			name:     "epoch 2 change",
			details:  block.Details{Epoch: block.Epoch2},
			expected: 0xfffffff800000000,
		},
		{
			name:     "epoch 2 receive",
			details:  block.Details{Epoch: block.Epoch2, IsReceive: true},
			expected: 0xfffffe0000000000,
		},
		{
			name:     "epoch 2 upgrade",
			details:  block.Details{Epoch: block.Epoch2, IsEpoch: true},
			expected: 0xfffffe0000000000,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, v.Threshold(test.details))
		})
	}
	require.Equal(t, uint64(0xfffffe0000000000), v.Entry())
}

func TestSolveValidates(t *testing.T) {
	require := require.New(t)

	v := work.NewValidator(work.DevThresholds)
	root := ids.GenerateTestID()
	details := block.Details{Epoch: block.Epoch2, IsSend: true}

	nonce := worktest.Solve(root, v.Threshold(details))
	require.True(v.Validate(root, nonce))
	require.True(v.ValidateDetails(root, nonce, details))
	require.GreaterOrEqual(work.Value(root, nonce), v.Threshold(details))
}

func TestValueDependsOnRoot(t *testing.T) {
	require := require.New(t)

	a := work.Value(ids.ID{1}, 42)
	b := work.Value(ids.ID{2}, 42)
	require.NotEqual(a, b)
	require.Equal(a, work.Value(ids.ID{1}, 42))
}
