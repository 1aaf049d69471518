package aggregate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestStreamAggregator_SlidingEviction verifies invariant 7.
func TestStreamAggregator_SlidingEviction(t *testing.T) {
	sa, err := NewStreamAggregator(1000, 500)
	require.NoError(t, err)

	for tt := 0; tt < 10; tt++ {
		sa.Process(int64(tt*100), float64(tt))
	}

	require.Greater(t, sa.BufferSize(), 0)
}

func TestStreamAggregator_FirstCallNeverEmits(t *testing.T) {
	sa, err := NewStreamAggregator(1000, 500)
	require.NoError(t, err)
	_, emitted := sa.Process(0, 1)
	require.False(t, emitted)
}

func TestStreamAggregator_EmitsOnSlideBoundary(t *testing.T) {
	sa, err := NewStreamAggregator(1000, 500)
	require.NoError(t, err)

	sa.Process(0, 1)
	_, emitted := sa.Process(400, 2)
	require.False(t, emitted)

	r, emitted := sa.Process(500, 3)
	require.True(t, emitted)
	require.EqualValues(t, 3, r.Count)
}

func TestStreamAggregator_EvictsOutOfRange(t *testing.T) {
	sa, err := NewStreamAggregator(100, 50)
	require.NoError(t, err)

	sa.Process(0, 1)
	sa.Process(50, 2)
	sa.Process(250, 3) // 0 and 50 fall outside [150, 250]

	require.Equal(t, 1, sa.BufferSize())
}

func TestStreamAggregator_Flush(t *testing.T) {
	sa, err := NewStreamAggregator(1000, 500)
	require.NoError(t, err)
	sa.Process(0, 1)
	sa.Process(100, 2)

	r := sa.Flush()
	require.EqualValues(t, 2, r.Count)
	require.Equal(t, 0, sa.BufferSize())

	_, emitted := sa.Process(0, 1)
	require.False(t, emitted) // fresh window: first call never emits
}

func TestStreamAggregator_InvalidConfig(t *testing.T) {
	_, err := NewStreamAggregator(0, 100)
	require.Error(t, err)
	_, err = NewStreamAggregator(100, 0)
	require.Error(t, err)
}
