package aggregate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func newMultiDim(t *testing.T) *MultiDimAggregator {
	t.Helper()
	m, err := NewMultiDimAggregator(WindowConfig{Kind: Tumbling, SizeMs: 1000, MaxWindows: 10}, nil, 0)
	require.NoError(t, err)
	return m
}

// TestMultiDimAggregator_Isolation verifies invariant 12.
func TestMultiDimAggregator_Isolation(t *testing.T) {
	m := newMultiDim(t)
	m.Add(Sample{Timestamp: 0, Value: 1, Tags: map[string]string{"device": "a"}})
	m.Add(Sample{Timestamp: 0, Value: 2, Tags: map[string]string{"device": "a"}})
	m.Add(Sample{Timestamp: 0, Value: 3, Tags: map[string]string{"device": "b"}})

	require.Len(t, m.Keys(), 2)

	a, ok := m.Get(NewTagKey(map[string]string{"device": "a"}))
	require.True(t, ok)
	require.EqualValues(t, 2, a.Count)

	b, ok := m.Get(NewTagKey(map[string]string{"device": "b"}))
	require.True(t, ok)
	require.EqualValues(t, 1, b.Count)
}

func TestMultiDimAggregator_GetMissingKey(t *testing.T) {
	m := newMultiDim(t)
	_, ok := m.Get(NewTagKey(map[string]string{"device": "missing"}))
	require.False(t, ok)
}

// TestMultiDimAggregator_AddBatchConcurrentIsolation verifies invariant
// 14: fanning a batch out across a worker pool never drops a sample.
func TestMultiDimAggregator_AddBatchConcurrentIsolation(t *testing.T) {
	m := newMultiDim(t)

	const keys = 8
	const perKey = 200
	samples := make([]Sample, 0, keys*perKey)
	for k := 0; k < keys; k++ {
		for i := 0; i < perKey; i++ {
			samples = append(samples, Sample{
				Timestamp: int64(i),
				Value:     float64(i),
				Tags:      map[string]string{"device": fmt.Sprintf("d%d", k)},
			})
		}
	}

	m.AddBatchWithWorkers(samples, 4)

	require.Len(t, m.Keys(), keys)
	var total int64
	for _, results := range m.All() {
		for _, r := range results {
			total += r.Count
		}
	}
	require.EqualValues(t, keys*perKey, total)
}

func TestMultiDimAggregator_Reset(t *testing.T) {
	m := newMultiDim(t)
	m.Add(Sample{Timestamp: 0, Value: 1, Tags: map[string]string{"device": "a"}})
	m.Reset()
	require.Empty(t, m.Keys())
	require.EqualValues(t, 0, m.Stats().TrackedKeys)
}

func TestMultiDimAggregator_Observer(t *testing.T) {
	m := newMultiDim(t)
	var seen []Sample
	m.WithObserver(func(s Sample) { seen = append(seen, s) })

	m.Add(Sample{Timestamp: 0, Value: 1, Tags: map[string]string{"device": "a"}})
	m.Add(Sample{Timestamp: 1, Value: 2, Tags: map[string]string{"device": "a"}})

	require.Len(t, seen, 2)
}

func TestMultiDimAggregator_SampleIDAssignedOnIngest(t *testing.T) {
	m := newMultiDim(t)
	var seen []Sample
	m.WithObserver(func(s Sample) { seen = append(seen, s) })

	m.Add(Sample{Timestamp: 0, Value: 1, Tags: map[string]string{"device": "a"}, SampleID: 999})
	m.Add(Sample{Timestamp: 1, Value: 2, Tags: map[string]string{"device": "a"}})

	require.Len(t, seen, 2)
	require.EqualValues(t, 1, seen[0].SampleID) // caller-supplied SampleID is ignored
	require.EqualValues(t, 2, seen[1].SampleID)
}

func TestMultiDimAggregator_Stats(t *testing.T) {
	m := newMultiDim(t)
	m.Add(Sample{Timestamp: 0, Value: 1, Tags: map[string]string{"device": "a"}})
	m.Add(Sample{Timestamp: 0, Value: 2, Tags: map[string]string{"device": "b"}})

	stats := m.Stats()
	require.Equal(t, 2, stats.TrackedKeys)
	require.EqualValues(t, 2, stats.TotalSamples)
}

func TestMultiDimAggregator_StatsOldestWindowStart(t *testing.T) {
	m := newMultiDim(t)
	m.Add(Sample{Timestamp: 500, Value: 1, Tags: map[string]string{"device": "a"}})
	m.Add(Sample{Timestamp: 2500, Value: 2, Tags: map[string]string{"device": "b"}})

	stats := m.Stats()
	require.EqualValues(t, 0, stats.OldestWindowStart) // floor(500/1000)*1000
}

func TestMultiDimAggregator_StatsEmptyHasNoOldestWindow(t *testing.T) {
	m := newMultiDim(t)
	stats := m.Stats()
	require.EqualValues(t, 0, stats.OldestWindowStart)
}

func TestMultiDimAggregator_InvalidConfig(t *testing.T) {
	_, err := NewMultiDimAggregator(WindowConfig{Kind: Tumbling, SizeMs: 0, MaxWindows: 1}, nil, 0)
	require.Error(t, err)
}
