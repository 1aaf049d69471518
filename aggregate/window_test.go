package aggregate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTumbling(t *testing.T, sizeMs int64, maxWindows int) *WindowedAggregator {
	t.Helper()
	wa, err := NewWindowedAggregator(WindowConfig{Kind: Tumbling, SizeMs: sizeMs, MaxWindows: maxWindows}, nil, 0)
	require.NoError(t, err)
	return wa
}

// TestWindowedAggregator_TumblingDisjointness verifies invariant 6.
func TestWindowedAggregator_TumblingDisjointness(t *testing.T) {
	wa := newTumbling(t, 1000, 10)
	wa.Add(100, 1)
	wa.Add(200, 2)
	wa.Add(1100, 3)

	all := wa.All()
	require.Len(t, all, 2)
	require.EqualValues(t, 0, all[0].WindowStart)
	require.EqualValues(t, 2, all[0].Count)
	require.EqualValues(t, 1000, all[1].WindowStart)
	require.EqualValues(t, 1, all[1].Count)
}

// TestWindowedAggregator_ScenarioA matches spec.md Scenario A.
func TestWindowedAggregator_ScenarioA(t *testing.T) {
	wa := newTumbling(t, 1000, 10)
	wa.Add(100, 1.0)
	wa.Add(200, 2.0)
	wa.Add(300, 3.0)

	cur, ok := wa.Current()
	require.True(t, ok)
	require.EqualValues(t, 0, cur.WindowStart)
	require.EqualValues(t, 1000, cur.WindowEnd)
	require.EqualValues(t, 3, cur.Count)
	require.InDelta(t, 2.0, cur.Mean, 1e-9)
	require.Equal(t, 1.0, cur.Min)
	require.Equal(t, 3.0, cur.Max)
	require.InDelta(t, 1.0, cur.Variance, 1e-9)
}

func TestWindowedAggregator_Eviction(t *testing.T) {
	wa := newTumbling(t, 1000, 2) // retain at most 2*1000ms behind the latest
	wa.Add(0, 1)
	wa.Add(1000, 2)
	wa.Add(2000, 3)
	wa.Add(5000, 4) // far ahead: earlier windows should be evicted

	all := wa.All()
	for _, r := range all {
		require.GreaterOrEqual(t, r.WindowStart, int64(5000-2*1000))
	}
}

func TestWindowedAggregator_Range(t *testing.T) {
	wa := newTumbling(t, 1000, 10)
	wa.Add(100, 1)
	wa.Add(1100, 2)
	wa.Add(2100, 3)

	r := wa.Range(1000, 2000)
	require.Len(t, r, 1)
	require.EqualValues(t, 1000, r[0].WindowStart)
}

func TestWindowedAggregator_InvalidConfig(t *testing.T) {
	_, err := NewWindowedAggregator(WindowConfig{Kind: Tumbling, SizeMs: 0, MaxWindows: 1}, nil, 0)
	require.Error(t, err)

	_, err = NewWindowedAggregator(WindowConfig{Kind: Sliding, SizeMs: 1000, SlideMs: 0, MaxWindows: 1}, nil, 0)
	require.Error(t, err)

	_, err = NewWindowedAggregator(WindowConfig{Kind: Session, SessionGapMs: 0, MaxWindows: 1}, nil, 0)
	require.Error(t, err)
}

func TestWindowedAggregator_Session(t *testing.T) {
	wa, err := NewWindowedAggregator(WindowConfig{Kind: Session, SessionGapMs: 500, MaxWindows: 10}, nil, 0)
	require.NoError(t, err)

	wa.Add(0, 1)
	wa.Add(200, 2)   // within gap: same session
	wa.Add(1000, 3)  // gap of 800ms > 500ms: new session

	all := wa.All()
	require.Len(t, all, 2)
	require.EqualValues(t, 2, all[0].Count)
	require.EqualValues(t, 1, all[1].Count)
}

func TestWindowedAggregator_Percentiles(t *testing.T) {
	wa, err := NewWindowedAggregator(WindowConfig{Kind: Tumbling, SizeMs: 10000, MaxWindows: 10}, []uint8{50, 90}, 100)
	require.NoError(t, err)
	for i := 1; i <= 100; i++ {
		wa.Add(int64(i), float64(i))
	}
	cur, ok := wa.Current()
	require.True(t, ok)
	require.InDelta(t, 50.5, cur.Percentiles[50], 5)
	require.InDelta(t, 90.5, cur.Percentiles[90], 5)
	require.Len(t, cur.AggregationKinds, 9) // 7 base reducers + 2 percentile kinds
}

func TestWindowedAggregator_Reset(t *testing.T) {
	wa := newTumbling(t, 1000, 10)
	wa.Add(0, 1)
	wa.Reset()
	require.Empty(t, wa.All())
	_, ok := wa.Current()
	require.False(t, ok)
}
