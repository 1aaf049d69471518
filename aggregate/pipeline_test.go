package aggregate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleSeq() []Sample {
	return []Sample{
		{Timestamp: 0, Value: 1, Tags: map[string]string{"device": "a"}},
		{Timestamp: 100, Value: 2, Tags: map[string]string{"device": "a"}},
		{Timestamp: 200, Value: -1, Tags: map[string]string{"device": "b"}},
		{Timestamp: 300, Value: 4, Tags: map[string]string{"device": "b"}},
	}
}

func TestPipeline_FilterThenAggregate(t *testing.T) {
	results, err := NewPipeline().
		Filter(func(s Sample) bool { return s.Value > 0 }).
		Aggregate().
		Execute(sampleSeq())

	require.NoError(t, err)
	require.Len(t, results, 1)
	require.EqualValues(t, 3, results[0].Count)
}

func TestPipeline_MapThenAggregate(t *testing.T) {
	results, err := NewPipeline().
		Map(func(s Sample) Sample { s.Value *= 2; return s }).
		Aggregate().
		Execute(sampleSeq())

	require.NoError(t, err)
	require.Len(t, results, 1)
	require.InDelta(t, 12, results[0].Sum, 1e-9) // (1-1+2+4)*2 = 12
}

func TestPipeline_GroupByConcatenatesInKeyOrder(t *testing.T) {
	results, err := NewPipeline().
		GroupBy(func(s Sample) string { return s.Tags["device"] }).
		Aggregate().
		Execute(sampleSeq())

	require.NoError(t, err)
	require.Len(t, results, 2)
	require.EqualValues(t, 2, results[0].Count) // device "a" sorts first
	require.EqualValues(t, 2, results[1].Count) // device "b"
}

func TestPipeline_Window(t *testing.T) {
	results, err := NewPipeline().
		Window(WindowConfig{Kind: Tumbling, SizeMs: 1000, MaxWindows: 10}).
		Execute(sampleSeq())

	require.NoError(t, err)
	require.Len(t, results, 1)
	require.EqualValues(t, 4, results[0].Count)
}

func TestPipeline_AggregateWithPercentiles(t *testing.T) {
	samples := make([]Sample, 0, 100)
	for i := 1; i <= 100; i++ {
		samples = append(samples, Sample{Timestamp: int64(i), Value: float64(i)})
	}
	results, err := NewPipeline().Aggregate(50, 90).Execute(samples)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.InDelta(t, 50.5, results[0].Percentiles[50], 5)
	require.InDelta(t, 90.5, results[0].Percentiles[90], 5)
}

func TestPipeline_AggregateRejectsInvalidPercentile(t *testing.T) {
	_, err := NewPipeline().Aggregate(150).Execute(sampleSeq())
	require.Error(t, err)
}

func TestPipeline_EmptyInput(t *testing.T) {
	results, err := NewPipeline().Aggregate().Execute(nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.EqualValues(t, 0, results[0].Count)
}
