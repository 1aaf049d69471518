package signal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestAnomalyZScore_Boundary verifies invariant 10.
func TestAnomalyZScore_Boundary(t *testing.T) {
	p := newProcessor(t)
	history := []float64{1, 2, 3, 4, 5, 4, 3, 2, 1, 2}

	notAnomaly := p.DetectAnomalyZScore(history, 3.0, 2.0)
	require.False(t, notAnomaly.IsAnomaly)

	isAnomaly := p.DetectAnomalyZScore(history, 100.0, 2.0)
	require.True(t, isAnomaly.IsAnomaly)
}

// TestAnomalyMAD_ScenarioD matches spec.md Scenario D (mad=0 guarded
// branch: score 0, not anomaly is a conformant outcome).
func TestAnomalyMAD_ScenarioD(t *testing.T) {
	p := newProcessor(t)
	history := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 10}

	notAnomaly := p.DetectAnomalyMAD(history, 1.0, 3.0)
	require.False(t, notAnomaly.IsAnomaly)

	result := p.DetectAnomalyMAD(history, 10.0, 3.0)
	require.False(t, result.IsAnomaly) // mad=0 guarded branch
	require.Equal(t, 0.0, result.Score)
}

func TestAnomalyIQR_Bounds(t *testing.T) {
	p := newProcessor(t)
	history := make([]float64, 0, 100)
	for i := 1; i <= 100; i++ {
		history = append(history, float64(i))
	}

	inBounds := p.DetectAnomalyIQR(history, 50, 1.5)
	require.False(t, inBounds.IsAnomaly)

	outOfBounds := p.DetectAnomalyIQR(history, 1000, 1.5)
	require.True(t, outOfBounds.IsAnomaly)
	require.Greater(t, outOfBounds.Score, 0.0)
}

func TestAnomalyDetectors_EmptyHistoryIsBenign(t *testing.T) {
	p := newProcessor(t)
	require.False(t, p.DetectAnomalyZScore(nil, 5, 2).IsAnomaly)
	require.False(t, p.DetectAnomalyIQR(nil, 5, 1.5).IsAnomaly)
	require.False(t, p.DetectAnomalyMAD(nil, 5, 2).IsAnomaly)
}
