package signal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewProcessor_RoundsFFTSizeUpToPowerOfTwo(t *testing.T) {
	p, err := NewProcessor(1000, 100)
	require.NoError(t, err)
	require.Equal(t, 128, p.FFTSize())
}

func TestNewProcessor_DefaultsFFTSize(t *testing.T) {
	p, err := NewProcessor(1000, 0)
	require.NoError(t, err)
	require.Equal(t, defaultFFTSize, p.FFTSize())
}

func TestNewProcessor_InvalidSampleRate(t *testing.T) {
	_, err := NewProcessor(0, 1024)
	require.Error(t, err)
	_, err = NewProcessor(-10, 1024)
	require.Error(t, err)
}
