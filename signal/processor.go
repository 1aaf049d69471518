// Package signal implements time- and frequency-domain analysis over
// buffered blocks of sensor samples: filtering, FFT-based spectral
// analysis, descriptive statistics, anomaly scoring, and feature
// extraction.
package signal

// Processor holds the fixed configuration of the analysis operations
// over a sample block: the sampling rate and a power-of-two FFT size.
// FFTAnalysis sizes its transform from the length of its input, not
// from FFTSize.
type Processor struct {
	sampleRateHz float64
	fftSize      int
}

const defaultFFTSize = 1024

// NewProcessor builds a Processor for the given sample rate. The FFT size
// is rounded up to the next power of two, defaulting to 1024 when zero is
// passed.
func NewProcessor(sampleRateHz float64, fftSize int) (*Processor, error) {
	if sampleRateHz <= 0 {
		return nil, &InvalidSampleRateError{SampleRateHz: sampleRateHz}
	}
	if fftSize <= 0 {
		fftSize = defaultFFTSize
	}
	return &Processor{
		sampleRateHz: sampleRateHz,
		fftSize:      nextPow2(fftSize),
	}, nil
}

// SampleRateHz returns the configured sampling rate.
func (p *Processor) SampleRateHz() float64 { return p.sampleRateHz }

// FFTSize returns the configured (power-of-two) FFT size.
func (p *Processor) FFTSize() int { return p.fftSize }
