package signal

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// FFTResult is the single-sided spectrum of a real-valued block.
type FFTResult struct {
	Frequencies      []float64 `json:"frequencies"`
	Magnitudes       []float64 `json:"magnitudes"`
	Phases           []float64 `json:"phases"`
	Power            []float64 `json:"power"`
	DominantFrequency float64  `json:"dominant_frequency"`
	TotalPower       float64   `json:"total_power"`
}

// nextPow2 returns the smallest power of two >= n.
func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// FFTAnalysis zero-pads the block to the next power of two, runs a
// real-to-complex forward transform via gonum's FFT, and reports the
// single-sided spectrum over [0, n/2).
func (p *Processor) FFTAnalysis(samples []float64) (FFTResult, error) {
	if len(samples) == 0 {
		return FFTResult{}, &InsufficientLengthError{Required: 1, Actual: 0}
	}

	n := nextPow2(len(samples))
	padded := make([]float64, n)
	copy(padded, samples)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, padded)

	half := n / 2
	freqs := make([]float64, half)
	mags := make([]float64, half)
	phases := make([]float64, half)
	power := make([]float64, half)

	var totalPower float64
	dominantIdx := 0
	dominantMag := -1.0

	for i := 0; i < half; i++ {
		c := coeffs[i]
		mag := 2 * cmplx.Abs(c) / float64(n)
		mags[i] = mag
		phases[i] = cmplx.Phase(c)
		freqs[i] = float64(i) * p.sampleRateHz / float64(n)
		pw := mag * mag
		power[i] = pw
		totalPower += pw

		if mag > dominantMag {
			dominantMag = mag
			dominantIdx = i
		}
	}

	dominantFreq := 0.0
	if half > 0 {
		dominantFreq = freqs[dominantIdx]
	}

	if math.IsNaN(totalPower) || math.IsInf(totalPower, 0) {
		return FFTResult{}, &NumericalError{Op: "fft total power"}
	}

	return FFTResult{
		Frequencies:       freqs,
		Magnitudes:        mags,
		Phases:            phases,
		Power:             power,
		DominantFrequency: dominantFreq,
		TotalPower:        totalPower,
	}, nil
}
