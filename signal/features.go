package signal

import "math"

// Features holds the time-domain and frequency-domain feature set
// extracted from a sample block.
type Features struct {
	Mean          float64   `json:"mean"`
	Std           float64   `json:"std"`
	RMS           float64   `json:"rms"`
	Peak          float64   `json:"peak"`
	PeakToPeak    float64   `json:"peak_to_peak"`
	Crest         float64   `json:"crest"`
	Shape         float64   `json:"shape"`
	Impulse       float64   `json:"impulse"`
	Clearance     float64   `json:"clearance"`
	ZeroCrossings int       `json:"zero_crossings"`

	DominantFrequency float64   `json:"dominant_frequency"`
	SpectralCentroid  float64   `json:"spectral_centroid"`
	SpectralBandwidth float64   `json:"spectral_bandwidth"`
	SpectralRolloff   float64   `json:"spectral_rolloff"`
	SpectralFlatness  float64   `json:"spectral_flatness"`
	SpectralEntropy   float64   `json:"spectral_entropy"`
	BandPowers        []float64 `json:"band_powers"`
}

const epsDenom = 1e-10

func protectedDenom(d float64) float64 {
	return math.Max(d, epsDenom)
}

// ExtractFeatures computes the full time- and frequency-domain feature
// set for a non-empty sample block.
func (p *Processor) ExtractFeatures(samples []float64) (Features, error) {
	stats, err := p.CalculateStatistics(samples)
	if err != nil {
		return Features{}, err
	}
	fft, err := p.FFTAnalysis(samples)
	if err != nil {
		return Features{}, err
	}

	var absSum, sqrtAbsSum float64
	for _, v := range samples {
		absSum += math.Abs(v)
		sqrtAbsSum += math.Sqrt(math.Abs(v))
	}
	n := float64(len(samples))
	meanAbs := absSum / n
	meanSqrtAbs := sqrtAbsSum / n

	peak := math.Max(math.Abs(stats.Max), math.Abs(stats.Min))

	shape := stats.RMS / protectedDenom(meanAbs)
	impulse := peak / protectedDenom(meanAbs)
	clearance := peak / protectedDenom(meanSqrtAbs*meanSqrtAbs)

	zc := countZeroCrossings(samples)

	var sumFM, sumM float64
	for i, m := range fft.Magnitudes {
		sumFM += fft.Frequencies[i] * m
		sumM += m
	}
	centroid := sumFM / protectedDenom(sumM)

	var sumDevSq float64
	for i, m := range fft.Magnitudes {
		d := fft.Frequencies[i] - centroid
		sumDevSq += d * d * m
	}
	bandwidth := math.Sqrt(sumDevSq / protectedDenom(sumM))

	rolloff := spectralRolloff(fft.Frequencies, fft.Power, fft.TotalPower)
	flatness := spectralFlatness(fft.Magnitudes)
	entropy := spectralEntropy(fft.Magnitudes, sumM)
	bandPowers := bandPowers(fft.Power, 8)

	return Features{
		Mean:          stats.Mean,
		Std:           stats.StdDev,
		RMS:           stats.RMS,
		Peak:          peak,
		PeakToPeak:    stats.PeakToPeak,
		Crest:         stats.CrestFactor,
		Shape:         shape,
		Impulse:       impulse,
		Clearance:     clearance,
		ZeroCrossings: zc,

		DominantFrequency: fft.DominantFrequency,
		SpectralCentroid:  centroid,
		SpectralBandwidth: bandwidth,
		SpectralRolloff:   rolloff,
		SpectralFlatness:  flatness,
		SpectralEntropy:   entropy,
		BandPowers:        bandPowers,
	}, nil
}

// countZeroCrossings counts consecutive pairs of strictly opposite sign,
// treating zero as non-negative (so a 0->negative transition counts, but
// a positive->0 transition does not).
func countZeroCrossings(x []float64) int {
	sign := func(v float64) int {
		if v < 0 {
			return -1
		}
		return 1
	}
	count := 0
	for i := 1; i < len(x); i++ {
		if sign(x[i-1]) != sign(x[i]) {
			count++
		}
	}
	return count
}

func spectralRolloff(freqs, power []float64, total float64) float64 {
	if len(freqs) == 0 || total <= 0 {
		return 0
	}
	threshold := 0.95 * total
	var cum float64
	for i, p := range power {
		cum += p
		if cum >= threshold {
			return freqs[i]
		}
	}
	return freqs[len(freqs)-1]
}

func spectralFlatness(mags []float64) float64 {
	if len(mags) == 0 {
		return 0
	}
	var logSum, sum float64
	n := float64(len(mags))
	for _, m := range mags {
		m = math.Max(m, epsDenom)
		logSum += math.Log(m)
		sum += m
	}
	geoMean := math.Exp(logSum / n)
	arithMean := sum / n
	return geoMean / protectedDenom(arithMean)
}

func spectralEntropy(mags []float64, sumM float64) float64 {
	if len(mags) == 0 {
		return 0
	}
	denom := protectedDenom(sumM)
	var entropy float64
	for _, m := range mags {
		p := m / denom
		if p <= 0 {
			continue
		}
		entropy -= p * math.Log(p)
	}
	return entropy
}

func bandPowers(power []float64, bands int) []float64 {
	out := make([]float64, bands)
	if len(power) == 0 {
		return out
	}
	binSize := len(power) / bands
	if binSize == 0 {
		binSize = 1
	}
	for b := 0; b < bands; b++ {
		start := b * binSize
		end := start + binSize
		if b == bands-1 || end > len(power) {
			end = len(power)
		}
		if start >= len(power) {
			continue
		}
		var sum float64
		for i := start; i < end; i++ {
			sum += power[i]
		}
		out[b] = sum
	}
	return out
}
