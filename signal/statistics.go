package signal

import (
	"math"
	"sort"
)

// Statistics holds the descriptive statistics of a non-empty sample block.
type Statistics struct {
	Count        int     `json:"count"`
	Mean         float64 `json:"mean"`
	Variance     float64 `json:"variance"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Range        float64 `json:"range"`
	Median       float64 `json:"median"`
	Q1           float64 `json:"q1"`
	Q3           float64 `json:"q3"`
	IQR          float64 `json:"iqr"`
	Skewness     float64 `json:"skewness"`
	Kurtosis     float64 `json:"kurtosis"`
	RMS          float64 `json:"rms"`
	PeakToPeak   float64 `json:"peak_to_peak"`
	CrestFactor  float64 `json:"crest_factor"`
}

// sortFloatsNaNMax sorts in place with NaN treated as the maximum element,
// per the module's documented NaN-discipline: callers are expected to
// filter NaN upstream if exact semantics matter.
func sortFloatsNaNMax(x []float64) {
	sort.Slice(x, func(i, j int) bool {
		if math.IsNaN(x[i]) {
			return false
		}
		if math.IsNaN(x[j]) {
			return true
		}
		return x[i] < x[j]
	})
}

// CalculateStatistics computes descriptive statistics over a non-empty
// block. Variance uses the population divisor n, distinct from
// Accumulator's unbiased n-1 form.
func (p *Processor) CalculateStatistics(x []float64) (Statistics, error) {
	n := len(x)
	if n == 0 {
		return Statistics{}, &InsufficientLengthError{Required: 1, Actual: 0}
	}

	var sum float64
	minV, maxV := x[0], x[0]
	for _, v := range x {
		sum += v
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	mean := sum / float64(n)

	var m2, m3, m4, sqSum float64
	for _, v := range x {
		d := v - mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
		sqSum += v * v
	}
	variance := m2 / float64(n)
	stdDev := math.Sqrt(variance)

	sorted := append([]float64(nil), x...)
	sortFloatsNaNMax(sorted)
	median := sorted[(n-1)/2]
	q1 := sorted[n/4]
	q3 := sorted[3*n/4]

	var skewness, kurtosis float64
	if stdDev > 0 {
		skewness = (m3 / float64(n)) / (stdDev * stdDev * stdDev)
		kurtosis = (m4/float64(n))/(variance*variance) - 3
	}

	rms := math.Sqrt(sqSum / float64(n))
	peakAbs := math.Max(math.Abs(maxV), math.Abs(minV))
	var crest float64
	if rms > 0 {
		crest = peakAbs / rms
	}

	return Statistics{
		Count:       n,
		Mean:        mean,
		Variance:    variance,
		StdDev:      stdDev,
		Min:         minV,
		Max:         maxV,
		Range:       maxV - minV,
		Median:      median,
		Q1:          q1,
		Q3:          q3,
		IQR:         q3 - q1,
		Skewness:    skewness,
		Kurtosis:    kurtosis,
		RMS:         rms,
		PeakToPeak:  maxV - minV,
		CrestFactor: crest,
	}, nil
}
