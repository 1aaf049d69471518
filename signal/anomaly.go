package signal

import "math"

// AnomalyResult reports a candidate value's anomaly score against a
// history block. A failed or degenerate statistics computation yields
// score 0 and IsAnomaly=false rather than an error: detectors are meant
// to run inside hot inner loops where a short history is not exceptional.
type AnomalyResult struct {
	Score     float64 `json:"score"`
	IsAnomaly bool    `json:"is_anomaly"`
}

// DetectAnomalyZScore scores value against history's mean/std.
func (p *Processor) DetectAnomalyZScore(history []float64, value, threshold float64) AnomalyResult {
	stats, err := p.CalculateStatistics(history)
	if err != nil || stats.StdDev == 0 {
		return AnomalyResult{}
	}
	z := math.Abs(value-stats.Mean) / stats.StdDev
	return AnomalyResult{Score: z, IsAnomaly: z > threshold}
}

// DetectAnomalyIQR scores value against history's IQR fence, with k as the
// fence multiplier.
func (p *Processor) DetectAnomalyIQR(history []float64, value, k float64) AnomalyResult {
	stats, err := p.CalculateStatistics(history)
	if err != nil || stats.IQR == 0 {
		return AnomalyResult{}
	}
	lower := stats.Q1 - k*stats.IQR
	upper := stats.Q3 + k*stats.IQR

	if value < lower {
		return AnomalyResult{Score: (lower - value) / stats.IQR, IsAnomaly: true}
	}
	if value > upper {
		return AnomalyResult{Score: (value - upper) / stats.IQR, IsAnomaly: true}
	}
	return AnomalyResult{Score: 0, IsAnomaly: false}
}

// DetectAnomalyMAD scores value via median absolute deviation, scaled by
// 1.4826 to approximate Gaussian sigma.
func (p *Processor) DetectAnomalyMAD(history []float64, value, threshold float64) AnomalyResult {
	if len(history) == 0 {
		return AnomalyResult{}
	}
	sorted := append([]float64(nil), history...)
	sortFloatsNaNMax(sorted)
	n := len(sorted)
	median := sorted[(n-1)/2]

	devs := make([]float64, n)
	for i, v := range history {
		devs[i] = math.Abs(v - median)
	}
	sortFloatsNaNMax(devs)
	madRaw := devs[(n-1)/2]
	mad := 1.4826 * madRaw

	if mad < 1e-10 {
		return AnomalyResult{}
	}

	score := math.Abs(value-median) / mad
	return AnomalyResult{Score: score, IsAnomaly: score > threshold}
}
