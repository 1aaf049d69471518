package signal

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// FilterKind identifies a filter variant, dispatched by a flat type-switch
// over FilterSpec rather than virtual dispatch.
type FilterKind int

const (
	FilterMovingAverage FilterKind = iota
	FilterEMA
	FilterMedian
	FilterLowPass
	FilterHighPass
	FilterBandPass
	FilterBandStop
)

// FilterSpec is a tagged configuration carrying only the payload its Kind
// needs.
type FilterSpec struct {
	Kind FilterKind `json:"kind"`

	Window int     `json:"window,omitempty"` // MovingAverage, Median
	Alpha  float64 `json:"alpha,omitempty"`  // EMA

	CutoffHz     float64 `json:"cutoff_hz,omitempty"`      // LowPass, HighPass
	LowCutoffHz  float64 `json:"low_cutoff_hz,omitempty"`  // BandPass, BandStop
	HighCutoffHz float64 `json:"high_cutoff_hz,omitempty"`
	Order        int     `json:"order,omitempty"` // RC iteration count, default 1
}

// ApplyFilter dispatches to the filter implementation named by spec.Kind.
// All filters preserve input length.
func (p *Processor) ApplyFilter(samples []float64, spec FilterSpec) ([]float64, error) {
	switch spec.Kind {
	case FilterMovingAverage:
		return movingAverage(samples, spec.Window)
	case FilterEMA:
		return ema(samples, spec.Alpha)
	case FilterMedian:
		return medianFilter(samples, spec.Window)
	case FilterLowPass:
		return p.lowPass(samples, spec.CutoffHz, filterOrder(spec.Order))
	case FilterHighPass:
		return p.highPass(samples, spec.CutoffHz, filterOrder(spec.Order))
	case FilterBandPass:
		return p.bandPass(samples, spec.LowCutoffHz, spec.HighCutoffHz, filterOrder(spec.Order))
	case FilterBandStop:
		return p.bandStop(samples, spec.LowCutoffHz, spec.HighCutoffHz, filterOrder(spec.Order))
	default:
		return nil, &InvalidFilterParamsError{Reason: "unknown filter kind"}
	}
}

func filterOrder(o int) int {
	if o <= 0 {
		return 1
	}
	return o
}

// movingAverage computes a running sum over the trailing W values. The
// first W outputs intentionally reuse the first full window's sum
// (documented leading-latency behaviour, not a bug).
func movingAverage(x []float64, w int) ([]float64, error) {
	if w <= 0 {
		return nil, &InvalidFilterParamsError{Reason: "window must be positive"}
	}
	if len(x) < w {
		return nil, &InsufficientLengthError{Required: w, Actual: len(x)}
	}

	out := make([]float64, len(x))
	sum := floats.Sum(x[:w])
	firstAvg := sum / float64(w)
	for i := 0; i < w; i++ {
		out[i] = firstAvg
	}
	for i := w; i < len(x); i++ {
		sum += x[i] - x[i-w]
		out[i] = sum / float64(w)
	}
	return out, nil
}

// ema computes the exponential moving average y0=x0, yn = a*xn + (1-a)*y(n-1).
func ema(x []float64, alpha float64) ([]float64, error) {
	if alpha <= 0 || alpha > 1 {
		return nil, &InvalidFilterParamsError{Reason: "alpha must be in (0,1]"}
	}
	if len(x) == 0 {
		return nil, &InsufficientLengthError{Required: 1, Actual: 0}
	}

	out := make([]float64, len(x))
	out[0] = x[0]
	for i := 1; i < len(x); i++ {
		out[i] = alpha*x[i] + (1-alpha)*out[i-1]
	}
	return out, nil
}

// medianFilter applies a centred window with endpoint clipping; even
// window lengths report the lower median.
func medianFilter(x []float64, w int) ([]float64, error) {
	if w <= 0 {
		return nil, &InvalidFilterParamsError{Reason: "window must be positive"}
	}
	if len(x) < w {
		return nil, &InsufficientLengthError{Required: w, Actual: len(x)}
	}

	half := w / 2
	out := make([]float64, len(x))
	buf := make([]float64, 0, w)
	for i := range x {
		lo := i - half
		hi := i + (w - half) - 1
		if lo < 0 {
			lo = 0
		}
		if hi >= len(x) {
			hi = len(x) - 1
		}
		buf = buf[:0]
		for j := lo; j <= hi; j++ {
			buf = append(buf, x[j])
		}
		out[i] = sortedMedian(buf)
	}
	return out, nil
}

func sortedMedian(buf []float64) float64 {
	sorted := append([]float64(nil), buf...)
	sortFloatsNaNMax(sorted)
	n := len(sorted)
	return sorted[(n-1)/2]
}

// lowPass applies a first-order RC approximation, iterated `order` times.
func (p *Processor) lowPass(x []float64, cutoffHz float64, order int) ([]float64, error) {
	if len(x) == 0 {
		return nil, &InsufficientLengthError{Required: 1, Actual: 0}
	}
	norm := cutoffHz / (p.sampleRateHz / 2)
	if norm <= 0 || norm >= 1 {
		return nil, &InvalidFilterParamsError{Reason: "normalised cutoff must be in (0,1)"}
	}

	dt := 1.0 / p.sampleRateHz
	rc := 1.0 / (2 * math.Pi * cutoffHz)
	alpha := dt / (rc + dt)

	out := append([]float64(nil), x...)
	for pass := 0; pass < order; pass++ {
		y := make([]float64, len(out))
		y[0] = out[0]
		for i := 1; i < len(out); i++ {
			y[i] = y[i-1] + alpha*(out[i]-y[i-1])
		}
		out = y
	}
	return out, nil
}

// highPass is x minus its low-pass component.
func (p *Processor) highPass(x []float64, cutoffHz float64, order int) ([]float64, error) {
	lp, err := p.lowPass(x, cutoffHz, order)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] - lp[i]
	}
	return out, nil
}

// bandPass is high-pass then low-pass in series.
func (p *Processor) bandPass(x []float64, lowHz, highHz float64, order int) ([]float64, error) {
	hp, err := p.highPass(x, lowHz, order)
	if err != nil {
		return nil, err
	}
	return p.lowPass(hp, highHz, order)
}

// bandStop is lowpass(low) + highpass(high).
func (p *Processor) bandStop(x []float64, lowHz, highHz float64, order int) ([]float64, error) {
	lp, err := p.lowPass(x, lowHz, order)
	if err != nil {
		return nil, err
	}
	hp, err := p.highPass(x, highHz, order)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	for i := range x {
		out[i] = lp[i] + hp[i]
	}
	return out, nil
}
