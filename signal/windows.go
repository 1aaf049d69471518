package signal

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// WindowKind identifies a window function variant. Dispatch is a flat
// type-switch, not virtual dispatch, following the tagged-configuration
// convention used throughout this module.
type WindowKind int

const (
	WindowRectangular WindowKind = iota
	WindowHanning
	WindowHamming
	WindowBlackman
	WindowKaiser
	WindowGaussian
)

// WindowFunction selects a window kind and carries the payload a handful
// of variants need (Kaiser's beta, Gaussian's sigma).
type WindowFunction struct {
	Kind  WindowKind `json:"kind"`
	Beta  float64    `json:"beta,omitempty"`  // Kaiser
	Sigma float64    `json:"sigma,omitempty"` // Gaussian, expressed as a fraction of (N-1)/2
}

// ApplyWindow multiplies samples in place by the chosen window function's
// coefficients and returns the same slice for chaining.
func ApplyWindow(samples []float64, w WindowFunction) []float64 {
	n := len(samples)
	if n == 0 {
		return samples
	}
	coeffs := WindowCoefficients(n, w)
	floats.MulTo(samples, samples, coeffs)
	return samples
}

// WindowCoefficients computes the N coefficients for the given window.
func WindowCoefficients(n int, w WindowFunction) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = 1
		return out
	}
	denom := float64(n - 1)

	switch w.Kind {
	case WindowRectangular:
		for i := range out {
			out[i] = 1
		}
	case WindowHanning:
		for i := range out {
			out[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/denom))
		}
	case WindowHamming:
		for i := range out {
			out[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/denom)
		}
	case WindowBlackman:
		for i := range out {
			x := 2 * math.Pi * float64(i) / denom
			out[i] = 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x)
		}
	case WindowKaiser:
		beta := w.Beta
		i0Beta := besselI0(beta)
		for i := range out {
			u := 2*float64(i)/denom - 1
			arg := beta * math.Sqrt(math.Max(0, 1-u*u))
			out[i] = besselI0(arg) / i0Beta
		}
	case WindowGaussian:
		sigma := w.Sigma
		if sigma <= 0 {
			sigma = 0.4
		}
		half := denom / 2
		for i := range out {
			u := (float64(i) - half) / (sigma * half)
			out[i] = math.Exp(-0.5 * u * u)
		}
	default:
		for i := range out {
			out[i] = 1
		}
	}
	return out
}

// besselI0 approximates the modified Bessel function of the first kind,
// order 0, via the standard Abramowitz & Stegun piecewise rational
// approximation (absolute error < 1.6e-7 over its domain).
func besselI0(x float64) float64 {
	ax := math.Abs(x)
	if ax < 3.75 {
		t := x / 3.75
		t2 := t * t
		return 1.0 + t2*(3.5156229+t2*(3.0899424+t2*(1.2067492+
			t2*(0.2659732+t2*(0.0360768+t2*0.0045813)))))
	}
	t := 3.75 / ax
	poly := 0.39894228 + t*(0.01328592+t*(0.00225319+t*(-0.00157565+
		t*(0.00916281+t*(-0.02057706+t*(0.02635537+t*(-0.01647633+t*0.00392377)))))))
	return (math.Exp(ax) / math.Sqrt(ax)) * poly
}
