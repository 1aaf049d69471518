package signal

import "fmt"

// Sentinel errors for signal-processing failures. Each typed struct below
// returns its sentinel from Unwrap, so callers can both errors.Is a
// sentinel and errors.As for structured fields.
var (
	ErrInsufficientLength = fmt.Errorf("signal: insufficient sample length")
	ErrInvalidSampleRate  = fmt.Errorf("signal: invalid sample rate")
	ErrInvalidFilterParam = fmt.Errorf("signal: invalid filter parameter")
	ErrFFT                = fmt.Errorf("signal: fft failure")
	ErrNumerical          = fmt.Errorf("signal: numerical error")
)

// InsufficientLengthError reports a block shorter than an operation requires.
type InsufficientLengthError struct {
	Required int
	Actual   int
}

func (e *InsufficientLengthError) Error() string {
	return fmt.Sprintf("signal: insufficient length: need %d, got %d", e.Required, e.Actual)
}

func (e *InsufficientLengthError) Unwrap() error { return ErrInsufficientLength }

// InvalidSampleRateError reports a non-positive sample rate.
type InvalidSampleRateError struct {
	SampleRateHz float64
}

func (e *InvalidSampleRateError) Error() string {
	return fmt.Sprintf("signal: invalid sample rate %g Hz", e.SampleRateHz)
}

func (e *InvalidSampleRateError) Unwrap() error { return ErrInvalidSampleRate }

// InvalidFilterParamsError reports an out-of-domain filter parameter
// (alpha outside (0,1], normalised cutoff outside (0,1), window <= 0, ...).
type InvalidFilterParamsError struct {
	Reason string
}

func (e *InvalidFilterParamsError) Error() string {
	return fmt.Sprintf("signal: invalid filter params: %s", e.Reason)
}

func (e *InvalidFilterParamsError) Unwrap() error { return ErrInvalidFilterParam }

// FFTError wraps a failure from the underlying transform.
type FFTError struct {
	Reason string
}

func (e *FFTError) Error() string { return fmt.Sprintf("signal: fft: %s", e.Reason) }

func (e *FFTError) Unwrap() error { return ErrFFT }

// NumericalError reports a computation that produced a non-finite result
// where one is not expected.
type NumericalError struct {
	Op string
}

func (e *NumericalError) Error() string { return fmt.Sprintf("signal: numerical error in %s", e.Op) }

func (e *NumericalError) Unwrap() error { return ErrNumerical }
