package aggregate

import "math"

// approxEqual reports whether a and b differ by no more than tol,
// for tolerance-aware float assertions over exact equality.
func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
