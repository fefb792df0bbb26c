// SPDX-License-Identifier: EPL-2.0

package utils

// Linspace returns n evenly spaced values over [start, stop]. Both
// endpoints are exact. n == 1 yields []float64{start}, n <= 0 yields nil.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}

	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}

	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop

	return out
}

// Diff returns the first discrete difference s[i+1]-s[i].
func Diff[F Float](s []F) []F {
	if len(s) < 2 {
		return nil
	}

	out := make([]F, len(s)-1)
	for i := range out {
		out[i] = s[i+1] - s[i]
	}

	return out
}

// Sign maps every value to -1, 0 or 1.
func Sign[F Float](s []F) []F {
	out := make([]F, len(s))
	for i, v := range s {
		switch {
		case v > 0:
			out[i] = 1
		case v < 0:
			out[i] = -1
		}
	}

	return out
}
