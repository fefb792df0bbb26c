// SPDX-License-Identifier: EPL-2.0

package envelope

import (
	"fmt"

	"gonum.org/v1/gonum/interp"

	"github.com/ik5/audfeat/utils"
)

// MinRidgePoints is the smallest ridge a cubic fit accepts.
const MinRidgePoints = 4

// Envelope is a curve resampled onto an evenly spaced time axis.
type Envelope struct {
	Values []float64
	Times  []float64
}

// Build fits a natural cubic spline through (times[i], curve[i]) for every
// i in ridge and evaluates it at len(curve) evenly spaced instants covering
// [times[ridge[0]], times[ridge[len(ridge)-1]]], endpoints included. The
// spline is never evaluated outside that span.
func Build(curve, times []float64, ridge []int) (Envelope, error) {
	if len(ridge) < MinRidgePoints {
		return Envelope{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientRidgePoints, len(ridge), MinRidgePoints)
	}

	if len(times) != len(curve) {
		return Envelope{}, fmt.Errorf("%w: %d values, %d times", ErrLengthMismatch, len(curve), len(times))
	}

	xs := make([]float64, len(ridge))
	ys := make([]float64, len(ridge))
	for k, i := range ridge {
		if i < 0 || i >= len(curve) {
			return Envelope{}, fmt.Errorf("%w: %d not in [0, %d)", ErrRidgeOutOfRange, i, len(curve))
		}
		if k > 0 && i <= ridge[k-1] {
			return Envelope{}, ErrRidgeNotSorted
		}
		xs[k] = times[i]
		ys[k] = curve[i]
		if k > 0 && xs[k] <= xs[k-1] {
			return Envelope{}, fmt.Errorf("%w: time axis not increasing at index %d", ErrSplineFit, i)
		}
	}

	var spline interp.NaturalCubic
	if err := spline.Fit(xs, ys); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrSplineFit, err)
	}

	axis := utils.Linspace(xs[0], xs[len(xs)-1], len(curve))
	values := make([]float64, len(axis))
	for k, t := range axis {
		values[k] = spline.Predict(t)
	}

	return Envelope{Values: values, Times: axis}, nil
}
