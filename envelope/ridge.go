// SPDX-License-Identifier: EPL-2.0

package envelope

import (
	"gonum.org/v1/gonum/stat"

	"github.com/ik5/audfeat/utils"
)

// DefaultChunk keeps every raw extremum.
const DefaultChunk = 1

// Ridges holds the retained local minima (Low) and maxima (High) of a curve
// as strictly increasing indices inside [1, len(curve)-2].
type Ridges struct {
	Low  []int
	High []int
}

// ExtractRidges finds the local extrema of curve and thins them chunk-wise.
//
// Extrema come from the second difference of the sign of the first
// difference: a minimum where it is positive, a maximum where it is
// negative. With splitByMean, minima at or above the curve mean and maxima
// at or below it are dropped. Surviving minima are then grouped, in order,
// into runs of chunkMin and only the smallest of each run is kept; maxima
// likewise with chunkMax, keeping the largest.
//
// Curves shorter than 3 points have no extrema and return empty ridges.
func ExtractRidges(curve []float64, chunkMin, chunkMax int, splitByMean bool) (Ridges, error) {
	if chunkMin < 1 || chunkMax < 1 {
		return Ridges{}, ErrInvalidChunkSize
	}

	if len(curve) < 3 {
		return Ridges{Low: []int{}, High: []int{}}, nil
	}

	lows, highs := localExtrema(curve)

	if splitByMean {
		mean := stat.Mean(curve, nil)
		lows = keep(lows, func(i int) bool { return curve[i] < mean })
		highs = keep(highs, func(i int) bool { return curve[i] > mean })
	}

	return Ridges{
		Low:  ReduceChunks(curve, lows, chunkMin, less),
		High: ReduceChunks(curve, highs, chunkMax, greater),
	}, nil
}

// localExtrema returns candidate minima and maxima, already shifted by one
// to line up with curve.
func localExtrema(curve []float64) (lows, highs []int) {
	turns := utils.Diff(utils.Sign(utils.Diff(curve)))

	lows = make([]int, 0, len(turns)/2+1)
	highs = make([]int, 0, len(turns)/2+1)

	for i, v := range turns {
		switch {
		case v > 0:
			lows = append(lows, i+1)
		case v < 0:
			highs = append(highs, i+1)
		}
	}

	return lows, highs
}

func less(a, b float64) bool    { return a < b }
func greater(a, b float64) bool { return a > b }

// ReduceChunks splits idx into consecutive runs of size and keeps, per run,
// the index whose curve value wins under better (first one on ties). Runs
// are formed by position in idx, not by distance in the curve, so sparse
// extrema produce wide runs.
func ReduceChunks(curve []float64, idx []int, size int, better func(a, b float64) bool) []int {
	if size <= 1 {
		out := make([]int, len(idx))
		copy(out, idx)
		return out
	}

	out := make([]int, 0, (len(idx)+size-1)/size)
	for start := 0; start < len(idx); start += size {
		end := min(start+size, len(idx))

		best := idx[start]
		for _, i := range idx[start+1 : end] {
			if better(curve[i], curve[best]) {
				best = i
			}
		}
		out = append(out, best)
	}

	return out
}

func keep(idx []int, pred func(int) bool) []int {
	out := idx[:0]
	for _, i := range idx {
		if pred(i) {
			out = append(out, i)
		}
	}
	return out
}
