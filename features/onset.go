// SPDX-License-Identifier: EPL-2.0

package features

import "math"

const (
	powerFloor = 1e-10
	topDB      = 80.0
)

// onsetStrength is the half-wave rectified frame-to-frame increase of the
// log-power spectrum, averaged over bins. The first frame is 0.
func onsetStrength(mag [][]float64) []float64 {
	bins := len(mag)
	frames := len(mag[0])

	peak := powerFloor
	for k := range mag {
		for _, m := range mag[k] {
			peak = math.Max(peak, m*m)
		}
	}
	ref := 10 * math.Log10(peak)

	db := func(m float64) float64 {
		v := 10*math.Log10(math.Max(m*m, powerFloor)) - ref
		return math.Max(v, -topDB)
	}

	out := make([]float64, frames)
	for k := range mag {
		prev := db(mag[k][0])
		for t := 1; t < frames; t++ {
			cur := db(mag[k][t])
			if d := cur - prev; d > 0 {
				out[t] += d
			}
			prev = cur
		}
	}

	for t := range out {
		out[t] /= float64(bins)
	}
	return out
}
