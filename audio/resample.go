// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"

	"github.com/ik5/audfeat/utils"
)

// Resample converts a mono signal from srcRate to dstRate using cubic
// interpolation. When downsampling a one-pole low-pass is applied first to
// tame aliasing. Equal rates return a copy.
func Resample(mono []float32, srcRate, dstRate int) ([]float32, error) {
	if srcRate <= 0 || dstRate <= 0 {
		return nil, ErrInvalidRate
	}

	if srcRate == dstRate || len(mono) == 0 {
		out := make([]float32, len(mono))
		copy(out, mono)
		return out, nil
	}

	in := mono
	ratio := float64(srcRate) / float64(dstRate)
	if ratio > 1 {
		in = lowPass(mono, 0.5)
	}

	outLen := int(math.Floor(float64(len(in)) / ratio))
	if outLen == 0 {
		outLen = 1
	}
	out := make([]float32, outLen)

	last := len(in) - 1
	at := func(i int) float32 {
		if i < 0 {
			return in[0]
		}
		if i > last {
			return in[last]
		}
		return in[i]
	}

	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		frac := float32(pos - float64(idx))
		out[i] = utils.CubicInterpolate(at(idx-1), at(idx), at(idx+1), at(idx+2), frac)
	}

	return out, nil
}

// lowPass runs y[n] = alpha*x[n] + (1-alpha)*y[n-1], seeded with x[0].
func lowPass(x []float32, alpha float32) []float32 {
	out := make([]float32, len(x))
	state := x[0]
	for i, v := range x {
		state = alpha*v + (1-alpha)*state
		out[i] = state
	}

	return out
}
