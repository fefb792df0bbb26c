// SPDX-License-Identifier: EPL-2.0

package features

import (
	"math"
	"math/bits"

	"github.com/mjibson/go-dsp/fft"
)

// autocorrelate returns the linear (not circular) autocorrelation of x for
// lags [0, len(x)).
func autocorrelate(x []float64) []float64 {
	n := 1 << bits.Len(uint(2*len(x)-1))

	padded := make([]float64, n)
	copy(padded, x)

	spec := fft.FFTReal(padded)
	for i, c := range spec {
		re, im := real(c), imag(c)
		spec[i] = complex(re*re+im*im, 0)
	}
	r := fft.IFFT(spec)

	out := make([]float64, len(x))
	for i := range out {
		out[i] = real(r[i])
	}
	return out
}

// estimateTempo picks the onset autocorrelation lag that scores best under
// a log-normal prior (one octave deviation) centred on p.StartBPM. The
// winning lag is refined by parabolic interpolation. A flat onset curve
// yields 0.
func estimateTempo(onset []float64, fps float64, p Params) float64 {
	if len(onset) < 3 || !anyPositive(onset) {
		return 0
	}

	ac := autocorrelate(onset)

	minLag := max(1, int(math.Floor(60*fps/p.MaxBPM)))
	maxLag := min(len(ac)-1, int(math.Ceil(60*fps/p.MinBPM)))
	if minLag > maxLag {
		return 0
	}

	score := func(lag int) float64 {
		bpm := 60 * fps / float64(lag)
		z := math.Log2(bpm / p.StartBPM)
		return ac[lag] * math.Exp(-0.5*z*z)
	}

	best := minLag
	bestScore := score(minLag)
	for lag := minLag + 1; lag <= maxLag; lag++ {
		if s := score(lag); s > bestScore {
			best, bestScore = lag, s
		}
	}
	if bestScore <= 0 {
		return 0
	}

	lag := float64(best)
	if best > 1 && best < len(ac)-1 {
		y0, y1, y2 := score(best-1), bestScore, score(best+1)
		if den := y0 - 2*y1 + y2; den < 0 {
			lag += 0.5 * (y0 - y2) / den
		}
	}

	return 60 * fps / lag
}

func anyPositive(x []float64) bool {
	for _, v := range x {
		if v > 0 {
			return true
		}
	}
	return false
}
