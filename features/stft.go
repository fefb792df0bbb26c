// SPDX-License-Identifier: EPL-2.0

package features

import (
	"context"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// ctxCheckEvery is how many frames pass between cancellation checks.
const ctxCheckEvery = 64

// stft returns |X| indexed [bin][frame] for centred frames: the signal is
// reflect-padded by half a frame on each side so frame t is centred on
// sample t*hop.
func (a *Analyzer) stft(ctx context.Context, samples []float32) ([][]float64, error) {
	n := a.params.FrameLength
	hop := a.params.HopLength

	padded := reflectPad(samples, n/2)
	frames := 1 + (len(padded)-n)/hop
	bins := n/2 + 1

	mag := make([][]float64, bins)
	for k := range mag {
		mag[k] = make([]float64, frames)
	}

	fft := fourier.NewFFT(n)
	buf := make([]float64, n)
	coeffs := make([]complex128, bins)

	for t := range frames {
		if t%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		start := t * hop
		for i := range buf {
			buf[i] = padded[start+i] * a.window[i]
		}

		coeffs = fft.Coefficients(coeffs, buf)
		for k, c := range coeffs {
			mag[k][t] = cmplx.Abs(c)
		}
	}

	return mag, nil
}

// reflectPad mirrors pad samples on each side without repeating the edge
// sample. The caller guarantees len(x) > pad.
func reflectPad(x []float32, pad int) []float64 {
	out := make([]float64, len(x)+2*pad)
	for i := range out {
		j := i - pad
		switch {
		case j < 0:
			j = -j
		case j >= len(x):
			j = 2*(len(x)-1) - j
		}
		out[i] = float64(x[j])
	}
	return out
}

// rmsFromMagnitude computes per-frame RMS from a one-sided spectrum using
// Parseval: the DC and Nyquist bins are counted once, the rest twice.
func rmsFromMagnitude(mag [][]float64, frameLength int) []float64 {
	frames := len(mag[0])
	last := len(mag) - 1
	norm := float64(frameLength)

	out := make([]float64, frames)
	for t := range out {
		sum := 0.0
		for k := range mag {
			p := mag[k][t] * mag[k][t]
			if k == 0 || (k == last && frameLength%2 == 0) {
				p *= 0.5
			}
			sum += p
		}
		out[t] = math.Sqrt(2*sum) / norm
	}
	return out
}
