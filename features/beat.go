// SPDX-License-Identifier: EPL-2.0

package features

import (
	"context"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// trackBeats runs dynamic-programming beat tracking over the onset curve
// and returns beat frame indices in increasing order.
//
// Each frame's score is its smoothed onset strength plus the best
// predecessor between half and two periods back, penalised by
// tightness*log(gap/period)^2. The path ending at the last strong
// cumulative-score peak is backtracked, then weak beats at either end are
// trimmed.
func trackBeats(ctx context.Context, onset []float64, bpm, fps, tightness float64) ([]int, error) {
	if bpm <= 0 || len(onset) < 2 || !anyPositive(onset) {
		return []int{}, nil
	}

	period := max(1, int(math.Round(60*fps/bpm)))

	local := localScore(onset, period)

	lo := -2 * period
	hi := -int(math.Round(float64(period) / 2))
	hi = min(hi, -1)

	offsets := make([]int, 0, hi-lo+1)
	txwt := make([]float64, 0, hi-lo+1)
	for off := lo; off <= hi; off++ {
		l := math.Log(float64(-off) / float64(period))
		offsets = append(offsets, off)
		txwt = append(txwt, -tightness*l*l)
	}

	cum := make([]float64, len(local))
	back := make([]int, len(local))
	strongest := slices.Max(local)
	first := true

	for i, s := range local {
		if i%(ctxCheckEvery*16) == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		best := math.Inf(-1)
		bestOff := offsets[0]
		for j, off := range offsets {
			c := txwt[j]
			if prev := i + off; prev >= 0 {
				c += cum[prev]
			}
			if c > best {
				best, bestOff = c, off
			}
		}

		cum[i] = s + best
		if first && s < 0.01*strongest {
			back[i] = -1
			continue
		}
		back[i] = max(-1, i+bestOff)
		first = false
	}

	tail := lastBeat(cum)
	if tail < 0 {
		return []int{}, nil
	}

	beats := []int{tail}
	for back[beats[len(beats)-1]] >= 0 {
		beats = append(beats, back[beats[len(beats)-1]])
	}
	slices.Reverse(beats)

	return trimBeats(local, beats), nil
}

// localScore normalises onset by its standard deviation and smooths it with
// a Gaussian spanning one period on each side.
func localScore(onset []float64, period int) []float64 {
	std := stat.StdDev(onset, nil)
	if std == 0 || math.IsNaN(std) {
		std = 1
	}

	kernel := make([]float64, 2*period+1)
	for i := range kernel {
		x := float64(i-period) * 32 / float64(period)
		kernel[i] = math.Exp(-0.5 * x * x)
	}

	out := make([]float64, len(onset))
	for i := range out {
		sum := 0.0
		for k, w := range kernel {
			if j := i + k - period; j >= 0 && j < len(onset) {
				sum += onset[j] / std * w
			}
		}
		out[i] = sum
	}
	return out
}

// lastBeat returns the last local maximum of cum scoring above half the
// median peak, or -1 when cum has no peak.
func lastBeat(cum []float64) int {
	var peaks []int
	for i := range cum {
		left := i > 0 && cum[i] > cum[i-1]
		right := i == len(cum)-1 || cum[i] >= cum[i+1]
		if left && right {
			peaks = append(peaks, i)
		}
	}
	if len(peaks) == 0 {
		return -1
	}

	vals := make([]float64, len(peaks))
	for i, p := range peaks {
		vals[i] = cum[p]
	}
	slices.Sort(vals)
	median := stat.Quantile(0.5, stat.Empirical, vals, nil)

	for i := len(peaks) - 1; i >= 0; i-- {
		if 2*cum[peaks[i]] > median {
			return peaks[i]
		}
	}
	return peaks[len(peaks)-1]
}

// trimBeats drops leading and trailing beats whose smoothed local score is
// below half the RMS of the smoothed scores.
func trimBeats(local []float64, beats []int) []int {
	if len(beats) == 0 {
		return beats
	}

	hann := [...]float64{0, 0.5, 1, 0.5, 0}
	smooth := make([]float64, len(beats))
	for i := range beats {
		for k, w := range hann {
			if j := i + k - 2; j >= 0 && j < len(beats) {
				smooth[i] += local[beats[j]] * w
			}
		}
	}

	sq := 0.0
	for _, v := range smooth {
		sq += v * v
	}
	threshold := 0.5 * math.Sqrt(sq/float64(len(smooth)))

	start, end := 0, len(beats)
	for start < end && smooth[start] <= threshold {
		start++
	}
	for end > start && smooth[end-1] <= threshold {
		end--
	}

	return beats[start:end]
}
