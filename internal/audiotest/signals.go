// SPDX-License-Identifier: EPL-2.0

package audiotest

import "math"

// ClickTrack renders a mono signal with short decaying noise bursts every
// 60/bpm seconds, starting at offset seconds. It is the cheapest signal a
// beat tracker should lock onto.
func ClickTrack(sampleRate int, seconds, bpm, offset float64) []float32 {
	n := int(seconds * float64(sampleRate))
	out := make([]float32, n)

	period := 60.0 / bpm
	clickLen := sampleRate / 50 // 20ms
	seed := uint32(1)

	for t := offset; t < seconds; t += period {
		start := int(t * float64(sampleRate))
		for i := 0; i < clickLen && start+i < n; i++ {
			// xorshift noise keeps the fixture deterministic
			seed ^= seed << 13
			seed ^= seed >> 17
			seed ^= seed << 5
			noise := float32(seed)/float32(math.MaxUint32)*2 - 1
			decay := float32(math.Exp(-float64(i) / float64(clickLen) * 6))
			out[start+i] = 0.9 * noise * decay
		}
	}

	return out
}

// Sine renders a mono sine of the given frequency and amplitude.
func Sine(sampleRate int, seconds, frequency float64, amplitude float32) []float32 {
	n := int(seconds * float64(sampleRate))
	out := make([]float32, n)
	for i := range out {
		out[i] = amplitude * float32(math.Sin(2*math.Pi*frequency*float64(i)/float64(sampleRate)))
	}

	return out
}

// Bumps returns a curve of n points shaped like |sin| with the given number
// of humps, scaled into [0, 1]. Handy as an RMS-like input for envelope tests.
func Bumps(n, humps int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Abs(math.Sin(float64(i) / float64(n) * math.Pi * float64(humps)))
	}

	return out
}
