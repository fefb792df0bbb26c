// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// ReadAll drains src and returns every interleaved sample it produced.
// The source is not closed.
func ReadAll(src Source) ([]float32, error) {
	bufSize := src.BufSize()
	if bufSize <= 0 {
		bufSize = 4096
	}

	channels := src.Channels()
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}
	// keep reads frame aligned
	bufSize -= bufSize % channels
	if bufSize == 0 {
		bufSize = channels
	}

	buf := make([]float32, bufSize)
	out := make([]float32, 0, bufSize*4)

	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading samples: %w", err)
		}

		// a decoder with nothing left and no EOF would spin forever
		if n == 0 {
			break
		}
	}

	return out, nil
}

// Downmix averages interleaved frames into a mono signal. A trailing
// partial frame is dropped.
func Downmix(samples []float32, channels int) ([]float32, error) {
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}

	if channels == 1 {
		out := make([]float32, len(samples))
		copy(out, samples)
		return out, nil
	}

	frames := len(samples) / channels
	out := make([]float32, frames)
	inv := float32(1.0) / float32(channels)

	switch channels {
	case 2:
		for f := range frames {
			idx := f << 1
			out[f] = (samples[idx] + samples[idx+1]) * 0.5
		}
	default:
		for f := range frames {
			var sum float32
			base := f * channels
			for c := range channels {
				sum += samples[base+c]
			}
			out[f] = sum * inv
		}
	}

	return out, nil
}
