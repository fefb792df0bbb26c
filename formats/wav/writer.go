// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/audfeat/utils"
)

// Write stores samples as a mono 16-bit PCM WAV at sampleRate.
// Samples are clamped to [-1, 1].
func Write(w io.WriteSeeker, sampleRate int, samples []float32) error {
	enc := gowav.NewEncoder(w, sampleRate, 16, 1, pcmFormat)

	const chunkSize = 8192

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, 0, min(len(samples), chunkSize)),
		SourceBitDepth: 16,
	}

	for i := 0; i < len(samples); i += chunkSize {
		end := min(i+chunkSize, len(samples))

		buf.Data = buf.Data[:0]
		for _, s := range samples[i:end] {
			buf.Data = append(buf.Data, int(utils.Float32ToInt16(s)))
		}

		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("writing wav samples: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}

	return nil
}
