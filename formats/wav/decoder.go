// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/audfeat/audio"
	"github.com/ik5/audfeat/utils"
)

const pcmFormat = 1

// pcmReader is the subset of gowav.Decoder the source needs; tests swap it.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec        pcmReader
	sampleRate int
	channels   int
	scale      float32
	intBuf     *goaudio.IntBuffer
	closer     io.Closer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return cap(s.intBuf.Data) }

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("closing wav input: %w", err)
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if cap(s.intBuf.Data) < len(dst) {
		s.intBuf.Data = make([]int, len(dst))
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil {
		return 0, fmt.Errorf("reading wav pcm: %w", err)
	}
	// go-audio reports the end of the data chunk as a short or empty read
	if n == 0 {
		return 0, io.EOF
	}

	for i := range n {
		dst[i] = float32(s.intBuf.Data[i]) / s.scale
	}

	return n, nil
}

// Decoder decodes integer PCM WAV (8/16/24/32-bit) of any chunk layout.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		// go-audio needs to seek between chunks
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := gowav.NewDecoder(rs)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	if dec.WavAudioFormat != pcmFormat {
		return nil, ErrUnsupportedCodec
	}

	format := dec.Format()
	if format == nil || format.NumChannels == 0 || format.SampleRate == 0 {
		return nil, ErrEmptyFormat
	}

	scale, err := utils.PCMScale(int(dec.BitDepth))
	if err != nil {
		return nil, fmt.Errorf("wav bit depth %d: %w", dec.BitDepth, err)
	}

	src := &source{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		scale:      scale,
		intBuf: &goaudio.IntBuffer{
			Format:         format,
			Data:           make([]int, 4096),
			SourceBitDepth: int(dec.BitDepth),
		},
	}
	if c, ok := r.(io.Closer); ok {
		src.closer = c
	}

	return src, nil
}
