// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audfeat/audio"
	"github.com/ik5/audfeat/utils"
)

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec        aiffReader
	sampleRate int
	channels   int
	scale      float32
	intBuf     *goaudio.IntBuffer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.intBuf.Data) }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if cap(s.intBuf.Data) < len(dst) {
		s.intBuf.Data = make([]int, len(dst))
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil {
			return 0, fmt.Errorf("reading aiff pcm: %w", err)
		}
		return 0, io.EOF
	}

	for i := range n {
		dst[i] = float32(s.intBuf.Data[i]) / s.scale
	}

	// a short read without error is the last block
	if n < len(dst) && err == nil {
		return n, io.EOF
	}

	return n, err
}

// Decoder decodes integer PCM AIFF of 8, 16, 24 or 32 bits.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		// go-audio requires io.ReadSeeker
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	format := dec.Format()
	if format == nil || format.NumChannels == 0 {
		return nil, ErrUnsupportedAiffLayout
	}

	scale, err := utils.PCMScale(int(dec.BitDepth))
	if err != nil {
		return nil, fmt.Errorf("aiff bit depth %d: %w", dec.BitDepth, err)
	}

	return &source{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		scale:      scale,
		intBuf: &goaudio.IntBuffer{
			Format:         format,
			Data:           make([]int, 4096),
			SourceBitDepth: int(dec.BitDepth),
		},
	}, nil
}
