// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audfeat/audio"
)

// go-mp3 always emits interleaved stereo 16-bit little-endian PCM.
const (
	channels       = 2
	bytesPerSample = 2
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
	// odd byte left over when a Read stopped mid-sample
	carry    byte
	hasCarry bool
	closer   io.Closer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return channels }
func (s *source) BufSize() int    { return cap(s.buf) / bytesPerSample }

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("closing mp3 input: %w", err)
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) * bytesPerSample
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	off := 0
	if s.hasCarry {
		s.buf[0] = s.carry
		s.hasCarry = false
		off = 1
	}

	n, err := s.dec.Read(s.buf[off:])
	n += off
	// callers treat an empty read as the end of the stream, so keep going
	// until at least one whole sample is available
	for tries := 0; n < bytesPerSample && err == nil && tries < 8; tries++ {
		var m int
		m, err = s.dec.Read(s.buf[n:])
		n += m
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("decoding mp3: %w", err)
	}

	samples := n / bytesPerSample
	if n%bytesPerSample != 0 {
		s.carry = s.buf[n-1]
		s.hasCarry = true
	}

	for i := range samples {
		v := int16(uint16(s.buf[2*i]) | uint16(s.buf[2*i+1])<<8)
		dst[i] = float32(v) / 32768.0
	}

	if samples == 0 && err != nil {
		return 0, io.EOF
	}

	return samples, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("opening mp3 stream: %w", err)
	}

	src := &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}
	if c, ok := r.(io.Closer); ok {
		src.closer = c
	}

	return src, nil
}
