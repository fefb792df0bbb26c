// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audfeat/audio"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec      oggReader
	channels int
	closer   io.Closer
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return 4096 * s.channels }

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("closing ogg input: %w", err)
	}
	return nil
}

// ReadSamples decodes straight into dst. oggvorbis fills whole frames and
// returns the number of interleaved values written.
func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	n, err := s.dec.Read(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("decoding vorbis: %w", err)
	}

	if n == 0 && err != nil {
		return 0, io.EOF
	}

	return n, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening ogg vorbis stream: %w", err)
	}

	src := &source{dec: dec, channels: dec.Channels()}
	if c, ok := r.(io.Closer); ok {
		src.closer = c
	}

	return src, nil
}
