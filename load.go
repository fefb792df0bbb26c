// SPDX-License-Identifier: EPL-2.0

package audfeat

import (
	"context"
	"fmt"
	"os"

	"github.com/ik5/audfeat/audio"
	"github.com/ik5/audfeat/formats/aiff"
	"github.com/ik5/audfeat/formats/mp3"
	"github.com/ik5/audfeat/formats/vorbis"
	"github.com/ik5/audfeat/formats/wav"
)

// DefaultSampleRate is the analysis rate tracks are resampled to.
const DefaultSampleRate = 22050

// DefaultRegistry returns a registry with every built-in decoder.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	return reg
}

// Loader decodes files into mono float32 at a fixed rate. The zero value
// uses DefaultRegistry and DefaultSampleRate.
type Loader struct {
	Registry   *audio.Registry
	SampleRate int
}

// Load implements analysis.Loader.
func (l Loader) Load(ctx context.Context, path string) ([]float32, int, error) {
	reg := l.Registry
	if reg == nil {
		reg = DefaultRegistry()
	}
	rate := l.SampleRate
	if rate <= 0 {
		rate = DefaultSampleRate
	}

	dec, err := reg.ForPath(path)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	defer src.Close()

	interleaved, err := audio.ReadAll(src)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}
	if len(interleaved) == 0 {
		return nil, 0, fmt.Errorf("%s: %w", path, audio.ErrEmptySource)
	}

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	mono, err := audio.Downmix(interleaved, src.Channels())
	if err != nil {
		return nil, 0, err
	}

	out, err := audio.Resample(mono, src.SampleRate(), rate)
	if err != nil {
		return nil, 0, err
	}

	return out, rate, nil
}

// LoadMono decodes path with the built-in decoders and returns mono samples
// at rate.
func LoadMono(path string, rate int) ([]float32, error) {
	samples, _, err := Loader{SampleRate: rate}.Load(context.Background(), path)
	return samples, err
}
