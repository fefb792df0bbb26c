// SPDX-License-Identifier: EPL-2.0

package features

import (
	"context"
	"fmt"

	"github.com/mjibson/go-dsp/window"
)

// Extractor computes the spectral and rhythmic features of a mono signal.
type Extractor interface {
	Analyze(ctx context.Context, samples []float32, sampleRate int) (*Result, error)
}

// Result of one analysis. Magnitude is indexed [bin][frame]; RMS and Times
// have one entry per frame.
type Result struct {
	Tempo         float64
	BeatTimes     []float64
	Magnitude     [][]float64
	RMS           []float64
	Times         []float64
	FrequencyBins []float64
}

// Params tune the Analyzer.
type Params struct {
	FrameLength int // FFT size and RMS frame
	HopLength   int

	StartBPM  float64 // centre of the tempo prior
	MinBPM    float64
	MaxBPM    float64
	Tightness float64 // how strongly beats stick to the tempo
}

// DefaultParams matches the usual music analysis defaults: 2048/512 frames,
// 120 BPM prior searched over [30, 300].
func DefaultParams() Params {
	return Params{
		FrameLength: 2048,
		HopLength:   512,
		StartBPM:    120,
		MinBPM:      30,
		MaxBPM:      300,
		Tightness:   100,
	}
}

func (p Params) validate() error {
	switch {
	case p.FrameLength < 4 || p.FrameLength%2 != 0:
		return fmt.Errorf("%w: frame length %d must be even and at least 4", ErrInvalidParams, p.FrameLength)
	case p.HopLength < 1:
		return fmt.Errorf("%w: hop length %d", ErrInvalidParams, p.HopLength)
	case p.MinBPM <= 0 || p.MaxBPM <= p.MinBPM:
		return fmt.Errorf("%w: tempo range [%v, %v]", ErrInvalidParams, p.MinBPM, p.MaxBPM)
	case p.StartBPM <= 0:
		return fmt.Errorf("%w: start bpm %v", ErrInvalidParams, p.StartBPM)
	case p.Tightness < 0:
		return fmt.Errorf("%w: tightness %v", ErrInvalidParams, p.Tightness)
	}
	return nil
}

// Analyzer is the built-in Extractor. It is safe for concurrent use.
type Analyzer struct {
	params Params
	window []float64
}

var _ Extractor = (*Analyzer)(nil)

// NewAnalyzer validates p and precomputes the analysis window.
func NewAnalyzer(p Params) (*Analyzer, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	// periodic Hann: the symmetric window one sample longer, truncated
	win := window.Hann(p.FrameLength + 1)[:p.FrameLength]

	return &Analyzer{params: p, window: win}, nil
}

// Params returns the analyzer configuration.
func (a *Analyzer) Params() Params { return a.params }

// Analyze runs the STFT, derives RMS and onset strength from it, then
// estimates tempo and tracks beats on the onset curve.
func (a *Analyzer) Analyze(ctx context.Context, samples []float32, sampleRate int) (*Result, error) {
	switch {
	case len(samples) == 0:
		return nil, fmt.Errorf("%w: no samples", ErrFeatureExtraction)
	case sampleRate <= 0:
		return nil, fmt.Errorf("%w: sample rate %d", ErrFeatureExtraction, sampleRate)
	case len(samples) < a.params.FrameLength:
		return nil, fmt.Errorf("%w: %d samples is shorter than one %d-sample frame",
			ErrFeatureExtraction, len(samples), a.params.FrameLength)
	}

	mag, err := a.stft(ctx, samples)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeatureExtraction, err)
	}

	frames := len(mag[0])
	fps := float64(sampleRate) / float64(a.params.HopLength)

	onset := onsetStrength(mag)
	tempo := estimateTempo(onset, fps, a.params)

	beats, err := trackBeats(ctx, onset, tempo, fps, a.params.Tightness)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeatureExtraction, err)
	}

	res := &Result{
		Tempo:         tempo,
		BeatTimes:     make([]float64, len(beats)),
		Magnitude:     mag,
		RMS:           rmsFromMagnitude(mag, a.params.FrameLength),
		Times:         make([]float64, frames),
		FrequencyBins: make([]float64, len(mag)),
	}

	for i := range res.Times {
		res.Times[i] = float64(i) / fps
	}
	for i, f := range beats {
		res.BeatTimes[i] = float64(f) / fps
	}
	for k := range res.FrequencyBins {
		res.FrequencyBins[k] = float64(k) * float64(sampleRate) / float64(a.params.FrameLength)
	}

	return res, nil
}
