// SPDX-License-Identifier: EPL-2.0

package envelope

import (
	"errors"
	"slices"
)

// Extractor turns an energy curve into its smoothed high envelope.
type Extractor struct {
	ChunkMin    int
	ChunkMax    int
	SplitByMean bool
}

// Result of a high-envelope run. Fallback is set when the ridge was too
// sparse for a spline and Envelope is a copy of the raw curve on its own
// time axis.
type Result struct {
	Envelope Envelope
	Ridges   Ridges
	Fallback bool
}

// NewExtractor returns an Extractor keeping every raw extremum.
func NewExtractor() Extractor {
	return Extractor{ChunkMin: DefaultChunk, ChunkMax: DefaultChunk}
}

// HighEnvelope extracts ridges from curve and interpolates through the
// maxima. ErrInsufficientRidgePoints is absorbed into Result.Fallback; any
// other error is returned.
func (e Extractor) HighEnvelope(curve, times []float64) (Result, error) {
	if len(times) != len(curve) {
		return Result{}, ErrLengthMismatch
	}

	ridges, err := ExtractRidges(curve, e.ChunkMin, e.ChunkMax, e.SplitByMean)
	if err != nil {
		return Result{}, err
	}

	env, err := Build(curve, times, ridges.High)
	if errors.Is(err, ErrInsufficientRidgePoints) {
		return Result{
			Envelope: Envelope{Values: slices.Clone(curve), Times: slices.Clone(times)},
			Ridges:   ridges,
			Fallback: true,
		}, nil
	}
	if err != nil {
		return Result{}, err
	}

	return Result{Envelope: env, Ridges: ridges}, nil
}
