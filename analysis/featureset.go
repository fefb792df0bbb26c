// SPDX-License-Identifier: EPL-2.0

package analysis

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// Matrix is a dense row-major matrix. For the spectral magnitude rows are
// frequency bins and columns are frames.
type Matrix struct {
	Rows int
	Cols int
	Data []float64
}

// NewMatrix flattens rows into a Matrix. Every row must have the same
// length.
func NewMatrix(rows [][]float64) (Matrix, error) {
	if len(rows) == 0 {
		return Matrix{}, nil
	}

	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for r, row := range rows {
		if len(row) != cols {
			return Matrix{}, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidFeatureSet, r, len(row), cols)
		}
		data = append(data, row...)
	}

	return Matrix{Rows: len(rows), Cols: cols, Data: data}, nil
}

// At returns the element at row r, column c.
func (m Matrix) At(r, c int) float64 { return m.Data[r*m.Cols+c] }

// Row returns a view of row r. It must not be modified.
func (m Matrix) Row(r int) []float64 { return m.Data[r*m.Cols : (r+1)*m.Cols] }

// Len is Rows*Cols.
func (m Matrix) Len() int { return m.Rows * m.Cols }

// FeatureSetParams carries the raw material of a FeatureSet.
type FeatureSetParams struct {
	Waveform      []float32
	SampleRate    int
	Tempo         float64
	BeatTimes     []float64
	RMSPower      []float64
	RMSEnvelope   []float64
	Magnitude     Matrix
	Times         []float64
	EnvelopeTimes []float64
	FrequencyBins []float64
}

// FeatureSet is the immutable result of analysing one track. Slices
// returned by its accessors are shared views and must not be modified.
type FeatureSet struct {
	waveform      []float32
	sampleRate    int
	tempo         float64
	beatTimes     []float64
	rmsPower      []float64
	rmsEnvelope   []float64
	magnitude     Matrix
	times         []float64
	envelopeTimes []float64
	frequencyBins []float64
}

// NewFeatureSet validates p and takes ownership of its slices; the caller
// must not modify them afterwards.
func NewFeatureSet(p FeatureSetParams) (*FeatureSet, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	return &FeatureSet{
		waveform:      p.Waveform,
		sampleRate:    p.SampleRate,
		tempo:         p.Tempo,
		beatTimes:     p.BeatTimes,
		rmsPower:      p.RMSPower,
		rmsEnvelope:   p.RMSEnvelope,
		magnitude:     p.Magnitude,
		times:         p.Times,
		envelopeTimes: p.EnvelopeTimes,
		frequencyBins: p.FrequencyBins,
	}, nil
}

func (p FeatureSetParams) validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidFeatureSet, fmt.Sprintf(format, args...))
	}

	if p.SampleRate <= 0 {
		return invalid("sample rate %d", p.SampleRate)
	}
	if math.IsNaN(p.Tempo) || math.IsInf(p.Tempo, 0) || p.Tempo < 0 {
		return invalid("tempo %v", p.Tempo)
	}
	if len(p.Times) != len(p.RMSPower) {
		return invalid("%d rms values for %d frames", len(p.RMSPower), len(p.Times))
	}
	if len(p.RMSEnvelope) != len(p.EnvelopeTimes) {
		return invalid("%d envelope values for %d envelope times", len(p.RMSEnvelope), len(p.EnvelopeTimes))
	}

	m := p.Magnitude
	if m.Rows != len(p.FrequencyBins) || m.Cols != len(p.Times) || len(m.Data) != m.Len() {
		return invalid("magnitude is %dx%d (%d values), want %dx%d",
			m.Rows, m.Cols, len(m.Data), len(p.FrequencyBins), len(p.Times))
	}

	if !slices.IsSorted(p.Times) {
		return invalid("time axis not sorted")
	}
	if !slices.IsSorted(p.EnvelopeTimes) {
		return invalid("envelope time axis not sorted")
	}

	duration := float64(len(p.Waveform)) / float64(p.SampleRate)
	for i, b := range p.BeatTimes {
		if b < 0 || b > duration {
			return invalid("beat %d at %vs outside [0, %v]", i, b, duration)
		}
		if i > 0 && b <= p.BeatTimes[i-1] {
			return invalid("beat %d at %vs not after %vs", i, b, p.BeatTimes[i-1])
		}
	}

	return nil
}

// The accessors below return the set's own slices. Callers must not modify
// them; a published set is shared by every reader.

// Waveform returns the mono samples the features were computed from.
func (f *FeatureSet) Waveform() []float32 { return f.waveform }

// SampleRate of Waveform in Hz.
func (f *FeatureSet) SampleRate() int { return f.sampleRate }

// Tempo is the estimated tempo in BPM, 0 when none was found.
func (f *FeatureSet) Tempo() float64 { return f.tempo }

// BeatTimes returns beat positions in seconds, strictly increasing.
func (f *FeatureSet) BeatTimes() []float64 { return f.beatTimes }

// RMSPower returns one RMS value per frame, aligned with Times.
func (f *FeatureSet) RMSPower() []float64 { return f.rmsPower }

// RMSEnvelope returns the high envelope of RMSPower, aligned with
// EnvelopeTimes.
func (f *FeatureSet) RMSEnvelope() []float64 { return f.rmsEnvelope }

// Magnitude returns the spectrogram, frequency bins by frames.
func (f *FeatureSet) Magnitude() Matrix { return f.magnitude }

// Times returns the frame centers in seconds.
func (f *FeatureSet) Times() []float64 { return f.times }

// EnvelopeTimes returns the evenly spaced time axis of RMSEnvelope.
func (f *FeatureSet) EnvelopeTimes() []float64 { return f.envelopeTimes }

// FrequencyBins returns the center frequency in Hz of each Magnitude row.
func (f *FeatureSet) FrequencyBins() []float64 { return f.frequencyBins }

// Duration of the waveform in seconds.
func (f *FeatureSet) Duration() float64 {
	return float64(len(f.waveform)) / float64(f.sampleRate)
}

// PowerAt returns the RMS value of the frame closest to t.
func (f *FeatureSet) PowerAt(t float64) float64 {
	return valueAt(f.times, f.rmsPower, t)
}

// EnvelopeAt returns the envelope value closest to t.
func (f *FeatureSet) EnvelopeAt(t float64) float64 {
	return valueAt(f.envelopeTimes, f.rmsEnvelope, t)
}

func valueAt(times, values []float64, t float64) float64 {
	i := ClosestIndex(times, t)
	if i < 0 {
		return 0
	}
	return values[i]
}

// ClosestIndex returns the index of the value in the sorted slice times
// nearest to t, the lower one on a tie, or -1 when times is empty.
func ClosestIndex(times []float64, t float64) int {
	if len(times) == 0 {
		return -1
	}

	i := sort.SearchFloat64s(times, t)
	switch {
	case i == 0:
		return 0
	case i == len(times):
		return len(times) - 1
	}

	if t-times[i-1] <= times[i]-t {
		return i - 1
	}
	return i
}
