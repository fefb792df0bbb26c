// SPDX-License-Identifier: EPL-2.0

package wire

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/ik5/audfeat/analysis"
)

// Payload is the decoded form of a payload message.
type Payload struct {
	SampleRate int32
	Tempo      float32
	Arrays     [NumFields][]float32
}

// EncodePayload returns sample_rate, tempo and every array as
// little-endian float32, in Field order.
func EncodePayload(set *analysis.FeatureSet) ([]byte, error) {
	h, err := HeaderOf(set)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, h.PayloadSize())
	buf = byteOrder.AppendUint32(buf, uint32(int32(set.SampleRate())))
	buf = byteOrder.AppendUint32(buf, math.Float32bits(float32(set.Tempo())))

	for _, v := range set.Waveform() {
		buf = byteOrder.AppendUint32(buf, math.Float32bits(v))
	}
	for _, arr := range trailingArrays(set) {
		for _, v := range arr {
			buf = byteOrder.AppendUint32(buf, math.Float32bits(float32(v)))
		}
	}

	return buf, nil
}

// WritePayload streams the payload for set to w without materialising it.
func WritePayload(w io.Writer, set *analysis.FeatureSet) error {
	if set == nil {
		return ErrNoSession
	}
	if _, err := HeaderOf(set); err != nil {
		return err
	}

	bw := bufio.NewWriterSize(w, 64*1024)
	var word [4]byte
	put := func(u uint32) error {
		byteOrder.PutUint32(word[:], u)
		_, err := bw.Write(word[:])
		return err
	}

	if err := put(uint32(int32(set.SampleRate()))); err != nil {
		return err
	}
	if err := put(math.Float32bits(float32(set.Tempo()))); err != nil {
		return err
	}
	for _, v := range set.Waveform() {
		if err := put(math.Float32bits(v)); err != nil {
			return err
		}
	}
	for _, arr := range trailingArrays(set) {
		for _, v := range arr {
			if err := put(math.Float32bits(float32(v))); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

// trailingArrays returns the arrays that follow the waveform, in Field
// order.
func trailingArrays(set *analysis.FeatureSet) [][]float64 {
	return [][]float64{
		set.BeatTimes(),
		set.RMSPower(),
		set.RMSEnvelope(),
		set.Magnitude().Data,
		set.Times(),
		set.EnvelopeTimes(),
		set.FrequencyBins(),
	}
}

// DecodePayload parses a payload of exactly h.PayloadSize() bytes.
func DecodePayload(h Header, b []byte) (*Payload, error) {
	want := h.PayloadSize()
	switch {
	case int64(len(b)) < want:
		return nil, fmt.Errorf("%w: payload is %d bytes, want %d", ErrShortBuffer, len(b), want)
	case int64(len(b)) > want:
		return nil, fmt.Errorf("%w: payload is %d bytes, want %d", ErrTrailingBytes, len(b), want)
	}

	p := &Payload{
		SampleRate: int32(byteOrder.Uint32(b)),
		Tempo:      math.Float32frombits(byteOrder.Uint32(b[4:])),
	}

	off := payloadPrefix
	for f, n := range h {
		arr := make([]float32, n)
		for i := range arr {
			arr[i] = math.Float32frombits(byteOrder.Uint32(b[off:]))
			off += 4
		}
		p.Arrays[f] = arr
	}

	return p, nil
}

// ReadPayload reads the payload h announces from r. Arrays are read in
// bounded chunks, so memory grows with the bytes that actually arrive
// rather than with the counts a peer claims.
func ReadPayload(r io.Reader, h Header) (*Payload, error) {
	if size := h.PayloadSize(); size > MaxPayloadSize {
		return nil, fmt.Errorf("%w: header announces %d bytes, limit %d", ErrPayloadTooLarge, size, int64(MaxPayloadSize))
	}

	var prefix [payloadPrefix]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShortBuffer, err)
	}
	p := &Payload{
		SampleRate: int32(byteOrder.Uint32(prefix[:])),
		Tempo:      math.Float32frombits(byteOrder.Uint32(prefix[4:])),
	}

	buf := make([]byte, 4*readChunk)
	for f, n := range h {
		if n < 0 {
			return nil, fmt.Errorf("%w: %s count %d", ErrInvalidHeader, Field(f), n)
		}

		arr := make([]float32, 0, min(int(n), readChunk))
		for left := int(n); left > 0; {
			k := min(left, readChunk)
			chunk := buf[:4*k]
			if _, err := io.ReadFull(r, chunk); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrShortBuffer, Field(f), err)
			}
			for i := range k {
				arr = append(arr, math.Float32frombits(byteOrder.Uint32(chunk[4*i:])))
			}
			left -= k
		}
		p.Arrays[f] = arr
	}

	return p, nil
}

// FeatureSet rebuilds a FeatureSet from p. The magnitude shape is taken
// from the frequency bin and time axis counts. Beat times pushed past the
// track end by float32 rounding are clamped back onto it.
func (p *Payload) FeatureSet() (*analysis.FeatureSet, error) {
	bins := len(p.Arrays[FieldFrequencyBins])
	frames := len(p.Arrays[FieldTimes])
	if bins*frames != len(p.Arrays[FieldMagnitude]) {
		return nil, fmt.Errorf("%w: %d magnitude values for %d bins x %d frames",
			ErrInvalidHeader, len(p.Arrays[FieldMagnitude]), bins, frames)
	}

	wave := p.Arrays[FieldWaveform]
	beats := widen(p.Arrays[FieldBeatTimes])
	if p.SampleRate > 0 {
		duration := float64(len(wave)) / float64(p.SampleRate)
		for i, b := range beats {
			beats[i] = min(max(b, 0), duration)
		}
	}

	return analysis.NewFeatureSet(analysis.FeatureSetParams{
		Waveform:      wave,
		SampleRate:    int(p.SampleRate),
		Tempo:         float64(p.Tempo),
		BeatTimes:     beats,
		RMSPower:      widen(p.Arrays[FieldRMSPower]),
		RMSEnvelope:   widen(p.Arrays[FieldRMSEnvelope]),
		Magnitude:     analysis.Matrix{Rows: bins, Cols: frames, Data: widen(p.Arrays[FieldMagnitude])},
		Times:         widen(p.Arrays[FieldTimes]),
		EnvelopeTimes: widen(p.Arrays[FieldEnvelopeTimes]),
		FrequencyBins: widen(p.Arrays[FieldFrequencyBins]),
	})
}

func widen(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

// EncodeAck returns the control acknowledgement, int32 0.
func EncodeAck() []byte {
	return byteOrder.AppendUint32(nil, 0)
}
