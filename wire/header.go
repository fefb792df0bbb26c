// SPDX-License-Identifier: EPL-2.0

package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/ik5/audfeat/analysis"
)

// Field identifies one array of the message, in wire order.
type Field int

const (
	FieldWaveform Field = iota
	FieldBeatTimes
	FieldRMSPower
	FieldRMSEnvelope
	FieldMagnitude
	FieldTimes
	FieldEnvelopeTimes
	FieldFrequencyBins

	NumFields = 8
)

var fieldNames = [NumFields]string{
	"waveform",
	"beat_times",
	"rms_power",
	"rms_power_envelope",
	"spectral_magnitude",
	"time_axis",
	"envelope_time_axis",
	"frequency_bins",
}

func (f Field) String() string {
	if f < 0 || f >= NumFields {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

const (
	// HeaderSize is the encoded size of a Header.
	HeaderSize = NumFields * 4

	// payloadPrefix covers sample_rate and tempo.
	payloadPrefix = 8

	// MaxPayloadSize bounds the payload ReadPayload accepts from a peer,
	// about two hours of audio at the default analysis settings.
	MaxPayloadSize = 2 << 30

	// readChunk is how many float32 values ReadPayload reads at a time.
	readChunk = 64 * 1024
)

var byteOrder = binary.LittleEndian

// Header holds the element count of every array, indexed by Field. The
// spectral magnitude count is rows*cols.
type Header [NumFields]int32

// HeaderOf computes the header describing set.
func HeaderOf(set *analysis.FeatureSet) (Header, error) {
	if set == nil {
		return Header{}, ErrNoSession
	}

	lens := [NumFields]int{
		FieldWaveform:      len(set.Waveform()),
		FieldBeatTimes:     len(set.BeatTimes()),
		FieldRMSPower:      len(set.RMSPower()),
		FieldRMSEnvelope:   len(set.RMSEnvelope()),
		FieldMagnitude:     set.Magnitude().Len(),
		FieldTimes:         len(set.Times()),
		FieldEnvelopeTimes: len(set.EnvelopeTimes()),
		FieldFrequencyBins: len(set.FrequencyBins()),
	}

	var h Header
	for f, n := range lens {
		if n > math.MaxInt32 {
			return Header{}, fmt.Errorf("%w: %s has %d elements", ErrArrayTooLarge, Field(f), n)
		}
		h[f] = int32(n)
	}
	return h, nil
}

// Total is the sum of all counts.
func (h Header) Total() int64 {
	var sum int64
	for _, n := range h {
		sum += int64(n)
	}
	return sum
}

// PayloadSize is the encoded size of the payload h announces.
func (h Header) PayloadSize() int64 {
	return payloadPrefix + 4*h.Total()
}

// MarshalBinary encodes h as eight little-endian int32 values.
func (h Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	for i, n := range h {
		byteOrder.PutUint32(buf[i*4:], uint32(n))
	}
	return buf, nil
}

// EncodeHeader returns the 32-byte header for set.
func EncodeHeader(set *analysis.FeatureSet) ([]byte, error) {
	h, err := HeaderOf(set)
	if err != nil {
		return nil, err
	}
	return h.MarshalBinary()
}

// WriteHeader writes the header for set to w.
func WriteHeader(w io.Writer, set *analysis.FeatureSet) error {
	buf, err := EncodeHeader(set)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// DecodeHeader parses exactly HeaderSize bytes.
func DecodeHeader(b []byte) (Header, error) {
	switch {
	case len(b) < HeaderSize:
		return Header{}, fmt.Errorf("%w: header is %d bytes, want %d", ErrShortBuffer, len(b), HeaderSize)
	case len(b) > HeaderSize:
		return Header{}, fmt.Errorf("%w: header is %d bytes, want %d", ErrTrailingBytes, len(b), HeaderSize)
	}

	var h Header
	for i := range h {
		h[i] = int32(byteOrder.Uint32(b[i*4:]))
		if h[i] < 0 {
			return Header{}, fmt.Errorf("%w: %s count %d", ErrInvalidHeader, Field(i), h[i])
		}
	}
	return h, nil
}

// ReadHeader reads one header from r.
func ReadHeader(r io.Reader) (Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrShortBuffer, err)
	}
	return DecodeHeader(buf)
}
