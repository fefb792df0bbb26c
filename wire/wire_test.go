// SPDX-License-Identifier: EPL-2.0

package wire

import (
	"bytes"
	"math"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audfeat/analysis"
)

// testSet builds the feature set with counts [100,4,10,10,50,10,10,5]:
// one second at 100 Hz, 10 frames of 5 bins. Values are offset by base so
// sets can be told apart.
func testSet(t *testing.T, base float64) *analysis.FeatureSet {
	t.Helper()

	seq := func(n int, step float64) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = base + float64(i)*step
		}
		return out
	}

	wave := make([]float32, 100)
	for i := range wave {
		wave[i] = float32(base) + float32(i)/100
	}

	mag := seq(50, 0.5)
	set, err := analysis.NewFeatureSet(analysis.FeatureSetParams{
		Waveform:      wave,
		SampleRate:    100,
		Tempo:         120 + base,
		BeatTimes:     []float64{0.1, 0.35, 0.6, 0.85},
		RMSPower:      seq(10, 0.01),
		RMSEnvelope:   seq(10, 0.02),
		Magnitude:     analysis.Matrix{Rows: 5, Cols: 10, Data: mag},
		Times:         seq(10, 0.1),
		EnvelopeTimes: seq(10, 0.05),
		FrequencyBins: []float64{0, 10, 20, 30, 40},
	})
	require.NoError(t, err)
	return set
}

func TestEncodeHeader(t *testing.T) {
	t.Parallel()

	buf, err := EncodeHeader(testSet(t, 0))
	require.NoError(t, err)
	require.Len(t, buf, HeaderSize)

	want := []byte{
		100, 0, 0, 0,
		4, 0, 0, 0,
		10, 0, 0, 0,
		10, 0, 0, 0,
		50, 0, 0, 0,
		10, 0, 0, 0,
		10, 0, 0, 0,
		5, 0, 0, 0,
	}
	assert.Equal(t, want, buf)

	h, err := DecodeHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, Header{100, 4, 10, 10, 50, 10, 10, 5}, h)
	assert.Equal(t, int64(804), h.PayloadSize())
}

func TestEncodePayload(t *testing.T) {
	t.Parallel()

	set := testSet(t, 0)
	buf, err := EncodePayload(set)
	require.NoError(t, err)
	require.Len(t, buf, 804)

	h, err := HeaderOf(set)
	require.NoError(t, err)

	p, err := DecodePayload(h, buf)
	require.NoError(t, err)
	assert.Equal(t, int32(100), p.SampleRate)
	assert.Equal(t, float32(120), p.Tempo)
	assert.Equal(t, set.Waveform(), p.Arrays[FieldWaveform])
	assert.Equal(t, []float32{0.1, 0.35, 0.6, 0.85}, p.Arrays[FieldBeatTimes])
	assert.Equal(t, float32(24.5), p.Arrays[FieldMagnitude][49])
	assert.Equal(t, []float32{0, 10, 20, 30, 40}, p.Arrays[FieldFrequencyBins])

	var streamed bytes.Buffer
	require.NoError(t, WritePayload(&streamed, set))
	assert.Equal(t, buf, streamed.Bytes())

	var header bytes.Buffer
	require.NoError(t, WriteHeader(&header, set))
	assert.Len(t, header.Bytes(), HeaderSize)
}

func TestEncodeNoSession(t *testing.T) {
	t.Parallel()

	_, err := EncodeHeader(nil)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = EncodePayload(nil)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.ErrorIs(t, WritePayload(&bytes.Buffer{}, nil), ErrNoSession)
	assert.ErrorIs(t, WriteHeader(&bytes.Buffer{}, nil), ErrNoSession)
}

func TestEncodeAck(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []byte{0, 0, 0, 0}, EncodeAck())
}

func TestDecodeRejects(t *testing.T) {
	t.Parallel()

	_, err := DecodeHeader(make([]byte, 31))
	assert.ErrorIs(t, err, ErrShortBuffer)
	_, err = DecodeHeader(make([]byte, 33))
	assert.ErrorIs(t, err, ErrTrailingBytes)

	neg, _ := Header{-1}.MarshalBinary()
	_, err = DecodeHeader(neg)
	assert.ErrorIs(t, err, ErrInvalidHeader)

	h := Header{1, 0, 0, 0, 0, 0, 0, 0}
	_, err = DecodePayload(h, make([]byte, 11))
	assert.ErrorIs(t, err, ErrShortBuffer)
	_, err = DecodePayload(h, make([]byte, 13))
	assert.ErrorIs(t, err, ErrTrailingBytes)

	_, err = ReadHeader(bytes.NewReader(make([]byte, 10)))
	assert.ErrorIs(t, err, ErrShortBuffer)
	_, err = ReadPayload(bytes.NewReader(make([]byte, 10)), h)
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestReadPayloadLimits(t *testing.T) {
	var huge Header
	for i := range huge {
		huge[i] = math.MaxInt32
	}
	_, err := ReadPayload(bytes.NewReader(nil), huge)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)

	// a 1 GiB announcement backed by 1 KiB of data fails without
	// allocating the announced size
	lying := Header{1 << 28}
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err = ReadPayload(bytes.NewReader(make([]byte, 1024)), lying)
	runtime.ReadMemStats(&after)

	assert.ErrorIs(t, err, ErrShortBuffer)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(16<<20))
}

func TestReadPayloadAcrossChunks(t *testing.T) {
	t.Parallel()

	n := 2*readChunk + 3
	h := Header{int32(n), 0, 0, 0, 0, 0, 0, 2}

	var buf bytes.Buffer
	buf.Write(byteOrder.AppendUint32(nil, 22050))
	buf.Write(byteOrder.AppendUint32(nil, math.Float32bits(128)))
	for i := range n {
		buf.Write(byteOrder.AppendUint32(nil, math.Float32bits(float32(i))))
	}
	buf.Write(byteOrder.AppendUint32(nil, math.Float32bits(0)))
	buf.Write(byteOrder.AppendUint32(nil, math.Float32bits(11025)))

	want, err := DecodePayload(h, buf.Bytes())
	require.NoError(t, err)

	got, err := ReadPayload(bytes.NewReader(buf.Bytes()), h)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Len(t, got.Arrays[FieldWaveform], n)
	assert.Equal(t, float32(n-1), got.Arrays[FieldWaveform][n-1])
	assert.Equal(t, []float32{0, 11025}, got.Arrays[FieldFrequencyBins])
}

func TestPayloadFeatureSet(t *testing.T) {
	t.Parallel()

	set := testSet(t, 0)
	var buf bytes.Buffer
	require.NoError(t, WriteHeader(&buf, set))
	require.NoError(t, WritePayload(&buf, set))

	h, err := ReadHeader(&buf)
	require.NoError(t, err)
	p, err := ReadPayload(&buf, h)
	require.NoError(t, err)
	assert.Zero(t, buf.Len())

	got, err := p.FeatureSet()
	require.NoError(t, err)
	assert.Equal(t, set.SampleRate(), got.SampleRate())
	assert.Equal(t, 5, got.Magnitude().Rows)
	assert.Equal(t, 10, got.Magnitude().Cols)
	assert.InDeltaSlice(t, set.RMSEnvelope(), got.RMSEnvelope(), 1e-6)
	assert.InDeltaSlice(t, set.BeatTimes(), got.BeatTimes(), 1e-6)

	p.Arrays[FieldMagnitude] = p.Arrays[FieldMagnitude][:49]
	_, err = p.FeatureSet()
	assert.ErrorIs(t, err, ErrInvalidHeader)
}

func TestFieldString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "rms_power_envelope", FieldRMSEnvelope.String())
	assert.Equal(t, "field(9)", Field(9).String())
	assert.Equal(t, "payload", OpPayload.String())
	assert.Equal(t, "no session", StatusNoSession.String())
}
