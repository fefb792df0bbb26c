// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
)

// mockMP3Reader simulates gomp3.Decoder. chunk limits the bytes handed out
// per Read so odd splits can be exercised.
type mockMP3Reader struct {
	sampleRate int
	pcm        []byte
	offset     int
	chunk      int
	failWith   error
}

func newMockMP3Reader(rate int, samples []int16, chunk int) *mockMP3Reader {
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(s))
	}
	return &mockMP3Reader{sampleRate: rate, pcm: pcm, chunk: chunk}
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }

func (m *mockMP3Reader) Read(buf []byte) (int, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	if m.offset >= len(m.pcm) {
		return 0, io.EOF
	}

	n := min(len(buf), len(m.pcm)-m.offset)
	if m.chunk > 0 {
		n = min(n, m.chunk)
	}
	copy(buf, m.pcm[m.offset:m.offset+n])
	m.offset += n

	return n, nil
}

func drain(t *testing.T, src *source, bufLen int) []float32 {
	t.Helper()

	var out []float32
	buf := make([]float32, bufLen)
	for range 1000 {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
	t.Fatal("source never reached EOF")
	return nil
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 16384, 32767, -16384, -32768, 8192, -8192, 0}
	want := []float32{0.0, 0.5, 1.0, -0.5, -1.0, 0.25, -0.25, 0.0}

	tests := []struct {
		name  string
		chunk int
		buf   int
	}{
		{name: "whole reads", chunk: 0, buf: 8},
		{name: "odd byte splits", chunk: 3, buf: 4},
		{name: "single byte reads", chunk: 1, buf: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := &source{dec: newMockMP3Reader(8000, samples, tt.chunk), sampleRate: 8000}
			got := drain(t, src, tt.buf)

			if len(got) != len(want) {
				t.Fatalf("decoded %d samples, want %d", len(got), len(want))
			}
			for i := range got {
				if math.Abs(float64(got[i]-want[i])) > 0.01 {
					t.Errorf("sample[%d] = %v, want ≈%v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src := &source{dec: newMockMP3Reader(44100, nil, 0), sampleRate: 44100, buf: make([]byte, 8192)}

	if src.SampleRate() != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", src.SampleRate())
	}
	if src.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", src.Channels())
	}
	if src.BufSize() != 4096 {
		t.Errorf("BufSize() = %d, want 4096", src.BufSize())
	}
}

func TestSource_ReadError(t *testing.T) {
	t.Parallel()

	mock := newMockMP3Reader(8000, []int16{1, 2}, 0)
	mock.failWith = io.ErrUnexpectedEOF
	src := &source{dec: mock, sampleRate: 8000}

	_, err := src.ReadSamples(make([]float32, 4))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want wrapped io.ErrUnexpectedEOF", err)
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader([]byte("This is not MP3 data"))); err == nil {
		t.Error("Decode() error = nil, want error for invalid data")
	}
	if _, err := (Decoder{}).Decode(bytes.NewReader(nil)); err == nil {
		t.Error("Decode() error = nil, want error for empty input")
	}
}
