// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audfeat/audio"
)

type mockAiffReader struct {
	data   []int
	offset int
}

func (m *mockAiffReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	n := copy(buf.Data, m.data[m.offset:])
	m.offset += n
	return n, nil
}

func TestSource_ScalesByBitDepth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		scale float32
		data  []int
		want  []float32
	}{
		{name: "16-bit", scale: 32768, data: []int{16384, -32768}, want: []float32{0.5, -1}},
		{name: "24-bit", scale: 8388608, data: []int{4194304, -2097152}, want: []float32{0.5, -0.25}},
		{name: "8-bit", scale: 128, data: []int{64, -128}, want: []float32{0.5, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := &source{
				dec:        &mockAiffReader{data: tt.data},
				sampleRate: 44100,
				channels:   1,
				scale:      tt.scale,
				intBuf:     &goaudio.IntBuffer{Data: make([]int, 16)},
			}

			got, err := audio.ReadAll(src)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("decoded %d samples, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if math.Abs(float64(got[i]-tt.want[i])) > 1e-6 {
					t.Errorf("sample[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSource_ShortReadIsEOF(t *testing.T) {
	t.Parallel()

	src := &source{
		dec:      &mockAiffReader{data: []int{1, 2, 3}},
		channels: 1,
		scale:    32768,
		intBuf:   &goaudio.IntBuffer{Data: make([]int, 4)},
	}

	n, err := src.ReadSamples(make([]float32, 8))
	if n != 3 || !errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() = (%d, %v), want (3, io.EOF)", n, err)
	}
}

func TestDecoder_NotAiff(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("RIFF....WAVEfmt definitely not aiff")))
	if !errors.Is(err, ErrNotAiffFile) {
		t.Errorf("Decode() error = %v, want ErrNotAiffFile", err)
	}
}
