// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"errors"
	"math"
	"testing"
)

func TestFloat32ToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input float32
		want  int16
	}{
		{name: "zero", input: 0.0, want: 0},
		{name: "max positive", input: 1.0, want: math.MaxInt16},
		{name: "max negative", input: -1.0, want: -math.MaxInt16},
		{name: "half positive", input: 0.5, want: 16383},
		{name: "half negative", input: -0.5, want: -16383},
		{name: "clamp over max", input: 1.5, want: math.MaxInt16},
		{name: "clamp under min", input: -100.0, want: -math.MaxInt16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Float32ToInt16(tt.input)
			if diff := math.Abs(float64(got) - float64(tt.want)); diff > 1 {
				t.Errorf("Float32ToInt16(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPCMScale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bitDepth int
		want     float32
		wantErr  error
	}{
		{bitDepth: 8, want: 128},
		{bitDepth: 16, want: 32768},
		{bitDepth: 24, want: 8388608},
		{bitDepth: 32, want: 2147483648},
		{bitDepth: 12, wantErr: ErrUnsupportedBitDepth},
	}

	for _, tt := range tests {
		got, err := PCMScale(tt.bitDepth)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("PCMScale(%d) error = %v, want %v", tt.bitDepth, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("PCMScale(%d) = %v, want %v", tt.bitDepth, got, tt.want)
		}
	}
}
