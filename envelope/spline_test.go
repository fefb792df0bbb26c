// SPDX-License-Identifier: EPL-2.0

package envelope

import (
	"errors"
	"math"
	"testing"

	"github.com/ik5/audfeat/internal/audiotest"
)

func axis(n int, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * step
	}
	return out
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()

	curve := []float64{0, 1, 0, 2, 0, 3, 0, 4, 0}
	times := axis(len(curve), 0.5)

	tests := []struct {
		name  string
		times []float64
		ridge []int
		want  error
	}{
		{"three points", times, []int{1, 3, 5}, ErrInsufficientRidgePoints},
		{"empty ridge", times, nil, ErrInsufficientRidgePoints},
		{"time axis too short", times[:4], []int{1, 3, 5, 7}, ErrLengthMismatch},
		{"index past end", times, []int{1, 3, 5, 9}, ErrRidgeOutOfRange},
		{"negative index", times, []int{-1, 3, 5, 7}, ErrRidgeOutOfRange},
		{"unsorted ridge", times, []int{1, 5, 3, 7}, ErrRidgeNotSorted},
		{"flat time axis", make([]float64, len(curve)), []int{1, 3, 5, 7}, ErrSplineFit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Build(curve, tt.times, tt.ridge)
			if !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuildAxis(t *testing.T) {
	t.Parallel()

	curve := audiotest.Bumps(120, 6)
	times := axis(len(curve), 512.0/22050.0)
	ridge := []int{10, 30, 50, 70, 90, 110}

	env, err := Build(curve, times, ridge)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(env.Values) != len(curve) || len(env.Times) != len(curve) {
		t.Fatalf("lengths = %d/%d, want %d", len(env.Values), len(env.Times), len(curve))
	}
	if env.Times[0] != times[10] {
		t.Errorf("first time = %v, want %v", env.Times[0], times[10])
	}
	if last := env.Times[len(env.Times)-1]; last != times[110] {
		t.Errorf("last time = %v, want %v", last, times[110])
	}

	step := env.Times[1] - env.Times[0]
	for k := 1; k < len(env.Times); k++ {
		if d := env.Times[k] - env.Times[k-1]; math.Abs(d-step) > 1e-12 {
			t.Fatalf("uneven step at %d: %v vs %v", k, d, step)
		}
	}

	// every ridge value is 1, so the spline is flat
	for k, v := range env.Values {
		if math.Abs(v-1) > 1e-9 {
			t.Fatalf("Values[%d] = %v, want 1", k, v)
		}
	}
}

func TestBuildLinearCurve(t *testing.T) {
	t.Parallel()

	times := axis(20, 0.1)
	curve := make([]float64, len(times))
	for i, x := range times {
		curve[i] = 2*x + 1
	}

	env, err := Build(curve, times, []int{0, 5, 10, 19})
	if err != nil {
		t.Fatal(err)
	}

	for k, x := range env.Times {
		if want := 2*x + 1; math.Abs(env.Values[k]-want) > 1e-9 {
			t.Errorf("Values[%d] = %v, want %v", k, env.Values[k], want)
		}
	}
}

func TestHighEnvelope(t *testing.T) {
	t.Parallel()

	curve := audiotest.Bumps(200, 10)
	times := axis(len(curve), 0.01)

	res, err := NewExtractor().HighEnvelope(curve, times)
	if err != nil {
		t.Fatalf("HighEnvelope() error = %v", err)
	}
	if res.Fallback {
		t.Fatal("unexpected fallback")
	}
	if len(res.Ridges.High) != 10 {
		t.Errorf("high ridge has %d points, want 10", len(res.Ridges.High))
	}
	if res.Envelope.Times[0] != times[10] || res.Envelope.Times[len(curve)-1] != times[190] {
		t.Errorf("envelope spans [%v, %v], want [%v, %v]",
			res.Envelope.Times[0], res.Envelope.Times[len(curve)-1], times[10], times[190])
	}
}

func TestHighEnvelopeFallback(t *testing.T) {
	t.Parallel()

	curve := []float64{0, 1, 0, 2, 0, 3, 0}
	times := axis(len(curve), 0.1)

	res, err := NewExtractor().HighEnvelope(curve, times)
	if err != nil {
		t.Fatalf("HighEnvelope() error = %v", err)
	}
	if !res.Fallback {
		t.Fatal("expected fallback with three maxima")
	}
	for i := range curve {
		if res.Envelope.Values[i] != curve[i] || res.Envelope.Times[i] != times[i] {
			t.Fatalf("fallback differs from raw curve at %d", i)
		}
	}

	res.Envelope.Values[0] = 42
	if curve[0] == 42 {
		t.Error("fallback aliases the input curve")
	}
}

func TestHighEnvelopeInvalidChunk(t *testing.T) {
	t.Parallel()

	_, err := Extractor{ChunkMin: 1}.HighEnvelope([]float64{0, 1, 0}, []float64{0, 1, 2})
	if !errors.Is(err, ErrInvalidChunkSize) {
		t.Errorf("error = %v, want ErrInvalidChunkSize", err)
	}
}
