// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"slices"
	"testing"
)

type nopDecoder struct{ name string }

func (nopDecoder) Decode(io.Reader) (Source, error) { return nil, nil }

func TestRegistry_ForPath(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("wav", nopDecoder{name: "wav"})
	reg.Register(".MP3", nopDecoder{name: "mp3"})

	tests := []struct {
		path    string
		want    string
		wantErr error
	}{
		{path: "song.wav", want: "wav"},
		{path: "/tmp/SONG.WAV", want: "wav"},
		{path: "a/b/c.mp3", want: "mp3"},
		{path: "track.flac", wantErr: ErrUnknownFormat},
		{path: "noext", wantErr: ErrUnknownFormat},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			d, err := reg.ForPath(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ForPath(%q) error = %v, want %v", tt.path, err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if got := d.(nopDecoder).name; got != tt.want {
				t.Errorf("ForPath(%q) = %s, want %s", tt.path, got, tt.want)
			}
			if !reg.Supports(tt.path) {
				t.Errorf("Supports(%q) = false, want true", tt.path)
			}
		})
	}
}

func TestRegistry_Formats(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("ogg", nopDecoder{})
	reg.Register("aiff", nopDecoder{})
	reg.Register("wav", nopDecoder{})

	if got, want := reg.Formats(), []string{"aiff", "ogg", "wav"}; !slices.Equal(got, want) {
		t.Errorf("Formats() = %v, want %v", got, want)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	done := make(chan struct{})

	go func() {
		for range 100 {
			reg.Register("wav", nopDecoder{})
		}
		close(done)
	}()

	for range 100 {
		reg.Get("wav")
	}
	<-done
}
