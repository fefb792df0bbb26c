// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis through github.com/jfreymuth/oggvorbis.
//
//	f, _ := os.Open("track.ogg")
//	src, err := vorbis.Decoder{}.Decode(f)
//
// Samples come out as interleaved float32; ReadSamples requires dst to hold
// a whole number of frames.
package vorbis
