// SPDX-License-Identifier: EPL-2.0

// Package audio is the decoding boundary: a Source streams interleaved
// float32 samples in [-1, 1] and a Registry maps file extensions to the
// Decoder that produces one.
//
// Analysis needs the whole track in memory, so the helpers here work on
// complete buffers:
//
//	dec, err := reg.ForPath("track.ogg")
//	src, err := dec.Decode(f)
//	interleaved, err := audio.ReadAll(src)
//	mono, err := audio.Downmix(interleaved, src.Channels())
//	mono, err = audio.Resample(mono, src.SampleRate(), 22050)
//
// Resample interpolates with Catmull-Rom cubics and runs a one-pole
// low-pass first when the rate goes down.
package audio
