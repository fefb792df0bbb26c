// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 through github.com/hajimehoshi/go-mp3.
//
// go-mp3 always produces interleaved stereo 16-bit PCM, so the returned
// source reports two channels regardless of the stream's channel mode;
// mono files come out duplicated on both sides and downmix back losslessly.
//
//	f, _ := os.Open("track.mp3")
//	src, err := mp3.Decoder{}.Decode(f)
package mp3
