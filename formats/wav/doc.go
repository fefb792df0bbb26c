// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and writes PCM WAV files through github.com/go-audio/wav.
//
// The decoder walks the RIFF chunk list instead of assuming the canonical
// 44-byte header, so files produced by ffmpeg (which add LIST/INFO chunks)
// decode correctly. 8, 16, 24 and 32-bit integer PCM is supported; samples
// are normalised to float32 in [-1, 1).
//
//	f, _ := os.Open("track.wav")
//	src, err := wav.Decoder{}.Decode(f)
//
// Write produces mono 16-bit PCM; the audfeat command uses it to export the
// analysed waveform next to the feature stream:
//
//	f, _ := os.Create("out.wav")
//	err := wav.Write(f, 22050, samples)
package wav
