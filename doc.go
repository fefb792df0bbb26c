// SPDX-License-Identifier: EPL-2.0

// Package audfeat analyses music tracks into a fixed set of features
// (waveform, beats, RMS power and its envelope, magnitude spectrogram and
// their axes) and hands them to other processes in a compact binary form.
//
// # Supported Formats
//
// WAV, MP3, Ogg Vorbis and AIFF are decoded natively (formats/*). Anything
// else ffmpeg can read is converted to WAV first by package transcode.
//
// # Quick Start
//
// Decode a file into mono samples at the analysis rate:
//
//	samples, err := audfeat.LoadMono("track.mp3", audfeat.DefaultSampleRate)
//
// Run the whole pipeline and encode the result:
//
//	eng, err := audfeat.New(config.Default(), logger)
//	defer eng.Close()
//	if err := eng.Session.Load(ctx, "track.flac"); err != nil {
//		return err
//	}
//	set, _ := eng.Session.Current()
//	header, _ := wire.EncodeHeader(set)
//	payload, _ := wire.EncodePayload(set)
//
// # Packages
//
//   - features: STFT, RMS, onset strength, tempo and beat tracking
//   - envelope: ridge extraction and spline resampling of the RMS curve
//   - analysis: the immutable FeatureSet and the Session publishing it
//   - wire: the header/payload encoding and the socket server
//   - cache: SQLite store of finished feature sets
//   - config: .env, environment and flag settings
//
// Commands live under cmd/: audfeat analyses one file, audfeatd serves
// the wire protocol.
package audfeat
