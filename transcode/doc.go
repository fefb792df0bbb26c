// SPDX-License-Identifier: EPL-2.0

// Package transcode converts audio the built-in decoders cannot read into
// mono 16-bit WAV using ffmpeg.
package transcode
