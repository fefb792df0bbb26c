// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes integer PCM AIFF through github.com/go-audio/aiff.
//
//	f, _ := os.Open("track.aiff")
//	src, err := aiff.Decoder{}.Decode(f)
//
// go-audio needs to seek, so non-seekable readers are buffered in memory
// first.
package aiff
