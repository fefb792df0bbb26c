// SPDX-License-Identifier: EPL-2.0

// Package wire encodes feature sets for a foreign consumer and serves them
// over a stream connection.
//
// A feature set travels as two messages. The header is eight little-endian
// int32 element counts:
//
//	waveform, beat_times, rms_power, rms_power_envelope,
//	spectral_magnitude (rows*cols), time_axis, envelope_time_axis,
//	frequency_bins
//
// The payload is int32 sample_rate, float32 tempo, then every array as
// little-endian float32 in the same order, so its size is
// 8 + 4*sum(counts). The consumer allocates from the header before reading
// the payload.
//
// Server exposes transcode, load, header and payload requests. Every reply
// begins with an int32 Status; a bare StatusOK is the control ack.
package wire
