// SPDX-License-Identifier: EPL-2.0

package wire

import "errors"

var (
	// ErrNoSession is returned when there is no feature set to encode.
	ErrNoSession = errors.New("no feature set loaded")

	ErrArrayTooLarge = errors.New("array length exceeds int32")
	ErrShortBuffer   = errors.New("buffer shorter than declared")
	ErrTrailingBytes = errors.New("unexpected bytes after message")
	ErrInvalidHeader = errors.New("invalid header")

	// ErrPayloadTooLarge is returned when a header announces more than
	// MaxPayloadSize bytes.
	ErrPayloadTooLarge = errors.New("payload exceeds size limit")
)
