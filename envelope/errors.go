// SPDX-License-Identifier: EPL-2.0

package envelope

import "errors"

var (
	// ErrInsufficientRidgePoints is returned by Build when fewer than
	// MinRidgePoints control points are available. It is recoverable: use
	// the raw curve or retry with smaller chunk sizes.
	ErrInsufficientRidgePoints = errors.New("not enough ridge points for a cubic fit")

	ErrInvalidChunkSize = errors.New("chunk size must be at least 1")
	ErrLengthMismatch   = errors.New("curve and time axis lengths differ")
	ErrRidgeOutOfRange  = errors.New("ridge index outside the curve")
	ErrRidgeNotSorted   = errors.New("ridge indices must be strictly increasing")
	ErrSplineFit        = errors.New("spline fit failed")
)
