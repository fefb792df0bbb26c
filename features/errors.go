// SPDX-License-Identifier: EPL-2.0

package features

import "errors"

var (
	// ErrFeatureExtraction wraps every analysis failure.
	ErrFeatureExtraction = errors.New("feature extraction failed")

	ErrInvalidParams = errors.New("invalid analysis parameters")
)
