// SPDX-License-Identifier: EPL-2.0

package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrTranscode reports that the input could not be converted into a
	// decodable file.
	ErrTranscode = errors.New("transcode failed")

	// ErrFeatureExtraction reports a failure anywhere between decoding and
	// assembling the feature set.
	ErrFeatureExtraction = errors.New("feature extraction failed")

	ErrInvalidFeatureSet = errors.New("invalid feature set")
	ErrNoLoader          = errors.New("pipeline has no loader")
	ErrNoExtractor       = errors.New("pipeline has no feature extractor")
)

// LoadError is returned by Session.Load. It matches ErrTranscode when the
// transcode stage failed and ErrFeatureExtraction for every later stage.
type LoadError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %q: %s: %v", e.Path, e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool {
	switch target {
	case ErrTranscode:
		return e.Stage == StageTranscode
	case ErrFeatureExtraction:
		return e.Stage != StageTranscode
	}
	return false
}
