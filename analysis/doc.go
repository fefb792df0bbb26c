// SPDX-License-Identifier: EPL-2.0

// Package analysis assembles and publishes the feature set of a track.
//
// A Session runs a Pipeline (transcode, decode, feature extraction, high
// envelope) and swaps the resulting FeatureSet in atomically. Concurrent
// readers keep using the set they fetched; a failed load leaves the
// previous one in place.
//
//	s := analysis.NewSession(pipeline, analysis.WithLogger(logger))
//	if err := s.Load(ctx, "track.mp3"); errors.Is(err, analysis.ErrTranscode) {
//		// ...
//	}
//	set, ok := s.Current()
package analysis
