// SPDX-License-Identifier: EPL-2.0

// Package envelope derives the slowly varying upper bound of an energy
// curve.
//
// ExtractRidges locates local extrema and thins them chunk-wise into ridge
// points; Build fits a cubic spline through a ridge and resamples it onto an
// even time axis spanning the ridge. Extractor chains the two over the high
// ridge and falls back to the raw curve when there are too few maxima.
//
//	res, err := envelope.NewExtractor().HighEnvelope(rms, times)
//	// res.Envelope.Values, res.Envelope.Times
package envelope
