// SPDX-License-Identifier: EPL-2.0

// Package features is the DSP boundary of the analysis pipeline.
//
// Extractor is the contract the rest of the module depends on. Analyzer
// implements it: a centred, Hann-windowed STFT provides the magnitude
// spectrogram, per-frame RMS is read off the spectrum, spectral flux gives
// an onset curve, and tempo and beats come from autocorrelation and a
// dynamic-programming tracker over that curve.
//
// Times are frame centres, frame*hop/sampleRate seconds.
package features
