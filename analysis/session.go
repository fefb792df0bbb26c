// SPDX-License-Identifier: EPL-2.0

package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ik5/audfeat/envelope"
	"github.com/ik5/audfeat/features"
)

// Transcoder turns an arbitrary input into a path the Loader can decode.
type Transcoder interface {
	Transcode(ctx context.Context, path string) (string, error)
}

// Remover is implemented by transcoders that own the files they return.
// Remove must ignore paths it did not produce.
type Remover interface {
	Remove(path string) error
}

// Loader decodes a file into mono samples at the analysis rate.
type Loader interface {
	Load(ctx context.Context, path string) ([]float32, int, error)
}

// Cache stores finished feature sets by content key.
type Cache interface {
	Key(ctx context.Context, path string) (string, error)
	Get(ctx context.Context, key string) (*FeatureSet, bool, error)
	Put(ctx context.Context, key, source string, set *FeatureSet) error
}

// Pipeline wires the stages of a load. A nil Transcoder passes paths
// through unchanged.
type Pipeline struct {
	Transcoder Transcoder
	Loader     Loader
	Features   features.Extractor
	Envelope   envelope.Extractor
}

// Session owns the current FeatureSet. Loads are serialised; readers get
// whichever set was last published and never see a partial one.
type Session struct {
	pipeline Pipeline
	logger   *slog.Logger
	cache    Cache
	progress func(Stage)

	loadMu  sync.Mutex
	current atomic.Pointer[FeatureSet]
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCache enables lookups before and stores after each load.
func WithCache(c Cache) Option {
	return func(s *Session) { s.cache = c }
}

// WithProgress registers fn to be called as each stage starts. It runs on
// the loading goroutine.
func WithProgress(fn func(Stage)) Option {
	return func(s *Session) { s.progress = fn }
}

// NewSession returns a Session with no current set.
func NewSession(p Pipeline, opts ...Option) *Session {
	s := &Session{
		pipeline: p,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the published set, if any.
func (s *Session) Current() (*FeatureSet, bool) {
	set := s.current.Load()
	return set, set != nil
}

// Load analyses path and publishes the result. On error the previously
// published set stays current and a *LoadError is returned.
func (s *Session) Load(ctx context.Context, path string) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	log := s.logger.With(slog.String("load_id", uuid.NewString()), slog.String("path", path))
	start := time.Now()

	set, key := s.fromCache(ctx, log, path)
	if set == nil {
		var err error
		set, err = s.build(ctx, log, path)
		if err != nil {
			log.ErrorContext(ctx, "load failed", slog.Any("error", err))
			return err
		}
	}

	s.report(StagePublish)
	s.current.Store(set)
	log.InfoContext(ctx, "feature set published",
		slog.Float64("tempo", set.Tempo()),
		slog.Int("beats", len(set.BeatTimes())),
		slog.Int("frames", len(set.Times())),
		slog.Duration("elapsed", time.Since(start)))

	if key != "" && s.cache != nil {
		if err := s.cache.Put(ctx, key, path, set); err != nil {
			log.WarnContext(ctx, "cache store failed", slog.Any("error", err))
		}
	}

	return nil
}

// fromCache returns a cached set, or nil plus the key to store under once
// the set is built. Cache failures only cost a rebuild.
func (s *Session) fromCache(ctx context.Context, log *slog.Logger, path string) (*FeatureSet, string) {
	if s.cache == nil {
		return nil, ""
	}
	s.report(StageCache)

	key, err := s.cache.Key(ctx, path)
	if err != nil {
		log.WarnContext(ctx, "cache key failed", slog.Any("error", err))
		return nil, ""
	}

	set, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		log.WarnContext(ctx, "cache lookup failed", slog.Any("error", err))
		return nil, key
	case ok:
		log.DebugContext(ctx, "cache hit", slog.String("key", key))
		return set, ""
	}

	return nil, key
}

func (s *Session) build(ctx context.Context, log *slog.Logger, path string) (*FeatureSet, error) {
	fail := func(stage Stage, err error) error {
		return &LoadError{Stage: stage, Path: path, Err: err}
	}

	if s.pipeline.Loader == nil {
		return nil, fail(StageDecode, ErrNoLoader)
	}
	if s.pipeline.Features == nil {
		return nil, fail(StageFeatures, ErrNoExtractor)
	}

	s.report(StageTranscode)
	resolved := path
	if s.pipeline.Transcoder != nil {
		var err error
		if resolved, err = s.pipeline.Transcoder.Transcode(ctx, path); err != nil {
			return nil, fail(StageTranscode, err)
		}
	}
	log.DebugContext(ctx, "input resolved", slog.String("resolved", resolved))

	s.report(StageDecode)
	samples, rate, err := s.pipeline.Loader.Load(ctx, resolved)
	if resolved != path {
		s.release(ctx, log, resolved)
	}
	if err != nil {
		return nil, fail(StageDecode, err)
	}

	s.report(StageFeatures)
	res, err := s.pipeline.Features.Analyze(ctx, samples, rate)
	if err != nil {
		return nil, fail(StageFeatures, err)
	}

	s.report(StageEnvelope)
	env, err := s.pipeline.Envelope.HighEnvelope(res.RMS, res.Times)
	if err != nil {
		return nil, fail(StageEnvelope, err)
	}
	if env.Fallback {
		log.WarnContext(ctx, "too few ridge points, using raw rms as envelope",
			slog.Int("ridge_points", len(env.Ridges.High)),
			slog.Any("error", envelope.ErrInsufficientRidgePoints))
	}

	s.report(StageBuild)
	mag, err := NewMatrix(res.Magnitude)
	if err != nil {
		return nil, fail(StageBuild, err)
	}

	set, err := NewFeatureSet(FeatureSetParams{
		Waveform:      samples,
		SampleRate:    rate,
		Tempo:         res.Tempo,
		BeatTimes:     res.BeatTimes,
		RMSPower:      res.RMS,
		RMSEnvelope:   env.Envelope.Values,
		Magnitude:     mag,
		Times:         res.Times,
		EnvelopeTimes: env.Envelope.Times,
		FrequencyBins: res.FrequencyBins,
	})
	if err != nil {
		return nil, fail(StageBuild, fmt.Errorf("assemble: %w", err))
	}

	return set, nil
}

// release drops a file the transcoder converted for this load only.
func (s *Session) release(ctx context.Context, log *slog.Logger, path string) {
	r, ok := s.pipeline.Transcoder.(Remover)
	if !ok {
		return
	}
	if err := r.Remove(path); err != nil {
		log.WarnContext(ctx, "remove converted file", slog.String("resolved", path), slog.Any("error", err))
	}
}

func (s *Session) report(stage Stage) {
	if s.progress != nil {
		s.progress(stage)
	}
}
