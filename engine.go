// SPDX-License-Identifier: EPL-2.0

package audfeat

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ik5/audfeat/analysis"
	"github.com/ik5/audfeat/cache"
	"github.com/ik5/audfeat/config"
	"github.com/ik5/audfeat/envelope"
	"github.com/ik5/audfeat/features"
	"github.com/ik5/audfeat/transcode"
)

// Engine bundles a Session with the resources it owns.
type Engine struct {
	Session *analysis.Session
	Gate    *transcode.Gate
	Cache   *cache.Store // nil when caching is off
}

// New builds the full pipeline described by cfg. Extra session options are
// applied after the logger and cache.
func New(cfg config.Config, logger *slog.Logger, opts ...analysis.Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	params := features.DefaultParams()
	params.FrameLength = cfg.FrameLength
	params.HopLength = cfg.HopLength
	analyzer, err := features.NewAnalyzer(params)
	if err != nil {
		return nil, err
	}

	reg := DefaultRegistry()
	gate := transcode.New(transcode.Config{
		FFmpegPath: cfg.FFmpegPath,
		SampleRate: cfg.SampleRate,
		Force:      cfg.ForceTranscode,
		Native:     reg.Supports,
	}, transcode.WithLogger(logger.With(slog.String("component", "transcode"))))

	pipeline := analysis.Pipeline{
		Transcoder: gate,
		Loader:     Loader{Registry: reg, SampleRate: cfg.SampleRate},
		Features:   analyzer,
		Envelope: envelope.Extractor{
			ChunkMin:    cfg.ChunkMin,
			ChunkMax:    cfg.ChunkMax,
			SplitByMean: cfg.SplitByMean,
		},
	}

	e := &Engine{Gate: gate}
	sessionOpts := []analysis.Option{analysis.WithLogger(logger.With(slog.String("component", "session")))}

	if cfg.CachePath != "" {
		store, err := cache.Open(cfg.CachePath, cfg.Fingerprint())
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
		e.Cache = store
		sessionOpts = append(sessionOpts, analysis.WithCache(store))
	}

	e.Session = analysis.NewSession(pipeline, append(sessionOpts, opts...)...)
	return e, nil
}

// Close removes transcoded files and closes the cache.
func (e *Engine) Close() error {
	var errs []error
	if err := e.Gate.Cleanup(); err != nil {
		errs = append(errs, err)
	}
	if e.Cache != nil {
		if err := e.Cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
