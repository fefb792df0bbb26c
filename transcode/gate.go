// SPDX-License-Identifier: EPL-2.0

package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Config controls when and how inputs are converted.
type Config struct {
	// FFmpegPath is the binary name or path; "ffmpeg" when empty.
	FFmpegPath string

	// SampleRate of the produced WAV; 0 keeps the source rate.
	SampleRate int

	// Force converts even inputs Native accepts.
	Force bool

	// Native reports whether a path can be decoded without conversion.
	// When nil every input is converted.
	Native func(path string) bool
}

// Gate converts inputs the decoders cannot read into mono 16-bit WAV files
// in a private temporary directory. The converted path is returned to the
// caller and never remembered, so concurrent users cannot see each other's
// files.
type Gate struct {
	cfg      Config
	executor CommandExecutor
	lookPath func(string) (string, error)
	logger   *slog.Logger

	mu  sync.Mutex
	dir string
}

// Option configures a Gate.
type Option func(*Gate)

func WithExecutor(e CommandExecutor) Option {
	return func(g *Gate) { g.executor = e }
}

// WithLookPath replaces exec.LookPath for locating ffmpeg.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(g *Gate) { g.lookPath = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// New returns a Gate. Call Cleanup to remove converted files.
func New(cfg Config, opts ...Option) *Gate {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}

	g := &Gate{
		cfg:      cfg,
		executor: DefaultCommandExecutor{},
		lookPath: exec.LookPath,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Transcode returns a decodable path for input: input itself when it is
// natively supported, otherwise a freshly converted WAV.
func (g *Gate) Transcode(ctx context.Context, input string) (string, error) {
	info, err := os.Stat(input)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %s", ErrInputNotFound, input)
	case err != nil:
		return "", fmt.Errorf("%w: %w", ErrTranscode, err)
	case !info.Mode().IsRegular():
		return "", fmt.Errorf("%w: %s is not a regular file", ErrInputNotFound, input)
	}

	if g.Owns(input) {
		g.logger.DebugContext(ctx, "already converted", slog.String("path", input))
		return input, nil
	}

	if !g.cfg.Force && g.cfg.Native != nil && g.cfg.Native(input) {
		g.logger.DebugContext(ctx, "native input, no conversion", slog.String("path", input))
		return input, nil
	}

	bin, err := g.lookPath(g.cfg.FFmpegPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscoderMissing, err)
	}

	dir, err := g.workDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscode, err)
	}
	output := filepath.Join(dir, uuid.NewString()+".wav")

	b := NewCommandBuilder(bin).
		WithInputFile(input).
		DisableVideo().
		WithChannels(1).
		WithSampleRate(g.cfg.SampleRate).
		WithOutputCodec("pcm_s16le").
		WithOutputFormat("wav").
		WithOutputFile(output)

	g.logger.DebugContext(ctx, "transcoding", slog.String("cmd", b.String()))

	var stderr bytes.Buffer
	cmd := g.executor.Command(ctx, bin, b.Build()...)
	cmd.SetStderr(&stderr)

	if err := cmd.Run(); err != nil {
		_ = os.Remove(output)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s: %w: %s", ErrTranscode, input, err, msg)
		}
		return "", fmt.Errorf("%w: %s: %w", ErrTranscode, input, err)
	}

	if info, err := os.Stat(output); err != nil || info.Size() == 0 {
		_ = os.Remove(output)
		return "", fmt.Errorf("%w: %s: ffmpeg produced no output", ErrTranscode, input)
	}

	g.logger.InfoContext(ctx, "transcoded", slog.String("input", input), slog.String("output", output))
	return output, nil
}

func (g *Gate) workDir() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.dir == "" {
		dir, err := os.MkdirTemp("", "audfeat-")
		if err != nil {
			return "", err
		}
		if g.dir, err = filepath.Abs(dir); err != nil {
			_ = os.RemoveAll(dir)
			return "", err
		}
	}
	return g.dir, nil
}

// Owns reports whether path is a file this Gate converted.
func (g *Gate) Owns(path string) bool {
	g.mu.Lock()
	dir := g.dir
	g.mu.Unlock()

	if dir == "" || path == "" {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return filepath.Dir(abs) == dir
}

// Remove deletes a converted file once its reader is done with it. Paths
// the Gate did not produce are left alone.
func (g *Gate) Remove(path string) error {
	if !g.Owns(path) {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrTranscode, err)
	}
	g.logger.Debug("converted file removed", slog.String("path", path))
	return nil
}

// Cleanup removes every file the Gate produced.
func (g *Gate) Cleanup() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.dir == "" {
		return nil
	}
	err := os.RemoveAll(g.dir)
	g.dir = ""
	return err
}
