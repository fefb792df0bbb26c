// SPDX-License-Identifier: EPL-2.0

// Package config reads runtime settings from .env files, AUDFEAT_*
// environment variables and command line flags, in increasing priority.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const envPrefix = "AUDFEAT_"

// Config holds every tunable of the commands.
type Config struct {
	Socket  string // unix socket the daemon listens on
	TCPAddr string // optional TCP address, used instead of Socket when set

	FFmpegPath     string
	ForceTranscode bool

	SampleRate  int
	FrameLength int
	HopLength   int

	ChunkMin    int
	ChunkMax    int
	SplitByMean bool

	CachePath string // empty disables the cache

	LogLevel  string
	LogFormat string // text or json
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Socket:      "/tmp/audfeat.sock",
		FFmpegPath:  "ffmpeg",
		SampleRate:  22050,
		FrameLength: 2048,
		HopLength:   512,
		ChunkMin:    1,
		ChunkMax:    1,
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// Load applies envFiles (".env" when none are given; missing files are
// skipped) and then AUDFEAT_* variables on top of Default. Variables
// already set in the environment win over file values.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, f, err)
		}
	}

	c := Default()
	var errs []error

	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = b
		}
	}

	str("SOCKET", &c.Socket)
	str("TCP_ADDR", &c.TCPAddr)
	str("FFMPEG", &c.FFmpegPath)
	boolean("FORCE_TRANSCODE", &c.ForceTranscode)
	num("SAMPLE_RATE", &c.SampleRate)
	num("FRAME_LENGTH", &c.FrameLength)
	num("HOP_LENGTH", &c.HopLength)
	num("CHUNK_MIN", &c.ChunkMin)
	num("CHUNK_MAX", &c.ChunkMax)
	boolean("SPLIT_BY_MEAN", &c.SplitByMean)
	str("CACHE", &c.CachePath)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return c, nil
}

// RegisterFlags binds the analysis and logging settings to fs, using the
// current values as defaults. Call Validate after parsing.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.FFmpegPath, "ffmpeg", c.FFmpegPath, "ffmpeg binary")
	fs.BoolVar(&c.ForceTranscode, "force-transcode", c.ForceTranscode, "run every input through ffmpeg")
	fs.IntVar(&c.SampleRate, "rate", c.SampleRate, "analysis sample rate in Hz")
	fs.IntVar(&c.FrameLength, "frame", c.FrameLength, "STFT frame length")
	fs.IntVar(&c.HopLength, "hop", c.HopLength, "STFT hop length")
	fs.IntVar(&c.ChunkMin, "chunk-min", c.ChunkMin, "minima per envelope chunk")
	fs.IntVar(&c.ChunkMax, "chunk-max", c.ChunkMax, "maxima per envelope chunk")
	fs.BoolVar(&c.SplitByMean, "split-by-mean", c.SplitByMean, "drop extrema on the wrong side of the mean")
	fs.StringVar(&c.CachePath, "cache", c.CachePath, "sqlite cache file, empty to disable")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "text or json")
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample rate %d", c.SampleRate))
	}
	if c.FrameLength < 4 || c.FrameLength%2 != 0 {
		errs = append(errs, fmt.Errorf("frame length %d", c.FrameLength))
	}
	if c.HopLength <= 0 {
		errs = append(errs, fmt.Errorf("hop length %d", c.HopLength))
	}
	if c.ChunkMin < 1 || c.ChunkMax < 1 {
		errs = append(errs, fmt.Errorf("chunk sizes %d/%d", c.ChunkMin, c.ChunkMax))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Fingerprint identifies the settings that change analysis output.
func (c Config) Fingerprint() string {
	return fmt.Sprintf("sr=%d;frame=%d;hop=%d;chunk=%d/%d;split=%t",
		c.SampleRate, c.FrameLength, c.HopLength, c.ChunkMin, c.ChunkMax, c.SplitByMean)
}

// Listen returns the network and address the daemon binds.
func (c Config) Listen() (network, addr string) {
	if c.TCPAddr != "" {
		return "tcp", c.TCPAddr
	}
	return "unix", c.Socket
}
