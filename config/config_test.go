// SPDX-License-Identifier: EPL-2.0

package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutEnvFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.NoError(t, c.Validate())
}

func TestLoadEnvFileAndOverrides(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"AUDFEAT_SAMPLE_RATE=44100\n"+
			"AUDFEAT_SPLIT_BY_MEAN=true\n"+
			"AUDFEAT_CACHE=/var/cache/audfeat.db\n"+
			"AUDFEAT_CHUNK_MAX=3\n"), 0o600))

	t.Setenv("AUDFEAT_CHUNK_MAX", "5") // process env beats the file
	t.Setenv("AUDFEAT_TCP_ADDR", "127.0.0.1:7070")
	t.Cleanup(func() {
		for _, k := range []string{"AUDFEAT_SAMPLE_RATE", "AUDFEAT_SPLIT_BY_MEAN", "AUDFEAT_CACHE"} {
			_ = os.Unsetenv(k)
		}
	})

	c, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, 44100, c.SampleRate)
	assert.True(t, c.SplitByMean)
	assert.Equal(t, "/var/cache/audfeat.db", c.CachePath)
	assert.Equal(t, 5, c.ChunkMax)

	network, addr := c.Listen()
	assert.Equal(t, "tcp", network)
	assert.Equal(t, "127.0.0.1:7070", addr)
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("AUDFEAT_HOP_LENGTH", "lots")
	t.Setenv("AUDFEAT_FORCE_TRANSCODE", "maybe")

	_, err := Load(filepath.Join(t.TempDir(), "none.env"))
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "AUDFEAT_HOP_LENGTH")
	assert.Contains(t, err.Error(), "AUDFEAT_FORCE_TRANSCODE")
}

func TestFlagsOverlay(t *testing.T) {
	t.Parallel()

	c := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-rate", "16000", "-chunk-min", "2", "-log-format", "json"}))

	assert.Equal(t, 16000, c.SampleRate)
	assert.Equal(t, 2, c.ChunkMin)
	assert.Equal(t, "json", c.LogFormat)
	assert.Equal(t, 2048, c.FrameLength)
	assert.NoError(t, c.Validate())

	network, addr := c.Listen()
	assert.Equal(t, "unix", network)
	assert.Equal(t, "/tmp/audfeat.sock", addr)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	c := Default()
	c.FrameLength = 1025
	c.ChunkMin = 0
	c.LogFormat = "xml"

	err := c.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "frame length 1025")
	assert.Contains(t, err.Error(), "chunk sizes 0/1")
	assert.Contains(t, err.Error(), `log format "xml"`)
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a := Default()
	b := Default()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.HopLength = 256
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())

	b = Default()
	b.LogLevel = "debug"
	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "logging does not affect analysis")
}
