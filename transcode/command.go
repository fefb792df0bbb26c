// SPDX-License-Identifier: EPL-2.0

package transcode

import (
	"strconv"
	"strings"
)

// CommandBuilder builds ffmpeg arguments for a file to file conversion.
type CommandBuilder struct {
	ffmpegPath string
	globalOpts []string
	input      string
	outputOpts []string
	sampleRate int
	channels   int
	output     string
}

// NewCommandBuilder creates a builder for the given ffmpeg binary. Banner
// and non-error logging are off and existing outputs are overwritten.
func NewCommandBuilder(ffmpegPath string) *CommandBuilder {
	return &CommandBuilder{
		ffmpegPath: ffmpegPath,
		globalOpts: []string{"-hide_banner", "-loglevel", "error", "-nostdin", "-y"},
	}
}

func (b *CommandBuilder) WithInputFile(path string) *CommandBuilder {
	b.input = path
	return b
}

func (b *CommandBuilder) WithOutputFile(path string) *CommandBuilder {
	b.output = path
	return b
}

// DisableVideo drops cover art and other video streams
func (b *CommandBuilder) DisableVideo() *CommandBuilder {
	b.outputOpts = append(b.outputOpts, "-vn")
	return b
}

func (b *CommandBuilder) WithChannels(n int) *CommandBuilder {
	b.channels = n
	return b
}

func (b *CommandBuilder) WithSampleRate(rate int) *CommandBuilder {
	b.sampleRate = rate
	return b
}

func (b *CommandBuilder) WithOutputCodec(codec string) *CommandBuilder {
	b.outputOpts = append(b.outputOpts, "-c:a", codec)
	return b
}

func (b *CommandBuilder) WithOutputFormat(format string) *CommandBuilder {
	b.outputOpts = append(b.outputOpts, "-f", format)
	return b
}

// Build returns the argument list, without the binary.
func (b *CommandBuilder) Build() []string {
	args := make([]string, 0, len(b.globalOpts)+len(b.outputOpts)+7)
	args = append(args, b.globalOpts...)
	args = append(args, "-i", b.input)

	if b.channels > 0 {
		args = append(args, "-ac", strconv.Itoa(b.channels))
	}
	if b.sampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(b.sampleRate))
	}

	args = append(args, b.outputOpts...)
	return append(args, b.output)
}

// String renders the command line for logs.
func (b *CommandBuilder) String() string {
	return b.ffmpegPath + " " + strings.Join(b.Build(), " ")
}
