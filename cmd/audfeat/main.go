// SPDX-License-Identifier: EPL-2.0

// Command audfeat analyses one audio file and writes the encoded feature
// set (header followed by payload) to a file or stdout.
//
//	audfeat [flags] <input>
//
// With -remote the analysis runs in an audfeatd instance instead of in
// process.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/mdobak/go-xerrors"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/ik5/audfeat"
	"github.com/ik5/audfeat/analysis"
	"github.com/ik5/audfeat/config"
	"github.com/ik5/audfeat/formats/wav"
	"github.com/ik5/audfeat/internal/logging"
	"github.com/ik5/audfeat/wire"
)

type options struct {
	output     string
	headerOnly bool
	summary    bool
	exportWav  string
	remote     string
	quiet      bool
	envFile    string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, opts, input, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, "audfeat:", err)
		return 2
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(stderr, "audfeat:", err)
		return 2
	}
	logger := logging.New(stderr, level, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var set *analysis.FeatureSet
	if opts.remote != "" {
		set, err = analyseRemote(opts.remote, input)
	} else {
		set, err = analyseLocal(ctx, cfg, logger, input, opts.quiet, stderr)
	}
	if err != nil {
		logger.ErrorContext(ctx, "analysis failed", slog.String("input", input), slog.Any("error", xerrors.New(err)))
		return 1
	}

	if err := emit(set, opts, stdout, stderr); err != nil {
		logger.ErrorContext(ctx, "write failed", slog.Any("error", xerrors.New(err)))
		return 1
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (config.Config, options, string, error) {
	var opts options

	// the env file flag has to be known before config.Load runs
	pre := flag.NewFlagSet("audfeat", flag.ContinueOnError)
	pre.SetOutput(io.Discard)
	pre.StringVar(&opts.envFile, "env", ".env", "")
	_ = pre.Parse(envArgs(args))

	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return cfg, opts, "", err
	}

	fs := flag.NewFlagSet("audfeat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: audfeat [flags] <input>")
		fs.PrintDefaults()
	}
	cfg.RegisterFlags(fs)
	fs.StringVar(&opts.envFile, "env", opts.envFile, "dotenv file with AUDFEAT_* settings")
	fs.StringVar(&opts.output, "o", "-", "output file, - for stdout, empty to skip")
	fs.BoolVar(&opts.headerOnly, "header-only", false, "write only the 32-byte header")
	fs.BoolVar(&opts.summary, "summary", false, "print a human readable summary to stderr")
	fs.StringVar(&opts.exportWav, "export-wav", "", "also write the analysed waveform as WAV")
	fs.StringVar(&opts.remote, "remote", "", "audfeatd address (socket path or host:port)")
	fs.BoolVar(&opts.quiet, "quiet", false, "no progress bar")

	if err := fs.Parse(args); err != nil {
		return cfg, opts, "", err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return cfg, opts, "", errors.New("exactly one input file is required")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, opts, "", err
	}

	return cfg, opts, fs.Arg(0), nil
}

// envArgs picks the -env flag out of args.
func envArgs(args []string) []string {
	for i, a := range args {
		switch {
		case a == "-env" || a == "--env":
			if i+1 < len(args) {
				return []string{a, args[i+1]}
			}
		case strings.HasPrefix(a, "-env=") || strings.HasPrefix(a, "--env="):
			return []string{a}
		}
	}
	return nil
}

func analyseLocal(ctx context.Context, cfg config.Config, logger *slog.Logger, input string, quiet bool, stderr io.Writer) (*analysis.FeatureSet, error) {
	var sessionOpts []analysis.Option

	var (
		p   *mpb.Progress
		bar *mpb.Bar
	)
	if !quiet {
		var stage atomic.Int32
		p = mpb.New(mpb.WithOutput(stderr), mpb.WithWidth(48))
		bar = p.AddBar(int64(len(analysis.Stages())),
			mpb.PrependDecorators(
				decor.Name("audfeat "),
				decor.Any(func(decor.Statistics) string { return fmt.Sprintf("%-10s", analysis.Stage(stage.Load())) }),
			),
			mpb.AppendDecorators(
				decor.Percentage(),
				decor.Name(" "),
				decor.Elapsed(decor.ET_STYLE_GO),
			),
		)
		sessionOpts = append(sessionOpts, analysis.WithProgress(func(s analysis.Stage) {
			stage.Store(int32(s))
			bar.SetCurrent(int64(s) + 1)
		}))
	}

	eng, err := audfeat.New(cfg, logger, sessionOpts...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := eng.Close(); err != nil {
			logger.WarnContext(ctx, "cleanup failed", slog.Any("error", err))
		}
	}()

	err = eng.Session.Load(ctx, input)
	if bar != nil {
		if err != nil {
			bar.Abort(false)
		}
		p.Wait()
	}
	if err != nil {
		return nil, err
	}

	set, _ := eng.Session.Current()
	return set, nil
}

func analyseRemote(addr, input string) (*analysis.FeatureSet, error) {
	network := "tcp"
	if strings.ContainsRune(addr, os.PathSeparator) {
		network = "unix"
	}

	c, err := wire.Dial(network, addr)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	if err := c.Transcode(input); err != nil {
		return nil, err
	}
	if err := c.Load(); err != nil {
		return nil, err
	}
	h, err := c.Header()
	if err != nil {
		return nil, err
	}
	payload, err := c.Payload(h)
	if err != nil {
		return nil, err
	}
	return payload.FeatureSet()
}

func emit(set *analysis.FeatureSet, opts options, stdout, stderr io.Writer) error {
	if opts.summary {
		printSummary(stderr, set)
	}

	if opts.exportWav != "" {
		if err := exportWav(opts.exportWav, set); err != nil {
			return fmt.Errorf("export wav: %w", err)
		}
	}

	switch opts.output {
	case "":
		return nil
	case "-":
		return writeEncoded(stdout, set, opts.headerOnly)
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return err
	}
	if err := writeEncoded(f, set, opts.headerOnly); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeEncoded(w io.Writer, set *analysis.FeatureSet, headerOnly bool) error {
	bw := bufio.NewWriter(w)
	if err := wire.WriteHeader(bw, set); err != nil {
		return err
	}
	if !headerOnly {
		if err := wire.WritePayload(bw, set); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func exportWav(path string, set *analysis.FeatureSet) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := wav.Write(f, set.SampleRate(), set.Waveform()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func printSummary(w io.Writer, set *analysis.FeatureSet) {
	h, err := wire.HeaderOf(set)
	if err != nil {
		fmt.Fprintln(w, "summary:", err)
		return
	}

	fmt.Fprintf(w, "duration  %.2fs @ %d Hz\n", set.Duration(), set.SampleRate())
	fmt.Fprintf(w, "tempo     %.1f BPM, %d beats\n", set.Tempo(), len(set.BeatTimes()))
	fmt.Fprintf(w, "frames    %d (%d bins)\n", len(set.Times()), len(set.FrequencyBins()))
	fmt.Fprintf(w, "envelope  %d points\n", len(set.EnvelopeTimes()))
	fmt.Fprintf(w, "encoded   %d + %d bytes\n", wire.HeaderSize, h.PayloadSize())
}
