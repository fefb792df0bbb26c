// SPDX-License-Identifier: EPL-2.0

// Command audfeatd serves the feature request protocol on a unix socket
// or TCP address until it receives SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/mdobak/go-xerrors"

	"github.com/ik5/audfeat"
	"github.com/ik5/audfeat/config"
	"github.com/ik5/audfeat/internal/logging"
	"github.com/ik5/audfeat/wire"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stderr, nil))
}

// run serves until ctx is done. ready, when set, receives the bound
// address once the listener is up.
func run(ctx context.Context, args []string, stderr io.Writer, ready chan<- net.Addr) int {
	cfg, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, "audfeatd:", err)
		return 2
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(stderr, "audfeatd:", err)
		return 2
	}
	logger := logging.New(stderr, level, cfg.LogFormat)

	if err := serve(ctx, cfg, logger, ready); err != nil {
		logger.ErrorContext(ctx, "server stopped", slog.Any("error", xerrors.New(err)))
		return 1
	}
	logger.InfoContext(ctx, "shutdown complete")
	return 0
}

func parseArgs(args []string, stderr io.Writer) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}

	flags := flag.NewFlagSet("audfeatd", flag.ContinueOnError)
	flags.SetOutput(stderr)
	cfg.RegisterFlags(flags)
	flags.StringVar(&cfg.Socket, "socket", cfg.Socket, "unix socket path")
	flags.StringVar(&cfg.TCPAddr, "tcp", cfg.TCPAddr, "TCP address, overrides -socket")

	if err := flags.Parse(args); err != nil {
		return cfg, err
	}
	if flags.NArg() != 0 {
		return cfg, fmt.Errorf("unexpected arguments: %v", flags.Args())
	}
	return cfg, cfg.Validate()
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger, ready chan<- net.Addr) error {
	eng, err := audfeat.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := eng.Close(); err != nil {
			logger.WarnContext(ctx, "cleanup failed", slog.Any("error", err))
		}
	}()

	ln, err := listen(cfg)
	if err != nil {
		return err
	}
	if ready != nil {
		ready <- ln.Addr()
	}

	srv := &wire.Server{
		Session:    eng.Session,
		Transcoder: eng.Gate,
		Logger:     logger.With(slog.String("component", "wire")),
	}
	return srv.Serve(ctx, ln)
}

// listen binds the configured address, replacing a stale unix socket left
// by a previous run.
func listen(cfg config.Config) (net.Listener, error) {
	network, addr := cfg.Listen()
	if network == "unix" {
		if err := os.Remove(addr); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("remove stale socket: %w", err)
		}
	}

	ln, err := net.Listen(network, addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s %s: %w", network, addr, err)
	}
	return ln, nil
}
