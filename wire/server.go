// SPDX-License-Identifier: EPL-2.0

package wire

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/ik5/audfeat/analysis"
)

// Session is the part of analysis.Session the server drives.
type Session interface {
	Load(ctx context.Context, path string) error
	Current() (*analysis.FeatureSet, bool)
}

// Server answers the request protocol on every accepted connection.
//
// The transcoded path and the pinned feature set are per-connection: a
// header and the payload that follows it always describe the same set,
// even if another client loads a new track in between. A converted file
// lives until its connection transcodes another track or disconnects.
type Server struct {
	Session    Session
	Transcoder analysis.Transcoder // nil passes paths through
	Logger     *slog.Logger
}

// connState is what one client has asked for so far.
type connState struct {
	transcoded string
	pinned     *analysis.FeatureSet
}

// Serve accepts connections until ctx is done or the listener fails. On
// cancellation it closes the listener and every open connection, waits for
// handlers to return and reports nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	log := s.logger()

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	log.InfoContext(ctx, "listening", slog.String("addr", ln.Addr().String()))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				log.InfoContext(ctx, "listener closed")
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		wg.Go(func() { s.serveConn(ctx, conn) })
	}
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

// release removes a converted file once this connection no longer needs it.
func (s *Server) release(ctx context.Context, log *slog.Logger, path string) {
	r, ok := s.Transcoder.(analysis.Remover)
	if !ok || path == "" {
		return
	}
	if err := r.Remove(path); err != nil {
		log.WarnContext(ctx, "remove converted file", slog.String("path", path), slog.Any("error", err))
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	log := s.logger().With(slog.String("conn_id", uuid.NewString()), slog.String("remote", conn.RemoteAddr().String()))

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer conn.Close()

	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	var st connState
	defer func() { s.release(ctx, log, st.transcoded) }()

	log.DebugContext(ctx, "client connected")

	for {
		op, err := readInt32(r)
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				log.WarnContext(ctx, "read request", slog.Any("error", err))
			}
			log.DebugContext(ctx, "client gone")
			return
		}

		err = s.dispatch(ctx, log, Op(op), r, w, &st)
		if ferr := w.Flush(); err == nil {
			err = ferr
		}
		if err != nil {
			if !errors.Is(err, errBadRequest) {
				log.WarnContext(ctx, "reply failed", slog.String("op", Op(op).String()), slog.Any("error", err))
			}
			return
		}
	}
}

// dispatch handles one request. A returned error ends the connection;
// failures the client can recover from are written as replies instead.
func (s *Server) dispatch(ctx context.Context, log *slog.Logger, op Op, r io.Reader, w io.Writer, st *connState) error {
	log.DebugContext(ctx, "request", slog.String("op", op.String()))

	switch op {
	case OpTranscode:
		n, err := readInt32(r)
		if err != nil {
			return err
		}
		if n <= 0 || n > MaxPathLen {
			_ = writeFailure(w, StatusBadRequest, fmt.Sprintf("path length %d", n))
			return errBadRequest
		}
		path := make([]byte, n)
		if _, err := io.ReadFull(r, path); err != nil {
			return err
		}

		resolved := string(path)
		if s.Transcoder != nil {
			if resolved, err = s.Transcoder.Transcode(ctx, resolved); err != nil {
				log.WarnContext(ctx, "transcode failed", slog.String("path", string(path)), slog.Any("error", err))
				return writeFailure(w, StatusTranscode, err.Error())
			}
		}
		if st.transcoded != resolved {
			s.release(ctx, log, st.transcoded)
		}
		st.transcoded = resolved
		return writeInt32(w, int32(StatusOK))

	case OpLoad:
		if st.transcoded == "" {
			return writeFailure(w, StatusBadRequest, "load before transcode")
		}
		if err := s.Session.Load(ctx, st.transcoded); err != nil {
			status := StatusFeatureExtraction
			if errors.Is(err, analysis.ErrTranscode) {
				status = StatusTranscode
			}
			return writeFailure(w, status, err.Error())
		}
		st.pinned = nil
		return writeInt32(w, int32(StatusOK))

	case OpHeader:
		set, ok := s.Session.Current()
		if !ok {
			return writeFailure(w, StatusNoSession, ErrNoSession.Error())
		}
		buf, err := EncodeHeader(set)
		if err != nil {
			return writeFailure(w, StatusFeatureExtraction, err.Error())
		}
		st.pinned = set
		if err := writeInt32(w, int32(StatusOK)); err != nil {
			return err
		}
		_, err = w.Write(buf)
		return err

	case OpPayload:
		set := st.pinned
		if set == nil {
			var ok bool
			if set, ok = s.Session.Current(); !ok {
				return writeFailure(w, StatusNoSession, ErrNoSession.Error())
			}
		}
		st.pinned = nil
		if err := writeInt32(w, int32(StatusOK)); err != nil {
			return err
		}
		return WritePayload(w, set)
	}

	_ = writeFailure(w, StatusBadRequest, fmt.Sprintf("unknown %s", op))
	return errBadRequest
}
