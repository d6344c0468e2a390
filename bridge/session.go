// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/neurobridge/lib/netutil"
	"github.com/bureau-foundation/neurobridge/protocol"
)

// SessionConfig holds the per-connection settings a Server passes to
// each Session.
type SessionConfig struct {
	// Logger is scoped with the session ID by NewSession. Nil means
	// slog.Default().
	Logger *slog.Logger

	// IdleTimeout bounds the wait for the next request. When it
	// expires the session ends without error. Zero waits forever.
	IdleTimeout time.Duration

	// WriteTimeout bounds writing one response. Zero waits forever.
	WriteTimeout time.Duration
}

// Session serves one accepted connection.
type Session struct {
	// ID identifies the session in logs.
	ID string

	conn       net.Conn
	dispatcher *Dispatcher
	logger     *slog.Logger
	config     SessionConfig
}

// NewSession prepares a session on conn. It does not read from the
// connection until Run.
func NewSession(conn net.Conn, dispatcher *Dispatcher, config SessionConfig) *Session {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	return &Session{
		ID:         id,
		conn:       conn,
		dispatcher: dispatcher,
		logger:     logger.With("session_id", id),
		config:     config,
	}
}

// Run reads commands and writes responses until the peer disconnects,
// the context is cancelled, or the stream fails. Responses are written
// in request order and request N+1 is not read until response N has
// been written.
//
// Run returns nil for a clean disconnect between requests, an idle
// timeout with no request in progress, a peer that hangs up while its
// response is being written, and cancellation. It returns an error for
// a truncated or oversized frame, a frame cut off by the idle timeout,
// a payload that does not decode as a command, or any other I/O
// failure. Run does not close the connection.
func (s *Session) Run(ctx context.Context) error {
	s.logStart()

	handled := 0
	for {
		if s.config.IdleTimeout > 0 {
			if err := s.conn.SetReadDeadline(time.Now().Add(s.config.IdleTimeout)); err != nil {
				return fmt.Errorf("setting read deadline: %w", err)
			}
		}

		payload, err := protocol.ReadFrame(s.conn)
		if err != nil {
			switch {
			case errors.Is(err, protocol.ErrConnectionClosed) && errors.Is(err, io.EOF):
				s.logger.Debug("client disconnected", "requests", handled)
				return nil
			case ctx.Err() != nil:
				s.logger.Debug("session closed by server shutdown", "requests", handled)
				return nil
			case netutil.IsTimeout(err) && !errors.Is(err, protocol.ErrIncompleteFrame):
				s.logger.Info("closing idle session",
					"idle_timeout", s.config.IdleTimeout,
					"requests", handled,
				)
				return nil
			}
			return fmt.Errorf("reading request: %w", err)
		}

		command, err := protocol.DecodeCommand(payload)
		if err != nil {
			s.logger.Debug("undecodable request", "payload", protocol.Describe(payload))
			return fmt.Errorf("decoding request: %w", err)
		}

		response := s.dispatcher.Dispatch(withLogger(ctx, s.logger), command)

		data, err := protocol.EncodeResponse(response)
		if err != nil {
			return fmt.Errorf("encoding %s response to %s: %w", response.ResponseType(), command.CommandType(), err)
		}

		if s.config.WriteTimeout > 0 {
			if err := s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout)); err != nil {
				return fmt.Errorf("setting write deadline: %w", err)
			}
		}
		if err := protocol.WriteFrame(s.conn, data); err != nil {
			if netutil.IsExpectedCloseError(err) || ctx.Err() != nil {
				s.logger.Debug("client went away before its response was written",
					"command", command.CommandType(),
					"error", err,
				)
				return nil
			}
			return fmt.Errorf("writing %s response: %w", response.ResponseType(), err)
		}
		handled++
	}
}

func (s *Session) logStart() {
	attributes := []any{}
	if credentials, ok := peerCredentials(s.conn); ok {
		attributes = append(attributes,
			"peer_pid", credentials.PID,
			"peer_uid", credentials.UID,
			"peer_gid", credentials.GID,
		)
	}
	s.logger.Debug("session started", attributes...)
}

// PeerCredentials identifies the process on the far side of a Unix
// socket. They are logged, never used for access decisions.
type PeerCredentials struct {
	PID int32
	UID uint32
	GID uint32
}
