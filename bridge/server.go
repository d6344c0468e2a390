// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/bureau-foundation/neurobridge/lib/clock"
)

// Accept backoff bounds. After a failed Accept the loop waits
// minAcceptBackoff, doubling on each consecutive failure up to
// maxAcceptBackoff. A successful Accept resets it.
const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// DefaultSocketMode lets any local user connect.
const DefaultSocketMode os.FileMode = 0o777

// ErrServerStarted is returned when a Server that has already served is
// started again.
var ErrServerStarted = errors.New("bridge: server already started")

// Server accepts connections on a Unix socket and runs a Session for
// each one. A Server serves once: after Serve or ServeListener has been
// called, later calls return ErrServerStarted.
type Server struct {
	// SocketPath is where Serve binds. Required for Serve; unused by
	// ServeListener.
	SocketPath string

	// SocketMode is applied to the socket file after binding. Nil means
	// DefaultSocketMode. A non-nil mode is applied as given, including
	// 0000.
	SocketMode *os.FileMode

	// SocketGroup, if set, is the group (name or gid) the socket file
	// is chowned to.
	SocketGroup string

	// Dispatcher answers commands. Required.
	Dispatcher *Dispatcher

	// Logger receives lifecycle events at Info, session failures at
	// Warn, and accept failures at Error. Nil means slog.Default().
	Logger *slog.Logger

	// Clock drives accept backoff. Nil means clock.Real().
	Clock clock.Clock

	// IdleTimeout and WriteTimeout are passed to every Session.
	IdleTimeout  time.Duration
	WriteTimeout time.Duration

	readyOnce sync.Once
	ready     chan struct{}

	mu          sync.Mutex
	started     bool
	connections map[net.Conn]struct{}
	closing     bool
	sessions    sync.WaitGroup
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Server) clock() clock.Clock {
	if s.Clock != nil {
		return s.Clock
	}
	return clock.Real()
}

func (s *Server) readyChannel() chan struct{} {
	s.readyOnce.Do(func() { s.ready = make(chan struct{}) })
	return s.ready
}

// Ready returns a channel that is closed once the server is accepting
// connections.
func (s *Server) Ready() <-chan struct{} {
	return s.readyChannel()
}

// Serve binds SocketPath and serves until ctx is cancelled. It returns
// an error only if the socket cannot be set up or the listener fails
// unexpectedly. The socket file is removed on return.
func (s *Server) Serve(ctx context.Context) error {
	if s.SocketPath == "" {
		return errors.New("bridge: SocketPath is required")
	}
	if s.Dispatcher == nil {
		return errors.New("bridge: Dispatcher is required")
	}
	if err := s.claim(); err != nil {
		return err
	}
	mode := DefaultSocketMode
	if s.SocketMode != nil {
		mode = *s.SocketMode
	}

	listener, err := Listen(s.SocketPath, mode, s.SocketGroup)
	if err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(s.SocketPath); err != nil && !os.IsNotExist(err) {
			s.logger().Warn("removing socket file", "path", s.SocketPath, "error", err)
		}
	}()

	s.logger().Info("bridge listening",
		"socket_path", s.SocketPath,
		"socket_mode", fmt.Sprintf("%#o", mode),
	)
	return s.serve(ctx, listener)
}

// ServeListener runs the accept loop on listener until ctx is
// cancelled. Each connection gets its own goroutine. On cancellation
// the listener and every live connection are closed, and
// ServeListener returns once all sessions have finished.
//
// Accept errors are logged and retried with backoff. If the listener
// is closed by someone else, ServeListener drains its sessions and
// returns the accept error.
func (s *Server) ServeListener(ctx context.Context, listener net.Listener) error {
	if s.Dispatcher == nil {
		return errors.New("bridge: Dispatcher is required")
	}
	if err := s.claim(); err != nil {
		return err
	}
	return s.serve(ctx, listener)
}

// claim marks the server as started, once.
func (s *Server) claim() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrServerStarted
	}
	s.started = true
	s.connections = make(map[net.Conn]struct{})
	return nil
}

func (s *Server) serve(ctx context.Context, listener net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		listener.Close()
		s.closeConnections()
	}()

	close(s.readyChannel())

	serveErr := s.acceptLoop(ctx, listener)

	cancel()
	<-shutdownDone
	s.sessions.Wait()

	s.logger().Info("bridge stopped")
	return serveErr
}

func (s *Server) acceptLoop(ctx context.Context, listener net.Listener) error {
	var backoff time.Duration
	for {
		connection, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("accepting connections: %w", err)
			}

			backoff = nextBackoff(backoff)
			s.logger().Error("accept failed", "error", err, "retry_in", backoff)
			select {
			case <-ctx.Done():
				return nil
			case <-s.clock().After(backoff):
			}
			continue
		}
		backoff = 0

		if !s.track(connection) {
			connection.Close()
			return nil
		}
		s.sessions.Add(1)
		go s.serveConnection(ctx, connection)
	}
}

func nextBackoff(current time.Duration) time.Duration {
	if current == 0 {
		return minAcceptBackoff
	}
	return min(current*2, maxAcceptBackoff)
}

func (s *Server) serveConnection(ctx context.Context, connection net.Conn) {
	defer s.sessions.Done()
	defer s.untrack(connection)
	defer connection.Close()

	session := NewSession(connection, s.Dispatcher, SessionConfig{
		Logger:       s.logger(),
		IdleTimeout:  s.IdleTimeout,
		WriteTimeout: s.WriteTimeout,
	})
	if err := session.Run(ctx); err != nil {
		s.logger().Warn("session failed",
			"session_id", session.ID,
			"error", err,
		)
	}
}

// track registers a live connection. It reports false once shutdown
// has begun; the caller must then close the connection itself.
func (s *Server) track(connection net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.connections[connection] = struct{}{}
	return true
}

func (s *Server) untrack(connection net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.connections, connection)
}

func (s *Server) closeConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closing = true
	for connection := range s.connections {
		connection.Close()
	}
}
