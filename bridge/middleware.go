// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"golang.org/x/time/rate"

	"github.com/bureau-foundation/neurobridge/lib/clock"
	"github.com/bureau-foundation/neurobridge/protocol"
)

type loggerKey struct{}

// withLogger attaches a request-scoped logger (carrying the session
// ID) for middleware to use in place of its default.
func withLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func loggerFrom(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return fallback
}

// Recover turns a panicking handler into an Error response. The panic
// value and stack are logged at Error.
func Recover(logger *slog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, command protocol.Command) (response protocol.Response) {
			defer func() {
				if recovered := recover(); recovered != nil {
					response = panicResponse(loggerFrom(ctx, logger), command, recovered)
				}
			}()
			return next(ctx, command)
		}
	}
}

func panicResponse(logger *slog.Logger, command protocol.Command, recovered any) protocol.Response {
	logger.Error("command handler panicked",
		"command", command.CommandType(),
		"panic", recovered,
		"stack", string(debug.Stack()),
	)
	return protocol.Errorf("internal error: %v", recovered)
}

// Logging records each command, its response type, and its duration at
// Debug. Error responses also carry the message.
func Logging(logger *slog.Logger, timeSource clock.Clock) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, command protocol.Command) protocol.Response {
			start := timeSource.Now()
			response := next(ctx, command)
			duration := timeSource.Now().Sub(start)

			attributes := []any{
				"command", command.CommandType(),
				"response", response.ResponseType(),
				"duration", duration,
			}
			if failure, ok := response.(protocol.Error); ok {
				attributes = append(attributes, "error", failure.Message)
			}
			loggerFrom(ctx, logger).Debug("command handled", attributes...)
			return response
		}
	}
}

// Timeout answers with an Error if the handler has not finished within
// d. The handler keeps running in its own goroutine with a cancelled
// context; its eventual result is discarded. A handler that ignores
// its context therefore stalls only itself, never the session.
func Timeout(d time.Duration, timeSource clock.Clock) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, command protocol.Command) protocol.Response {
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			done := make(chan protocol.Response, 1)
			go func() {
				// Recover runs in the caller's goroutine and cannot see
				// a panic here.
				defer func() {
					if recovered := recover(); recovered != nil {
						done <- panicResponse(loggerFrom(ctx, slog.Default()), command, recovered)
					}
				}()
				done <- next(ctx, command)
			}()

			select {
			case response := <-done:
				return response
			case <-timeSource.After(d):
				return protocol.Errorf("%s timed out after %s", command.CommandType(), d)
			case <-ctx.Done():
				return protocol.Errorf("%s cancelled: %v", command.CommandType(), context.Cause(ctx))
			}
		}
	}
}

// RateLimit rejects commands beyond limiter's rate with an Error
// response rather than queueing them. One limiter is shared by every
// session using the wrapped handler.
func RateLimit(limiter *rate.Limiter) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, command protocol.Command) protocol.Response {
			if !limiter.Allow() {
				return protocol.Error{Message: "rate limit exceeded"}
			}
			return next(ctx, command)
		}
	}
}
