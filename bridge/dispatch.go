// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/bureau-foundation/neurobridge/lib/clock"
	"github.com/bureau-foundation/neurobridge/protocol"
)

// HandlerFunc answers one command. Handlers report failure by
// returning a protocol.Error; they never return nil.
type HandlerFunc func(ctx context.Context, command protocol.Command) protocol.Response

// Middleware wraps a handler with additional behavior.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middleware so that the first argument is the
// outermost layer: Chain(a, b)(h) runs a, then b, then h.
func Chain(middleware ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middleware) - 1; i >= 0; i-- {
			next = middleware[i](next)
		}
		return next
	}
}

// GPUQuerier is the host-side capability behind get_gpu_info.
// Implementations must be safe for concurrent use; every session
// calls QueryDevice from its own goroutine.
type GPUQuerier interface {
	QueryDevice(ctx context.Context) (deviceName, driverVersion string, err error)
}

// GPUQuerierFunc adapts a function to GPUQuerier.
type GPUQuerierFunc func(ctx context.Context) (deviceName, driverVersion string, err error)

// QueryDevice calls f(ctx).
func (f GPUQuerierFunc) QueryDevice(ctx context.Context) (string, string, error) {
	return f(ctx)
}

// Dispatcher routes commands to handlers. Register handlers and
// middleware before the first Dispatch; after that the Dispatcher is
// read-only and safe for concurrent use.
type Dispatcher struct {
	handlers   map[protocol.CommandType]HandlerFunc
	middleware []Middleware
}

// NewEmptyDispatcher returns a Dispatcher with no handlers. Every
// command it receives is answered as unsupported until handlers are
// registered.
func NewEmptyDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[protocol.CommandType]HandlerFunc)}
}

// Handle registers handler for commandType, wrapped in the given
// per-handler middleware. Panics if commandType already has a handler.
func (d *Dispatcher) Handle(commandType protocol.CommandType, handler HandlerFunc, middleware ...Middleware) {
	if _, exists := d.handlers[commandType]; exists {
		panic(fmt.Sprintf("bridge.Dispatcher: duplicate handler for command %q", commandType))
	}
	d.handlers[commandType] = Chain(middleware...)(handler)
}

// Use appends middleware that wraps every dispatch, including commands
// with no registered handler.
func (d *Dispatcher) Use(middleware ...Middleware) {
	d.middleware = append(d.middleware, middleware...)
}

// Dispatch answers command. It always returns a Response.
func (d *Dispatcher) Dispatch(ctx context.Context, command protocol.Command) protocol.Response {
	return Chain(d.middleware...)(d.route)(ctx, command)
}

func (d *Dispatcher) route(ctx context.Context, command protocol.Command) protocol.Response {
	handler, ok := d.handlers[command.CommandType()]
	if !ok {
		return protocol.Errorf("unsupported command %q", command.CommandType())
	}
	response := handler(ctx, command)
	if response == nil {
		return protocol.Errorf("internal error: %s handler returned no response", command.CommandType())
	}
	return response
}

// Options configures NewDispatcher.
type Options struct {
	// QueryTimeout bounds each GPU query. Zero disables the bound.
	QueryTimeout time.Duration

	// RateLimit is the sustained GPU queries per second allowed across
	// all sessions. Zero disables rate limiting.
	RateLimit float64

	// Burst is the rate limiter's bucket size; values below 1 are
	// treated as 1.
	Burst int

	// Logger receives per-command Debug events and handler panics.
	// Nil means slog.Default().
	Logger *slog.Logger

	// Clock times commands and drives QueryTimeout. Nil means
	// clock.Real().
	Clock clock.Clock
}

// NewDispatcher returns a Dispatcher answering ping and get_gpu_info,
// with panic recovery and request logging on every command. The GPU
// handler is additionally wrapped in RateLimit and Timeout when the
// options enable them.
func NewDispatcher(querier GPUQuerier, options Options) *Dispatcher {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeSource := options.Clock
	if timeSource == nil {
		timeSource = clock.Real()
	}

	dispatcher := NewEmptyDispatcher()
	dispatcher.Use(Recover(logger), Logging(logger, timeSource))

	dispatcher.Handle(protocol.CommandPing, handlePing)

	var gpuMiddleware []Middleware
	if options.RateLimit > 0 {
		burst := max(options.Burst, 1)
		gpuMiddleware = append(gpuMiddleware, RateLimit(rate.NewLimiter(rate.Limit(options.RateLimit), burst)))
	}
	if options.QueryTimeout > 0 {
		gpuMiddleware = append(gpuMiddleware, Timeout(options.QueryTimeout, timeSource))
	}
	dispatcher.Handle(protocol.CommandGetGPUInfo, gpuInfoHandler(querier), gpuMiddleware...)

	return dispatcher
}

func handlePing(context.Context, protocol.Command) protocol.Response {
	return protocol.Pong{}
}

// gpuInfoHandler answers get_gpu_info from querier. A query failure is
// reported to the client verbatim.
func gpuInfoHandler(querier GPUQuerier) HandlerFunc {
	return func(ctx context.Context, _ protocol.Command) protocol.Response {
		deviceName, driverVersion, err := querier.QueryDevice(ctx)
		if err != nil {
			return protocol.Error{Message: err.Error()}
		}
		return protocol.GPUInfo{DeviceName: deviceName, DriverVersion: driverVersion}
	}
}
