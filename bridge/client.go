// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/bureau-foundation/neurobridge/protocol"
)

// DefaultDialTimeout bounds connecting to the socket when the Client
// does not set one.
const DefaultDialTimeout = 5 * time.Second

// ErrServerUnreachable is wrapped by every error from Client.Dial. The
// underlying cause (no socket file, connection refused, permission
// denied) is wrapped alongside it.
var ErrServerUnreachable = errors.New("bridge server unreachable")

// RemoteError is returned by the typed helpers when the server answers
// with an Error response.
type RemoteError struct {
	Command protocol.CommandType
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("server error on %s: %s", e.Command, e.Message)
}

// UnexpectedResponseError is returned by the typed helpers when the
// server answers with a valid response of the wrong variant.
type UnexpectedResponseError struct {
	Command  protocol.CommandType
	Response protocol.Response
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected %s response to %s", e.Response.ResponseType(), e.Command)
}

// Client connects to a bridge server.
type Client struct {
	// SocketPath is the server's Unix socket.
	SocketPath string

	// DialTimeout bounds connecting. Zero means DefaultDialTimeout.
	DialTimeout time.Duration

	// CallTimeout bounds one request/response exchange when the
	// context has no deadline of its own. Zero means no bound.
	CallTimeout time.Duration
}

// Dial connects to the server. The returned Conn carries any number of
// sequential calls and must be closed by the caller.
func (c *Client) Dial(ctx context.Context) (*Conn, error) {
	timeout := c.DialTimeout
	if timeout == 0 {
		timeout = DefaultDialTimeout
	}
	dialer := net.Dialer{Timeout: timeout}
	connection, err := dialer.DialContext(ctx, "unix", c.SocketPath)
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to %s: %w", ErrServerUnreachable, c.SocketPath, err)
	}
	return &Conn{connection: connection, callTimeout: c.CallTimeout}, nil
}

// Call dials, sends one command, and closes the connection.
func (c *Client) Call(ctx context.Context, command protocol.Command) (protocol.Response, error) {
	conn, err := c.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return conn.Call(ctx, command)
}

// Ping checks that the server is alive on a fresh connection.
func (c *Client) Ping(ctx context.Context) error {
	conn, err := c.Dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return conn.Ping(ctx)
}

// GPUInfo queries the server's GPU on a fresh connection.
func (c *Client) GPUInfo(ctx context.Context) (protocol.GPUInfo, error) {
	conn, err := c.Dial(ctx)
	if err != nil {
		return protocol.GPUInfo{}, err
	}
	defer conn.Close()
	return conn.GPUInfo(ctx)
}

// Conn is an open connection to a bridge server. Calls on one Conn
// are serialized, matching the protocol's strict request/response
// alternation.
type Conn struct {
	mu          sync.Mutex
	connection  net.Conn
	callTimeout time.Duration
}

// Call sends command and returns the server's response. An Error
// response is returned as a value, not as an error; the error result
// is reserved for transport, framing, and decoding failures, after
// which the Conn should be closed.
func (c *Conn) Call(ctx context.Context, command protocol.Command) (protocol.Response, error) {
	payload, err := protocol.EncodeCommand(command)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline && c.callTimeout > 0 {
		deadline = time.Now().Add(c.callTimeout)
	}
	if err := c.connection.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("setting deadline: %w", err)
	}
	// Unblock I/O if ctx is cancelled mid-call.
	stop := context.AfterFunc(ctx, func() {
		c.connection.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if err := protocol.WriteFrame(c.connection, payload); err != nil {
		return nil, c.callError(ctx, command, "sending", err)
	}
	data, err := protocol.ReadFrame(c.connection)
	if err != nil {
		return nil, c.callError(ctx, command, "reading response to", err)
	}
	response, err := protocol.DecodeResponse(data)
	if err != nil {
		return nil, fmt.Errorf("decoding response to %s: %w", command.CommandType(), err)
	}
	return response, nil
}

func (c *Conn) callError(ctx context.Context, command protocol.Command, action string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s %s: %w", action, command.CommandType(), ctxErr)
	}
	return fmt.Errorf("%s %s: %w", action, command.CommandType(), err)
}

// Ping sends ping and expects pong.
func (c *Conn) Ping(ctx context.Context) error {
	response, err := c.Call(ctx, protocol.Ping{})
	if err != nil {
		return err
	}
	switch typed := response.(type) {
	case protocol.Pong:
		return nil
	case protocol.Error:
		return &RemoteError{Command: protocol.CommandPing, Message: typed.Message}
	default:
		return &UnexpectedResponseError{Command: protocol.CommandPing, Response: response}
	}
}

// GPUInfo sends get_gpu_info and expects gpu_info.
func (c *Conn) GPUInfo(ctx context.Context) (protocol.GPUInfo, error) {
	response, err := c.Call(ctx, protocol.GetGPUInfo{})
	if err != nil {
		return protocol.GPUInfo{}, err
	}
	switch typed := response.(type) {
	case protocol.GPUInfo:
		return typed, nil
	case protocol.Error:
		return protocol.GPUInfo{}, &RemoteError{Command: protocol.CommandGetGPUInfo, Message: typed.Message}
	default:
		return protocol.GPUInfo{}, &UnexpectedResponseError{Command: protocol.CommandGetGPUInfo, Response: response}
	}
}

// Close closes the connection. The server sees a clean disconnect.
func (c *Conn) Close() error {
	return c.connection.Close()
}
