// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bridge serves the neuro bridge protocol on a Unix socket and
// provides the matching client.
//
// A privileged host process runs a [Server]. Unprivileged clients in a
// chroot or container, with no hardware access of their own, connect
// to its socket and exchange length-prefixed CBOR frames (see package
// protocol): one Command in, one Response out, repeated until the
// client hangs up.
//
// The server side has three layers:
//
//   - [Server] owns the socket. Serve removes any stale socket file,
//     binds, applies the configured mode and group, and runs an accept
//     loop that starts one goroutine per connection. Accept failures
//     are logged and retried with capped exponential backoff; only
//     binding is fatal. Cancelling the context closes the listener and
//     every live connection, then waits for sessions to drain.
//
//   - [Session] owns one connection and runs the receive, dispatch,
//     reply loop. A clean close between requests ends it without error.
//     Framing and decoding failures end only that session. Nothing is
//     shared between sessions, so a slow GPU query on one connection
//     never delays another.
//
//   - [Dispatcher] maps each command to a handler wrapped in
//     middleware. Handler failures become Error responses, which are
//     the only errors that cross the wire. [NewDispatcher] wires the
//     standard handlers: ping answers pong, and get_gpu_info asks a
//     [GPUQuerier].
//
// [Client] dials the socket and issues commands. A [Conn] from
// [Client.Dial] carries any number of sequential calls; [Client.Ping]
// and [Client.GPUInfo] are one-shot conveniences. An Error response
// surfaces as a [*RemoteError]; a failure to connect wraps
// [ErrServerUnreachable].
//
// Peer authentication is out of scope: the socket's file mode is the
// access control. The peer's pid, uid, and gid are logged for auditing
// when the platform exposes them.
package bridge
