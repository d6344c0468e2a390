// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Neuro is the client for the neuro bridge. It runs inside a chroot or
// container with no hardware access of its own and asks the host-side
// neuro-bridge server over a Unix socket:
//
//	neuro ping    check that the server is alive
//	neuro gpu     show the host's GPU name and driver version
//
// A server-side failure is printed to stderr as "Server Error: ..." and
// exits 1. Failing to reach the server at all is reported with a hint
// that distinguishes a server that is not running from a socket this
// user may not open.
package main
