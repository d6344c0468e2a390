// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for the bridge packages.
//
// [SocketDir] creates a short temporary directory for Unix domain
// sockets. sun_path is limited to 108 bytes, and t.TempDir() paths
// under a nested TMPDIR routinely exceed it.
//
// [RequireReceive], [RequireSend], and [RequireClosed] wrap the
// select-with-timeout pattern so that a hung server or client fails
// the test with a message instead of stalling the whole run.
//
// [WriteTree] lays out synthetic sysfs and procfs trees for the GPU
// probing tests.
//
// All helpers call t.Fatalf on failure.
package testutil
