// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"os"
	"syscall"
)

// DiagnoseDialError turns a failure to connect to the bridge socket
// into a ToolError with an actionable hint. Returns nil if err is not
// one of the recognized connection failures; the caller should use
// its own wrapping then.
//
//   - No socket file, or nothing listening behind it: transient, with
//     a hint to start neuro-bridge.
//   - Permission denied: forbidden, with a hint about the socket's
//     mode and group.
func DiagnoseDialError(err error, socketPath string) *ToolError {
	switch {
	case errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM):
		return Forbidden("permission denied connecting to %s: %w", socketPath, err).
			WithHint("The bridge socket exists but this user cannot open it.\n" +
				"Check its ownership and mode: ls -la " + socketPath + "\n" +
				"Restart neuro-bridge with --socket-mode 0777, or set server.socket_group\n" +
				"to a group this user belongs to.")

	case errors.Is(err, os.ErrNotExist):
		return Transient("bridge server not reachable: no socket at %s", socketPath).
			WithHint("Start the server on the host (neuro-bridge), or pass --socket\n" +
				"if it listens somewhere else.")

	case errors.Is(err, syscall.ECONNREFUSED):
		return Transient("bridge server not reachable: nothing is listening on %s", socketPath).
			WithHint("The socket file is left over from a server that is no longer running.\n" +
				"Start neuro-bridge again; it replaces stale sockets on startup.")
	}
	return nil
}
