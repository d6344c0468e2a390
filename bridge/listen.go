// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"fmt"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
)

// Listen binds a Unix socket at socketPath for the bridge. Any existing
// file at the path is removed first, so a socket left behind by a
// crashed server does not block startup. The parent directory is
// created if missing. After binding, the socket file is chmod'ed to
// mode and, if group is non-empty, chowned to that group.
func Listen(socketPath string, mode os.FileMode, group string) (net.Listener, error) {
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("removing stale socket %s: %w", socketPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(socketPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating socket directory: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", socketPath, err)
	}

	if err := os.Chmod(socketPath, mode); err != nil {
		listener.Close()
		return nil, fmt.Errorf("setting mode %#o on %s: %w", mode, socketPath, err)
	}

	if group != "" {
		gid, err := lookupGroupID(group)
		if err != nil {
			listener.Close()
			return nil, err
		}
		if err := os.Chown(socketPath, -1, gid); err != nil {
			listener.Close()
			return nil, fmt.Errorf("changing group of %s to %s: %w", socketPath, group, err)
		}
	}

	return listener, nil
}

// lookupGroupID resolves a group name, or a numeric gid, to a gid.
func lookupGroupID(group string) (int, error) {
	if gid, err := strconv.Atoi(group); err == nil {
		return gid, nil
	}
	entry, err := user.LookupGroup(group)
	if err != nil {
		return 0, fmt.Errorf("looking up socket group: %w", err)
	}
	gid, err := strconv.Atoi(entry.Gid)
	if err != nil {
		return 0, fmt.Errorf("group %s has non-numeric gid %q", group, entry.Gid)
	}
	return gid, nil
}
