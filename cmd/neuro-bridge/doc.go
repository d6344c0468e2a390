// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Neuro-bridge is the privileged host side of the neuro bridge. It
// listens on a Unix socket (default /dev/socket/neuro_bridge.sock) and
// answers ping and get_gpu_info for clients running in a chroot or
// container that cannot see the hardware themselves.
//
// Configuration comes from the file named by --config or the
// NEUROBRIDGE_CONFIG environment variable (YAML or JSONC); with
// neither, built-in defaults apply. Flags override the file. The
// server runs until SIGINT or SIGTERM and removes its socket on exit.
package main
