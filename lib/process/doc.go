// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the last-resort error exit for the bridge
// binaries, used from main() when run() fails and the structured
// logger may not exist yet.
package process
