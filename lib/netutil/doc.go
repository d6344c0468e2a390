// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil classifies connection errors so that servers can
// tell a peer hanging up from a genuine transport failure.
package netutil
