// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package bridge

import "net"

func peerCredentials(net.Conn) (PeerCredentials, bool) {
	return PeerCredentials{}, false
}
