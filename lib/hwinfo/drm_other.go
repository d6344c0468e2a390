// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package hwinfo

import (
	"errors"
	"runtime"
)

// QueryDRMVersion is only implemented on Linux.
func QueryDRMVersion(nodePath string) (DRMVersion, error) {
	return DRMVersion{}, errors.New("DRM_IOCTL_VERSION is not available on " + runtime.GOOS)
}
