// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import "fmt"

// DRMVersion is the kernel driver's answer to DRM_IOCTL_VERSION.
type DRMVersion struct {
	Major       int
	Minor       int
	PatchLevel  int
	Name        string // driver name, e.g. "amdgpu"
	Date        string // driver date, often a placeholder like "0"
	Description string // e.g. "AMD GPU"
}

// String renders the version the way the bridge reports it:
// "amdgpu 3.57.0".
func (v DRMVersion) String() string {
	return fmt.Sprintf("%s %d.%d.%d", v.Name, v.Major, v.Minor, v.PatchLevel)
}
