// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package amdgpu identifies AMD GPUs bound to the amdgpu kernel
// driver from the attributes the driver publishes in sysfs
// (/sys/class/drm/card*/device). The driver version itself comes from
// the generic DRM version ioctl in the parent package; in-tree amdgpu
// publishes no module version.
package amdgpu

import (
	"path/filepath"

	"github.com/bureau-foundation/neurobridge/lib/hwinfo"
)

// Prober implements hwinfo.GPUProber for the amdgpu driver.
type Prober struct{}

// NewProber creates an amdgpu Prober. It reads only paths under the
// card's DevicePath, so it needs no filesystem roots of its own.
func NewProber() *Prober {
	return &Prober{}
}

// Handles reports whether driver is amdgpu.
func (p *Prober) Handles(driver string) bool {
	return driver == "amdgpu"
}

// Identify reads product_name, which amdgpu fills from the board's
// FRU EEPROM on recent discrete cards. Older and integrated parts leave
// it empty or absent; the caller then falls back to the PCI identity.
func (p *Prober) Identify(card hwinfo.Card) hwinfo.Identity {
	return hwinfo.Identity{
		DeviceName: hwinfo.ReadSysfsString(filepath.Join(card.DevicePath, "product_name")),
	}
}
