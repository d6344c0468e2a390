// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

// Card is one DRM card device discovered under <sys>/class/drm.
type Card struct {
	// Name is the DRM device name, e.g. "card0".
	Name string

	// DevicePath is <sys>/class/drm/<name>/device, the PCI (or
	// platform) device directory.
	DevicePath string

	// NodePath is the character device for the card, <dev>/dri/<name>.
	NodePath string

	// Driver is the kernel driver bound to the device, e.g. "amdgpu",
	// "nvidia", "i915". Empty if the driver symlink is missing.
	Driver string

	// Vendor is the human-readable PCI vendor ("AMD", "NVIDIA",
	// "Intel") or "0x<id>" for unknown vendors. Empty for non-PCI
	// devices.
	Vendor string

	// PCIDeviceID is the PCI device ID with a 0x prefix, e.g. "0x744a".
	PCIDeviceID string

	// PCISlot is the PCI address, e.g. "0000:c3:00.0".
	PCISlot string

	// BootVGA is true when the kernel marked this device as the one
	// the firmware initialized for console output.
	BootVGA bool
}

// Identity is what a vendor prober can tell about a card. Either field
// may be empty; DeviceQuerier fills gaps from generic sources.
type Identity struct {
	DeviceName    string
	DriverVersion string
}

// GPUProber reads vendor-specific identity for cards bound to the
// drivers it handles. Each vendor subpackage (amdgpu, nvidia)
// implements it. Probers must be safe for concurrent use.
type GPUProber interface {
	// Handles reports whether this prober understands cards bound to
	// the given kernel driver.
	Handles(driver string) bool

	// Identify returns whatever identity the vendor's interfaces
	// expose for card. It never fails; missing data is left empty.
	Identify(card Card) Identity
}
