// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package hwinfo identifies the host's primary GPU for the bridge's
// get_gpu_info command.
//
// [DeviceQuerier] walks <sys>/class/drm/card*, picks the primary card
// (the boot VGA device when the kernel marks one, else the lowest
// numbered card), and resolves two strings for it:
//
//   - Device name: whatever the vendor [GPUProber] reports (the model
//     line from the NVIDIA proprietary driver, product_name from
//     amdgpu), else "<Vendor> <PCI device id>" from the PCI uevent.
//   - Driver version: the vendor prober's answer, else
//     <sys>/module/<driver>/version, else the DRM_IOCTL_VERSION ioctl
//     on the card's device node, rendered as "<name> <maj>.<min>.<patch>".
//
// # DRM helpers
//
// drm.go holds the sysfs helpers shared by the vendor subpackages:
// card device filtering, PCI uevent parsing, and driver identification.
//
// # Subpackages
//
//   - hwinfo/amdgpu: product name and VBIOS from amdgpu sysfs
//     attributes.
//   - hwinfo/nvidia: model name from /proc/driver/nvidia/gpus and the
//     kernel module version from /proc/driver/nvidia/version when the
//     proprietary driver is loaded; sysfs only for nouveau.
//
// Every path is rooted at configurable sys, proc, and dev roots so
// tests run against synthetic trees.
package hwinfo
