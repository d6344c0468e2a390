// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package nvidia identifies NVIDIA GPUs bound to the nvidia
// (proprietary) or nouveau (open-source) kernel drivers.
//
// The proprietary driver publishes a per-GPU information file at
// /proc/driver/nvidia/gpus/<pci-slot>/information and the module
// version at /proc/driver/nvidia/version. Nouveau publishes neither;
// its cards are named from the PCI identity and versioned through the
// DRM version ioctl like any other driver.
package nvidia

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/neurobridge/lib/hwinfo"
)

// Prober implements hwinfo.GPUProber for NVIDIA GPUs.
type Prober struct {
	// procRoot is the root of the proc filesystem. "/proc" in
	// production; a synthetic tree in tests.
	procRoot string
}

// NewProber creates a Prober reading driver data under procRoot. An
// empty procRoot means "/proc".
func NewProber(procRoot string) *Prober {
	if procRoot == "" {
		procRoot = "/proc"
	}
	return &Prober{procRoot: procRoot}
}

// Handles reports whether driver is nvidia or nouveau.
func (p *Prober) Handles(driver string) bool {
	return driver == "nvidia" || driver == "nouveau"
}

// Identify reads the model name and driver version from the
// proprietary driver's proc files. For nouveau it returns an empty
// Identity.
func (p *Prober) Identify(card hwinfo.Card) hwinfo.Identity {
	if card.Driver != "nvidia" {
		return hwinfo.Identity{}
	}
	var identity hwinfo.Identity
	if card.PCISlot != "" {
		identity.DeviceName = p.readGPUInformation(card.PCISlot)["Model"]
	}
	identity.DriverVersion = p.readDriverVersion()
	return identity
}

// readGPUInformation parses /proc/driver/nvidia/gpus/<slot>/information,
// which contains key-value lines like:
//
//	Model:           NVIDIA GeForce RTX 4090
//	GPU UUID:        GPU-xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx
//	Video BIOS:      95.02.3c.80.b8
func (p *Prober) readGPUInformation(pciSlot string) map[string]string {
	infoPath := filepath.Join(p.procRoot, "driver/nvidia/gpus", pciSlot, "information")
	data, err := os.ReadFile(infoPath)
	if err != nil {
		return nil
	}

	fields := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return fields
}

// readDriverVersion extracts the version from the first line of
// /proc/driver/nvidia/version:
//
//	NVRM version: NVIDIA UNIX x86_64 Kernel Module  550.54.14  Thu Feb 22 01:44:30 UTC 2024
//	NVRM version: NVIDIA UNIX Open Kernel Module for x86_64  560.35.03  Release Build  ...
//
// The version is the first field after "Kernel Module" that starts
// with a digit.
func (p *Prober) readDriverVersion() string {
	data, err := os.ReadFile(filepath.Join(p.procRoot, "driver/nvidia/version"))
	if err != nil {
		return ""
	}
	firstLine, _, _ := strings.Cut(string(data), "\n")
	_, afterModule, found := strings.Cut(firstLine, "Kernel Module")
	if !found {
		return ""
	}
	for _, field := range strings.Fields(afterModule) {
		if field[0] >= '0' && field[0] <= '9' {
			return field
		}
	}
	return ""
}
