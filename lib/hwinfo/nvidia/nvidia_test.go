// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package nvidia

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/bureau-foundation/neurobridge/lib/hwinfo"
	"github.com/bureau-foundation/neurobridge/lib/testutil"
)

const informationFile = `Model:           NVIDIA GeForce RTX 4090
IRQ:             189
GPU UUID:        GPU-12345678-abcd-efgh-ijkl-123456789abc
Video BIOS:      95.02.3c.80.b8
Bus Type:        PCIe
Bus Location:    0000:01:00.0
Device Minor:    0
GPU Excluded:    No
`

const proprietaryVersion = "NVRM version: NVIDIA UNIX x86_64 Kernel Module  550.54.14  Thu Feb 22 01:44:30 UTC 2024\n" +
	"GCC version:  gcc version 13.2.0 (GCC)\n"

const openVersion = "NVRM version: NVIDIA UNIX Open Kernel Module for x86_64  560.35.03  Release Build  (dvs-builder@U16-I3-B03-4-3)  Fri Aug 16 21:42:42 UTC 2024\n"

func TestHandles(t *testing.T) {
	prober := NewProber("")
	for driver, want := range map[string]bool{"nvidia": true, "nouveau": true, "amdgpu": false, "": false} {
		if got := prober.Handles(driver); got != want {
			t.Errorf("Handles(%q) = %v, want %v", driver, got, want)
		}
	}
}

func TestIdentifyProprietaryDriver(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"driver/nvidia/gpus/0000:01:00.0/information": informationFile,
		"driver/nvidia/version":                       proprietaryVersion,
	})

	identity := NewProber(root).Identify(hwinfo.Card{Name: "card0", Driver: "nvidia", PCISlot: "0000:01:00.0"})
	want := hwinfo.Identity{DeviceName: "NVIDIA GeForce RTX 4090", DriverVersion: "550.54.14"}
	if identity != want {
		t.Errorf("Identify = %+v, want %+v", identity, want)
	}
}

func TestIdentifyOpenKernelModule(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"driver/nvidia/version": openVersion})

	identity := NewProber(root).Identify(hwinfo.Card{Name: "card0", Driver: "nvidia", PCISlot: "0000:01:00.0"})
	if identity.DriverVersion != "560.35.03" {
		t.Errorf("DriverVersion = %q, want 560.35.03", identity.DriverVersion)
	}
	if identity.DeviceName != "" {
		t.Errorf("DeviceName = %q without an information file", identity.DeviceName)
	}
}

func TestIdentifyNouveau(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"driver/nvidia/version": proprietaryVersion})

	identity := NewProber(root).Identify(hwinfo.Card{Name: "card0", Driver: "nouveau", PCISlot: "0000:01:00.0"})
	if identity != (hwinfo.Identity{}) {
		t.Errorf("nouveau should rely on generic sources, got %+v", identity)
	}
}

func TestIdentifyUnparseableVersion(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"driver/nvidia/version": "something else entirely\n"})

	identity := NewProber(root).Identify(hwinfo.Card{Name: "card0", Driver: "nvidia"})
	if identity.DriverVersion != "" {
		t.Errorf("DriverVersion = %q, want empty", identity.DriverVersion)
	}
}

// TestQuerierWithNVIDIA wires the prober into hwinfo.DeviceQuerier over
// a synthetic sysfs and procfs.
func TestQuerierWithNVIDIA(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"sys/class/drm/card0/device/uevent":                "DRIVER=nvidia\nPCI_ID=10DE:2684\nPCI_SLOT_NAME=0000:01:00.0\n",
		"sys/bus/pci/drivers/nvidia/bind":                  "",
		"proc/driver/nvidia/gpus/0000:01:00.0/information": informationFile,
		"proc/driver/nvidia/version":                       proprietaryVersion,
	})
	symlinkDriver(t, filepath.Join(root, "sys/class/drm/card0/device"), filepath.Join(root, "sys/bus/pci/drivers/nvidia"))

	roots := hwinfo.Roots{Sys: filepath.Join(root, "sys"), Proc: filepath.Join(root, "proc"), Dev: filepath.Join(root, "dev")}
	querier := hwinfo.NewDeviceQuerier(roots, nil, NewProber(roots.Proc))

	name, version, err := querier.QueryDevice(context.Background())
	if err != nil {
		t.Fatalf("QueryDevice: %v", err)
	}
	if name != "NVIDIA GeForce RTX 4090" || version != "550.54.14" {
		t.Errorf("QueryDevice = (%q, %q)", name, version)
	}
}

// TestLiveIdentify runs against the real /proc on a machine with the
// proprietary driver loaded. Skipped elsewhere.
func TestLiveIdentify(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("skipping: requires Linux procfs")
	}
	cards, err := hwinfo.EnumerateCards("/sys", "/dev")
	if err != nil {
		t.Fatalf("EnumerateCards: %v", err)
	}
	prober := NewProber("")
	for _, card := range cards {
		if card.Driver != "nvidia" {
			continue
		}
		identity := prober.Identify(card)
		if identity.DriverVersion == "" {
			t.Errorf("%s: no driver version from /proc/driver/nvidia/version", card.Name)
		}
		t.Logf("%s: %q %q slot=%s", card.Name, identity.DeviceName, identity.DriverVersion, card.PCISlot)
		return
	}
	t.Skip("skipping: no cards bound to the nvidia driver")
}
