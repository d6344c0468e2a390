// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package amdgpu

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bureau-foundation/neurobridge/lib/hwinfo"
	"github.com/bureau-foundation/neurobridge/lib/testutil"
)

// createSyntheticAMDGPU lays out one amdgpu card under root/sys with
// the given product_name ("" leaves the attribute absent).
func createSyntheticAMDGPU(t *testing.T, root, cardName, productName string) string {
	t.Helper()
	devicePath := filepath.Join(root, "sys/class/drm", cardName, "device")
	files := map[string]string{
		"sys/class/drm/" + cardName + "/device/uevent":        "DRIVER=amdgpu\nPCI_CLASS=30000\nPCI_ID=1002:744A\nPCI_SLOT_NAME=0000:c3:00.0\n",
		"sys/class/drm/" + cardName + "/device/vbios_version": "113-APM7489-DS2-100\n",
		"sys/bus/pci/drivers/amdgpu/bind":                     "",
	}
	if productName != "" {
		files["sys/class/drm/"+cardName+"/device/product_name"] = productName + "\n"
	}
	testutil.WriteTree(t, root, files)

	if err := os.Symlink(filepath.Join(root, "sys/bus/pci/drivers/amdgpu"), filepath.Join(devicePath, "driver")); err != nil {
		t.Fatalf("symlink driver: %v", err)
	}
	return devicePath
}

func TestHandles(t *testing.T) {
	prober := NewProber()
	if !prober.Handles("amdgpu") {
		t.Error("Handles(amdgpu) = false")
	}
	if prober.Handles("radeon") || prober.Handles("nvidia") {
		t.Error("Handles accepted a non-amdgpu driver")
	}
}

func TestIdentifyProductName(t *testing.T) {
	root := t.TempDir()
	devicePath := createSyntheticAMDGPU(t, root, "card0", "AMD Radeon RX 7900 XTX")

	identity := NewProber().Identify(hwinfo.Card{Name: "card0", DevicePath: devicePath, Driver: "amdgpu"})
	if identity.DeviceName != "AMD Radeon RX 7900 XTX" {
		t.Errorf("DeviceName = %q", identity.DeviceName)
	}
	if identity.DriverVersion != "" {
		t.Errorf("DriverVersion = %q; amdgpu leaves the version to the DRM ioctl", identity.DriverVersion)
	}
}

func TestIdentifyWithoutProductName(t *testing.T) {
	root := t.TempDir()
	devicePath := createSyntheticAMDGPU(t, root, "card0", "")

	identity := NewProber().Identify(hwinfo.Card{Name: "card0", DevicePath: devicePath, Driver: "amdgpu"})
	if identity.DeviceName != "" {
		t.Errorf("DeviceName = %q, want empty", identity.DeviceName)
	}
}

func TestQuerierWithAMDGPU(t *testing.T) {
	root := t.TempDir()
	createSyntheticAMDGPU(t, root, "card1", "AMD Instinct MI300X")
	testutil.WriteTree(t, root, map[string]string{"sys/module/amdgpu/version": "6.7.0\n"})

	roots := hwinfo.Roots{Sys: filepath.Join(root, "sys"), Proc: filepath.Join(root, "proc"), Dev: filepath.Join(root, "dev")}
	querier := hwinfo.NewDeviceQuerier(roots, nil, NewProber())

	name, version, err := querier.QueryDevice(context.Background())
	if err != nil {
		t.Fatalf("QueryDevice: %v", err)
	}
	if name != "AMD Instinct MI300X" || version != "6.7.0" {
		t.Errorf("QueryDevice = (%q, %q)", name, version)
	}
}
