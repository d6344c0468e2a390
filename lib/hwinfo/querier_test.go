// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/bureau-foundation/neurobridge/lib/testutil"
)

type stubProber struct {
	driver   string
	identity Identity
	seen     []Card
}

func (s *stubProber) Handles(driver string) bool { return driver == s.driver }

func (s *stubProber) Identify(card Card) Identity {
	s.seen = append(s.seen, card)
	return s.identity
}

// newTestQuerier builds a querier over root/sys whose DRM ioctl is
// replaced by drmVersion.
func newTestQuerier(root string, drmVersion func(string) (DRMVersion, error), probers ...GPUProber) *DeviceQuerier {
	querier := NewDeviceQuerier(Roots{
		Sys:  filepath.Join(root, "sys"),
		Proc: filepath.Join(root, "proc"),
		Dev:  filepath.Join(root, "dev"),
	}, nil, probers...)
	querier.drmVersion = drmVersion
	return querier
}

func failingDRMVersion(string) (DRMVersion, error) {
	return DRMVersion{}, syscall.ENOENT
}

func TestQueryDeviceNoCards(t *testing.T) {
	querier := newTestQuerier(t.TempDir(), failingDRMVersion)
	_, _, err := querier.QueryDevice(context.Background())
	if !errors.Is(err, ErrNoGPU) {
		t.Fatalf("got %v, want ErrNoGPU", err)
	}
	if err.Error() != "no GPU found" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestQueryDeviceUsesProberIdentity(t *testing.T) {
	root := t.TempDir()
	addCard(t, root, "card0", "nvidia", "PCI_ID=10DE:2684\nPCI_SLOT_NAME=0000:01:00.0\n", nil)

	prober := &stubProber{
		driver:   "nvidia",
		identity: Identity{DeviceName: "NVIDIA GeForce RTX 4090", DriverVersion: "550.54.14"},
	}
	querier := newTestQuerier(root, func(string) (DRMVersion, error) {
		t.Error("DRM ioctl should not run when the prober supplies a version")
		return DRMVersion{}, nil
	}, prober)

	name, version, err := querier.QueryDevice(context.Background())
	if err != nil {
		t.Fatalf("QueryDevice: %v", err)
	}
	if name != "NVIDIA GeForce RTX 4090" || version != "550.54.14" {
		t.Errorf("QueryDevice = (%q, %q)", name, version)
	}
	if len(prober.seen) != 1 || prober.seen[0].PCISlot != "0000:01:00.0" {
		t.Errorf("prober saw %+v", prober.seen)
	}
}

func TestQueryDeviceFallsBackToModuleVersion(t *testing.T) {
	root := t.TempDir()
	addCard(t, root, "card0", "amdgpu", "PCI_ID=1002:744A\n", nil)
	testutil.WriteTree(t, root, map[string]string{"sys/module/amdgpu/version": "6.8.5\n"})

	querier := newTestQuerier(root, failingDRMVersion, &stubProber{driver: "amdgpu"})
	name, version, err := querier.QueryDevice(context.Background())
	if err != nil {
		t.Fatalf("QueryDevice: %v", err)
	}
	if name != "AMD 0x744a" {
		t.Errorf("device name = %q, want the PCI identity", name)
	}
	if version != "6.8.5" {
		t.Errorf("driver version = %q, want the module version", version)
	}
}

func TestQueryDeviceFallsBackToDRMIoctl(t *testing.T) {
	root := t.TempDir()
	addCard(t, root, "card1", "i915", "PCI_ID=8086:56A0\n", map[string]string{"boot_vga": "1\n"})
	addCard(t, root, "card0", "virtio_gpu", "", nil)

	var queriedNode string
	querier := newTestQuerier(root, func(node string) (DRMVersion, error) {
		queriedNode = node
		return DRMVersion{Name: "i915", Major: 1, Minor: 6, PatchLevel: 0}, nil
	})

	name, version, err := querier.QueryDevice(context.Background())
	if err != nil {
		t.Fatalf("QueryDevice: %v", err)
	}
	if name != "Intel 0x56a0" || version != "i915 1.6.0" {
		t.Errorf("QueryDevice = (%q, %q)", name, version)
	}
	if want := filepath.Join(root, "dev/dri/card1"); queriedNode != want {
		t.Errorf("ioctl on %q, want the boot VGA card %q", queriedNode, want)
	}
}

func TestQueryDeviceNonPCIDevice(t *testing.T) {
	root := t.TempDir()
	addCard(t, root, "card0", "virtio_gpu", "DRIVER=virtio_gpu\n", nil)

	querier := newTestQuerier(root, func(string) (DRMVersion, error) {
		return DRMVersion{Name: "virtio_gpu", Major: 0, Minor: 1, PatchLevel: 0}, nil
	})
	name, version, err := querier.QueryDevice(context.Background())
	if err != nil {
		t.Fatalf("QueryDevice: %v", err)
	}
	if name != "virtio_gpu card0" || version != "virtio_gpu 0.1.0" {
		t.Errorf("QueryDevice = (%q, %q)", name, version)
	}
}

func TestQueryDeviceNoVersionSource(t *testing.T) {
	root := t.TempDir()
	addCard(t, root, "card0", "amdgpu", "PCI_ID=1002:744A\n", nil)

	querier := newTestQuerier(root, failingDRMVersion)
	_, _, err := querier.QueryDevice(context.Background())
	if err == nil {
		t.Fatal("expected an error when no driver version source answers")
	}
	if !errors.Is(err, syscall.ENOENT) {
		t.Errorf("error %v should wrap the ioctl failure", err)
	}
	if !strings.Contains(err.Error(), "card0 (amdgpu)") {
		t.Errorf("error %q should name the card and driver", err)
	}
}

func TestQueryDeviceUnboundDriver(t *testing.T) {
	root := t.TempDir()
	addCard(t, root, "card0", "", "PCI_ID=10DE:2684\n", nil)

	querier := newTestQuerier(root, failingDRMVersion)
	_, _, err := querier.QueryDevice(context.Background())
	if err == nil || !strings.Contains(err.Error(), "no GPU driver") {
		t.Errorf("got %v, want a no GPU driver error", err)
	}
}

func TestQueryDeviceCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	querier := newTestQuerier(t.TempDir(), failingDRMVersion)
	if _, _, err := querier.QueryDevice(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
