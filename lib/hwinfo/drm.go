// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// IsCardDevice returns true for DRM card device names (card0, card1, ...)
// but not connectors (card0-DP-1) or render nodes (renderD128).
func IsCardDevice(name string) bool {
	suffix, ok := strings.CutPrefix(name, "card")
	if !ok || suffix == "" {
		return false
	}
	for _, character := range suffix {
		if character < '0' || character > '9' {
			return false
		}
	}
	return true
}

// EnumerateCards lists the DRM card devices under sysRoot, sorted by
// card number. Device nodes are resolved under devRoot. A missing
// class/drm directory yields no cards and no error.
func EnumerateCards(sysRoot, devRoot string) ([]Card, error) {
	drmBase := filepath.Join(sysRoot, "class/drm")
	entries, err := os.ReadDir(drmBase)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", drmBase, err)
	}

	var cards []Card
	for _, entry := range entries {
		name := entry.Name()
		if !IsCardDevice(name) {
			continue
		}
		devicePath := filepath.Join(drmBase, name, "device")
		card := Card{
			Name:       name,
			DevicePath: devicePath,
			NodePath:   filepath.Join(devRoot, "dri", name),
			Driver:     ReadDriverName(devicePath),
			BootVGA:    ReadSysfsString(filepath.Join(devicePath, "boot_vga")) == "1",
		}
		card.Vendor, card.PCIDeviceID, card.PCISlot = ParsePCIUevent(devicePath)
		cards = append(cards, card)
	}

	sort.Slice(cards, func(i, j int) bool {
		return cardNumber(cards[i].Name) < cardNumber(cards[j].Name)
	})
	return cards, nil
}

// cardNumber returns N for "cardN". Names have already passed
// IsCardDevice, so the parse cannot fail short of overflow.
func cardNumber(name string) int {
	number, _ := strconv.Atoi(strings.TrimPrefix(name, "card"))
	return number
}

// PrimaryCard picks the card the bridge reports: the boot VGA device
// if one is marked, else the first card. Returns false for an empty
// list.
func PrimaryCard(cards []Card) (Card, bool) {
	if len(cards) == 0 {
		return Card{}, false
	}
	for _, card := range cards {
		if card.BootVGA {
			return card, true
		}
	}
	return cards[0], true
}

// ReadDriverName returns the kernel driver name for a device by
// reading the basename of the "driver" symlink in the device directory.
func ReadDriverName(devicePath string) string {
	link, err := os.Readlink(filepath.Join(devicePath, "driver"))
	if err != nil {
		return ""
	}
	return filepath.Base(link)
}

// ParsePCIUevent extracts vendor name, device ID, and PCI slot from
// the device's uevent file. The uevent file contains lines like:
//
//	PCI_ID=1002:744A
//	PCI_SLOT_NAME=0000:c3:00.0
func ParsePCIUevent(devicePath string) (vendor, deviceID, pciSlot string) {
	data, err := os.ReadFile(filepath.Join(devicePath, "uevent"))
	if err != nil {
		return "", "", ""
	}

	var rawVendorID, rawDeviceID string
	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch key {
		case "PCI_ID":
			if vendorPart, devicePart, ok := strings.Cut(value, ":"); ok {
				rawVendorID = strings.ToLower(vendorPart)
				rawDeviceID = strings.ToLower(devicePart)
			}
		case "PCI_SLOT_NAME":
			pciSlot = value
		}
	}

	vendor = PCIVendorName(rawVendorID)
	if rawDeviceID != "" {
		deviceID = "0x" + rawDeviceID
	}
	return vendor, deviceID, pciSlot
}

// PCIVendorName maps a PCI vendor ID to a human-readable name.
func PCIVendorName(vendorID string) string {
	switch vendorID {
	case "1002":
		return "AMD"
	case "10de":
		return "NVIDIA"
	case "8086":
		return "Intel"
	case "1af4":
		return "Red Hat"
	case "15ad":
		return "VMware"
	case "":
		return ""
	default:
		return "0x" + vendorID
	}
}

// ReadModuleVersion returns the version string an out-of-tree or
// versioned kernel module publishes at <sys>/module/<driver>/version.
// In-tree drivers usually have none; the result is then "".
func ReadModuleVersion(sysRoot, driver string) string {
	if driver == "" {
		return ""
	}
	return ReadSysfsString(filepath.Join(sysRoot, "module", driver, "version"))
}

// ReadSysfsString reads a single-line sysfs file and returns its
// trimmed content. Returns "" on any error.
func ReadSysfsString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
