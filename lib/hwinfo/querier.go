// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrNoGPU is returned by QueryDevice when the host exposes no DRM
// card at all.
var ErrNoGPU = errors.New("no GPU found")

// Roots locates the filesystems DeviceQuerier reads. Zero fields take
// the real system paths.
type Roots struct {
	Sys  string // default "/sys"
	Proc string // default "/proc"
	Dev  string // default "/dev"
}

func (r Roots) withDefaults() Roots {
	if r.Sys == "" {
		r.Sys = "/sys"
	}
	if r.Proc == "" {
		r.Proc = "/proc"
	}
	if r.Dev == "" {
		r.Dev = "/dev"
	}
	return r
}

// DeviceQuerier answers the bridge's GPU query from sysfs, the vendor
// probers, and the DRM version ioctl. It holds no mutable state and is
// safe for concurrent use.
type DeviceQuerier struct {
	roots   Roots
	probers []GPUProber
	logger  *slog.Logger

	// drmVersion is QueryDRMVersion in production.
	drmVersion func(nodePath string) (DRMVersion, error)
}

// NewDeviceQuerier creates a querier over roots. Probers are consulted
// in order; the first whose Handles accepts the card's driver
// identifies it.
func NewDeviceQuerier(roots Roots, logger *slog.Logger, probers ...GPUProber) *DeviceQuerier {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeviceQuerier{
		roots:      roots.withDefaults(),
		probers:    probers,
		logger:     logger,
		drmVersion: QueryDRMVersion,
	}
}

// QueryDevice returns the primary GPU's device name and driver
// version. It fails with ErrNoGPU when there is no DRM card, and with
// a descriptive error when a card exists but no source reports a
// driver version.
func (q *DeviceQuerier) QueryDevice(ctx context.Context) (deviceName, driverVersion string, err error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	cards, err := EnumerateCards(q.roots.Sys, q.roots.Dev)
	if err != nil {
		return "", "", err
	}
	card, ok := PrimaryCard(cards)
	if !ok {
		return "", "", ErrNoGPU
	}

	var identity Identity
	if prober := q.proberFor(card.Driver); prober != nil {
		identity = prober.Identify(card)
	}

	deviceName = identity.DeviceName
	if deviceName == "" {
		deviceName = genericDeviceName(card)
	}

	driverVersion = identity.DriverVersion
	if driverVersion == "" {
		driverVersion = ReadModuleVersion(q.roots.Sys, card.Driver)
	}
	if driverVersion == "" {
		version, err := q.drmVersion(card.NodePath)
		if err != nil {
			q.logger.Debug("DRM version query failed",
				"card", card.Name,
				"node", card.NodePath,
				"error", err,
			)
			if card.Driver == "" {
				return "", "", fmt.Errorf("no GPU driver bound to %s", card.Name)
			}
			return "", "", fmt.Errorf("no GPU driver version available for %s (%s): %w", card.Name, card.Driver, err)
		}
		driverVersion = version.String()
	}

	q.logger.Debug("GPU identified",
		"card", card.Name,
		"driver", card.Driver,
		"device_name", deviceName,
		"driver_version", driverVersion,
	)
	return deviceName, driverVersion, nil
}

func (q *DeviceQuerier) proberFor(driver string) GPUProber {
	if driver == "" {
		return nil
	}
	for _, prober := range q.probers {
		if prober.Handles(driver) {
			return prober
		}
	}
	return nil
}

// genericDeviceName builds "<Vendor> <PCI device id>" from the PCI
// uevent, falling back to the driver and card names for devices that
// are not on PCI (virtio-mmio, SoC display controllers).
func genericDeviceName(card Card) string {
	if name := strings.TrimSpace(card.Vendor + " " + card.PCIDeviceID); name != "" {
		return name
	}
	if card.Driver != "" {
		return card.Driver + " " + card.Name
	}
	return card.Name
}
