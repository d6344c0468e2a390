// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package nvidia

import (
	"os"
	"path/filepath"
	"testing"
)

func symlinkDriver(t *testing.T, devicePath, driverDirectory string) {
	t.Helper()
	if err := os.Symlink(driverDirectory, filepath.Join(devicePath, "driver")); err != nil {
		t.Fatalf("symlink driver: %v", err)
	}
}
