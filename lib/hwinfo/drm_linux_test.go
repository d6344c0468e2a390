// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"golang.org/x/sys/unix"
)

func TestDRMVersionRequestLayout(t *testing.T) {
	// struct drm_version: three ints followed by three (size_t, char*)
	// pairs, with natural alignment.
	pointerSize := unsafe.Sizeof(uintptr(0))
	want := 3*unsafe.Sizeof(int32(0)) + 6*pointerSize
	if pointerSize == 8 {
		want += 4
	}
	if got := unsafe.Sizeof(drmVersionRequest{}); got != want {
		t.Errorf("sizeof(drmVersionRequest) = %d, want %d", got, want)
	}
	if pointerSize == 8 && ioctlDRMVersion != 0xC0406400 {
		t.Errorf("ioctlDRMVersion = %#x, want 0xc0406400", ioctlDRMVersion)
	}
}

func TestQueryDRMVersionMissingNode(t *testing.T) {
	_, err := QueryDRMVersion(filepath.Join(t.TempDir(), "dri/card0"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v, want a not-exist error", err)
	}
}

func TestQueryDRMVersionNotADRMDevice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card0")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := QueryDRMVersion(path)
	if !errors.Is(err, unix.ENOTTY) {
		t.Errorf("got %v, want ENOTTY from an ioctl on a regular file", err)
	}
}

func TestCString(t *testing.T) {
	tests := []struct {
		buffer []byte
		length uintptr
		want   string
	}{
		{[]byte("amdgpu\x00"), 6, "amdgpu"},
		{[]byte("i9\x0015\x00"), 5, "i9"},
		{[]byte("abc\x00"), 10, "abc"},
		{[]byte{0}, 0, ""},
	}
	for _, test := range tests {
		if got := cString(test.buffer, test.length); got != test.want {
			t.Errorf("cString(%q, %d) = %q, want %q", test.buffer, test.length, got, test.want)
		}
	}
}
