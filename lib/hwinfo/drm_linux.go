// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// drmVersionRequest mirrors struct drm_version from the kernel UAPI
// header include/uapi/drm/drm.h. The size_t length fields are uintptr
// and the char* buffers are *byte, which gives the same layout as the
// C struct on both 32- and 64-bit targets.
type drmVersionRequest struct {
	major      int32
	minor      int32
	patchLevel int32
	nameLength uintptr
	name       *byte
	dateLength uintptr
	date       *byte
	descLength uintptr
	desc       *byte
}

// ioctlDRMVersion is DRM_IOCTL_VERSION, _IOWR('d', 0x00, struct
// drm_version):
//
//	direction(3=read|write) << 30 | size << 16 | type('d') << 8 | nr(0x00)
const ioctlDRMVersion = 3<<30 | uintptr(unsafe.Sizeof(drmVersionRequest{}))<<16 | 'd'<<8 | 0x00

// QueryDRMVersion opens the DRM device node at nodePath and asks the
// kernel driver for its name and version. The node is opened read-only
// and closed before returning. Any user in the video or render group
// can issue this ioctl; it needs no DRM master.
func QueryDRMVersion(nodePath string) (DRMVersion, error) {
	fd, err := unix.Open(nodePath, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return DRMVersion{}, fmt.Errorf("opening %s: %w", nodePath, err)
	}
	defer unix.Close(fd)

	// First pass learns the string lengths; the kernel copies nothing
	// into zero-length buffers.
	var request drmVersionRequest
	if err := drmVersionIoctl(fd, &request); err != nil {
		return DRMVersion{}, fmt.Errorf("DRM_IOCTL_VERSION on %s: %w", nodePath, err)
	}

	name := make([]byte, request.nameLength+1)
	date := make([]byte, request.dateLength+1)
	desc := make([]byte, request.descLength+1)
	request.name, request.nameLength = &name[0], uintptr(len(name)-1)
	request.date, request.dateLength = &date[0], uintptr(len(date)-1)
	request.desc, request.descLength = &desc[0], uintptr(len(desc)-1)
	if err := drmVersionIoctl(fd, &request); err != nil {
		return DRMVersion{}, fmt.Errorf("DRM_IOCTL_VERSION on %s: %w", nodePath, err)
	}

	return DRMVersion{
		Major:       int(request.major),
		Minor:       int(request.minor),
		PatchLevel:  int(request.patchLevel),
		Name:        cString(name, request.nameLength),
		Date:        cString(date, request.dateLength),
		Description: cString(desc, request.descLength),
	}, nil
}

func drmVersionIoctl(fd int, request *drmVersionRequest) error {
	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		uintptr(fd),
		ioctlDRMVersion,
		uintptr(unsafe.Pointer(request)),
	)
	if errno != 0 {
		return errno
	}
	return nil
}

// cString returns the first length bytes of buffer, stopping early at
// a NUL. The kernel reports the full string length even when it was
// truncated to the buffer, so length is clamped.
func cString(buffer []byte, length uintptr) string {
	if int(length) < len(buffer) {
		buffer = buffer[:length]
	}
	for i, b := range buffer {
		if b == 0 {
			return string(buffer[:i])
		}
	}
	return string(buffer)
}
