//go:build linux

package transport

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	ifnameSize = 16
	iffTun     = 0x0001
	iffNoPI    = 0x1000
	tunSetIff  = 0x400454ca
)

type ifReq struct {
	name  [ifnameSize]byte
	flags uint16
	_     [22]byte
}

// openTun opens an already-created TUN device by name via the standard
// TUNSETIFF ioctl.
func openTun(name string) (*os.File, error) {
	fd, err := unix.Open(tunDevicePath, unix.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	var req ifReq
	copy(req.name[:], name)
	req.flags = iffTun | iffNoPI

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(tunSetIff), uintptr(unsafe.Pointer(&req))); errno != 0 {
		unix.Close(fd)
		return nil, errno
	}

	return os.NewFile(uintptr(fd), tunDevicePath), nil
}
