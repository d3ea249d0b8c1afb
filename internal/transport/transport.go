// Package transport injects decapsulated IP packets into the host's
// network stack and captures outbound packets for re-encapsulation,
// through an OS-level TUN device managed with netlink.
package transport

import (
	"fmt"
	"os"

	"github.com/vishvananda/netlink"
)

const tunDevicePath = "/dev/net/tun"

// Channel is the OS-facing side of the tunnel: Send injects a decapsulated
// IP packet for the kernel to route, Recv reads a packet the kernel wants
// tunneled out.
type Channel interface {
	Send(packet []byte) error
	Recv(buf []byte) (int, error)
	Close() error
}

// TunChannel is a Channel backed by a Linux TUN device. The device itself
// is opened with the tun/tap ioctl (no library in this codebase's stack
// wraps that syscall); netlink.LinkSetUp and netlink.LinkSetMTU bring the
// resulting interface up with the configured MTU. netlink is used only for
// link management, not for packet I/O.
type TunChannel struct {
	file *os.File
	link netlink.Link
}

// NewTunChannel opens (but does not create) the TUN device named linkName
// and brings it up with the given MTU.
func NewTunChannel(linkName string, mtu int) (*TunChannel, error) {
	file, err := openTun(linkName)
	if err != nil {
		return nil, fmt.Errorf("transport: open tun %s: %w", linkName, err)
	}

	link, err := netlink.LinkByName(linkName)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("transport: lookup link %s: %w", linkName, err)
	}
	if mtu > 0 {
		if err := netlink.LinkSetMTU(link, mtu); err != nil {
			file.Close()
			return nil, fmt.Errorf("transport: set mtu on %s: %w", linkName, err)
		}
	}
	if err := netlink.LinkSetUp(link); err != nil {
		file.Close()
		return nil, fmt.Errorf("transport: link up %s: %w", linkName, err)
	}

	return &TunChannel{file: file, link: link}, nil
}

func (c *TunChannel) Send(packet []byte) error {
	_, err := c.file.Write(packet)
	return err
}

func (c *TunChannel) Recv(buf []byte) (int, error) {
	return c.file.Read(buf)
}

func (c *TunChannel) Close() error {
	return c.file.Close()
}
