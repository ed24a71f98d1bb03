//go:build linux

package internal

import (
	"errors"
	"net/netip"
	"time"

	"github.com/vishvananda/netlink"
)

var _ IPSet = (*IPSetLinux)(nil)

type IPSetLinux struct {
	name    string
	handler *netlink.Handle
}

var ErrNotIPv4 = errors.New("ipset: not an ipv4 prefix")

// New opens the named hash:net set. With create it is created first, and
// timeout becomes the default entry timeout.
func New(name string, create bool, timeout time.Duration) (*IPSetLinux, error) {
	handler, err := netlink.NewHandle()
	if err != nil {
		return nil, err
	}
	if create {
		createOptions := netlink.IpsetCreateOptions{
			Replace:  true,
			Skbinfo:  true,
			Revision: 1,
		}
		createOptions.Timeout = new(uint32)
		if timeout > 0 {
			*createOptions.Timeout = uint32(timeout.Seconds())
		}
		err = handler.IpsetCreate(name, "hash:net", createOptions)
		if err != nil {
			handler.Close()
			return nil, err
		}
	}
	return &IPSetLinux{
		name:    name,
		handler: handler,
	}, nil
}

func (i *IPSetLinux) Name() string {
	return i.name
}

func (i *IPSetLinux) Close() error {
	i.handler.Close()
	return nil
}

func (i *IPSetLinux) AddCIDR(prefix netip.Prefix, ttl time.Duration) error {
	if !prefix.Addr().Is4() {
		return ErrNotIPv4
	}
	e := &netlink.IPSetEntry{
		Replace: true,
		IP:      prefix.Addr().AsSlice(),
		CIDR:    uint8(prefix.Bits()),
	}
	ttlUint32 := uint32(ttl.Seconds())
	if ttl > 0 {
		e.Timeout = &ttlUint32
	}
	return i.handler.IpsetAdd(i.name, e)
}

func (i *IPSetLinux) DelCIDR(prefix netip.Prefix) error {
	if !prefix.Addr().Is4() {
		return ErrNotIPv4
	}
	e := &netlink.IPSetEntry{
		IP:   prefix.Addr().AsSlice(),
		CIDR: uint8(prefix.Bits()),
	}
	return i.handler.IpsetDel(i.name, e)
}

func (i *IPSetLinux) FlushAll() error {
	return i.handler.IpsetFlush(i.name)
}
