//go:build !linux

package internal

import (
	"errors"
	"net/netip"
	"time"
)

var ErrOSNotSupported = errors.New("ipset: OS not supported")

var _ IPSet = (*IPSetOther)(nil)

type IPSetOther struct{}

func New(_ string, _ bool, _ time.Duration) (*IPSetOther, error) {
	return nil, ErrOSNotSupported
}

func (i *IPSetOther) Name() string {
	return ""
}

func (i *IPSetOther) Close() error {
	return ErrOSNotSupported
}

func (i *IPSetOther) AddCIDR(_ netip.Prefix, _ time.Duration) error {
	return ErrOSNotSupported
}

func (i *IPSetOther) DelCIDR(_ netip.Prefix) error {
	return ErrOSNotSupported
}

func (i *IPSetOther) FlushAll() error {
	return ErrOSNotSupported
}
