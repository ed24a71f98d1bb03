//go:build !linux

package internal

import (
	"errors"
	"net/netip"
	"time"
)

var ErrOSNotSupported = errors.New("nftset: OS not supported")

var _ NftSet = (*NftSetOther)(nil)

type NftSetOther struct{}

func New(_ string, _ string) (*NftSetOther, error) {
	return nil, ErrOSNotSupported
}

func (n *NftSetOther) Name() string {
	return ""
}

func (n *NftSetOther) Close() error {
	return ErrOSNotSupported
}

func (n *NftSetOther) AddCIDR(_ netip.Prefix, _ time.Duration) error {
	return ErrOSNotSupported
}

func (n *NftSetOther) DelCIDR(_ netip.Prefix) error {
	return ErrOSNotSupported
}

func (n *NftSetOther) FlushAll() error {
	return ErrOSNotSupported
}
