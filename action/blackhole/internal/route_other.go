//go:build !linux

package internal

import (
	"errors"
	"net/netip"
)

var ErrOSNotSupported = errors.New("blackhole: OS not supported")

var _ Router = (*RouterOther)(nil)

type RouterOther struct{}

func New(_ int) (*RouterOther, error) {
	return nil, ErrOSNotSupported
}

func (r *RouterOther) Add(_ netip.Prefix) error {
	return ErrOSNotSupported
}

func (r *RouterOther) Del(_ netip.Prefix) error {
	return ErrOSNotSupported
}

func (r *RouterOther) Close() error {
	return ErrOSNotSupported
}
