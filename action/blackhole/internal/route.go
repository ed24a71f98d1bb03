package internal

import "net/netip"

type Router interface {
	Add(netip.Prefix) error
	Del(netip.Prefix) error
	Close() error
}
