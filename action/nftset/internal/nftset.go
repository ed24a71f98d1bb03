package internal

import (
	"net/netip"
	"time"
)

type NftSet interface {
	Name() string
	Close() error
	AddCIDR(netip.Prefix, time.Duration) error
	DelCIDR(netip.Prefix) error
	FlushAll() error
}
