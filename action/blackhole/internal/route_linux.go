//go:build linux

package internal

import (
	"errors"
	"net/netip"

	"github.com/vishvananda/netlink"
	"go4.org/netipx"
	"golang.org/x/sys/unix"
)

var _ Router = (*RouterLinux)(nil)

type RouterLinux struct {
	table   int
	handler *netlink.Handle
}

func New(table int) (*RouterLinux, error) {
	handler, err := netlink.NewHandle()
	if err != nil {
		return nil, err
	}
	return &RouterLinux{
		table:   table,
		handler: handler,
	}, nil
}

func (r *RouterLinux) route(prefix netip.Prefix) *netlink.Route {
	route := &netlink.Route{
		Dst:  netipx.PrefixIPNet(prefix.Masked()),
		Type: unix.RTN_BLACKHOLE,
	}
	if r.table > 0 {
		route.Table = r.table
	}
	return route
}

// Add installs a blackhole route. An existing route counts as success.
func (r *RouterLinux) Add(prefix netip.Prefix) error {
	err := r.handler.RouteAdd(r.route(prefix))
	if errors.Is(err, unix.EEXIST) {
		return nil
	}
	return err
}

// Del removes a blackhole route. A missing route counts as success.
func (r *RouterLinux) Del(prefix netip.Prefix) error {
	err := r.handler.RouteDel(r.route(prefix))
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}

func (r *RouterLinux) Close() error {
	r.handler.Close()
	return nil
}
