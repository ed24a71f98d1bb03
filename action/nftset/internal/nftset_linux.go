//go:build linux

package internal

import (
	"errors"
	"fmt"
	"net/netip"
	"sync"
	"time"

	"github.com/google/nftables"
	"go4.org/netipx"
)

var (
	ErrNotIPv4      = errors.New("nftset: not an ipv4 prefix")
	ErrConnClosed   = errors.New("conn is closed")
	ErrTableMissing = errors.New("nftset: table not found")
)

var _ NftSet = (*NftSetLinux)(nil)

type NftSetLinux struct {
	table *nftables.Table
	set   *nftables.Set
	conn  *nftables.Conn
	lock  sync.Mutex
}

func New(tableName string, setName string) (*NftSetLinux, error) {
	conn, err := nftables.New()
	if err != nil {
		return nil, err
	}
	tables, err := conn.ListTables()
	if err != nil {
		return nil, err
	}
	var matchTable *nftables.Table
	for _, table := range tables {
		if table.Name == tableName && (table.Family == nftables.TableFamilyIPv4 || table.Family == nftables.TableFamilyINet) {
			matchTable = table
			break
		}
	}
	if matchTable == nil {
		conn.CloseLasting()
		return nil, fmt.Errorf("%w: %s", ErrTableMissing, tableName)
	}
	set, err := conn.GetSetByName(matchTable, setName)
	if err != nil {
		conn.CloseLasting()
		return nil, err
	}
	return &NftSetLinux{
		table: matchTable,
		set:   set,
		conn:  conn,
	}, nil
}

func (n *NftSetLinux) Name() string {
	return fmt.Sprintf("%s-%s", n.table.Name, n.set.Name)
}

func (n *NftSetLinux) Close() error {
	n.lock.Lock()
	defer n.lock.Unlock()
	if n.conn == nil {
		return nil
	}
	conn := n.conn
	n.conn = nil
	return conn.CloseLasting()
}

// intervalElements turns a prefix into the start/end pair an interval set
// expects. The end key is exclusive.
func intervalElements(prefix netip.Prefix, ttl time.Duration) []nftables.SetElement {
	r := netipx.RangeOfPrefix(prefix)
	startElem := nftables.SetElement{
		Key: r.From().AsSlice(),
	}
	endElem := nftables.SetElement{
		Key:         r.To().Next().AsSlice(),
		IntervalEnd: true,
	}
	if !r.To().Next().IsValid() {
		// 255.255.255.255 has no successor, the kernel takes a zero end key
		endElem.Key = make([]byte, 4)
	}
	if ttl > 0 {
		startElem.Timeout = ttl
		endElem.Timeout = ttl
	}
	return []nftables.SetElement{startElem, endElem}
}

func (n *NftSetLinux) AddCIDR(prefix netip.Prefix, ttl time.Duration) error {
	if !prefix.Addr().Is4() {
		return ErrNotIPv4
	}
	n.lock.Lock()
	defer n.lock.Unlock()
	if n.conn == nil {
		return ErrConnClosed
	}
	err := n.conn.SetAddElements(n.set, intervalElements(prefix, ttl))
	if err != nil {
		return err
	}
	return n.conn.Flush()
}

func (n *NftSetLinux) DelCIDR(prefix netip.Prefix) error {
	if !prefix.Addr().Is4() {
		return ErrNotIPv4
	}
	n.lock.Lock()
	defer n.lock.Unlock()
	if n.conn == nil {
		return ErrConnClosed
	}
	err := n.conn.SetDeleteElements(n.set, intervalElements(prefix, 0))
	if err != nil {
		return err
	}
	return n.conn.Flush()
}

func (n *NftSetLinux) FlushAll() error {
	n.lock.Lock()
	defer n.lock.Unlock()
	if n.conn == nil {
		return ErrConnClosed
	}
	n.conn.FlushSet(n.set)
	return n.conn.Flush()
}
