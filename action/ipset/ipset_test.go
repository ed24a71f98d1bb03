package ipset

import (
	"context"
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/scopenco/netblock-tools/adapter"
	"github.com/scopenco/netblock-tools/cidr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSet struct {
	added   map[netip.Prefix]time.Duration
	deleted []netip.Prefix
	err     error
}

func (f *fakeSet) Name() string { return "netblock" }
func (f *fakeSet) Close() error { return nil }

func (f *fakeSet) AddCIDR(p netip.Prefix, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.added[p] = ttl
	return nil
}

func (f *fakeSet) DelCIDR(p netip.Prefix) error {
	f.deleted = append(f.deleted, p)
	return f.err
}

func (f *fakeSet) FlushAll() error { return nil }

func TestNewIPSet(t *testing.T) {
	_, err := NewIPSet("ips", map[string]any{})
	assert.Error(t, err)

	a, err := NewIPSet("ips", map[string]any{"name": "netblock", "create": true, "ttl": "10m"})
	require.NoError(t, err)
	i := a.(*IPSet)
	assert.True(t, i.option.Create)
	assert.Equal(t, 10*time.Minute, time.Duration(i.option.TTL))
}

func TestIPSetDispatch(t *testing.T) {
	a, err := NewIPSet("ips", map[string]any{"name": "netblock"})
	require.NoError(t, err)
	i := a.(*IPSet)
	set := &fakeSet{added: make(map[netip.Prefix]time.Duration)}
	i.ipset = set

	block := cidr.Block{Base: 0xc0a80000, Bits: 16}
	require.NoError(t, i.Dispatch(context.Background(), adapter.Request{Network: block}))
	assert.Equal(t, map[netip.Prefix]time.Duration{netip.MustParsePrefix("192.168.0.0/16"): 0}, set.added)

	set.err = errors.New("operation not permitted")
	err = i.Dispatch(context.Background(), adapter.Request{Network: block})
	assert.ErrorIs(t, err, adapter.ErrDispatch)
	assert.Contains(t, err.Error(), "192.168.0.0/16")
}
