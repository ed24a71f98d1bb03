package nftset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/scopenco/netblock-tools/adapter"
	"github.com/scopenco/netblock-tools/cidr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSet struct {
	lock    sync.Mutex
	added   []netip.Prefix
	ttl     []time.Duration
	deleted []netip.Prefix
	flushed chan struct{}
	err     error
}

func (f *fakeSet) Name() string { return "filter-blocked" }
func (f *fakeSet) Close() error { return nil }

func (f *fakeSet) AddCIDR(p netip.Prefix, ttl time.Duration) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.err != nil {
		return f.err
	}
	f.added = append(f.added, p)
	f.ttl = append(f.ttl, ttl)
	return nil
}

func (f *fakeSet) DelCIDR(p netip.Prefix) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.deleted = append(f.deleted, p)
	return f.err
}

func (f *fakeSet) FlushAll() error {
	close(f.flushed)
	return nil
}

func TestNewNftSet(t *testing.T) {
	_, err := NewNftSet("nft", map[string]any{"table": "filter"})
	assert.Error(t, err)

	a, err := NewNftSet("nft", map[string]any{"table": "filter", "set": "blocked", "ttl": "1h"})
	require.NoError(t, err)
	n := a.(*NftSet)
	assert.Equal(t, time.Hour, time.Duration(n.option.TTL))
	assert.False(t, n.option.Remove)
}

func TestNftSetDispatch(t *testing.T) {
	a, err := NewNftSet("nft", map[string]any{"table": "filter", "set": "blocked", "ttl": 60})
	require.NoError(t, err)
	n := a.(*NftSet)

	block := cidr.Block{Base: 0x01020300, Bits: 24}
	err = n.Dispatch(context.Background(), adapter.Request{Network: block})
	assert.ErrorIs(t, err, adapter.ErrDispatch)

	set := &fakeSet{}
	n.nftset = set
	require.NoError(t, n.Dispatch(context.Background(), adapter.Request{Network: block}))
	assert.Equal(t, []netip.Prefix{netip.MustParsePrefix("1.2.3.0/24")}, set.added)
	assert.Equal(t, []time.Duration{time.Minute}, set.ttl)

	set.err = errors.New("netlink receive: no such file or directory")
	err = n.Dispatch(context.Background(), adapter.Request{Network: block})
	var dispatchErr *adapter.DispatchError
	require.True(t, errors.As(err, &dispatchErr))
	assert.Equal(t, "nft", dispatchErr.Action)
}

func TestNftSetRemove(t *testing.T) {
	a, err := NewNftSet("nft", map[string]any{"table": "filter", "set": "blocked", "remove": true})
	require.NoError(t, err)
	n := a.(*NftSet)
	set := &fakeSet{}
	n.nftset = set

	require.NoError(t, n.Dispatch(context.Background(), adapter.Request{Network: cidr.Block{Base: 0x0a000000, Bits: 8}}))
	assert.Equal(t, []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}, set.deleted)
	assert.Empty(t, set.added)
}

func TestNftSetFlushHandler(t *testing.T) {
	a, err := NewNftSet("nft", map[string]any{"table": "filter", "set": "blocked"})
	require.NoError(t, err)
	n := a.(*NftSet)
	set := &fakeSet{flushed: make(chan struct{})}
	n.nftset = set

	rec := httptest.NewRecorder()
	n.APIHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/flush", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	select {
	case <-set.flushed:
	case <-time.After(time.Second):
		t.Fatal("set was not flushed")
	}
}
