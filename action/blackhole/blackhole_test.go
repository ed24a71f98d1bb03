package blackhole

import (
	"context"
	"errors"
	"net/netip"
	"testing"

	"github.com/scopenco/netblock-tools/adapter"
	"github.com/scopenco/netblock-tools/cidr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRouter struct {
	added   []netip.Prefix
	deleted []netip.Prefix
	err     error
}

func (f *fakeRouter) Add(p netip.Prefix) error {
	f.added = append(f.added, p)
	return f.err
}

func (f *fakeRouter) Del(p netip.Prefix) error {
	f.deleted = append(f.deleted, p)
	return f.err
}

func (f *fakeRouter) Close() error { return nil }

func TestNewBlackhole(t *testing.T) {
	_, err := NewBlackhole("null", map[string]any{"table": -1})
	assert.Error(t, err)

	a, err := NewBlackhole("null", nil)
	require.NoError(t, err)
	assert.Equal(t, ActionType, a.Type())
}

func TestBlackholeDispatch(t *testing.T) {
	a, err := NewBlackhole("null", map[string]any{})
	require.NoError(t, err)
	b := a.(*Blackhole)
	router := &fakeRouter{}
	b.router = router

	require.NoError(t, b.Dispatch(context.Background(), adapter.Request{Network: cidr.Block{Base: 0x01000000, Bits: 24}}))
	assert.Equal(t, []netip.Prefix{netip.MustParsePrefix("1.0.0.0/24")}, router.added)

	router.err = errors.New("permission denied")
	err = b.Dispatch(context.Background(), adapter.Request{Network: cidr.Block{Base: 0x01000100, Bits: 24}})
	assert.ErrorIs(t, err, adapter.ErrDispatch)
}

func TestBlackholeRemove(t *testing.T) {
	a, err := NewBlackhole("null", map[string]any{"remove": true, "table": 100})
	require.NoError(t, err)
	b := a.(*Blackhole)
	assert.Equal(t, 100, b.option.Table)
	router := &fakeRouter{}
	b.router = router

	require.NoError(t, b.Dispatch(context.Background(), adapter.Request{Network: cidr.Block{Base: 0x01000000, Bits: 24}}))
	assert.Equal(t, []netip.Prefix{netip.MustParsePrefix("1.0.0.0/24")}, router.deleted)
}
