package action

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/scopenco/netblock-tools/adapter"
	"github.com/scopenco/netblock-tools/cidr"
	"github.com/scopenco/netblock-tools/emit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShow(t *testing.T) {
	var buf bytes.Buffer
	show, err := NewShow(&buf, "iptables -I INPUT -s %s -j DROP")
	require.NoError(t, err)

	require.NoError(t, show.Dispatch(context.Background(), adapter.Request{Network: cidr.Block{Base: 0x01020300, Bits: 24}, DryRun: true}))
	assert.Equal(t, "iptables -I INPUT -s 1.2.3.0/24 -j DROP\n", buf.String())

	_, err = NewShow(&buf, "no verb")
	assert.ErrorIs(t, err, emit.ErrTemplateVerb)
}

func TestSwitchIsolatesModes(t *testing.T) {
	var shown, enforced []cidr.Block
	s := &Switch{
		Show: adapter.DispatcherFunc(func(_ context.Context, req adapter.Request) error {
			shown = append(shown, req.Network)
			return nil
		}),
		Enforce: adapter.DispatcherFunc(func(_ context.Context, req adapter.Request) error {
			enforced = append(enforced, req.Network)
			return nil
		}),
	}
	a := cidr.Block{Base: 0x01000000, Bits: 8}
	b := cidr.Block{Base: 0x02000000, Bits: 8}
	require.NoError(t, s.Dispatch(context.Background(), adapter.Request{Network: a, DryRun: true}))
	require.NoError(t, s.Dispatch(context.Background(), adapter.Request{Network: b}))

	assert.Equal(t, []cidr.Block{a}, shown)
	assert.Equal(t, []cidr.Block{b}, enforced)
}

func TestSwitchWithoutEnforcer(t *testing.T) {
	s := &Switch{}
	require.NoError(t, s.Dispatch(context.Background(), adapter.Request{DryRun: true}))

	err := s.Dispatch(context.Background(), adapter.Request{})
	assert.True(t, errors.Is(err, ErrNoEnforcer))
	assert.True(t, errors.Is(err, adapter.ErrDispatch))
}
