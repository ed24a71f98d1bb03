package action

import (
	"context"
	"errors"

	"github.com/scopenco/netblock-tools/adapter"
)

var ErrNoEnforcer = errors.New("no enforce action configured")

var _ adapter.Dispatcher = (*Switch)(nil)

// Switch sends dry-run requests to Show and everything else to Enforce.
type Switch struct {
	Show    adapter.Dispatcher
	Enforce adapter.Dispatcher
}

func (s *Switch) Dispatch(ctx context.Context, req adapter.Request) error {
	if req.DryRun {
		if s.Show == nil {
			return nil
		}
		return s.Show.Dispatch(ctx, req)
	}
	if s.Enforce == nil {
		return &adapter.DispatchError{Network: req.Network, Action: "enforce", Err: ErrNoEnforcer}
	}
	return s.Enforce.Dispatch(ctx, req)
}
