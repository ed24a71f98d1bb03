package blackhole

import (
	"context"
	"fmt"

	"github.com/scopenco/netblock-tools/action/blackhole/internal"
	"github.com/scopenco/netblock-tools/adapter"
	"github.com/scopenco/netblock-tools/lib/tools"
	"github.com/scopenco/netblock-tools/log"
)

const ActionType = "blackhole"

func init() {
	adapter.RegisterAction(ActionType, NewBlackhole)
}

var (
	_ adapter.Action     = (*Blackhole)(nil)
	_ adapter.Starter    = (*Blackhole)(nil)
	_ adapter.Closer     = (*Blackhole)(nil)
	_ adapter.WithLogger = (*Blackhole)(nil)
)

// Blackhole null-routes blocked networks, the netlink form of
// "ip route add blackhole <net>".
type Blackhole struct {
	tag    string
	logger log.Logger
	option option
	router internal.Router
}

type option struct {
	Remove bool `config:"remove"`
	Table  int  `config:"table"`
}

func NewBlackhole(tag string, args map[string]any) (adapter.Action, error) {
	b := &Blackhole{
		tag:    tag,
		logger: log.NopLogger(),
	}
	err := tools.NewMapStructureDecoderWithResult(&b.option).Decode(args)
	if err != nil {
		return nil, fmt.Errorf("parse args fail: %s", err)
	}
	if b.option.Table < 0 {
		return nil, fmt.Errorf("invalid table: %d", b.option.Table)
	}
	return b, nil
}

func (b *Blackhole) Tag() string {
	return b.tag
}

func (b *Blackhole) Type() string {
	return ActionType
}

func (b *Blackhole) WithLogger(logger log.Logger) {
	b.logger = logger
}

func (b *Blackhole) Start() error {
	router, err := internal.New(b.option.Table)
	if err != nil {
		return fmt.Errorf("open netlink handle fail: %s", err)
	}
	b.router = router
	return nil
}

func (b *Blackhole) Close() error {
	if b.router != nil {
		return b.router.Close()
	}
	return nil
}

func (b *Blackhole) Dispatch(_ context.Context, req adapter.Request) error {
	if b.router == nil {
		return &adapter.DispatchError{Network: req.Network, Action: b.tag, Err: fmt.Errorf("router not started")}
	}
	var err error
	if b.option.Remove {
		err = b.router.Del(req.Network.Prefix())
	} else {
		err = b.router.Add(req.Network.Prefix())
	}
	if err != nil {
		return &adapter.DispatchError{Network: req.Network, Action: b.tag, Err: err}
	}
	if b.option.Remove {
		b.logger.Debug(fmt.Sprintf("del blackhole %s", req.Network))
	} else {
		b.logger.Debug(fmt.Sprintf("add blackhole %s", req.Network))
	}
	return nil
}
