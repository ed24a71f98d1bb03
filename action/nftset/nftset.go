package nftset

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/scopenco/netblock-tools/action/nftset/internal"
	"github.com/scopenco/netblock-tools/adapter"
	"github.com/scopenco/netblock-tools/lib/tools"
	"github.com/scopenco/netblock-tools/lib/types"
	"github.com/scopenco/netblock-tools/log"

	"github.com/go-chi/chi"
)

const ActionType = "nftset"

func init() {
	adapter.RegisterAction(ActionType, NewNftSet)
}

var (
	_ adapter.Action     = (*NftSet)(nil)
	_ adapter.Starter    = (*NftSet)(nil)
	_ adapter.Closer     = (*NftSet)(nil)
	_ adapter.WithLogger = (*NftSet)(nil)
	_ adapter.APIHandler = (*NftSet)(nil)
)

// NftSet adds blocked networks to an existing nftables interval set.
type NftSet struct {
	tag       string
	logger    log.Logger
	option    option
	flushLock sync.Mutex
	nftset    internal.NftSet
}

type option struct {
	Table  string             `config:"table"`
	Set    string             `config:"set"`
	TTL    types.TimeDuration `config:"ttl"`
	Remove bool               `config:"remove"`
}

func NewNftSet(tag string, args map[string]any) (adapter.Action, error) {
	n := &NftSet{
		tag:    tag,
		logger: log.NopLogger(),
	}

	err := tools.NewMapStructureDecoderWithResult(&n.option).Decode(args)
	if err != nil {
		return nil, fmt.Errorf("parse args fail: %s", err)
	}
	if n.option.Table == "" || n.option.Set == "" {
		return nil, fmt.Errorf("table and set are required")
	}

	return n, nil
}

func (n *NftSet) Tag() string {
	return n.tag
}

func (n *NftSet) Type() string {
	return ActionType
}

func (n *NftSet) WithLogger(logger log.Logger) {
	n.logger = logger
}

func (n *NftSet) Start() error {
	nftset, err := internal.New(n.option.Table, n.option.Set)
	if err != nil {
		return fmt.Errorf("init nftset fail: %s", err)
	}
	n.nftset = nftset
	return nil
}

func (n *NftSet) Close() error {
	if n.nftset != nil {
		err := n.nftset.Close()
		if err != nil {
			return fmt.Errorf("close nftset conn fail: %s", err)
		}
	}
	return nil
}

func (n *NftSet) APIHandler() http.Handler {
	c := chi.NewRouter()
	c.Get("/flush", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
		go n.flushAll()
	})
	return c
}

func (n *NftSet) flushAll() {
	if n.nftset == nil {
		return
	}
	if !n.flushLock.TryLock() {
		return
	}
	defer n.flushLock.Unlock()
	n.logger.Info(fmt.Sprintf("flush all %s", n.nftset.Name()))
	err := n.nftset.FlushAll()
	if err != nil {
		n.logger.Error(fmt.Sprintf("flush all %s fail: %s", n.nftset.Name(), err))
	}
}

func (n *NftSet) Dispatch(_ context.Context, req adapter.Request) error {
	if n.nftset == nil {
		return &adapter.DispatchError{Network: req.Network, Action: n.tag, Err: fmt.Errorf("nftset not started")}
	}
	prefix := req.Network.Prefix()
	var err error
	if n.option.Remove {
		err = n.nftset.DelCIDR(prefix)
	} else {
		err = n.nftset.AddCIDR(prefix, time.Duration(n.option.TTL))
	}
	if err != nil {
		return &adapter.DispatchError{Network: req.Network, Action: n.tag, Err: err}
	}
	if n.option.Remove {
		n.logger.Debug(fmt.Sprintf("del cidr %s from %s", prefix, n.nftset.Name()))
	} else {
		n.logger.Debug(fmt.Sprintf("add cidr %s to %s, ttl: %s", prefix, n.nftset.Name(), n.option.TTL))
	}
	return nil
}
