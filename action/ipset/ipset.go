package ipset

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/scopenco/netblock-tools/action/ipset/internal"
	"github.com/scopenco/netblock-tools/adapter"
	"github.com/scopenco/netblock-tools/lib/tools"
	"github.com/scopenco/netblock-tools/lib/types"
	"github.com/scopenco/netblock-tools/log"

	"github.com/go-chi/chi"
)

const ActionType = "ipset"

func init() {
	adapter.RegisterAction(ActionType, NewIPSet)
}

var (
	_ adapter.Action     = (*IPSet)(nil)
	_ adapter.Starter    = (*IPSet)(nil)
	_ adapter.Closer     = (*IPSet)(nil)
	_ adapter.WithLogger = (*IPSet)(nil)
	_ adapter.APIHandler = (*IPSet)(nil)
)

type IPSet struct {
	tag       string
	logger    log.Logger
	option    option
	flushLock sync.Mutex
	ipset     internal.IPSet
}

type option struct {
	Name   string             `config:"name"`
	TTL    types.TimeDuration `config:"ttl"`
	Create bool               `config:"create"`
	Remove bool               `config:"remove"`
}

func NewIPSet(tag string, args map[string]any) (adapter.Action, error) {
	i := &IPSet{
		tag:    tag,
		logger: log.NopLogger(),
	}

	err := tools.NewMapStructureDecoderWithResult(&i.option).Decode(args)
	if err != nil {
		return nil, fmt.Errorf("parse args fail: %s", err)
	}
	if i.option.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	return i, nil
}

func (i *IPSet) Tag() string {
	return i.tag
}

func (i *IPSet) Type() string {
	return ActionType
}

func (i *IPSet) WithLogger(logger log.Logger) {
	i.logger = logger
}

func (i *IPSet) Start() error {
	ipset, err := internal.New(i.option.Name, i.option.Create, time.Duration(i.option.TTL))
	if err != nil {
		return fmt.Errorf("open ipset %s fail: %s", i.option.Name, err)
	}
	i.ipset = ipset
	return nil
}

func (i *IPSet) Close() error {
	if i.ipset != nil {
		return i.ipset.Close()
	}
	return nil
}

func (i *IPSet) APIHandler() http.Handler {
	c := chi.NewRouter()
	c.Get("/flush", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
		go i.flushAll()
	})
	return c
}

func (i *IPSet) flushAll() {
	if i.ipset == nil {
		return
	}
	if !i.flushLock.TryLock() {
		return
	}
	defer i.flushLock.Unlock()
	i.logger.Info(fmt.Sprintf("flush all %s", i.ipset.Name()))
	err := i.ipset.FlushAll()
	if err != nil {
		i.logger.Error(fmt.Sprintf("flush all %s fail: %s", i.ipset.Name(), err))
	}
}

func (i *IPSet) Dispatch(_ context.Context, req adapter.Request) error {
	if i.ipset == nil {
		return &adapter.DispatchError{Network: req.Network, Action: i.tag, Err: fmt.Errorf("ipset not started")}
	}
	prefix := req.Network.Prefix()
	var err error
	if i.option.Remove {
		err = i.ipset.DelCIDR(prefix)
	} else {
		err = i.ipset.AddCIDR(prefix, time.Duration(i.option.TTL))
	}
	if err != nil {
		return &adapter.DispatchError{Network: req.Network, Action: i.tag, Err: err}
	}
	if i.option.Remove {
		i.logger.Debug(fmt.Sprintf("del cidr %s from %s", prefix, i.ipset.Name()))
	} else {
		i.logger.Debug(fmt.Sprintf("add cidr %s to %s, ttl: %s", prefix, i.ipset.Name(), i.option.TTL))
	}
	return nil
}
