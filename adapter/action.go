package adapter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/scopenco/netblock-tools/cidr"
)

var ErrDispatch = errors.New("dispatch fail")

// Request asks a dispatcher to act on one network.
type Request struct {
	Network cidr.Block
	DryRun  bool
}

type Dispatcher interface {
	Dispatch(ctx context.Context, req Request) error
}

type DispatcherFunc func(ctx context.Context, req Request) error

func (f DispatcherFunc) Dispatch(ctx context.Context, req Request) error {
	return f(ctx, req)
}

// DispatchError reports a failed external action for a network.
type DispatchError struct {
	Network cidr.Block
	Action  string
	Err     error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s %s fail: %s", e.Action, e.Network, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

func (e *DispatchError) Is(target error) bool {
	return target == ErrDispatch
}

// Action is a configured enforcement backend.
type Action interface {
	Dispatcher
	Tag() string
	Type() string
}

type CreateActionFunc func(tag string, args map[string]any) (Action, error)

var (
	actionMap     = make(map[string]CreateActionFunc)
	actionMapLock sync.RWMutex
)

func RegisterAction(typ string, f CreateActionFunc) {
	actionMapLock.Lock()
	defer actionMapLock.Unlock()
	actionMap[typ] = f
}

func NewAction(typ string, tag string, args map[string]any) (Action, error) {
	actionMapLock.RLock()
	defer actionMapLock.RUnlock()
	if f, ok := actionMap[typ]; ok {
		return f(tag, args)
	}
	return nil, fmt.Errorf("invalid action type: %s", typ)
}

func GetAllAction() []string {
	actionMapLock.RLock()
	defer actionMapLock.RUnlock()
	ret := make([]string, 0, len(actionMap))
	for k := range actionMap {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}
