package action

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/scopenco/netblock-tools/adapter"
	"github.com/scopenco/netblock-tools/emit"
)

var _ adapter.Dispatcher = (*Show)(nil)

// Show prints the formatted command for each network instead of running it.
type Show struct {
	writer   io.Writer
	template emit.Template
	lock     sync.Mutex
}

func NewShow(w io.Writer, template emit.Template) (*Show, error) {
	err := template.Validate()
	if err != nil {
		return nil, err
	}
	return &Show{
		writer:   w,
		template: template,
	}, nil
}

func (s *Show) Dispatch(_ context.Context, req adapter.Request) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	_, err := fmt.Fprintln(s.writer, s.template.FormatBlock(req.Network))
	if err != nil {
		return &adapter.DispatchError{Network: req.Network, Action: "show", Err: err}
	}
	return nil
}
