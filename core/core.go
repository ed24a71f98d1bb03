package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/scopenco/netblock-tools/action"
	"github.com/scopenco/netblock-tools/adapter"
	"github.com/scopenco/netblock-tools/api"
	"github.com/scopenco/netblock-tools/engine"
	"github.com/scopenco/netblock-tools/lib/tools"
	"github.com/scopenco/netblock-tools/log"
	"github.com/scopenco/netblock-tools/option"
	"github.com/scopenco/netblock-tools/source"

	// actions
	_ "github.com/scopenco/netblock-tools/action/blackhole"
	_ "github.com/scopenco/netblock-tools/action/command"
	_ "github.com/scopenco/netblock-tools/action/ipset"
	_ "github.com/scopenco/netblock-tools/action/nftset"
)

// Core wires the ipblock pipeline: source, engine, dispatcher and the
// optional api server.
type Core struct {
	ctx       context.Context
	logger    log.Logger
	options   *option.Option
	engine    *engine.Engine
	action    adapter.Action
	apiServer *api.Server
}

// New validates options and builds every component. show-mode output goes
// to stdout.
func New(ctx context.Context, logger log.Logger, options *option.Option, stdout io.Writer) (*Core, error) {
	c := &Core{
		ctx:     ctx,
		logger:  log.NewTagLogger(logger, "core"),
		options: options,
	}
	err := options.Validate()
	if err != nil {
		return nil, err
	}
	rules, err := options.Rules()
	if err != nil {
		return nil, err
	}
	safelist, err := options.SafelistSet()
	if err != nil {
		return nil, err
	}
	extractor, err := options.Extractor()
	if err != nil {
		return nil, err
	}
	show, err := action.NewShow(stdout, options.ShowTemplate())
	if err != nil {
		return nil, &option.ConfigError{Field: "command", Err: err}
	}
	dispatcher := &action.Switch{Show: show}
	if !options.Show {
		a := options.Action()
		act, err := adapter.NewAction(a.Type, a.Tag, a.Args)
		if err != nil {
			return nil, &option.ConfigError{Field: "action", Err: err}
		}
		if wl, ok := act.(adapter.WithLogger); ok {
			wl.WithLogger(log.NewTagLogger(logger, fmt.Sprintf("action/%s", act.Tag())))
		}
		c.action = act
		dispatcher.Enforce = act
	}
	c.engine, err = engine.New(log.NewTagLogger(logger, "engine"), dispatcher, engine.Options{
		Rules:      rules,
		Mode:       options.Mode(),
		Extractor:  extractor,
		Safelist:   safelist,
		MaxBlocked: options.MaxBlocked,
	})
	if err != nil {
		return nil, fmt.Errorf("init engine fail: %s", err)
	}
	c.apiServer, err = api.NewServer(ctx, logger, options.APIOptions)
	if err != nil {
		return nil, &option.ConfigError{Field: "api", Err: err}
	}
	if m, ok := c.action.(api.MountAction); ok {
		c.apiServer.MountAction(m)
	}
	c.logger.Debug(fmt.Sprintf("%d rules, mode %s", len(rules), options.Mode()))
	if safelist != nil {
		c.logger.Debug(fmt.Sprintf("safelist: %s", tools.Join(safelist.Prefixes(), ", ")))
	}
	return c, nil
}

func (c *Core) Engine() *engine.Engine {
	return c.engine
}

// Run reads the input to its end, or until ctx is canceled.
func (c *Core) Run() error {
	c.logger.Info("run blocking")
	startTime := time.Now()
	defer c.logger.Info("core close")

	src, err := source.Open(c.options.File, c.options.Follow, log.NewTagLogger(c.logger, "source"))
	if err != nil {
		return err
	}
	defer src.Close()

	runCtx, runCancel := context.WithCancelCause(c.ctx)
	defer runCancel(nil)

	if c.action != nil {
		if starter, isStarter := c.action.(adapter.Starter); isStarter {
			err := starter.Start()
			if err != nil {
				return fmt.Errorf("action [%s] start fail: %s", c.action.Tag(), err)
			}
			c.logger.Info(fmt.Sprintf("action [%s] start", c.action.Tag()))
		}
		defer func() {
			if closer, isCloser := c.action.(adapter.Closer); isCloser {
				err := closer.Close()
				if err != nil {
					c.logger.Error(fmt.Sprintf("action [%s] close fail: %s", c.action.Tag(), err))
				}
			}
		}()
	}
	if c.apiServer.Enabled() {
		c.apiServer.WithFatalCloser(runCancel)
		err := c.apiServer.Start()
		if err != nil {
			return fmt.Errorf("api server start fail: %s", err)
		}
		defer func() {
			err := c.apiServer.Close()
			if err != nil {
				c.logger.Error(fmt.Sprintf("api server close fail: %s", err))
			}
		}()
	}
	c.logger.Debug(fmt.Sprintf("core is running, cost %s", time.Since(startTime)))

	err = c.engine.Run(runCtx, src)
	if err != nil && tools.IsCloseOrCanceled(err) {
		cause := context.Cause(runCtx)
		if cause != nil && !errors.Is(cause, context.Canceled) {
			return cause
		}
		return nil
	}
	return err
}
