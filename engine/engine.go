package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"

	"github.com/scopenco/netblock-tools/adapter"
	"github.com/scopenco/netblock-tools/cidr"
	"github.com/scopenco/netblock-tools/lib/tools"
	"github.com/scopenco/netblock-tools/log"

	"go4.org/netipx"
)

var ErrMalformedLine = errors.New("no ipv4 address found in matched line")

// Result is the outcome of processing one line.
type Result int

const (
	Unmatched Result = iota
	Malformed
	Safelisted
	Duplicate
	Dispatched
	DispatchFailed
)

func (r Result) String() string {
	switch r {
	case Unmatched:
		return "unmatched"
	case Malformed:
		return "malformed"
	case Safelisted:
		return "safelisted"
	case Duplicate:
		return "duplicate"
	case Dispatched:
		return "dispatched"
	case DispatchFailed:
		return "dispatch_failed"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

type Options struct {
	Rules      []Rule
	Mode       Mode
	Extractor  Extractor
	Safelist   *netipx.IPSet
	MaxBlocked int
}

// Engine matches lines against rules and dispatches each newly seen
// network once. It is not safe for concurrent use.
type Engine struct {
	logger     log.Logger
	dispatcher adapter.Dispatcher
	rules      []Rule
	mode       Mode
	extractor  Extractor
	safelist   *netipx.IPSet
	blocked    *BlockedSet
}

func New(logger log.Logger, dispatcher adapter.Dispatcher, options Options) (*Engine, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is nil")
	}
	if options.Mode != ShowOnly && options.Mode != Enforce {
		return nil, fmt.Errorf("invalid mode: %s", options.Mode)
	}
	if logger == nil {
		logger = log.NopLogger()
	}
	e := &Engine{
		logger:     logger,
		dispatcher: dispatcher,
		rules:      options.Rules,
		mode:       options.Mode,
		extractor:  options.Extractor,
		safelist:   options.Safelist,
		blocked:    NewBlockedSet(options.MaxBlocked),
	}
	if e.extractor == nil {
		e.extractor = DefaultExtractor()
	}
	initMetrics()
	return e, nil
}

func (e *Engine) Mode() Mode {
	return e.mode
}

func (e *Engine) Blocked() *BlockedSet {
	return e.blocked
}

func (e *Engine) match(line string) (Rule, bool) {
	for _, r := range e.rules {
		if r.Match(line) {
			return r, true
		}
	}
	return Rule{}, false
}

func (e *Engine) ProcessLine(ctx context.Context, line string) Result {
	result := e.processLine(ctx, line)
	observe(result, e.blocked.Len())
	return result
}

func (e *Engine) processLine(ctx context.Context, line string) Result {
	rule, ok := e.match(line)
	if !ok {
		e.logger.Debug(fmt.Sprintf("no rule matched: %s", line))
		return Unmatched
	}
	addr, ok := e.extractor.Extract(line)
	if !ok || !addr.Is4() {
		e.logger.Warn(fmt.Sprintf("%s: %s", ErrMalformedLine, line))
		return Malformed
	}
	prefix := netip.PrefixFrom(addr, int(rule.Mask)).Masked()
	block, err := cidr.BlockFromPrefix(prefix)
	if err != nil {
		e.logger.Warn(fmt.Sprintf("%s: %s", ErrMalformedLine, line))
		return Malformed
	}
	if e.safelist != nil && e.safelist.OverlapsPrefix(prefix) {
		e.logger.Info(fmt.Sprintf("skip safelisted network %s (%s)", block, addr))
		return Safelisted
	}
	if e.blocked.Contains(block) {
		e.logger.Debug(fmt.Sprintf("already blocked: %s", block))
		return Duplicate
	}
	e.blocked.Add(block)
	e.logger.Info(fmt.Sprintf("block %s (%s) by rule %s", block, addr, rule))
	err = e.dispatcher.Dispatch(ctx, adapter.Request{
		Network: block,
		DryRun:  e.mode == ShowOnly,
	})
	if err != nil {
		e.logger.Error(err)
		return DispatchFailed
	}
	return Dispatched
}

// Run processes lines until the source is exhausted or ctx is done.
// End of stream is not an error.
func (e *Engine) Run(ctx context.Context, lines adapter.LineSource) error {
	e.logger.Info(fmt.Sprintf("start in %s mode with %d rules", e.mode, len(e.rules)))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line, err := lines.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				e.logger.Info(fmt.Sprintf("end of input, %d networks blocked", e.blocked.Len()))
				return nil
			}
			if tools.IsCloseOrCanceled(err) && ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read line fail: %w", err)
		}
		e.ProcessLine(ctx, line)
	}
}
