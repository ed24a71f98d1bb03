package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/scopenco/netblock-tools/adapter"
	"github.com/scopenco/netblock-tools/emit"
	"github.com/scopenco/netblock-tools/lib/tools"
	"github.com/scopenco/netblock-tools/log"
)

const ActionType = "command"

const defaultShell = "/bin/sh"

func init() {
	adapter.RegisterAction(ActionType, NewCommand)
}

var (
	_ adapter.Action     = (*Command)(nil)
	_ adapter.WithLogger = (*Command)(nil)
)

// Command runs the configured command line through a shell, once per network.
type Command struct {
	tag    string
	logger log.Logger

	template emit.Template
	shell    string
	env      map[string]string

	bufferPool *sync.Pool
}

type option struct {
	Command string            `config:"command"`
	Shell   string            `config:"shell"`
	Env     map[string]string `config:"env"`
}

func NewCommand(tag string, args map[string]any) (adapter.Action, error) {
	c := &Command{
		tag:    tag,
		logger: log.NopLogger(),
		shell:  defaultShell,
		bufferPool: &sync.Pool{
			New: func() any {
				return bytes.NewBuffer(nil)
			},
		},
	}

	var op option
	err := tools.NewMapStructureDecoderWithResult(&op).Decode(args)
	if err != nil {
		return nil, fmt.Errorf("decode config fail: %s", err)
	}
	if op.Command == "" {
		return nil, fmt.Errorf("command is empty")
	}
	c.template = emit.Template(op.Command)
	err = c.template.Validate()
	if err != nil {
		return nil, err
	}
	if op.Shell != "" {
		c.shell = op.Shell
	}
	if len(op.Env) > 0 {
		c.env = op.Env
	}

	return c, nil
}

func (c *Command) Tag() string {
	return c.tag
}

func (c *Command) Type() string {
	return ActionType
}

func (c *Command) WithLogger(logger log.Logger) {
	c.logger = logger
}

func (c *Command) Dispatch(ctx context.Context, req adapter.Request) error {
	line := c.template.FormatBlock(req.Network)
	c.logger.Debug(fmt.Sprintf("run: %s", line))
	cmd := exec.CommandContext(ctx, c.shell, "-c", line)
	cmd.Env = os.Environ()
	for k, v := range c.env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Env = append(cmd.Env, "NETBLOCK_NETWORK="+req.Network.String())
	var (
		stdout = c.bufferPool.Get().(*bytes.Buffer)
		stderr = c.bufferPool.Get().(*bytes.Buffer)
	)
	defer func() {
		stdout.Reset()
		stderr.Reset()
		c.bufferPool.Put(stdout)
		c.bufferPool.Put(stderr)
	}()
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	err := cmd.Run()
	if stdout.Len() > 0 {
		c.logger.Debug(fmt.Sprintf("stdout: %s", trimNewline(stdout.String())))
	}
	if stderr.Len() > 0 {
		c.logger.Debug(fmt.Sprintf("stderr: %s", trimNewline(stderr.String())))
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && stderr.Len() > 0 {
			err = fmt.Errorf("%s: %s", err, trimNewline(stderr.String()))
		}
		return &adapter.DispatchError{Network: req.Network, Action: c.tag, Err: err}
	}
	return nil
}

func trimNewline(s string) string {
	return strings.TrimRightFunc(s, func(r rune) bool {
		return r == '\n' || r == '\r'
	})
}
