package option

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"github.com/scopenco/netblock-tools/adapter"
	"github.com/scopenco/netblock-tools/constant"
	"github.com/scopenco/netblock-tools/emit"
	"github.com/scopenco/netblock-tools/engine"

	"go4.org/netipx"
)

type DropRuleOptions struct {
	Pattern string `config:"pattern"`
	Mask    int    `config:"mask"`
}

func (o *Option) Rules() ([]engine.Rule, error) {
	rules := make([]engine.Rule, 0, len(o.DropRules))
	for i, r := range o.DropRules {
		if r.Pattern == "" {
			return nil, &ConfigError{Field: fmt.Sprintf("drop-rules[%d]", i), Err: errors.New("pattern is empty")}
		}
		rule, err := engine.NewRule(r.Pattern, r.Mask)
		if err != nil {
			return nil, &ConfigError{Field: fmt.Sprintf("drop-rules[%d]", i), Err: err}
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// SafelistSet parses the safelist. Bare addresses are single-host prefixes.
func (o *Option) SafelistSet() (*netipx.IPSet, error) {
	if len(o.Safelist) == 0 {
		return nil, nil
	}
	var b netipx.IPSetBuilder
	for _, s := range o.Safelist {
		s = strings.TrimSpace(s)
		if !strings.Contains(s, "/") {
			addr, err := netip.ParseAddr(s)
			if err != nil {
				return nil, &ConfigError{Field: "safelist", Err: err}
			}
			b.Add(addr)
			continue
		}
		prefix, err := netip.ParsePrefix(s)
		if err != nil {
			return nil, &ConfigError{Field: "safelist", Err: err}
		}
		b.AddPrefix(prefix.Masked())
	}
	set, err := b.IPSet()
	if err != nil {
		return nil, &ConfigError{Field: "safelist", Err: err}
	}
	return set, nil
}

func (o *Option) Extractor() (engine.Extractor, error) {
	extractor, err := engine.NewExtractor(o.Pattern)
	if err != nil {
		return nil, &ConfigError{Field: "pattern", Err: err}
	}
	return extractor, nil
}

func (o *Option) Mode() engine.Mode {
	if o.Show {
		return engine.ShowOnly
	}
	return engine.Enforce
}

// ShowTemplate is what show mode prints per network: the command when one
// is set, otherwise the bare network.
func (o *Option) ShowTemplate() emit.Template {
	if o.Command != "" {
		return emit.Template(o.Command)
	}
	return "%s"
}

// Action resolves the enforce backend. A bare command means the command
// action.
func (o *Option) Action() ActionOptions {
	a := o.ActionOptions
	if a.Type == "" {
		a.Type = constant.ActionCommand
	}
	if a.Tag == "" {
		a.Tag = a.Type
	}
	if a.Type == constant.ActionCommand {
		args := make(map[string]any, len(a.Args)+1)
		for k, v := range a.Args {
			args[k] = v
		}
		if _, ok := args["command"]; !ok && o.Command != "" {
			args["command"] = o.Command
		}
		a.Args = args
	}
	return a
}

func (o *Option) Validate() error {
	if o.File == "" {
		return &ConfigError{Field: "file", Err: errors.New("no input file, set file or use -f")}
	}
	if o.MaxBlocked < 0 {
		return &ConfigError{Field: "max-blocked", Err: fmt.Errorf("must not be negative: %d", o.MaxBlocked)}
	}
	if o.Command != "" {
		err := emit.Template(o.Command).Validate()
		if err != nil {
			return &ConfigError{Field: "command", Err: err}
		}
	}
	_, err := o.Rules()
	if err != nil {
		return err
	}
	_, err = o.SafelistSet()
	if err != nil {
		return err
	}
	_, err = o.Extractor()
	if err != nil {
		return err
	}
	if !o.Show {
		a := o.Action()
		_, err = adapter.NewAction(a.Type, a.Tag, a.Args)
		if err != nil {
			return &ConfigError{Field: "action", Err: err}
		}
	}
	return nil
}
