package emit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/scopenco/netblock-tools/cidr"
	"github.com/scopenco/netblock-tools/constant"
)

var ErrTemplateVerb = errors.New("emit: template must contain exactly one %s")

// Template is a command line with a single %s placeholder for the network.
// "%%" renders as a literal percent sign.
type Template string

func (t Template) Validate() error {
	n := 0
	s := string(t)
	for i := 0; i < len(s); i++ {
		if s[i] != '%' || i+1 >= len(s) {
			continue
		}
		switch s[i+1] {
		case 's':
			n++
			i++
		case '%':
			i++
		}
	}
	if n != 1 {
		return fmt.Errorf("%w: %q", ErrTemplateVerb, s)
	}
	return nil
}

func (t Template) Format(network string) string {
	s := string(t)
	var b strings.Builder
	b.Grow(len(s) + len(network))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+1 < len(s) {
			switch s[i+1] {
			case 's':
				b.WriteString(network)
				i++
				continue
			case '%':
				b.WriteByte('%')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func (t Template) FormatBlock(block cidr.Block) string {
	return t.Format(block.String())
}

type IptablesOptions struct {
	Bin       string
	Chain     string
	Interface string
	Protocol  string
	DPort     string
	AllowOnly bool
}

var protocols = map[string]bool{"icmp": true, "tcp": true, "udp": true, "all": true}

// Iptables builds the per-network rule template and the base command it
// extends. With AllowOnly the caller closes the chain with Base + " -j DROP".
func Iptables(options IptablesOptions) (base string, rule Template, err error) {
	if options.Protocol != "" && !protocols[options.Protocol] {
		return "", "", fmt.Errorf("invalid protocol: %s (choose from icmp, tcp, udp, all)", options.Protocol)
	}
	base = options.Bin
	if base == "" {
		base = constant.IptablesBin
	}
	if options.Chain != "" {
		base += " -A " + options.Chain
	}
	if options.Interface != "" {
		base += " -i " + options.Interface
	}
	if options.Protocol != "" {
		base += " -p " + options.Protocol
	}
	if options.DPort != "" {
		base += " --dport " + options.DPort
	}
	if options.AllowOnly {
		return base, Template(escape(base) + " -s %s -j ACCEPT"), nil
	}
	return base, Template(escape(base) + " -s %s -j DROP"), nil
}

func IptablesClose(base string) string {
	return base + " -j DROP"
}

func Route(remove bool) Template {
	if remove {
		return Template(constant.RouteBin + " del blackhole %s")
	}
	return Template(constant.RouteBin + " add blackhole %s")
}

func escape(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}
