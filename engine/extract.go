package engine

import (
	"fmt"
	"net/netip"
	"regexp"
	"strconv"
	"strings"

	"github.com/scopenco/netblock-tools/constant"
)

// Extractor finds the address a matched line is about.
type Extractor interface {
	Extract(line string) (netip.Addr, bool)
}

// RegexExtractor searches the whole line for address-shaped substrings and
// returns the first one that parses. With a capture group only the first
// group is considered.
type RegexExtractor struct {
	re *regexp.Regexp
}

func NewExtractor(pattern string) (*RegexExtractor, error) {
	if pattern == "" {
		pattern = constant.DefaultAddressPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile address pattern %q fail: %s", pattern, err)
	}
	return &RegexExtractor{re: re}, nil
}

func DefaultExtractor() *RegexExtractor {
	e, _ := NewExtractor("")
	return e
}

func (e *RegexExtractor) Extract(line string) (netip.Addr, bool) {
	group := 0
	if e.re.NumSubexp() > 0 {
		group = 1
	}
	for _, m := range e.re.FindAllStringSubmatch(line, -1) {
		addr, err := netip.ParseAddr(m[group])
		if err != nil {
			var ok bool
			addr, ok = parseZeroPadded(m[group])
			if !ok {
				continue
			}
		}
		return addr.Unmap(), true
	}
	return netip.Addr{}, false
}

// parseZeroPadded reads a dotted quad whose octets may carry leading zeros
// ("010.001.002.003"). Octets are decimal.
func parseZeroPadded(s string) (netip.Addr, bool) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return netip.Addr{}, false
	}
	var octets [4]byte
	for i, part := range parts {
		if part == "" || len(part) > 3 || strings.TrimLeft(part, "0123456789") != "" {
			return netip.Addr{}, false
		}
		n, err := strconv.Atoi(part)
		if err != nil || n > 255 {
			return netip.Addr{}, false
		}
		octets[i] = byte(n)
	}
	return netip.AddrFrom4(octets), true
}
