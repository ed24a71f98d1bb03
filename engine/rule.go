package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule blocks the network of the given mask around the address found on a
// line that Pattern matches from its first character.
type Rule struct {
	Pattern *regexp.Regexp
	Mask    uint8
	Raw     string
}

func NewRule(pattern string, mask int) (Rule, error) {
	if mask < 0 || mask > 32 {
		return Rule{}, fmt.Errorf("invalid mask %d for pattern %q: must be in 0-32", mask, pattern)
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return Rule{}, fmt.Errorf("compile pattern %q fail: %s", pattern, err)
	}
	return Rule{
		Pattern: re,
		Mask:    uint8(mask),
		Raw:     pattern,
	}, nil
}

func MustNewRule(pattern string, mask int) Rule {
	r, err := NewRule(pattern, mask)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Rule) Match(line string) bool {
	return r.Pattern.MatchString(line)
}

func (r Rule) String() string {
	return fmt.Sprintf("%s /%d", r.Raw, r.Mask)
}

type Mode int

const (
	ShowOnly Mode = iota
	Enforce
)

func (m Mode) String() string {
	switch m {
	case ShowOnly:
		return "show"
	case Enforce:
		return "enforce"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "show", "show-only", "showonly":
		return ShowOnly, nil
	case "enforce", "":
		return Enforce, nil
	default:
		return 0, fmt.Errorf("invalid mode: %s", s)
	}
}
