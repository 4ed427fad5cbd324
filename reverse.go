package phttp

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Reverser keeps track of named ':param' patterns and allows building URLs
// from them.
type Reverser struct {
	pats map[string]string
}

// NewReverser inits the reverser.
func NewReverser() *Reverser {
	return &Reverser{make(map[string]string)}
}

// Reverse builds the url for the named pattern, substituting ':' segments
// with vals in order.
func (r Reverser) Reverse(name string, vals ...string) (string, error) {
	pat, ok := r.pats[name]
	if !ok {
		return "", fmt.Errorf("no pattern named: %q, got: %v", name, lo.Keys(r.pats))
	}

	segs := strings.Split(pat, "/")

	next := 0
	for i, seg := range segs {
		if !strings.HasPrefix(seg, ":") {
			continue
		}

		if next >= len(vals) {
			return "", fmt.Errorf("pattern %q needs more than %d value(s)", pat, len(vals))
		}

		segs[i] = vals[next]
		next++
	}

	if next != len(vals) {
		return "", fmt.Errorf("pattern %q takes %d value(s), got %d", pat, next, len(vals))
	}

	return strings.Join(segs, "/"), nil
}

// Named is a convenience method that panics if naming the pattern fails.
func (r Reverser) Named(name, pattern string) string {
	pattern, err := r.NamedPattern(name, pattern)
	if err != nil {
		panic("phttp: " + err.Error())
	}

	return pattern
}

// NamedPattern records 'pattern' under 'name' while returning it as well.
func (r Reverser) NamedPattern(name, pattern string) (string, error) {
	if _, exists := r.pats[name]; exists {
		return pattern, fmt.Errorf("pattern with name %q already exists", name)
	}

	r.pats[name] = pattern

	return pattern, nil
}
