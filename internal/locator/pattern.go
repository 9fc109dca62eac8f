package locator

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultMatchTimeout bounds a single title match.
const DefaultMatchTimeout = 250 * time.Millisecond

var (
	// ErrInvalidPattern is returned when a title pattern does not compile.
	ErrInvalidPattern = errors.New("invalid title pattern")

	// ErrInvalidGroup is returned when a capture group number does not exist
	// in the pattern.
	ErrInvalidGroup = errors.New("invalid capture group")
)

// Pattern is a compiled title pattern together with the capture group whose
// text orders matched windows.
type Pattern struct {
	re     *regexp2.Regexp
	source string
	group  int
}

// Compile compiles expr and checks that group names an existing group
// (0 is the whole match). A non-positive timeout selects DefaultMatchTimeout.
func Compile(expr string, group int, timeout time.Duration) (*Pattern, error) {
	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, expr, err)
	}
	if !slices.Contains(re.GetGroupNumbers(), group) {
		return nil, fmt.Errorf("%w %d for pattern %q (available: %v)", ErrInvalidGroup, group, expr, re.GetGroupNumbers())
	}
	if timeout <= 0 {
		timeout = DefaultMatchTimeout
	}
	re.MatchTimeout = timeout
	return &Pattern{re: re, source: expr, group: group}, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and
// package-level defaults.
func MustCompile(expr string, group int) *Pattern {
	p, err := Compile(expr, group, 0)
	if err != nil {
		panic(err)
	}
	return p
}

// Match tests title against the pattern. The returned capture is empty when
// the group did not take part in the match.
func (p *Pattern) Match(title string) (string, bool, error) {
	m, err := p.re.FindStringMatch(title)
	if err != nil {
		return "", false, err
	}
	if m == nil {
		return "", false, nil
	}
	g := m.GroupByNumber(p.group)
	if g == nil || len(g.Captures) == 0 {
		return "", true, nil
	}
	return g.String(), true, nil
}

// WithGroup returns a copy of the pattern capturing a different group.
func (p *Pattern) WithGroup(group int) (*Pattern, error) {
	if !slices.Contains(p.re.GetGroupNumbers(), group) {
		return nil, fmt.Errorf("%w %d for pattern %q", ErrInvalidGroup, group, p.source)
	}
	cp := *p
	cp.group = group
	return &cp, nil
}

// Group returns the capture group number.
func (p *Pattern) Group() int { return p.group }

func (p *Pattern) String() string { return p.source }

// GroupNumbers lists the capture groups expr defines, starting with 0 for the
// whole match.
func GroupNumbers(expr string) ([]int, error) {
	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, expr, err)
	}
	return re.GetGroupNumbers(), nil
}
