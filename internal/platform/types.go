package platform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mj1618/window-tiler/internal/model"
)

// ParseSize parses a "WxH" string (e.g. "480x816") into a Size.
func ParseSize(s string) (model.Size, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return model.Size{}, fmt.Errorf("invalid size %q: expected WIDTHxHEIGHT", s)
	}
	vals := make([]int, 2)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return model.Size{}, fmt.Errorf("invalid size %q: %w", s, err)
		}
		if v <= 0 {
			return model.Size{}, fmt.Errorf("invalid size %q: dimensions must be positive", s)
		}
		vals[i] = v
	}
	return model.Size{Width: vals[0], Height: vals[1]}, nil
}

// MatchesProcess reports whether an OS process name refers to the configured
// process name. Comparison ignores case and a trailing ".exe", so a rule for
// "Memu" matches "MEmu.exe" on Windows and "memu" on X11.
func MatchesProcess(osName, want string) bool {
	trim := func(s string) string {
		s = strings.TrimSpace(s)
		if len(s) > 4 && strings.EqualFold(s[len(s)-4:], ".exe") {
			s = s[:len(s)-4]
		}
		return s
	}
	return strings.EqualFold(trim(osName), trim(want))
}
