package model

// WindowID is an opaque, platform-neutral top-level window handle.
// Zero means "no window".
type WindowID uint64

// Bounds is a screen rectangle in pixels.
type Bounds struct {
	X      int `yaml:"x"      json:"x"`
	Y      int `yaml:"y"      json:"y"`
	Width  int `yaml:"width"  json:"width"`
	Height int `yaml:"height" json:"height"`
}

// Portrait reports whether the rectangle is taller than it is wide.
func (b Bounds) Portrait() bool {
	return b.Width < b.Height
}

// SizeEquals reports whether b already has the given size.
func (b Bounds) SizeEquals(s Size) bool {
	return b.Width == s.Width && b.Height == s.Height
}

// ProcessWindow is one process and its main top-level window, as reported
// by a platform backend.
type ProcessWindow struct {
	PID     int      `yaml:"pid"     json:"pid"`
	Process string   `yaml:"process" json:"process"`
	Handle  WindowID `yaml:"handle"  json:"handle"`
	Title   string   `yaml:"title"   json:"title"`
	Bounds  Bounds   `yaml:"bounds"  json:"bounds"`
}

// MatchedWindow is a window whose title matched a rule pattern during one
// enumeration pass. It is recomputed on every pass.
type MatchedWindow struct {
	Handle  WindowID `yaml:"handle"  json:"handle"`
	Bounds  Bounds   `yaml:"bounds"  json:"bounds"`
	Capture string   `yaml:"capture" json:"capture"`
}

// Placement is a planned tile move for a single window.
type Placement struct {
	Handle  WindowID `yaml:"handle"  json:"handle"`
	Capture string   `yaml:"capture" json:"capture"`
	From    Bounds   `yaml:"from"    json:"from"`
	To      Bounds   `yaml:"to"      json:"to"`
}
