package command

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"", Show},
		{"   ", Show},
		{"--tile", Tile},
		{"tile", Tile},
		{"--TILE", Tile},
		{"--config x.yaml --tile", Tile},
		{"--tiles", Show},
		{"--show", Show},
		{"tiler", Show},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := Parse(tt.line); got != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.line, got, tt.want)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	if got := Join([]string{"--tile", "extra"}); got != "--tile extra" {
		t.Errorf("Join = %q", got)
	}
	if got := Parse(Join(nil)); got != Show {
		t.Errorf("empty args parse to %s, want show", got)
	}
}

type recorder struct {
	shows, tiles int
}

func (r *recorder) Show()        { r.shows++ }
func (r *recorder) TileAll() int { r.tiles++; return 0 }

func TestDispatch(t *testing.T) {
	r := &recorder{}
	if got := Dispatch(r, "--tile"); got != Tile {
		t.Errorf("Dispatch(--tile) = %s", got)
	}
	if got := Dispatch(r, ""); got != Show {
		t.Errorf("Dispatch(\"\") = %s", got)
	}
	if r.tiles != 1 || r.shows != 1 {
		t.Errorf("tiles=%d shows=%d, want 1 and 1", r.tiles, r.shows)
	}
}
