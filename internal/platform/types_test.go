package platform

import (
	"testing"

	"github.com/mj1618/window-tiler/internal/model"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    model.Size
		wantErr bool
	}{
		{"480x816", model.Size{Width: 480, Height: 816}, false},
		{" 600X800 ", model.Size{Width: 600, Height: 800}, false},
		{"480", model.Size{}, true},
		{"axb", model.Size{}, true},
		{"0x10", model.Size{}, true},
		{"1x2x3", model.Size{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMatchesProcess(t *testing.T) {
	tests := []struct {
		osName, want string
		match        bool
	}{
		{"MEmu.exe", "Memu", true},
		{"memu", "Memu", true},
		{"dnplayer", "dnplayer.exe", true},
		{"notepad", "Memu", false},
		{".exe", ".exe", true},
		{"MemuHeadless", "Memu", false},
	}
	for _, tt := range tests {
		if got := MatchesProcess(tt.osName, tt.want); got != tt.match {
			t.Errorf("MatchesProcess(%q, %q) = %v, want %v", tt.osName, tt.want, got, tt.match)
		}
	}
}
