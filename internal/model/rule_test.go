package model

import (
	"testing"
	"time"
)

func validRule() LayoutRule {
	return LayoutRule{
		Process:      "Memu",
		TitlePattern: `\((\d*)_\w*\)`,
		CaptureGroup: 1,
		Size:         Size{Width: 480, Height: 816},
		Interval:     400 * time.Millisecond,
	}
}

func TestLayoutRule_Key(t *testing.T) {
	a := validRule()
	b := validRule()
	b.Size = Size{Width: 1, Height: 1}
	b.Interval = time.Hour
	b.HorizontalOnly = true
	if a.Key() != b.Key() {
		t.Errorf("keys differ: %v vs %v", a.Key(), b.Key())
	}
	b.TitlePattern = ".*"
	if a.Key() == b.Key() {
		t.Error("keys with different patterns should differ")
	}
}

func TestLayoutRule_Eligible(t *testing.T) {
	portrait := Bounds{Width: 480, Height: 816}
	landscape := Bounds{Width: 816, Height: 480}

	r := validRule()
	if !r.Eligible(portrait) || !r.Eligible(landscape) {
		t.Error("non-horizontal rule should accept every window")
	}

	r.HorizontalOnly = true
	if !r.Eligible(portrait) {
		t.Error("horizontal rule should accept portrait window")
	}
	if r.Eligible(landscape) {
		t.Error("horizontal rule should reject landscape window")
	}
	if r.Eligible(Bounds{Width: 500, Height: 500}) {
		t.Error("horizontal rule should reject square window")
	}
}

func TestLayoutRule_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*LayoutRule)
		wantErr bool
	}{
		{"valid", func(*LayoutRule) {}, false},
		{"empty_process", func(r *LayoutRule) { r.Process = " " }, true},
		{"negative_group", func(r *LayoutRule) { r.CaptureGroup = -1 }, true},
		{"zero_width", func(r *LayoutRule) { r.Size.Width = 0 }, true},
		{"zero_interval", func(r *LayoutRule) { r.Interval = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRule()
			tt.mutate(&r)
			err := r.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdateRate_Duration(t *testing.T) {
	tests := []struct {
		rate    UpdateRate
		want    time.Duration
		wantErr bool
	}{
		{UpdateRate{Units: RateMilliseconds, Value: 400}, 400 * time.Millisecond, false},
		{UpdateRate{Units: RateSeconds, Value: 2}, 2 * time.Second, false},
		{UpdateRate{Units: "Minutes", Value: 1}, time.Minute, false},
		{UpdateRate{Units: "ms", Value: 5}, 5 * time.Millisecond, false},
		{UpdateRate{Units: "hours", Value: 1}, 0, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.rate.Units), func(t *testing.T) {
			got, err := tt.rate.Duration()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Duration() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Duration() = %s, want %s", got, tt.want)
			}
		})
	}
}
