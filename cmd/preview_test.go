package cmd

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/mj1618/window-tiler/internal/model"
	"github.com/mj1618/window-tiler/internal/tiler"
)

func samplePlans() []tiler.RulePlan {
	return []tiler.RulePlan{{
		Process:      "Memu",
		TitlePattern: `\((\d*)_\w*\)`,
		Placements: []model.Placement{
			{Handle: 1, Capture: "1", From: model.Bounds{X: 400, Y: 200, Width: 100, Height: 200}, To: model.Bounds{X: 0, Y: 0, Width: 100, Height: 200}},
			{Handle: 2, Capture: "2", From: model.Bounds{X: 40, Y: 600, Width: 100, Height: 200}, To: model.Bounds{X: 100, Y: 0, Width: 100, Height: 200}},
		},
	}}
}

func TestRenderPlan_Size(t *testing.T) {
	img := RenderPlan(samplePlans(), 0.5)
	// Extent is (0,0)-(500,800); half scale plus the margin on both sides.
	if got := img.Bounds().Dx(); got != 250+2*planMargin {
		t.Errorf("width = %d", got)
	}
	if got := img.Bounds().Dy(); got != 400+2*planMargin {
		t.Errorf("height = %d", got)
	}
}

func TestRenderPlan_DrawsPlannedOutline(t *testing.T) {
	img := RenderPlan(samplePlans(), 1)
	// Top-left corner of the first planned window.
	got := img.RGBAAt(planMargin, planMargin)
	want := color.RGBA{R: 0, G: 200, B: 80, A: 255}
	if got != want {
		t.Errorf("pixel at planned corner = %v, want %v", got, want)
	}
}

func TestRenderPlan_Empty(t *testing.T) {
	img := RenderPlan(nil, 1)
	if img.Bounds().Empty() {
		t.Error("empty plan should still render a canvas")
	}
}

func TestWritePlanPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.png")
	if err := writePlanPNG(path, samplePlans(), 0.25); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("not a PNG: %v", err)
	}
}

func TestPreviewRules(t *testing.T) {
	rules := []model.LayoutRule{{Process: "a", AutoRun: true}, {Process: "b"}}
	if got := previewRules(rules, false, nil); len(got) != 1 || got[0].Process != "a" {
		t.Errorf("auto-run only: got %+v", got)
	}
	if got := previewRules(rules, true, nil); len(got) != 2 {
		t.Errorf("all: got %d rules", len(got))
	}
}

func TestPreviewRules_SizeOverride(t *testing.T) {
	rules := []model.LayoutRule{
		{Process: "a", AutoRun: true, Size: model.Size{Width: 480, Height: 816}},
		{Process: "b", Size: model.Size{Width: 100, Height: 100}},
	}
	size := model.Size{Width: 540, Height: 960}
	got := previewRules(rules, true, &size)
	if len(got) != 2 {
		t.Fatalf("got %d rules, want 2", len(got))
	}
	for _, r := range got {
		if r.Size != size {
			t.Errorf("%s: size = %+v, want %+v", r.Process, r.Size, size)
		}
	}
	if rules[0].Size.Width != 480 {
		t.Error("override must not modify the configured rules")
	}
}

func TestPreviewCommand_SizeFlag(t *testing.T) {
	if f := previewCmd.Flags().Lookup("size"); f == nil || f.Value.Type() != "string" {
		t.Error("expected string flag --size on preview")
	}
}

func TestDescribeRule(t *testing.T) {
	good := model.LayoutRule{
		Process:      "Memu",
		TitlePattern: `\((\d*)_\w*\)`,
		CaptureGroup: 1,
		Size:         model.Size{Width: 480, Height: 816},
		Interval:     400_000_000,
	}
	info := describeRule(good)
	if !info.Valid || info.Error != "" {
		t.Errorf("expected valid rule, got %+v", info)
	}
	if len(info.Groups) != 2 {
		t.Errorf("groups = %v, want [0 1]", info.Groups)
	}

	bad := good
	bad.CaptureGroup = 3
	if info := describeRule(bad); info.Valid || info.Error == "" {
		t.Errorf("expected invalid group to be reported, got %+v", info)
	}

	bad = good
	bad.Size = model.Size{}
	if info := describeRule(bad); info.Valid {
		t.Errorf("expected invalid size to be reported, got %+v", info)
	}
}
