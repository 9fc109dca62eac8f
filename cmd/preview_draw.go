package cmd

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/mj1618/window-tiler/internal/model"
	"github.com/mj1618/window-tiler/internal/tiler"
)

// planMargin is the empty border around a rendered plan, in image pixels.
const planMargin = 10

// RenderPlan draws a tile plan: each window's current bounds as a grey
// outline and its planned bounds as a green one labelled with its capture.
// Screen coordinates are multiplied by scale.
func RenderPlan(plans []tiler.RulePlan, scale float64) *image.RGBA {
	if scale <= 0 {
		scale = 1
	}
	extent := planExtent(plans)
	w := int(float64(extent.Dx())*scale) + 2*planMargin
	h := int(float64(extent.Dy())*scale) + 2*planMargin

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 32, G: 32, B: 32, A: 255}), image.Point{}, draw.Src)

	fromColor := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	toColor := color.RGBA{R: 0, G: 200, B: 80, A: 255}
	textColor := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor := color.RGBA{R: 0, G: 0, B: 0, A: 200}

	toImage := func(b model.Bounds) image.Rectangle {
		x := int(float64(b.X-extent.Min.X)*scale) + planMargin
		y := int(float64(b.Y-extent.Min.Y)*scale) + planMargin
		return image.Rect(x, y, x+int(float64(b.Width)*scale), y+int(float64(b.Height)*scale))
	}

	for _, plan := range plans {
		for _, p := range plan.Placements {
			from := toImage(p.From)
			drawRectangle(img, from.Min.X, from.Min.Y, from.Max.X, from.Max.Y, fromColor)
		}
	}
	for _, plan := range plans {
		for _, p := range plan.Placements {
			to := toImage(p.To)
			drawRectangle(img, to.Min.X, to.Min.Y, to.Max.X, to.Max.Y, toColor)
			center := image.Pt((to.Min.X+to.Max.X)/2, (to.Min.Y+to.Max.Y)/2)
			drawTextWithOutline(img, planLabel(plan, p), center.X, center.Y, textColor, outlineColor)
		}
	}
	return img
}

func planLabel(plan tiler.RulePlan, p model.Placement) string {
	if p.Capture == "" {
		return plan.Process
	}
	return fmt.Sprintf("%s [%s]", plan.Process, p.Capture)
}

// planExtent is the screen rectangle covering every window before and
// after the plan, always including the origin.
func planExtent(plans []tiler.RulePlan) image.Rectangle {
	var r image.Rectangle
	for _, plan := range plans {
		for _, p := range plan.Placements {
			for _, b := range []model.Bounds{p.From, p.To} {
				r = r.Union(image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height))
			}
		}
	}
	return r.Union(image.Rect(0, 0, 1, 1))
}

// drawRectangle draws a rectangle outline on the image
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	bounds := img.Bounds()

	// Clamp to image bounds
	x1 = max(x1, bounds.Min.X)
	y1 = max(y1, bounds.Min.Y)
	x2 = min(x2, bounds.Max.X)
	y2 = min(y2, bounds.Max.Y)
	if x2 <= x1 || y2 <= y1 {
		return
	}

	for x := x1; x < x2; x++ {
		img.Set(x, y1, c)
		img.Set(x, y2-1, c)
	}
	for y := y1; y < y2; y++ {
		img.Set(x1, y, c)
		img.Set(x2-1, y, c)
	}
}

// drawTextWithOutline draws text centred on (x, y) with a one pixel outline.
func drawTextWithOutline(img *image.RGBA, text string, x, y int, textColor, outlineColor color.Color) {
	// basicfont.Face7x13: 7 pixels per character, 13 pixels high
	offsetX := x - len(text)*7/2
	offsetY := y + 13/2

	drawAt := func(dx, dy int, c color.Color) {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(c),
			Face: basicfont.Face7x13,
			Dot: fixed.Point26_6{
				X: fixed.I(offsetX + dx),
				Y: fixed.I(offsetY + dy),
			},
		}
		d.DrawString(text)
	}
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx != 0 || dy != 0 {
				drawAt(dx, dy, outlineColor)
			}
		}
	}
	drawAt(0, 0, textColor)
}
