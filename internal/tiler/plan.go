package tiler

import (
	"time"

	"github.com/mj1618/window-tiler/internal/locator"
	"github.com/mj1618/window-tiler/internal/model"
)

// PlanRules computes the tile pass TileAll would perform if rules were
// active, in the given order, without starting workers or moving windows.
// Rules that fail to compile or enumerate carry the error and do not
// advance x.
func PlanRules(loc *locator.Locator, rules []model.LayoutRule, matchTimeout time.Duration) []RulePlan {
	xStart := 0
	plans := make([]RulePlan, 0, len(rules))
	for _, r := range rules {
		plan := RulePlan{Process: r.Process, TitlePattern: r.TitlePattern}
		placements, next, err := planRule(loc, r, matchTimeout, xStart)
		if err != nil {
			plan.Error = err.Error()
		} else {
			plan.Placements = placements
			xStart = next
		}
		plans = append(plans, plan)
	}
	return plans
}

func planRule(loc *locator.Locator, r model.LayoutRule, matchTimeout time.Duration, xStart int) ([]model.Placement, int, error) {
	if err := r.Validate(); err != nil {
		return nil, xStart, err
	}
	pattern, err := locator.Compile(r.TitlePattern, r.CaptureGroup, matchTimeout)
	if err != nil {
		return nil, xStart, err
	}
	matches, err := loc.Find(r.Process, pattern)
	if err != nil {
		return nil, xStart, err
	}
	placements, next := placeAll(r, tileOrder(r, matches), xStart)
	return placements, next, nil
}

// tileOrder sorts matches by capture and drops windows the rule may not
// touch. It reuses the matches slice.
func tileOrder(r model.LayoutRule, matches []model.MatchedWindow) []model.MatchedWindow {
	model.SortByCapture(matches)
	eligible := matches[:0]
	for _, m := range matches {
		if r.Eligible(m.Bounds) {
			eligible = append(eligible, m)
		}
	}
	return eligible
}

func placeAll(r model.LayoutRule, ordered []model.MatchedWindow, xStart int) ([]model.Placement, int) {
	placements := make([]model.Placement, 0, len(ordered))
	for _, m := range ordered {
		placements = append(placements, model.Placement{
			Handle:  m.Handle,
			Capture: m.Capture,
			From:    m.Bounds,
			To:      tileBounds(r, xStart),
		})
		xStart += m.Bounds.Width
	}
	return placements, xStart
}

func tileBounds(r model.LayoutRule, x int) model.Bounds {
	return model.Bounds{X: x, Y: 0, Width: r.Size.Width, Height: r.Size.Height}
}
