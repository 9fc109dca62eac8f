package cmd

import (
	"fmt"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/mj1618/window-tiler/internal/config"
	"github.com/mj1618/window-tiler/internal/model"
	"github.com/mj1618/window-tiler/internal/output"
	"github.com/mj1618/window-tiler/internal/platform"
	"github.com/mj1618/window-tiler/internal/tiler"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show where a tile pass would put each window",
	Long: `Plan a tile pass over the auto-run rules from the settings file without
moving anything, and print each window's current and planned bounds.

With --out the plan is also rendered to a PNG: current bounds in grey,
planned bounds in green, labelled with the captured title value.

Examples:
  tiler preview
  tiler preview --all --out plan.png --scale 0.5
  tiler preview --size 540x960`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().String("out", "", "Write a PNG rendering of the plan to this file")
	previewCmd.Flags().Float64("scale", 0.25, "Scale from screen pixels to image pixels for --out")
	previewCmd.Flags().Bool("all", false, "Include rules that do not auto-run")
	previewCmd.Flags().String("size", "", "Plan with this window size (WxH) instead of each rule's own")
}

func runPreview(cmd *cobra.Command, args []string) error {
	outPath, _ := cmd.Flags().GetString("out")
	scale, _ := cmd.Flags().GetFloat64("scale")
	all, _ := cmd.Flags().GetBool("all")
	sizeFlag, _ := cmd.Flags().GetString("size")
	if scale <= 0 {
		return fmt.Errorf("--scale must be positive")
	}
	var size *model.Size
	if sizeFlag != "" {
		sz, err := platform.ParseSize(sizeFlag)
		if err != nil {
			return err
		}
		size = &sz
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	settings, err := config.LoadSettings(s.opts.Config)
	if err != nil {
		return err
	}

	provider, loc, err := s.newLocator()
	if err != nil {
		return err
	}
	defer provider.Shutdown()

	plans := tiler.PlanRules(loc, previewRules(settings.Rules, all, size), s.opts.MatchTimeout)

	if outPath != "" {
		if err := writePlanPNG(outPath, plans, scale); err != nil {
			return err
		}
	}
	return output.Print(plans)
}

// previewRules selects the rules a fresh start would activate. A non-nil
// size replaces each selected rule's size.
func previewRules(rules []model.LayoutRule, all bool, size *model.Size) []model.LayoutRule {
	var out []model.LayoutRule
	for _, r := range rules {
		if !all && !r.AutoRun {
			continue
		}
		if size != nil {
			r.Size = *size
		}
		out = append(out, r)
	}
	return out
}

func writePlanPNG(path string, plans []tiler.RulePlan, scale float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, RenderPlan(plans, scale)); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
