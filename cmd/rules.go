package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/window-tiler/internal/config"
	"github.com/mj1618/window-tiler/internal/locator"
	"github.com/mj1618/window-tiler/internal/model"
	"github.com/mj1618/window-tiler/internal/output"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the configured rules and check them",
	Long: `Print the rules from the settings file (or the built-in defaults when
there is none), whether each one can start, and the capture groups its
title pattern offers.`,
	Args: cobra.NoArgs,
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	settings, err := config.LoadSettings(s.opts.Config)
	if err != nil {
		return err
	}

	res := output.RulesResult{
		Path:     settings.Path,
		Defaults: settings.Defaults,
		Rules:    make([]output.RuleInfo, 0, len(settings.Rules)),
	}
	for _, r := range settings.Rules {
		res.Rules = append(res.Rules, describeRule(r))
	}
	return output.Print(res)
}

// describeRule runs the checks a worker performs before its first pass.
func describeRule(r model.LayoutRule) output.RuleInfo {
	info := output.RuleInfo{Rule: r}
	if groups, err := locator.GroupNumbers(r.TitlePattern); err == nil {
		info.Groups = groups
	}
	if err := r.Validate(); err != nil {
		info.Error = err.Error()
		return info
	}
	if _, err := locator.Compile(r.TitlePattern, r.CaptureGroup, 0); err != nil {
		info.Error = err.Error()
		return info
	}
	info.Valid = true
	return info
}
