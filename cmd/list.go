package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/window-tiler/internal/locator"
	"github.com/mj1618/window-tiler/internal/output"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the windows a rule would match",
	Long: `List the main windows of a process whose titles match a pattern, with the
text of the selected capture group and the current bounds. Nothing is moved.

Examples:
  tiler list --process Memu --pattern '\((\d*)_\w*\)' --group 1
  tiler list --process notepad`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().String("process", "", "Process name (case-insensitive)")
	listCmd.Flags().String("pattern", ".*", "Title pattern")
	listCmd.Flags().Int("group", 0, "Capture group to report (0 = whole match)")
	_ = listCmd.MarkFlagRequired("process")
}

func runList(cmd *cobra.Command, args []string) error {
	process, _ := cmd.Flags().GetString("process")
	pattern, _ := cmd.Flags().GetString("pattern")
	group, _ := cmd.Flags().GetInt("group")

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	p, err := locator.Compile(pattern, group, s.opts.MatchTimeout)
	if err != nil {
		return err
	}

	provider, loc, err := s.newLocator()
	if err != nil {
		return err
	}
	defer provider.Shutdown()

	windows, err := loc.Find(process, p)
	if err != nil {
		return fmt.Errorf("list %s windows: %w", process, err)
	}
	return output.Print(output.MatchResult{
		Process: process,
		Pattern: pattern,
		Group:   group,
		TS:      time.Now().Unix(),
		Windows: windows,
	})
}
