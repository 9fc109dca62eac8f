package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mj1618/window-tiler/internal/command"
	"github.com/mj1618/window-tiler/internal/output"
	"github.com/mj1618/window-tiler/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "tiler [--tile]",
	Short: "Keep application windows at a fixed size and tile them on demand",
	Long: `tiler watches the main windows of configured processes, matches their
titles against per-rule patterns and keeps them at the rule's size. A tile
pass lines the windows up along the top of the screen, ordered by the value
a pattern captures from each title.

Only one tiler runs at a time. Starting it again forwards the command line
to the running instance and exits:

  tiler          start, or print the running instance's rule status
  tiler --tile   start, or ask the running instance to tile all windows`,
	Args:          cobra.ArbitraryArgs,
	RunE:          runDaemon,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.Flags().Bool("tile", false, "Tile all active rules after starting (or in the running instance)")
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentFlags().String("config", "", "Settings file (default $XDG_CONFIG_HOME/tiler/settings.yaml, or TILER_CONFIG)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default TILER_LOG_LEVEL or info)")
	rootCmd.PersistentFlags().Bool("log-dev", false, "Human-readable development logging")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := rootCmd.PersistentFlags().GetString("format")
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = f
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")
		return nil
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return s.runPrimary(ctx, primaryConfig{line: commandLine(cmd, args)})
}

// commandLine is the argument line handed to the primary instance. Flags
// other than --tile configure this process only and are not forwarded.
func commandLine(cmd *cobra.Command, args []string) string {
	var parts []string
	if tile, _ := cmd.Flags().GetBool("tile"); tile {
		parts = append(parts, "--tile")
	}
	return command.Join(append(parts, args...))
}
