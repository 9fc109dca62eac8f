package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/window-tiler/internal/command"
	"github.com/mj1618/window-tiler/internal/instance"
)

var sendCmd = &cobra.Command{
	Use:   "send [args...]",
	Short: "Send a command to the running tiler without starting one",
	Long: `Forward the arguments to the running tiler instance, exactly as a second
launch would, but fail instead of starting a new instance when none is
running. Useful from hotkey daemons and scripts.

Examples:
  tiler send tile
  tiler send`,
	Args: cobra.ArbitraryArgs,
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()
	return s.send(command.Join(args))
}

// send forwards line to the running instance.
func (s *session) send(line string) error {
	return instance.Send(s.instanceOptions(), line)
}
