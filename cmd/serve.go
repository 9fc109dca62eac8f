package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mj1618/window-tiler/internal/daemon"
	"github.com/mj1618/window-tiler/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run tiler with an MCP server exposing its rules",
	Long: `Start tiler as the primary instance and serve a Model Context Protocol
(MCP) server next to it. Agents can list, start and stop rules, find windows,
and plan or run a tile pass.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

With stdio the process exits when the client closes its input.

Examples:
  tiler serve
  tiler serve --transport streamable-http --port 8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", server.TransportStdio, "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	cfg := server.Config{Transport: transport, Port: port}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return s.runPrimary(ctx, primaryConfig{
		// stdout belongs to the MCP transport.
		out:            os.Stderr,
		requirePrimary: true,
		services: func(d *daemon.Daemon) []func(context.Context) error {
			srv := server.New(d, s.log)
			return []func(context.Context) error{
				func(ctx context.Context) error {
					select {
					case <-d.Ready():
					case <-ctx.Done():
						return nil
					}
					return srv.Serve(ctx, cfg, os.Stdin, os.Stdout)
				},
			}
		},
	})
}
