// Package server exposes a running tiler daemon as MCP tools.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/mj1618/window-tiler/internal/daemon"
	"github.com/mj1618/window-tiler/internal/version"
)

// Transports understood by Serve.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "streamable-http"
)

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
}

// Server wraps the MCP server around a daemon.
type Server struct {
	daemon *daemon.Daemon
	mcp    *mcpserver.MCPServer
	log    *zap.Logger
}

// New creates an MCP server with all tiler tools registered.
func New(d *daemon.Daemon, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		daemon: d,
		log:    log.Named("mcp"),
		mcp: mcpserver.NewMCPServer(
			"window-tiler",
			version.Version,
			mcpserver.WithToolCapabilities(false),
		),
	}
	s.registerTools()
	return s
}

// Serve runs the configured transport until ctx is cancelled. For stdio,
// end of input ends the daemon via daemon.ErrShutdown.
func (s *Server) Serve(ctx context.Context, cfg Config, stdin io.Reader, stdout io.Writer) error {
	switch cfg.Transport {
	case TransportStdio, "":
		err := mcpserver.NewStdioServer(s.mcp).Listen(ctx, stdin, stdout)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil || errors.Is(err, io.EOF) {
			return daemon.ErrShutdown
		}
		return err
	case TransportHTTP:
		return s.serveHTTP(ctx, fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *Server) serveHTTP(ctx context.Context, addr string) error {
	httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
	errc := make(chan error, 1)
	go func() { errc <- httpServer.Start(addr) }()
	s.log.Info("MCP listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("list_rules",
			mcp.WithDescription("List configured layout rules: the active ones with their state and the configured ones that are not running"),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handleListRules,
	)

	s.mcp.AddTool(
		mcp.NewTool("start_rule",
			mcp.WithDescription("Start a configured layout rule. Its windows are resized immediately and then kept at the rule's size."),
			mcp.WithString("process", mcp.Required(), mcp.Description("Process name of the rule")),
			mcp.WithString("title_pattern", mcp.Required(), mcp.Description("Title pattern of the rule, exactly as configured")),
		),
		s.handleStartRule,
	)

	s.mcp.AddTool(
		mcp.NewTool("stop_rule",
			mcp.WithDescription("Stop an active layout rule. Windows stay where they are."),
			mcp.WithString("process", mcp.Required(), mcp.Description("Process name of the rule")),
			mcp.WithString("title_pattern", mcp.Required(), mcp.Description("Title pattern of the rule, exactly as configured")),
		),
		s.handleStopRule,
	)

	s.mcp.AddTool(
		mcp.NewTool("tile_all",
			mcp.WithDescription("Tile the windows of every active rule left to right along the top of the screen, ordered by captured title value"),
		),
		s.handleTileAll,
	)

	s.mcp.AddTool(
		mcp.NewTool("plan",
			mcp.WithDescription("Show where tile_all would move each window without moving anything"),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handlePlan,
	)

	s.mcp.AddTool(
		mcp.NewTool("find_windows",
			mcp.WithDescription("List the main windows of a process whose titles match a pattern, with the captured group text and bounds"),
			mcp.WithString("process", mcp.Required(), mcp.Description("Process name, case-insensitive")),
			mcp.WithString("pattern", mcp.Description("Title pattern (default: match everything)")),
			mcp.WithNumber("group", mcp.Description("Capture group to report (default 0, the whole match)")),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handleFindWindows,
	)
}
