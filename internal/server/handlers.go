package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/mj1618/window-tiler/internal/model"
	"github.com/mj1618/window-tiler/internal/output"
)

// toText serializes v to YAML for an MCP response.
func toText(v interface{}) *mcp.CallToolResult {
	text, err := output.YAMLString(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(text)
}

func ruleKey(request mcp.CallToolRequest) (model.RuleKey, error) {
	process, err := request.RequireString("process")
	if err != nil {
		return model.RuleKey{}, err
	}
	pattern, err := request.RequireString("title_pattern")
	if err != nil {
		return model.RuleKey{}, err
	}
	return model.RuleKey{Process: process, TitlePattern: pattern}, nil
}

type ruleResult struct {
	Rule    string `yaml:"rule"`
	Changed bool   `yaml:"changed"`
	Note    string `yaml:"note,omitempty"`
}

func (s *Server) handleListRules(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.daemon.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toText(status), nil
}

func (s *Server) handleStartRule(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := ruleKey(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	started, err := s.daemon.StartRule(ctx, key)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.log.Info("rule started over MCP", zap.Stringer("rule", key), zap.Bool("started", started))
	res := ruleResult{Rule: key.String(), Changed: started}
	if !started {
		res.Note = "already running"
	}
	return toText(res), nil
}

func (s *Server) handleStopRule(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := ruleKey(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	stopped, err := s.daemon.StopRule(ctx, key)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res := ruleResult{Rule: key.String(), Changed: stopped}
	if !stopped {
		res.Note = "not running"
	}
	return toText(res), nil
}

func (s *Server) handleTileAll(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	width, err := s.daemon.TileAll(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toText(map[string]int{"width": width}), nil
}

func (s *Server) handlePlan(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plans, err := s.daemon.Plan(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toText(plans), nil
}

func (s *Server) handleFindWindows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	process, err := request.RequireString("process")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pattern := request.GetString("pattern", ".*")
	group := request.GetInt("group", 0)

	windows, err := s.daemon.FindWindows(ctx, process, pattern, group)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("find windows: %v", err)), nil
	}
	return toText(output.MatchResult{
		Process: process,
		Pattern: pattern,
		Group:   group,
		Windows: windows,
	}), nil
}
