package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/uitree/internal/capture"
	"github.com/mj1618/uitree/internal/model"
	"github.com/mj1618/uitree/internal/output"
	"github.com/mj1618/uitree/internal/platform"
)

// Typed parameter readers for MCP request arguments.

func stringParam(params map[string]interface{}, key, fallback string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return fallback
}

func intParam(params map[string]interface{}, key string, fallback int) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}

func boolParam(params map[string]interface{}, key string, fallback bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return fallback
}

// listWindows runs a short-lived connection on the calling goroutine to
// enumerate windows. The connection never outlives the call.
func listWindows() ([]model.Window, error) {
	conn, err := platform.NewConn()
	if err != nil {
		return nil, err
	}
	defer conn.Release()
	return conn.ListWindows()
}

func (s *Server) handleList(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	process := stringParam(params, "process", "")
	pid := intParam(params, "pid", 0)

	windows, err := listWindows()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var filtered []model.Window
	for _, w := range windows {
		if process != "" && !strings.EqualFold(w.Process, process) {
			continue
		}
		if pid != 0 && w.PID != pid {
			continue
		}
		filtered = append(filtered, w)
	}

	b, _ := yaml.Marshal(filtered)
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) handleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	windowFilter := stringParam(params, "window", "")
	dom := boolParam(params, "dom", false)
	depth := intParam(params, "depth", 0)
	timeoutMs := intParam(params, "timeout-ms", 0)
	tags := stringParam(params, "tags", "")
	text := stringParam(params, "text", "")

	key := cacheKey{Window: windowFilter, Depth: depth, DOM: dom}
	generation := s.coord.Generation().Current()

	state := s.cache.Get(key, generation)
	if state == nil {
		windows, err := listWindows()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if windowFilter != "" {
			var kept []model.Window
			for _, w := range windows {
				if strings.Contains(strings.ToLower(w.Title), strings.ToLower(windowFilter)) {
					kept = append(kept, w)
				}
			}
			windows = kept
		}
		if len(windows) == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("no windows match %q", windowFilter)), nil
		}

		state, err = s.coord.Capture(ctx, windows, capture.Options{
			MaxDepth: depth,
			DOMMode:  dom,
			Timeout:  time.Duration(timeoutMs) * time.Millisecond,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		s.cache.Put(key, state)
		s.log.Debug("state captured",
			zap.Int("windows", len(windows)),
			zap.Int("elements", len(state.Elements)))
	}

	// Post-filters never touch the cached snapshot; they build a view.
	view := state
	if tags != "" || text != "" {
		filtered := model.Filter{Tags: model.ParseTags(tags), Text: text}.Apply(state.Elements)
		view = &model.TreeState{
			Generation: state.Generation,
			Elements:   filtered,
			Errors:     state.Errors,
		}
	}
	return mcp.NewToolResultText(output.RenderAgent(view)), nil
}

func (s *Server) handleInvalidate(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gen := s.coord.Generation().Bump()
	s.cache.InvalidateAll()
	return mcp.NewToolResultText(fmt.Sprintf("generation: %d\n", gen)), nil
}
