package server

import (
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/mj1618/uitree/internal/capture"
	"github.com/mj1618/uitree/internal/platform"
)

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
	CacheTTL  time.Duration
}

// Server exposes capture over MCP. All captures run through one
// Coordinator; results are shared via the immutable-snapshot cache.
type Server struct {
	coord *capture.Coordinator
	cache *StateCache
	log   *zap.Logger
	mcp   *mcpserver.MCPServer
}

// New creates and configures an MCP server with the uitree tools.
func New(cfg Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		coord: capture.NewCoordinator(platform.NewConn, nil, log),
		cache: NewStateCache(cfg.CacheTTL),
		log:   log,
	}
	s.mcp = mcpserver.NewMCPServer("uitree", "1.0.0")
	s.registerTools()
	return s, nil
}

// Serve starts the MCP server with the configured transport.
func (s *Server) Serve(cfg Config) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("list",
			mcp.WithDescription("List visible top-level windows on the desktop"),
			mcp.WithString("process", mcp.Description("Filter by process name")),
			mcp.WithNumber("pid", mcp.Description("Filter by process ID")),
		),
		s.handleList,
	)

	s.mcp.AddTool(
		mcp.NewTool("state",
			mcp.WithDescription("Capture the classified accessibility tree of the desktop. Returns interactive, scrollable, and informative elements with IDs, bounding boxes, and center points for targeting actions."),
			mcp.WithString("window", mcp.Description("Filter to windows whose title contains this substring")),
			mcp.WithBoolean("dom", mcp.Description("Narrow browser windows to their document content")),
			mcp.WithNumber("depth", mcp.Description("Max traversal depth (0 = default)")),
			mcp.WithNumber("timeout-ms", mcp.Description("Overall capture timeout in milliseconds (0 = none)")),
			mcp.WithString("tags", mcp.Description("Comma-separated tags to keep: interactive, scrollable, informative")),
			mcp.WithString("text", mcp.Description("Filter elements by name/value substring")),
		),
		s.handleState,
	)

	s.mcp.AddTool(
		mcp.NewTool("invalidate",
			mcp.WithDescription("Bump the capture generation, discarding all cached snapshots. Call after acting on the UI."),
		),
		s.handleInvalidate,
	)
}
