package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/galatea-comics/galatea/internal/comic"
	"github.com/galatea-comics/galatea/internal/logging"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes comic page tools.
type Server struct {
	fetcher comic.Fetcher
	log     *zap.Logger
	mcp     *server.MCPServer
}

// NewServer creates a new MCP server reading pages through f.
func NewServer(f comic.Fetcher, log *zap.Logger) *Server {
	log = logging.OrNop(log)
	s := &Server{fetcher: f, log: log}

	s.mcp = server.NewMCPServer(
		"galatea",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(getComicPageTool, s.handleGetComicPage)
	if _, ok := s.fetcher.(comic.Indexer); ok {
		s.mcp.AddTool(listComicPagesTool, s.handleListComicPages)
	}
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
