// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the bookmark store for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mkovac/linkstash/internal/store"
)

// Server wraps the MCP server with linkstash tools.
type Server struct {
	mcp *server.MCPServer
	st  store.Store
}

// New creates a new MCP server with all linkstash tools registered.
func New(st store.Store) *Server {
	s := &Server{st: st}

	s.mcp = server.NewMCPServer(
		"Linkstash",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("search_bookmarks",
		mcp.WithDescription("Full-text search over bookmark urls, titles, tags and descriptions. "+
			"Multiple space-separated keywords are AND-joined unless any=true."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Space-separated search keywords")),
		mcp.WithBoolean("any", mcp.Description("Match any keyword instead of all")),
	), s.searchBookmarks)

	s.mcp.AddTool(mcp.NewTool("add_bookmark",
		mcp.WithDescription("Store a new bookmark. The url must be unique."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Bookmark URL")),
		mcp.WithString("title", mcp.Description("Page title")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
		mcp.WithString("desc", mcp.Description("Free-form description")),
	), s.addBookmark)

	s.mcp.AddTool(mcp.NewTool("list_bookmarks",
		mcp.WithDescription("List every stored bookmark as JSON."),
	), s.listBookmarks)

	s.mcp.AddTool(mcp.NewTool("delete_bookmark",
		mcp.WithDescription("Delete a bookmark by id. The deletion can be reverted with undo_last."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Bookmark id")),
	), s.deleteBookmark)

	s.mcp.AddTool(mcp.NewTool("undo_last",
		mcp.WithDescription("Revert the most recent add, update or delete (a batch counts as one operation)."),
	), s.undoLast)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchBookmarks(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	matchAny := req.GetBool("any", false)

	results, err := s.st.Search(splitKeywords(query), matchAny, true, false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addBookmark(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title := req.GetString("title", "")
	tags := req.GetString("tags", ",")
	desc := req.GetString("desc", "")

	id, err := s.st.AddRec(url, title, tags, desc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added bookmark %d: %s", id, url)), nil
}

func (s *Server) listBookmarks(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	all, err := s.st.GetRecAll()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(all, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) deleteBookmark(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.st.DeleteRec(int64(id)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted bookmark %d", id)), nil
}

func splitKeywords(query string) []string {
	return strings.Fields(query)
}

func (s *Server) undoLast(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.st.UndoLast()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if res == nil {
		return mcp.NewToolResultText("nothing to undo"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("reverted %s (%d bookmarks)", res.Operation, res.Affected)), nil
}
