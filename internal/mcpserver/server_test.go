package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mkovac/linkstash/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	return New(testutil.TestStore(t))
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so we invoke the
	// handler functions directly.
	var (
		result *mcp.CallToolResult
		err    error
	)
	switch name {
	case "search_bookmarks":
		result, err = srv.searchBookmarks(ctx, req)
	case "add_bookmark":
		result, err = srv.addBookmark(ctx, req)
	case "list_bookmarks":
		result, err = srv.listBookmarks(ctx, req)
	case "delete_bookmark":
		result, err = srv.deleteBookmark(ctx, req)
	case "undo_last":
		result, err = srv.undoLast(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestAddAndSearchBookmark(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "add_bookmark", map[string]interface{}{
		"url":   "https://rust-lang.org",
		"title": "Rust",
		"tags":  ",programming,",
	})
	if !strings.HasPrefix(resultText(r), "added bookmark 1") {
		t.Errorf("add result = %q", resultText(r))
	}

	r = callTool(t, srv, "search_bookmarks", map[string]interface{}{"query": "rust"})
	if !strings.Contains(resultText(r), "https://rust-lang.org") {
		t.Errorf("search result = %q", resultText(r))
	}
}

func TestAddBookmark_Duplicate(t *testing.T) {
	srv := testServer(t)
	_ = callTool(t, srv, "add_bookmark", map[string]interface{}{"url": "https://a.com"})

	r := callTool(t, srv, "add_bookmark", map[string]interface{}{"url": "https://a.com"})
	if !r.IsError {
		t.Error("expected error for duplicate url")
	}
}

func TestDeleteAndUndo(t *testing.T) {
	srv := testServer(t)
	_ = callTool(t, srv, "add_bookmark", map[string]interface{}{"url": "https://a.com", "title": "A"})

	r := callTool(t, srv, "delete_bookmark", map[string]interface{}{"id": 1})
	if resultText(r) != "deleted bookmark 1" {
		t.Errorf("delete result = %q", resultText(r))
	}

	r = callTool(t, srv, "undo_last", map[string]interface{}{})
	if resultText(r) != "reverted DELETE (1 bookmarks)" {
		t.Errorf("undo result = %q", resultText(r))
	}

	r = callTool(t, srv, "list_bookmarks", map[string]interface{}{})
	if !strings.Contains(resultText(r), "https://a.com") {
		t.Errorf("list after undo = %q", resultText(r))
	}
}

func TestUndoEmptyLog(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "undo_last", map[string]interface{}{})
	if resultText(r) != "nothing to undo" {
		t.Errorf("undo result = %q", resultText(r))
	}
}

func TestDeleteBookmark_Missing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "delete_bookmark", map[string]interface{}{"id": 42})
	if !r.IsError {
		t.Error("expected error for missing id")
	}
}
