package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/raido/internal/remote"
	"github.com/starford/raido/internal/session"
	"github.com/starford/raido/internal/testutil"
	"github.com/starford/raido/internal/workflow"
)

func testServer(t *testing.T) (*Server, *testutil.Store) {
	t.Helper()

	store := testutil.NewStore(t)
	store.Seed("notes/seed.md", "# Seed")
	sess := session.New()
	client := remote.New(store.URL(), testutil.OwnerRepo, testutil.Branch, sess.Token)
	wf := workflow.New(client, sess, "notes")
	if _, err := wf.Authenticate(context.Background(), testutil.Token); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	return New(wf), store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handler
	// functions are exercised directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "save_note":
		result, err = srv.saveNote(ctx, req)
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

func TestListNotes(t *testing.T) {
	srv, store := testServer(t)
	store.Seed("notes/more.md", "# More")

	r := callTool(t, srv, "list_notes", map[string]interface{}{})
	text := resultText(r)
	if text != "more\nseed" {
		t.Errorf("list = %q", text)
	}
}

func TestCreateAndReadNote(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_note", map[string]interface{}{
		"name":    "fresh",
		"content": "# Fresh\nHello",
	})
	if text := resultText(r); text != "created: fresh" {
		t.Errorf("create result = %q", text)
	}

	r = callTool(t, srv, "read_note", map[string]interface{}{"id": "fresh"})
	if text := resultText(r); text != "# Fresh\nHello" {
		t.Errorf("read result = %q", text)
	}
}

func TestSaveNote(t *testing.T) {
	srv, store := testServer(t)

	r := callTool(t, srv, "save_note", map[string]interface{}{
		"id":      "seed",
		"content": "# Seed\n\nupdated",
	})
	text := resultText(r)
	if !strings.HasPrefix(text, "saved: seed") {
		t.Errorf("save result = %q", text)
	}
	if got, _ := store.Content("notes/seed.md"); got != "# Seed\n\nupdated" {
		t.Errorf("remote = %q", got)
	}
}

func TestReadNoteMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_note", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}
