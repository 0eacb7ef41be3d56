// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the note workflow as tools for LLM integration via stdio
// transport. The session must already be authenticated before serving.
package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/workflow"
)

// Server wraps the MCP server with the note tools.
type Server struct {
	mcp *server.MCPServer
	wf  *workflow.Workflow
}

// New creates an MCP server with all note tools registered.
func New(wf *workflow.Workflow) *Server {
	s := &Server{wf: wf}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List the notes stored in the remote repository. Re-fetches the directory on every call."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note's content. The note becomes the open note of the session."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note identifier (filename without the .md extension)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note in the remote repository and open it."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Note name, without extension or path separators")),
		mcp.WithString("content", mcp.Description("Initial markdown content; a starter template is used when omitted")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("save_note",
		mcp.WithDescription("Replace a note's content and save it to the remote repository. "+
			"The current version is re-read first, so a concurrent remote change is reported as a conflict instead of overwritten."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note identifier")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full replacement markdown content")),
	), s.saveNote)

	return s
}

// ServeStdio blocks serving MCP over stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.wf.Refresh(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(ids) == 0 {
		return mcp.NewToolResultText("no notes"), nil
	}
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := s.wf.OpenNote(ctx, models.NoteID(id))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(content), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content := ""
	if c, err := req.RequireString("content"); err == nil {
		content = c
	}
	id, err := s.wf.CreateNote(ctx, name, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", id)), nil
}

func (s *Server) saveNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.wf.OpenNote(ctx, models.NoteID(id)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.wf.SetText(content); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	file, err := s.wf.SaveNote(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s (version %s)", id, file.SHA)), nil
}
