// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the journal tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/journal"
	"github.com/starford/ansuz/internal/search"
)

// Server wraps the MCP server with journal tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *journal.Service
	index *search.Index
}

// New creates a new MCP server with all journal tools registered.
func New(svc *journal.Service, index *search.Index) *Server {
	s := &Server{svc: svc, index: index}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all saved study notes in insertion order."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Save a new study note. Notes are immutable once saved."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Note text")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("list_captions",
		mcp.WithDescription("List all saved live-caption segments in insertion order."),
	), s.listCaptions)

	s.mcp.AddTool(mcp.NewTool("save_caption",
		mcp.WithDescription("Save a live-caption segment. The timestamp is filled by the server when omitted."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Caption text")),
		mcp.WithString("timestamp", mcp.Description("Optional display timestamp (e.g. 14:03:12)")),
	), s.saveCaption)

	s.mcp.AddTool(mcp.NewTool("search_entries",
		mcp.WithDescription("Full-text search across notes and captions."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchEntries)

	s.mcp.AddTool(mcp.NewTool("get_settings",
		mcp.WithDescription("Read the current accessibility settings record."),
	), s.getSettings)

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

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.svc.ListNotes(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(notes, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.AddNote(ctx, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.index != nil {
		_ = s.index.Upsert(search.KindNote, note.ID, note.Text, note.Date.Format("2006-01-02T15:04:05Z07:00"))
	}
	out, _ := json.MarshalIndent(note, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listCaptions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	captions, err := s.svc.ListCaptions(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(captions, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) saveCaption(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timestamp := req.GetString("timestamp", "")

	caption, err := s.svc.AddCaption(ctx, text, timestamp)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.index != nil {
		_ = s.index.Upsert(search.KindCaption, caption.ID, caption.Text, caption.Timestamp)
	}
	out, _ := json.MarshalIndent(caption, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.index.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getSettings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	settings, err := s.svc.Settings(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(settings, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
