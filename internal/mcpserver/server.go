// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes read-only article tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ashkor/pressgate/internal/apperr"
	"github.com/ashkor/pressgate/internal/reader"
)

// Server wraps the MCP server with the article tools.
type Server struct {
	mcp *server.MCPServer
	svc *reader.Service
}

// New creates a new MCP server with all tools registered. The surface is
// read-only; there are no authoring tools.
func New(svc *reader.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Pressgate",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("read_article",
		mcp.WithDescription("Fetch one article as an assembled page payload: "+
			"sanitized body, table of contents, chronological neighbors, and related articles."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Article id (positive integer)")),
	), s.readArticle)

	s.mcp.AddTool(mcp.NewTool("list_articles",
		mcp.WithDescription("List recent articles, newest first."),
		mcp.WithString("limit", mcp.Description("Optional maximum number of articles (up to 100)")),
	), s.listArticles)

	s.mcp.AddTool(mcp.NewTool("related_articles",
		mcp.WithDescription("List articles sharing the primary category of the given article."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Article id whose category is used")),
		mcp.WithString("limit", mcp.Description("Optional maximum number of results")),
	), s.relatedArticles)

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

func (s *Server) readArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	page, err := s.svc.ArticlePage(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("article not found: %d", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(page, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listArticles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := optionalLimit(req)

	cards, err := s.svc.ArticleList(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(cards, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) relatedArticles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cards, err := s.svc.RelatedArticles(ctx, id, optionalLimit(req))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("article not found: %d", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(cards, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func requireID(req mcp.CallToolRequest) (int, error) {
	raw, err := req.RequireString("id")
	if err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id must be a positive integer, got %q", raw)
	}
	return id, nil
}

func optionalLimit(req mcp.CallToolRequest) int {
	raw, err := req.RequireString("limit")
	if err != nil {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
