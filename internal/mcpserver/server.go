// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes read-only worklog tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/worklog/internal/apperr"
	"github.com/starford/worklog/internal/content"
	"github.com/starford/worklog/internal/models"
)

// FormatResourceURI addresses the document format resource.
const FormatResourceURI = "worklog://frontmatter-format"

// Server wraps the MCP server with worklog tools.
type Server struct {
	mcp *server.MCPServer
	src content.Source
}

// New creates a new MCP server with all tools registered.
func New(src content.Source, version string) *Server {
	s := &Server{src: src}

	s.mcp = server.NewMCPServer(
		"worklog",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_sections",
		mcp.WithDescription("List the content sections of the site."),
	), s.listSections)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List the posts of a section, newest first, optionally filtered by tag."),
		mcp.WithString("section", mcp.Required(), mcp.Description("Section name (til, notes, recipes, workouts)")),
		mcp.WithString("tag", mcp.Description("Optional tag; matched case-insensitively")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List the tags of a section with the number of posts carrying each."),
		mcp.WithString("section", mcp.Required(), mcp.Description("Section name")),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read the frontmatter and raw Markdown body of a post."),
		mcp.WithString("section", mcp.Required(), mcp.Description("Section name")),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Post slug without extension (e.g. go/slices)")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("get_frontmatter_format",
		mcp.WithDescription("Returns the document format accepted by the site."),
	), s.getFrontmatterFormat)

	s.mcp.AddResource(
		mcp.NewResource(FormatResourceURI, "Frontmatter Format",
			mcp.WithResourceDescription("Layout and frontmatter fields of a content document."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

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

func (s *Server) listSections(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names := make([]string, 0, len(models.Sections()))
	for _, sec := range models.Sections() {
		names = append(names, sec.String())
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func (s *Server) listPosts(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section, errResult := requireSection(req)
	if errResult != nil {
		return errResult, nil
	}

	var (
		posts []models.Post
		err   error
	)
	if tag := req.GetString("tag", ""); tag != "" {
		posts, err = s.src.ListPostsByTag(section, tag)
	} else {
		posts, err = s.src.ListPosts(section)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return jsonResult(posts)
}

func (s *Server) listTags(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section, errResult := requireSection(req)
	if errResult != nil {
		return errResult, nil
	}
	tags, err := s.src.ListTags(section)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if tags == nil {
		tags = []models.TagCount{}
	}
	return jsonResult(tags)
}

func (s *Server) readPost(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section, errResult := requireSection(req)
	if errResult != nil {
		return errResult, nil
	}
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := s.src.GetPost(section, strings.Split(strings.Trim(slug, "/"), "/"))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s/%s", section, slug)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(doc)
}

func (s *Server) getFrontmatterFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FrontmatterFormat), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FormatResourceURI,
			MIMEType: "text/markdown",
			Text:     FrontmatterFormat,
		},
	}, nil
}

func requireSection(req mcp.CallToolRequest) (models.Section, *mcp.CallToolResult) {
	raw, err := req.RequireString("section")
	if err != nil {
		return "", mcp.NewToolResultError(err.Error())
	}
	section, ok := models.ParseSection(raw)
	if !ok {
		return "", mcp.NewToolResultError(fmt.Sprintf("unknown section %q", raw))
	}
	return section, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}
