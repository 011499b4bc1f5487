// Package mcp exposes site content as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/MarcoPoloResearchLab/aexsite/internal/content"
	"github.com/MarcoPoloResearchLab/aexsite/internal/render"
	"github.com/MarcoPoloResearchLab/aexsite/internal/slug"
)

const Version = "0.1.0"

// ContentSource is the read side of the content service.
type ContentSource interface {
	Routes(ctx context.Context) (*content.Table, error)
	PageBySlug(ctx context.Context, rawSlug string) (*content.Page, error)
}

type ListRoutesRequest struct{}

type ListRoutesResponse struct {
	Routes []content.Route `json:"routes"`
}

type GetPageRequest struct {
	Slug string `json:"slug"` // Page slug such as "/" or "/about"
}

type GetPageResponse struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Markdown    string `json:"markdown"`
}

// NewServer creates the MCP server with the listRoutes and getPage tools.
func NewServer(source ContentSource, renderer *render.Renderer) *server.MCPServer {
	s := server.NewMCPServer(
		"aexsite content",
		Version,
		server.WithToolCapabilities(false),
	)

	listRoutesTool := mcp.NewTool("listRoutes",
		mcp.WithDescription("List the public page slugs of the site with their titles"),
	)
	s.AddTool(listRoutesTool, mcp.NewTypedToolHandler(listRoutesHandler(source)))

	getPageTool := mcp.NewTool("getPage",
		mcp.WithDescription("Get a page of the site rendered as markdown"),
		mcp.WithString("slug",
			mcp.Required(),
			mcp.Description("The page slug, e.g. '/' or '/typecheck'"),
		),
	)
	s.AddTool(getPageTool, mcp.NewTypedToolHandler(getPageHandler(source, renderer)))

	return s
}

func listRoutesHandler(source ContentSource) func(ctx context.Context, request mcp.CallToolRequest, args ListRoutesRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest, _ ListRoutesRequest) (*mcp.CallToolResult, error) {
		table, err := source.Routes(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load routes: %v", err)), nil
		}
		return jsonResult(ListRoutesResponse{Routes: table.Entries()})
	}
}

func getPageHandler(source ContentSource, renderer *render.Renderer) func(ctx context.Context, request mcp.CallToolRequest, args GetPageRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest, args GetPageRequest) (*mcp.CallToolResult, error) {
		if strings.TrimSpace(args.Slug) == "" {
			return mcp.NewToolResultError("slug is required"), nil
		}
		pageSlug := slug.Normalize(args.Slug)

		page, err := source.PageBySlug(ctx, pageSlug)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load page: %v", err)), nil
		}
		if page == nil {
			return mcp.NewToolResultError(fmt.Sprintf("page %s not found", pageSlug)), nil
		}

		var refs []render.RouteRef
		if table, err := source.Routes(ctx); err == nil {
			refs = table.RouteRefs()
		}
		nodes := renderer.Render(page.Blocks, page.Slug, renderer.Index(refs))
		markdown, err := render.Markdown(nodes)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to convert page: %v", err)), nil
		}

		return jsonResult(GetPageResponse{
			Slug:        page.Slug,
			Title:       page.Title,
			Description: page.Description,
			Markdown:    markdown,
		})
	}
}

func jsonResult(response any) (*mcp.CallToolResult, error) {
	responseBytes, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseBytes)), nil
}
