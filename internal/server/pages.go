package server

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarcoPoloResearchLab/aexsite/internal/content"
	"github.com/MarcoPoloResearchLab/aexsite/internal/navigation"
	"github.com/MarcoPoloResearchLab/aexsite/internal/render"
	"github.com/MarcoPoloResearchLab/aexsite/internal/site"
	"github.com/MarcoPoloResearchLab/aexsite/internal/slug"
)

const (
	formatMarkdown   = "markdown"
	playgroundPath   = "/typeplayground"
	contentTypeHTML  = "text/html; charset=utf-8"
	contentTypeMD    = "text/markdown; charset=utf-8"
	contentTypeXML   = "application/xml; charset=utf-8"
	contentTypePlain = "text/plain; charset=utf-8"
	pageCacheControl = "public, s-maxage=60, stale-while-revalidate=3600"
)

func (h *httpHandler) handlePage(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "not found"})
		return
	}
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "not found"})
		return
	}

	ctx := c.Request.Context()
	pageSlug := slug.Normalize(c.Request.URL.Path)
	page, err := h.content.PageBySlug(ctx, pageSlug)
	if err != nil {
		h.logger.Error("page resolution failed", zap.String("slug", pageSlug), zap.Error(err))
		h.writeComponent(c, http.StatusInternalServerError, site.Layout(h.head(pageSlug, "Error", "", true), h.menu(c), site.ServerError()))
		return
	}
	if page == nil {
		h.writeComponent(c, http.StatusNotFound, site.Layout(h.head(pageSlug, "Page not found", "", true), h.menu(c), site.NotFound()))
		return
	}

	table := h.routeTable(c)
	nodes := h.renderer.Render(page.Blocks, page.Slug, h.renderer.Index(table.RouteRefs()))

	if strings.EqualFold(c.Query("format"), formatMarkdown) {
		markdown, err := render.Markdown(nodes)
		if err != nil {
			h.logger.Error("markdown conversion failed", zap.String("slug", page.Slug), zap.Error(err))
			c.Data(http.StatusInternalServerError, contentTypePlain, []byte("markdown conversion failed"))
			return
		}
		c.Data(http.StatusOK, contentTypeMD, []byte("# "+page.Title+"\n\n"+markdown+"\n"))
		return
	}

	description := page.Description
	if description == "" {
		description = render.Excerpt(nodes, render.DefaultExcerptLength)
	}
	view := site.PageView{
		ID:          page.ID,
		Slug:        page.Slug,
		Title:       page.Title,
		Description: page.Description,
		Nodes:       nodes,
	}
	c.Header("Cache-Control", pageCacheControl)
	h.writeComponent(c, http.StatusOK, site.Layout(h.head(page.Slug, page.Title, description, false), navigation.BuildMenu(table.Entries()), site.SitePage(view)))
}

func (h *httpHandler) handleTypePlayground(c *gin.Context) {
	body := site.TypePlayground(site.PlaygroundFonts(), c.Query("font"))
	h.writeComponent(c, http.StatusOK, site.Layout(h.head(playgroundPath, "Type Playground", "", false), h.menu(c), body))
}

func (h *httpHandler) handleSitemap(c *gin.Context) {
	table, err := h.content.Routes(c.Request.Context())
	if err != nil {
		h.logger.Error("sitemap route load failed", zap.Error(err))
		c.Data(http.StatusInternalServerError, contentTypePlain, []byte("sitemap unavailable"))
		return
	}
	body, err := navigation.BuildSitemap(h.siteURL, table.Slugs(), navigation.DefaultStaticPaths)
	if err != nil {
		h.logger.Error("sitemap build failed", zap.Error(err))
		c.Data(http.StatusInternalServerError, contentTypePlain, []byte("sitemap unavailable"))
		return
	}
	c.Data(http.StatusOK, contentTypeXML, body)
}

func (h *httpHandler) handleRobots(c *gin.Context) {
	body := "User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: " + h.siteURL + "/sitemap.xml\n"
	c.Data(http.StatusOK, contentTypePlain, []byte(body))
}

func (h *httpHandler) head(path, title, description string, noIndex bool) site.Head {
	return site.Head{
		SiteName:    h.siteName,
		SiteURL:     h.siteURL,
		Path:        path,
		Title:       title,
		Description: description,
		NoIndex:     noIndex,
	}
}

// routeTable returns the current table, or an empty one when routes cannot be loaded.
func (h *httpHandler) routeTable(c *gin.Context) *content.Table {
	table, err := h.content.Routes(c.Request.Context())
	if err != nil {
		h.logger.Warn("route table unavailable for navigation", zap.Error(err))
		return content.NewTable(nil)
	}
	return table
}

func (h *httpHandler) menu(c *gin.Context) []navigation.MenuGroup {
	return navigation.BuildMenu(h.routeTable(c).Entries())
}

func (h *httpHandler) writeComponent(c *gin.Context, status int, component templ.Component) {
	c.Header("Content-Type", contentTypeHTML)
	c.Status(status)
	if c.Request.Method == http.MethodHead {
		return
	}
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		h.logger.Error("component render failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
}
