package content

import (
	"context"
	"strings"
	"testing"

	"github.com/MarcoPoloResearchLab/aexsite/internal/notion"
	"github.com/MarcoPoloResearchLab/aexsite/internal/render"
	"github.com/MarcoPoloResearchLab/aexsite/internal/routemap"
)

func TestResolvedPageRendersChildPageLinkThroughRouteTable(t *testing.T) {
	const (
		homeID  = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
		aboutID = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
	)
	backend := newFakeBackend()
	backend.setPage(fullPage(homeID, "t1", "Home"))
	backend.setPage(fullPage(aboutID, "t1", "Studio"))
	backend.children[notion.CompactID(homeID)] = []notion.Block{childPage(aboutID, "Studio")}

	service := newTestService(t, backend, func(cfg *ServiceConfig) {
		cfg.StaticRoutes = &memoryStore{entries: []routemap.Entry{
			{Slug: "/", PageID: homeID},
			{Slug: "/about", PageID: aboutID},
		}}
	})

	page, err := service.PageBySlug(context.Background(), "/")
	if err != nil || page == nil {
		t.Fatalf("PageBySlug returned %v, %v", page, err)
	}
	table, err := service.Routes(context.Background())
	if err != nil {
		t.Fatalf("Routes returned error: %v", err)
	}

	renderer := render.New(render.Options{})
	markup, err := render.RenderHTML(renderer.Render(page.Blocks, page.Slug, renderer.Index(table.RouteRefs())))
	if err != nil {
		t.Fatalf("RenderHTML returned error: %v", err)
	}
	if !strings.Contains(markup, `href="/about"`) {
		t.Fatalf("expected link to /about resolved through the route table, got %s", markup)
	}
	if strings.Contains(markup, `href="/studio"`) {
		t.Fatalf("expected route table to win over the title fallback, got %s", markup)
	}
	if !strings.Contains(markup, ">Studio</span>") {
		t.Fatalf("expected child page title in link, got %s", markup)
	}
}
