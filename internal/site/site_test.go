package site

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/MarcoPoloResearchLab/aexsite/internal/navigation"
)

func renderComponent(t *testing.T, component templ.Component) string {
	t.Helper()
	var buffer bytes.Buffer
	if err := component.Render(context.Background(), &buffer); err != nil {
		t.Fatalf("render component: %v", err)
	}
	return buffer.String()
}

func TestLayoutWrapsPageWithMetadataAndMenu(t *testing.T) {
	paragraph := &html.Node{Type: html.ElementNode, DataAtom: atom.P, Data: "p"}
	paragraph.AppendChild(&html.Node{Type: html.TextNode, Data: "Body <text>"})

	page := PageView{
		ID:          "0123-4567",
		Slug:        "/typecheck",
		Title:       "TypeCheck",
		Description: "A \"checked\" font",
		Nodes:       []*html.Node{paragraph},
	}
	menu := []navigation.MenuGroup{{Label: "Onchain", Slug: "/onchain", Items: []navigation.MenuItem{{Label: "Zeta", Slug: "/onchain/zeta"}}}}
	head := Head{SiteURL: "https://aex.design", Path: page.Slug, Title: page.Title, Description: page.Description}

	output := renderComponent(t, Layout(head, menu, SitePage(page)))

	for _, expected := range []string{
		"<title>TypeCheck | Aex Designs</title>",
		`<link rel="canonical" href="https://aex.design/typecheck">`,
		`content="A &#34;checked&#34; font"`,
		`href="/onchain/zeta"`,
		`<main id="page-typecheck" class="site-content page__typecheck">`,
		`href="https://opensea.io/collection/typecheck"`,
		`<article id="block-01234567" class="notion-root max-width"><p>Body &lt;text&gt;</p></article>`,
	} {
		if !strings.Contains(output, expected) {
			t.Fatalf("expected %q in output:\n%s", expected, output)
		}
	}
}

func TestSitePageWithoutActionsOrDescription(t *testing.T) {
	output := renderComponent(t, SitePage(PageView{ID: "abc", Slug: "/", Title: "Home"}))
	if strings.Contains(output, topActionsClass) {
		t.Fatalf("unexpected top actions on home page")
	}
	if strings.Contains(output, "notion-header__description") {
		t.Fatalf("unexpected description paragraph")
	}
	if !strings.Contains(output, `id="page-index"`) {
		t.Fatalf("expected index page class, got %s", output)
	}
}

func TestNotFoundAndServerError(t *testing.T) {
	if output := renderComponent(t, NotFound()); !strings.Contains(output, "Page not found") {
		t.Fatalf("unexpected not found markup: %s", output)
	}
	if output := renderComponent(t, ServerError()); !strings.Contains(output, "error-card") {
		t.Fatalf("unexpected error markup: %s", output)
	}
}

func TestTypePlaygroundSelectsActiveFont(t *testing.T) {
	fonts := PlaygroundFonts()

	output := renderComponent(t, TypePlayground(fonts, "nounty"))
	if !strings.Contains(output, "Nounty.woff2") {
		t.Fatalf("expected nounty tester in output")
	}
	if !strings.Contains(output, "Glyph Count: 89") {
		t.Fatalf("expected nounty glyph count in output")
	}
	if !strings.Contains(output, `class="type-playground__toggle-button is-active" aria-pressed="true" href="/typeplayground?font=nounty"`) {
		t.Fatalf("expected nounty toggle to be active: %s", output)
	}

	fallback := renderComponent(t, TypePlayground(fonts, "missing"))
	if !strings.Contains(fallback, "TypeCheck.woff2") {
		t.Fatalf("expected first font for unknown id")
	}
}
