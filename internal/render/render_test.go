package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/MarcoPoloResearchLab/aexsite/internal/notion"
)

func plain(value string) notion.RichText {
	return notion.RichText{Type: "text", PlainText: value}
}

func paragraph(id string, runs ...notion.RichText) notion.Block {
	return notion.Block{ID: id, Type: notion.BlockTypeParagraph, Paragraph: &notion.TextBlock{RichText: runs}}
}

func renderString(t *testing.T, renderer *Renderer, blocks []notion.Block, pageSlug string, index RouteIndex) string {
	t.Helper()
	markup, err := RenderHTML(renderer.Render(blocks, pageSlug, index))
	require.NoError(t, err)
	return markup
}

func TestTesterMarkerMustMatchWholeParagraph(t *testing.T) {
	renderer := New(Options{})

	widget := renderString(t, renderer, []notion.Block{paragraph("p1", plain("{{tester: typecheck}}"))}, "/", RouteIndex{})
	assert.Contains(t, widget, `class="aex-type-tester"`)
	assert.Contains(t, widget, `TypeCheck.woff2`)
	assert.NotContains(t, widget, "<p")

	literal := renderString(t, renderer, []notion.Block{paragraph("p2", plain("hello {{tester: typecheck}}"))}, "/", RouteIndex{})
	assert.NotContains(t, literal, "aex-type-tester")
	assert.Contains(t, literal, "<p")
	assert.Contains(t, literal, "hello {{tester: typecheck}}")
}

func TestTesterMarkerVariants(t *testing.T) {
	renderer := New(Options{})
	for _, marker := range []string{
		"[[tester: nounty | Try it]]",
		"{{ type-tester: nounty }}",
		"tester: nounty | Try it",
		"Type Tester: nounty",
	} {
		t.Run(marker, func(t *testing.T) {
			markup := renderString(t, renderer, []notion.Block{paragraph("p", plain(marker))}, "/", RouteIndex{})
			assert.Contains(t, markup, "Nounty.woff2")
		})
	}

	captioned := renderString(t, renderer, []notion.Block{paragraph("p", plain("[[tester: nounty | Try it]]"))}, "/", RouteIndex{})
	assert.Contains(t, captioned, "<figcaption")
	assert.Contains(t, captioned, "Try it")
}

func TestTesterMarkerWithoutAliasUsesPageDefault(t *testing.T) {
	renderer := New(Options{})

	onFontPage := renderString(t, renderer, []notion.Block{paragraph("p", plain("[[tester]]"))}, "/aextract", RouteIndex{})
	assert.Contains(t, onFontPage, "Aextract-Regular.woff2")

	elsewhere := renderString(t, renderer, []notion.Block{paragraph("p", plain("[[tester]]"))}, "/about", RouteIndex{})
	assert.NotContains(t, elsewhere, "aex-type-tester")
	assert.Contains(t, elsewhere, "[[tester]]")
}

func TestRichTextNestsAnnotationsOutsideLink(t *testing.T) {
	renderer := New(Options{})
	run := notion.RichText{
		PlainText:   "docs",
		Href:        "https://example.com/docs",
		Annotations: notion.Annotations{Bold: true, Italic: true, Code: true},
	}

	markup := renderString(t, renderer, []notion.Block{paragraph("p", run)}, "/", RouteIndex{})
	assert.Contains(t, markup, `<span><em><strong><code><a href="https://example.com/docs" class="notion-link link" data-server-link="false" data-link-uri="https://example.com/docs" target="_blank" rel="noopener noreferrer">docs</a></code></strong></em></span>`)
}

func TestRichTextLinkClassification(t *testing.T) {
	renderer := New(Options{Hostnames: []string{"aex.design"}})

	tests := []struct {
		name     string
		href     string
		expected string
	}{
		{name: "own host", href: "https://AEX.design/about?x=1#top", expected: `href="/about?x=1#top"`},
		{name: "bare path", href: "/fonts", expected: `href="/fonts"`},
		{name: "protocol relative", href: "//cdn.example.com/a", expected: `target="_blank"`},
		{name: "other host", href: "https://example.org", expected: `target="_blank"`},
	}
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			markup := renderString(t, renderer, []notion.Block{paragraph("p", notion.RichText{PlainText: "x", Href: testCase.href})}, "/", RouteIndex{})
			assert.Contains(t, markup, testCase.expected)
		})
	}

	internal := renderString(t, renderer, []notion.Block{paragraph("p", notion.RichText{PlainText: "x", Href: "/fonts"})}, "/", RouteIndex{})
	assert.Contains(t, internal, `data-server-link="true"`)
	assert.NotContains(t, internal, "target=")
}

func TestRichTextBlankLinkShowsTargetAndNewlinesBreak(t *testing.T) {
	renderer := New(Options{})

	blank := renderString(t, renderer, []notion.Block{paragraph("p", notion.RichText{PlainText: "  ", Href: "https://example.org"})}, "/", RouteIndex{})
	assert.Contains(t, blank, ">https://example.org</a>")

	spaced := renderString(t, renderer, []notion.Block{paragraph("p", plain("a"), plain(" "), plain("b"))}, "/", RouteIndex{})
	assert.Contains(t, spaced, "<span> </span>")

	lines := renderString(t, renderer, []notion.Block{paragraph("p", plain("one\ntwo"))}, "/", RouteIndex{})
	assert.Contains(t, lines, "one<br/>two")
}

func TestChildPageLinksThroughRouteIndex(t *testing.T) {
	renderer := New(Options{})
	pageB := "0123456789abcdef0123456789abcdef"
	index := renderer.Index([]RouteRef{
		{Slug: "/", PageID: "ffffffffffffffffffffffffffffffff", Title: "Home"},
		{Slug: "/about", PageID: pageB, Title: "About"},
	})
	block := notion.Block{
		ID:        "01234567-89ab-cdef-0123-456789abcdef",
		Type:      notion.BlockTypeChildPage,
		ChildPage: &notion.ChildPageBlock{Title: "About Us"},
	}

	markup := renderString(t, renderer, []notion.Block{block}, "/", index)
	assert.Contains(t, markup, `href="/about"`)
	assert.Contains(t, markup, `data-server-link="true"`)
	assert.Contains(t, markup, "About Us")
	assert.Contains(t, markup, `id="block-about"`)
}

func TestChildPageFallsBackToTitleAndHidesHiddenRoutes(t *testing.T) {
	renderer := New(Options{})

	fallback := renderString(t, renderer, []notion.Block{{
		ID: "a1", Type: notion.BlockTypeChildPage, ChildPage: &notion.ChildPageBlock{Title: "Hello, World"},
	}}, "/", RouteIndex{})
	assert.Contains(t, fallback, `href="/hello-world"`)

	index := renderer.Index([]RouteRef{{Slug: "/nounty-type-tester", PageID: "b2"}})
	hidden := renderString(t, renderer, []notion.Block{{
		ID: "b2", Type: notion.BlockTypeChildPage, ChildPage: &notion.ChildPageBlock{Title: "Tester"},
	}}, "/", index)
	assert.Empty(t, hidden)
}

func TestChildPageExpandableGroupOnRoot(t *testing.T) {
	renderer := New(Options{})
	index := renderer.Index([]RouteRef{
		{Slug: "/onchain", PageID: "p0", Title: "Onchain"},
		{Slug: "/onchain/zeta", PageID: "p2", Title: "Zeta Collection"},
		{Slug: "/onchain/alpha-one", PageID: "p1"},
		{Slug: "/onchain/alpha-one", PageID: "p3", Title: "Duplicate"},
		{Slug: "/onchain/probe-type-tester", PageID: "p4"},
	})
	block := notion.Block{ID: "p0", Type: notion.BlockTypeChildPage, ChildPage: &notion.ChildPageBlock{Title: "Onchain"}}

	group := renderString(t, renderer, []notion.Block{block}, "/", index)
	assert.Contains(t, group, "notion-page-group")
	alpha := strings.Index(group, `href="/onchain/alpha-one"`)
	zeta := strings.Index(group, `href="/onchain/zeta"`)
	require.True(t, alpha > 0 && zeta > 0, group)
	assert.Less(t, alpha, zeta)
	assert.Equal(t, 1, strings.Count(group, `href="/onchain/alpha-one"`))
	assert.Contains(t, group, "alpha one")
	assert.Contains(t, group, "Zeta Collection")
	assert.NotContains(t, group, "type-tester")

	nested := renderString(t, renderer, []notion.Block{block}, "/archive", index)
	assert.NotContains(t, nested, "notion-page-group")
	assert.Contains(t, nested, `href="/onchain"`)
}

func TestImageSources(t *testing.T) {
	renderer := New(Options{})
	blocks := []notion.Block{
		{ID: "ext", Type: notion.BlockTypeImage, Image: &notion.FileBlock{
			Type: notion.FileTypeExternal, External: &notion.ExternalRef{URL: "https://images.example.com/a.png"},
			Caption: []notion.RichText{plain("A cat")},
		}},
		{ID: "abc-123", Type: notion.BlockTypeImage, Image: &notion.FileBlock{
			Type: notion.FileTypeFile, File: &notion.FileRef{URL: "https://s3.example.com/signed"},
		}},
	}

	markup := renderString(t, renderer, blocks, "/", RouteIndex{})
	assert.Contains(t, markup, `src="https://images.example.com/a.png" alt="A cat"`)
	assert.Contains(t, markup, `src="/api/notion-image/abc-123" alt="image"`)
	assert.NotContains(t, markup, "s3.example.com")
}

func TestEmbedVariants(t *testing.T) {
	renderer := New(Options{})
	embed := func(id, target string) notion.Block {
		return notion.Block{ID: id, Type: notion.BlockTypeEmbed, Embed: &notion.LinkBlock{URL: target}}
	}

	iframe := renderString(t, renderer, []notion.Block{embed("e1", "http://player.example.com/v/1")}, "/", RouteIndex{})
	assert.Contains(t, iframe, `<iframe src="https://player.example.com/v/1"`)
	assert.Contains(t, iframe, `sandbox="`)

	tester := renderString(t, renderer, []notion.Block{embed("e2", "https://aex.design//typecheck-type-tester/")}, "/", RouteIndex{})
	assert.Contains(t, tester, "aex-type-tester")
	assert.NotContains(t, tester, "<iframe")

	relative := renderString(t, renderer, []notion.Block{embed("e3", "/nounty-type-tester")}, "/", RouteIndex{})
	assert.Contains(t, relative, "Nounty.woff2")

	link := renderString(t, renderer, []notion.Block{embed("e4", "mailto:hello@example.com")}, "/", RouteIndex{})
	assert.Contains(t, link, `href="mailto:hello@example.com"`)
	assert.NotContains(t, link, "<iframe")
}

func TestBlockVariants(t *testing.T) {
	renderer := New(Options{})
	blocks := []notion.Block{
		{ID: "aaaa-bbbb", Type: notion.BlockTypeHeading2, Heading2: &notion.TextBlock{RichText: []notion.RichText{plain("Section")}}},
		{ID: "q", Type: notion.BlockTypeQuote, Quote: &notion.TextBlock{RichText: []notion.RichText{plain("Quoted")}}},
		{ID: "b", Type: notion.BlockTypeBulletedListItem, BulletedListItem: &notion.TextBlock{RichText: []notion.RichText{plain("Bullet")}}},
		{ID: "n", Type: notion.BlockTypeNumberedListItem, NumberedListItem: &notion.TextBlock{RichText: []notion.RichText{plain("Number")}}},
		{ID: "t", Type: notion.BlockTypeToDo, ToDo: &notion.ToDoBlock{RichText: []notion.RichText{plain("Task")}, Checked: true}},
		{ID: "c", Type: notion.BlockTypeCallout, Callout: &notion.CalloutBlock{Icon: &notion.Icon{Type: "emoji", Emoji: "💡"}, RichText: []notion.RichText{plain("Note")}}},
		{ID: "d", Type: notion.BlockTypeDivider, Divider: &notion.EmptyBlock{}},
		{ID: "code", Type: notion.BlockTypeCode, Code: &notion.CodeBlock{Language: "go", RichText: []notion.RichText{plain("x := 1 < 2")}}},
		{ID: "bm", Type: notion.BlockTypeBookmark, Bookmark: &notion.LinkBlock{URL: "https://example.org/read"}},
		{ID: "u", Type: "synced_block"},
	}

	markup := renderString(t, renderer, blocks, "/", RouteIndex{})
	assert.Contains(t, markup, `<span class="notion-heading__anchor" id="aaaabbbb"></span><h2 id="block-aaaabbbb"`)
	assert.Contains(t, markup, "<blockquote")
	assert.Contains(t, markup, `<ul class="notion-list notion-list-disc"><li id="block-b"`)
	assert.Contains(t, markup, `<ol class="notion-list notion-list-numbered"><li id="block-n"`)
	assert.Contains(t, markup, `<input type="checkbox" disabled="" checked=""/>`)
	assert.Contains(t, markup, "💡")
	assert.Contains(t, markup, `<hr id="block-d" class="notion-divider"/>`)
	assert.Contains(t, markup, `<pre data-language="go"><code>x := 1 &lt; 2</code></pre>`)
	assert.Contains(t, markup, `href="https://example.org/read"`)
	assert.NotContains(t, markup, "block-u")
}

func TestToggleWithHiddenMarkerIsSkipped(t *testing.T) {
	renderer := New(Options{})
	toggle := func(summary string) notion.Block {
		return notion.Block{
			ID:       "tg",
			Type:     notion.BlockTypeToggle,
			Toggle:   &notion.TextBlock{RichText: []notion.RichText{plain(summary)}},
			Children: []notion.Block{paragraph("inner", plain("Inside"))},
		}
	}

	shown := renderString(t, renderer, []notion.Block{toggle("Details")}, "/", RouteIndex{})
	assert.Contains(t, shown, "<details")
	assert.Contains(t, shown, "Inside")

	hidden := renderString(t, renderer, []notion.Block{toggle("Notes NOT to be displayed")}, "/", RouteIndex{})
	assert.Empty(t, hidden)
}

func TestRenderDepthIsCapped(t *testing.T) {
	renderer := New(Options{})
	var root notion.Block
	current := &root
	for level := 0; level < maxRenderDepth+10; level++ {
		current.ID = "lvl"
		current.Type = notion.BlockTypeBulletedListItem
		current.BulletedListItem = &notion.TextBlock{RichText: []notion.RichText{plain("x")}}
		current.Children = []notion.Block{{}}
		current = &current.Children[0]
	}

	nodes := renderer.Render([]notion.Block{root}, "/", RouteIndex{})
	markup, err := RenderHTML(nodes)
	require.NoError(t, err)
	assert.Equal(t, maxRenderDepth+1, strings.Count(markup, "<li "))
}

func TestMarkdownAndExcerpt(t *testing.T) {
	renderer := New(Options{})
	blocks := []notion.Block{
		{ID: "h", Type: notion.BlockTypeHeading1, Heading1: &notion.TextBlock{RichText: []notion.RichText{plain("Fonts & Tools")}}},
		paragraph("p", plain("A collection of "), notion.RichText{PlainText: "type", Annotations: notion.Annotations{Bold: true}}, plain(" experiments.")),
		paragraph("t", plain("{{tester: typecheck}}")),
	}
	nodes := renderer.Render(blocks, "/", RouteIndex{})

	markdown, err := Markdown(nodes)
	require.NoError(t, err)
	assert.Contains(t, markdown, "# Fonts & Tools")
	assert.Contains(t, markdown, "**type**")
	assert.NotContains(t, markdown, "@font-face")

	assert.Equal(t, "Fonts & Tools A collection of type experiments. Size 60px Type Your Own TypeTester", Excerpt(nodes, 0))
	assert.Equal(t, "Fonts & Tools A…", Excerpt(nodes, 16))

	again, err := RenderHTML(nodes)
	require.NoError(t, err)
	assert.Contains(t, again, "@font-face")
}

func TestRenderHTMLOfEmptyInput(t *testing.T) {
	markup, err := RenderHTML([]*html.Node{})
	require.NoError(t, err)
	assert.Empty(t, markup)
}
