package render

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	bm "github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/MarcoPoloResearchLab/aexsite/internal/notion"
	"github.com/MarcoPoloResearchLab/aexsite/internal/slug"
)

// DefaultExcerptLength is the rune budget of Excerpt when none is given.
const DefaultExcerptLength = 160

var ErrMarkdownConversion = errors.New("render: markdown conversion failed")

var (
	excerptPolicy   = bm.StrictPolicy()
	blockBoundaries = strings.NewReplacer(
		"<br/>", " ",
		"</p>", " </p>",
		"</li>", " </li>",
		"</h1>", " </h1>",
		"</h2>", " </h2>",
		"</h3>", " </h3>",
		"</div>", " </div>",
		"</label>", " </label>",
		"</summary>", " </summary>",
		"</blockquote>", " </blockquote>",
		"</figcaption>", " </figcaption>",
		"</pre>", " </pre>",
	)
)

// Render maps a page's block tree to detached markup nodes. pageSlug selects the
// default tester and enables expandable child-page groups on the root page.
func (r *Renderer) Render(blocks []notion.Block, pageSlug string, index RouteIndex) []*html.Node {
	return r.blocks(blocks, renderContext{pageSlug: slug.Normalize(pageSlug), index: index}, 0)
}

// RenderHTML serializes nodes as an HTML fragment.
func RenderHTML(nodes []*html.Node) (string, error) {
	var buffer bytes.Buffer
	for _, node := range nodes {
		if err := html.Render(&buffer, node); err != nil {
			return "", err
		}
	}
	return buffer.String(), nil
}

// Markdown converts rendered nodes to markdown. The nodes are cloned, so the
// caller may keep rendering them afterwards.
func Markdown(nodes []*html.Node) (string, error) {
	container := element(atom.Div)
	for _, node := range nodes {
		appendChildren(container, cloneTree(node))
	}
	stripElements(container, atom.Style, atom.Input)
	markdown, err := htmltomarkdown.ConvertNode(container)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMarkdownConversion, err)
	}
	return strings.TrimSpace(string(markdown)), nil
}

// Excerpt returns the visible text of nodes collapsed to single spaces and cut
// to at most maxRunes runes. maxRunes <= 0 uses DefaultExcerptLength.
func Excerpt(nodes []*html.Node, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = DefaultExcerptLength
	}
	fragment, err := RenderHTML(nodes)
	if err != nil {
		return ""
	}
	// Block boundaries become spaces before the tags are stripped.
	fragment = blockBoundaries.Replace(fragment)
	plain := html.UnescapeString(excerptPolicy.Sanitize(fragment))
	plain = strings.Join(strings.Fields(plain), " ")
	if utf8.RuneCountInString(plain) <= maxRunes {
		return plain
	}
	runes := []rune(plain)
	cut := strings.TrimSpace(string(runes[:maxRunes]))
	if !unicode.IsSpace(runes[maxRunes]) && !unicode.IsSpace(runes[maxRunes-1]) {
		if space := strings.LastIndex(cut, " "); space > len(cut)/2 {
			cut = cut[:space]
		}
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

func stripElements(node *html.Node, tags ...atom.Atom) {
	for child := node.FirstChild; child != nil; {
		next := child.NextSibling
		removed := false
		if child.Type == html.ElementNode {
			for _, tag := range tags {
				if child.DataAtom == tag {
					node.RemoveChild(child)
					removed = true
					break
				}
			}
		}
		if !removed {
			stripElements(child, tags...)
		}
		child = next
	}
}
