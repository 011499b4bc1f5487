package render

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/MarcoPoloResearchLab/aexsite/internal/notion"
)

// richText renders each run inside its own span. The link wraps the text directly and
// annotations wrap outward in a fixed order: code, bold, italic, strikethrough, underline.
func (r *Renderer) richText(items []notion.RichText) []*html.Node {
	nodes := make([]*html.Node, 0, len(items))
	for _, item := range items {
		visible := item.PlainText
		if strings.TrimSpace(visible) == "" && item.Href != "" {
			visible = item.Href
		}

		content := lineBreaks(visible)
		if item.Href != "" {
			content = []*html.Node{appendChildren(r.link(item.Href), content...)}
		}

		annotations := item.Annotations
		for _, wrapper := range []struct {
			enabled bool
			tag     atom.Atom
		}{
			{annotations.Code, atom.Code},
			{annotations.Bold, atom.Strong},
			{annotations.Italic, atom.Em},
			{annotations.Strikethrough, atom.S},
			{annotations.Underline, atom.U},
		} {
			if wrapper.enabled {
				content = []*html.Node{appendChildren(element(wrapper.tag), content...)}
			}
		}
		nodes = append(nodes, appendChildren(element(atom.Span), content...))
	}
	return nodes
}

func lineBreaks(value string) []*html.Node {
	lines := strings.Split(value, "\n")
	nodes := make([]*html.Node, 0, len(lines)*2)
	for index, line := range lines {
		if line != "" {
			nodes = append(nodes, text(line))
		}
		if index < len(lines)-1 {
			nodes = append(nodes, element(atom.Br))
		}
	}
	return nodes
}

// link builds an anchor, rewriting links to the site's own hosts to path-only form.
func (r *Renderer) link(href string) *html.Node {
	if internal, ok := r.internalHref(href); ok {
		return element(atom.A,
			attr("href", internal),
			attr("class", "notion-link link"),
			attr("data-server-link", "true"),
			attr("data-link-uri", internal),
		)
	}
	return element(atom.A,
		attr("href", href),
		attr("class", "notion-link link"),
		attr("data-server-link", "false"),
		attr("data-link-uri", href),
		attr("target", "_blank"),
		attr("rel", "noopener noreferrer"),
	)
}

// internalHref reports whether href is a bare path or targets one of the site's hostnames.
func (r *Renderer) internalHref(href string) (string, bool) {
	trimmed := strings.TrimSpace(href)
	if strings.HasPrefix(trimmed, "/") && !strings.HasPrefix(trimmed, "//") {
		return trimmed, true
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return "", false
	}
	if parsed.Scheme != "" && parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", false
	}
	if _, ok := r.hostnames[strings.ToLower(parsed.Hostname())]; !ok {
		return "", false
	}
	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	if parsed.RawQuery != "" {
		path += "?" + parsed.RawQuery
	}
	if parsed.Fragment != "" {
		path += "#" + parsed.EscapedFragment()
	}
	return path, true
}

// serverLink is an internal navigation anchor for child-page references.
func serverLink(href, class string) *html.Node {
	return element(atom.A,
		attr("href", href),
		attr("class", class),
		attr("data-server-link", "true"),
		attr("data-link-uri", href),
	)
}
