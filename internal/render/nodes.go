package render

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func element(tag atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: tag, Data: tag.String(), Attr: attrs}
}

// svgElement builds elements without an atom, which html.Render writes by name.
func svgElement(name string, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: name, Namespace: "svg", Attr: attrs}
}

func attr(key, value string) html.Attribute {
	return html.Attribute{Key: key, Val: value}
}

func text(value string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: value}
}

// rawText is a text node for style content; html.Render does not escape children of raw-text elements.
func rawText(value string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: value}
}

// appendChildren attaches detached nodes to parent, skipping nils.
func appendChildren(parent *html.Node, children ...*html.Node) *html.Node {
	for _, child := range children {
		if child == nil {
			continue
		}
		parent.AppendChild(child)
	}
	return parent
}

func cloneTree(node *html.Node) *html.Node {
	clone := &html.Node{
		Type:      node.Type,
		DataAtom:  node.DataAtom,
		Data:      node.Data,
		Namespace: node.Namespace,
		Attr:      append([]html.Attribute(nil), node.Attr...),
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		clone.AppendChild(cloneTree(child))
	}
	return clone
}
