package render

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/MarcoPoloResearchLab/aexsite/internal/notion"
	"github.com/MarcoPoloResearchLab/aexsite/internal/slug"
)

const (
	hiddenToggleMarker = "not to be displayed"
	embedSandbox       = "allow-scripts allow-popups allow-forms allow-same-origin allow-popups-to-escape-sandbox allow-top-navigation-by-user-activation"
	pageIconPath       = "M4.35645 15.4678H11.6367C13.0996 15.4678 13.8584 14.6953 13.8584 13.2256V7.02539C13.8584 6.0752 13.7354 5.6377 13.1406 5.03613L9.55176 1.38574C8.97754 0.804688 8.50586 0.667969 7.65137 0.667969H4.35645C2.89355 0.667969 2.13477 1.44043 2.13477 2.91016V13.2256C2.13477 14.7021 2.89355 15.4678 4.35645 15.4678ZM4.46582 14.1279C3.80273 14.1279 3.47461 13.7793 3.47461 13.1436V2.99219C3.47461 2.36328 3.80273 2.00781 4.46582 2.00781H7.37793V5.75391C7.37793 6.73145 7.86328 7.20312 8.83398 7.20312H12.5186V13.1436C12.5186 13.7793 12.1836 14.1279 11.5205 14.1279H4.46582ZM8.95703 6.02734C8.67676 6.02734 8.56055 5.9043 8.56055 5.62402V2.19238L12.334 6.02734H8.95703ZM10.4336 9.00098H5.42969C5.16992 9.00098 4.98535 9.19238 4.98535 9.43164C4.98535 9.67773 5.16992 9.86914 5.42969 9.86914H10.4336C10.6797 9.86914 10.8643 9.67773 10.8643 9.43164C10.8643 9.19238 10.6797 9.00098 10.4336 9.00098ZM10.4336 11.2979H5.42969C5.16992 11.2979 4.98535 11.4893 4.98535 11.7354C4.98535 11.9746 5.16992 12.1592 5.42969 12.1592H10.4336C10.6797 12.1592 10.8643 11.9746 10.8643 11.7354C10.8643 11.4893 10.6797 11.2979 10.4336 11.2979Z"
)

type renderContext struct {
	pageSlug string
	index    RouteIndex
}

// BlockDOMID is the element id given to a block's outermost element.
func BlockDOMID(id string) string {
	return "block-" + strings.ReplaceAll(id, "-", "")
}

func childPageDOMID(pageSlug string) string {
	path := strings.ReplaceAll(strings.TrimPrefix(pageSlug, "/"), "/", "-")
	if path == "" {
		path = "home"
	}
	return "block-" + path
}

func (r *Renderer) blocks(blocks []notion.Block, context renderContext, depth int) []*html.Node {
	if depth > maxRenderDepth {
		return nil
	}
	var nodes []*html.Node
	for index := range blocks {
		nodes = append(nodes, r.block(&blocks[index], context, depth)...)
	}
	return nodes
}

func (r *Renderer) block(block *notion.Block, context renderContext, depth int) []*html.Node {
	children := func() []*html.Node {
		return r.blocks(block.Children, context, depth+1)
	}
	id := BlockDOMID(block.ID)

	switch block.Type {
	case notion.BlockTypeHeading1, notion.BlockTypeHeading2, notion.BlockTypeHeading3:
		tag := map[notion.BlockType]atom.Atom{
			notion.BlockTypeHeading1: atom.H1,
			notion.BlockTypeHeading2: atom.H2,
			notion.BlockTypeHeading3: atom.H3,
		}[block.Type]
		anchor := element(atom.Span, attr("class", "notion-heading__anchor"), attr("id", strings.ReplaceAll(block.ID, "-", "")))
		heading := appendChildren(element(tag, attr("id", id), attr("class", "notion-heading notion-semantic-string")), r.richText(block.RichText())...)
		return append([]*html.Node{anchor, heading}, children()...)

	case notion.BlockTypeParagraph:
		if block.Paragraph == nil {
			return nil
		}
		if marker, ok := parseTesterMarker(notion.PlainText(block.Paragraph.RichText)); ok {
			if tester, ok := r.testerForMarker(marker, context.pageSlug); ok {
				var caption []*html.Node
				if marker.caption != "" {
					caption = []*html.Node{text(marker.caption)}
				}
				return []*html.Node{testerFigure(id, tester, caption)}
			}
		}
		paragraph := appendChildren(element(atom.P, attr("id", id), attr("class", "notion-text notion-text__content notion-semantic-string")), r.richText(block.Paragraph.RichText)...)
		return append([]*html.Node{paragraph}, children()...)

	case notion.BlockTypeQuote:
		quote := appendChildren(element(atom.Blockquote, attr("id", id), attr("class", "notion-quote notion-text notion-semantic-string")), r.richText(block.RichText())...)
		return append([]*html.Node{quote}, children()...)

	case notion.BlockTypeBulletedListItem, notion.BlockTypeNumberedListItem:
		list := element(atom.Ul, attr("class", "notion-list notion-list-disc"))
		if block.Type == notion.BlockTypeNumberedListItem {
			list = element(atom.Ol, attr("class", "notion-list notion-list-numbered"))
		}
		item := element(atom.Li, attr("id", id), attr("class", "notion-text notion-semantic-string"))
		appendChildren(item, r.richText(block.RichText())...)
		appendChildren(item, children()...)
		return []*html.Node{appendChildren(list, item)}

	case notion.BlockTypeToDo:
		if block.ToDo == nil {
			return nil
		}
		checkbox := element(atom.Input, attr("type", "checkbox"), attr("disabled", ""))
		if block.ToDo.Checked {
			checkbox.Attr = append(checkbox.Attr, attr("checked", ""))
		}
		label := appendChildren(element(atom.Label, attr("id", id), attr("class", "notion-to-do__content")),
			checkbox,
			appendChildren(element(atom.Span, attr("class", "notion-text notion-semantic-string")), r.richText(block.ToDo.RichText)...),
		)
		return append([]*html.Node{label}, children()...)

	case notion.BlockTypeToggle:
		summaryText := strings.ToLower(strings.TrimSpace(notion.PlainText(block.RichText())))
		if strings.Contains(summaryText, hiddenToggleMarker) {
			return nil
		}
		toggle := element(atom.Details, attr("id", id), attr("class", "notion-toggle closed"))
		summary := appendChildren(element(atom.Summary, attr("class", "notion-toggle__summary")),
			appendChildren(element(atom.Span, attr("class", "notion-toggle__trigger_icon")), text(">")),
			appendChildren(element(atom.Span, attr("class", "notion-semantic-string")), r.richText(block.RichText())...),
		)
		appendChildren(toggle, summary)
		if nested := children(); len(nested) > 0 {
			appendChildren(toggle, appendChildren(element(atom.Div, attr("class", "notion-toggle__content")), nested...))
		}
		return []*html.Node{toggle}

	case notion.BlockTypeCallout:
		if block.Callout == nil {
			return nil
		}
		icon := ""
		if block.Callout.Icon != nil && block.Callout.Icon.Type == "emoji" {
			icon = block.Callout.Icon.Emoji
		}
		callout := appendChildren(element(atom.Div, attr("id", id), attr("class", "notion-callout")),
			appendChildren(element(atom.P, attr("class", "notion-text notion-semantic-string")),
				appendChildren(element(atom.Span, attr("class", "notion-page__icon")), text(icon)),
				appendChildren(element(atom.Span), r.richText(block.Callout.RichText)...),
			),
		)
		return append([]*html.Node{callout}, children()...)

	case notion.BlockTypeDivider:
		return []*html.Node{element(atom.Hr, attr("id", id), attr("class", "notion-divider"))}

	case notion.BlockTypeCode:
		if block.Code == nil {
			return nil
		}
		code := appendChildren(element(atom.Div, attr("id", id), attr("class", "notion-code")),
			appendChildren(element(atom.Pre, attr("data-language", block.Code.Language)),
				appendChildren(element(atom.Code), text(notion.PlainText(block.Code.RichText))),
			),
		)
		return []*html.Node{code}

	case notion.BlockTypeImage:
		if block.Image == nil {
			return nil
		}
		return []*html.Node{r.image(block, id)}

	case notion.BlockTypeBookmark:
		if block.Bookmark == nil {
			return nil
		}
		bookmark := appendChildren(element(atom.P, attr("id", id), attr("class", "notion-text notion-text__content notion-semantic-string")),
			appendChildren(element(atom.A, attr("href", block.Bookmark.URL), attr("class", "notion-link link"), attr("data-link-uri", block.Bookmark.URL)),
				text(block.Bookmark.URL)),
		)
		return []*html.Node{bookmark}

	case notion.BlockTypeEmbed:
		if block.Embed == nil {
			return nil
		}
		return []*html.Node{r.embed(block, id)}

	case notion.BlockTypeChildPage:
		if block.ChildPage == nil {
			return nil
		}
		if node := r.childPage(block, context); node != nil {
			return []*html.Node{node}
		}
		return nil
	}
	return nil
}

func (r *Renderer) caption(items []notion.RichText) *html.Node {
	if strings.TrimSpace(notion.PlainText(items)) == "" {
		return nil
	}
	return appendChildren(element(atom.Figcaption, attr("class", "notion-caption notion-semantic-string")), r.richText(items)...)
}

// ImageSource returns the URL an image block is displayed from.
func (r *Renderer) ImageSource(block notion.Block) string {
	if block.Image != nil && block.Image.Type == notion.FileTypeExternal && block.Image.External != nil {
		return block.Image.External.URL
	}
	return r.imageProxyPath + url.PathEscape(block.ID)
}

func (r *Renderer) image(block *notion.Block, id string) *html.Node {
	alt := strings.TrimSpace(notion.PlainText(block.Image.Caption))
	if alt == "" {
		alt = "image"
	}
	return appendChildren(element(atom.Figure, attr("id", id), attr("class", "notion-image page-width")),
		element(atom.Img, attr("src", r.ImageSource(*block)), attr("alt", alt), attr("loading", "lazy")),
		r.caption(block.Image.Caption),
	)
}

func (r *Renderer) embed(block *notion.Block, id string) *html.Node {
	embedURL := r.normalizeEmbedURL(block.Embed.URL)
	if tester, ok := r.testerForURL(embedURL); ok {
		var caption []*html.Node
		if strings.TrimSpace(notion.PlainText(block.Embed.Caption)) != "" {
			caption = r.richText(block.Embed.Caption)
		}
		return testerFigure(id, tester, caption)
	}

	if isEmbeddable(block.Embed.URL) {
		return appendChildren(element(atom.Figure, attr("id", id), attr("class", "notion-embed page-width notion-block aex-generic-embed")),
			appendChildren(element(atom.Span, attr("class", "notion-embed__container__wrapper")),
				appendChildren(element(atom.Span, attr("class", "notion-embed__container")),
					element(atom.Iframe,
						attr("src", embedURL),
						attr("title", embedURL),
						attr("sandbox", embedSandbox),
						attr("allowfullscreen", ""),
						attr("loading", "lazy"),
						attr("frameborder", "0"),
					),
				),
			),
			r.caption(block.Embed.Caption),
		)
	}

	return appendChildren(element(atom.Section, attr("id", id), attr("class", "notion-embed page-width notion-block")),
		appendChildren(element(atom.P, attr("class", "notion-text notion-text__content notion-semantic-string")),
			appendChildren(element(atom.A, attr("href", embedURL), attr("class", "notion-link link"), attr("data-link-uri", embedURL)), text(embedURL)),
		),
		r.caption(block.Embed.Caption),
	)
}

// normalizeEmbedURL resolves relative URLs against the site and upgrades http to https.
func (r *Renderer) normalizeEmbedURL(raw string) string {
	base, err := url.Parse(r.baseURL)
	if err != nil {
		return raw
	}
	reference, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	resolved := base.ResolveReference(reference)
	if resolved.Scheme == "http" {
		resolved.Scheme = "https"
	}
	return resolved.String()
}

func isEmbeddable(raw string) bool {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Host == "" {
		return false
	}
	return parsed.Scheme == "http" || parsed.Scheme == "https"
}

func (r *Renderer) childPage(block *notion.Block, context renderContext) *html.Node {
	title := block.ChildPage.Title
	target, ok := context.index.SlugForPage(block.ID)
	if !ok {
		target = slug.FromTitle(title)
	}
	if slug.HasHiddenSuffix(target, r.hiddenSuffix) {
		return nil
	}

	titleSpan := appendChildren(element(atom.Span, attr("class", "notion-page__title notion-semantic-string")), text(title))
	if descendants := context.index.Children(target); context.pageSlug == slug.Root && len(descendants) > 0 {
		group := element(atom.Div, attr("id", childPageDOMID(target)), attr("class", "notion-page-group"))
		appendChildren(group, appendChildren(serverLink(target, "notion-page notion-page-group__parent"), pageIcon(), titleSpan))
		list := element(atom.Div, attr("class", "notion-page-group__children"))
		for _, child := range descendants {
			appendChildren(list, appendChildren(serverLink(child.Slug, "notion-page notion-page-group__child"),
				appendChildren(element(atom.Span, attr("class", "notion-page__title notion-semantic-string")), text(child.Label)),
			))
		}
		return appendChildren(group, list)
	}

	anchor := serverLink(target, "notion-page")
	anchor.Attr = append([]html.Attribute{attr("id", childPageDOMID(target))}, anchor.Attr...)
	return appendChildren(anchor, pageIcon(), titleSpan)
}

func pageIcon() *html.Node {
	return appendChildren(element(atom.Span, attr("class", "notion-page__icon")),
		appendChildren(svgElement("svg",
			attr("class", "notion-icon notion-icon__page"),
			attr("viewBox", "0 0 16 16"),
			attr("width", "20"),
			attr("height", "20"),
		), svgElement("path", attr("d", pageIconPath))),
	)
}
