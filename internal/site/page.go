package site

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/net/html"

	"github.com/MarcoPoloResearchLab/aexsite/internal/slug"
)

const (
	cc0License      = "https://creativecommons.org/share-your-work/public-domain/cc0/"
	licenseOne      = "https://aex.design/license-one"
	storeURL        = "https://store.aex.design/l/"
	openSeaURL      = "https://opensea.io/collection/"
	aexpectiveMint  = "https://zora.co/collect/eth:0xa2b28076129f8cb404202077f3cbda8a513b62ed"
	topActionsClass = "p5nels-top-actions"
)

// Action is one call-to-action link shown above a page header.
type Action struct {
	Class string
	Href  string
	Label string
}

// TopActions lists the license and store links shown on product pages, keyed by slug.
var TopActions = map[string][]Action{
	"/p5nels": {
		{Class: "cc0", Href: cc0License, Label: "CC0"},
		{Class: "get-button", Href: storeURL + "/p5nels", Label: "Get-Free"},
	},
	"/typecheck": {
		{Class: "mint-link", Href: openSeaURL + "typecheck", Label: "Mint NFT"},
		{Class: "get-button", Href: storeURL + "typecheck", Label: "Get-Free"},
	},
	"/nounty": {
		{Class: "mint-link", Href: openSeaURL + "nounty-font", Label: "Mint NFT"},
		{Class: "get-button", Href: storeURL + "nounty", Label: "Get-Free"},
	},
	"/aexpective": {
		{Class: "mint-link", Href: aexpectiveMint, Label: "Mint NFT"},
		{Class: "get-button", Href: storeURL + "aexpective", Label: "Get-Free"},
	},
	"/designassetpack2": {
		{Class: "license-one", Href: licenseOne, Label: "License-one"},
		{Class: "buy-button", Href: storeURL + "designassetpack2", Label: "Buy-$1"},
	},
	"/aextract": {
		{Class: "license-one", Href: licenseOne, Label: "License-one"},
		{Class: "buy-button", Href: storeURL + "aextract", Label: "Buy-$1"},
	},
	"/aextract36": {
		{Class: "cc0", Href: cc0License, Label: "CC0"},
		{Class: "get-button", Href: storeURL + "aextract36", Label: "Get-Free"},
	},
	"/designassetpack1": {
		{Class: "cc0", Href: cc0License, Label: "CC0"},
		{Class: "get-button", Href: storeURL + "/designassetpack1", Label: "Get-Free"},
	},
}

// PageView is the data a rendered content page needs.
type PageView struct {
	ID          string
	Slug        string
	Title       string
	Description string
	Nodes       []*html.Node
}

// SitePage renders the page header and the article holding the rendered blocks.
func SitePage(page PageView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		m := &markupWriter{w: w}
		pageClass := slug.PageClass(page.Slug)

		m.raw(`<main`)
		m.attr("id", "page-"+pageClass)
		m.attr("class", "site-content page__"+pageClass)
		m.raw(`>`)
		if actions := TopActions[slug.Normalize(page.Slug)]; len(actions) > 0 {
			m.rawf(`<div class="%s">`, topActionsClass)
			for _, action := range actions {
				m.raw(`<a`)
				m.attr("class", action.Class)
				m.href(action.Href)
				m.raw(`>`)
				m.text(action.Label)
				m.raw(`</a>`)
			}
			m.raw(`</div>`)
		}

		m.raw(`<div class="notion-header page"><div class="notion-header__cover no-cover no-icon"></div>`)
		m.raw(`<div class="notion-header__content max-width no-cover no-icon"><div class="notion-header__title-wrapper"><h1 class="notion-header__title">`)
		m.text(page.Title)
		m.raw(`</h1></div>`)
		if page.Description != "" {
			m.raw(`<p class="notion-header__description">`)
			m.text(page.Description)
			m.raw(`</p>`)
		}
		m.raw(`</div></div><article`)
		m.attr("id", "block-"+strings.ReplaceAll(page.ID, "-", ""))
		m.raw(` class="notion-root max-width">`)
		m.nodes(page.Nodes)
		m.raw(`</article></main>`)
		return m.err
	})
}

func NotFound() templ.Component {
	return errorCard("Page not found", "This URL does not exist in the route map or database yet.")
}

// ServerError is shown when a page cannot be produced and no earlier copy exists.
func ServerError() templ.Component {
	return errorCard("Something went wrong", "The page could not be loaded. Please try again shortly.")
}

func errorCard(title, message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		m := &markupWriter{w: w}
		m.raw(`<main class="error-shell"><article class="error-card"><h1>`)
		m.text(title)
		m.raw(`</h1><p>`)
		m.text(message)
		m.raw(`</p></article></main>`)
		return m.err
	})
}
