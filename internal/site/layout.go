package site

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/MarcoPoloResearchLab/aexsite/internal/navigation"
)

const (
	DefaultSiteName    = "Aex Designs"
	DefaultDescription = "Designing for the internet, on the internet."
	LogoPath           = "/assets/logo.svg"
)

// Head carries the per-response document metadata.
type Head struct {
	SiteName    string
	SiteURL     string
	Path        string
	Title       string
	Description string
	NoIndex     bool
}

func (h Head) documentTitle() string {
	siteName := h.SiteName
	if siteName == "" {
		siteName = DefaultSiteName
	}
	title := strings.TrimSpace(h.Title)
	if title == "" || title == siteName {
		return siteName
	}
	return title + " | " + siteName
}

func (h Head) canonical() string {
	base, err := url.Parse(h.SiteURL)
	if err != nil || base.Host == "" {
		return ""
	}
	path := h.Path
	if path == "" {
		path = "/"
	}
	return base.ResolveReference(&url.URL{Path: path}).String()
}

// Layout wraps body in the html document with the navigation bar.
func Layout(head Head, menu []navigation.MenuGroup, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := &markupWriter{w: w}
		description := head.Description
		if description == "" {
			description = DefaultDescription
		}

		m.raw(`<!DOCTYPE html><html lang="en" dir="ltr" class="theme-dark"><head><meta charset="utf-8">`)
		m.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		m.raw(`<title>`)
		m.text(head.documentTitle())
		m.raw(`</title><meta name="description"`)
		m.attr("content", description)
		m.raw(`>`)
		if head.NoIndex {
			m.raw(`<meta name="robots" content="noindex">`)
		}
		if canonical := head.canonical(); canonical != "" {
			m.raw(`<link rel="canonical"`)
			m.attr("href", canonical)
			m.raw(`><meta property="og:url"`)
			m.attr("content", canonical)
			m.raw(`>`)
		}
		m.raw(`<meta property="og:type" content="website"><meta property="og:title"`)
		m.attr("content", head.documentTitle())
		m.raw(`><meta property="og:description"`)
		m.attr("content", description)
		m.raw(`><link rel="icon"`)
		m.attr("href", LogoPath)
		m.raw(`><link rel="stylesheet" href="/assets/site.css"></head><body><div class="site-root">`)

		siteNav(m, menu)

		m.raw(`<div class="site-content-wrapper">`)
		if m.err != nil {
			return m.err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		m.raw(`</div></div><script src="/assets/site.js" defer></script></body></html>`)
		return m.err
	})
}

func siteNav(m *markupWriter, menu []navigation.MenuGroup) {
	m.raw(`<nav aria-label="Main" data-orientation="horizontal" dir="ltr" class="site-navbar site-navbar--simple"><div class="site-navbar__content">`)
	m.raw(`<a href="/" class="notion-link site-navbar__logo" data-server-link="true" data-link-uri="/"><div class="site-navbar__logo-image">`)
	m.raw(`<img alt="Logo" width="80" height="55" decoding="async" loading="eager"`)
	m.attr("src", LogoPath)
	m.raw(`></div></a><div style="position: relative"><ul data-orientation="horizontal" class="site-navbar__item-list" dir="ltr">`)
	for _, group := range menu {
		m.raw(`<li class="site-navbar__item"><a class="site-navbar__link" data-server-link="true"`)
		m.href(group.Slug)
		m.raw(`>`)
		m.text(group.Label)
		m.raw(`</a>`)
		if len(group.Items) > 0 {
			m.raw(`<ul class="site-navbar__submenu">`)
			for _, item := range group.Items {
				m.raw(`<li><a class="site-navbar__sublink" data-server-link="true"`)
				m.href(item.Slug)
				m.raw(`>`)
				m.text(item.Label)
				m.raw(`</a></li>`)
			}
			m.raw(`</ul>`)
		}
		m.raw(`</li>`)
	}
	m.raw(`</ul></div></div><div class="site-navbar__viewport-wrapper"></div></nav>`)
}
