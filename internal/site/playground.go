package site

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"
	"golang.org/x/net/html"

	"github.com/MarcoPoloResearchLab/aexsite/internal/render"
)

const playgroundTesterID = "typeplayground-tester"

// PlaygroundFont is one entry of the type playground.
type PlaygroundFont struct {
	ID           string
	Name         string
	Tester       render.Tester
	LicenseLabel string
	LicenseHref  string
	GlyphCount   int
	ReleaseYear  int
	SeeMoreHref  string
}

type footerLink struct {
	Label string
	Href  string
}

var playgroundFooter = []footerLink{
	{Label: "Newsletter", Href: "http://letter.aex.design/"},
	{Label: "\U0001D54F", Href: "https://x.com/aexdesigns"},
	{Label: "Instagram", Href: "http://instagram.com/aex_designs"},
}

// PlaygroundFonts returns the fonts offered on the playground page in display order.
func PlaygroundFonts() []PlaygroundFont {
	font := func(id, name, testerPath, licenseLabel, licenseHref string, glyphs, year int) PlaygroundFont {
		return PlaygroundFont{
			ID:           id,
			Name:         name,
			Tester:       render.DefaultTesters[testerPath],
			LicenseLabel: licenseLabel,
			LicenseHref:  licenseHref,
			GlyphCount:   glyphs,
			ReleaseYear:  year,
			SeeMoreHref:  "https://aex.design/" + id,
		}
	}
	return []PlaygroundFont{
		font("typecheck", "TypeCheck", "/typecheck-type-tester", "CC0", cc0License, 80, 2023),
		font("nounty", "Nounty", "/nounty-type-tester", "CC0", cc0License, 89, 2023),
		font("aexpective", "AEXPECTIVE", "/aexpective-type-tester", "CC0", cc0License, 42, 2022),
		font("aextract", "Aextract", "/aextract-type-tester", "One", licenseOne, 98, 2022),
		font("aextract36", "AEXTRACT36", "/aextract36-type-tester", "CC0", cc0License, 36, 2021),
	}
}

// TypePlayground renders the font switcher with a tester for the active font. An
// unknown activeID selects the first font.
func TypePlayground(fonts []PlaygroundFont, activeID string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		m := &markupWriter{w: w}
		m.raw(`<main id="page-typeplayground" class="site-content page__typeplayground"><section class="type-playground notion-root max-width">`)
		m.raw(`<h1 class="notion-heading notion-semantic-string type-playground__title">Explore the Type</h1>`)

		if len(fonts) > 0 {
			active := fonts[0]
			for _, font := range fonts {
				if font.ID == activeID {
					active = font
				}
			}

			m.raw(`<div class="type-playground__toggle" aria-label="Choose a font">`)
			for _, font := range fonts {
				class := "type-playground__toggle-button"
				pressed := "false"
				if font.ID == active.ID {
					class += " is-active"
					pressed = "true"
				}
				m.raw(`<a`)
				m.attr("class", class)
				m.attr("aria-pressed", pressed)
				m.href("/typeplayground?font=" + url.QueryEscape(font.ID))
				m.raw(`>`)
				m.text(font.Name)
				m.raw(`</a>`)
			}
			m.raw(`</div><article class="type-playground__font-section">`)
			m.nodes([]*html.Node{render.TesterWidget(playgroundTesterID, active.Tester, "Type your own")})
			m.raw(`<div class="type-playground__font-info"><span class="type-playground__font-info-row">Font: `)
			m.text(active.Name)
			m.raw(`</span><span class="type-playground__font-info-row">License: <a class="type-playground__font-link" target="_blank" rel="noopener noreferrer"`)
			m.href(active.LicenseHref)
			m.raw(`>`)
			m.text(active.LicenseLabel)
			m.raw(`</a></span><span class="type-playground__font-info-row">Released: `)
			m.text(strconv.Itoa(active.ReleaseYear))
			m.raw(`</span><span class="type-playground__font-info-row">Glyph Count: `)
			m.text(strconv.Itoa(active.GlyphCount))
			m.raw(`</span><a class="type-playground__font-link" target="_blank" rel="noopener noreferrer"`)
			m.href(active.SeeMoreHref)
			m.raw(`>See More</a></div></article>`)
		}

		m.raw(`<p class="notion-text notion-text__content notion-semantic-string type-playground__footer-links">`)
		for index, link := range playgroundFooter {
			m.raw(`<span>`)
			if index > 0 {
				m.raw(` | `)
			}
			m.raw(`<a class="notion-link link" target="_blank" rel="noopener noreferrer"`)
			m.href(link.Href)
			m.raw(`>`)
			m.text(link.Label)
			m.raw(`</a></span>`)
		}
		m.raw(`</p></section></main>`)
		return m.err
	})
}
