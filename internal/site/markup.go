// Package site holds the page shell shared by every HTML response.
package site

import (
	"fmt"
	"io"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
)

// markupWriter accumulates the first write error so components can emit markup
// without checking every call.
type markupWriter struct {
	w   io.Writer
	err error
}

func (m *markupWriter) raw(s string) {
	if m.err != nil {
		return
	}
	_, m.err = io.WriteString(m.w, s)
}

func (m *markupWriter) rawf(format string, args ...any) {
	m.raw(fmt.Sprintf(format, args...))
}

func (m *markupWriter) text(s string) {
	m.raw(templ.EscapeString(s))
}

// attr writes ` key="value"` with the value escaped.
func (m *markupWriter) attr(key, value string) {
	m.rawf(` %s="%s"`, key, templ.EscapeString(value))
}

func (m *markupWriter) href(value string) {
	m.attr("href", string(templ.URL(value)))
}

func (m *markupWriter) nodes(nodes []*html.Node) {
	for _, node := range nodes {
		if m.err != nil {
			return
		}
		m.err = html.Render(m.w, node)
	}
}
