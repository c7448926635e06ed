// Package htmlmsg renders chat replies as small HTML fragments.
//
// Replies are built from a fixed set of named slots (title, intro, numbered
// items, steps, notes, contact) so the output stays a pure function of the
// input data and can be asserted in tests.
package htmlmsg

import (
	"fmt"
	"html"
	"strings"
)

// Message describes one assistant reply.
type Message struct {
	Title   string
	Intro   string
	Items   []string // rendered as an <ol> when non-empty
	Steps   []string // rendered as an <ol> under the intro
	Notes   []string // rendered as a <ul> labeled "Observações"
	Contact string
	Outro   string
}

// Render produces the HTML fragment for m. All user-derived content is
// escaped.
func Render(m Message) string {
	var b strings.Builder
	if m.Title != "" {
		fmt.Fprintf(&b, "<strong>%s</strong>", html.EscapeString(m.Title))
	}
	if m.Intro != "" {
		if b.Len() > 0 {
			b.WriteString("<br>")
		}
		b.WriteString(html.EscapeString(m.Intro))
	}
	writeList(&b, "ol", m.Items)
	writeList(&b, "ol", m.Steps)
	if len(m.Notes) > 0 {
		b.WriteString("<br><em>Observações:</em>")
		writeList(&b, "ul", m.Notes)
	}
	if m.Contact != "" {
		fmt.Fprintf(&b, "<br>Se precisar de ajuda, fale com: %s", html.EscapeString(m.Contact))
	}
	if m.Outro != "" {
		if b.Len() > 0 {
			b.WriteString("<br>")
		}
		b.WriteString(html.EscapeString(m.Outro))
	}
	return b.String()
}

// Text renders a plain paragraph, escaped.
func Text(s string) string {
	return html.EscapeString(s)
}

// NumberedList renders items as "<ol><li>...</li></ol>" with an escaped
// lead-in line.
func NumberedList(intro string, items []string) string {
	return Render(Message{Intro: intro, Items: items})
}

func writeList(b *strings.Builder, tag string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "<%s>", tag)
	for _, it := range items {
		fmt.Fprintf(b, "<li>%s</li>", html.EscapeString(it))
	}
	fmt.Fprintf(b, "</%s>", tag)
}
