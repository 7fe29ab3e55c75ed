// Package markup renders the small subset of inline HTML that lake notes
// carry (bold, italic, underline, line breaks, links) as terminal text.
package markup

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/net/html"
)

// Span is a run of text sharing one set of attributes. A Span with Break set
// ends the current line and carries no text.
type Span struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
	Break     bool
}

type state struct {
	bold, italic, underline int
}

// Parse tokenizes s into spans. Unknown tags are dropped, their text kept.
func Parse(s string) []Span {
	var (
		spans []Span
		st    state
		hrefs []string
	)
	emit := func(text string) {
		if text == "" {
			return
		}
		sp := Span{Text: text, Bold: st.bold > 0, Italic: st.italic > 0, Underline: st.underline > 0}
		if n := len(spans); n > 0 {
			last := &spans[n-1]
			if !last.Break && last.Bold == sp.Bold && last.Italic == sp.Italic && last.Underline == sp.Underline {
				last.Text += text
				return
			}
		}
		spans = append(spans, sp)
	}
	lineBreak := func() {
		// no leading or doubled breaks from block elements
		if len(spans) == 0 || spans[len(spans)-1].Break {
			return
		}
		spans = append(spans, Span{Break: true})
	}

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return trimTrailingBreak(spans)
		case html.TextToken:
			emit(string(z.Text()))
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			switch tag {
			case "b", "strong":
				st.bold++
			case "i", "em":
				st.italic++
			case "u":
				st.underline++
			case "a":
				href := ""
				for hasAttr {
					var k, v []byte
					k, v, hasAttr = z.TagAttr()
					if string(k) == "href" {
						href = string(v)
					}
				}
				hrefs = append(hrefs, href)
				st.underline++
			case "br":
				spans = append(spans, Span{Break: true})
			case "p", "div", "li":
				lineBreak()
			}
			if tt == html.SelfClosingTagToken {
				closeTag(tag, &st, &hrefs, emit)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			closeTag(tag, &st, &hrefs, emit)
			if tag == "p" || tag == "div" || tag == "li" {
				lineBreak()
			}
		}
	}
}

func closeTag(tag string, st *state, hrefs *[]string, emit func(string)) {
	switch tag {
	case "b", "strong":
		st.bold = max(0, st.bold-1)
	case "i", "em":
		st.italic = max(0, st.italic-1)
	case "u":
		st.underline = max(0, st.underline-1)
	case "a":
		st.underline = max(0, st.underline-1)
		if n := len(*hrefs); n > 0 {
			href := (*hrefs)[n-1]
			*hrefs = (*hrefs)[:n-1]
			if href != "" {
				emit(" (" + href + ")")
			}
		}
	}
}

func trimTrailingBreak(spans []Span) []Span {
	for len(spans) > 0 && spans[len(spans)-1].Break {
		spans = spans[:len(spans)-1]
	}
	return spans
}

// Plain returns the text of s with markup removed and breaks as newlines.
func Plain(s string) string {
	var b strings.Builder
	for _, sp := range Parse(s) {
		if sp.Break {
			b.WriteByte('\n')
			continue
		}
		b.WriteString(sp.Text)
	}
	return b.String()
}

// Render styles the parsed spans on top of base and wraps the result to
// width cells (0 disables wrapping).
func Render(s string, base lipgloss.Style, width int) string {
	var b strings.Builder
	for _, sp := range Parse(s) {
		if sp.Break {
			b.WriteByte('\n')
			continue
		}
		st := base.Bold(sp.Bold).Italic(sp.Italic).Underline(sp.Underline)
		// lipgloss styles each line separately, keep embedded newlines intact
		lines := strings.Split(sp.Text, "\n")
		for i, ln := range lines {
			if i > 0 {
				b.WriteByte('\n')
			}
			if ln != "" {
				b.WriteString(st.Render(ln))
			}
		}
	}
	out := b.String()
	if width > 0 {
		out = lipgloss.NewStyle().Width(width).Render(out)
	}
	return out
}
