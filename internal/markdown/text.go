package markdown

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PlainText extracts the visible text of an HTML fragment with whitespace
// collapsed, truncated to at most limit runes at a word boundary. Headings
// are skipped so a description does not repeat the title.
func PlainText(fragment string, limit int) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var words []string
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return truncate(words, limit)
		case html.StartTagToken:
			if skipped(z) {
				skip++
			}
		case html.EndTagToken:
			if skipped(z) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				words = append(words, strings.Fields(string(z.Text()))...)
			}
		}
	}
}

func skipped(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch atom.Lookup(name) {
	case atom.Script, atom.Style, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func truncate(words []string, limit int) string {
	full := strings.Join(words, " ")
	if limit <= 0 || utf8.RuneCountInString(full) <= limit {
		return full
	}

	var b strings.Builder
	for _, w := range words {
		need := utf8.RuneCountInString(w)
		if b.Len() > 0 {
			need++
		}
		if utf8.RuneCountInString(b.String())+need > limit-1 {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
	}
	if b.Len() == 0 {
		// A single word longer than limit.
		r := []rune(full)
		return string(r[:limit-1]) + "…"
	}
	return b.String() + "…"
}
