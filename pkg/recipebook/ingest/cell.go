package ingest

import (
	"strings"

	"golang.org/x/net/html"
)

// FlattenCell turns rich-text cell content (as exported by some spreadsheet
// tools) into plain text. Line-breaking elements become newlines so the
// result still splits into separate ingredients and steps. Text without
// markup is returned unchanged.
func FlattenCell(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// an unterminated tag at the end ("a<b") is literal text
			b.Write(z.Raw())
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.WriteString(z.Token().Data)
		case html.StartTagToken, html.SelfClosingTagToken:
			if name, _ := z.TagName(); string(name) == "br" {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			switch name, _ := z.TagName(); string(name) {
			case "p", "div", "li", "tr":
				b.WriteByte('\n')
			}
		}
	}
}

// FlattenRow applies FlattenCell to every cell of a row.
func FlattenRow(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = FlattenCell(cell)
	}
	return out
}
