package export

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/dgallion1/booktojson/internal/book"
	"github.com/yuin/goldmark"
)

// renderMarkdown writes each chapter as a level-one heading followed by its text.
func renderMarkdown(chapters []book.Chapter) string {
	var b strings.Builder
	for i, ch := range chapters {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("# ")
		b.WriteString(escapeInline(strings.TrimSpace(ch.Title)))
		b.WriteString("\n\n")
		if ch.Text != "" {
			b.WriteString(escapeBlockStart(escapeInline(ch.Text)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// writeHTML renders the Markdown form with goldmark inside a minimal page.
func writeHTML(w io.Writer, chapters []book.Chapter) error {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(renderMarkdown(chapters)), &body); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	title := "Chapters"
	if len(chapters) > 0 {
		title = strings.TrimSpace(chapters[0].Title)
	}
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(title), body.String())
	return err
}

var inlineEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
	`>`, `\>`,
	`#`, `\#`,
	`|`, `\|`,
	`~`, `\~`,
	`!`, `\!`,
	`&`, `\&`,
)

func escapeInline(s string) string {
	return inlineEscaper.Replace(s)
}

// escapeBlockStart keeps chapter text from opening a list, quote or heading.
func escapeBlockStart(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '-', '+', '=':
		return `\` + s
	}
	i := 0
	for i < len(s) && i < 9 && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		return s[:i] + `\` + s[i:]
	}
	return s
}
