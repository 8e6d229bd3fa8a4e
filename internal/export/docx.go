package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/booktojson/internal/book"
	"github.com/fumiama/go-docx"
)

// writeDOCX emits one bold heading paragraph and one body paragraph per chapter.
func writeDOCX(w io.Writer, chapters []book.Chapter) error {
	doc := docx.New().WithDefaultTheme()
	for _, ch := range chapters {
		doc.AddParagraph().AddText(strings.TrimSpace(ch.Title)).Bold().Size("32")
		if ch.Text != "" {
			doc.AddParagraph().AddText(ch.Text)
		}
	}
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}
