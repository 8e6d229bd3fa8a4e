package parsertest

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

// OutlineEntry is a top-level bookmark of a generated PDF.
type OutlineEntry struct {
	Title string
	Page  int // 1-based target page
}

// PDF returns a PDF with one Helvetica text line per page and a flat outline.
// An empty outline produces a document without /Outlines.
func PDF(tb testing.TB, pages []string, outline ...OutlineEntry) []byte {
	tb.Helper()

	// Object numbers: 1 catalog, 2 page tree, 3 font, then page/content
	// pairs, then the outline root and its items.
	const catalog, pageTree, font = 1, 2, 3
	pageObj := func(i int) int { return 4 + 2*i }
	contentObj := func(i int) int { return 5 + 2*i }
	outlineRoot := 4 + 2*len(pages)
	itemObj := func(i int) int { return outlineRoot + 1 + i }

	objs := map[int]string{}

	catalogDict := fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pageTree)
	if len(outline) > 0 {
		catalogDict = fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R /Outlines %d 0 R /PageMode /UseOutlines >>", pageTree, outlineRoot)
	}
	objs[catalog] = catalogDict

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", pageObj(i))
	}
	objs[pageTree] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))
	objs[font] = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>"

	for i, text := range pages {
		objs[pageObj(i)] = fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>",
			pageTree, font, contentObj(i))
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", pdfString(text))
		objs[contentObj(i)] = fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream)
	}

	if len(outline) > 0 {
		objs[outlineRoot] = fmt.Sprintf("<< /Type /Outlines /First %d 0 R /Last %d 0 R /Count %d >>",
			itemObj(0), itemObj(len(outline)-1), len(outline))
		for i, e := range outline {
			if e.Page < 1 || e.Page > len(pages) {
				tb.Fatalf("outline entry %q targets page %d of %d", e.Title, e.Page, len(pages))
			}
			var links strings.Builder
			if i > 0 {
				fmt.Fprintf(&links, " /Prev %d 0 R", itemObj(i-1))
			}
			if i < len(outline)-1 {
				fmt.Fprintf(&links, " /Next %d 0 R", itemObj(i+1))
			}
			objs[itemObj(i)] = fmt.Sprintf("<< /Title (%s) /Parent %d 0 R%s /Dest [%d 0 R /Fit] >>",
				pdfString(e.Title), outlineRoot, links.String(), pageObj(e.Page-1))
		}
	}

	count := len(objs)
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, count+1)
	for n := 1; n <= count; n++ {
		body, ok := objs[n]
		if !ok {
			tb.Fatalf("pdf object %d missing", n)
		}
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", count+1)
	for n := 1; n <= count; n++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[n])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", count+1, catalog, xref)
	return buf.Bytes()
}

var pdfEscaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

func pdfString(s string) string {
	return pdfEscaper.Replace(s)
}
