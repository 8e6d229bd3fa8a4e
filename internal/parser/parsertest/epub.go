// Package parsertest builds in-memory EPUB and PDF documents for tests.
package parsertest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"net/url"
	"strings"
	"testing"
)

// Doc is one content document of a generated EPUB.
type Doc struct {
	Name      string // href relative to the package document, e.g. "1_intro.xhtml"; may be URL-escaped
	Title     string // <title> of the document
	Head      string // raw inner XHTML of <head>; replaces the generated <title> when set
	Body      string // inner XHTML of <body>
	MediaType string // defaults to application/xhtml+xml
}

// EPUB returns an EPUB archive whose spine lists docs in the given order.
// The package document lives in OEBPS/ like most real books.
func EPUB(tb testing.TB, title string, docs ...Doc) []byte {
	tb.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	mw, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		tb.Fatalf("create mimetype: %v", err)
	}
	mw.Write([]byte("application/epub+zip"))

	write(tb, zw, "META-INF/container.xml", `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`)

	var manifest, spine strings.Builder
	for i, d := range docs {
		mt := d.MediaType
		if mt == "" {
			mt = "application/xhtml+xml"
		}
		id := fmt.Sprintf("item%d", i+1)
		fmt.Fprintf(&manifest, "    <item id=%q href=%q media-type=%q/>\n", id, d.Name, mt)
		fmt.Fprintf(&spine, "    <itemref idref=%q/>\n", id)
		head := d.Head
		if head == "" {
			head = "<title>" + html.EscapeString(d.Title) + "</title>"
		}
		entry := d.Name
		if u, err := url.PathUnescape(d.Name); err == nil {
			entry = u
		}
		write(tb, zw, "OEBPS/"+entry, fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head>%s</head>
<body>
%s
</body>
</html>`, head, d.Body))
	}

	write(tb, zw, "OEBPS/content.opf", fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="uid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:identifier id="uid">urn:uuid:test</dc:identifier>
    <dc:title>%s</dc:title>
  </metadata>
  <manifest>
%s  </manifest>
  <spine>
%s  </spine>
</package>`, html.EscapeString(title), manifest.String(), spine.String()))

	if err := zw.Close(); err != nil {
		tb.Fatalf("close epub: %v", err)
	}
	return buf.Bytes()
}

func write(tb testing.TB, zw *zip.Writer, name, content string) {
	tb.Helper()
	w, err := zw.Create(name)
	if err != nil {
		tb.Fatalf("create %s: %v", name, err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		tb.Fatalf("write %s: %v", name, err)
	}
}
