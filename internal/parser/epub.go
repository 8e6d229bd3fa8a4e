package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/dgallion1/booktojson/internal/book"
	"github.com/dgallion1/booktojson/internal/cleaner"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const containerPath = "META-INF/container.xml"

// EPUBParser turns the numbered content documents of an EPUB into chapters.
// Documents are visited in spine (reading) order, not manifest order. Text
// comes from the body only, so the <title> in the head never opens a chapter.
type EPUBParser struct {
	Titles string
	log    *zap.Logger
}

type epubContainer struct {
	RootFiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

type opfPackage struct {
	Title    []string `xml:"metadata>title"`
	Manifest []struct {
		ID        string `xml:"id,attr"`
		Href      string `xml:"href,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"manifest>item"`
	Spine []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"spine>itemref"`
}

type manifestItem struct {
	href      string
	mediaType string
}

func (p *EPUBParser) Parse(ctx context.Context, r io.Reader, filename string) (*book.Book, error) {
	log := p.log
	if log == nil {
		log = zap.NewNop()
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read epub: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEPUB, err)
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	var container epubContainer
	if err := decodeXML(files, containerPath, &container); err != nil {
		return nil, err
	}
	if len(container.RootFiles) == 0 || container.RootFiles[0].FullPath == "" {
		return nil, fmt.Errorf("%w: no rootfile in %s", ErrInvalidEPUB, containerPath)
	}
	opfPath := container.RootFiles[0].FullPath

	var pkg opfPackage
	if err := decodeXML(files, opfPath, &pkg); err != nil {
		return nil, err
	}
	opfDir := path.Dir(opfPath)

	manifest := make(map[string]manifestItem, len(pkg.Manifest))
	for _, item := range pkg.Manifest {
		manifest[item.ID] = manifestItem{href: item.Href, mediaType: item.MediaType}
	}

	tree := &book.Book{Title: baseTitle(filename), Format: "epub"}
	if len(pkg.Title) > 0 && strings.TrimSpace(pkg.Title[0]) != "" {
		tree.Title = strings.TrimSpace(pkg.Title[0])
	}

	for _, ref := range pkg.Spine {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item, ok := manifest[ref.IDRef]
		if !ok || !isContentDocument(item.mediaType) {
			continue
		}

		name := itemName(item.href)
		f, ok := files[path.Join(opfDir, name)]
		if !ok {
			log.Warn("spine item missing from archive", zap.String("href", item.href))
			continue
		}
		doc, err := readXHTML(f)
		if err != nil {
			return nil, fmt.Errorf("%w: parse %s: %w", ErrInvalidEPUB, name, err)
		}

		text := xhtmlText(doc)
		if !startsWithDigit(name) || cleaner.NormalizeText(text) == "" {
			continue
		}

		title := name
		if p.Titles == TitlesHeading {
			if h := documentHeading(doc); h != "" {
				title = h
			}
		}
		tree.Sections = append(tree.Sections, book.Section{Title: title, Text: text})
	}

	log.Debug("epub split",
		zap.String("file", filename),
		zap.Int("spine_items", len(pkg.Spine)),
		zap.Int("chapters", len(tree.Sections)),
	)
	return tree, nil
}

func decodeXML(files map[string]*zip.File, name string, v any) error {
	f, ok := files[name]
	if !ok {
		return fmt.Errorf("%w: %s not found", ErrInvalidEPUB, name)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrInvalidEPUB, name, err)
	}
	defer rc.Close()
	if err := xml.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrInvalidEPUB, name, err)
	}
	return nil
}

func readXHTML(f *zip.File) (*html.Node, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return parseXHTML(rc)
}

// itemName is the manifest href relative to the package document, unescaped
// and without fragment.
func itemName(href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	if u, err := url.PathUnescape(href); err == nil {
		href = u
	}
	return path.Clean(href)
}

func isContentDocument(mediaType string) bool {
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case "application/xhtml+xml", "text/html":
		return true
	}
	return false
}
