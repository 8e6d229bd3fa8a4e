package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/booktojson/internal/book"
	"github.com/gen2brain/go-fitz"
	pdflib "github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// PDFParser splits a PDF into chapters along its outline. The outline always
// comes from MuPDF; page text comes from MuPDF or, with EngineNative, from the
// pure Go reader.
type PDFParser struct {
	Engine string
	log    *zap.Logger
}

// pageSource is the part of a paginated document the chapter splitter needs.
type pageSource interface {
	NumPage() int
	// PageText returns the text of page n, 1-based.
	PageText(n int) (string, error)
	Outline() ([]book.TOCEntry, error)
}

func (p *PDFParser) Parse(ctx context.Context, r io.Reader, filename string) (*book.Book, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPDF, err)
	}
	defer doc.Close()

	var src pageSource = &mupdfSource{doc: doc}
	if p.Engine == EngineNative {
		reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPDF, err)
		}
		src = &nativeSource{outline: src, reader: reader}
	}

	sections, err := splitByOutline(ctx, src, p.logger())
	if err != nil {
		return nil, err
	}
	p.logger().Debug("pdf split",
		zap.String("file", filename),
		zap.String("engine", p.engineName()),
		zap.Int("pages", src.NumPage()),
		zap.Int("chapters", len(sections)),
	)
	return &book.Book{
		Title:    baseTitle(filename),
		Format:   "pdf",
		Sections: sections,
	}, nil
}

func (p *PDFParser) logger() *zap.Logger {
	if p.log == nil {
		return zap.NewNop()
	}
	return p.log
}

func (p *PDFParser) engineName() string {
	if p.Engine == EngineNative {
		return EngineNative
	}
	return EngineMuPDF
}

// splitByOutline turns outline entries into page ranges. A chapter starts on
// its entry's page and runs up to, not including, the page of the next
// resolved entry of any level, or to the end of the document.
func splitByOutline(ctx context.Context, src pageSource, log *zap.Logger) ([]book.Section, error) {
	toc, err := src.Outline()
	if err != nil {
		return nil, fmt.Errorf("%w: load outline: %w", ErrInvalidPDF, err)
	}
	if len(toc) == 0 {
		return nil, ErrNoTableOfContents
	}

	numPages := src.NumPage()
	var sections []book.Section
	for i, entry := range toc {
		if !startsWithDigit(entry.Title) {
			continue
		}
		if entry.Page < 1 {
			log.Warn("outline entry has no page, skipping", zap.String("title", entry.Title))
			continue
		}

		end := numPages + 1
		for _, next := range toc[i+1:] {
			if next.Page >= 1 {
				end = min(next.Page, numPages+1)
				break
			}
		}

		var text strings.Builder
		for pg := entry.Page; pg < end; pg++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			t, err := src.PageText(pg)
			if err != nil {
				return nil, fmt.Errorf("%w: extract page %d: %w", ErrInvalidPDF, pg, err)
			}
			text.WriteString(t)
		}

		sections = append(sections, book.Section{
			Title:     entry.Title,
			Text:      text.String(),
			PageStart: entry.Page,
			PageEnd:   max(entry.Page, end-1),
		})
	}
	return sections, nil
}

// mupdfSource reads outline and text through MuPDF.
type mupdfSource struct {
	doc *fitz.Document
}

func (s *mupdfSource) NumPage() int { return s.doc.NumPage() }

func (s *mupdfSource) PageText(n int) (string, error) {
	return s.doc.Text(n - 1)
}

func (s *mupdfSource) Outline() ([]book.TOCEntry, error) {
	toc, err := s.doc.ToC()
	if err != nil {
		// MuPDF reports a missing outline as a load failure.
		if errors.Is(err, fitz.ErrLoadOutline) {
			return nil, nil
		}
		return nil, err
	}
	entries := make([]book.TOCEntry, 0, len(toc))
	for _, o := range toc {
		// MuPDF pages are 0-based and -1 when the destination is unresolved.
		entries = append(entries, book.TOCEntry{Level: o.Level, Title: o.Title, Page: o.Page + 1})
	}
	return entries, nil
}

// nativeSource reads page text with ledongthuc/pdf and borrows the outline.
type nativeSource struct {
	outline pageSource
	reader  *pdflib.Reader
}

func (s *nativeSource) NumPage() int { return s.reader.NumPage() }

func (s *nativeSource) PageText(n int) (string, error) {
	page := s.reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

func (s *nativeSource) Outline() ([]book.TOCEntry, error) {
	return s.outline.Outline()
}
