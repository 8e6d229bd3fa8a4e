// Package convert turns a PDF or EPUB into cleaned chapter records.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dgallion1/booktojson/internal/book"
	"github.com/dgallion1/booktojson/internal/cleaner"
	"github.com/dgallion1/booktojson/internal/parser"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// Options configures a Converter.
type Options struct {
	PDFEngine  string
	EPUBTitles string
	TitleMatch cleaner.Matching
	NFC        bool // compose title and text to NFC before cleaning
}

// Converter runs the parse, normalize and dedup stages for one document at a time.
type Converter struct {
	opts      Options
	log       *zap.Logger
	parserFor func(filename string) (parser.Parser, error)
}

func New(opts Options, log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Converter{opts: opts, log: log}
	c.parserFor = func(filename string) (parser.Parser, error) {
		return parser.ForFile(filename, parser.Options{
			PDFEngine:  opts.PDFEngine,
			EPUBTitles: opts.EPUBTitles,
			Logger:     log,
		})
	}
	return c
}

// Convert parses r as the document named filename and returns its chapters in
// reading order. The result is never nil.
func (c *Converter) Convert(ctx context.Context, r io.Reader, filename string) ([]book.Chapter, error) {
	p, err := c.parserFor(filename)
	if err != nil {
		return nil, err
	}

	b, err := p.Parse(ctx, r, filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	chapters := make([]book.Chapter, 0, len(b.Sections))
	for _, s := range b.Sections {
		title, text := s.Title, s.Text
		if c.opts.NFC {
			title = norm.NFC.String(title)
			text = norm.NFC.String(text)
		}
		text = cleaner.NormalizeText(text)
		text = cleaner.RemoveRepeatedTitle(text, title, c.opts.TitleMatch)
		chapters = append(chapters, book.Chapter{Title: title, Text: text})
	}

	c.log.Info("converted",
		zap.String("file", filename),
		zap.String("format", b.Format),
		zap.Int("chapters", len(chapters)),
	)
	return chapters, nil
}

// ConvertFile converts the document at path. Unsupported extensions are
// rejected before the file is opened.
func (c *Converter) ConvertFile(ctx context.Context, path string) ([]book.Chapter, error) {
	if !parser.IsSupportedExtension(path) {
		return nil, fmt.Errorf("%w: %s", parser.ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return c.Convert(ctx, f, path)
}
