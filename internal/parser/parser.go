package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dgallion1/booktojson/internal/book"
	"go.uber.org/zap"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither PDF nor EPUB.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrNoTableOfContents is returned when a PDF carries no outline.
	ErrNoTableOfContents = errors.New("no table of contents")
	// ErrInvalidPDF is returned when a PDF cannot be opened or its pages cannot be read.
	ErrInvalidPDF = errors.New("invalid pdf")
	// ErrInvalidEPUB is returned when the EPUB container or package document is unusable.
	ErrInvalidEPUB = errors.New("invalid epub")
)

// PDF text engines.
const (
	EngineMuPDF  = "mupdf"
	EngineNative = "native"
)

// EPUB title sources.
const (
	TitlesName    = "name"
	TitlesHeading = "heading"
)

// Parser lists the chapter boundaries of a document in reading order.
type Parser interface {
	Parse(ctx context.Context, r io.Reader, filename string) (*book.Book, error)
}

// Options tunes the format parsers.
type Options struct {
	PDFEngine  string // EngineMuPDF (default) or EngineNative
	EPUBTitles string // TitlesName (default) or TitlesHeading
	Logger     *zap.Logger
}

// SupportedExtensions lists file extensions this tool can handle.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".epub": true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{Engine: opts.PDFEngine, log: log}, nil
	case ".epub":
		return &EPUBParser{Titles: opts.EPUBTitles, log: log}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// startsWithDigit reports whether the first non-space rune of s is a decimal
// digit. Numbered entries are chapters; covers, flaps and front matter are not.
func startsWithDigit(s string) bool {
	s = strings.TrimSpace(s)
	for _, r := range s {
		return unicode.IsDigit(r)
	}
	return false
}

func baseTitle(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
