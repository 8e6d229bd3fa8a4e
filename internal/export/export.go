// Package export writes converted chapters in one of several formats.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/booktojson/internal/book"
)

// Format is an output format.
type Format string

const (
	JSON     Format = "json"
	Markdown Format = "markdown"
	HTML     Format = "html"
	DOCX     Format = "docx"
)

// ErrUnknownFormat is returned for formats this package cannot write.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat maps a flag or config value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSON, nil
	case "markdown", "md":
		return Markdown, nil
	case "html":
		return HTML, nil
	case "docx":
		return DOCX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatForPath infers the format from an output file extension. Anything
// unrecognized is JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return Markdown
	case ".html", ".htm":
		return HTML
	case ".docx":
		return DOCX
	}
	return JSON
}

// ContentType returns the MIME type of a format.
func (f Format) ContentType() string {
	switch f {
	case Markdown:
		return "text/markdown; charset=utf-8"
	case HTML:
		return "text/html; charset=utf-8"
	case DOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/json; charset=utf-8"
}

// Write renders chapters to w.
func Write(w io.Writer, chapters []book.Chapter, f Format) error {
	switch f {
	case JSON:
		return writeJSON(w, chapters)
	case Markdown:
		_, err := io.WriteString(w, renderMarkdown(chapters))
		return err
	case HTML:
		return writeHTML(w, chapters)
	case DOCX:
		return writeDOCX(w, chapters)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// WriteFile renders chapters to path. The file is replaced atomically, so a
// failed conversion never leaves a truncated output behind.
func WriteFile(path string, chapters []book.Chapter, f Format) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".booktojson-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := Write(tmp, chapters, f); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod output: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// writeJSON emits a 2-space indented array of {title, text}. Non-ASCII and
// HTML characters are written as is.
func writeJSON(w io.Writer, chapters []book.Chapter) error {
	if chapters == nil {
		chapters = []book.Chapter{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(chapters)
}
