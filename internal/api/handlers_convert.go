package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/booktojson/internal/cleaner"
	"github.com/dgallion1/booktojson/internal/convert"
	"github.com/dgallion1/booktojson/internal/export"
	"github.com/dgallion1/booktojson/internal/parser"
	"go.uber.org/zap"
)

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusUnsupportedMediaType)
		return
	}

	format := export.JSON
	if v := r.FormValue("format"); v != "" {
		if format, err = export.ParseFormat(v); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	matchValue := s.cfg.TitleMatch
	if v := r.FormValue("title_match"); v != "" {
		matchValue = v
	}
	match, err := cleaner.ParseMatching(matchValue)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Read file data.
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	conv := convert.New(convert.Options{
		PDFEngine:  s.cfg.PDFEngine,
		EPUBTitles: s.cfg.EPUBTitles,
		TitleMatch: match,
		NFC:        s.cfg.NFC,
	}, s.log)

	chapters, err := conv.Convert(r.Context(), bytes.NewReader(data), filename)
	if err != nil {
		code := convertStatus(err)
		fields := []zap.Field{zap.String("file", filename), zap.Int("status", code), zap.Error(err)}
		if code == http.StatusInternalServerError {
			s.log.Error("convert failed", fields...)
			jsonError(w, "failed to convert document", code)
			return
		}
		s.log.Warn("convert failed", fields...)
		jsonError(w, err.Error(), code)
		return
	}

	var out bytes.Buffer
	if err := export.Write(&out, chapters, format); err != nil {
		s.log.Error("export failed", zap.String("format", string(format)), zap.Error(err))
		jsonError(w, "failed to render output", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("X-Chapter-Count", fmt.Sprint(len(chapters)))
	w.Write(out.Bytes())
}

// statusClientClosedRequest is nginx's code for a request the client abandoned.
const statusClientClosedRequest = 499

func convertStatus(err error) int {
	switch {
	case errors.Is(err, parser.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, parser.ErrNoTableOfContents):
		return http.StatusUnprocessableEntity
	case errors.Is(err, parser.ErrInvalidPDF), errors.Is(err, parser.ErrInvalidEPUB):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
