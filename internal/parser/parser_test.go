package parser

import (
	"errors"
	"testing"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantPDF  bool
		wantEPUB bool
	}{
		{"book.pdf", true, false},
		{"BOOK.PDF", true, false},
		{"dir/novel.epub", false, true},
		{"novel.EpUb", false, true},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.filename, Options{})
		if err != nil {
			t.Fatalf("ForFile(%q): unexpected error: %v", tt.filename, err)
		}
		if _, ok := p.(*PDFParser); ok != tt.wantPDF {
			t.Errorf("ForFile(%q): PDF parser = %v, want %v", tt.filename, ok, tt.wantPDF)
		}
		if _, ok := p.(*EPUBParser); ok != tt.wantEPUB {
			t.Errorf("ForFile(%q): EPUB parser = %v, want %v", tt.filename, ok, tt.wantEPUB)
		}
	}
}

func TestForFile_Unsupported(t *testing.T) {
	for _, name := range []string{"notes.txt", "book.mobi", "README", "archive.pdf.zip"} {
		_, err := ForFile(name, Options{})
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("ForFile(%q): expected ErrUnsupportedFormat, got %v", name, err)
		}
		if IsSupportedExtension(name) {
			t.Errorf("IsSupportedExtension(%q) = true", name)
		}
	}
}

func TestForFile_PassesOptions(t *testing.T) {
	p, err := ForFile("a.pdf", Options{PDFEngine: EngineNative})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.(*PDFParser).Engine; got != EngineNative {
		t.Errorf("expected engine %q, got %q", EngineNative, got)
	}
	e, err := ForFile("a.epub", Options{EPUBTitles: TitlesHeading})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := e.(*EPUBParser).Titles; got != TitlesHeading {
		t.Errorf("expected titles %q, got %q", TitlesHeading, got)
	}
}

func TestStartsWithDigit(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1. Alpha", true},
		{"  12 Twelve", true},
		{"Cover", false},
		{"", false},
		{"   ", false},
		{"Chapter 1", false},
		{"٣ Arabic-Indic", true},
		{"01_intro.xhtml", true},
		{"Text/01_intro.xhtml", false},
	}
	for _, tt := range tests {
		if got := startsWithDigit(tt.in); got != tt.want {
			t.Errorf("startsWithDigit(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
