package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/booktojson/internal/book"
	"github.com/fumiama/go-docx"
)

var sample = []book.Chapter{
	{Title: "1. Alpha", Text: "Ünïcode <b> & more"},
	{Title: "2. Beta", Text: "second"},
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample, JSON); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `[
  {
    "title": "1. Alpha",
    "text": "Ünïcode <b> & more"
  },
  {
    "title": "2. Beta",
    "text": "second"
  }
]
`
	if buf.String() != want {
		t.Errorf("unexpected json:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWrite_JSONEmpty(t *testing.T) {
	for _, chapters := range [][]book.Chapter{nil, {}} {
		var buf bytes.Buffer
		if err := Write(&buf, chapters, JSON); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != "[]\n" {
			t.Errorf("expected empty array, got %q", buf.String())
		}
	}
}

func TestWrite_Markdown(t *testing.T) {
	var buf bytes.Buffer
	chapters := []book.Chapter{
		{Title: "1. Alpha", Text: "plain *star* text"},
		{Title: "2. Beta", Text: "3. not a list"},
		{Title: "3. Empty"},
	}
	if err := Write(&buf, chapters, Markdown); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "# 1. Alpha\n\nplain \\*star\\* text\n\n# 2. Beta\n\n3\\. not a list\n\n# 3. Empty\n\n"
	if buf.String() != want {
		t.Errorf("unexpected markdown:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestWrite_HTML(t *testing.T) {
	var buf bytes.Buffer
	chapters := []book.Chapter{
		{Title: "1. Alpha", Text: "a *b* <script>x</script> & c"},
		{Title: "2. Beta", Text: "- dash"},
	}
	if err := Write(&buf, chapters, HTML); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<title>1. Alpha</title>",
		"<h1>1. Alpha</h1>",
		"<p>a *b* &lt;script&gt;x&lt;/script&gt; &amp; c</p>",
		"<h1>2. Beta</h1>",
		"<p>- dash</p>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected html to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<script>") {
		t.Error("raw html leaked into output")
	}
}

func TestWrite_DOCX(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample, DOCX); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, err := docx.Parse(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("parse generated docx: %v", err)
	}

	var got []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		if text := docxParagraphText(para); text != "" {
			got = append(got, text)
		}
	}
	want := []string{"1. Alpha", "Ünïcode <b> & more", "2. Beta", "second"}
	if len(got) != len(want) {
		t.Fatalf("expected %d paragraphs, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("paragraph %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, sample, Format("pdf"))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := WriteFile(path, sample[:1], JSON); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.HasPrefix(string(b), "[\n  {\n    \"title\": \"1. Alpha\"") {
		t.Errorf("unexpected content %q", b)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the output file, found %d entries", len(entries))
	}
}

func TestWriteFile_FailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	if err := WriteFile(path, sample, Format("bogus")); err == nil {
		t.Fatal("expected error")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected empty dir, found %d entries", len(entries))
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", JSON, false},
		{"JSON", JSON, false},
		{"md", Markdown, false},
		{"markdown", Markdown, false},
		{"html", HTML, false},
		{" docx ", DOCX, false},
		{"yaml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]Format{
		"out.json":      JSON,
		"out":           JSON,
		"book.MD":       Markdown,
		"site/book.htm": HTML,
		"book.docx":     DOCX,
		"book.txt":      JSON,
	}
	for path, want := range tests {
		if got := FormatForPath(path); got != want {
			t.Errorf("FormatForPath(%q) = %q, want %q", path, got, want)
		}
	}
}
