package parser

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/booktojson/internal/cleaner"
	"github.com/dgallion1/booktojson/internal/parser/parsertest"
)

func parseEPUB(t *testing.T, p *EPUBParser, data []byte) ([]string, []string) {
	t.Helper()
	tree, err := p.Parse(context.Background(), bytes.NewReader(data), "book.epub")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var titles, texts []string
	for _, s := range tree.Sections {
		titles = append(titles, s.Title)
		texts = append(texts, cleaner.NormalizeText(s.Text))
	}
	return titles, texts
}

func TestEPUBParser_NumberedDocumentsInSpineOrder(t *testing.T) {
	data := parsertest.EPUB(t, "A Test Book",
		parsertest.Doc{Name: "cover.xhtml", Title: "Cover", Body: "<p>Cover art</p>"},
		parsertest.Doc{Name: "1_intro.xhtml", Title: "Intro", Body: "<h1>1 Intro</h1>\n<p>It begins.</p>"},
		parsertest.Doc{Name: "2_blank.xhtml", Title: "Blank", Body: "<p>12</p>"},
		parsertest.Doc{Name: "3_end.xhtml", Title: "End", Body: "<p>It ends.</p>"},
	)
	p := &EPUBParser{}
	tree, err := p.Parse(context.Background(), bytes.NewReader(data), "book.epub")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "A Test Book" {
		t.Errorf("expected title %q, got %q", "A Test Book", tree.Title)
	}
	if tree.Format != "epub" {
		t.Errorf("expected format epub, got %q", tree.Format)
	}

	titles, texts := parseEPUB(t, p, data)
	wantTitles := []string{"1_intro.xhtml", "3_end.xhtml"}
	wantTexts := []string{"1 Intro It begins.", "It ends."}
	if len(titles) != len(wantTitles) {
		t.Fatalf("expected %d chapters, got %d: %q", len(wantTitles), len(titles), titles)
	}
	for i := range wantTitles {
		if titles[i] != wantTitles[i] {
			t.Errorf("chapter %d: expected title %q, got %q", i, wantTitles[i], titles[i])
		}
		if texts[i] != wantTexts[i] {
			t.Errorf("chapter %d: expected text %q, got %q", i, wantTexts[i], texts[i])
		}
	}
}

func TestEPUBParser_HeadingTitles(t *testing.T) {
	data := parsertest.EPUB(t, "Book",
		parsertest.Doc{Name: "01.xhtml", Title: "Book", Body: "<h2>1. The <em>First</em> Day</h2><p>Text.</p>"},
		parsertest.Doc{Name: "02.xhtml", Title: "Second Title", Body: "<p>No heading here.</p>"},
		parsertest.Doc{Name: "03.xhtml", Body: "<p>Nothing at all.</p>"},
	)
	titles, _ := parseEPUB(t, &EPUBParser{Titles: TitlesHeading}, data)
	want := []string{"1. The First Day", "Second Title", "03.xhtml"}
	if len(titles) != len(want) {
		t.Fatalf("expected %d chapters, got %d", len(want), len(titles))
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("chapter %d: expected %q, got %q", i, want[i], titles[i])
		}
	}
}

func TestEPUBParser_BlockElementsAreSeparated(t *testing.T) {
	data := parsertest.EPUB(t, "Book",
		parsertest.Doc{Name: "1.xhtml", Body: `<div><p>first</p><p>second</p></div><ul><li>a</li><li>b</li></ul>line<br/>break<script>var x = 1;</script><style>p {}</style>`},
	)
	_, texts := parseEPUB(t, &EPUBParser{}, data)
	if len(texts) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(texts))
	}
	if want := "first second a b line break"; texts[0] != want {
		t.Errorf("expected %q, got %q", want, texts[0])
	}
}

func TestEPUBParser_SelfClosingHeadElements(t *testing.T) {
	data := parsertest.EPUB(t, "Book",
		parsertest.Doc{
			Name: "1_ch.xhtml",
			Head: `<title/><link rel="stylesheet" type="text/css" href="style.css"/><script src="app.js"/><style/>`,
			Body: "<p>Call me Ishmael.</p>",
		},
	)
	titles, texts := parseEPUB(t, &EPUBParser{}, data)
	if len(titles) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(titles))
	}
	if titles[0] != "1_ch.xhtml" || texts[0] != "Call me Ishmael." {
		t.Errorf("unexpected chapter %q: %q", titles[0], texts[0])
	}

	titles, _ = parseEPUB(t, &EPUBParser{Titles: TitlesHeading}, data)
	if len(titles) != 1 || titles[0] != "1_ch.xhtml" {
		t.Errorf("expected fallback to item name, got %q", titles)
	}
}

func TestEPUBParser_HyphenAcrossBlocks(t *testing.T) {
	data := parsertest.EPUB(t, "Book",
		parsertest.Doc{Name: "1.xhtml", Body: "<p>a long sen-</p>\n<p>tence</p>"},
	)
	_, texts := parseEPUB(t, &EPUBParser{}, data)
	if len(texts) != 1 || texts[0] != "a long sentence" {
		t.Errorf("expected hyphen merge across paragraphs, got %q", texts)
	}
}

func TestEPUBParser_SkipsNonDocuments(t *testing.T) {
	data := parsertest.EPUB(t, "Book",
		parsertest.Doc{Name: "1.css", MediaType: "text/css", Body: "<p>1 css</p>"},
		parsertest.Doc{Name: "2.xhtml", Body: "<p>Real.</p>"},
	)
	titles, _ := parseEPUB(t, &EPUBParser{}, data)
	if len(titles) != 1 || titles[0] != "2.xhtml" {
		t.Errorf("expected only 2.xhtml, got %q", titles)
	}
}

func TestEPUBParser_EscapedHref(t *testing.T) {
	data := parsertest.EPUB(t, "Book",
		parsertest.Doc{Name: "1%20one.xhtml", Body: "<p>Spaced.</p>"},
	)
	titles, texts := parseEPUB(t, &EPUBParser{}, data)
	if len(titles) != 1 {
		t.Fatalf("expected 1 chapter, got %q", titles)
	}
	if titles[0] != "1 one.xhtml" || texts[0] != "Spaced." {
		t.Errorf("unexpected chapter %q: %q", titles[0], texts[0])
	}
}

func TestEPUBParser_FallbackTitleFromFilename(t *testing.T) {
	data := parsertest.EPUB(t, "  ", parsertest.Doc{Name: "1.xhtml", Body: "<p>x</p>"})
	tree, err := (&EPUBParser{}).Parse(context.Background(), bytes.NewReader(data), "dir/My Book.epub")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "My Book" {
		t.Errorf("expected title %q, got %q", "My Book", tree.Title)
	}
}

func TestEPUBParser_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"not a zip", []byte("definitely not an epub")},
		{"empty", nil},
	}
	for _, tt := range tests {
		_, err := (&EPUBParser{}).Parse(context.Background(), bytes.NewReader(tt.data), "bad.epub")
		if !errors.Is(err, ErrInvalidEPUB) {
			t.Errorf("%s: expected ErrInvalidEPUB, got %v", tt.name, err)
		}
	}
}

func TestEPUBParser_Cancelled(t *testing.T) {
	data := parsertest.EPUB(t, "Book", parsertest.Doc{Name: "1.xhtml", Body: "<p>x</p>"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&EPUBParser{}).Parse(ctx, bytes.NewReader(data), "book.epub")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestItemName(t *testing.T) {
	tests := []struct{ href, want string }{
		{"1_intro.xhtml", "1_intro.xhtml"},
		{"Text/01.xhtml#part", "Text/01.xhtml"},
		{"2%20two.xhtml", "2 two.xhtml"},
		{"./3.xhtml", "3.xhtml"},
	}
	for _, tt := range tests {
		if got := itemName(tt.href); got != tt.want {
			t.Errorf("itemName(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

func TestEPUBParser_MissingContainer(t *testing.T) {
	data := parsertest.EPUB(t, "Book")
	// Corrupt the container path so the archive has no META-INF/container.xml.
	data = bytes.Replace(data, []byte("META-INF/container.xml"), []byte("META-INF/containex.xml"), -1)
	_, err := (&EPUBParser{}).Parse(context.Background(), bytes.NewReader(data), "book.epub")
	if err == nil || !strings.Contains(err.Error(), "container") {
		t.Fatalf("expected container error, got %v", err)
	}
}
