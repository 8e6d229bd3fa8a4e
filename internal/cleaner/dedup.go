package cleaner

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Matching selects how a title phrase is located in chapter text.
type Matching int

const (
	// MatchSubstring matches the phrase anywhere, even inside longer words.
	MatchSubstring Matching = iota
	// MatchWord only matches the phrase when it is not glued to letters or digits.
	MatchWord
)

func (m Matching) String() string {
	switch m {
	case MatchWord:
		return "word"
	default:
		return "substring"
	}
}

// ParseMatching maps a configuration value to a Matching mode.
func ParseMatching(s string) (Matching, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "substring":
		return MatchSubstring, nil
	case "word":
		return MatchWord, nil
	}
	return MatchSubstring, fmt.Errorf("unknown title match mode %q (want substring|word)", s)
}

// space mirrors Unicode whitespace, including the separators that \s misses in RE2.
const space = `[\t\n\v\f\r \x{1c}-\x{1f}\x{85}\p{Z}]`

var spaceRun = regexp.MustCompile(space + `+`)

// RemoveRepeatedTitle drops running headers: every repetition of the chapter
// title after its first occurrence is collapsed into a single space.
//
// The phrase searched for is the title with its leading chapter number
// (spaces and ASCII digits) removed. Text is returned unchanged when the
// phrase is empty or never occurs.
func RemoveRepeatedTitle(text, title string, m Matching) string {
	phrase := strings.TrimSpace(strings.TrimLeft(title, " 0123456789"))
	if phrase == "" {
		return text
	}

	var first int
	if m == MatchWord {
		first = indexWord(text, phrase, 0)
	} else {
		first = strings.Index(text, phrase)
	}
	if first == -1 {
		return text
	}

	cut := first + len(phrase)
	before, after := text[:cut], text[cut:]

	if m == MatchWord {
		after = replaceEach(after, phrase, indexWord)
	} else {
		after = replaceEach(after, phrase, indexFrom)
	}
	after = strings.TrimSpace(spaceRun.ReplaceAllString(after, " "))

	if after == "" {
		return before
	}
	return before + " " + after
}

// indexWord returns the first index at or after from where phrase occurs with
// word boundaries on both sides, or -1.
func indexWord(s, phrase string, from int) int {
	for from <= len(s) {
		i := strings.Index(s[from:], phrase)
		if i == -1 {
			return -1
		}
		i += from
		if boundedAt(s, phrase, i) {
			return i
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		from = i + size
	}
	return -1
}

func indexFrom(s, phrase string, from int) int {
	i := strings.Index(s[from:], phrase)
	if i == -1 {
		return -1
	}
	return i + from
}

// replaceEach turns every occurrence found by index, plus one adjacent
// whitespace rune on either side, into a single " ". Scanning is leftmost and
// non-overlapping, the same as the regexp \s?phrase\s? would. Bytes that are
// not valid UTF-8 are matched literally.
func replaceEach(s, phrase string, index func(s, phrase string, from int) int) string {
	var b strings.Builder
	last := 0
	for {
		i := index(s, phrase, last)
		if i == -1 {
			break
		}
		start, end := i, i+len(phrase)
		if r, size := utf8.DecodeLastRuneInString(s[last:start]); size > 0 && isSpace(r) {
			start -= size
		}
		if r, size := utf8.DecodeRuneInString(s[end:]); size > 0 && isSpace(r) {
			end += size
		}
		b.WriteString(s[last:start])
		b.WriteByte(' ')
		last = end
	}
	b.WriteString(s[last:])
	return b.String()
}

func boundedAt(s, phrase string, i int) bool {
	head, _ := utf8.DecodeRuneInString(phrase)
	tail, _ := utf8.DecodeLastRuneInString(phrase)
	if isWordRune(head) {
		if r, size := utf8.DecodeLastRuneInString(s[:i]); size > 0 && isWordRune(r) {
			return false
		}
	}
	if isWordRune(tail) {
		if r, size := utf8.DecodeRuneInString(s[i+len(phrase):]); size > 0 && isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= '\x1c' && r <= '\x1f')
}
