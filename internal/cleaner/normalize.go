// Package cleaner turns raw extracted page text into clean chapter text.
package cleaner

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeText collapses raw multi-line text into a single line.
//
// Lines are trimmed, empty lines and lines made only of digits (page numbers)
// are dropped, and a line ending in "-" is joined without a space to the next
// surviving line. The digit filter runs before the hyphen join, so a page
// number between the two halves of a broken word does not break the join.
func NormalizeText(raw string) string {
	var (
		cleaned []string
		buffer  strings.Builder
	)
	for _, line := range splitLines(raw) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isDigits(line) {
			continue
		}
		if strings.HasSuffix(line, "-") {
			buffer.WriteString(line[:len(line)-1])
			continue
		}
		if buffer.Len() > 0 {
			line = buffer.String() + line
			buffer.Reset()
		}
		cleaned = append(cleaned, line)
	}
	if buffer.Len() > 0 {
		cleaned = append(cleaned, buffer.String())
	}
	return strings.Join(cleaned, " ")
}

// splitLines splits on every universal line boundary: \n, \r\n, \r, \v, \f,
// the file/group/record separators and U+0085, U+2028, U+2029.
func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isLineBreak(r) {
			i += size
			continue
		}
		lines = append(lines, s[start:i])
		i += size
		if r == '\r' && i < len(s) && s[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
