package sanitizer

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeWhitespace folds runs of whitespace within a line (spaces, tabs,
// NBSP) into a single space and trims every line. Line breaks are kept so
// paragraphs survive; CRLF becomes LF, runs of blank lines collapse to one
// and leading or trailing blank lines are dropped.
func NormalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := make([]string, 0, strings.Count(s, "\n")+1)
	blank := false
	for line := range strings.SplitSeq(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank = len(lines) > 0
			continue
		}
		if blank {
			lines = append(lines, "")
			blank = false
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// NormalizeText converts s to Unicode NFC and folds whitespace. Legal texts
// pasted from scanned PDFs frequently carry decomposed accents (e + U+0301)
// which would otherwise defeat search and comparison.
func NormalizeText(s string) string {
	return NormalizeWhitespace(norm.NFC.String(s))
}

// Truncate keeps at most maxRunes runes of s.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}

	count := 0
	for i := range s {
		if count == maxRunes {
			return s[:i]
		}
		count++
	}
	return s
}
