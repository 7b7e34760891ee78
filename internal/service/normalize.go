package service

import (
	"regexp"
	"strings"
)

var (
	lineBreakTag  = regexp.MustCompile(`(?i)<br\s*/?>`)
	sectionMarker = regexp.MustCompile(`[ \t]*(\[[^\]\n]+\])[ \t]*`)
	markerPadding = regexp.MustCompile(`\s*(\[[^\]\n]+\])\s*`)
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
	blankRun      = regexp.MustCompile(`\n{4,}`)
)

// NormalizeLyrics turns scraped lyric text into the stored form: real
// newlines, nothing before the first section marker, each marker alone on a
// line between blank lines, and runs of three or more blank lines cut down
// to one. Two blank lines in a row are left alone.
// NormalizeLyrics(NormalizeLyrics(s)) == NormalizeLyrics(s).
func NormalizeLyrics(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = lineBreakTag.ReplaceAllString(text, "\n")

	if loc := sectionMarker.FindStringIndex(text); loc != nil {
		text = text[loc[0]:]
	}

	text = markerPadding.ReplaceAllString(text, "\n\n$1\n\n")
	text = trailingSpace.ReplaceAllString(text, "\n")
	text = blankRun.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
