// Package extractor pulls author, date and body text out of archived forum
// pages. Two page grammars exist: the modern one with a 发信人/发信站 header
// per post, and the legacy one where posts are separated by a decorative
// line and announced with "user (nick) 于 date 提到：".
package extractor

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/bbs-archive-parser/models"
)

// LegacySeparator divides posts on a legacy-format page.
const LegacySeparator = "☆──────────────────────────────────────☆"

// ErrFieldExtraction is returned when a required header pattern is missing
// or one of its groups is empty or unparseable.
var ErrFieldExtraction = errors.New("field extraction failed")

// Fields is what one post contributes before quote reconstruction.
type Fields struct {
	Author    models.ParsedAuthor
	CreatedAt time.Time
	Body      string
}

var (
	modernAuthorRe = regexp.MustCompile(`发信人:\s*(.*?)\s*\((.*?)\)?,\s`)
	modernDateRe   = regexp.MustCompile(`发信站:.*\((.*)\)`)

	legacyMetaRe = regexp.MustCompile(`([a-zA-Z0-9]+)\s+\((.*?)\)\s+于\s*\(?([^()\n]+?)\)?\s*提到：`)

	quotedSeparatorRe = regexp.MustCompile(`(?m)^(?:: ?)+☆─+☆[ \t]*(?:\n|$)`)
	blankLineRe       = regexp.MustCompile(`\n[ \t]*\n`)
)

// Date layouts, tried in order. The locale form only looks at the first
// space-separated token, since a weekday name may follow it.
const (
	localeLayout = "2006年1月2日15:04:05"
	posixLayout  = "Mon Jan _2 15:04:05 2006"
)

// ParseDate parses a post timestamp in either of the archive's two grammars.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if tok, _, _ := strings.Cut(s, " "); tok != "" {
		if t, err := time.Parse(localeLayout, tok); err == nil {
			return t, nil
		}
	}
	t, err := time.Parse(posixLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: unrecognised date %q", ErrFieldExtraction, s)
	}
	return t, nil
}

func newAuthor(username, nickname string) (models.ParsedAuthor, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.ParsedAuthor{}, fmt.Errorf("%w: empty username", ErrFieldExtraction)
	}
	return models.ParsedAuthor{Username: username, Nickname: strings.TrimSpace(nickname)}, nil
}

// Modern extracts the fields of one modern-format post from its <pre> block.
// Images must already have been resolved or removed by Assets.Strip.
func Modern(pre *goquery.Selection) (Fields, error) {
	return ModernText(Text(pre))
}

// ModernText extracts the fields of one modern-format post from its text.
func ModernText(text string) (Fields, error) {
	m := modernAuthorRe.FindStringSubmatch(text)
	if m == nil {
		return Fields{}, fmt.Errorf("%w: author line not found", ErrFieldExtraction)
	}
	author, err := newAuthor(m[1], m[2])
	if err != nil {
		return Fields{}, err
	}

	d := modernDateRe.FindStringSubmatch(text)
	if d == nil {
		return Fields{}, fmt.Errorf("%w: date line not found", ErrFieldExtraction)
	}
	created, err := ParseDate(d[1])
	if err != nil {
		return Fields{}, err
	}

	return Fields{Author: author, CreatedAt: created, Body: modernBody(text)}, nil
}

// modernBody drops the header block up to the first blank line and cuts the
// signature starting at the first "--" line.
func modernBody(text string) string {
	loc := blankLineRe.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	lines := strings.Split(text[loc[1]:], "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) == "--" {
			lines = lines[:i]
			break
		}
	}
	return trimBlankLines(strings.Join(lines, "\n"))
}

// SplitLegacy splits the converted text of one legacy page into post chunks.
// Separators inside quoted text are removed first; the text before the
// first separator is page chrome and is discarded.
func SplitLegacy(page string) []string {
	page = quotedSeparatorRe.ReplaceAllString(page, "")
	parts := strings.Split(page, LegacySeparator)
	if len(parts) < 2 {
		return nil
	}
	return parts[1:]
}

// Legacy extracts the fields of one legacy post chunk.
func Legacy(chunk string) (Fields, error) {
	loc := legacyMetaRe.FindStringSubmatchIndex(chunk)
	if loc == nil {
		return Fields{}, fmt.Errorf("%w: metadata line not found", ErrFieldExtraction)
	}
	group := func(i int) string { return chunk[loc[2*i]:loc[2*i+1]] }

	author, err := newAuthor(group(1), group(2))
	if err != nil {
		return Fields{}, err
	}
	created, err := ParseDate(group(3))
	if err != nil {
		return Fields{}, err
	}
	return Fields{Author: author, CreatedAt: created, Body: trimBlankLines(chunk[loc[1]:])}, nil
}

// trimBlankLines removes whitespace-only lines at both ends while keeping the
// indentation of the first and last content lines.
func trimBlankLines(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}
