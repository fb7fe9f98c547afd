// Package textutil provides the pure string transforms used across the
// pipeline: symbol substitution, whitespace collapsing, date discovery,
// filename sanitization, and edition title derivation.
package textutil

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Symbol rewrite rules. Applied in this fixed order: the later patterns
// are more specific and must not be pre-empted by the earlier ones.
var (
	trademarkSuffixRe = regexp.MustCompile(`([a-zA-Z0-9])TM\b`)
	trademarkParenRe  = regexp.MustCompile(`\(TM\)`)
	registeredRe      = regexp.MustCompile(`\(R\)`)
	copyrightWordRe   = regexp.MustCompile(`(?i)Copyright \(C\)`)
	copyrightYearRe   = regexp.MustCompile(`\(C\) (\d{4})`)
)

// ConvertSymbols rewrites textual trademark/registered/copyright marks
// into their proper glyphs.
func ConvertSymbols(text string) string {
	text = trademarkSuffixRe.ReplaceAllString(text, "${1}™")
	text = trademarkParenRe.ReplaceAllString(text, "™")
	text = registeredRe.ReplaceAllString(text, "®")
	text = copyrightWordRe.ReplaceAllString(text, "Copyright ©")
	text = copyrightYearRe.ReplaceAllString(text, "© ${1}")
	return text
}

// CollapseWhitespace trims the string and collapses interior whitespace
// runs to single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripMarks decomposes to NFKD and drops combining marks, folding
// accented characters to their ASCII base.
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SanitizeFilename reduces text to a safe filename fragment: diacritics
// folded, path separators and traversal sequences removed, only
// alphanumerics, spaces and hyphens kept, capped at maxLen bytes.
// maxLen <= 0 means 50. Empty results become "untitled".
func SanitizeFilename(text string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 50
	}
	if folded, _, err := transform.String(stripMarks, text); err == nil {
		text = folded
	}
	text = strings.NewReplacer("..", "", "/", "", `\`, "").Replace(text)
	var b strings.Builder
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ', r == '-':
			b.WriteRune(r)
		}
	}
	s := b.String()
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "untitled"
	}
	return s
}

var monthNames = map[string]string{
	"01": "January", "02": "February", "03": "March", "04": "April",
	"05": "May", "06": "June", "07": "July", "08": "August",
	"09": "September", "10": "October", "11": "November", "12": "December",
}

var monthNumbers = map[string]string{
	"January": "01", "February": "02", "March": "03", "April": "04",
	"May": "05", "June": "06", "July": "07", "August": "08",
	"September": "09", "October": "10", "November": "11", "December": "12",
}

// ParseEditionDate derives the display title and stable identifier for
// an edition date in YYYY-MM-DD form. An empty or malformed date falls
// back to the current date.
func ParseEditionDate(date string) (title, identifier string) {
	if parts := strings.SplitN(date, "-", 3); len(parts) == 3 && len(parts[0]) == 4 {
		year, month, day := parts[0], parts[1], parts[2]
		name, ok := monthNames[month]
		if !ok {
			name = month
		}
		d := strings.TrimLeft(day, "0")
		if d == "" {
			d = "0"
		}
		title = fmt.Sprintf("The Economist - %s %s, %s", name, d, year)
		identifier = "economist-" + year + month + day
		return title, identifier
	}
	now := time.Now()
	title = "The Economist - " + now.Format("January 2, 2006")
	identifier = "economist-" + now.Format("20060102")
	return title, identifier
}

var coverDateRe = regexp.MustCompile(`/(\d{8})_`)

// DateFromCoverURL extracts an ISO date from the dated cover asset path,
// or returns "" when the URL carries no recognizable date.
func DateFromCoverURL(url string) string {
	m := coverDateRe.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	d := m[1]
	return d[:4] + "-" + d[4:6] + "-" + d[6:8]
}

var textDateRe = regexp.MustCompile(
	`(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2})(?:st|nd|rd|th)?\s+(\d{4})`)

// DateFromText finds the first long-form date ("June 7th 2025") in page
// text and returns it as an ISO date, or "" when none is present.
func DateFromText(text string) string {
	m := textDateRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	month, ok := monthNumbers[m[1]]
	if !ok {
		return ""
	}
	day := m[2]
	if len(day) == 1 {
		day = "0" + day
	}
	return m[3] + "-" + month + "-" + day
}
