package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Markup-generation predicate sets. The site periodically renames its
// hashed CSS classes; markup drift is handled by adding a substring to
// the relevant list rather than touching the extraction walk.
var (
	// Subtitle taglines: current generation uses an <h2>, the older
	// generation a <p>.
	subtitleHeadingClasses = []string{"e6h2z500", "fxcbca"}
	subtitleParaClasses    = []string{"ykv9c9"}

	// Article paragraphs, new and old generation.
	paragraphClasses = []string{"1l5amll", "e1y9q0ei"}

	// Body container candidates in priority order. When none matches,
	// the whole document is walked and the paragraph predicates do the
	// filtering.
	bodySelectors = []string{
		`div[data-component="article-body"]`,
		`div[itemprop="articleBody"]`,
		`section[class*="ei2yr3n0"]`,
		`main[role="main"]`,
	}
)

// Promotional and boilerplate phrases; paragraphs whose lowercase text
// contains any of them are dropped.
var skipPhrases = []string{
	"sign up",
	"subscribe",
	"newsletter",
	"download the app",
	"this article appeared",
	"from the print edition",
	"reuse this content",
	"more from",
	"also in this",
	"listen to this story",
	"enjoy more audio",
}

var (
	// Tracking pixels and other non-content images.
	imageSkipPatterns = []string{"pixel", "beacon", "track", ".gif"}

	// URL substrings marking the weekly cover rather than article art.
	coverPatterns = []string{"_DE_", "_FH", "cover"}

	// URL schemes that must never survive into output.
	unsafeSchemes = []string{"javascript:", "data:", "vbscript:"}
)

// minParagraphRunes is the minimum visible text length for a paragraph
// to be kept.
const minParagraphRunes = 40

// heroSuffixRe matches the three-letter-code + three-digit asset suffix
// that distinguishes a page's decorative hero crop from the weekly cover
// reused as a hero.
var heroSuffixRe = regexp.MustCompile(`_[A-Z]{3}\d{3}\.`)

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// hasUnsafeScheme reports whether the URL uses a script or data scheme.
func hasUnsafeScheme(url string) bool {
	return containsAny(strings.ToLower(url), unsafeSchemes)
}

// hasAnyClass reports whether the element's class attribute contains any
// of the given substrings.
func hasAnyClass(sel *goquery.Selection, subs []string) bool {
	class, ok := sel.Attr("class")
	if !ok || class == "" {
		return false
	}
	return containsAny(class, subs)
}

// isArticleParagraph accepts paragraphs flagged as the article-paragraph
// component or carrying a known paragraph class.
func isArticleParagraph(sel *goquery.Selection) bool {
	if v, ok := sel.Attr("data-component"); ok && v == "paragraph" {
		return true
	}
	return hasAnyClass(sel, paragraphClasses)
}

// isHeroCandidate decides whether a preload hero URL is usable. Cover
// assets are rejected unless they carry the "not a cover" suffix and
// lack the cover marker.
func isHeroCandidate(url string) bool {
	if containsAny(url, coverPatterns) {
		return heroSuffixRe.MatchString(url) && !strings.Contains(url, "_DE_")
	}
	return true
}
