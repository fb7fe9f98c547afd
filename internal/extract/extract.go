// Package extract turns the site's adversarial, markup-heavy pages into
// the clean intermediate representation the assembler consumes. All
// heuristics are tuned to one site's markup conventions and live in
// predicates.go as named, testable sets.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/weeklybind/weeklybind/internal/edition"
	"github.com/weeklybind/weeklybind/internal/textutil"
)

// Session owns the mutable state of one extraction run: the set of image
// URLs already emitted. The set spans the whole edition so the same
// image is never emitted twice, and it is deliberately not global so
// multiple editions can be processed independently in one process.
type Session struct {
	seenImages map[string]struct{}
}

// NewSession creates an extraction session with an empty dedup set.
func NewSession() *Session {
	return &Session{seenImages: make(map[string]struct{})}
}

// Article extracts a populated article from a page. It never fails: a
// page that defeats every heuristic yields an article with no content
// blocks, which the caller's minimum-paragraph filter then drops.
func (s *Session) Article(htmlText, url string) *edition.Article {
	art := &edition.Article{URL: url}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("article page did not parse")
		return art
	}

	if h1 := doc.Find("h1").First(); h1.Length() > 0 {
		art.Title = textutil.CollapseWhitespace(h1.Text())
	}
	art.Subtitle = findSubtitle(doc)

	if hero := heroURL(doc); hero != "" {
		if _, seen := s.seenImages[hero]; !seen && !containsAny(hero, imageSkipPatterns) {
			art.AddImage(edition.ImageBlock{Src: hero, IsHero: true})
			s.seenImages[hero] = struct{}{}
		}
	}

	body := findBody(doc)
	body.Find("p, figure").Each(func(_ int, sel *goquery.Selection) {
		switch goquery.NodeName(sel) {
		case "p":
			s.paragraph(sel, art)
		case "figure":
			s.figure(sel, art)
		}
	})

	return art
}

// CoverURL returns the first image whose source carries the weekly cover
// marker or the word "cover", or "" when the page shows none.
func (s *Session) CoverURL(htmlText string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return ""
	}
	var cover string
	doc.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, _ := img.Attr("src")
		if src == "" {
			return true
		}
		if strings.Contains(src, "_DE_") || strings.Contains(strings.ToLower(src), "cover") {
			cover = src
			return false
		}
		return true
	})
	return cover
}

// findSubtitle looks for the tagline element: a known <h2> class in the
// current markup generation, then the older generation's <p> class.
func findSubtitle(doc *goquery.Document) string {
	var subtitle string
	doc.Find("h2").EachWithBreak(func(_ int, h2 *goquery.Selection) bool {
		if hasAnyClass(h2, subtitleHeadingClasses) {
			subtitle = textutil.CollapseWhitespace(h2.Text())
			return false
		}
		return true
	})
	if subtitle != "" {
		return subtitle
	}
	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if hasAnyClass(p, subtitleParaClasses) {
			subtitle = textutil.CollapseWhitespace(p.Text())
			return false
		}
		return true
	})
	return subtitle
}

var srcsetRe = regexp.MustCompile(`(https://\S+)\s+(\d+)w`)

// heroURL resolves the lead banner image via a two-step fallback: the
// preload link hint (largest declared width wins, cover assets
// disambiguated), then the social-preview meta tag.
func heroURL(doc *goquery.Document) string {
	if link := doc.Find(`link[rel="preload"][as="image"]`).First(); link.Length() > 0 {
		if srcset, _ := link.Attr("imagesrcset"); srcset != "" {
			best, bestWidth := "", -1
			for _, m := range srcsetRe.FindAllStringSubmatch(srcset, -1) {
				w, err := strconv.Atoi(m[2])
				if err != nil {
					continue
				}
				if w > bestWidth {
					best, bestWidth = m[1], w
				}
			}
			if best != "" && isHeroCandidate(best) {
				return best
			}
		}
	}
	if meta := doc.Find(`meta[property="og:image"]`).First(); meta.Length() > 0 {
		if content, _ := meta.Attr("content"); content != "" && !containsAny(content, coverPatterns) {
			return content
		}
	}
	return ""
}

// findBody locates the article body container, trying each selector in
// priority order and degrading to the whole document. Degradation
// yields filtered-out content rather than failure.
func findBody(doc *goquery.Document) *goquery.Selection {
	for _, sel := range bodySelectors {
		if found := doc.Find(sel).First(); found.Length() > 0 {
			return found
		}
	}
	return doc.Selection
}

func (s *Session) paragraph(sel *goquery.Selection, art *edition.Article) {
	if !isArticleParagraph(sel) {
		return
	}
	plain := textutil.CollapseWhitespace(sel.Text())
	if utf8.RuneCountInString(plain) < minParagraphRunes {
		return
	}
	if containsAny(strings.ToLower(plain), skipPhrases) {
		return
	}
	if len(sel.Nodes) == 0 {
		return
	}
	art.AddParagraph(sanitizeParagraph(sel.Nodes[0]))
}

func (s *Session) figure(sel *goquery.Selection, art *edition.Article) {
	img := sel.Find("img").First()
	if img.Length() == 0 {
		return
	}
	src, _ := img.Attr("src")
	if src == "" || hasUnsafeScheme(src) {
		return
	}
	if containsAny(src, coverPatterns) || containsAny(src, imageSkipPatterns) {
		return
	}
	if _, seen := s.seenImages[src]; seen {
		return
	}

	caption, credit := "", ""
	if figcaption := sel.Find("figcaption").First(); figcaption.Length() > 0 {
		caption, credit = splitCaption(textutil.CollapseWhitespace(figcaption.Text()))
	}

	art.AddImage(edition.ImageBlock{Src: src, Caption: caption, Credit: credit})
	s.seenImages[src] = struct{}{}
}
