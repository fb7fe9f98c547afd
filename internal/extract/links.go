package extract

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/weeklybind/weeklybind/internal/section"
	"github.com/weeklybind/weeklybind/internal/textutil"
)

// BaseOrigin is the site origin relative URLs resolve against.
const BaseOrigin = "https://www.economist.com"

// Link is an article stub discovered on the index page.
type Link struct {
	Title   string
	URL     string
	Section string
}

// datedPathRe matches article paths for the current multi-year range.
// Only the current edition is addressed, so the range looks forward, not
// back.
var datedPathRe = regexp.MustCompile(`/202[4-9]/\d{2}/\d{2}/`)

// Path segments that carry links the pipeline never wants as chapters.
var skipPathSegments = []string{
	"/podcasts/", "/films/", "/interactive/",
	"/graphic-detail/", "/weeklyedition", "/newsletters",
}

// ArticleLinks extracts article stubs from the index page: every anchor
// with a dated article path, deduplicated by absolute URL, classified
// into a section by path segment.
func (s *Session) ArticleLinks(htmlText string) []Link {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []Link
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		text := textutil.CollapseWhitespace(a.Text())
		if !validArticleURL(href, text) {
			return
		}
		abs := resolveURL(href)
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, Link{
			Title:   text,
			URL:     abs,
			Section: section.FromURL(abs),
		})
	})
	return links
}

// validArticleURL accepts hrefs with visible text longer than 10
// characters, a dated article path, a safe scheme, and no excluded path
// segment.
func validArticleURL(href, text string) bool {
	if href == "" || utf8.RuneCountInString(text) <= 10 {
		return false
	}
	if !datedPathRe.MatchString(href) {
		return false
	}
	if hasUnsafeScheme(href) {
		return false
	}
	return !containsAny(href, skipPathSegments)
}

// resolveURL makes a relative href absolute against the site origin.
func resolveURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	base, err := url.Parse(BaseOrigin)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
