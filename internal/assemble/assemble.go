// Package assemble turns populated articles plus edition metadata into
// the finished EPUB: chapters in article order, a section-grouped table
// of contents in canonical order, and a linear spine led by the cover.
package assemble

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/weeklybind/weeklybind/internal/edition"
	"github.com/weeklybind/weeklybind/internal/epub"
	"github.com/weeklybind/weeklybind/internal/images"
	"github.com/weeklybind/weeklybind/internal/section"
	"github.com/weeklybind/weeklybind/internal/textutil"
)

// maxImagesPerArticle caps how many images a chapter embeds. Images
// beyond the cap, or whose fetch fails, are omitted without error.
const maxImagesPerArticle = 3

const publisher = "The Economist"

// Builder assembles editions. Images is the shared resolver/transcoder;
// OutDir receives the finished file.
type Builder struct {
	Images *images.Handler
	OutDir string
}

// Result summarizes one assembled document.
type Result struct {
	Path     string
	Chapters int
	Sections int
	Images   int
	Bytes    int64
}

// Assemble builds the EPUB for an edition from articles in input order.
// Articles with no content blocks are skipped; everything else that
// reaches this point is included.
func (b *Builder) Assemble(ctx context.Context, ed *edition.Edition, articles []*edition.Article) (*Result, error) {
	if ed.Date == "" {
		ed.Date = time.Now().Format("2006-01-02")
	}
	title, identifier := textutil.ParseEditionDate(ed.Date)
	ed.Title, ed.Identifier = title, identifier

	book := epub.NewBook(title, identifier)
	book.Author = publisher
	book.Publisher = publisher
	book.Date = ed.Date
	book.Stylesheet = stylesheet

	meta, full := b.coverData(ctx, ed.CoverURL)
	book.SetCover(meta)
	book.SetCoverPage(full)

	sections := make(map[string][]*epub.Chapter)
	imageTotal := 0
	for i, art := range articles {
		if len(art.Blocks) == 0 {
			continue
		}
		body, nimg := b.renderBlocks(ctx, book, art)
		chTitle := art.Title
		if chTitle == "" {
			chTitle = fmt.Sprintf("Article %d", i+1)
		}
		ch := book.AddChapter(chTitle, chapterXHTML(art, body))
		sec := section.Canonical(art.Section)
		sections[sec] = append(sections[sec], ch)
		imageTotal += nimg
	}

	for _, name := range section.Order {
		book.AddSection(name, sections[name])
	}
	book.AddSection(section.Other, sections[section.Other])

	path := filepath.Join(b.OutDir, "economist_"+ed.Date+".epub")
	if err := book.Write(path); err != nil {
		return nil, err
	}

	res := &Result{Path: path, Images: imageTotal}
	for _, chs := range sections {
		if len(chs) > 0 {
			res.Sections++
			res.Chapters += len(chs)
		}
	}
	if st, err := os.Stat(path); err == nil {
		res.Bytes = st.Size()
	}
	return res, nil
}

// coverData returns the metadata and full-resolution cover encodings,
// falling back to the placeholder when the real cover cannot be fetched.
func (b *Builder) coverData(ctx context.Context, coverURL string) (meta, full []byte) {
	if coverURL != "" {
		m, f, err := b.Images.FetchCover(ctx, coverURL)
		if err == nil {
			log.Info().Msg("cover image downloaded")
			return m, f
		}
		log.Warn().Err(err).Str("url", coverURL).Msg("could not fetch cover, using default")
	}
	d := b.Images.DefaultCover()
	return d, d
}

// renderBlocks renders an article's blocks in reading order and returns
// the chapter body markup plus the number of images embedded.
func (b *Builder) renderBlocks(ctx context.Context, book *epub.Book, art *edition.Article) (string, int) {
	var parts []string

	if art.Title != "" {
		parts = append(parts, "<h1>"+html.EscapeString(art.Title)+"</h1>")
	}
	if art.Subtitle != "" {
		parts = append(parts, `<p class="subtitle">`+html.EscapeString(art.Subtitle)+"</p>")
	}

	added := 0
	for _, block := range art.Blocks {
		switch blk := block.(type) {
		case edition.Paragraph:
			if blk.HTML != "" {
				parts = append(parts, "<p>"+blk.HTML+"</p>")
			}
		case edition.Image:
			if added >= maxImagesPerArticle {
				continue
			}
			data := b.Images.FetchAndTranscode(ctx, blk.Src)
			if data == nil {
				log.Debug().Str("src", blk.Src).Msg("image omitted")
				continue
			}
			name := fmt.Sprintf("image_%03d.jpg", b.Images.Added())
			book.AddImage(name, data)
			parts = append(parts, figureHTML(name, blk.Caption, blk.Credit))
			added++
		}
	}

	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "\n"
		}
		out += p
	}
	return out, added
}

// figureHTML renders a captioned figure. Caption precedes credit;
// either may be absent.
func figureHTML(name, caption, credit string) string {
	out := `<div class="image-container">` + "\n" +
		`    <div class="image-wrapper">` + "\n" +
		fmt.Sprintf(`        <img src="images/%s" alt="Article image"/>`, name)
	if caption != "" || credit != "" {
		out += "\n" + `        <div class="image-caption">`
		if caption != "" {
			out += html.EscapeString(caption)
		}
		if credit != "" {
			if caption != "" {
				out += "<br/>"
			}
			out += "<em>" + html.EscapeString(credit) + "</em>"
		}
		out += "</div>"
	}
	out += "\n    </div>\n</div>"
	return out
}

// chapterXHTML wraps rendered body markup in a complete content
// document referencing the shared stylesheet.
func chapterXHTML(art *edition.Article, body string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
    <title>` + html.EscapeString(art.Title) + `</title>
    <link rel="stylesheet" type="text/css" href="style.css"/>
</head>
<body>
` + body + `
</body>
</html>
`)
}

// stylesheet is shared by every chapter.
const stylesheet = `body {
    font-family: Georgia, serif;
    line-height: 1.6;
    margin: 1em auto;
    max-width: 40em;
}
h1 {
    font-size: 1.8em;
    margin-bottom: 0.5em;
}
p {
    margin: 1em 0;
    text-align: justify;
}
p.subtitle {
    font-style: italic;
    color: #666;
}
img {
    width: 100%;
    height: auto;
    display: block;
    margin: 0;
    padding: 0;
}
div.image-container {
    width: 100%;
    margin: 1.5em 0;
    padding: 0;
    text-align: center;
    page-break-inside: avoid;
}
div.image-wrapper {
    width: 90%;
    margin-left: 5%;
    margin-right: 5%;
}
div.image-caption {
    margin-top: 0.5em;
    font-size: 0.9em;
    color: #666;
    text-align: center;
    line-height: 1.4;
}
`
