package assemble

import (
	"html"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/weeklybind/weeklybind/internal/edition"
)

var tagRe = regexp.MustCompile(`<[^>]+>`)

// stripTags reduces sanitized paragraph markup to plain text for the
// PDF rendering, which carries no inline formatting.
func stripTags(s string) string {
	return strings.TrimSpace(html.UnescapeString(tagRe.ReplaceAllString(s, " ")))
}

// WritePDF renders a text-only PDF companion of the edition: a title
// page followed by each article's title, subtitle and paragraphs.
// Images are EPUB-only.
func WritePDF(ed *edition.Edition, articles []*edition.Article, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 22)
	pdf.MultiCell(0, 12, tr(ed.Title), "", "C", false)
	pdf.Ln(8)

	for _, art := range articles {
		if art.ParagraphCount() == 0 {
			continue
		}
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 15)
		pdf.MultiCell(0, 8, tr(art.Title), "", "L", false)
		if art.Subtitle != "" {
			pdf.SetFont("Helvetica", "I", 11)
			pdf.MultiCell(0, 6, tr(art.Subtitle), "", "L", false)
		}
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "", 11)
		for _, block := range art.Blocks {
			p, ok := block.(edition.Paragraph)
			if !ok {
				continue
			}
			text := stripTags(p.HTML)
			if text == "" {
				continue
			}
			pdf.MultiCell(0, 5, tr(text), "", "L", false)
			pdf.Ln(3)
		}
	}

	return pdf.OutputFileAndClose(outPath)
}
