package epub

import (
	"fmt"
	"strings"
	"time"
)

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func xmlEscape(s string) string { return xmlReplacer.Replace(s) }

// renderOPF produces the package document: Dublin Core metadata, the
// resource manifest, and the linear spine.
func (b *Book) renderOPF() []byte {
	var w strings.Builder
	w.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	w.WriteString(`<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="BookId">` + "\n")

	w.WriteString(`  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">` + "\n")
	fmt.Fprintf(&w, "    <dc:identifier id=\"BookId\">%s</dc:identifier>\n", xmlEscape(b.Identifier))
	fmt.Fprintf(&w, "    <dc:title>%s</dc:title>\n", xmlEscape(b.Title))
	fmt.Fprintf(&w, "    <dc:language>%s</dc:language>\n", xmlEscape(b.Language))
	if b.Author != "" {
		fmt.Fprintf(&w, "    <dc:creator>%s</dc:creator>\n", xmlEscape(b.Author))
	}
	if b.Publisher != "" {
		fmt.Fprintf(&w, "    <dc:publisher>%s</dc:publisher>\n", xmlEscape(b.Publisher))
	}
	if b.Date != "" {
		fmt.Fprintf(&w, "    <dc:date>%s</dc:date>\n", xmlEscape(b.Date))
	}
	fmt.Fprintf(&w, "    <meta property=\"dcterms:modified\">%s</meta>\n", time.Now().UTC().Format("2006-01-02T15:04:05Z"))
	if b.coverMeta != nil {
		w.WriteString(`    <meta name="cover" content="cover-image"/>` + "\n")
	}
	w.WriteString("  </metadata>\n")

	w.WriteString("  <manifest>\n")
	w.WriteString(`    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>` + "\n")
	w.WriteString(`    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>` + "\n")
	if b.Stylesheet != "" {
		w.WriteString(`    <item id="style" href="style.css" media-type="text/css"/>` + "\n")
	}
	if b.coverMeta != nil {
		w.WriteString(`    <item id="cover-image" href="cover.jpg" media-type="image/jpeg" properties="cover-image"/>` + "\n")
	}
	if b.coverFull != nil {
		w.WriteString(`    <item id="cover-page" href="cover_page.xhtml" media-type="application/xhtml+xml"/>` + "\n")
		w.WriteString(`    <item id="cover-full" href="images/cover_full.jpg" media-type="image/jpeg"/>` + "\n")
	}
	for i, ch := range b.chapters {
		fmt.Fprintf(&w, "    <item id=\"ch-%d\" href=\"%s\" media-type=\"application/xhtml+xml\"/>\n", i+1, xmlEscape(ch.Filename))
	}
	for i, img := range b.images {
		fmt.Fprintf(&w, "    <item id=\"img-%d\" href=\"images/%s\" media-type=\"image/jpeg\"/>\n", i+1, xmlEscape(img.name))
	}
	w.WriteString("  </manifest>\n")

	w.WriteString(`  <spine toc="ncx">` + "\n")
	if b.coverFull != nil {
		w.WriteString(`    <itemref idref="cover-page"/>` + "\n")
	}
	w.WriteString(`    <itemref idref="nav"/>` + "\n")
	for i := range b.chapters {
		fmt.Fprintf(&w, "    <itemref idref=\"ch-%d\"/>\n", i+1)
	}
	w.WriteString("  </spine>\n")

	if b.coverFull != nil {
		w.WriteString("  <guide>\n")
		w.WriteString(`    <reference type="cover" title="Cover" href="cover_page.xhtml"/>` + "\n")
		w.WriteString("  </guide>\n")
	}

	w.WriteString("</package>\n")
	return []byte(w.String())
}
