package epub

import (
	"fmt"
	"strings"
)

// coverPageXHTML renders the dedicated cover page: a single full-bleed
// image, letterboxed on black when the aspect ratio differs.
const coverPageXHTML = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
    <title>Cover</title>
    <style type="text/css">
        html, body {
            margin: 0;
            padding: 0;
            width: 100%;
            height: 100%;
            background: #000;
            text-align: center;
        }
        img {
            width: 100%;
            height: 100%;
            max-width: 100%;
            max-height: 100%;
            object-fit: contain;
            display: block;
            margin: 0;
            padding: 0;
        }
    </style>
</head>
<body>
    <img src="images/cover_full.jpg" alt="Cover"/>
</body>
</html>
`

// renderNav produces the EPUB 3 nav document: one list entry per ToC
// section with its chapters nested beneath.
func (b *Book) renderNav() []byte {
	var w strings.Builder
	w.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	w.WriteString("<!DOCTYPE html>\n")
	w.WriteString(`<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">` + "\n")
	fmt.Fprintf(&w, "<head><title>%s</title></head>\n", xmlEscape(b.Title))
	w.WriteString("<body>\n")
	w.WriteString(`<nav epub:type="toc" id="toc">` + "\n")
	w.WriteString("<h1>Table of Contents</h1>\n<ol>\n")
	for _, sec := range b.toc {
		fmt.Fprintf(&w, "  <li><span>%s</span>\n  <ol>\n", xmlEscape(sec.Name))
		for _, ch := range sec.Chapters {
			fmt.Fprintf(&w, "    <li><a href=\"%s\">%s</a></li>\n", xmlEscape(ch.Filename), xmlEscape(ch.Title))
		}
		w.WriteString("  </ol>\n  </li>\n")
	}
	w.WriteString("</ol>\n</nav>\n</body>\n</html>\n")
	return []byte(w.String())
}

// renderNCX produces the legacy NCX map for older reading systems. Each
// section points at its first chapter with the chapters nested below.
func (b *Book) renderNCX() []byte {
	var w strings.Builder
	w.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	w.WriteString(`<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">` + "\n")
	w.WriteString("<head>\n")
	fmt.Fprintf(&w, "  <meta name=\"dtb:uid\" content=\"%s\"/>\n", xmlEscape(b.Identifier))
	w.WriteString(`  <meta name="dtb:depth" content="2"/>` + "\n")
	w.WriteString(`  <meta name="dtb:totalPageCount" content="0"/>` + "\n")
	w.WriteString(`  <meta name="dtb:maxPageNumber" content="0"/>` + "\n")
	w.WriteString("</head>\n")
	fmt.Fprintf(&w, "<docTitle><text>%s</text></docTitle>\n", xmlEscape(b.Title))
	w.WriteString("<navMap>\n")
	order := 0
	for _, sec := range b.toc {
		if len(sec.Chapters) == 0 {
			continue
		}
		order++
		fmt.Fprintf(&w, "  <navPoint id=\"np-%d\" playOrder=\"%d\">\n", order, order)
		fmt.Fprintf(&w, "    <navLabel><text>%s</text></navLabel>\n", xmlEscape(sec.Name))
		fmt.Fprintf(&w, "    <content src=\"%s\"/>\n", xmlEscape(sec.Chapters[0].Filename))
		for _, ch := range sec.Chapters {
			order++
			fmt.Fprintf(&w, "    <navPoint id=\"np-%d\" playOrder=\"%d\">\n", order, order)
			fmt.Fprintf(&w, "      <navLabel><text>%s</text></navLabel>\n", xmlEscape(ch.Title))
			fmt.Fprintf(&w, "      <content src=\"%s\"/>\n", xmlEscape(ch.Filename))
			w.WriteString("    </navPoint>\n")
		}
		w.WriteString("  </navPoint>\n")
	}
	w.WriteString("</navMap>\n</ncx>\n")
	return []byte(w.String())
}
