// Package epub writes EPUB 3 containers: a stored-first mimetype entry,
// META-INF/container.xml, an OPF package, an EPUB 3 nav document plus a
// legacy NCX, and the content resources. Only the writing side of the
// format is implemented; the logical structure (manifest, spine, nested
// ToC) mirrors what conforming readers parse.
package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
)

const mimetype = "application/epub+zip"

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`

// Chapter is one content document in the spine.
type Chapter struct {
	Title    string
	Filename string
	XHTML    []byte
}

// imageItem is a manifest image resource under OEBPS/images/.
type imageItem struct {
	name string
	data []byte
}

// TOCSection is one top-level ToC entry grouping chapters.
type TOCSection struct {
	Name     string
	Chapters []*Chapter
}

// Book accumulates the logical document and serializes it on Write.
// Spine order is cover page (when set), navigation, then chapters in
// the order they were added; the ToC groups chapters independently.
type Book struct {
	Title      string
	Identifier string
	Language   string
	Author     string
	Publisher  string
	Date       string
	Stylesheet string

	chapters  []*Chapter
	images    []imageItem
	coverMeta []byte // cover.jpg, referenced from container metadata
	coverFull []byte // images/cover_full.jpg, shown on the cover page
	toc       []TOCSection
}

// NewBook creates a Book with the default language tag.
func NewBook(title, identifier string) *Book {
	return &Book{Title: title, Identifier: identifier, Language: "en"}
}

// AddChapter appends a chapter; filenames are assigned sequentially.
func (b *Book) AddChapter(title string, xhtml []byte) *Chapter {
	ch := &Chapter{
		Title:    title,
		Filename: fmt.Sprintf("article_%03d.xhtml", len(b.chapters)+1),
		XHTML:    xhtml,
	}
	b.chapters = append(b.chapters, ch)
	return ch
}

// AddImage registers an image resource stored as images/<name>.
func (b *Book) AddImage(name string, data []byte) {
	b.images = append(b.images, imageItem{name: name, data: data})
}

// SetCover sets the metadata cover image (cover.jpg).
func (b *Book) SetCover(data []byte) { b.coverMeta = data }

// SetCoverPage sets the full-resolution cover image and enables the
// dedicated cover page as the first spine item.
func (b *Book) SetCoverPage(data []byte) { b.coverFull = data }

// AddSection appends a ToC section. Sections appear in insertion order.
func (b *Book) AddSection(name string, chapters []*Chapter) {
	if len(chapters) == 0 {
		return
	}
	b.toc = append(b.toc, TOCSection{Name: name, Chapters: chapters})
}

// Write serializes the book to path.
func (b *Book) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("epub: create %s: %w", path, err)
	}
	if err := b.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTo serializes the book as a zip archive. The mimetype entry must
// be first and stored uncompressed.
func (b *Book) WriteTo(w io.Writer) error {
	zw := zip.NewWriter(w)

	mt, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return fmt.Errorf("epub: mimetype entry: %w", err)
	}
	if _, err := mt.Write([]byte(mimetype)); err != nil {
		return fmt.Errorf("epub: mimetype entry: %w", err)
	}

	files := []struct {
		name string
		data []byte
	}{
		{"META-INF/container.xml", []byte(containerXML)},
		{"OEBPS/content.opf", b.renderOPF()},
		{"OEBPS/nav.xhtml", b.renderNav()},
		{"OEBPS/toc.ncx", b.renderNCX()},
	}
	if b.Stylesheet != "" {
		files = append(files, struct {
			name string
			data []byte
		}{"OEBPS/style.css", []byte(b.Stylesheet)})
	}
	if b.coverMeta != nil {
		files = append(files, struct {
			name string
			data []byte
		}{"OEBPS/cover.jpg", b.coverMeta})
	}
	if b.coverFull != nil {
		files = append(files,
			struct {
				name string
				data []byte
			}{"OEBPS/images/cover_full.jpg", b.coverFull},
			struct {
				name string
				data []byte
			}{"OEBPS/cover_page.xhtml", []byte(coverPageXHTML)})
	}
	for _, ch := range b.chapters {
		files = append(files, struct {
			name string
			data []byte
		}{"OEBPS/" + ch.Filename, ch.XHTML})
	}
	for _, img := range b.images {
		files = append(files, struct {
			name string
			data []byte
		}{"OEBPS/images/" + img.name, img.data})
	}

	for _, f := range files {
		out, err := zw.Create(f.name)
		if err != nil {
			return fmt.Errorf("epub: create %s: %w", f.name, err)
		}
		if _, err := out.Write(f.data); err != nil {
			return fmt.Errorf("epub: write %s: %w", f.name, err)
		}
	}
	return zw.Close()
}
