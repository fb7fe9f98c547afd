// Package edition holds the data model for a scraped weekly edition:
// articles, their ordered content blocks, and edition-level metadata.
package edition

// ImageBlock describes a single article image. Caption and Credit are
// plain text; Credit is the attribution line split off the caption.
// At most one block per article has IsHero set, and when present it is
// the first block.
type ImageBlock struct {
	Src     string
	Caption string
	Credit  string
	IsHero  bool
}

// Block is one unit of article content in reading order. It is a closed
// union: the only implementations are Paragraph and Image, and the
// assembler switches exhaustively over them.
type Block interface {
	isBlock()
}

// Paragraph carries sanitized inline HTML ready to be wrapped in <p>.
type Paragraph struct {
	HTML string
}

// Image carries an ImageBlock.
type Image struct {
	ImageBlock
}

func (Paragraph) isBlock() {}
func (Image) isBlock()     {}

// Article is a single article. It starts life as a stub with only
// Title, URL and Section filled from the index page, and is populated
// in place once the article page has been fetched and parsed.
type Article struct {
	Title    string
	Subtitle string
	URL      string
	Section  string
	Blocks   []Block
}

// AddParagraph appends a paragraph block.
func (a *Article) AddParagraph(html string) {
	a.Blocks = append(a.Blocks, Paragraph{HTML: html})
}

// AddImage appends an image block.
func (a *Article) AddImage(img ImageBlock) {
	a.Blocks = append(a.Blocks, Image{ImageBlock: img})
}

// ParagraphCount returns the number of paragraph blocks.
func (a *Article) ParagraphCount() int {
	n := 0
	for _, b := range a.Blocks {
		if _, ok := b.(Paragraph); ok {
			n++
		}
	}
	return n
}

// ImageCount returns the number of image blocks.
func (a *Article) ImageCount() int {
	n := 0
	for _, b := range a.Blocks {
		if _, ok := b.(Image); ok {
			n++
		}
	}
	return n
}

// Edition is one weekly issue. Articles are appended in index order
// during index-page parsing; that order is the spine order.
type Edition struct {
	Date       string // ISO calendar date, empty until discovered
	Title      string // display title, filled at assembly time
	Identifier string // stable machine identifier, filled at assembly time
	CoverURL   string
	Articles   []*Article
}

// BySection groups articles by their section name, preserving article
// order within each group.
func (e *Edition) BySection() map[string][]*Article {
	out := make(map[string][]*Article)
	for _, a := range e.Articles {
		out[a.Section] = append(out[a.Section], a)
	}
	return out
}
