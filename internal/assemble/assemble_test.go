package assemble

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/weeklybind/weeklybind/internal/edition"
	"github.com/weeklybind/weeklybind/internal/images"
)

func testArticle(title, section string, nparas int) *edition.Article {
	a := &edition.Article{Title: title, Section: section}
	for i := 0; i < nparas; i++ {
		a.AddParagraph("A paragraph of article text that carries the chapter body.")
	}
	return a
}

func readEntry(t *testing.T, path, name string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read entry %s: %v", name, err)
		}
		return string(data)
	}
	t.Fatalf("entry %s not found in %s", name, path)
	return ""
}

func TestAssembleSectionOrder(t *testing.T) {
	ed := &edition.Edition{Date: "2024-01-05"}
	articles := []*edition.Article{
		testArticle("On business", "Business", 3),
		testArticle("Something else", "Other", 3),
		testArticle("The big idea", "Leaders", 3),
	}

	b := &Builder{Images: &images.Handler{}, OutDir: t.TempDir()}
	res, err := b.Assemble(context.Background(), ed, articles)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if res.Chapters != 3 || res.Sections != 3 {
		t.Fatalf("result = %+v", res)
	}
	if filepath.Base(res.Path) != "economist_2024-01-05.epub" {
		t.Fatalf("path = %q", res.Path)
	}
	if ed.Title != "The Economist - January 5, 2024" {
		t.Fatalf("edition title = %q", ed.Title)
	}

	// Canonical order in the ToC regardless of input order, Other last.
	nav := readEntry(t, res.Path, "OEBPS/nav.xhtml")
	leaders := strings.Index(nav, "<span>Leaders</span>")
	business := strings.Index(nav, "<span>Business</span>")
	other := strings.Index(nav, "<span>Other</span>")
	if leaders < 0 || business < 0 || other < 0 {
		t.Fatalf("sections missing from nav:\n%s", nav)
	}
	if !(leaders < business && business < other) {
		t.Fatalf("section order wrong: leaders=%d business=%d other=%d", leaders, business, other)
	}
}

func TestAssembleUnknownSectionBucketedIntoOther(t *testing.T) {
	ed := &edition.Edition{Date: "2024-01-05"}
	articles := []*edition.Article{
		testArticle("The big idea", "Leaders", 3),
		testArticle("On business", "Business", 3),
		testArticle("Odd one out", "UnknownSection", 3),
	}

	b := &Builder{Images: &images.Handler{}, OutDir: t.TempDir()}
	res, err := b.Assemble(context.Background(), ed, articles)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if res.Sections != 3 {
		t.Fatalf("sections = %d, want 3", res.Sections)
	}

	nav := readEntry(t, res.Path, "OEBPS/nav.xhtml")
	if strings.Contains(nav, "UnknownSection") {
		t.Fatalf("unknown section name rendered:\n%s", nav)
	}
	other := strings.Index(nav, "<span>Other</span>")
	if other < 0 {
		t.Fatalf("Other group missing:\n%s", nav)
	}
	if other < strings.Index(nav, "<span>Business</span>") {
		t.Fatal("Other group not last")
	}
	if !strings.Contains(nav, ">Odd one out</a>") {
		t.Fatalf("chapter missing from toc:\n%s", nav)
	}
}

func TestAssembleDefaultCover(t *testing.T) {
	ed := &edition.Edition{Date: "2024-01-05"} // no CoverURL
	b := &Builder{Images: &images.Handler{}, OutDir: t.TempDir()}
	res, err := b.Assemble(context.Background(), ed, []*edition.Article{testArticle("T", "Leaders", 1)})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	cover := readEntry(t, res.Path, "OEBPS/cover.jpg")
	if len(cover) == 0 {
		t.Fatal("cover entry empty")
	}
}

func TestAssembleImageCap(t *testing.T) {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	art := testArticle("Pictures", "Culture", 1)
	for i := 0; i < 5; i++ {
		art.AddImage(edition.ImageBlock{Src: fmt.Sprintf("%s/img%d.png", srv.URL, i), Caption: "c"})
	}

	ed := &edition.Edition{Date: "2024-01-05"}
	b := &Builder{Images: &images.Handler{}, OutDir: t.TempDir()}
	res, err := b.Assemble(context.Background(), ed, []*edition.Article{art})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if res.Images != 3 {
		t.Fatalf("images = %d, want 3", res.Images)
	}
	ch := readEntry(t, res.Path, "OEBPS/article_001.xhtml")
	if n := strings.Count(ch, `<img src="images/image_`); n != 3 {
		t.Fatalf("chapter embeds %d images, want 3", n)
	}
}

func TestFigureHTML(t *testing.T) {
	out := figureHTML("image_001.jpg", "A caption", "Photo: Agency")
	if !strings.Contains(out, `<img src="images/image_001.jpg"`) {
		t.Fatalf("missing img: %s", out)
	}
	if !strings.Contains(out, "A caption<br/><em>Photo: Agency</em>") {
		t.Fatalf("caption/credit wrong: %s", out)
	}

	bare := figureHTML("image_002.jpg", "", "")
	if strings.Contains(bare, "image-caption") {
		t.Fatalf("empty caption rendered: %s", bare)
	}
}

func TestChapterXHTMLEscapesTitle(t *testing.T) {
	art := &edition.Article{Title: "Risk & reward"}
	doc := string(chapterXHTML(art, "<p>x</p>"))
	if !strings.Contains(doc, "<title>Risk &amp; reward</title>") {
		t.Fatalf("title not escaped:\n%s", doc)
	}
}

func TestStripTags(t *testing.T) {
	got := stripTags(`An <em>inline</em> clause with a <a href="x">link</a>`)
	if strings.Contains(got, "<") || strings.Contains(got, ">") {
		t.Fatalf("markup survived: %q", got)
	}
	if !strings.Contains(got, "inline") || !strings.Contains(got, "link") {
		t.Fatalf("text lost: %q", got)
	}
	if got := stripTags("A &amp; B"); got != "A & B" {
		t.Fatalf("entities not unescaped: %q", got)
	}
}
