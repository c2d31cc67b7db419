package extraction

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/m-mizutani/goerr/v2"
)

// Element is a read-only view of one node in a page
type Element interface {
	Text() string
	Attr(name string) (string, bool)
	Find(selector string) []Element
	Is(selector string) bool
}

// Document is a read-only view of a rendered calendar page
type Document interface {
	URL() string
	Find(selector string) []Element
}

// HTMLDocument is a Document backed by a parsed HTML snapshot
type HTMLDocument struct {
	url string
	doc *goquery.Document
}

// ParseHTML parses an HTML snapshot taken from url
func ParseHTML(r io.Reader, url string) (*HTMLDocument, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse page snapshot", goerr.V("url", url))
	}
	return &HTMLDocument{url: url, doc: doc}, nil
}

// ParseHTMLString is ParseHTML over an in-memory string
func ParseHTMLString(s, url string) (*HTMLDocument, error) {
	return ParseHTML(strings.NewReader(s), url)
}

// LoadHTMLFile reads a snapshot from disk
func LoadHTMLFile(path, url string) (*HTMLDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open page snapshot", goerr.V("path", path))
	}
	defer f.Close()
	return ParseHTML(f, url)
}

func (d *HTMLDocument) URL() string { return d.url }

func (d *HTMLDocument) Find(selector string) []Element {
	return wrapSelection(d.doc.Find(selector))
}

// HTML serialises the current document, including injected affordances
func (d *HTMLDocument) HTML() (string, error) {
	var buf bytes.Buffer
	if err := goquery.Render(&buf, d.doc.Selection); err != nil {
		return "", goerr.Wrap(err, "failed to render page snapshot")
	}
	return buf.String(), nil
}

type htmlElement struct {
	sel *goquery.Selection
}

func wrapSelection(sel *goquery.Selection) []Element {
	out := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &htmlElement{sel: s})
	})
	return out
}

func (e *htmlElement) Text() string {
	return e.sel.Text()
}

func (e *htmlElement) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

func (e *htmlElement) Find(selector string) []Element {
	return wrapSelection(e.sel.Find(selector))
}

func (e *htmlElement) Is(selector string) bool {
	return e.sel.Is(selector)
}
