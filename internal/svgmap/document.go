// Package svgmap loads, annotates, and writes keyed SVG choropleth maps.
package svgmap

import (
	"bytes"
	"io"
	"os"

	"github.com/beevik/etree"
	"github.com/rotisserie/eris"

	"github.com/couchcryptid/covid-choropleth/internal/domain"
)

// Document is an owned SVG document. Annotation never mutates its input; it
// returns a new Document.
type Document struct {
	doc *etree.Document
}

// Load parses an SVG document from r.
func Load(r io.Reader) (*Document, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, eris.Wrap(domain.FatalIO(err), "parse svg")
	}
	if doc.Root() == nil {
		return nil, eris.Wrap(domain.ErrFatalIO, "parse svg: no root element")
	}
	return &Document{doc: doc}, nil
}

// LoadFile reads and parses the SVG document at path.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(domain.FatalIO(err), "open map %s", path)
	}
	defer f.Close()
	return Load(f)
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	return &Document{doc: d.doc.Copy()}
}

// WriteTo serializes the document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := d.doc.WriteTo(w)
	if err != nil {
		return n, eris.Wrap(err, "write svg")
	}
	return n, nil
}

// Bytes serializes the document into memory.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes the document to path, replacing any existing file.
func (d *Document) WriteFile(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "write map %s", path)
	}
	return nil
}

// shapes returns every element with the given tag in document order.
func (d *Document) shapes(tag string) []*etree.Element {
	var out []*etree.Element
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		if e.Tag == tag {
			out = append(out, e)
		}
		for _, c := range e.ChildElements() {
			walk(c)
		}
	}
	walk(d.doc.Root())
	return out
}
