package svgmap

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/beevik/etree"

	"github.com/couchcryptid/covid-choropleth/internal/domain"
)

// Options describes the map's shape conventions.
type Options struct {
	// ShapeTag is the element name of a region shape, e.g. "path".
	ShapeTag string
	// IDPrefix precedes the region key in a shape's id, e.g. "c" in "c01001".
	IDPrefix string
	// Stroke is the CSS stroke color applied to styled shapes.
	Stroke string
}

// DefaultOptions matches the Wikimedia USA_Counties.svg conventions.
func DefaultOptions() Options {
	return Options{ShapeTag: "path", IDPrefix: "c", Stroke: "black"}
}

// Annotator applies region styles to map documents.
type Annotator struct {
	opts Options
	diag *domain.Diagnostics
}

// NewAnnotator creates an Annotator. Empty option fields take defaults.
func NewAnnotator(opts Options, diag *domain.Diagnostics) *Annotator {
	def := DefaultOptions()
	if opts.ShapeTag == "" {
		opts.ShapeTag = def.ShapeTag
	}
	if opts.IDPrefix == "" {
		opts.IDPrefix = def.IDPrefix
	}
	if opts.Stroke == "" {
		opts.Stroke = def.Stroke
	}
	return &Annotator{opts: opts, diag: diag}
}

// Shape is a region shape found in a map document.
type Shape struct {
	ID  string
	Key string
}

// Shapes lists the region shapes in doc. Shapes without an id are not region
// shapes and are skipped; ids lacking the prefix are reported and skipped.
func (a *Annotator) Shapes(doc *Document) []Shape {
	var out []Shape
	for _, el := range doc.shapes(a.opts.ShapeTag) {
		if s, ok := a.shapeOf(el); ok {
			out = append(out, s)
		}
	}
	return out
}

func (a *Annotator) shapeOf(el *etree.Element) (Shape, bool) {
	id := el.SelectAttrValue("id", "")
	if id == "" {
		return Shape{}, false
	}
	key, ok := strings.CutPrefix(id, a.opts.IDPrefix)
	if !ok || key == "" {
		a.diag.Report(domain.DiagUnmatchedMapShape, "", "shape has unexpected id", "id", id)
		return Shape{}, false
	}
	return Shape{ID: id, Key: key}, true
}

// Annotate returns a copy of doc where every shape with a style gets its fill
// and stroke set and the style's label appended to its title. Shapes without
// a style keep their original appearance; both directions of mismatch are
// reported.
func (a *Annotator) Annotate(doc *Document, styles map[string]domain.RegionStyle) *Document {
	out := doc.Clone()
	matched := make(map[string]bool, len(styles))

	for _, el := range out.shapes(a.opts.ShapeTag) {
		shape, ok := a.shapeOf(el)
		if !ok {
			continue
		}
		style, ok := styles[shape.Key]
		if !ok {
			a.diag.Report(domain.DiagUnmatchedMapShape, shape.Key, "no data for map shape", "id", shape.ID)
			continue
		}
		matched[shape.Key] = true
		a.apply(el, style)
	}

	a.reportUnmatched(styles, matched)
	return out
}

// CrossCheck reports mismatches between doc and keys without annotating.
// It returns the number of matched keys.
func (a *Annotator) CrossCheck(doc *Document, keys []string) int {
	want := make(map[string]domain.RegionStyle, len(keys))
	for _, k := range keys {
		want[k] = domain.RegionStyle{Key: k}
	}
	matched := make(map[string]bool, len(keys))
	for _, shape := range a.Shapes(doc) {
		if _, ok := want[shape.Key]; !ok {
			a.diag.Report(domain.DiagUnmatchedMapShape, shape.Key, "no data for map shape", "id", shape.ID)
			continue
		}
		matched[shape.Key] = true
	}
	a.reportUnmatched(want, matched)
	return len(matched)
}

func (a *Annotator) reportUnmatched(styles map[string]domain.RegionStyle, matched map[string]bool) {
	for _, key := range slices.Sorted(maps.Keys(styles)) {
		if !matched[key] {
			a.diag.Report(domain.DiagUnmatchedDataKey, key, "no map shape for region")
		}
	}
}

func (a *Annotator) apply(el *etree.Element, style domain.RegionStyle) {
	el.CreateAttr("style", fmt.Sprintf("stroke:%s;fill:%s", a.opts.Stroke, style.Color.Hex()))

	if style.Label == "" {
		return
	}
	title := el.SelectElement("title")
	if title == nil {
		title = etree.NewElement("title")
		title.Space = el.Space
		el.InsertChildAt(0, title)
		title.SetText(style.Label)
		return
	}
	text := title.Text()
	if text == "" {
		title.SetText(style.Label)
		return
	}
	title.SetText(text + " " + style.Label)
}
