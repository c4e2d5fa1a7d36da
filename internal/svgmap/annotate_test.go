package svgmap

import (
	"bytes"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/covid-choropleth/internal/domain"
)

const testSVG = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="30" height="10">
<g id="counties">
<path id="c01001" style="fill:#d0d0d0" d="M0 0h10v10h-10z"><title>Autauga, AL</title></path>
<path id="c01003" style="fill:#d0d0d0" d="M10 0h10v10h-10z"><title>Baldwin, AL</title></path>
<path id="c01005" d="M20 0h10v10h-10z"/>
<path d="M0 0h30"/>
</g>
</svg>`

func loadTestDoc(t *testing.T) *Document {
	t.Helper()
	doc, err := Load(strings.NewReader(testSVG))
	require.NoError(t, err)
	return doc
}

func newTestAnnotator(buf *bytes.Buffer) (*Annotator, *domain.Diagnostics) {
	diag := domain.NewDiagnostics(slog.New(slog.NewTextHandler(buf, nil)), nil)
	return NewAnnotator(DefaultOptions(), diag), diag
}

func style(key string, c domain.RGB, label string) domain.RegionStyle {
	return domain.RegionStyle{Key: key, Color: c, Fill: c.Hex(), Label: label}
}

func render(t *testing.T, doc *Document) string {
	t.Helper()
	b, err := doc.Bytes()
	require.NoError(t, err)
	return string(b)
}

func TestAnnotate_MatchedShape(t *testing.T) {
	var buf bytes.Buffer
	a, diag := newTestAnnotator(&buf)
	doc := loadTestDoc(t)

	styles := map[string]domain.RegionStyle{
		"01001": style("01001", domain.RGB{R: 0xff, G: 0x8c}, "(50 per 100,000 people, 28 confirmed)"),
	}
	out := render(t, a.Annotate(doc, styles))

	assert.Contains(t, out, `<path id="c01001" style="stroke:black;fill:#ff8c00"`)
	assert.Contains(t, out, "<title>Autauga, AL (50 per 100,000 people, 28 confirmed)</title>")
	assert.Zero(t, diag.Count(domain.DiagUnmatchedDataKey))
}

func TestAnnotate_UnmatchedShapeKeepsStyle(t *testing.T) {
	var buf bytes.Buffer
	a, diag := newTestAnnotator(&buf)

	styles := map[string]domain.RegionStyle{
		"01001": style("01001", domain.RGB{R: 1}, "(x)"),
	}
	out := render(t, a.Annotate(loadTestDoc(t), styles))

	assert.Contains(t, out, `<path id="c01003" style="fill:#d0d0d0"`)
	assert.Contains(t, out, "<title>Baldwin, AL</title>")
	assert.Equal(t, 2, diag.Count(domain.DiagUnmatchedMapShape))
	assert.Contains(t, buf.String(), "c01005")
}

func TestAnnotate_UnmatchedDataKey(t *testing.T) {
	var buf bytes.Buffer
	a, diag := newTestAnnotator(&buf)

	styles := map[string]domain.RegionStyle{
		"01001": style("01001", domain.RGB{}, ""),
		"01003": style("01003", domain.RGB{}, ""),
		"01005": style("01005", domain.RGB{}, ""),
		"99999": style("99999", domain.RGB{}, "(typo)"),
	}
	a.Annotate(loadTestDoc(t), styles)

	assert.Equal(t, 1, diag.Count(domain.DiagUnmatchedDataKey))
	assert.Zero(t, diag.Count(domain.DiagUnmatchedMapShape))
	assert.Contains(t, buf.String(), "region=99999")
}

func TestAnnotate_CreatesMissingTitle(t *testing.T) {
	var buf bytes.Buffer
	a, _ := newTestAnnotator(&buf)

	styles := map[string]domain.RegionStyle{
		"01005": style("01005", domain.RGB{R: 0x8b}, "(no cases)"),
	}
	out := render(t, a.Annotate(loadTestDoc(t), styles))

	assert.Contains(t, out, `<path id="c01005" d="M20 0h10v10h-10z" style="stroke:black;fill:#8b0000"><title>(no cases)</title></path>`)
}

func TestAnnotate_DoesNotMutateInput(t *testing.T) {
	var buf bytes.Buffer
	a, _ := newTestAnnotator(&buf)
	doc := loadTestDoc(t)
	before := render(t, doc)

	a.Annotate(doc, map[string]domain.RegionStyle{
		"01001": style("01001", domain.RGB{R: 0xff}, "(x)"),
	})

	assert.Equal(t, before, render(t, doc))
}

func TestAnnotate_Deterministic(t *testing.T) {
	var buf bytes.Buffer
	a, _ := newTestAnnotator(&buf)
	doc := loadTestDoc(t)
	styles := map[string]domain.RegionStyle{
		"01001": style("01001", domain.RGB{R: 0xff}, "(a)"),
		"01003": style("01003", domain.RGB{G: 0xff}, "(b)"),
		"01005": style("01005", domain.RGB{B: 0xff}, "(c)"),
	}

	first := render(t, a.Annotate(doc, styles))
	second := render(t, a.Annotate(doc, styles))

	assert.Equal(t, first, second)
	assert.Contains(t, first, `xmlns="http://www.w3.org/2000/svg"`)
	assert.Contains(t, first, `xmlns:xlink="http://www.w3.org/1999/xlink"`)
}

func TestAnnotator_UnexpectedIDPrefix(t *testing.T) {
	var buf bytes.Buffer
	diag := domain.NewDiagnostics(slog.New(slog.NewTextHandler(&buf, nil)), nil)
	a := NewAnnotator(Options{IDPrefix: "x"}, diag)

	shapes := a.Shapes(loadTestDoc(t))

	assert.Empty(t, shapes)
	assert.Equal(t, 3, diag.Count(domain.DiagUnmatchedMapShape))
}

func TestAnnotator_EmptyIDPrefixUsesDefault(t *testing.T) {
	var buf bytes.Buffer
	diag := domain.NewDiagnostics(slog.New(slog.NewTextHandler(&buf, nil)), nil)
	a := NewAnnotator(Options{IDPrefix: ""}, diag)

	styles := map[string]domain.RegionStyle{
		"01001": style("01001", domain.RGB{R: 0xff}, "(1 confirmed)"),
	}
	out := render(t, a.Annotate(loadTestDoc(t), styles))

	assert.Contains(t, out, `<path id="c01001" style="stroke:black;fill:#ff0000"`)
	assert.Zero(t, diag.Count(domain.DiagUnmatchedDataKey))
}

func TestAnnotator_CrossCheck(t *testing.T) {
	var buf bytes.Buffer
	a, diag := newTestAnnotator(&buf)

	matched := a.CrossCheck(loadTestDoc(t), []string{"01001", "01003", "02000"})

	assert.Equal(t, 2, matched)
	assert.Equal(t, 1, diag.Count(domain.DiagUnmatchedMapShape))
	assert.Equal(t, 1, diag.Count(domain.DiagUnmatchedDataKey))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(strings.NewReader("<svg><g></svg>"))
	require.ErrorIs(t, err, domain.ErrFatalIO)

	_, err = Load(strings.NewReader(""))
	require.ErrorIs(t, err, domain.ErrFatalIO)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.svg"))
	require.ErrorIs(t, err, domain.ErrFatalIO)
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestDocument_WriteFile(t *testing.T) {
	doc := loadTestDoc(t)
	path := filepath.Join(t.TempDir(), "out.svg")

	require.NoError(t, doc.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, render(t, doc), string(data))

	reloaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, NewAnnotator(DefaultOptions(), nil).Shapes(reloaded), 3)
}
