package pipeline

import (
	"context"
	"maps"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/couchcryptid/covid-choropleth/internal/domain"
	"github.com/couchcryptid/covid-choropleth/internal/svgmap"
)

// CheckReport summarizes how well a snapshot lines up with a map.
type CheckReport struct {
	Records     int
	Shapes      int
	Matched     int
	Diagnostics map[domain.DiagnosticKind]int
}

// Check reads the current snapshot and the map and reports key mismatches
// without computing metrics or writing output.
func (p *Pipeline) Check(ctx context.Context, in Inputs) (*CheckReport, error) {
	diag := domain.NewDiagnostics(p.logger, p.metrics.DiagnosticHook())

	current, err := p.readRecords(ctx, "current", in.Current, in.Country, diag)
	if err != nil {
		return nil, err
	}
	doc, err := p.extractor.Map(ctx, in.Map)
	if err != nil {
		return nil, eris.Wrap(err, "load map")
	}

	annotator := svgmap.NewAnnotator(p.settings.Annotate, diag)
	keys := slices.Sorted(maps.Keys(current.records))
	matched := annotator.CrossCheck(doc, keys)

	report := &CheckReport{
		Records:     len(current.records),
		Shapes:      len(svgmap.NewAnnotator(p.settings.Annotate, nil).Shapes(doc)),
		Matched:     matched,
		Diagnostics: diag.Counts(),
	}
	p.logger.Info("check complete",
		"records", report.Records,
		"shapes", report.Shapes,
		"matched", report.Matched,
	)
	return report, nil
}
