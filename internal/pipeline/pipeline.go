package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"

	"github.com/couchcryptid/covid-choropleth/internal/domain"
	"github.com/couchcryptid/covid-choropleth/internal/observability"
	"github.com/couchcryptid/covid-choropleth/internal/svgmap"
)

// Extractor resolves input references to parsed data.
type Extractor interface {
	Snapshot(ctx context.Context, ref string) (domain.Snapshot, error)
	Population(ctx context.Context, ref string) (domain.PopulationTable, error)
	Map(ctx context.Context, ref string) (*svgmap.Document, error)
}

// Loader receives the result of a successful run.
type Loader interface {
	Load(ctx context.Context, res *Result) error
}

// Inputs names the data a run reads and how it is measured.
type Inputs struct {
	Mode    domain.Mode
	Counter domain.Counter
	Country string

	Current    string
	Prior      string
	Population string
	Map        string

	// ElapsedDays overrides the interval derived from snapshot dates when > 0.
	ElapsedDays int
}

// Settings holds the presentation choices shared by every run.
type Settings struct {
	Gradient domain.Gradient
	Special  domain.SpecialColors
	Annotate svgmap.Options
}

// Result is the output of one run.
type Result struct {
	Mode        domain.Mode
	Counter     domain.Counter
	Styles      map[string]domain.RegionStyle
	Document    *svgmap.Document
	ScaleMax    float64
	Diagnostics map[domain.DiagnosticKind]int
	GeneratedAt time.Time
}

// StyleBatch returns the styles in region key order.
func (r *Result) StyleBatch() domain.StyleBatch {
	return domain.NewStyleBatch(r.Mode, r.Counter, r.GeneratedAt, r.Styles)
}

// Pipeline orchestrates the read-compute-annotate-write run.
type Pipeline struct {
	extractor Extractor
	loaders   []Loader
	settings  Settings
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
}

// New creates a Pipeline. A nil clock uses the real clock and nil metrics
// record into a private registry.
func New(e Extractor, settings Settings, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, loaders ...Loader) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	return &Pipeline{
		extractor: e,
		loaders:   loaders,
		settings:  settings,
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
	}
}

// Run executes one full colorization and hands the result to every loader.
func (p *Pipeline) Run(ctx context.Context, in Inputs) (*Result, error) {
	start := p.clock.Now()
	p.logger.Info("run started",
		"mode", in.Mode.String(),
		"counter", in.Counter.String(),
		"current", in.Current,
	)

	diag := domain.NewDiagnostics(p.logger, p.metrics.DiagnosticHook())

	derived, err := p.compute(ctx, in, diag)
	if err != nil {
		return nil, err
	}

	styles, err := domain.Colorize(derived, p.settings.Gradient, p.settings.Special)
	if err != nil {
		return nil, err
	}
	for _, s := range styles {
		p.metrics.RegionsStyled.WithLabelValues(s.Kind).Inc()
	}

	doc, err := p.extractor.Map(ctx, in.Map)
	if err != nil {
		return nil, eris.Wrap(err, "load map")
	}
	annotated := svgmap.NewAnnotator(p.settings.Annotate, diag).Annotate(doc, styles)

	res := &Result{
		Mode:        in.Mode,
		Counter:     in.Counter,
		Styles:      styles,
		Document:    annotated,
		ScaleMax:    domain.ScaleMax(derived),
		Diagnostics: diag.Counts(),
		GeneratedAt: p.clock.Now(),
	}

	for _, l := range p.loaders {
		if err := l.Load(ctx, res); err != nil {
			return nil, eris.Wrap(err, "load result")
		}
	}

	p.metrics.ObserveSuccess(p.clock.Since(start), res.GeneratedAt)
	p.logger.Info("run complete",
		"regions", len(styles),
		"scale_max", res.ScaleMax,
		"duration", p.clock.Since(start),
	)
	return res, nil
}

// compute reads the snapshots the mode needs and derives one metric per region.
func (p *Pipeline) compute(ctx context.Context, in Inputs, diag *domain.Diagnostics) (map[string]domain.DerivedMetric, error) {
	current, err := p.readRecords(ctx, "current", in.Current, in.Country, diag)
	if err != nil {
		return nil, err
	}

	switch in.Mode {
	case domain.ModePrevalence:
		population, err := p.extractor.Population(ctx, in.Population)
		if err != nil {
			return nil, eris.Wrap(err, "load population")
		}
		return domain.ComputePrevalence(current.records, population, in.Counter, diag), nil

	case domain.ModeGrowth:
		prior, err := p.readRecords(ctx, "prior", in.Prior, in.Country, diag)
		if err != nil {
			return nil, err
		}
		days, err := domain.ElapsedDays(prior.date, current.date, in.ElapsedDays)
		if err != nil {
			return nil, eris.Wrap(err, "elapsed days")
		}
		p.logger.Info("growth interval", "days", days)
		return domain.ComputeGrowth(current.records, prior.records, in.Counter, days, diag)

	default:
		return nil, eris.Errorf("unknown mode %d", in.Mode)
	}
}

type mergedSnapshot struct {
	date    time.Time
	records map[string]domain.RegionRecord
}

func (p *Pipeline) readRecords(ctx context.Context, label, ref, country string, diag *domain.Diagnostics) (mergedSnapshot, error) {
	snap, err := p.extractor.Snapshot(ctx, ref)
	if err != nil {
		return mergedSnapshot{}, eris.Wrapf(err, "load %s snapshot", label)
	}
	records := domain.MergeRecords(snap.Rows, country, diag)

	p.metrics.RowsRead.WithLabelValues(label).Add(float64(len(snap.Rows)))
	p.metrics.RecordsMerged.WithLabelValues(label).Add(float64(len(records)))
	p.logger.Debug("snapshot merged", "snapshot", label, "rows", len(snap.Rows), "records", len(records))

	return mergedSnapshot{date: snap.Date, records: records}, nil
}
