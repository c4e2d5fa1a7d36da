package pipeline

import (
	"context"
	"log/slog"

	"github.com/rotisserie/eris"

	"github.com/couchcryptid/covid-choropleth/internal/domain"
)

// SVGFileLoader writes the annotated map to a file.
type SVGFileLoader struct {
	path   string
	logger *slog.Logger
}

// NewSVGFileLoader creates a loader writing to path.
func NewSVGFileLoader(path string, logger *slog.Logger) *SVGFileLoader {
	return &SVGFileLoader{path: path, logger: logger}
}

// Load writes res.Document.
func (l *SVGFileLoader) Load(_ context.Context, res *Result) error {
	if err := res.Document.WriteFile(l.path); err != nil {
		return eris.Wrapf(err, "write %s", l.path)
	}
	l.logger.Info("wrote colorized map", "path", l.path, "regions", len(res.Styles))
	return nil
}

// BatchLoader publishes a batch of region styles.
type BatchLoader interface {
	LoadBatch(ctx context.Context, batch domain.StyleBatch) error
}

// StyleLoader adapts a BatchLoader to Loader.
type StyleLoader struct {
	batch BatchLoader
}

// NewStyleLoader wraps b.
func NewStyleLoader(b BatchLoader) *StyleLoader {
	return &StyleLoader{batch: b}
}

// Load publishes the run's styles in region key order.
func (l *StyleLoader) Load(ctx context.Context, res *Result) error {
	return l.batch.LoadBatch(ctx, res.StyleBatch())
}
