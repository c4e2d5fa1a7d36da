package pipeline

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/couchcryptid/covid-choropleth/internal/adapter/csse"
	"github.com/couchcryptid/covid-choropleth/internal/domain"
	"github.com/couchcryptid/covid-choropleth/internal/svgmap"
)

// RemotePrefix marks a snapshot reference fetched by a SnapshotFetcher,
// e.g. "github:latest" or "github:03-27-2020".
const RemotePrefix = "github:"

// SnapshotFetcher downloads a daily report by reference.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, ref string) (domain.Snapshot, error)
}

// FileExtractor reads inputs from local files and, for prefixed snapshot
// references, from a remote fetcher.
type FileExtractor struct {
	remote SnapshotFetcher
}

// NewFileExtractor creates a FileExtractor. remote may be nil when only local
// files are used.
func NewFileExtractor(remote SnapshotFetcher) *FileExtractor {
	return &FileExtractor{remote: remote}
}

// Snapshot loads a daily report from a path or a remote reference.
func (e *FileExtractor) Snapshot(ctx context.Context, ref string) (domain.Snapshot, error) {
	if name, ok := strings.CutPrefix(ref, RemotePrefix); ok {
		if e.remote == nil {
			return domain.Snapshot{}, eris.Wrapf(domain.ErrFatalIO, "remote snapshot %q: no fetcher configured", ref)
		}
		return e.remote.FetchSnapshot(ctx, name)
	}
	if ref == "" {
		return domain.Snapshot{}, eris.Wrap(domain.ErrFatalIO, "snapshot path is empty")
	}
	return csse.ReadSnapshotFile(ref)
}

// Population loads a population table from disk.
func (e *FileExtractor) Population(_ context.Context, ref string) (domain.PopulationTable, error) {
	return csse.ReadPopulationFile(ref)
}

// Map loads an SVG map from disk.
func (e *FileExtractor) Map(_ context.Context, ref string) (*svgmap.Document, error) {
	return svgmap.LoadFile(ref)
}
