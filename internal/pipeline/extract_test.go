package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/covid-choropleth/internal/domain"
)

type stubFetcher struct {
	refs []string
}

func (s *stubFetcher) FetchSnapshot(_ context.Context, ref string) (domain.Snapshot, error) {
	s.refs = append(s.refs, ref)
	return domain.Snapshot{Date: time.Date(2020, 3, 27, 0, 0, 0, 0, time.UTC)}, nil
}

func TestFileExtractor_RemoteSnapshot(t *testing.T) {
	fetcher := &stubFetcher{}
	e := NewFileExtractor(fetcher)

	snap, err := e.Snapshot(context.Background(), "github:latest")
	require.NoError(t, err)
	assert.Equal(t, []string{"latest"}, fetcher.refs)
	assert.Equal(t, 2020, snap.Date.Year())
}

func TestFileExtractor_RemoteWithoutFetcher(t *testing.T) {
	_, err := NewFileExtractor(nil).Snapshot(context.Background(), "github:03-27-2020")
	require.ErrorIs(t, err, domain.ErrFatalIO)
}

func TestFileExtractor_LocalFiles(t *testing.T) {
	dir := t.TempDir()
	snapPath := filepath.Join(dir, "03-27-2020.csv")
	require.NoError(t, os.WriteFile(snapPath, []byte(
		"FIPS,Admin2,Province_State,Country_Region,Last_Update,Confirmed,Deaths,Recovered,Active,Combined_Key\n"+
			"01001,Autauga,Alabama,US,2020-03-27 22:14:55,6,0,0,6,\"Autauga, Alabama, US\"\n"), 0o600))
	mapPath := filepath.Join(dir, "map.svg")
	require.NoError(t, os.WriteFile(mapPath, []byte(`<svg><path id="c01001"/></svg>`), 0o600))

	e := NewFileExtractor(nil)

	snap, err := e.Snapshot(context.Background(), snapPath)
	require.NoError(t, err)
	assert.Len(t, snap.Rows, 1)

	doc, err := e.Map(context.Background(), mapPath)
	require.NoError(t, err)
	assert.NotNil(t, doc)

	_, err = e.Snapshot(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrFatalIO)

	_, err = e.Population(context.Background(), filepath.Join(dir, "missing.csv"))
	require.ErrorIs(t, err, domain.ErrFatalIO)
}
