package csse

import (
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/couchcryptid/covid-choropleth/internal/domain"
)

// PopulationRow is one line of the Census PEP annual resident population
// estimates table. GEO.id2 is the county FIPS code; respop72018 is the
// July 1, 2018 estimate, the latest year the table carries.
type PopulationRow struct {
	FIPS       string `csv:"GEO.id2"`
	Name       string `csv:"GEO.display-label"`
	Population string `csv:"respop72018"`
}

var requiredPopulationColumns = []string{"GEO.id2", "respop72018"}

// ReadPopulation decodes a population table. Rows without a key or with a
// non-numeric population (the annotation row under the header) are skipped.
func ReadPopulation(r io.Reader) (domain.PopulationTable, error) {
	dec, err := newDecoder(r)
	if err != nil {
		return nil, eris.Wrap(domain.FatalIO(err), "read population header")
	}
	if missing := missingColumns(dec.Header(), requiredPopulationColumns); len(missing) > 0 {
		return nil, eris.Wrapf(domain.ErrFatalIO, "unsupported population layout: missing columns %v", missing)
	}

	table := make(domain.PopulationTable)
	for line := 1; ; line++ {
		var rec PopulationRow
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(domain.FatalIO(err), "decode population row %d", line)
		}
		key := NormalizeFIPS(rec.FIPS)
		if key == "" || !isNumeric(rec.Population) {
			continue
		}
		table[key] = parseCount(rec.Population)
	}
	return table, nil
}

// ReadPopulationFile reads a population table from disk.
func ReadPopulationFile(path string) (domain.PopulationTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(domain.FatalIO(err), "open population %s", path)
	}
	defer f.Close()

	table, err := ReadPopulation(f)
	if err != nil {
		return nil, eris.Wrapf(err, "population %s", path)
	}
	return table, nil
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}
