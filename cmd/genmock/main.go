// Command genmock writes a small, deterministic demo dataset for trying the
// colorizer without downloading real data: two daily reports two days apart,
// a population table, and a grid map whose squares are named after the
// generated counties.
//
// Usage:
//
//	go run ./cmd/genmock -out data/demo
//	go run ./cmd/colorize --map data/demo/grid.svg \
//	  --current data/demo/03-27-2020.csv --population data/demo/population.csv
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/couchcryptid/covid-choropleth/internal/adapter/csse"
)

var (
	priorDate   = time.Date(2020, time.March, 25, 0, 0, 0, 0, time.UTC)
	currentDate = time.Date(2020, time.March, 27, 0, 0, 0, 0, time.UTC)
)

const (
	stateFIPS = "01"
	stateName = "Alabama"
	cellSize  = 20
)

// county is one generated region.
type county struct {
	FIPS       string
	Name       string
	Population int64
	Prior      int64
	Current    int64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/demo", "output directory")
	cols := flag.Int("cols", 8, "grid columns")
	rows := flag.Int("rows", 6, "grid rows")
	seed := flag.Uint64("seed", 2020, "random seed")
	flag.Parse()

	if *cols < 1 || *rows < 1 {
		return eris.Errorf("grid must be at least 1x1, got %dx%d", *cols, *rows)
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return eris.Wrapf(err, "create %s", *out)
	}

	counties := generate((*cols)*(*rows), rand.New(rand.NewPCG(*seed, *seed)))

	files := []struct {
		name string
		data func() ([]byte, error)
	}{
		{priorDate.Format(csse.DateLayout) + ".csv", func() ([]byte, error) { return snapshotCSV(counties, priorDate, true) }},
		{currentDate.Format(csse.DateLayout) + ".csv", func() ([]byte, error) { return snapshotCSV(counties, currentDate, false) }},
		{"population.csv", func() ([]byte, error) { return populationCSV(counties) }},
		{"grid.svg", func() ([]byte, error) { return []byte(gridSVG(counties, *cols)), nil }},
	}
	for _, f := range files {
		data, err := f.data()
		if err != nil {
			return eris.Wrapf(err, "generate %s", f.name)
		}
		path := filepath.Join(*out, f.name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return eris.Wrapf(err, "write %s", path)
		}
		log.Printf("wrote %s", path)
	}

	log.Printf("total: %d counties", len(counties))
	return nil
}

// generate builds n counties with log-uniform populations and case counts
// that cover every growth category.
func generate(n int, rng *rand.Rand) []county {
	out := make([]county, n)
	for i := range out {
		pop := int64(math.Round(math.Pow(10, 3.5+rng.Float64()*2.5)))
		c := county{
			FIPS:       fmt.Sprintf("%s%03d", stateFIPS, 2*i+1),
			Name:       fmt.Sprintf("County %d", i+1),
			Population: pop,
		}
		switch i % 6 {
		case 0: // no cases
		case 1: // first cases
			c.Current = 1 + rng.Int64N(5)
		case 2: // unchanged
			c.Prior = 1 + rng.Int64N(20)
			c.Current = c.Prior
		default:
			c.Prior = 1 + rng.Int64N(pop/2000+1)
			c.Current = c.Prior + 1 + rng.Int64N(c.Prior*3)
		}
		out[i] = c
	}
	return out
}

func snapshotCSV(counties []county, date time.Time, prior bool) ([]byte, error) {
	rows := make([]csse.SnapshotRow, 0, len(counties)+1)
	updated := date.Add(22*time.Hour + 14*time.Minute).Format(time.DateTime)
	for _, c := range counties {
		confirmed := c.Current
		if prior {
			confirmed = c.Prior
		}
		rows = append(rows, csse.SnapshotRow{
			FIPS:          c.FIPS,
			Admin2:        c.Name,
			ProvinceState: stateName,
			CountryRegion: "US",
			LastUpdate:    updated,
			Confirmed:     fmt.Sprint(confirmed),
			Deaths:        fmt.Sprint(confirmed / 50),
			Recovered:     "0",
			Active:        fmt.Sprint(confirmed - confirmed/50),
			CombinedKey:   fmt.Sprintf("%s, %s, US", c.Name, stateName),
		})
	}
	// An unassigned row without a key, as the real reports carry.
	rows = append(rows, csse.SnapshotRow{
		Admin2:        "Unassigned",
		ProvinceState: stateName,
		CountryRegion: "US",
		LastUpdate:    updated,
		Confirmed:     "2",
		CombinedKey:   "Unassigned, " + stateName + ", US",
	})
	return csvutil.Marshal(rows)
}

func populationCSV(counties []county) ([]byte, error) {
	rows := make([]csse.PopulationRow, 0, len(counties)+1)
	rows = append(rows, csse.PopulationRow{FIPS: "Id2", Name: "Geography", Population: "Population Estimate (as of July 1) - 2018"})
	for _, c := range counties {
		rows = append(rows, csse.PopulationRow{
			FIPS:       c.FIPS,
			Name:       fmt.Sprintf("%s, %s", c.Name, stateName),
			Population: fmt.Sprint(c.Population),
		})
	}
	return csvutil.Marshal(rows)
}

func gridSVG(counties []county, cols int) string {
	rows := (len(counties) + cols - 1) / cols
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`+"\n", cols*cellSize, rows*cellSize)
	for i, c := range counties {
		x, y := (i%cols)*cellSize, (i/cols)*cellSize
		fmt.Fprintf(&b, `  <path id="c%s" d="M%d %dh%dv%dh-%dz" style="fill:#d0d0d0;stroke:#ffffff"><title>%s, %s</title></path>`+"\n",
			c.FIPS, x, y, cellSize, cellSize, cellSize, c.Name, stateName)
	}
	b.WriteString("</svg>\n")
	return b.String()
}
