// Package csse reads Johns Hopkins CSSE daily reports and Census population
// estimates into domain types.
package csse

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/couchcryptid/covid-choropleth/internal/domain"
)

// DateLayout is the daily report filename date format, e.g. "03-27-2020.csv".
const DateLayout = "01-02-2006"

// fipsWidth is the width of a county FIPS code.
const fipsWidth = 5

// requiredSnapshotColumns must be present in a daily report header. Reports
// published before 2020-03-22 use a different layout and are rejected.
var requiredSnapshotColumns = []string{"FIPS", "Country_Region", "Confirmed"}

// lastUpdateLayouts covers the timestamp formats seen across daily reports.
var lastUpdateLayouts = []string{
	time.DateTime,
	"2006-01-02T15:04:05",
	"1/2/06 15:04",
	"1/2/2006 15:04",
}

// SnapshotRow is one daily report line as published. Numeric columns are
// kept as text because the source mixes blanks, integers, and decimals.
type SnapshotRow struct {
	FIPS          string `csv:"FIPS"`
	Admin2        string `csv:"Admin2"`
	ProvinceState string `csv:"Province_State"`
	CountryRegion string `csv:"Country_Region"`
	LastUpdate    string `csv:"Last_Update"`
	Lat           string `csv:"Lat"`
	Long          string `csv:"Long_"`
	Confirmed     string `csv:"Confirmed"`
	Deaths        string `csv:"Deaths"`
	Recovered     string `csv:"Recovered"`
	Active        string `csv:"Active"`
	CombinedKey   string `csv:"Combined_Key"`
}

// RawRow converts the published line into a domain row.
func (r SnapshotRow) RawRow() domain.RawRow {
	return domain.RawRow{
		Key:           NormalizeFIPS(r.FIPS),
		County:        strings.TrimSpace(r.Admin2),
		ProvinceState: strings.TrimSpace(r.ProvinceState),
		Country:       strings.TrimSpace(r.CountryRegion),
		LastUpdate:    parseLastUpdate(r.LastUpdate),
		Confirmed:     parseCount(r.Confirmed),
		Deaths:        parseCount(r.Deaths),
		Recovered:     parseCount(r.Recovered),
		Active:        parseCount(r.Active),
		CombinedKey:   strings.TrimSpace(r.CombinedKey),
	}
}

// ReadSnapshot decodes a daily report.
func ReadSnapshot(r io.Reader) ([]domain.RawRow, error) {
	dec, err := newDecoder(r)
	if err != nil {
		return nil, eris.Wrap(domain.FatalIO(err), "read snapshot header")
	}
	if missing := missingColumns(dec.Header(), requiredSnapshotColumns); len(missing) > 0 {
		return nil, eris.Wrapf(domain.ErrFatalIO, "unsupported daily report layout: missing columns %v", missing)
	}

	var rows []domain.RawRow
	for {
		var rec SnapshotRow
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(domain.FatalIO(err), "decode snapshot row %d", len(rows)+1)
		}
		rows = append(rows, rec.RawRow())
	}
	return rows, nil
}

// ReadSnapshotFile reads a daily report from disk. The snapshot date is
// taken from the file name when it follows the MM-DD-YYYY.csv convention.
func ReadSnapshotFile(path string) (domain.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Snapshot{}, eris.Wrapf(domain.FatalIO(err), "open snapshot %s", path)
	}
	defer f.Close()

	rows, err := ReadSnapshot(f)
	if err != nil {
		return domain.Snapshot{}, eris.Wrapf(err, "snapshot %s", path)
	}
	date, _ := SnapshotDate(path)
	return domain.Snapshot{Date: date, Rows: rows}, nil
}

// SnapshotDate parses the reporting date from a daily report file name.
func SnapshotDate(name string) (time.Time, bool) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	d, err := time.Parse(DateLayout, base)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// NormalizeFIPS trims a FIPS code, drops a trailing ".0" written by
// spreadsheet exports, and restores leading zeros stripped from numeric codes
// (e.g. "1001" becomes "01001"). Non-numeric keys are returned trimmed.
func NormalizeFIPS(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".0")
	if s == "" {
		return ""
	}
	if _, err := strconv.ParseUint(s, 10, 64); err != nil {
		return s
	}
	if len(s) < fipsWidth {
		s = strings.Repeat("0", fipsWidth-len(s)) + s
	}
	return s
}

// parseCount parses a counter leniently: blanks, garbage, and negative
// values become 0 and decimals are rounded.
func parseCount(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return max(n, 0)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < 0 {
		return 0
	}
	return int64(math.Round(f))
}

func parseLastUpdate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range lastUpdateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// newDecoder builds a csvutil decoder over r, dropping a UTF-8 byte order
// mark if present.
func newDecoder(r io.Reader) (*csvutil.Decoder, error) {
	bomless := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(bomless)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return csvutil.NewDecoder(cr)
}

func missingColumns(header, required []string) []string {
	var missing []string
	for _, col := range required {
		if !slices.Contains(header, col) {
			missing = append(missing, col)
		}
	}
	return missing
}
