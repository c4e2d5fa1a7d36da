package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// RawRow is one parsed line of a daily report, before deduplication.
type RawRow struct {
	Key           string
	County        string
	ProvinceState string
	Country       string
	LastUpdate    time.Time
	Confirmed     int64
	Deaths        int64
	Recovered     int64
	Active        int64
	CombinedKey   string
}

// RegionRecord is the canonical, deduplicated record for one region.
type RegionRecord struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Confirmed int64  `json:"confirmed"`
	Deaths    int64  `json:"deaths"`
	Recovered int64  `json:"recovered"`
	Active    int64  `json:"active"`
}

// PopulationTable maps a region key to its population.
type PopulationTable map[string]int64

// Counter selects which case counter a metric is computed from.
type Counter int

const (
	CounterConfirmed Counter = iota
	CounterDeaths
	CounterRecovered
	CounterActive
)

// ParseCounter accepts "confirmed", "deaths", "recovered", or "active".
func ParseCounter(s string) (Counter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "confirmed":
		return CounterConfirmed, nil
	case "deaths":
		return CounterDeaths, nil
	case "recovered":
		return CounterRecovered, nil
	case "active":
		return CounterActive, nil
	default:
		return 0, eris.Errorf("unknown counter %q", s)
	}
}

// String returns the plural display name used in labels.
func (c Counter) String() string {
	switch c {
	case CounterConfirmed:
		return "confirmed"
	case CounterDeaths:
		return "deaths"
	case CounterRecovered:
		return "recovered"
	case CounterActive:
		return "active"
	default:
		return fmt.Sprintf("counter(%d)", int(c))
	}
}

// Of returns the selected counter's value from rec.
func (c Counter) Of(rec RegionRecord) int64 {
	switch c {
	case CounterDeaths:
		return rec.Deaths
	case CounterRecovered:
		return rec.Recovered
	case CounterActive:
		return rec.Active
	default:
		return rec.Confirmed
	}
}

// NewRegionRecord converts a raw row into a region record. The display name
// prefers the combined key ("Autauga, Alabama, US") over the county name.
func NewRegionRecord(row RawRow) RegionRecord {
	name := row.CombinedKey
	if name == "" {
		name = row.County
	}
	return RegionRecord{
		Key:       row.Key,
		Name:      name,
		Confirmed: row.Confirmed,
		Deaths:    row.Deaths,
		Recovered: row.Recovered,
		Active:    row.Active,
	}
}

// Merge combines two records for the same region, keeping the maximum of
// each counter independently. The receiver's key and name are kept.
func (r RegionRecord) Merge(other RegionRecord) RegionRecord {
	r.Confirmed = max(r.Confirmed, other.Confirmed)
	r.Deaths = max(r.Deaths, other.Deaths)
	r.Recovered = max(r.Recovered, other.Recovered)
	r.Active = max(r.Active, other.Active)
	return r
}

// MergeRecords deduplicates a snapshot's rows into one record per region key.
// Rows outside country are dropped silently; rows without a key are dropped
// with a diagnostic; duplicate keys are merged with [RegionRecord.Merge].
func MergeRecords(rows []RawRow, country string, diag *Diagnostics) map[string]RegionRecord {
	records := make(map[string]RegionRecord, len(rows))
	for _, row := range rows {
		if row.Country != country {
			continue
		}

		key := strings.TrimSpace(row.Key)
		if key == "" {
			diag.Report(DiagMissingRegionKey, "", "ignoring record with empty region key",
				"name", row.CombinedKey)
			continue
		}
		row.Key = key

		incoming := NewRegionRecord(row)
		existing, ok := records[key]
		if !ok {
			records[key] = incoming
			continue
		}

		diag.Report(DiagDuplicateRegionKey, key, "merging duplicate region key",
			"existing", existing.Name, "incoming", incoming.Name)
		records[key] = existing.Merge(incoming)
	}
	return records
}
