package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// perCapitaScale expresses prevalence as cases per 100,000 people.
const perCapitaScale = 100000

// labels formats display numbers with thousands separators ("1,234").
var labels = message.NewPrinter(language.AmericanEnglish)

// Mode selects how a derived metric is computed.
type Mode int

const (
	// ModePrevalence normalizes a counter to cases per 100,000 people.
	ModePrevalence Mode = iota
	// ModeGrowth compares two snapshots and yields a geometric daily rate.
	ModeGrowth
)

// ParseMode accepts "prevalence" or "growth".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prevalence":
		return ModePrevalence, nil
	case "growth":
		return ModeGrowth, nil
	default:
		return 0, eris.Errorf("unknown mode %q (want prevalence or growth)", s)
	}
}

func (m Mode) String() string {
	switch m {
	case ModePrevalence:
		return "prevalence"
	case ModeGrowth:
		return "growth"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// MetricKind tags which bucket a DerivedMetric falls in.
type MetricKind int

const (
	// MetricUnavailable means a required input was missing.
	MetricUnavailable MetricKind = iota
	// MetricZero means zero by policy (no cases, or no change).
	MetricZero
	// MetricValue carries a finite, non-negative rate.
	MetricValue
)

func (k MetricKind) String() string {
	switch k {
	case MetricUnavailable:
		return "unavailable"
	case MetricZero:
		return "zero"
	case MetricValue:
		return "value"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ZeroCause distinguishes the reasons a metric is MetricZero.
type ZeroCause int

const (
	CauseNone ZeroCause = iota
	CauseNoCases
	CauseNoChange
)

func (c ZeroCause) String() string {
	switch c {
	case CauseNoCases:
		return "no cases"
	case CauseNoChange:
		return "no change"
	default:
		return ""
	}
}

// DerivedMetric is the per-region result of a metric computation.
// Value is meaningful only when Kind is MetricValue; Cause only when Kind is
// MetricZero.
type DerivedMetric struct {
	Kind  MetricKind
	Value float64
	Cause ZeroCause
	Label string
}

// Unavailable builds a MetricUnavailable metric.
func Unavailable(label string) DerivedMetric {
	return DerivedMetric{Kind: MetricUnavailable, Label: label}
}

// Zero builds a MetricZero metric with the given cause.
func Zero(cause ZeroCause, label string) DerivedMetric {
	return DerivedMetric{Kind: MetricZero, Cause: cause, Label: label}
}

// Value builds a MetricValue metric.
func Value(v float64, label string) DerivedMetric {
	return DerivedMetric{Kind: MetricValue, Value: v, Label: label}
}

// ComputePrevalence returns count per 100,000 people for every region with a
// population entry. Regions without one are omitted and reported.
func ComputePrevalence(current map[string]RegionRecord, population PopulationTable, counter Counter, diag *Diagnostics) map[string]DerivedMetric {
	out := make(map[string]DerivedMetric, len(current))
	for _, key := range sortedKeys(current) {
		rec := current[key]
		pop, ok := population[key]
		if !ok {
			diag.Report(DiagMissingPopulation, key, "unable to find region population", "name", rec.Name)
			continue
		}

		count := counter.Of(rec)
		switch {
		case pop <= 0:
			out[key] = Unavailable("(population unknown)")
		case count <= 0:
			out[key] = Zero(CauseNoCases, labels.Sprintf("(no %s cases)", counter))
		default:
			rate := float64(count) * perCapitaScale / float64(pop)
			out[key] = Value(rate, labels.Sprintf("(%d per 100,000 people, %d %s)",
				int64(math.Round(rate)), count, counter))
		}
	}
	return out
}

// ComputeGrowth compares current against prior and returns the geometric
// daily growth rate of the selected counter over elapsedDays. Regions absent
// from prior are omitted and reported.
func ComputeGrowth(current, prior map[string]RegionRecord, counter Counter, elapsedDays int, diag *Diagnostics) (map[string]DerivedMetric, error) {
	if elapsedDays < 1 {
		return nil, eris.Errorf("compute growth: elapsed days must be >= 1, got %d", elapsedDays)
	}

	out := make(map[string]DerivedMetric, len(current))
	for _, key := range sortedKeys(current) {
		rec := current[key]
		old, ok := prior[key]
		if !ok {
			diag.Report(DiagMissingPriorSnapshot, key, "region missing from prior snapshot", "name", rec.Name)
			continue
		}
		out[key] = growthMetric(counter.Of(old), counter.Of(rec), elapsedDays, counter)
	}
	return out, nil
}

func growthMetric(oldCount, newCount int64, elapsedDays int, counter Counter) DerivedMetric {
	switch {
	case newCount <= 0:
		return Zero(CauseNoCases, "(no cases)")
	case oldCount <= 0:
		return Unavailable(labels.Sprintf("(%d new %s with none previously)", newCount, counter))
	case newCount <= oldCount:
		return Zero(CauseNoChange, labels.Sprintf("(no change with %d %s)", newCount, counter))
	}

	delta := newCount - oldCount
	totalGrowth := float64(delta) / float64(oldCount)
	daily := math.Pow(1+totalGrowth, 1/float64(elapsedDays)) - 1
	return Value(daily, labels.Sprintf("(%d new %s, %.1f%% daily increase)", delta, counter, daily*100))
}
