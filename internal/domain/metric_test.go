package domain

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(recs ...RegionRecord) map[string]RegionRecord {
	out := make(map[string]RegionRecord, len(recs))
	for _, r := range recs {
		out[r.Key] = r
	}
	return out
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("prevalence")
	require.NoError(t, err)
	assert.Equal(t, ModePrevalence, m)

	m, err = ParseMode(" Growth ")
	require.NoError(t, err)
	assert.Equal(t, ModeGrowth, m)
	assert.Equal(t, "growth", m.String())

	_, err = ParseMode("1")
	require.Error(t, err)
}

func TestComputePrevalence(t *testing.T) {
	t.Run("cases per 100k", func(t *testing.T) {
		current := records(RegionRecord{Key: "X", Confirmed: 120})
		got := ComputePrevalence(current, PopulationTable{"X": 240000}, CounterConfirmed, nil)

		require.Contains(t, got, "X")
		assert.Equal(t, MetricValue, got["X"].Kind)
		assert.Equal(t, 50.0, got["X"].Value)
		assert.Contains(t, got["X"].Label, "50 per 100,000")
	})

	t.Run("missing population is omitted and reported", func(t *testing.T) {
		var buf bytes.Buffer
		diag := testDiagnostics(&buf)
		current := records(
			RegionRecord{Key: "X", Confirmed: 10, Name: "X County"},
			RegionRecord{Key: "Y", Confirmed: 10, Name: "Y County"},
		)

		got := ComputePrevalence(current, PopulationTable{"X": 1000}, CounterConfirmed, diag)

		assert.Contains(t, got, "X")
		assert.NotContains(t, got, "Y")
		assert.Equal(t, 1, diag.Count(DiagMissingPopulation))
		assert.Contains(t, buf.String(), "Y County")
	})

	t.Run("no cases is zero", func(t *testing.T) {
		got := ComputePrevalence(records(RegionRecord{Key: "X"}), PopulationTable{"X": 5000}, CounterConfirmed, nil)
		assert.Equal(t, MetricZero, got["X"].Kind)
		assert.Equal(t, CauseNoCases, got["X"].Cause)
	})

	t.Run("zero population is unavailable", func(t *testing.T) {
		got := ComputePrevalence(records(RegionRecord{Key: "X", Confirmed: 4}), PopulationTable{"X": 0}, CounterConfirmed, nil)
		assert.Equal(t, MetricUnavailable, got["X"].Kind)
	})

	t.Run("selected counter and thousands separators", func(t *testing.T) {
		current := records(RegionRecord{Key: "X", Confirmed: 5000, Deaths: 1500})
		got := ComputePrevalence(current, PopulationTable{"X": 100000}, CounterDeaths, nil)

		assert.Equal(t, 1500.0, got["X"].Value)
		assert.Equal(t, "(1,500 per 100,000 people, 1,500 deaths)", got["X"].Label)
	})

	t.Run("label rounds to nearest integer", func(t *testing.T) {
		got := ComputePrevalence(records(RegionRecord{Key: "X", Confirmed: 2}), PopulationTable{"X": 300000}, CounterConfirmed, nil)
		assert.InDelta(t, 0.6667, got["X"].Value, 1e-4)
		assert.Contains(t, got["X"].Label, "(1 per 100,000")
	})
}

func TestComputeGrowth(t *testing.T) {
	const days = 4

	tests := []struct {
		name      string
		old, cur  int64
		wantKind  MetricKind
		wantCause ZeroCause
		wantLabel string
	}{
		{"no cases", 0, 0, MetricZero, CauseNoCases, "(no cases)"},
		{"new cases with no prior", 0, 30, MetricUnavailable, CauseNone, "(30 new confirmed with none previously)"},
		{"no change", 100, 100, MetricZero, CauseNoChange, "(no change with 100 confirmed)"},
		{"decrease counts as no change", 100, 90, MetricZero, CauseNoChange, "(no change with 90 confirmed)"},
		{"growth", 200, 300, MetricValue, CauseNone, "(100 new confirmed, 10.7% daily increase)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := records(RegionRecord{Key: "X", Confirmed: tt.cur})
			prior := records(RegionRecord{Key: "X", Confirmed: tt.old})

			got, err := ComputeGrowth(current, prior, CounterConfirmed, days, nil)
			require.NoError(t, err)
			require.Contains(t, got, "X")
			assert.Equal(t, tt.wantKind, got["X"].Kind)
			assert.Equal(t, tt.wantCause, got["X"].Cause)
			assert.Equal(t, tt.wantLabel, got["X"].Label)
		})
	}

	t.Run("geometric daily rate", func(t *testing.T) {
		current := records(RegionRecord{Key: "X", Confirmed: 300})
		prior := records(RegionRecord{Key: "X", Confirmed: 200})

		got, err := ComputeGrowth(current, prior, CounterConfirmed, days, nil)
		require.NoError(t, err)
		assert.InDelta(t, math.Pow(1.5, 0.25)-1, got["X"].Value, 1e-12)
		assert.InDelta(t, 0.1067, got["X"].Value, 1e-4)
	})

	t.Run("single day equals total growth", func(t *testing.T) {
		current := records(RegionRecord{Key: "X", Confirmed: 300})
		prior := records(RegionRecord{Key: "X", Confirmed: 200})

		got, err := ComputeGrowth(current, prior, CounterConfirmed, 1, nil)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, got["X"].Value, 1e-12)
	})

	t.Run("missing prior is omitted and reported", func(t *testing.T) {
		var buf bytes.Buffer
		diag := testDiagnostics(&buf)
		current := records(RegionRecord{Key: "X", Confirmed: 3}, RegionRecord{Key: "Y", Confirmed: 5})
		prior := records(RegionRecord{Key: "X", Confirmed: 1})

		got, err := ComputeGrowth(current, prior, CounterConfirmed, days, diag)
		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.NotContains(t, got, "Y")
		assert.Equal(t, 1, diag.Count(DiagMissingPriorSnapshot))
	})

	t.Run("elapsed days must be positive", func(t *testing.T) {
		_, err := ComputeGrowth(nil, nil, CounterConfirmed, 0, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "elapsed days")
	})

	t.Run("uses the selected counter", func(t *testing.T) {
		current := records(RegionRecord{Key: "X", Confirmed: 300, Deaths: 0})
		prior := records(RegionRecord{Key: "X", Confirmed: 200, Deaths: 0})

		got, err := ComputeGrowth(current, prior, CounterDeaths, days, nil)
		require.NoError(t, err)
		assert.Equal(t, MetricZero, got["X"].Kind)
	})
}
