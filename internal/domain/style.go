package domain

import (
	"slices"
	"strings"
	"time"
)

// RegionStyle is the final color and label for one region.
type RegionStyle struct {
	Key   string `json:"key"`
	Color RGB    `json:"-"`
	Fill  string `json:"fill"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
}

// StyleBatch is the set of styles produced by one run, in key order.
type StyleBatch struct {
	Mode        Mode
	Counter     Counter
	GeneratedAt time.Time
	Styles      []RegionStyle
}

// NewStyleBatch orders styles by region key.
func NewStyleBatch(mode Mode, counter Counter, generatedAt time.Time, styles map[string]RegionStyle) StyleBatch {
	ordered := make([]RegionStyle, 0, len(styles))
	for _, s := range styles {
		ordered = append(ordered, s)
	}
	slices.SortFunc(ordered, func(a, b RegionStyle) int { return strings.Compare(a.Key, b.Key) })
	return StyleBatch{
		Mode:        mode,
		Counter:     counter,
		GeneratedAt: generatedAt,
		Styles:      ordered,
	}
}
