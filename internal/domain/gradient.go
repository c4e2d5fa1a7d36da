package domain

import (
	"maps"
	"math"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rotisserie/eris"
)

// outlierPercentile sets the scale maximum; the top 1% of values is clipped.
const outlierPercentile = 0.99

// RGB is an 8-bit-per-channel color.
type RGB struct {
	R, G, B uint8
}

// ParseRGB parses a "#rrggbb" (or "#rgb") hex string.
func ParseRGB(s string) (RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, eris.Wrapf(err, "parse color %q", s)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// MustParseRGB is ParseRGB for package-level literals.
func MustParseRGB(s string) RGB {
	c, err := ParseRGB(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex serializes the color as "#rrggbb".
func (c RGB) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

// Gradient is an ordered list of anchor colors defining len-1 linear segments.
type Gradient []RGB

// Validate checks the gradient has at least two anchors.
func (g Gradient) Validate() error {
	if len(g) < 2 {
		return eris.Errorf("gradient needs at least 2 anchors, got %d", len(g))
	}
	return nil
}

// At returns the color at value within [0, maxValue]. Values outside the
// range are clamped to the end anchors.
func (g Gradient) At(value, maxValue float64) RGB {
	if maxValue <= 0 || value <= 0 {
		return g[0]
	}
	segments := float64(len(g) - 1)
	rawIndex := math.Min(value, maxValue) / maxValue * segments

	low := math.Floor(rawIndex)
	t := rawIndex - low
	last := len(g) - 1
	lowColor := g[min(int(low), last)]
	highColor := g[min(int(low)+1, last)]

	return RGB{
		R: lerp(lowColor.R, highColor.R, t),
		G: lerp(lowColor.G, highColor.G, t),
		B: lerp(lowColor.B, highColor.B, t),
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a)*(1-t) + float64(b)*t))
}

// SpecialColors paints metrics that bypass the gradient. NoCases, when set,
// distinguishes "no cases" from other zero causes.
type SpecialColors struct {
	Unavailable RGB
	Zero        RGB
	NoCases     *RGB
}

// For returns the fixed color for a non-value metric.
func (s SpecialColors) For(m DerivedMetric) RGB {
	if m.Kind == MetricUnavailable {
		return s.Unavailable
	}
	if m.Cause == CauseNoCases && s.NoCases != nil {
		return *s.NoCases
	}
	return s.Zero
}

// ScaleMax returns the nearest-rank 99th percentile of all positive values,
// or 0 when there are none.
func ScaleMax(metrics map[string]DerivedMetric) float64 {
	values := make([]float64, 0, len(metrics))
	for _, m := range metrics {
		if m.Kind == MetricValue && m.Value > 0 {
			values = append(values, m.Value)
		}
	}
	if len(values) == 0 {
		return 0
	}
	slices.Sort(values)
	rank := int(math.Ceil(outlierPercentile * float64(len(values))))
	return values[max(rank-1, 0)]
}

// Colorize maps each metric to a region style. Values are interpolated along
// gradient between 0 and [ScaleMax]; Zero and Unavailable use special.
func Colorize(metrics map[string]DerivedMetric, gradient Gradient, special SpecialColors) (map[string]RegionStyle, error) {
	if err := gradient.Validate(); err != nil {
		return nil, eris.Wrap(err, "colorize")
	}

	maxValue := ScaleMax(metrics)
	styles := make(map[string]RegionStyle, len(metrics))
	for key, m := range metrics {
		var c RGB
		if m.Kind == MetricValue {
			c = gradient.At(m.Value, maxValue)
		} else {
			c = special.For(m)
		}
		styles[key] = RegionStyle{
			Key:   key,
			Color: c,
			Fill:  c.Hex(),
			Label: m.Label,
			Kind:  m.Kind.String(),
		}
	}
	return styles, nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
