package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/covid-choropleth/internal/domain"
)

// Default palette: light yellow through orange and red to dark red, with
// pale yellows for regions that bypass the gradient.
var (
	DefaultGradient = []string{"#ffffe0", "#ff8c00", "#ff0000", "#8b0000"}

	DefaultUnavailableColor = "#ffff90"
	DefaultZeroColor        = "#ffffc0"
	DefaultNoCasesColor     = "#fffff0"
)

// Palette is the on-disk form of the color scheme.
//
//	gradient: ["#ffffe0", "#ff8c00", "#ff0000", "#8b0000"]
//	special:
//	  unavailable: "#ffff90"
//	  zero: "#ffffc0"
//	  no_cases: "#fffff0"
type Palette struct {
	Gradient []string       `yaml:"gradient"`
	Special  SpecialPalette `yaml:"special"`
}

// SpecialPalette holds the fixed colors. An empty NoCases falls back to Zero.
type SpecialPalette struct {
	Unavailable string `yaml:"unavailable"`
	Zero        string `yaml:"zero"`
	NoCases     string `yaml:"no_cases"`
}

// DefaultPalette returns the built-in palette.
func DefaultPalette() Palette {
	return Palette{
		Gradient: append([]string(nil), DefaultGradient...),
		Special: SpecialPalette{
			Unavailable: DefaultUnavailableColor,
			Zero:        DefaultZeroColor,
			NoCases:     DefaultNoCasesColor,
		},
	}
}

// LoadPalette reads a YAML palette file. Omitted fields keep their defaults,
// except that a file giving a zero color without no_cases paints "no cases"
// with the zero color. An empty path returns the default palette.
func LoadPalette(path string) (Palette, error) {
	p := DefaultPalette()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Palette{}, eris.Wrapf(domain.FatalIO(err), "read palette %q", path)
	}

	var raw Palette
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Palette{}, eris.Wrapf(domain.FatalIO(err), "parse palette %q", path)
	}

	if len(raw.Gradient) > 0 {
		p.Gradient = raw.Gradient
	}
	if raw.Special.Unavailable != "" {
		p.Special.Unavailable = raw.Special.Unavailable
	}
	if raw.Special.Zero != "" {
		p.Special.Zero = raw.Special.Zero
		p.Special.NoCases = raw.Special.NoCases
	} else if raw.Special.NoCases != "" {
		p.Special.NoCases = raw.Special.NoCases
	}

	if _, _, err := p.Resolve(); err != nil {
		return Palette{}, eris.Wrapf(err, "palette %q", path)
	}
	return p, nil
}

// Resolve parses the palette into domain colors.
func (p Palette) Resolve() (domain.Gradient, domain.SpecialColors, error) {
	gradient := make(domain.Gradient, 0, len(p.Gradient))
	for i, s := range p.Gradient {
		c, err := domain.ParseRGB(s)
		if err != nil {
			return nil, domain.SpecialColors{}, eris.Wrapf(err, "gradient[%d]", i)
		}
		gradient = append(gradient, c)
	}
	if err := gradient.Validate(); err != nil {
		return nil, domain.SpecialColors{}, err
	}

	var special domain.SpecialColors
	var err error
	if special.Unavailable, err = domain.ParseRGB(p.Special.Unavailable); err != nil {
		return nil, domain.SpecialColors{}, eris.Wrap(err, "special.unavailable")
	}
	if special.Zero, err = domain.ParseRGB(p.Special.Zero); err != nil {
		return nil, domain.SpecialColors{}, eris.Wrap(err, "special.zero")
	}
	if p.Special.NoCases != "" {
		c, err := domain.ParseRGB(p.Special.NoCases)
		if err != nil {
			return nil, domain.SpecialColors{}, eris.Wrap(err, "special.no_cases")
		}
		special.NoCases = &c
	}
	return gradient, special, nil
}
