package main

import (
	"github.com/spf13/cobra"

	"github.com/couchcryptid/covid-choropleth/internal/config"
)

// overrides holds command-line values that replace environment settings
// when the flag is given explicitly.
type overrides struct {
	mode, counter, country     string
	current, prior, population string
	mapSVG, output, palette    string
	shapeTag, idPrefix, stroke string
	logLevel, logFormat        string
	elapsedDays                int
}

func (o *overrides) register(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&o.mode, "mode", "", "metric to map: prevalence or growth (env MODE)")
	f.StringVar(&o.counter, "counter", "", "confirmed, deaths, recovered or active (env COUNTER)")
	f.StringVar(&o.country, "country", "", "Country_Region to keep (env COUNTRY)")
	f.StringVar(&o.current, "current", "", "current snapshot path or github:latest|github:MM-DD-YYYY (env CURRENT_SNAPSHOT)")
	f.StringVar(&o.prior, "prior", "", "prior snapshot for growth mode (env PRIOR_SNAPSHOT)")
	f.StringVar(&o.population, "population", "", "population CSV for prevalence mode (env POPULATION_CSV)")
	f.StringVar(&o.mapSVG, "map", "", "input SVG map (env MAP_SVG)")
	f.StringVarP(&o.output, "output", "o", "", "output SVG path (env OUTPUT_SVG)")
	f.StringVar(&o.palette, "palette", "", "YAML palette file (env PALETTE_FILE)")
	f.IntVar(&o.elapsedDays, "days", 0, "days between snapshots; 0 derives it from file names (env ELAPSED_DAYS)")
	f.StringVar(&o.shapeTag, "shape-tag", "", "SVG element holding a region (env SHAPE_TAG)")
	f.StringVar(&o.idPrefix, "id-prefix", "", "one-character region id prefix on map shapes (env SHAPE_ID_PREFIX)")
	f.StringVar(&o.stroke, "stroke", "", "outline color for styled shapes (env STROKE_COLOR)")
	f.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	f.StringVar(&o.logFormat, "log-format", "", "text or json (env LOG_FORMAT)")
}

func (o *overrides) apply(cmd *cobra.Command, c *config.Config) {
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("mode", &c.Mode, o.mode)
	set("counter", &c.Counter, o.counter)
	set("country", &c.Country, o.country)
	set("current", &c.CurrentSnapshot, o.current)
	set("prior", &c.PriorSnapshot, o.prior)
	set("population", &c.PopulationCSV, o.population)
	set("map", &c.MapSVG, o.mapSVG)
	set("output", &c.OutputSVG, o.output)
	set("palette", &c.PaletteFile, o.palette)
	set("shape-tag", &c.ShapeTag, o.shapeTag)
	set("id-prefix", &c.ShapeIDPrefix, o.idPrefix)
	set("stroke", &c.StrokeColor, o.stroke)
	set("log-level", &c.LogLevel, o.logLevel)
	set("log-format", &c.LogFormat, o.logFormat)
	if cmd.Flags().Changed("days") {
		c.ElapsedDays = o.elapsedDays
	}
}
