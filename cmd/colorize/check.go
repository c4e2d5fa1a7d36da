package main

import (
	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/couchcryptid/covid-choropleth/internal/config"
	"github.com/couchcryptid/covid-choropleth/internal/observability"
	"github.com/couchcryptid/covid-choropleth/internal/pipeline"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Cross-reference a snapshot's region keys against a map without rendering",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.CurrentSnapshot == "" || cfg.MapSVG == "" {
			return eris.New("check needs CURRENT_SNAPSHOT and MAP_SVG")
		}
		if err := cfg.ValidateShapeIDPrefix(); err != nil {
			return eris.Wrap(err, "invalid configuration")
		}
		gradient, special, err := config.DefaultPalette().Resolve()
		if err != nil {
			return err
		}

		extractor, err := newExtractor()
		if err != nil {
			return err
		}
		p := pipeline.New(extractor, settings(gradient, special), logger,
			observability.NewMetrics(), clockwork.NewRealClock())
		report, err := p.Check(cmd.Context(), inputs())
		if err != nil {
			return err
		}

		out := message.NewPrinter(language.AmericanEnglish)
		out.Fprintf(cmd.OutOrStdout(), "%d records, %d map shapes, %d matched\n",
			report.Records, report.Shapes, report.Matched)
		printSummary(cmd.OutOrStdout(), report.Diagnostics)
		return nil
	},
}
