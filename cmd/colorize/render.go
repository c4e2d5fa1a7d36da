package main

import (
	"context"
	"io"
	"slices"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/couchcryptid/covid-choropleth/internal/adapter/github"
	kafkaadapter "github.com/couchcryptid/covid-choropleth/internal/adapter/kafka"
	"github.com/couchcryptid/covid-choropleth/internal/config"
	"github.com/couchcryptid/covid-choropleth/internal/domain"
	"github.com/couchcryptid/covid-choropleth/internal/observability"
	"github.com/couchcryptid/covid-choropleth/internal/pipeline"
	"github.com/couchcryptid/covid-choropleth/internal/svgmap"
)

const pushJob = "covid_choropleth"

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Compute metrics and write the colorized map (default)",
	RunE:  runRender,
}

func runRender(cmd *cobra.Command, _ []string) error {
	if err := cfg.Validate(); err != nil {
		return eris.Wrap(err, "invalid configuration")
	}

	palette, err := config.LoadPalette(cfg.PaletteFile)
	if err != nil {
		return err
	}
	gradient, special, err := palette.Resolve()
	if err != nil {
		return eris.Wrap(err, "palette")
	}

	metrics := observability.NewMetrics()
	loaders := []pipeline.Loader{pipeline.NewSVGFileLoader(cfg.OutputSVG, logger)}
	if len(cfg.KafkaBrokers) > 0 {
		writer := kafkaadapter.NewWriter(cfg, logger, metrics)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		loaders = append(loaders, pipeline.NewStyleLoader(writer))
		logger.Info("style publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	extractor, err := newExtractor()
	if err != nil {
		return err
	}
	p := pipeline.New(extractor, settings(gradient, special), logger, metrics, clockwork.NewRealClock(), loaders...)
	res, err := p.Run(cmd.Context(), inputs())
	pushMetrics(cmd.Context(), metrics)
	if err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), res.Diagnostics)
	return nil
}

func newExtractor() (*pipeline.FileExtractor, error) {
	if !strings.HasPrefix(cfg.CurrentSnapshot, pipeline.RemotePrefix) && !strings.HasPrefix(cfg.PriorSnapshot, pipeline.RemotePrefix) {
		return pipeline.NewFileExtractor(nil), nil
	}
	client, err := github.NewClient(cfg.GitHubAPIURL, cfg.GitHubToken, cfg.HTTPTimeout, logger)
	if err != nil {
		return nil, eris.Wrap(err, "invalid configuration")
	}
	return pipeline.NewFileExtractor(client), nil
}

func settings(gradient domain.Gradient, special domain.SpecialColors) pipeline.Settings {
	return pipeline.Settings{
		Gradient: gradient,
		Special:  special,
		Annotate: svgmap.Options{
			ShapeTag: cfg.ShapeTag,
			IDPrefix: cfg.ShapeIDPrefix,
			Stroke:   cfg.StrokeColor,
		},
	}
}

func inputs() pipeline.Inputs {
	return pipeline.Inputs{
		Mode:        cfg.ParsedMode(),
		Counter:     cfg.ParsedCounter(),
		Country:     cfg.Country,
		Current:     cfg.CurrentSnapshot,
		Prior:       cfg.PriorSnapshot,
		Population:  cfg.PopulationCSV,
		Map:         cfg.MapSVG,
		ElapsedDays: cfg.ElapsedDays,
	}
}

func pushMetrics(ctx context.Context, metrics *observability.Metrics) {
	if cfg.PushgatewayURL == "" {
		return
	}
	if err := metrics.Push(ctx, cfg.PushgatewayURL, pushJob); err != nil {
		logger.Warn("metrics push failed", "error", err)
	}
}

// printSummary writes one line per diagnostic kind that occurred.
func printSummary(w io.Writer, counts map[domain.DiagnosticKind]int) {
	p := message.NewPrinter(language.AmericanEnglish)
	kinds := make([]domain.DiagnosticKind, 0, len(counts))
	for k, n := range counts {
		if n > 0 {
			kinds = append(kinds, k)
		}
	}
	if len(kinds) == 0 {
		p.Fprintln(w, "no data quality issues")
		return
	}
	slices.Sort(kinds)
	for _, k := range kinds {
		p.Fprintf(w, "%-24s %d\n", k, counts[k])
	}
}
