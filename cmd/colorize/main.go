package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/covid-choropleth/internal/config"
	"github.com/couchcryptid/covid-choropleth/internal/observability"
)

var (
	cfg    *config.Config
	logger *slog.Logger
	flags  overrides
)

var rootCmd = &cobra.Command{
	Use:   "colorize",
	Short: "Color a county map by COVID-19 case prevalence or growth",
	Long: "Reads CSSE daily reports, computes a per-region metric, and writes a copy of an SVG map " +
		"with every region filled along a color gradient and its title annotated.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		flags.apply(cmd, c)
		cfg = c
		logger = observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
		return nil
	},
	RunE: runRender,
}

func init() {
	flags.register(rootCmd)
	rootCmd.AddCommand(renderCmd, checkCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		l := logger
		if l == nil {
			l = slog.Default()
		}
		l.Error("colorize failed", "error", err)
		stop()
		os.Exit(1)
	}
}
