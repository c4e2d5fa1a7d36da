package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
	"unicode/utf8"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/rotisserie/eris"

	"github.com/couchcryptid/covid-choropleth/internal/domain"
)

// Config holds all run settings, populated from environment variables and
// overridden by command-line flags.
type Config struct {
	Mode    string
	Counter string
	Country string

	CurrentSnapshot string
	PriorSnapshot   string
	PopulationCSV   string
	MapSVG          string
	OutputSVG       string
	PaletteFile     string
	ElapsedDays     int

	ShapeTag      string
	ShapeIDPrefix string
	StrokeColor   string

	LogLevel  string
	LogFormat string

	// Optional region style publishing.
	KafkaBrokers []string
	KafkaTopic   string

	// Optional batch metrics push.
	PushgatewayURL string

	// GitHub snapshot retrieval.
	GitHubAPIURL string
	GitHubToken  string
	HTTPTimeout  time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset. Cross-field requirements are checked later by Validate, after
// flags have been applied.
func Load() (*Config, error) {
	httpTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("HTTP_TIMEOUT", "30s"))
	if err != nil || httpTimeout <= 0 {
		return nil, eris.New("invalid HTTP_TIMEOUT")
	}

	elapsedDays, err := parseElapsedDays()
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		Mode:            sharedcfg.EnvOrDefault("MODE", "prevalence"),
		Counter:         sharedcfg.EnvOrDefault("COUNTER", "confirmed"),
		Country:         sharedcfg.EnvOrDefault("COUNTRY", "US"),
		CurrentSnapshot: os.Getenv("CURRENT_SNAPSHOT"),
		PriorSnapshot:   os.Getenv("PRIOR_SNAPSHOT"),
		PopulationCSV:   os.Getenv("POPULATION_CSV"),
		MapSVG:          os.Getenv("MAP_SVG"),
		OutputSVG:       sharedcfg.EnvOrDefault("OUTPUT_SVG", "colorized.svg"),
		PaletteFile:     os.Getenv("PALETTE_FILE"),
		ElapsedDays:     elapsedDays,
		ShapeTag:        sharedcfg.EnvOrDefault("SHAPE_TAG", "path"),
		ShapeIDPrefix:   sharedcfg.EnvOrDefault("SHAPE_ID_PREFIX", "c"),
		StrokeColor:     sharedcfg.EnvOrDefault("STROKE_COLOR", "black"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		KafkaBrokers:    brokers,
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "region-styles"),
		PushgatewayURL:  os.Getenv("PUSHGATEWAY_URL"),
		GitHubAPIURL:    sharedcfg.EnvOrDefault("GITHUB_API_URL", "https://api.github.com"),
		GitHubToken:     os.Getenv("GITHUB_TOKEN"),
		HTTPTimeout:     httpTimeout,
	}

	if _, err := domain.ParseMode(cfg.Mode); err != nil {
		return nil, eris.Wrap(err, "invalid MODE")
	}
	if _, err := domain.ParseCounter(cfg.Counter); err != nil {
		return nil, eris.Wrap(err, "invalid COUNTER")
	}

	return cfg, nil
}

// Validate checks the settings a render run needs.
func (c *Config) Validate() error {
	mode, err := domain.ParseMode(c.Mode)
	if err != nil {
		return eris.Wrap(err, "invalid MODE")
	}
	if _, err := domain.ParseCounter(c.Counter); err != nil {
		return eris.Wrap(err, "invalid COUNTER")
	}
	if c.ElapsedDays < 0 {
		return eris.New("ELAPSED_DAYS must be >= 0")
	}
	if c.CurrentSnapshot == "" {
		return eris.New("CURRENT_SNAPSHOT is required")
	}
	if c.MapSVG == "" {
		return eris.New("MAP_SVG is required")
	}
	if c.OutputSVG == "" {
		return eris.New("OUTPUT_SVG is required")
	}
	if samePath(c.MapSVG, c.OutputSVG) {
		return eris.New("OUTPUT_SVG must differ from MAP_SVG")
	}
	if err := c.ValidateShapeIDPrefix(); err != nil {
		return err
	}

	switch mode {
	case domain.ModePrevalence:
		if c.PopulationCSV == "" {
			return eris.New("POPULATION_CSV is required in prevalence mode")
		}
	case domain.ModeGrowth:
		if c.PriorSnapshot == "" {
			return eris.New("PRIOR_SNAPSHOT is required in growth mode")
		}
	}
	return nil
}

// ValidateShapeIDPrefix checks that map shape ids carry a single-character
// prefix ahead of the region key.
func (c *Config) ValidateShapeIDPrefix() error {
	if utf8.RuneCountInString(c.ShapeIDPrefix) != 1 {
		return eris.Errorf("SHAPE_ID_PREFIX must be one character, got %q", c.ShapeIDPrefix)
	}
	return nil
}

// ParsedMode returns the validated mode.
func (c *Config) ParsedMode() domain.Mode {
	m, _ := domain.ParseMode(c.Mode)
	return m
}

// ParsedCounter returns the validated counter.
func (c *Config) ParsedCounter() domain.Counter {
	ctr, _ := domain.ParseCounter(c.Counter)
	return ctr
}

func parseElapsedDays() (int, error) {
	s := os.Getenv("ELAPSED_DAYS")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, eris.New("invalid ELAPSED_DAYS")
	}
	return n, nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
