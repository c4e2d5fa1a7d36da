package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rotisserie/eris"

	"github.com/couchcryptid/covid-choropleth/internal/domain"
)

const namespace = "covid_choropleth"

// Metrics holds the Prometheus counters and gauges for one colorizer run.
// Each Metrics owns its registry so a batch run can push exactly what it
// recorded.
type Metrics struct {
	Registry *prometheus.Registry

	RowsRead        *prometheus.CounterVec // labels: snapshot={current,prior}
	RecordsMerged   *prometheus.CounterVec // labels: snapshot={current,prior}
	Diagnostics     *prometheus.CounterVec // labels: kind
	RegionsStyled   *prometheus.CounterVec // labels: kind={value,zero,unavailable}
	StylesPublished prometheus.Counter

	RunDuration prometheus.Histogram
	LastSuccess prometheus.Gauge
}

// NewMetrics creates all run metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Snapshot rows read, by snapshot.",
		}, []string{"snapshot"}),
		RecordsMerged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_merged_total",
			Help:      "Region records after merging, by snapshot.",
		}, []string{"snapshot"}),
		Diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Data quality diagnostics reported, by kind.",
		}, []string{"kind"}),
		RegionsStyled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "regions_styled_total",
			Help:      "Regions given a color, by metric kind.",
		}, []string{"kind"}),
		StylesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "styles_published_total",
			Help:      "Region styles written to the message broker.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete read-compute-annotate run.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}

	m.Registry.MustRegister(
		m.RowsRead,
		m.RecordsMerged,
		m.Diagnostics,
		m.RegionsStyled,
		m.StylesPublished,
		m.RunDuration,
		m.LastSuccess,
	)

	// Pre-create diagnostic series so a clean run still reports zeros.
	for _, kind := range domain.DiagnosticKinds {
		m.Diagnostics.WithLabelValues(string(kind))
	}

	return m
}

// DiagnosticHook returns a callback for domain.NewDiagnostics that counts
// each report.
func (m *Metrics) DiagnosticHook() func(domain.DiagnosticKind) {
	return func(kind domain.DiagnosticKind) {
		m.Diagnostics.WithLabelValues(string(kind)).Inc()
	}
}

// ObserveSuccess records a finished run.
func (m *Metrics) ObserveSuccess(duration time.Duration, finished time.Time) {
	m.RunDuration.Observe(duration.Seconds())
	m.LastSuccess.Set(float64(finished.Unix()))
}

// Push sends the registry to a Prometheus Pushgateway under job.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	err := push.New(url, job).
		Gatherer(m.Registry).
		PushContext(ctx)
	if err != nil {
		return eris.Wrapf(err, "push metrics to %s", url)
	}
	return nil
}
