// Package domain models county-level COVID-19 case snapshots and the
// transformations that turn them into choropleth region styles.
//
// # Data Source
//
// Snapshots are the Johns Hopkins CSSE daily reports, one CSV per reporting
// date under csse_covid_19_data/csse_covid_19_daily_reports. Each row is one
// administrative region; county rows for the United States carry a FIPS code
// that doubles as the region key.
//
// # Region Keys
//
// A region key is an opaque string (a five-digit county FIPS code in
// practice). Map documents carry the same key behind a one-character prefix,
// e.g. shape id "c35013" is region "35013".
//
// Upstream data contains duplicates: FIPS 35013 appears both as "Dona Ana"
// and "Doña Ana" with different counts. [MergeRecords] resolves them by
// taking the per-counter maximum, which is commutative and idempotent but
// may leave Active out of step with Confirmed - Deaths - Recovered.
//
// # Derived Metrics
//
// A [DerivedMetric] is a tagged value: [MetricUnavailable], [MetricZero], or
// [MetricValue]. Numeric values never double as flags.
//
//	Prevalence: count / population * 100000 (cases per 100,000 people)
//	Growth:     (1 + delta/prior)^(1/days) - 1 (geometric daily rate)
//
// Growth categories, evaluated in order:
//
//	current == 0        Zero ("no cases")
//	prior == 0          Unavailable (new cases with no baseline)
//	current <= prior    Zero ("no change")
//	otherwise           Value(daily rate)
//
// # Colors
//
// [Colorize] maps values onto a multi-stop linear [Gradient]. The scale
// maximum is the nearest-rank 99th percentile of positive values so a single
// extreme county does not wash out the rest of the map. Zero and Unavailable
// bypass the gradient and use [SpecialColors].
//
// # Diagnostics
//
// Per-region problems are never errors. They are reported through
// [Diagnostics], which logs each occurrence and counts it by kind.
package domain
