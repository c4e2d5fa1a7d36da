package domain

import (
	"errors"
	"log/slog"
	"sync"
)

// ErrFatalIO marks a top-level input that could not be read or parsed.
// It is the only failure that aborts a run.
var ErrFatalIO = errors.New("fatal input error")

// FatalIO marks err as a fatal input error. The result matches ErrFatalIO
// under errors.Is and still unwraps to err.
func FatalIO(err error) error {
	if err == nil {
		return nil
	}
	return &fatalIOError{err: err}
}

type fatalIOError struct {
	err error
}

func (e *fatalIOError) Error() string        { return e.err.Error() }
func (e *fatalIOError) Unwrap() error        { return e.err }
func (e *fatalIOError) Is(target error) bool { return target == ErrFatalIO }

// DiagnosticKind classifies a non-fatal, per-region problem.
type DiagnosticKind string

const (
	DiagMissingRegionKey     DiagnosticKind = "missing_region_key"
	DiagDuplicateRegionKey   DiagnosticKind = "duplicate_region_key"
	DiagMissingPopulation    DiagnosticKind = "missing_population"
	DiagMissingPriorSnapshot DiagnosticKind = "missing_prior_snapshot"
	DiagUnmatchedMapShape    DiagnosticKind = "unmatched_map_shape"
	DiagUnmatchedDataKey     DiagnosticKind = "unmatched_data_key"
)

// DiagnosticKinds lists every kind in reporting order.
var DiagnosticKinds = []DiagnosticKind{
	DiagMissingRegionKey,
	DiagDuplicateRegionKey,
	DiagMissingPopulation,
	DiagMissingPriorSnapshot,
	DiagUnmatchedMapShape,
	DiagUnmatchedDataKey,
}

// Diagnostics logs and counts per-region problems. A nil *Diagnostics
// discards everything, so pure functions can be called without one.
type Diagnostics struct {
	logger *slog.Logger
	hook   func(DiagnosticKind)

	mu     sync.Mutex
	counts map[DiagnosticKind]int
}

// NewDiagnostics creates a collector writing warnings to logger. The optional
// hook is invoked once per report (used to feed metrics).
func NewDiagnostics(logger *slog.Logger, hook func(DiagnosticKind)) *Diagnostics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Diagnostics{
		logger: logger,
		hook:   hook,
		counts: make(map[DiagnosticKind]int),
	}
}

// Report records one occurrence of kind for the given region key.
func (d *Diagnostics) Report(kind DiagnosticKind, key, msg string, attrs ...any) {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.counts[kind]++
	d.mu.Unlock()

	args := append([]any{"kind", string(kind), "region", key}, attrs...)
	d.logger.Warn(msg, args...)

	if d.hook != nil {
		d.hook(kind)
	}
}

// Count returns how many times kind was reported.
func (d *Diagnostics) Count(kind DiagnosticKind) int {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[kind]
}

// Counts returns a copy of all non-zero counts.
func (d *Diagnostics) Counts() map[DiagnosticKind]int {
	out := make(map[DiagnosticKind]int)
	if d == nil {
		return out
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, v := range d.counts {
		out[k] = v
	}
	return out
}
