// Package telemetry provides hierarchical timing of operations, carried
// through context so instrumentation stays out of function signatures.
// Without a collector on the context every call is a no-op.
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.StartTimer(ctx, "parse")
//	defer timer.End()
//
//	collector.Report(os.Stderr)
package telemetry

import (
	"context"
	"io"
)

type contextKey struct{}

var collectorKey = contextKey{}

// Collector accumulates timing data for a run.
type Collector interface {
	// Start begins timing a top-level operation.
	Start(name string) Timer

	// Report writes the collected timings.
	Report(w io.Writer)
}

// Timer tracks one operation. Nested operations hang off Child.
type Timer interface {
	End()
	Child(name string) Timer
}

// WithCollector attaches a collector to the context.
func WithCollector(ctx context.Context, c Collector) context.Context {
	return context.WithValue(ctx, collectorKey, c)
}

// FromContext returns the context's collector, or a no-op one.
func FromContext(ctx context.Context) Collector {
	if c, ok := ctx.Value(collectorKey).(Collector); ok {
		return c
	}
	return noopCollector{}
}

// StartTimer starts a timer on the context's collector.
func StartTimer(ctx context.Context, name string) Timer {
	return FromContext(ctx).Start(name)
}

type noopCollector struct{}

func (noopCollector) Start(string) Timer { return noopTimer{} }
func (noopCollector) Report(io.Writer)   {}

type noopTimer struct{}

func (noopTimer) End()               {}
func (noopTimer) Child(string) Timer { return noopTimer{} }
