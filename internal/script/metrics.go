package script

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("vuedoc.script")
	meter  = otel.Meter("vuedoc.script")
)

var (
	parseLatency     metric.Float64Histogram
	parseTotal       metric.Int64Counter
	entriesEmitted   metric.Int64Histogram
	modulesLoaded    metric.Int64Counter
	compositionCalls metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		parseLatency, err = meter.Float64Histogram(
			"vuedoc_parse_duration_seconds",
			metric.WithDescription("Duration of component parses"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parseTotal, err = meter.Int64Counter(
			"vuedoc_parse_total",
			metric.WithDescription("Total number of component parses"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		entriesEmitted, err = meter.Int64Histogram(
			"vuedoc_entries_emitted",
			metric.WithDescription("Number of entries emitted per component"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		modulesLoaded, err = meter.Int64Counter(
			"vuedoc_modules_loaded_total",
			metric.WithDescription("Imported modules parsed while resolving components"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		compositionCalls, err = meter.Int64Counter(
			"vuedoc_composition_calls_total",
			metric.WithDescription("Composition calls resolved through the registry"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordParseMetrics(ctx context.Context, r *run, duration time.Duration, entries int) {
	if err := initMetrics(); err != nil {
		return
	}
	success := len(r.errors()) == 0
	attrs := metric.WithAttributes(attribute.Bool("success", success))

	parseLatency.Record(ctx, duration.Seconds(), attrs)
	parseTotal.Add(ctx, 1, attrs)
	entriesEmitted.Record(ctx, int64(entries))
	modulesLoaded.Add(ctx, int64(len(r.modules)))
	compositionCalls.Add(ctx, int64(r.compositionCalls))
}

func startParseSpan(ctx context.Context, path string, scripts int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "script.Parse",
		trace.WithAttributes(
			attribute.String("vuedoc.file", path),
			attribute.Int("vuedoc.scripts", scripts),
		),
	)
}

func setParseSpanResult(span trace.Span, entries, errs, warnings int) {
	span.SetAttributes(
		attribute.Int("vuedoc.entry_count", entries),
		attribute.Int("vuedoc.error_count", errs),
		attribute.Int("vuedoc.warning_count", warnings),
	)
}
