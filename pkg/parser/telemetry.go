package parser

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/specvital/jstd/pkg/parser"

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)
)

var (
	scanLatency metric.Float64Histogram
	filesParsed metric.Int64Counter
	testsFound  metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments once. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		scanLatency, err = meter.Float64Histogram(
			"jstd_scan_duration_seconds",
			metric.WithDescription("Duration of directory scans"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		filesParsed, err = meter.Int64Counter(
			"jstd_files_parsed_total",
			metric.WithDescription("Files handed to a strategy, by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		testsFound, err = meter.Int64Counter(
			"jstd_tests_found_total",
			metric.WithDescription("Test methods found in parsed files"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startScanSpan(ctx context.Context, candidates int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Scanner.Scan",
		trace.WithAttributes(
			attribute.Int("scan.candidates", candidates),
		),
	)
}

func startParseSpan(ctx context.Context, path string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Scanner.parseFile",
		trace.WithAttributes(
			attribute.String("file.path", path),
		),
	)
}

func setScanSpanResult(span trace.Span, stats ScanStats, err error) {
	span.SetAttributes(
		attribute.Int("scan.files_matched", stats.FilesMatched),
		attribute.Int("scan.files_failed", stats.FilesFailed),
		attribute.Int("scan.files_skipped", stats.FilesSkipped),
		attribute.Int("scan.configs_found", stats.ConfigsFound),
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

func recordScanMetrics(ctx context.Context, duration time.Duration, success bool) {
	if err := initMetrics(); err != nil {
		return
	}
	scanLatency.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.Bool("success", success),
	))
}

func recordParseMetrics(ctx context.Context, framework, outcome string, tests int) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("framework", framework),
		attribute.String("outcome", outcome),
	)
	filesParsed.Add(ctx, 1, attrs)
	if tests > 0 {
		testsFound.Add(ctx, int64(tests), metric.WithAttributes(attribute.String("framework", framework)))
	}
}
