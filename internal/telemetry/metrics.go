// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// =============================================================================
// METRICS SETUP
// =============================================================================

// Metrics bundles the instruments the rest of the process records on.
type Metrics struct {
	Queries        metric.Int64Counter
	QueryFailures  metric.Int64Counter
	Cancellations  metric.Int64Counter
	TextFrames     metric.Int64Counter
	DroppedRecords metric.Int64Counter
	ResponseTime   metric.Float64Histogram
	Speed          metric.Float64Histogram
}

// InitMetrics sets up the process-wide meter provider, exporting to a
// rotated file under logDir. The returned cleanup flushes and shuts the
// provider down; call it on exit.
func InitMetrics(ctx context.Context, logDir string) (*Metrics, func(), error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create metrics directory: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName("ragchat"),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	metricsFile := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "ragchat_metrics.log"),
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	exporter, err := stdoutmetric.New(
		stdoutmetric.WithWriter(metricsFile),
		stdoutmetric.WithPrettyPrint(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(
				exporter,
				sdkmetric.WithInterval(10*time.Second),
			),
		),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	meter := mp.Meter("ragchat")
	m, err := newInstruments(meter)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mp.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown meter provider", "error", err)
		}
		if err := metricsFile.Close(); err != nil {
			slog.Error("failed to close metrics file", "error", err)
		}
	}

	return m, cleanup, nil
}

func newInstruments(meter metric.Meter) (*Metrics, error) {
	var m Metrics
	var err error

	if m.Queries, err = meter.Int64Counter("ragchat.queries",
		metric.WithDescription("Queries sent to the answer service")); err != nil {
		return nil, err
	}
	if m.QueryFailures, err = meter.Int64Counter("ragchat.query_failures",
		metric.WithDescription("Queries that ended in an error")); err != nil {
		return nil, err
	}
	if m.Cancellations, err = meter.Int64Counter("ragchat.cancellations",
		metric.WithDescription("Streams cancelled by the user")); err != nil {
		return nil, err
	}
	if m.TextFrames, err = meter.Int64Counter("ragchat.text_frames",
		metric.WithDescription("Text frames appended to answers")); err != nil {
		return nil, err
	}
	if m.DroppedRecords, err = meter.Int64Counter("ragchat.dropped_metadata_records",
		metric.WithDescription("Malformed metadata records discarded")); err != nil {
		return nil, err
	}
	if m.ResponseTime, err = meter.Float64Histogram("ragchat.response_time_seconds",
		metric.WithDescription("Time from request to first text")); err != nil {
		return nil, err
	}
	if m.Speed, err = meter.Float64Histogram("ragchat.generation_speed",
		metric.WithDescription("Characters per second over the generation window")); err != nil {
		return nil, err
	}
	return &m, nil
}
