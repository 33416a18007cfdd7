// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package intel

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for store operations.
var (
	tracer = otel.Tracer("nodeintel.intel")
	meter  = otel.Meter("nodeintel.intel")
)

// Metrics for store mutations and read engines.
var (
	mutationTotal   metric.Int64Counter
	mutationLatency metric.Float64Histogram
	navLatency      metric.Float64Histogram
	analysisLatency metric.Float64Histogram
	pathLengthHist  metric.Int64Histogram
	nodesAnalyzed   metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		mutationTotal, err = meter.Int64Counter(
			"intel_mutations_total",
			metric.WithDescription("Total number of store mutation operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		mutationLatency, err = meter.Float64Histogram(
			"intel_mutation_duration_seconds",
			metric.WithDescription("Duration of store mutation operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		navLatency, err = meter.Float64Histogram(
			"intel_navigation_duration_seconds",
			metric.WithDescription("Duration of path queries"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		analysisLatency, err = meter.Float64Histogram(
			"intel_analysis_duration_seconds",
			metric.WithDescription("Duration of cross-matrix and bidirectional analyses"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		pathLengthHist, err = meter.Int64Histogram(
			"intel_path_length_hops",
			metric.WithDescription("Hop count of successful path queries"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		nodesAnalyzed, err = meter.Int64Histogram(
			"intel_nodes_analyzed",
			metric.WithDescription("Number of nodes per analysis request"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordMutation records metrics for a mutation operation.
func recordMutation(op string, duration time.Duration, opErr error) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("op", op),
		attribute.Bool("success", opErr == nil),
	)
	ctx := context.Background()
	mutationTotal.Add(ctx, 1, attrs)
	mutationLatency.Record(ctx, duration.Seconds(), attrs)
}

// recordNavigation records metrics for a path query.
func recordNavigation(ctx context.Context, duration time.Duration, result *NavigationResult) {
	if err := initMetrics(); err != nil {
		return
	}

	navLatency.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.Bool("found", result != nil && result.Found)),
	)
	if result != nil && result.Found {
		pathLengthHist.Record(ctx, int64(len(result.Path)-1))
	}
}

// recordAnalysis records metrics for an analysis operation.
func recordAnalysis(ctx context.Context, kind string, duration time.Duration, nodeCount int) {
	if err := initMetrics(); err != nil {
		return
	}

	analysisLatency.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("kind", kind)),
	)
	nodesAnalyzed.Record(ctx, int64(nodeCount),
		metric.WithAttributes(attribute.String("kind", kind)),
	)
}

// startNavSpan creates a span for a path query.
func startNavSpan(ctx context.Context, source, target NodeID) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Store.FindPath",
		trace.WithAttributes(
			attribute.String("intel.source", string(source)),
			attribute.String("intel.target", string(target)),
		),
	)
}

// startAnalysisSpan creates a span for an analysis operation.
func startAnalysisSpan(ctx context.Context, kind string, nodeCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Store."+kind,
		trace.WithAttributes(
			attribute.Int("intel.node_count", nodeCount),
		),
	)
}
