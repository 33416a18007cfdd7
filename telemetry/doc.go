// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry provides OpenTelemetry-based observability for the node
// intelligence service.
//
// The package initializes the OTel SDK with opinionated defaults and leaves
// backend selection to exporter configuration: OTel IS the abstraction layer,
// so callers use otel.Tracer() and otel.Meter() directly once Init returns.
//
// Traces default to OTLP over gRPC (any OTLP-compatible backend works);
// metrics default to Prometheus, exposed for scraping via MetricsHandler().
// Both can be switched to stdout exporters for local debugging or disabled
// entirely.
//
// Standard OTel environment variables are honored:
//
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint (default: localhost:4317)
//   - OTEL_TRACES_EXPORTER: otlp, stdout, or none (default: otlp)
//   - OTEL_METRICS_EXPORTER: prometheus, stdout, or none (default: prometheus)
//   - NODEINTEL_ENV: environment name (default: development)
//
// All exported functions are safe for concurrent use after Init() returns.
package telemetry
