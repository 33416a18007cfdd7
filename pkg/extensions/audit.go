// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extensions

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent represents a store mutation for compliance logging.
//
// Events are categorized by type for filtering and alerting:
//   - Node lifecycle: "node.create", "node.remove"
//   - Matrix updates: "spatial.set", "hierarchy.set_parent",
//     "hierarchy.clear_parent"
//   - Edges: "relationship.add", "relationship.remove",
//     "dataflow.add", "dataflow.remove"
type AuditEvent struct {
	// EventType categorizes the event.
	// Format: "category.action" (e.g., "relationship.add")
	EventType string

	// Timestamp is when the event occurred (always UTC).
	// If zero, implementations should set it to time.Now().UTC().
	Timestamp time.Time

	// UserID identifies who performed the action.
	// Use "anonymous" when no identity is available.
	UserID string

	// ResourceID is the node or edge the action touched (optional).
	ResourceID string

	// Outcome indicates the result: "success" or "rejected".
	Outcome string

	// Metadata holds additional event-specific data, such as the peer
	// node of an edge mutation or the rejection code.
	Metadata map[string]any
}

// AuditLogger records store mutations.
//
// The default NopAuditLogger discards all events, which is appropriate
// for local single-user deployments. Hosted versions send events to a
// SIEM or compliance database.
//
// Implementations must be safe for concurrent use and should return
// quickly; buffer and flush asynchronously if persistence is slow.
type AuditLogger interface {
	// Log records an event. Implementations should set Timestamp if it
	// is zero and must not retain the Metadata map beyond the call.
	Log(ctx context.Context, event AuditEvent) error
}

// NopAuditLogger is the default audit logger for local deployments.
//
// It discards all events without recording them.
//
// Thread-safe: this implementation has no mutable state.
type NopAuditLogger struct{}

// Log discards the event.
func (l *NopAuditLogger) Log(ctx context.Context, event AuditEvent) error {
	return nil
}

// SlogAuditLogger writes audit events to a structured logger. It gives
// small deployments a mutation trail in the service log without any
// external audit infrastructure.
type SlogAuditLogger struct {
	logger *slog.Logger
}

// NewSlogAuditLogger creates an audit logger writing to the given
// slog.Logger. A nil logger uses slog.Default().
func NewSlogAuditLogger(logger *slog.Logger) *SlogAuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAuditLogger{logger: logger}
}

// Log writes the event at info level under the "audit" message.
func (l *SlogAuditLogger) Log(ctx context.Context, event AuditEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	attrs := []any{
		"event_type", event.EventType,
		"user_id", event.UserID,
		"resource_id", event.ResourceID,
		"outcome", event.Outcome,
		"timestamp", event.Timestamp,
	}
	for k, v := range event.Metadata {
		attrs = append(attrs, k, v)
	}
	l.logger.InfoContext(ctx, "audit", attrs...)
	return nil
}
