// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extensions

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.AuthProvider == nil {
		t.Error("expected a default auth provider")
	}
	if opts.AuditLogger == nil {
		t.Error("expected a default audit logger")
	}
}

func TestWithDefaults_FillsNilFields(t *testing.T) {
	opts := ServiceOptions{}.WithDefaults()
	if opts.AuthProvider == nil || opts.AuditLogger == nil {
		t.Fatal("expected nil fields to be filled")
	}

	custom := &NopAuditLogger{}
	opts = ServiceOptions{AuditLogger: custom}.WithDefaults()
	if opts.AuditLogger != custom {
		t.Error("expected provided logger to be kept")
	}
}

func TestNopAuthProvider(t *testing.T) {
	p := &NopAuthProvider{}

	info, err := p.Validate(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.UserID != "local-user" {
		t.Errorf("expected 'local-user', got %q", info.UserID)
	}
	if !info.HasRole("admin") {
		t.Error("expected admin role")
	}
	if info.HasRole("auditor") {
		t.Error("did not expect auditor role")
	}
}

func TestNopAuditLogger(t *testing.T) {
	l := &NopAuditLogger{}
	if err := l.Log(context.Background(), AuditEvent{EventType: "node.create"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSlogAuditLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	l := NewSlogAuditLogger(logger)

	err := l.Log(context.Background(), AuditEvent{
		EventType:  "relationship.add",
		UserID:     "local-user",
		ResourceID: "auth-service",
		Outcome:    "success",
		Metadata:   map[string]any{"target": "user-db"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log entry: %v", err)
	}
	if entry["event_type"] != "relationship.add" {
		t.Errorf("expected event_type 'relationship.add', got %v", entry["event_type"])
	}
	if entry["target"] != "user-db" {
		t.Errorf("expected metadata target 'user-db', got %v", entry["target"])
	}
	if entry["timestamp"] == nil {
		t.Error("expected a timestamp to be set")
	}
}
