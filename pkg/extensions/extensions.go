// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package extensions defines interfaces for deployment-specific
// functionality.
//
// The node intelligence store is designed as a fully functional local
// service that works without any external infrastructure. Multi-tenant
// deployments add authentication and compliance logging by providing
// concrete implementations of these interfaces and injecting them into
// the API layer; the local version uses no-op defaults for all of them.
//
// # Extension Categories
//
//   - auth.go: Authentication (AuthProvider)
//   - audit.go: Mutation audit logging (AuditLogger)
//
// # Usage (local)
//
//	opts := extensions.DefaultOptions()
//	handlers := api.NewHandlers(store).WithExtensions(opts)
//
// # Usage (hosted)
//
//	opts := extensions.ServiceOptions{
//	    AuthProvider: hosted.NewOIDCProvider(cfg),
//	    AuditLogger:  hosted.NewSIEMAuditor(cfg),
//	}
//	handlers := api.NewHandlers(store).WithExtensions(opts)
//
// # Thread Safety
//
// All interface implementations must be safe for concurrent use.
// Multiple goroutines may call methods simultaneously.
package extensions

// ServiceOptions groups all extension points for API configuration.
//
// All fields are optional; nil values are replaced with no-op defaults
// by WithDefaults.
type ServiceOptions struct {
	// AuthProvider validates authentication tokens.
	// Default: NopAuthProvider (always returns a valid local user)
	AuthProvider AuthProvider

	// AuditLogger records store mutations for compliance.
	// Default: NopAuditLogger (discards all events)
	AuditLogger AuditLogger
}

// DefaultOptions returns options with no-op implementations suitable
// for local single-user deployments.
func DefaultOptions() ServiceOptions {
	return ServiceOptions{
		AuthProvider: &NopAuthProvider{},
		AuditLogger:  &NopAuditLogger{},
	}
}

// WithDefaults fills any nil extension point with its no-op default.
func (o ServiceOptions) WithDefaults() ServiceOptions {
	if o.AuthProvider == nil {
		o.AuthProvider = &NopAuthProvider{}
	}
	if o.AuditLogger == nil {
		o.AuditLogger = &NopAuditLogger{}
	}
	return o
}
