// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extensions

import (
	"context"
	"errors"
)

// ErrUnauthorized is returned when authentication fails. Hosted
// implementations should wrap this error with additional context.
var ErrUnauthorized = errors.New("unauthorized")

// AuthInfo contains identity information returned after successful
// authentication.
type AuthInfo struct {
	// UserID is the unique identifier for the authenticated user.
	// This is the only required field and must never be empty.
	UserID string

	// Roles contains the user's role memberships.
	// Common roles: "admin", "writer", "reader"
	Roles []string
}

// HasRole checks if the user has a specific role.
func (a *AuthInfo) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AuthProvider validates authentication tokens and returns user identity.
//
// Implementations must be safe for concurrent use by multiple goroutines.
//
// The default NopAuthProvider always returns a valid "local-user" with
// admin privileges, so a local deployment needs no auth infrastructure.
// Hosted versions validate tokens against an identity provider:
//
//	func (p *OIDCProvider) Validate(ctx context.Context, token string) (*AuthInfo, error) {
//	    claims, err := p.verifier.Verify(ctx, token)
//	    if err != nil {
//	        return nil, fmt.Errorf("token verification failed: %w", ErrUnauthorized)
//	    }
//	    return &AuthInfo{UserID: claims.Subject, Roles: claims.Groups}, nil
//	}
type AuthProvider interface {
	// Validate checks if the token is valid and returns the user's
	// identity. Returns ErrUnauthorized (or wrapped) if invalid.
	//
	// The token format is implementation-specific: a JWT, a session id,
	// or an API key. The no-op provider accepts anything, including the
	// empty string.
	Validate(ctx context.Context, token string) (*AuthInfo, error)
}

// NopAuthProvider is the default auth provider for local deployments.
//
// It accepts every token, including none at all, and reports a fixed
// local admin identity.
//
// Thread-safe: this implementation has no mutable state.
type NopAuthProvider struct{}

// Validate always succeeds with the local admin identity.
func (p *NopAuthProvider) Validate(ctx context.Context, token string) (*AuthInfo, error) {
	return &AuthInfo{
		UserID: "local-user",
		Roles:  []string{"admin"},
	}, nil
}
