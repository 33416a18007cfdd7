// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/latticelabs/nodeintel/intel"
	"github.com/latticelabs/nodeintel/pkg/extensions"
)

func setupLimitedRouter(store *intel.Store, limit float64, burst int) *gin.Engine {
	router := gin.New()
	router.Use(WriteRateLimiter(limit, burst))
	handlers := NewHandlers(store)
	v1 := router.Group("/v1")
	RegisterRoutes(v1, handlers)
	return router
}

func TestWriteRateLimiter_ThrottlesWrites(t *testing.T) {
	// 1 write/sec with burst 1: the second immediate write must be rejected.
	router := setupLimitedRouter(intel.NewStore(), 1, 1)

	w := doRequest(router, "POST", "/v1/intel/nodes", "{}")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected first write to pass, got %d", w.Code)
	}

	w = doRequest(router, "POST", "/v1/intel/nodes", "{}")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, w.Code)
	}
	if errResp := decodeError(t, w); errResp.Code != "RATE_LIMITED" {
		t.Errorf("expected code 'RATE_LIMITED', got %q", errResp.Code)
	}
}

func TestWriteRateLimiter_ReadsPassThrough(t *testing.T) {
	router := setupLimitedRouter(intel.NewStore(), 1, 1)

	// Exhaust the write budget.
	doRequest(router, "POST", "/v1/intel/nodes", "{}")
	doRequest(router, "POST", "/v1/intel/nodes", "{}")

	for i := 0; i < 5; i++ {
		w := doRequest(router, "GET", "/v1/intel/stats", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected reads to pass unthrottled, got %d", w.Code)
		}
	}
}

func TestWriteRateLimiter_Disabled(t *testing.T) {
	router := setupLimitedRouter(intel.NewStore(), 0, 0)

	for i := 0; i < 10; i++ {
		w := doRequest(router, "POST", "/v1/intel/nodes", "{}")
		if w.Code != http.StatusCreated {
			t.Fatalf("expected writes to pass with limiter disabled, got %d", w.Code)
		}
	}
}

// rejectingAuthProvider fails every token, mimicking a hosted deployment
// with an unreachable identity provider.
type rejectingAuthProvider struct{}

func (rejectingAuthProvider) Validate(_ context.Context, _ string) (*extensions.AuthInfo, error) {
	return nil, fmt.Errorf("token validation: %w", extensions.ErrUnauthorized)
}

func setupAuthRouter(provider extensions.AuthProvider) *gin.Engine {
	router := gin.New()
	router.Use(AuthMiddleware(provider))
	handlers := NewHandlers(intel.NewStore())
	v1 := router.Group("/v1")
	RegisterRoutes(v1, handlers)
	return router
}

func TestAuthMiddleware_RejectsOnProviderError(t *testing.T) {
	router := setupAuthRouter(rejectingAuthProvider{})

	w := doRequest(router, "GET", "/v1/intel/stats", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
	if errResp := decodeError(t, w); errResp.Code != "UNAUTHORIZED" {
		t.Errorf("expected code 'UNAUTHORIZED', got %q", errResp.Code)
	}
}

func TestAuthMiddleware_DefaultProviderPasses(t *testing.T) {
	router := setupAuthRouter(&extensions.NopAuthProvider{})

	w := doRequest(router, "POST", "/v1/intel/nodes", "{}")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
}
