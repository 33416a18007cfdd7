// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/latticelabs/nodeintel/api"
	"github.com/latticelabs/nodeintel/config"
	"github.com/latticelabs/nodeintel/intel"
	"github.com/latticelabs/nodeintel/pkg/extensions"
)

// startServer stands up the full service wiring in-process: default
// config, auth and rate-limit middleware, and all routes.
func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.DefaultConfig()
	opts, err := cfg.StoreOptions()
	if err != nil {
		t.Fatalf("build store options: %v", err)
	}
	store := intel.NewStore(opts...)
	handlers := api.NewHandlers(store).WithExtensions(extensions.DefaultOptions())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(api.AuthMiddleware(&extensions.NopAuthProvider{}))
	router.Use(api.WriteRateLimiter(cfg.Server.WriteRateLimit, cfg.Server.WriteRateBurst))
	v1 := router.Group("/v1")
	api.RegisterRoutes(v1, handlers)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("build request %s %s: %v", method, path, err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return resp.StatusCode, data
}

func mustStatus(t *testing.T, got, want int, context string, body []byte) {
	t.Helper()
	if got != want {
		t.Fatalf("%s: expected status %d, got %d (body: %s)", context, want, got, body)
	}
}

// TestIntelFlow_Lifecycle drives a service topology through the whole
// API surface: registration, spatial placement, hierarchy, edges,
// navigation, analysis, and finally a cascading removal.
func TestIntelFlow_Lifecycle(t *testing.T) {
	srv := startServer(t)

	// Registration.
	for _, id := range []string{"gateway", "auth", "billing", "ledger"} {
		code, body := call(t, srv, "POST", "/v1/intel/nodes", fmt.Sprintf(`{"id": %q}`, id))
		mustStatus(t, code, http.StatusCreated, "create "+id, body)
	}

	// Spatial placement.
	code, body := call(t, srv, "PUT", "/v1/intel/nodes/gateway/spatial",
		`{"x": 0, "y": 0, "z": 0, "radius": 5, "importance": 0.9}`)
	mustStatus(t, code, http.StatusOK, "spatial gateway", body)
	code, body = call(t, srv, "PUT", "/v1/intel/nodes/auth/spatial",
		`{"x": 3, "y": 4, "z": 0, "radius": 2, "importance": 0.7}`)
	mustStatus(t, code, http.StatusOK, "spatial auth", body)

	// Hierarchy: gateway is the root, auth and billing hang off it.
	for _, child := range []string{"auth", "billing"} {
		code, body = call(t, srv, "PUT", "/v1/intel/nodes/"+child+"/parent", `{"parent": "gateway"}`)
		mustStatus(t, code, http.StatusOK, "parent "+child, body)
	}
	code, body = call(t, srv, "PUT", "/v1/intel/nodes/ledger/parent", `{"parent": "billing"}`)
	mustStatus(t, code, http.StatusOK, "parent ledger", body)

	code, body = call(t, srv, "GET", "/v1/intel/nodes/ledger/path", "")
	mustStatus(t, code, http.StatusOK, "path ledger", body)
	var pathResp struct {
		Path []string `json:"path"`
	}
	if err := json.Unmarshal(body, &pathResp); err != nil {
		t.Fatalf("unmarshal path response: %v", err)
	}
	if len(pathResp.Path) != 3 || pathResp.Path[0] != "gateway" || pathResp.Path[2] != "ledger" {
		t.Fatalf("expected path [gateway billing ledger], got %v", pathResp.Path)
	}

	// Relationships and dataflows.
	code, body = call(t, srv, "POST", "/v1/intel/relationships",
		`{"source": "gateway", "target": "auth", "type": "dependency", "strength": 0.9}`)
	mustStatus(t, code, http.StatusCreated, "relationship gateway->auth", body)
	code, body = call(t, srv, "POST", "/v1/intel/relationships",
		`{"source": "auth", "target": "billing", "type": "communication", "strength": 0.6}`)
	mustStatus(t, code, http.StatusCreated, "relationship auth->billing", body)

	code, body = call(t, srv, "POST", "/v1/intel/dataflows",
		`{"source": "gateway", "target": "auth", "data_type": "event", "protocol": "grpc", "volume": 1200, "efficiency": 0.8, "selectivity": 0.4}`)
	mustStatus(t, code, http.StatusCreated, "dataflow gateway->auth", body)

	// Navigation across mixed edge kinds.
	code, body = call(t, srv, "POST", "/v1/intel/navigate",
		`{"source": "gateway", "target": "billing"}`)
	mustStatus(t, code, http.StatusOK, "navigate", body)
	var nav intel.NavigationResult
	if err := json.Unmarshal(body, &nav); err != nil {
		t.Fatalf("unmarshal navigation result: %v", err)
	}
	if !nav.Found {
		t.Fatal("expected a path from gateway to billing")
	}
	if len(nav.Path) == 0 || nav.Path[0] != "gateway" || nav.Path[len(nav.Path)-1] != "billing" {
		t.Fatalf("unexpected navigation path %v", nav.Path)
	}

	// Cross-matrix analysis.
	code, body = call(t, srv, "POST", "/v1/intel/analyze", `{"nodes": ["gateway", "auth"]}`)
	mustStatus(t, code, http.StatusOK, "analyze", body)
	var analysis struct {
		Reports []intel.CrossMatrixReport `json:"reports"`
	}
	if err := json.Unmarshal(body, &analysis); err != nil {
		t.Fatalf("unmarshal analysis: %v", err)
	}
	if len(analysis.Reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(analysis.Reports))
	}

	// Bidirectional balance: gateway only sends, never receives.
	code, body = call(t, srv, "GET", "/v1/intel/nodes/gateway/bidirectional", "")
	mustStatus(t, code, http.StatusOK, "bidirectional gateway", body)
	var bi intel.BidirectionalReport
	if err := json.Unmarshal(body, &bi); err != nil {
		t.Fatalf("unmarshal bidirectional report: %v", err)
	}
	if bi.OutboundVolume != 1200 {
		t.Fatalf("expected outbound volume 1200, got %v", bi.OutboundVolume)
	}

	// Removal cascade: deleting auth must clear its edges everywhere.
	code, body = call(t, srv, "DELETE", "/v1/intel/nodes/auth", "")
	mustStatus(t, code, http.StatusOK, "remove auth", body)

	code, body = call(t, srv, "GET", "/v1/intel/nodes/gateway", "")
	mustStatus(t, code, http.StatusOK, "get gateway", body)
	var node intel.NodeIntelligence
	if err := json.Unmarshal(body, &node); err != nil {
		t.Fatalf("unmarshal node: %v", err)
	}
	if len(node.RelationshipsOut) != 0 {
		t.Fatalf("expected gateway relationships cleared after removing auth, got %v", node.RelationshipsOut)
	}
	if len(node.DataflowsOut) != 0 {
		t.Fatalf("expected gateway dataflows cleared after removing auth, got %v", node.DataflowsOut)
	}

	code, body = call(t, srv, "GET", "/v1/intel/stats", "")
	mustStatus(t, code, http.StatusOK, "stats", body)
	var stats intel.StoreStats
	if err := json.Unmarshal(body, &stats); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if stats.NodeCount != 3 {
		t.Fatalf("expected 3 nodes after removal, got %d", stats.NodeCount)
	}
	if stats.RelationshipCount != 0 || stats.DataflowCount != 0 {
		t.Fatalf("expected no edges touching removed node, got %d relationships, %d dataflows",
			stats.RelationshipCount, stats.DataflowCount)
	}
}

// TestIntelFlow_ErrorPaths exercises the wire-level error contract.
func TestIntelFlow_ErrorPaths(t *testing.T) {
	srv := startServer(t)

	code, body := call(t, srv, "POST", "/v1/intel/nodes", `{"id": "solo"}`)
	mustStatus(t, code, http.StatusCreated, "create solo", body)

	cases := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"duplicate node", "POST", "/v1/intel/nodes", `{"id": "solo"}`, http.StatusConflict, "DUPLICATE_NODE"},
		{"unknown node", "GET", "/v1/intel/nodes/ghost", "", http.StatusNotFound, "UNKNOWN_NODE"},
		{"self parent", "PUT", "/v1/intel/nodes/solo/parent", `{"parent": "solo"}`, http.StatusBadRequest, "SELF_PARENT"},
		{"bad strength", "POST", "/v1/intel/relationships",
			`{"source": "solo", "target": "solo", "type": "dependency", "strength": 7}`,
			http.StatusBadRequest, "INVALID_STRENGTH"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := call(t, srv, tc.method, tc.path, tc.body)
			mustStatus(t, code, tc.wantCode, tc.name, body)
			var errResp struct {
				Code string `json:"code"`
			}
			if err := json.Unmarshal(body, &errResp); err != nil {
				t.Fatalf("unmarshal error response: %v", err)
			}
			if errResp.Code != tc.wantErr {
				t.Errorf("expected code %q, got %q", tc.wantErr, errResp.Code)
			}
		})
	}
}
