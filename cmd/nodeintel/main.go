// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command nodeintel starts the node intelligence store API server.
//
// The store tracks a population of nodes across six per-node matrices
// (spatial, hierarchy, relationship in/out, dataflow in/out) and serves
// navigation and cross-matrix analysis queries over HTTP.
//
// Usage:
//
//	go run ./cmd/nodeintel serve
//	go run ./cmd/nodeintel serve --config config.yaml
//	go run ./cmd/nodeintel config init
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8086/v1/intel/health
//
//	# Register a node
//	curl -X POST http://localhost:8086/v1/intel/nodes \
//	  -H "Content-Type: application/json" \
//	  -d '{"id": "auth-service"}'
//
//	# Record a relationship
//	curl -X POST http://localhost:8086/v1/intel/relationships \
//	  -H "Content-Type: application/json" \
//	  -d '{"source": "auth-service", "target": "user-db", "type": "dependency", "strength": 0.9}'
//
//	# Find a path
//	curl -X POST http://localhost:8086/v1/intel/navigate \
//	  -H "Content-Type: application/json" \
//	  -d '{"source": "auth-service", "target": "user-db"}'
package main

import (
	"log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}
