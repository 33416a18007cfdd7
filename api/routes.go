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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all node intelligence routes with the router.
//
// Description:
//
//	Registers all /v1/intel/* endpoints with the given Gin router group.
//	The router group should already have any required middleware applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Node Endpoints:
//
//	POST /v1/intel/nodes - Register a node
//	GET  /v1/intel/nodes - List node ids
//	GET  /v1/intel/nodes/:id - Get a node's full aggregate
//	DELETE /v1/intel/nodes/:id - Remove a node and sever its edges
//	PUT  /v1/intel/nodes/:id/spatial - Set the spatial entry
//	PUT  /v1/intel/nodes/:id/parent - Attach under a parent
//	DELETE /v1/intel/nodes/:id/parent - Detach to a root
//	GET  /v1/intel/nodes/:id/path - Path from the hierarchy root
//
// Edge Endpoints:
//
//	POST /v1/intel/relationships - Add a relationship
//	DELETE /v1/intel/relationships - Remove a relationship
//	POST /v1/intel/dataflows - Add a dataflow
//	DELETE /v1/intel/dataflows - Remove a dataflow
//
// Query Endpoints:
//
//	POST /v1/intel/navigate - Find a path between two nodes
//	POST /v1/intel/analyze - Cross-matrix statistics per node
//	GET  /v1/intel/nodes/:id/bidirectional - In/out flow comparison
//	GET  /v1/intel/stats - Store statistics
//
// Health Endpoints:
//
//	GET  /v1/intel/health - Health check
//	GET  /v1/intel/ready - Readiness check
//
// Example:
//
//	store := intel.NewStore()
//	handlers := api.NewHandlers(store)
//
//	v1 := router.Group("/v1")
//	api.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	intel := rg.Group("/intel")
	{
		// Node lifecycle
		intel.POST("/nodes", handlers.HandleCreateNode)
		intel.GET("/nodes", handlers.HandleListNodes)
		intel.GET("/nodes/:id", handlers.HandleGetNode)
		intel.DELETE("/nodes/:id", handlers.HandleRemoveNode)

		// Spatial matrix
		intel.PUT("/nodes/:id/spatial", handlers.HandleUpsertSpatial)

		// Hierarchy matrix
		intel.PUT("/nodes/:id/parent", handlers.HandleSetParent)
		intel.DELETE("/nodes/:id/parent", handlers.HandleClearParent)
		intel.GET("/nodes/:id/path", handlers.HandlePathFromRoot)

		// Relationship matrices
		intel.POST("/relationships", handlers.HandleAddRelationship)
		intel.DELETE("/relationships", handlers.HandleRemoveRelationship)

		// Dataflow matrices
		intel.POST("/dataflows", handlers.HandleAddDataflow)
		intel.DELETE("/dataflows", handlers.HandleRemoveDataflow)

		// Navigation and analysis
		intel.POST("/navigate", handlers.HandleNavigate)
		intel.POST("/analyze", handlers.HandleAnalyze)
		intel.GET("/nodes/:id/bidirectional", handlers.HandleBidirectional)
		intel.GET("/stats", handlers.HandleStats)

		// Health checks
		intel.GET("/health", handlers.HandleHealth)
		intel.GET("/ready", handlers.HandleReady)
	}
}
