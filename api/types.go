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
	"github.com/latticelabs/nodeintel/intel"
)

// CreateNodeRequest is the request body for POST /v1/intel/nodes.
type CreateNodeRequest struct {
	// ID is the caller-supplied node id. Optional; when empty the store
	// assigns a UUID-based id.
	ID string `json:"id"`
}

// CreateNodeResponse is the response for POST /v1/intel/nodes.
type CreateNodeResponse struct {
	// ID is the id of the created node.
	ID intel.NodeID `json:"id"`
}

// ListNodesResponse is the response for GET /v1/intel/nodes.
type ListNodesResponse struct {
	// Nodes lists all registered node ids in sorted order.
	Nodes []intel.NodeID `json:"nodes"`

	// Count is the number of registered nodes.
	Count int `json:"count"`
}

// SpatialRequest is the request body for PUT /v1/intel/nodes/:id/spatial.
type SpatialRequest struct {
	// X, Y, Z are the node's coordinates. Must be finite.
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`

	// Radius is the node's extent. Must be >= 0.
	Radius float64 `json:"radius"`

	// Importance is a ranking score in [0, 1].
	Importance float64 `json:"importance"`
}

// ParentRequest is the request body for PUT /v1/intel/nodes/:id/parent.
type ParentRequest struct {
	// Parent is the id of the containing node. Required.
	Parent string `json:"parent" binding:"required"`
}

// HierarchyResponse is the response for the parent endpoints.
type HierarchyResponse struct {
	// Node is the id the hierarchy view belongs to.
	Node intel.NodeID `json:"node"`

	// Hierarchy is the node's view of the containment forest.
	Hierarchy intel.HierarchyNode `json:"hierarchy"`
}

// PathFromRootResponse is the response for GET /v1/intel/nodes/:id/path.
type PathFromRootResponse struct {
	// Node is the id the path leads to.
	Node intel.NodeID `json:"node"`

	// Path lists node ids from the root down to the node, inclusive.
	Path []intel.NodeID `json:"path"`
}

// RelationshipRequest is the request body for POST /v1/intel/relationships.
type RelationshipRequest struct {
	// Source is the id of the originating node. Required.
	Source string `json:"source" binding:"required"`

	// Target is the id of the receiving node. Required.
	Target string `json:"target" binding:"required"`

	// Type is the relation type by name (e.g. "dependency"). Required.
	Type intel.RelationType `json:"type" binding:"required"`

	// Strength is the relationship weight in [0, 1].
	Strength float64 `json:"strength"`
}

// RemoveRelationshipRequest is the request body for
// DELETE /v1/intel/relationships.
type RemoveRelationshipRequest struct {
	// Source is the id of the originating node. Required.
	Source string `json:"source" binding:"required"`

	// Target is the id of the receiving node. Required.
	Target string `json:"target" binding:"required"`

	// Type is the relation type by name. Required.
	Type intel.RelationType `json:"type" binding:"required"`
}

// DataflowRequest is the request body for POST /v1/intel/dataflows.
type DataflowRequest struct {
	// Source is the id of the sending node. Required.
	Source string `json:"source" binding:"required"`

	// Target is the id of the receiving node. Required.
	Target string `json:"target" binding:"required"`

	// DataType classifies the payload by name (e.g. "stream").
	DataType intel.DataType `json:"data_type"`

	// Protocol classifies the transport by name (e.g. "grpc").
	Protocol intel.Protocol `json:"protocol"`

	// Volume is the transfer amount. Must be >= 0.
	Volume float64 `json:"volume"`

	// Efficiency is the useful fraction of the transfer, in [0, 1].
	Efficiency float64 `json:"efficiency"`

	// Selectivity is the fraction the target consumes, in [0, 1].
	Selectivity float64 `json:"selectivity"`
}

// RemoveDataflowRequest is the request body for DELETE /v1/intel/dataflows.
type RemoveDataflowRequest struct {
	// Source is the id of the sending node. Required.
	Source string `json:"source" binding:"required"`

	// Target is the id of the receiving node. Required.
	Target string `json:"target" binding:"required"`

	// DataType classifies the payload by name.
	DataType intel.DataType `json:"data_type"`

	// Protocol classifies the transport by name.
	Protocol intel.Protocol `json:"protocol"`
}

// NavigateRequest is the request body for POST /v1/intel/navigate.
type NavigateRequest struct {
	// Source is the id the search starts from. Required.
	Source string `json:"source" binding:"required"`

	// Target is the id the search looks for. Required.
	Target string `json:"target" binding:"required"`

	// MaxDepth bounds the path length in hops. Default: 10, max: 100.
	MaxDepth int `json:"max_depth"`

	// RelationTypes restricts relationship traversal to the named types.
	// Empty means all types.
	RelationTypes []intel.RelationType `json:"relation_types"`

	// PreferHierarchy breaks cost ties toward hierarchy edges.
	PreferHierarchy bool `json:"prefer_hierarchy"`
}

// AnalyzeRequest is the request body for POST /v1/intel/analyze.
type AnalyzeRequest struct {
	// Nodes lists the node ids to analyze. Required, non-empty.
	Nodes []string `json:"nodes" binding:"required,min=1"`
}

// AnalyzeResponse is the response for POST /v1/intel/analyze.
type AnalyzeResponse struct {
	// Reports contains one report per requested node, in request order.
	Reports []intel.CrossMatrixReport `json:"reports"`
}

// StatusResponse acknowledges a mutation that returns no payload.
type StatusResponse struct {
	// Status describes the outcome (e.g. "removed").
	Status string `json:"status"`
}

// HealthResponse is the response for GET /v1/intel/health.
type HealthResponse struct {
	// Status is "healthy".
	Status string `json:"status"`

	// Version is the service version.
	Version string `json:"version"`
}

// ReadyResponse is the response for GET /v1/intel/ready.
type ReadyResponse struct {
	// Ready is true once the store is accepting requests.
	Ready bool `json:"ready"`

	// NodeCount is the number of registered nodes.
	NodeCount int `json:"node_count"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the error code (optional).
	Code string `json:"code,omitempty"`

	// Details provides additional error context (optional).
	Details string `json:"details,omitempty"`
}
