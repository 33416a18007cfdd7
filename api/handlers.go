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
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/latticelabs/nodeintel/intel"
	"github.com/latticelabs/nodeintel/pkg/extensions"
	"github.com/latticelabs/nodeintel/pkg/validation"
)

// ServiceVersion is the node intelligence service version.
const ServiceVersion = "0.1.0"

// Handlers contains the HTTP handlers for the node intelligence store.
type Handlers struct {
	store *intel.Store
	exts  extensions.ServiceOptions
}

// NewHandlers creates handlers backed by the given store.
func NewHandlers(store *intel.Store) *Handlers {
	return &Handlers{store: store, exts: extensions.DefaultOptions()}
}

// WithExtensions sets deployment-specific extension points. Nil fields
// fall back to the no-op defaults.
//
// Outputs:
//
//	*Handlers - The handlers for method chaining
func (h *Handlers) WithExtensions(opts extensions.ServiceOptions) *Handlers {
	h.exts = opts.WithDefaults()
	return h
}

// audit records a successful mutation. Failures are logged but never
// fail the request.
func (h *Handlers) audit(c *gin.Context, eventType string, resourceID string, metadata map[string]any) {
	event := extensions.AuditEvent{
		EventType:  eventType,
		UserID:     userIDFromContext(c),
		ResourceID: resourceID,
		Outcome:    "success",
		Metadata:   metadata,
	}
	if err := h.exts.AuditLogger.Log(c.Request.Context(), event); err != nil {
		slog.Warn("Audit logging failed", "event_type", eventType, "error", err)
	}
}

// HandleCreateNode handles POST /v1/intel/nodes.
//
// Description:
//
//	Registers a node. When the request carries an id the node is
//	registered under it; otherwise the store assigns a UUID-based id.
//
// Request Body:
//
//	CreateNodeRequest
//
// Response:
//
//	201 Created: CreateNodeResponse
//	400 Bad Request: Validation error
//	409 Conflict: Duplicate node id
func (h *Handlers) HandleCreateNode(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleCreateNode")

	var req CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	var id intel.NodeID
	if req.ID == "" {
		id = h.store.CreateNode()
	} else {
		if err := validation.ValidateNodeID(req.ID); err != nil {
			logger.Warn("Invalid node id", "error", err)
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: err.Error(),
				Code:  "INVALID_NODE_ID",
			})
			return
		}
		id = intel.NodeID(req.ID)
		if err := h.store.RegisterNode(id); err != nil {
			writeStoreError(c, logger, err)
			return
		}
	}

	logger.Info("Node registered", "node", id)
	h.audit(c, "node.create", string(id), nil)
	c.JSON(http.StatusCreated, CreateNodeResponse{ID: id})
}

// HandleListNodes handles GET /v1/intel/nodes.
//
// Response:
//
//	200 OK: ListNodesResponse
func (h *Handlers) HandleListNodes(c *gin.Context) {
	getOrCreateRequestID(c)

	ids := h.store.NodeIDs()
	c.JSON(http.StatusOK, ListNodesResponse{Nodes: ids, Count: len(ids)})
}

// HandleGetNode handles GET /v1/intel/nodes/:id.
//
// Description:
//
//	Returns the node's full intelligence aggregate: spatial entry,
//	hierarchy view, and all four relationship and dataflow views.
//
// Path Parameters:
//
//	id: Node id (required)
//
// Response:
//
//	200 OK: intel.NodeIntelligence
//	404 Not Found: Unknown node
func (h *Handlers) HandleGetNode(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGetNode")

	node, err := h.store.Node(intel.NodeID(c.Param("id")))
	if err != nil {
		writeStoreError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, node)
}

// HandleRemoveNode handles DELETE /v1/intel/nodes/:id.
//
// Description:
//
//	Removes a node and severs every edge that references it. Children
//	are reparented to the removed node's parent, or promoted to roots.
//
// Path Parameters:
//
//	id: Node id (required)
//
// Response:
//
//	200 OK: StatusResponse
//	404 Not Found: Unknown node
func (h *Handlers) HandleRemoveNode(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleRemoveNode")

	id := intel.NodeID(c.Param("id"))
	if err := h.store.RemoveNode(id); err != nil {
		writeStoreError(c, logger, err)
		return
	}

	logger.Info("Node removed", "node", id)
	h.audit(c, "node.remove", string(id), nil)
	c.JSON(http.StatusOK, StatusResponse{Status: "removed"})
}

// HandleUpsertSpatial handles PUT /v1/intel/nodes/:id/spatial.
//
// Description:
//
//	Creates or replaces the node's spatial entry. Registers the node
//	implicitly when it does not exist yet.
//
// Request Body:
//
//	SpatialRequest
//
// Response:
//
//	200 OK: intel.SpatialEntry
//	400 Bad Request: Non-finite coordinate, negative radius, or
//	importance outside [0, 1]
func (h *Handlers) HandleUpsertSpatial(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleUpsertSpatial")

	var req SpatialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	// UpsertSpatial registers unknown nodes implicitly, so the id gets
	// the same vetting as explicit registration.
	if err := validation.ValidateNodeID(c.Param("id")); err != nil {
		logger.Warn("Invalid node id", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_NODE_ID",
		})
		return
	}

	id := intel.NodeID(c.Param("id"))
	entry := intel.SpatialEntry{
		X:          req.X,
		Y:          req.Y,
		Z:          req.Z,
		Radius:     req.Radius,
		Importance: req.Importance,
	}
	if err := h.store.UpsertSpatial(id, entry); err != nil {
		writeStoreError(c, logger, err)
		return
	}

	h.audit(c, "spatial.set", string(id), nil)
	c.JSON(http.StatusOK, entry)
}

// HandleSetParent handles PUT /v1/intel/nodes/:id/parent.
//
// Description:
//
//	Attaches the node under a parent in the containment forest. The
//	depth of the node's whole subtree is renumbered.
//
// Request Body:
//
//	ParentRequest
//
// Response:
//
//	200 OK: HierarchyResponse
//	400 Bad Request: Self-parent
//	404 Not Found: Unknown node
//	409 Conflict: Cycle or depth limit
func (h *Handlers) HandleSetParent(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleSetParent")

	var req ParentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	id := intel.NodeID(c.Param("id"))
	if err := h.store.SetParent(id, intel.NodeID(req.Parent)); err != nil {
		writeStoreError(c, logger, err)
		return
	}

	hier, err := h.store.Hierarchy(id)
	if err != nil {
		writeStoreError(c, logger, err)
		return
	}

	logger.Info("Parent set", "node", id, "parent", req.Parent)
	h.audit(c, "hierarchy.set_parent", string(id), map[string]any{"parent": req.Parent})
	c.JSON(http.StatusOK, HierarchyResponse{Node: id, Hierarchy: hier})
}

// HandleClearParent handles DELETE /v1/intel/nodes/:id/parent.
//
// Description:
//
//	Detaches the node from its parent, making it a root. A node that is
//	already a root is left unchanged.
//
// Response:
//
//	200 OK: HierarchyResponse
//	404 Not Found: Unknown node
func (h *Handlers) HandleClearParent(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleClearParent")

	id := intel.NodeID(c.Param("id"))
	if err := h.store.ClearParent(id); err != nil {
		writeStoreError(c, logger, err)
		return
	}

	hier, err := h.store.Hierarchy(id)
	if err != nil {
		writeStoreError(c, logger, err)
		return
	}

	h.audit(c, "hierarchy.clear_parent", string(id), nil)
	c.JSON(http.StatusOK, HierarchyResponse{Node: id, Hierarchy: hier})
}

// HandlePathFromRoot handles GET /v1/intel/nodes/:id/path.
//
// Response:
//
//	200 OK: PathFromRootResponse
//	404 Not Found: Unknown node
func (h *Handlers) HandlePathFromRoot(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandlePathFromRoot")

	id := intel.NodeID(c.Param("id"))
	path, err := h.store.PathFromRoot(id)
	if err != nil {
		writeStoreError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, PathFromRootResponse{Node: id, Path: path})
}

// HandleAddRelationship handles POST /v1/intel/relationships.
//
// Description:
//
//	Records a typed relationship between two registered nodes. The edge
//	is stored symmetrically: an outgoing view at the source and an
//	incoming view at the target. The response carries the insert-time
//	frequency classification.
//
// Request Body:
//
//	RelationshipRequest
//
// Response:
//
//	201 Created: intel.RelationshipEdge
//	400 Bad Request: Invalid strength or relation type
//	404 Not Found: Unknown endpoint
//	409 Conflict: Per-node edge limit reached
func (h *Handlers) HandleAddRelationship(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAddRelationship")

	var req RelationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	edge, err := h.store.AddRelationship(
		intel.NodeID(req.Source), intel.NodeID(req.Target), req.Type, req.Strength)
	if err != nil {
		writeStoreError(c, logger, err)
		return
	}

	logger.Info("Relationship added",
		"source", req.Source,
		"target", req.Target,
		"type", req.Type.String(),
		"band", edge.Band.String())
	h.audit(c, "relationship.add", req.Source, map[string]any{
		"target": req.Target,
		"type":   req.Type.String(),
	})
	c.JSON(http.StatusCreated, edge)
}

// HandleRemoveRelationship handles DELETE /v1/intel/relationships.
//
// Description:
//
//	Removes a relationship. Both directional views are deleted; a
//	missing edge is not an error.
//
// Request Body:
//
//	RemoveRelationshipRequest
//
// Response:
//
//	200 OK: StatusResponse
//	404 Not Found: Unknown endpoint
func (h *Handlers) HandleRemoveRelationship(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleRemoveRelationship")

	var req RemoveRelationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	err := h.store.RemoveRelationship(
		intel.NodeID(req.Source), intel.NodeID(req.Target), req.Type)
	if err != nil {
		writeStoreError(c, logger, err)
		return
	}

	h.audit(c, "relationship.remove", req.Source, map[string]any{
		"target": req.Target,
		"type":   req.Type.String(),
	})
	c.JSON(http.StatusOK, StatusResponse{Status: "removed"})
}

// HandleAddDataflow handles POST /v1/intel/dataflows.
//
// Description:
//
//	Records a dataflow between two registered nodes, stored
//	symmetrically like relationships. Counts one logical edge against
//	the store-wide dataflow capacity.
//
// Request Body:
//
//	DataflowRequest
//
// Response:
//
//	201 Created: intel.DataflowEdge
//	400 Bad Request: Invalid volume, efficiency, or selectivity
//	404 Not Found: Unknown endpoint
//	409 Conflict: Dataflow capacity reached
func (h *Handlers) HandleAddDataflow(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAddDataflow")

	var req DataflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	edge, err := h.store.AddDataflow(
		intel.NodeID(req.Source), intel.NodeID(req.Target),
		req.DataType, req.Protocol,
		req.Volume, req.Efficiency, req.Selectivity)
	if err != nil {
		writeStoreError(c, logger, err)
		return
	}

	logger.Info("Dataflow added",
		"source", req.Source,
		"target", req.Target,
		"data_type", req.DataType.String(),
		"protocol", req.Protocol.String())
	h.audit(c, "dataflow.add", req.Source, map[string]any{
		"target":   req.Target,
		"protocol": req.Protocol.String(),
	})
	c.JSON(http.StatusCreated, edge)
}

// HandleRemoveDataflow handles DELETE /v1/intel/dataflows.
//
// Request Body:
//
//	RemoveDataflowRequest
//
// Response:
//
//	200 OK: StatusResponse
//	404 Not Found: Unknown endpoint
func (h *Handlers) HandleRemoveDataflow(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleRemoveDataflow")

	var req RemoveDataflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	err := h.store.RemoveDataflow(
		intel.NodeID(req.Source), intel.NodeID(req.Target),
		req.DataType, req.Protocol)
	if err != nil {
		writeStoreError(c, logger, err)
		return
	}

	h.audit(c, "dataflow.remove", req.Source, map[string]any{
		"target":   req.Target,
		"protocol": req.Protocol.String(),
	})
	c.JSON(http.StatusOK, StatusResponse{Status: "removed"})
}

// HandleNavigate handles POST /v1/intel/navigate.
//
// Description:
//
//	Finds a shortest path between two nodes across hierarchy,
//	relationship, and dataflow edges. A missing path is a normal
//	outcome, returned with found=false. A canceled request returns the
//	partial result with truncated=true.
//
// Request Body:
//
//	NavigateRequest
//
// Response:
//
//	200 OK: intel.NavigationResult
//	404 Not Found: Unknown endpoint
func (h *Handlers) HandleNavigate(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleNavigate")

	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	opts := []intel.PathOption{intel.WithPathMaxDepth(req.MaxDepth)}
	if len(req.RelationTypes) > 0 {
		opts = append(opts, intel.WithRelationTypes(req.RelationTypes...))
	}
	if req.PreferHierarchy {
		opts = append(opts, intel.WithPreferHierarchy())
	}

	result, err := h.store.FindPath(c.Request.Context(),
		intel.NodeID(req.Source), intel.NodeID(req.Target), opts...)
	if err != nil {
		writeStoreError(c, logger, err)
		return
	}

	logger.Info("Navigation complete",
		"source", req.Source,
		"target", req.Target,
		"found", result.Found,
		"truncated", result.Truncated,
		"hops", len(result.Steps),
		"expanded", result.Expanded)
	c.JSON(http.StatusOK, result)
}

// HandleAnalyze handles POST /v1/intel/analyze.
//
// Description:
//
//	Computes cross-matrix statistics for each requested node. Metrics
//	that lack enough data come back with valid=false rather than as
//	errors.
//
// Request Body:
//
//	AnalyzeRequest
//
// Response:
//
//	200 OK: AnalyzeResponse
//	400 Bad Request: Empty node list
//	404 Not Found: Unknown node in the list
func (h *Handlers) HandleAnalyze(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAnalyze")

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	ids := make([]intel.NodeID, len(req.Nodes))
	for i, n := range req.Nodes {
		ids[i] = intel.NodeID(n)
	}

	reports, err := h.store.Analyze(c.Request.Context(), ids...)
	if err != nil {
		writeStoreError(c, logger, err)
		return
	}

	logger.Info("Analysis complete", "nodes", len(reports))
	c.JSON(http.StatusOK, AnalyzeResponse{Reports: reports})
}

// HandleBidirectional handles GET /v1/intel/nodes/:id/bidirectional.
//
// Description:
//
//	Compares a node's outgoing and incoming relationship and dataflow
//	views: type symmetry, strength differential, and volume balance.
//
// Response:
//
//	200 OK: intel.BidirectionalReport
//	404 Not Found: Unknown node
func (h *Handlers) HandleBidirectional(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleBidirectional")

	report, err := h.store.AnalyzeBidirectional(c.Request.Context(), intel.NodeID(c.Param("id")))
	if err != nil {
		writeStoreError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// HandleStats handles GET /v1/intel/stats.
//
// Response:
//
//	200 OK: intel.StoreStats
func (h *Handlers) HandleStats(c *gin.Context) {
	getOrCreateRequestID(c)
	c.JSON(http.StatusOK, h.store.Stats())
}

// HandleHealth handles GET /v1/intel/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: ServiceVersion,
	})
}

// HandleReady handles GET /v1/intel/ready.
func (h *Handlers) HandleReady(c *gin.Context) {
	c.JSON(http.StatusOK, ReadyResponse{
		Ready:     true,
		NodeCount: h.store.Stats().NodeCount,
	})
}

// writeStoreError maps a store error to an HTTP status and error code.
func writeStoreError(c *gin.Context, logger *slog.Logger, err error) {
	statusCode := http.StatusInternalServerError
	errCode := "INTERNAL_ERROR"

	switch {
	case errors.Is(err, intel.ErrUnknownNode):
		statusCode = http.StatusNotFound
		errCode = "UNKNOWN_NODE"
	case errors.Is(err, intel.ErrDuplicateNode):
		statusCode = http.StatusConflict
		errCode = "DUPLICATE_NODE"
	case errors.Is(err, intel.ErrInvalidCoordinate):
		statusCode = http.StatusBadRequest
		errCode = "INVALID_COORDINATE"
	case errors.Is(err, intel.ErrInvalidStrength):
		statusCode = http.StatusBadRequest
		errCode = "INVALID_STRENGTH"
	case errors.Is(err, intel.ErrInvalidRelationType):
		statusCode = http.StatusBadRequest
		errCode = "INVALID_RELATION_TYPE"
	case errors.Is(err, intel.ErrInvalidDataflow):
		statusCode = http.StatusBadRequest
		errCode = "INVALID_DATAFLOW"
	case errors.Is(err, intel.ErrSelfParent):
		statusCode = http.StatusBadRequest
		errCode = "SELF_PARENT"
	case errors.Is(err, intel.ErrCycleDetected):
		statusCode = http.StatusConflict
		errCode = "CYCLE_DETECTED"
	case errors.Is(err, intel.ErrDepthExceeded):
		statusCode = http.StatusConflict
		errCode = "DEPTH_EXCEEDED"
	case errors.Is(err, intel.ErrEdgeLimitExceeded):
		statusCode = http.StatusConflict
		errCode = "EDGE_LIMIT_EXCEEDED"
	case errors.Is(err, intel.ErrCapacityExceeded):
		statusCode = http.StatusConflict
		errCode = "CAPACITY_EXCEEDED"
	}

	if statusCode >= http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
	} else {
		logger.Warn("Request rejected", "error", err, "code", errCode)
	}
	c.JSON(statusCode, ErrorResponse{
		Error: err.Error(),
		Code:  errCode,
	})
}

// getOrCreateRequestID gets or creates a request ID.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
