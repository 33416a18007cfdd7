// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package intel provides the multi-matrix node intelligence store.
//
// The intel package tracks software entities (functions, modules, components)
// as graph nodes, each carrying six parallel relationship views:
//
//   - a spatial entry (position, radius, importance)
//   - a hierarchy entry (parent, ordered children, depth)
//   - outgoing and incoming relationship edges (typed, weighted, banded)
//   - outgoing and incoming dataflow edges (data type, protocol, volume)
//
// # Symmetry Model
//
// Relationship and dataflow edges are stored as two directional views of the
// same logical edge: every outgoing entry recorded at the source has exactly
// one matching incoming entry at the target. The store maintains this
// invariant itself; callers never insert the two halves separately.
//
// # Thread Safety
//
// Store is safe for concurrent use. Mutations take the write lock and are
// atomic: on error no partial state is visible. Navigation and analysis
// operations are pure readers and may run with unbounded parallelism; they
// copy everything they return, so results never alias store internals.
//
// # Lifecycle
//
// A typical store lifecycle:
//  1. Create with NewStore(opts...)
//  2. Register nodes with CreateNode() and populate the matrices
//  3. Query with Node(), FindPath(), Analyze(), AnalyzeBidirectional()
//  4. Remove nodes with RemoveNode(); removal cascades across all matrices
package intel

import "errors"

// Sentinel errors for store operations.
var (
	// ErrUnknownNode is returned when an operation references a node id
	// that has not been registered with the store.
	ErrUnknownNode = errors.New("unknown node")

	// ErrDuplicateNode is returned when registering a node with an id that
	// already exists in the store.
	ErrDuplicateNode = errors.New("duplicate node id")

	// ErrInvalidCoordinate is returned when a spatial entry carries a
	// non-finite coordinate, a negative radius, or an importance outside
	// [0, 1].
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrInvalidStrength is returned when a relationship strength is
	// outside [0, 1].
	ErrInvalidStrength = errors.New("invalid strength")

	// ErrInvalidRelationType is returned when a relationship type is not
	// one of the declared enum values.
	ErrInvalidRelationType = errors.New("invalid relation type")

	// ErrInvalidDataflow is returned when a dataflow edge carries a
	// negative volume or an efficiency/selectivity outside [0, 1].
	ErrInvalidDataflow = errors.New("invalid dataflow")

	// ErrSelfParent is returned when a node is set as its own parent.
	ErrSelfParent = errors.New("node cannot be its own parent")

	// ErrCycleDetected is returned when a reparent would make a node a
	// descendant of itself. The hierarchy is a forest, never a general graph.
	ErrCycleDetected = errors.New("hierarchy cycle detected")

	// ErrDepthExceeded is returned when a reparent would push any node in
	// the moved subtree past the configured maximum hierarchy depth.
	ErrDepthExceeded = errors.New("maximum hierarchy depth exceeded")

	// ErrEdgeLimitExceeded is returned when a relationship insert would push
	// either endpoint past the configured per-node relationship edge cap.
	ErrEdgeLimitExceeded = errors.New("per-node relationship edge limit exceeded")

	// ErrCapacityExceeded is returned when a dataflow insert would push the
	// store past its configured global dataflow entry capacity.
	ErrCapacityExceeded = errors.New("dataflow capacity exceeded")
)
