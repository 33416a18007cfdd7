// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package intel

import (
	"context"
	"fmt"
	"time"
)

// Path query configuration limits.
const (
	// DefaultPathMaxDepth is the default bound on path length in hops.
	DefaultPathMaxDepth = 10

	// MaxPathDepth is the maximum allowed bound on path length.
	MaxPathDepth = 100
)

// EdgeKind identifies which matrix a traversed edge came from.
type EdgeKind int

const (
	// EdgeKindHierarchy is a parent/child containment edge.
	EdgeKindHierarchy EdgeKind = iota

	// EdgeKindRelationship is a typed semantic relationship edge.
	EdgeKindRelationship

	// EdgeKindDataflow is a dataflow edge.
	EdgeKindDataflow
)

// String returns the string representation of the EdgeKind.
func (k EdgeKind) String() string {
	switch k {
	case EdgeKindHierarchy:
		return "hierarchy"
	case EdgeKindRelationship:
		return "relationship"
	case EdgeKindDataflow:
		return "dataflow"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so edge kinds appear by
// name in JSON.
func (k EdgeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EdgeKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "hierarchy":
		*k = EdgeKindHierarchy
	case "relationship":
		*k = EdgeKindRelationship
	case "dataflow":
		*k = EdgeKindDataflow
	default:
		return fmt.Errorf("unknown edge kind %q", string(text))
	}
	return nil
}

// PathStep is one traversed edge in a navigation result.
type PathStep struct {
	// From is the id of the step's origin node.
	From NodeID `json:"from"`

	// To is the id of the step's destination node.
	To NodeID `json:"to"`

	// Kind identifies the matrix the edge came from.
	Kind EdgeKind `json:"kind"`

	// RelationType is set for relationship edges, RelationUnknown otherwise.
	RelationType RelationType `json:"relation_type,omitempty"`

	// Strength is the edge weight used for tie-breaking: relationship
	// strength, dataflow efficiency, or 1 for hierarchy edges.
	Strength float64 `json:"strength"`
}

// NavigationResult is the immutable outcome of a path query.
type NavigationResult struct {
	// Source is the id the query started from.
	Source NodeID `json:"source"`

	// Target is the id the query searched for.
	Target NodeID `json:"target"`

	// Path contains node ids in path order, including Source and Target.
	// Empty when no path was found.
	Path []NodeID `json:"path"`

	// Steps contains the traversed edges, one fewer than len(Path).
	Steps []PathStep `json:"steps"`

	// Found is true when a path within the depth bound exists.
	Found bool `json:"found"`

	// Truncated is true when the search stopped early due to context
	// cancellation; the result is then a partial failure.
	Truncated bool `json:"truncated"`

	// Expanded is the number of nodes the search dequeued.
	Expanded int `json:"expanded"`
}

// PathOptions configures path query behavior.
type PathOptions struct {
	// MaxDepth bounds the path length in hops (default: 10, max: 100).
	MaxDepth int

	// RelationTypes restricts relationship-edge traversal to the listed
	// types. Empty means all types. Hierarchy and dataflow edges are
	// unaffected.
	RelationTypes []RelationType

	// PreferHierarchy breaks cost ties toward hierarchy edges.
	PreferHierarchy bool
}

// DefaultPathOptions returns sensible defaults for path queries.
func DefaultPathOptions() PathOptions {
	return PathOptions{MaxDepth: DefaultPathMaxDepth}
}

// PathOption is a functional option for configuring path queries.
type PathOption func(*PathOptions)

// WithPathMaxDepth sets the bound on path length.
//
// If d <= 0, uses default (10).
// If d > 100, clamps to 100.
func WithPathMaxDepth(d int) PathOption {
	return func(o *PathOptions) {
		if d <= 0 {
			o.MaxDepth = DefaultPathMaxDepth
		} else if d > MaxPathDepth {
			o.MaxDepth = MaxPathDepth
		} else {
			o.MaxDepth = d
		}
	}
}

// WithRelationTypes restricts relationship traversal to the given types.
func WithRelationTypes(types ...RelationType) PathOption {
	return func(o *PathOptions) {
		o.RelationTypes = types
	}
}

// WithPreferHierarchy breaks cost ties toward hierarchy edges.
func WithPreferHierarchy() PathOption {
	return func(o *PathOptions) {
		o.PreferHierarchy = true
	}
}

// candidate describes one node reached during the search.
type candidate struct {
	dist     int
	strength float64 // cumulative strength along the best path
	step     PathStep
	viaHier  bool // last step was a hierarchy edge, for PreferHierarchy
}

// FindPath finds the shortest path between two nodes.
//
// Description:
//
//	Breadth-first search over the union of hierarchy edges (traversed both
//	directions), outgoing relationship edges, and outgoing dataflow edges.
//	Every edge costs one hop; among equal-hop paths the one with the
//	higher cumulative strength wins, and WithPreferHierarchy breaks the
//	remaining ties toward hierarchy edges. Traversal never revisits a
//	node, so relationship/dataflow cycles terminate.
//
//	Cancellation is cooperative: the context is checked between node
//	expansions, and a canceled search returns a partial result with
//	Truncated set rather than an error.
//
// Inputs:
//
//	ctx - Context for cancellation. Must not be nil.
//	source - Starting node id.
//	target - Destination node id.
//	opts - Path options (MaxDepth, RelationTypes, PreferHierarchy).
//
// Outputs:
//
//	*NavigationResult - Path details; Found is false when no path exists
//	within MaxDepth. A zero-length successful path when source == target.
//	error - ErrUnknownNode when either endpoint is absent.
func (s *Store) FindPath(ctx context.Context, source, target NodeID, opts ...PathOption) (*NavigationResult, error) {
	start := time.Now()
	ctx, span := startNavSpan(ctx, source, target)
	defer span.End()

	options := DefaultPathOptions()
	for _, opt := range opts {
		opt(&options)
	}

	result := &NavigationResult{
		Source: source,
		Target: target,
		Path:   []NodeID{},
		Steps:  []PathStep{},
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.hierarchy[source]; !ok {
		return nil, fmt.Errorf("%w: source %s", ErrUnknownNode, source)
	}
	if _, ok := s.hierarchy[target]; !ok {
		return nil, fmt.Errorf("%w: target %s", ErrUnknownNode, target)
	}

	if source == target {
		result.Path = []NodeID{source}
		result.Found = true
		recordNavigation(ctx, time.Since(start), result)
		return result, nil
	}

	var allowed map[RelationType]bool
	if len(options.RelationTypes) > 0 {
		allowed = make(map[RelationType]bool, len(options.RelationTypes))
		for _, t := range options.RelationTypes {
			allowed[t] = true
		}
	}

	best := map[NodeID]*candidate{source: {}}
	queue := []NodeID{source}
	targetDist := -1

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			result.Truncated = true
			recordNavigation(ctx, time.Since(start), result)
			return result, nil
		}

		current := queue[0]
		queue = queue[1:]
		cur := best[current]
		result.Expanded++

		// All nodes at the target's depth were relaxed before this pop,
		// so the frontier beyond it cannot improve the answer.
		if targetDist >= 0 && cur.dist >= targetDist {
			break
		}
		if cur.dist >= options.MaxDepth {
			continue
		}

		relax := func(to NodeID, step PathStep, viaHier bool) {
			next, seen := best[to]
			switch {
			case !seen:
				best[to] = &candidate{
					dist:     cur.dist + 1,
					strength: cur.strength + step.Strength,
					step:     step,
					viaHier:  viaHier,
				}
				queue = append(queue, to)
				if to == target {
					targetDist = cur.dist + 1
				}
			case next.dist == cur.dist+1:
				cand := cur.strength + step.Strength
				if cand > next.strength ||
					(options.PreferHierarchy && cand == next.strength && viaHier && !next.viaHier) {
					next.strength = cand
					next.step = step
					next.viaHier = viaHier
				}
			}
		}

		// Hierarchy edges, both directions.
		entry := s.hierarchy[current]
		if entry.parent != "" {
			relax(entry.parent, PathStep{
				From: current, To: entry.parent, Kind: EdgeKindHierarchy, Strength: 1,
			}, true)
		}
		for _, child := range entry.children {
			relax(child, PathStep{
				From: current, To: child, Kind: EdgeKindHierarchy, Strength: 1,
			}, true)
		}

		// Outgoing relationship edges, optionally type-filtered.
		for _, e := range s.relOut[current] {
			if allowed != nil && !allowed[e.Type] {
				continue
			}
			relax(e.Target, PathStep{
				From: current, To: e.Target, Kind: EdgeKindRelationship,
				RelationType: e.Type, Strength: e.Strength,
			}, false)
		}

		// Outgoing dataflow edges; efficiency stands in for strength.
		for _, e := range s.flowOut[current] {
			relax(e.Target, PathStep{
				From: current, To: e.Target, Kind: EdgeKindDataflow, Strength: e.Efficiency,
			}, false)
		}
	}

	if targetDist < 0 {
		recordNavigation(ctx, time.Since(start), result)
		return result, nil
	}

	// Reconstruct by walking the best steps back from the target.
	steps := make([]PathStep, 0, targetDist)
	for cur := target; cur != source; cur = best[cur].step.From {
		steps = append(steps, best[cur].step)
	}
	path := make([]NodeID, 0, targetDist+1)
	path = append(path, source)
	for i := len(steps) - 1; i >= 0; i-- {
		path = append(path, steps[i].To)
		result.Steps = append(result.Steps, steps[i])
	}
	result.Path = path
	result.Found = true

	recordNavigation(ctx, time.Since(start), result)
	return result, nil
}
