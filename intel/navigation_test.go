// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// See NOTICE.txt for attribution and DCO sign-off requirements for
// contributions made with the assistance of generative AI systems.

package intel

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindPath_SameNode(t *testing.T) {
	s := newTestStore(t, "a")

	result, err := s.FindPath(context.Background(), "a", "a")
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, []NodeID{"a"}, result.Path)
	assert.Empty(t, result.Steps)
}

func TestFindPath_UnknownEndpoints(t *testing.T) {
	s := newTestStore(t, "a")

	_, err := s.FindPath(context.Background(), "a", "ghost")
	assert.ErrorIs(t, err, ErrUnknownNode)

	_, err = s.FindPath(context.Background(), "ghost", "a")
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestFindPath_DirectEdgeBeatsHierarchyChain(t *testing.T) {
	// a contains b contains c, and a depends directly on c. Hop count
	// minimization must pick the one-hop relationship edge over the
	// two-hop hierarchy descent.
	s := newTestStore(t, "a", "b", "c")
	require.NoError(t, s.SetParent("b", "a"))
	require.NoError(t, s.SetParent("c", "b"))
	_, err := s.AddRelationship("a", "c", RelationDependency, 0.6)
	require.NoError(t, err)

	result, err := s.FindPath(context.Background(), "a", "c")
	require.NoError(t, err)
	require.True(t, result.Found)
	assert.Equal(t, []NodeID{"a", "c"}, result.Path)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, EdgeKindRelationship, result.Steps[0].Kind)
	assert.Equal(t, RelationDependency, result.Steps[0].RelationType)
}

func TestFindPath_HierarchyTraversedBothDirections(t *testing.T) {
	// leaf1 and leaf2 share a parent but have no relationship or dataflow
	// edges; the only route is up one hierarchy edge and down another.
	s := newTestStore(t, "parent", "leaf1", "leaf2")
	require.NoError(t, s.SetParent("leaf1", "parent"))
	require.NoError(t, s.SetParent("leaf2", "parent"))

	result, err := s.FindPath(context.Background(), "leaf1", "leaf2")
	require.NoError(t, err)
	require.True(t, result.Found)
	assert.Equal(t, []NodeID{"leaf1", "parent", "leaf2"}, result.Path)
	for _, step := range result.Steps {
		assert.Equal(t, EdgeKindHierarchy, step.Kind)
		assert.Equal(t, 1.0, step.Strength)
	}
}

func TestFindPath_StrengthBreaksHopTies(t *testing.T) {
	// Two two-hop routes from s to t; the stronger one must win.
	s := newTestStore(t, "s", "weak", "strong", "t")
	_, err := s.AddRelationship("s", "weak", RelationCommunication, 0.3)
	require.NoError(t, err)
	_, err = s.AddRelationship("weak", "t", RelationCommunication, 0.3)
	require.NoError(t, err)
	_, err = s.AddRelationship("s", "strong", RelationCommunication, 0.9)
	require.NoError(t, err)
	_, err = s.AddRelationship("strong", "t", RelationCommunication, 0.9)
	require.NoError(t, err)

	result, err := s.FindPath(context.Background(), "s", "t")
	require.NoError(t, err)
	require.True(t, result.Found)
	assert.Equal(t, []NodeID{"s", "strong", "t"}, result.Path)
}

func TestFindPath_PreferHierarchy(t *testing.T) {
	// Two routes with equal hop count and equal cumulative strength, one
	// ending on a relationship edge and one on a hierarchy edge. Only
	// WithPreferHierarchy tips the scale.
	build := func(t *testing.T) *Store {
		t.Helper()
		s := newTestStore(t, "s", "rel", "hier", "t")
		_, err := s.AddRelationship("s", "rel", RelationCommunication, 1)
		require.NoError(t, err)
		_, err = s.AddRelationship("rel", "t", RelationCommunication, 1)
		require.NoError(t, err)
		_, err = s.AddRelationship("s", "hier", RelationCommunication, 1)
		require.NoError(t, err)
		require.NoError(t, s.SetParent("t", "hier"))
		return s
	}

	s := build(t)
	result, err := s.FindPath(context.Background(), "s", "t", WithPreferHierarchy())
	require.NoError(t, err)
	require.True(t, result.Found)
	require.Len(t, result.Steps, 2)
	assert.Equal(t, EdgeKindHierarchy, result.Steps[1].Kind)

	// Without the option the first-relaxed route sticks.
	s = build(t)
	result, err = s.FindPath(context.Background(), "s", "t")
	require.NoError(t, err)
	require.True(t, result.Found)
	assert.Equal(t, EdgeKindRelationship, result.Steps[1].Kind)
}

func TestFindPath_DataflowEdges(t *testing.T) {
	s := newTestStore(t, "producer", "consumer")
	_, err := s.AddDataflow("producer", "consumer", DataTypeStream, ProtocolGRPC, 500, 0.8, 0.4)
	require.NoError(t, err)

	result, err := s.FindPath(context.Background(), "producer", "consumer")
	require.NoError(t, err)
	require.True(t, result.Found)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, EdgeKindDataflow, result.Steps[0].Kind)
	assert.Equal(t, 0.8, result.Steps[0].Strength)

	// Dataflow edges are directional; the reverse query finds nothing.
	result, err = s.FindPath(context.Background(), "consumer", "producer")
	require.NoError(t, err)
	assert.False(t, result.Found)
}

func TestFindPath_MaxDepth(t *testing.T) {
	s := newTestStore(t, "n0", "n1", "n2", "n3")
	for i := 0; i < 3; i++ {
		from := NodeID(fmt.Sprintf("n%d", i))
		to := NodeID(fmt.Sprintf("n%d", i+1))
		_, err := s.AddRelationship(from, to, RelationCommunication, 0.5)
		require.NoError(t, err)
	}

	result, err := s.FindPath(context.Background(), "n0", "n3", WithPathMaxDepth(2))
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Empty(t, result.Path)

	result, err = s.FindPath(context.Background(), "n0", "n3", WithPathMaxDepth(3))
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Len(t, result.Steps, 3)
}

func TestFindPath_NoPath(t *testing.T) {
	s := newTestStore(t, "island1", "island2")

	result, err := s.FindPath(context.Background(), "island1", "island2")
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.False(t, result.Truncated)
	assert.Empty(t, result.Path)
	assert.Empty(t, result.Steps)
}

func TestFindPath_RelationTypeFilter(t *testing.T) {
	s := newTestStore(t, "a", "b")
	_, err := s.AddRelationship("a", "b", RelationDependency, 0.5)
	require.NoError(t, err)

	result, err := s.FindPath(context.Background(), "a", "b",
		WithRelationTypes(RelationCorrelation))
	require.NoError(t, err)
	assert.False(t, result.Found)

	result, err = s.FindPath(context.Background(), "a", "b",
		WithRelationTypes(RelationCorrelation, RelationDependency))
	require.NoError(t, err)
	assert.True(t, result.Found)
}

func TestFindPath_Cancellation(t *testing.T) {
	s := newTestStore(t, "a", "b", "c")
	_, err := s.AddRelationship("a", "b", RelationCommunication, 0.5)
	require.NoError(t, err)
	_, err = s.AddRelationship("b", "c", RelationCommunication, 0.5)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.FindPath(ctx, "a", "c")
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.False(t, result.Found)
}

func TestFindPath_CyclesTerminate(t *testing.T) {
	s := newTestStore(t, "a", "b", "c")
	for _, pair := range [][2]NodeID{{"a", "b"}, {"b", "c"}, {"c", "a"}} {
		_, err := s.AddRelationship(pair[0], pair[1], RelationCommunication, 0.5)
		require.NoError(t, err)
	}

	result, err := s.FindPath(context.Background(), "a", "c")
	require.NoError(t, err)
	require.True(t, result.Found)
	assert.Equal(t, []NodeID{"a", "b", "c"}, result.Path)
}

func TestWithPathMaxDepth_Bounds(t *testing.T) {
	opts := DefaultPathOptions()
	WithPathMaxDepth(-5)(&opts)
	assert.Equal(t, DefaultPathMaxDepth, opts.MaxDepth)

	WithPathMaxDepth(10_000)(&opts)
	assert.Equal(t, MaxPathDepth, opts.MaxDepth)

	WithPathMaxDepth(7)(&opts)
	assert.Equal(t, 7, opts.MaxDepth)
}
