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

func TestAnalyze_EmptyNode(t *testing.T) {
	s := newTestStore(t, "lonely")

	reports, err := s.Analyze(context.Background(), "lonely")
	require.NoError(t, err)
	require.Len(t, reports, 1)

	r := reports[0]
	assert.Equal(t, NodeID("lonely"), r.Node)
	assert.False(t, r.TargetOverlap.Valid)
	assert.False(t, r.StrengthVolumeCorrelation.Valid)
	assert.False(t, r.SpatialDistanceVariance.Valid)
	assert.False(t, r.SiblingProximity.Valid)
	assert.False(t, r.BandConcentration.Valid)
	assert.Equal(t, BandUnknown, r.DominantBand)
	assert.Empty(t, r.BandDistribution)
}

func TestAnalyze_UnknownNode(t *testing.T) {
	s := newTestStore(t, "a")

	_, err := s.Analyze(context.Background(), "a", "ghost")
	assert.ErrorIs(t, err, ErrUnknownNode)

	_, err = s.Analyze(context.Background())
	assert.Error(t, err)
}

func TestAnalyze_TargetOverlap(t *testing.T) {
	s := newTestStore(t, "hub", "both", "relonly", "flowonly")

	// "both" receives a relationship and a dataflow; the others one each.
	_, err := s.AddRelationship("hub", "both", RelationDependency, 0.5)
	require.NoError(t, err)
	_, err = s.AddRelationship("hub", "relonly", RelationDependency, 0.5)
	require.NoError(t, err)
	_, err = s.AddDataflow("hub", "both", DataTypeScalar, ProtocolHTTP, 10, 0.5, 0.5)
	require.NoError(t, err)
	_, err = s.AddDataflow("hub", "flowonly", DataTypeScalar, ProtocolHTTP, 10, 0.5, 0.5)
	require.NoError(t, err)

	reports, err := s.Analyze(context.Background(), "hub")
	require.NoError(t, err)

	// Intersection {both}, union {both, relonly, flowonly}.
	overlap := reports[0].TargetOverlap
	require.True(t, overlap.Valid)
	assert.InDelta(t, 1.0/3.0, overlap.Value, 1e-9)
	assert.Equal(t, 3, overlap.Samples)
}

func TestAnalyze_StrengthVolumeCorrelation(t *testing.T) {
	s := newTestStore(t, "hub", "a", "b", "c")

	// Volume scales linearly with strength across counterparts, so the
	// correlation is exactly 1.
	for i, target := range []NodeID{"a", "b", "c"} {
		strength := 0.2 * float64(i+1)
		_, err := s.AddRelationship("hub", target, RelationDependency, strength)
		require.NoError(t, err)
		_, err = s.AddDataflow("hub", target, DataTypeScalar, ProtocolHTTP, strength*1000, 0.5, 0.5)
		require.NoError(t, err)
	}

	reports, err := s.Analyze(context.Background(), "hub")
	require.NoError(t, err)

	corr := reports[0].StrengthVolumeCorrelation
	require.True(t, corr.Valid)
	assert.InDelta(t, 1.0, corr.Value, 1e-9)
	assert.Equal(t, 3, corr.Samples)
}

func TestAnalyze_CorrelationUndefinedWhenConstant(t *testing.T) {
	s := newTestStore(t, "hub", "a", "b")

	// Identical strengths on every counterpart leave zero variance; the
	// correlation must report insufficient data, not NaN.
	for i, target := range []NodeID{"a", "b"} {
		_, err := s.AddRelationship("hub", target, RelationDependency, 0.5)
		require.NoError(t, err)
		_, err = s.AddDataflow("hub", target, DataTypeScalar, ProtocolHTTP, float64(10*(i+1)), 0.5, 0.5)
		require.NoError(t, err)
	}

	reports, err := s.Analyze(context.Background(), "hub")
	require.NoError(t, err)
	assert.False(t, reports[0].StrengthVolumeCorrelation.Valid)
	assert.Equal(t, 2, reports[0].StrengthVolumeCorrelation.Samples)
}

func TestAnalyze_SpatialDistanceVariance(t *testing.T) {
	s := newTestStore(t, "hub", "near", "far", "unplaced")
	require.NoError(t, s.UpsertSpatial("hub", SpatialEntry{}))
	require.NoError(t, s.UpsertSpatial("near", SpatialEntry{X: 1}))
	require.NoError(t, s.UpsertSpatial("far", SpatialEntry{X: 5}))

	for _, target := range []NodeID{"near", "far", "unplaced"} {
		_, err := s.AddRelationship("hub", target, RelationDependency, 0.5)
		require.NoError(t, err)
	}

	reports, err := s.Analyze(context.Background(), "hub")
	require.NoError(t, err)

	// Distances 1 and 5: mean 3, population variance 4. The unplaced
	// neighbor contributes no sample.
	v := reports[0].SpatialDistanceVariance
	require.True(t, v.Valid)
	assert.InDelta(t, 4.0, v.Value, 1e-9)
	assert.Equal(t, 2, v.Samples)
}

func TestAnalyze_SpatialVarianceNeedsTwoSamples(t *testing.T) {
	s := newTestStore(t, "hub", "only")
	require.NoError(t, s.UpsertSpatial("hub", SpatialEntry{}))
	require.NoError(t, s.UpsertSpatial("only", SpatialEntry{X: 1}))
	_, err := s.AddRelationship("hub", "only", RelationDependency, 0.5)
	require.NoError(t, err)

	reports, err := s.Analyze(context.Background(), "hub")
	require.NoError(t, err)
	assert.False(t, reports[0].SpatialDistanceVariance.Valid)
	assert.Equal(t, 1, reports[0].SpatialDistanceVariance.Samples)
}

func TestAnalyze_SiblingProximity(t *testing.T) {
	s := newTestStore(t, "parent", "node", "close", "distant", "unplaced")
	for _, child := range []NodeID{"node", "close", "distant", "unplaced"} {
		require.NoError(t, s.SetParent(child, "parent"))
	}
	require.NoError(t, s.UpsertSpatial("node", SpatialEntry{Radius: 1}))
	require.NoError(t, s.UpsertSpatial("close", SpatialEntry{X: 1.5, Radius: 1}))
	require.NoError(t, s.UpsertSpatial("distant", SpatialEntry{X: 100, Radius: 1}))

	reports, err := s.Analyze(context.Background(), "node")
	require.NoError(t, err)

	// Of the two measurable siblings only "close" lies within the
	// combined radii; "unplaced" is skipped entirely.
	p := reports[0].SiblingProximity
	require.True(t, p.Valid)
	assert.InDelta(t, 0.5, p.Value, 1e-9)
	assert.Equal(t, 2, p.Samples)
}

func TestAnalyze_SiblingProximityRoot(t *testing.T) {
	s := newTestStore(t, "root")
	require.NoError(t, s.UpsertSpatial("root", SpatialEntry{}))

	reports, err := s.Analyze(context.Background(), "root")
	require.NoError(t, err)
	assert.False(t, reports[0].SiblingProximity.Valid)
}

func TestAnalyze_SubtreeBands(t *testing.T) {
	s := newTestStore(t, "root", "child", "grand", "x", "y", "z")
	require.NoError(t, s.SetParent("child", "root"))
	require.NoError(t, s.SetParent("grand", "child"))

	// Hierarchy(88) -> Low, Correlation(430) -> Medium, edges spread
	// across the subtree.
	_, err := s.AddRelationship("root", "x", RelationHierarchy, 0.5)
	require.NoError(t, err)
	_, err = s.AddRelationship("child", "y", RelationCorrelation, 0.5)
	require.NoError(t, err)
	_, err = s.AddRelationship("grand", "z", RelationCorrelation, 0.5)
	require.NoError(t, err)

	reports, err := s.Analyze(context.Background(), "root")
	require.NoError(t, err)

	r := reports[0]
	assert.Equal(t, map[FrequencyBand]int{BandLow: 1, BandMedium: 2}, r.BandDistribution)
	assert.Equal(t, BandMedium, r.DominantBand)
	require.True(t, r.BandConcentration.Valid)
	assert.InDelta(t, 2.0/3.0, r.BandConcentration.Value, 1e-9)

	// The grandchild's view covers only its own edges.
	reports, err = s.Analyze(context.Background(), "grand")
	require.NoError(t, err)
	assert.Equal(t, map[FrequencyBand]int{BandMedium: 1}, reports[0].BandDistribution)
}

func TestAnalyze_MultiNodeOrder(t *testing.T) {
	ids := make([]NodeID, 20)
	s := NewStore()
	for i := range ids {
		ids[i] = NodeID(fmt.Sprintf("node-%02d", i))
		require.NoError(t, s.RegisterNode(ids[i]))
	}

	reports, err := s.Analyze(context.Background(), ids...)
	require.NoError(t, err)
	require.Len(t, reports, len(ids))
	for i, r := range reports {
		assert.Equal(t, ids[i], r.Node)
	}
}

func TestAnalyze_Canceled(t *testing.T) {
	s := newTestStore(t, "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Analyze(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}
