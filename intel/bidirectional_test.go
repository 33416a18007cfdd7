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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeBidirectional_UnknownNode(t *testing.T) {
	s := NewStore()

	_, err := s.AnalyzeBidirectional(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestAnalyzeBidirectional_EmptyNode(t *testing.T) {
	s := newTestStore(t, "lonely")

	report, err := s.AnalyzeBidirectional(context.Background(), "lonely")
	require.NoError(t, err)

	assert.Empty(t, report.OutboundByType)
	assert.Empty(t, report.InboundByType)
	assert.Empty(t, report.OutOnlyTypes)
	assert.Empty(t, report.InOnlyTypes)
	assert.False(t, report.TypeSymmetry.Valid)
	assert.False(t, report.StrengthDifferential.Valid)
	assert.False(t, report.VolumeBalance.Valid)
	assert.Zero(t, report.OutboundVolume)
	assert.Zero(t, report.InboundVolume)
}

func TestAnalyzeBidirectional_TypeComparison(t *testing.T) {
	s := newTestStore(t, "node", "a", "b", "c")

	// Outbound: Dependency, Communication. Inbound: Communication,
	// Validation. Shared type set is {Communication} of a union of three.
	_, err := s.AddRelationship("node", "a", RelationDependency, 0.8)
	require.NoError(t, err)
	_, err = s.AddRelationship("node", "b", RelationCommunication, 0.6)
	require.NoError(t, err)
	_, err = s.AddRelationship("b", "node", RelationCommunication, 0.4)
	require.NoError(t, err)
	_, err = s.AddRelationship("c", "node", RelationValidation, 0.2)
	require.NoError(t, err)

	report, err := s.AnalyzeBidirectional(context.Background(), "node")
	require.NoError(t, err)

	assert.Equal(t, map[RelationType]int{
		RelationDependency:    1,
		RelationCommunication: 1,
	}, report.OutboundByType)
	assert.Equal(t, map[RelationType]int{
		RelationCommunication: 1,
		RelationValidation:    1,
	}, report.InboundByType)
	assert.Equal(t, []RelationType{RelationDependency}, report.OutOnlyTypes)
	assert.Equal(t, []RelationType{RelationValidation}, report.InOnlyTypes)

	require.True(t, report.TypeSymmetry.Valid)
	assert.InDelta(t, 1.0/3.0, report.TypeSymmetry.Value, 1e-9)

	// Mean out (0.8+0.6)/2 minus mean in (0.4+0.2)/2.
	require.True(t, report.StrengthDifferential.Valid)
	assert.InDelta(t, 0.4, report.StrengthDifferential.Value, 1e-9)
}

func TestAnalyzeBidirectional_StrengthNeedsBothSides(t *testing.T) {
	s := newTestStore(t, "node", "a")
	_, err := s.AddRelationship("node", "a", RelationDependency, 0.8)
	require.NoError(t, err)

	report, err := s.AnalyzeBidirectional(context.Background(), "node")
	require.NoError(t, err)
	assert.False(t, report.StrengthDifferential.Valid)
	assert.Equal(t, 1, report.StrengthDifferential.Samples)
}

func TestAnalyzeBidirectional_VolumeBalance(t *testing.T) {
	s := newTestStore(t, "node", "sink", "source")

	_, err := s.AddDataflow("node", "sink", DataTypeStream, ProtocolGRPC, 300, 0.5, 0.5)
	require.NoError(t, err)
	_, err = s.AddDataflow("source", "node", DataTypeEvent, ProtocolQueue, 100, 0.5, 0.5)
	require.NoError(t, err)

	report, err := s.AnalyzeBidirectional(context.Background(), "node")
	require.NoError(t, err)

	assert.Equal(t, 300.0, report.OutboundVolume)
	assert.Equal(t, 100.0, report.InboundVolume)
	require.True(t, report.VolumeBalance.Valid)
	assert.InDelta(t, 0.5, report.VolumeBalance.Value, 1e-9)
	assert.Equal(t, 2, report.VolumeBalance.Samples)
}

func TestAnalyzeBidirectional_PureConsumer(t *testing.T) {
	s := newTestStore(t, "node", "source")
	_, err := s.AddDataflow("source", "node", DataTypeDocument, ProtocolHTTP, 50, 0.5, 0.5)
	require.NoError(t, err)

	report, err := s.AnalyzeBidirectional(context.Background(), "node")
	require.NoError(t, err)
	require.True(t, report.VolumeBalance.Valid)
	assert.InDelta(t, -1.0, report.VolumeBalance.Value, 1e-9)
}
