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
	"sort"
	"time"
)

// BidirectionalReport compares a node's outgoing edge sets against its
// incoming ones.
//
// The storage layer keeps each logical edge strictly symmetric, so the
// asymmetries reported here are across relation types and counterparts:
// a node may send Dependency edges while receiving only Validation edges,
// or push far more dataflow volume than it receives. Reports are
// descriptive only and never mutate the matrices.
type BidirectionalReport struct {
	// Node is the analyzed node's id.
	Node NodeID `json:"node"`

	// OutboundByType counts the node's outgoing relationship edges per type.
	OutboundByType map[RelationType]int `json:"outbound_by_type"`

	// InboundByType counts the node's incoming relationship edges per type.
	InboundByType map[RelationType]int `json:"inbound_by_type"`

	// OutOnlyTypes lists relation types present outbound but absent
	// inbound, sorted.
	OutOnlyTypes []RelationType `json:"out_only_types"`

	// InOnlyTypes lists relation types present inbound but absent
	// outbound, sorted.
	InOnlyTypes []RelationType `json:"in_only_types"`

	// TypeSymmetry is the Jaccard overlap of the outbound and inbound
	// relation type sets.
	TypeSymmetry Stat `json:"type_symmetry"`

	// StrengthDifferential is mean outbound strength minus mean inbound
	// strength. Undefined unless both sides have edges.
	StrengthDifferential Stat `json:"strength_differential"`

	// OutboundVolume is the node's total outgoing dataflow volume.
	OutboundVolume float64 `json:"outbound_volume"`

	// InboundVolume is the node's total incoming dataflow volume.
	InboundVolume float64 `json:"inbound_volume"`

	// VolumeBalance is (out - in) / (out + in), in [-1, 1]: positive for
	// net producers, negative for net consumers. Undefined when the node
	// moves no data.
	VolumeBalance Stat `json:"volume_balance"`
}

// AnalyzeBidirectional compares a node's outgoing and incoming edge sets.
//
// Description:
//
//	Pure reader; safe to run concurrently with other reads and with
//	writers. The report is a snapshot and never persisted.
//
// Inputs:
//
//	ctx - Context, reserved for tracing. Must not be nil.
//	id - The node to analyze.
//
// Outputs:
//
//	*BidirectionalReport - The comparison report.
//	error - ErrUnknownNode when the id is absent.
func (s *Store) AnalyzeBidirectional(ctx context.Context, id NodeID) (*BidirectionalReport, error) {
	start := time.Now()
	ctx, span := startAnalysisSpan(ctx, "AnalyzeBidirectional", 1)
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.hierarchy[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}

	report := &BidirectionalReport{
		Node:           id,
		OutboundByType: make(map[RelationType]int),
		InboundByType:  make(map[RelationType]int),
		OutOnlyTypes:   []RelationType{},
		InOnlyTypes:    []RelationType{},
	}

	var outStrength, inStrength float64
	for _, e := range s.relOut[id] {
		report.OutboundByType[e.Type]++
		outStrength += e.Strength
	}
	for _, e := range s.relIn[id] {
		report.InboundByType[e.Type]++
		inStrength += e.Strength
	}

	union, intersection := 0, 0
	for t := range report.OutboundByType {
		union++
		if report.InboundByType[t] > 0 {
			intersection++
		} else {
			report.OutOnlyTypes = append(report.OutOnlyTypes, t)
		}
	}
	for t := range report.InboundByType {
		if report.OutboundByType[t] == 0 {
			union++
			report.InOnlyTypes = append(report.InOnlyTypes, t)
		}
	}
	sort.Slice(report.OutOnlyTypes, func(i, j int) bool {
		return report.OutOnlyTypes[i] < report.OutOnlyTypes[j]
	})
	sort.Slice(report.InOnlyTypes, func(i, j int) bool {
		return report.InOnlyTypes[i] < report.InOnlyTypes[j]
	})

	if union == 0 {
		report.TypeSymmetry = insufficientData(0)
	} else {
		report.TypeSymmetry = validStat(float64(intersection)/float64(union), union)
	}

	outCount, inCount := len(s.relOut[id]), len(s.relIn[id])
	if outCount == 0 || inCount == 0 {
		report.StrengthDifferential = insufficientData(outCount + inCount)
	} else {
		report.StrengthDifferential = validStat(
			outStrength/float64(outCount)-inStrength/float64(inCount),
			outCount+inCount,
		)
	}

	for _, e := range s.flowOut[id] {
		report.OutboundVolume += e.Volume
	}
	for _, e := range s.flowIn[id] {
		report.InboundVolume += e.Volume
	}
	total := report.OutboundVolume + report.InboundVolume
	flows := len(s.flowOut[id]) + len(s.flowIn[id])
	if total == 0 {
		report.VolumeBalance = insufficientData(flows)
	} else {
		report.VolumeBalance = validStat(
			(report.OutboundVolume-report.InboundVolume)/total, flows)
	}

	recordAnalysis(ctx, "bidirectional", time.Since(start), 1)
	return report, nil
}
