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
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// maxAnalysisWorkers caps concurrent per-node analyses in multi-node
// requests. Analysis is memory-bound; more goroutines do not help.
const maxAnalysisWorkers = 8

// Stat is a derived statistic that may be undefined.
//
// Statistics computed over zero samples (or degenerate distributions) are
// reported with Valid false rather than a numeric placeholder, so callers
// can distinguish "insufficient data" from a genuine zero.
type Stat struct {
	// Value is the statistic's value. Meaningless when Valid is false.
	Value float64 `json:"value"`

	// Samples is the number of observations the statistic was computed from.
	Samples int `json:"samples"`

	// Valid is false when the statistic is undefined for the available data.
	Valid bool `json:"valid"`
}

// validStat builds a defined statistic.
func validStat(value float64, samples int) Stat {
	return Stat{Value: value, Samples: samples, Valid: true}
}

// insufficientData marks a statistic undefined for the available samples.
func insufficientData(samples int) Stat {
	return Stat{Samples: samples}
}

// CrossMatrixReport correlates a node's six matrices.
//
// Reports are read-only snapshots: recomputable from the matrices at any
// time and never persisted as authoritative state.
type CrossMatrixReport struct {
	// Node is the analyzed node's id.
	Node NodeID `json:"node"`

	// TargetOverlap is the Jaccard overlap between the node's relationship
	// targets and its dataflow targets (outgoing views).
	TargetOverlap Stat `json:"target_overlap"`

	// StrengthVolumeCorrelation is the Pearson correlation, per counterpart
	// node, between total relationship strength and total dataflow volume.
	StrengthVolumeCorrelation Stat `json:"strength_volume_correlation"`

	// SpatialDistanceVariance is the variance of spatial distance between
	// the node and its directly connected neighbors.
	SpatialDistanceVariance Stat `json:"spatial_distance_variance"`

	// SiblingProximity is the fraction of the node's hierarchy siblings
	// that lie within the sum of the two nodes' radii.
	SiblingProximity Stat `json:"sibling_proximity"`

	// BandDistribution counts outgoing relationship edges per frequency
	// band across the node's hierarchy subtree.
	BandDistribution map[FrequencyBand]int `json:"band_distribution"`

	// DominantBand is the most common band in BandDistribution,
	// BandUnknown when the subtree has no relationship edges.
	DominantBand FrequencyBand `json:"dominant_band"`

	// BandConcentration is the dominant band's share of the subtree's
	// relationship edges.
	BandConcentration Stat `json:"band_concentration"`
}

// Analyze computes cross-matrix reports for one or more nodes.
//
// Description:
//
//	Pure reader: gathers each node's four edge collections and hierarchy
//	context under the read lock and derives correlation statistics.
//	Multi-node requests fan out across a bounded worker group; report
//	order matches the requested id order. Safe to run concurrently with
//	other read operations and with writers.
//
// Inputs:
//
//	ctx - Context for cancellation. Must not be nil.
//	ids - Node ids to analyze. Must not be empty.
//
// Outputs:
//
//	[]CrossMatrixReport - One report per requested id, in request order.
//	error - ErrUnknownNode if any id is absent (checked before any work),
//	or the context error if canceled mid-analysis.
func (s *Store) Analyze(ctx context.Context, ids ...NodeID) ([]CrossMatrixReport, error) {
	start := time.Now()
	ctx, span := startAnalysisSpan(ctx, "Analyze", len(ids))
	defer span.End()

	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no ids given", ErrUnknownNode)
	}

	s.mu.RLock()
	for _, id := range ids {
		if _, ok := s.hierarchy[id]; !ok {
			s.mu.RUnlock()
			return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
		}
	}
	s.mu.RUnlock()

	reports := make([]CrossMatrixReport, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxAnalysisWorkers)
	for i, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = s.analyzeNode(id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	recordAnalysis(ctx, "crossmatrix", time.Since(start), len(ids))
	return reports, nil
}

// analyzeNode computes one node's cross-matrix report under the read lock.
func (s *Store) analyzeNode(id NodeID) CrossMatrixReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := CrossMatrixReport{
		Node:             id,
		BandDistribution: make(map[FrequencyBand]int),
	}

	entry, ok := s.hierarchy[id]
	if !ok {
		// Removed between validation and analysis; report stays empty.
		report.TargetOverlap = insufficientData(0)
		report.StrengthVolumeCorrelation = insufficientData(0)
		report.SpatialDistanceVariance = insufficientData(0)
		report.SiblingProximity = insufficientData(0)
		report.BandConcentration = insufficientData(0)
		return report
	}

	report.TargetOverlap = s.targetOverlap(id)
	report.StrengthVolumeCorrelation = s.strengthVolumeCorrelation(id)
	report.SpatialDistanceVariance = s.spatialDistanceVariance(id)
	report.SiblingProximity = s.siblingProximity(id, entry)
	report.DominantBand, report.BandConcentration = s.subtreeBands(id, report.BandDistribution)
	return report
}

// targetOverlap computes the Jaccard overlap of relationship vs dataflow
// targets. Caller must hold the read lock.
func (s *Store) targetOverlap(id NodeID) Stat {
	relTargets := make(map[NodeID]bool)
	for _, e := range s.relOut[id] {
		relTargets[e.Target] = true
	}
	flowTargets := make(map[NodeID]bool)
	for _, e := range s.flowOut[id] {
		flowTargets[e.Target] = true
	}

	union := len(relTargets)
	intersection := 0
	for t := range flowTargets {
		if relTargets[t] {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return insufficientData(0)
	}
	return validStat(float64(intersection)/float64(union), union)
}

// strengthVolumeCorrelation computes the Pearson correlation between total
// relationship strength and total dataflow volume per outgoing counterpart.
// Caller must hold the read lock.
func (s *Store) strengthVolumeCorrelation(id NodeID) Stat {
	strength := make(map[NodeID]float64)
	for _, e := range s.relOut[id] {
		strength[e.Target] += e.Strength
	}
	volume := make(map[NodeID]float64)
	for _, e := range s.flowOut[id] {
		volume[e.Target] += e.Volume
	}

	counterparts := make(map[NodeID]bool, len(strength)+len(volume))
	for t := range strength {
		counterparts[t] = true
	}
	for t := range volume {
		counterparts[t] = true
	}

	xs := make([]float64, 0, len(counterparts))
	ys := make([]float64, 0, len(counterparts))
	for t := range counterparts {
		xs = append(xs, strength[t])
		ys = append(ys, volume[t])
	}
	return pearson(xs, ys)
}

// spatialDistanceVariance computes the variance of distance between the node
// and its directly connected neighbors. Caller must hold the read lock.
func (s *Store) spatialDistanceVariance(id NodeID) Stat {
	origin, ok := s.spatial[id]
	if !ok {
		return insufficientData(0)
	}

	neighbors := make(map[NodeID]bool)
	for _, e := range s.relOut[id] {
		neighbors[e.Target] = true
	}
	for _, e := range s.relIn[id] {
		neighbors[e.Source] = true
	}
	for _, e := range s.flowOut[id] {
		neighbors[e.Target] = true
	}
	for _, e := range s.flowIn[id] {
		neighbors[e.Source] = true
	}
	delete(neighbors, id)

	distances := make([]float64, 0, len(neighbors))
	for n := range neighbors {
		if sp, ok := s.spatial[n]; ok {
			distances = append(distances, euclidean(origin, sp))
		}
	}
	if len(distances) < 2 {
		return insufficientData(len(distances))
	}
	return validStat(variance(distances), len(distances))
}

// siblingProximity computes the fraction of hierarchy siblings within the
// combined radius of the node and the sibling. Caller must hold the read lock.
func (s *Store) siblingProximity(id NodeID, entry *hierarchyEntry) Stat {
	origin, ok := s.spatial[id]
	if !ok || entry.parent == "" {
		return insufficientData(0)
	}

	measured, near := 0, 0
	for _, sibling := range s.hierarchy[entry.parent].children {
		if sibling == id {
			continue
		}
		sp, ok := s.spatial[sibling]
		if !ok {
			continue
		}
		measured++
		if euclidean(origin, sp) <= origin.Radius+sp.Radius {
			near++
		}
	}
	if measured == 0 {
		return insufficientData(0)
	}
	return validStat(float64(near)/float64(measured), measured)
}

// subtreeBands tallies outgoing relationship edges per frequency band across
// the node's hierarchy subtree. Caller must hold the read lock.
func (s *Store) subtreeBands(id NodeID, dist map[FrequencyBand]int) (FrequencyBand, Stat) {
	total := 0
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range s.relOut[cur] {
			dist[e.Band]++
			total++
		}
		stack = append(stack, s.hierarchy[cur].children...)
	}

	if total == 0 {
		return BandUnknown, insufficientData(0)
	}

	dominant, dominantCount := BandUnknown, 0
	bands := make([]FrequencyBand, 0, len(dist))
	for b := range dist {
		bands = append(bands, b)
	}
	sort.Slice(bands, func(i, j int) bool { return bands[i] < bands[j] })
	for _, b := range bands {
		if dist[b] > dominantCount {
			dominant, dominantCount = b, dist[b]
		}
	}
	return dominant, validStat(float64(dominantCount)/float64(total), total)
}

// euclidean returns the distance between two spatial entries.
func euclidean(a, b SpatialEntry) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// mean returns the arithmetic mean of xs. Caller guarantees len(xs) > 0.
func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// variance returns the population variance of xs.
// Caller guarantees len(xs) > 0.
func variance(xs []float64) float64 {
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs))
}

// pearson returns the Pearson correlation of two equal-length samples.
// Undefined (Valid false) below two samples or when either side is constant.
func pearson(xs, ys []float64) Stat {
	n := len(xs)
	if n < 2 {
		return insufficientData(n)
	}

	mx, my := mean(xs), mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return insufficientData(n)
	}
	return validStat(sxy/math.Sqrt(sxx*syy), n)
}
