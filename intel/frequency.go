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

// Default band boundaries. Keys below LowBandCeiling classify as BandLow,
// keys from LowBandCeiling up to but excluding HighBandFloor as BandMedium,
// and keys at or above HighBandFloor as BandHigh.
const (
	// DefaultLowBandCeiling is the default upper bound (exclusive) of BandLow.
	DefaultLowBandCeiling = 300.0

	// DefaultHighBandFloor is the default lower bound (inclusive) of BandHigh.
	DefaultHighBandFloor = 3000.0
)

// FrequencyTable classifies relation types into numeric keys and bands.
//
// The keys are an opaque grouping scheme supplied by configuration; they
// carry no signal-processing semantics. Classification is resolved once at
// edge-creation time and stored on the edge, so replacing a store's table
// never rewrites historical edges.
type FrequencyTable struct {
	// Keys maps each relation type to its classification key.
	Keys map[RelationType]float64

	// LowBandCeiling is the upper bound (exclusive) of BandLow.
	LowBandCeiling float64

	// HighBandFloor is the lower bound (inclusive) of BandHigh.
	HighBandFloor float64
}

// DefaultFrequencyTable returns the built-in classification table.
//
// Structural relations (hierarchy, containment, temporal) group into the
// low band, coordination relations into the medium band, and control-flow
// relations into the high band.
func DefaultFrequencyTable() FrequencyTable {
	return FrequencyTable{
		Keys: map[RelationType]float64{
			RelationHierarchy:     88,
			RelationContainment:   104,
			RelationTemporal:      162,
			RelationCorrelation:   430,
			RelationCommunication: 915,
			RelationEnabling:      1296,
			RelationValidation:    2400,
			RelationDependency:    3500,
			RelationCausation:     5200,
			RelationService:       5800,
			RelationTrigger:       7100,
			RelationOpposition:    9300,
		},
		LowBandCeiling: DefaultLowBandCeiling,
		HighBandFloor:  DefaultHighBandFloor,
	}
}

// Classify returns the classification key and band for a relation type.
//
// Description:
//
//	Pure lookup against the table; no runtime recomputation is tied to
//	distance or time. Unknown types classify as (0, BandUnknown).
//
// Inputs:
//
//	t - The relation type to classify.
//
// Outputs:
//
//	float64 - The classification key, 0 if the table has no entry.
//	FrequencyBand - The band the key falls into, BandUnknown if no entry.
func (ft FrequencyTable) Classify(t RelationType) (float64, FrequencyBand) {
	key, ok := ft.Keys[t]
	if !ok {
		return 0, BandUnknown
	}
	return key, ft.band(key)
}

// band buckets a classification key using the table's boundaries.
func (ft FrequencyTable) band(key float64) FrequencyBand {
	low, high := ft.LowBandCeiling, ft.HighBandFloor
	if low <= 0 {
		low = DefaultLowBandCeiling
	}
	if high <= low {
		high = DefaultHighBandFloor
	}
	switch {
	case key < low:
		return BandLow
	case key < high:
		return BandMedium
	default:
		return BandHigh
	}
}
