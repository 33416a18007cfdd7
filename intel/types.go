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

import "fmt"

// Default configuration values.
const (
	// DefaultMaxHierarchyDepth is the default maximum depth of the
	// containment forest. Root nodes have depth 0.
	DefaultMaxHierarchyDepth = 50

	// DefaultMaxRelationshipEdges is the default per-node cap on
	// relationship edges (counted per directional view).
	DefaultMaxRelationshipEdges = 1000

	// DefaultMaxDataflowEntries is the default store-wide cap on dataflow
	// edges, counted per logical edge.
	DefaultMaxDataflowEntries = 10_000
)

// NodeID uniquely identifies a node in the store.
//
// IDs are opaque and stable for the node's lifetime. CreateNode assigns
// UUID-based ids; callers embedding the store may supply their own via
// RegisterNode (e.g., symbol ids from a parsed syntax tree).
type NodeID string

// RelationType defines the semantic kind of a relationship edge.
type RelationType int

const (
	// RelationUnknown indicates an unrecognized relationship type.
	RelationUnknown RelationType = iota

	// RelationHierarchy indicates a structural parent/child relationship.
	RelationHierarchy

	// RelationCorrelation indicates two entities that change together.
	RelationCorrelation

	// RelationDependency indicates the source requires the target.
	RelationDependency

	// RelationCommunication indicates message or call traffic.
	RelationCommunication

	// RelationEnabling indicates the source makes the target possible.
	RelationEnabling

	// RelationContainment indicates the source physically contains the target.
	RelationContainment

	// RelationCausation indicates the source causes the target's behavior.
	RelationCausation

	// RelationService indicates the source provides a service to the target.
	RelationService

	// RelationValidation indicates the source validates the target.
	RelationValidation

	// RelationTrigger indicates the source triggers the target.
	RelationTrigger

	// RelationTemporal indicates a time-ordering relationship.
	RelationTemporal

	// RelationOpposition indicates mutually exclusive entities.
	RelationOpposition

	// NumRelationTypes is the total number of relation types (for array sizing).
	NumRelationTypes
)

// relationTypeNames maps RelationType values to their string representations.
var relationTypeNames = map[RelationType]string{
	RelationUnknown:       "unknown",
	RelationHierarchy:     "hierarchy",
	RelationCorrelation:   "correlation",
	RelationDependency:    "dependency",
	RelationCommunication: "communication",
	RelationEnabling:      "enabling",
	RelationContainment:   "containment",
	RelationCausation:     "causation",
	RelationService:       "service",
	RelationValidation:    "validation",
	RelationTrigger:       "trigger",
	RelationTemporal:      "temporal",
	RelationOpposition:    "opposition",
}

// String returns the string representation of the RelationType.
func (t RelationType) String() string {
	if name, ok := relationTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether t is a declared relation type other than
// RelationUnknown.
func (t RelationType) Valid() bool {
	return t > RelationUnknown && t < NumRelationTypes
}

// ParseRelationType resolves a relation type from its string form, as
// produced by String(). Returns false for unrecognized names and for
// "unknown".
func ParseRelationType(name string) (RelationType, bool) {
	for t := RelationUnknown + 1; t < NumRelationTypes; t++ {
		if relationTypeNames[t] == name {
			return t, true
		}
	}
	return RelationUnknown, false
}

// MarshalText implements encoding.TextMarshaler so relation types appear
// by name in JSON.
func (t RelationType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *RelationType) UnmarshalText(text []byte) error {
	name := string(text)
	if name == "unknown" {
		*t = RelationUnknown
		return nil
	}
	parsed, ok := ParseRelationType(name)
	if !ok {
		return fmt.Errorf("unknown relation type %q", name)
	}
	*t = parsed
	return nil
}

// FrequencyBand is the coarse bucket a frequency classification key falls
// into. Band boundaries are fixed by the FrequencyTable, not by the edge.
type FrequencyBand int

const (
	// BandUnknown indicates the classification table had no entry.
	BandUnknown FrequencyBand = iota

	// BandLow groups classification keys below the table's low boundary.
	BandLow

	// BandMedium groups keys between the low and high boundaries.
	BandMedium

	// BandHigh groups keys above the high boundary.
	BandHigh

	// NumFrequencyBands is the total number of bands (for array sizing).
	NumFrequencyBands
)

// String returns the string representation of the FrequencyBand.
func (b FrequencyBand) String() string {
	switch b {
	case BandLow:
		return "low"
	case BandMedium:
		return "medium"
	case BandHigh:
		return "high"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so bands appear by name
// in JSON, including as map keys.
func (b FrequencyBand) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *FrequencyBand) UnmarshalText(text []byte) error {
	switch string(text) {
	case "low":
		*b = BandLow
	case "medium":
		*b = BandMedium
	case "high":
		*b = BandHigh
	case "unknown":
		*b = BandUnknown
	default:
		return fmt.Errorf("unknown frequency band %q", string(text))
	}
	return nil
}

// DataType classifies the payload carried by a dataflow edge.
type DataType int

const (
	// DataTypeUnknown indicates an unclassified payload.
	DataTypeUnknown DataType = iota

	// DataTypeScalar indicates single primitive values.
	DataTypeScalar

	// DataTypeStruct indicates structured records.
	DataTypeStruct

	// DataTypeStream indicates a continuous byte or record stream.
	DataTypeStream

	// DataTypeEvent indicates discrete event notifications.
	DataTypeEvent

	// DataTypeDocument indicates self-describing documents (JSON, YAML).
	DataTypeDocument

	// DataTypeBinary indicates opaque binary blobs.
	DataTypeBinary

	// NumDataTypes is the total number of data types (for array sizing).
	NumDataTypes
)

// dataTypeNames maps DataType values to their string representations.
var dataTypeNames = map[DataType]string{
	DataTypeUnknown:  "unknown",
	DataTypeScalar:   "scalar",
	DataTypeStruct:   "struct",
	DataTypeStream:   "stream",
	DataTypeEvent:    "event",
	DataTypeDocument: "document",
	DataTypeBinary:   "binary",
}

// String returns the string representation of the DataType.
func (d DataType) String() string {
	if name, ok := dataTypeNames[d]; ok {
		return name
	}
	return "unknown"
}

// ParseDataType resolves a data type from its string form. Returns
// false for unrecognized names; "unknown" parses to DataTypeUnknown.
func ParseDataType(name string) (DataType, bool) {
	for d := DataType(0); d < NumDataTypes; d++ {
		if dataTypeNames[d] == name {
			return d, true
		}
	}
	return DataTypeUnknown, false
}

// MarshalText implements encoding.TextMarshaler.
func (d DataType) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DataType) UnmarshalText(text []byte) error {
	parsed, ok := ParseDataType(string(text))
	if !ok {
		return fmt.Errorf("unknown data type %q", string(text))
	}
	*d = parsed
	return nil
}

// Protocol classifies the transport of a dataflow edge.
type Protocol int

const (
	// ProtocolUnknown indicates an unclassified transport.
	ProtocolUnknown Protocol = iota

	// ProtocolDirectCall indicates an in-process function call.
	ProtocolDirectCall

	// ProtocolChannel indicates an in-process channel or pipe.
	ProtocolChannel

	// ProtocolHTTP indicates HTTP request/response traffic.
	ProtocolHTTP

	// ProtocolGRPC indicates gRPC traffic.
	ProtocolGRPC

	// ProtocolQueue indicates message queue delivery.
	ProtocolQueue

	// ProtocolSharedMemory indicates shared-memory exchange.
	ProtocolSharedMemory

	// ProtocolFile indicates file-based exchange.
	ProtocolFile

	// NumProtocols is the total number of protocols (for array sizing).
	NumProtocols
)

// protocolNames maps Protocol values to their string representations.
var protocolNames = map[Protocol]string{
	ProtocolUnknown:      "unknown",
	ProtocolDirectCall:   "direct_call",
	ProtocolChannel:      "channel",
	ProtocolHTTP:         "http",
	ProtocolGRPC:         "grpc",
	ProtocolQueue:        "queue",
	ProtocolSharedMemory: "shared_memory",
	ProtocolFile:         "file",
}

// String returns the string representation of the Protocol.
func (p Protocol) String() string {
	if name, ok := protocolNames[p]; ok {
		return name
	}
	return "unknown"
}

// ParseProtocol resolves a protocol from its string form. Returns
// false for unrecognized names; "unknown" parses to ProtocolUnknown.
func ParseProtocol(name string) (Protocol, bool) {
	for p := Protocol(0); p < NumProtocols; p++ {
		if protocolNames[p] == name {
			return p, true
		}
	}
	return ProtocolUnknown, false
}

// MarshalText implements encoding.TextMarshaler.
func (p Protocol) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Protocol) UnmarshalText(text []byte) error {
	parsed, ok := ParseProtocol(string(text))
	if !ok {
		return fmt.Errorf("unknown protocol %q", string(text))
	}
	*p = parsed
	return nil
}

// SpatialEntry positions a node for layout and proximity analysis.
//
// Coordinates are unitless; a visualization layer decides what they mean.
// Importance feeds ranking and is not derived from connectivity.
type SpatialEntry struct {
	// X, Y, Z are the node's coordinates. Must be finite.
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`

	// Radius is the node's extent. Must be >= 0.
	Radius float64 `json:"radius"`

	// Importance is a caller-assigned score in [0, 1].
	Importance float64 `json:"importance"`
}

// HierarchyNode is a node's view of the containment forest.
type HierarchyNode struct {
	// Parent is the containing node's id. Empty for roots.
	Parent NodeID `json:"parent,omitempty"`

	// Children lists contained node ids in insertion order.
	Children []NodeID `json:"children,omitempty"`

	// Depth is the distance from the node's root. Roots have depth 0.
	Depth int `json:"depth"`
}

// RelationshipEdge is one directional view of a semantic relationship.
//
// The store records a matching view at both endpoints; the two views carry
// identical field values and differ only in which collection holds them.
type RelationshipEdge struct {
	// Source is the id of the originating node.
	Source NodeID `json:"source"`

	// Target is the id of the receiving node.
	Target NodeID `json:"target"`

	// Type is the semantic kind of the relationship.
	Type RelationType `json:"type"`

	// Strength is the relationship weight in [0, 1].
	Strength float64 `json:"strength"`

	// FrequencyKey is the numeric classification key assigned to Type by
	// the store's FrequencyTable at insert time. It is stored on the edge
	// so a later table change never rewrites historical edges.
	FrequencyKey float64 `json:"frequency_key"`

	// Band is the bucket FrequencyKey fell into at insert time.
	Band FrequencyBand `json:"band"`
}

// DataflowEdge is one directional view of a data transfer between nodes.
type DataflowEdge struct {
	// Source is the id of the sending node.
	Source NodeID `json:"source"`

	// Target is the id of the receiving node.
	Target NodeID `json:"target"`

	// DataType classifies the payload.
	DataType DataType `json:"data_type"`

	// Protocol classifies the transport.
	Protocol Protocol `json:"protocol"`

	// Volume is the transfer amount. Must be >= 0.
	Volume float64 `json:"volume"`

	// Efficiency is the useful fraction of the transfer, in [0, 1].
	Efficiency float64 `json:"efficiency"`

	// Selectivity is the fraction of the payload the target consumes,
	// in [0, 1].
	Selectivity float64 `json:"selectivity"`
}

// NodeIntelligence is the per-node composite of all six matrices.
//
// It is assembled on demand by Store.Node and deep-copied: mutating a
// returned aggregate never affects the store.
type NodeIntelligence struct {
	// ID is the node's unique identifier.
	ID NodeID `json:"id"`

	// Spatial is the node's spatial entry, nil if never positioned.
	Spatial *SpatialEntry `json:"spatial,omitempty"`

	// Hierarchy is the node's view of the containment forest.
	Hierarchy HierarchyNode `json:"hierarchy"`

	// RelationshipsOut contains relationship edges where this node is the
	// source.
	RelationshipsOut []RelationshipEdge `json:"relationships_out"`

	// RelationshipsIn contains relationship edges where this node is the
	// target.
	RelationshipsIn []RelationshipEdge `json:"relationships_in"`

	// DataflowsOut contains dataflow edges where this node is the source.
	DataflowsOut []DataflowEdge `json:"dataflows_out"`

	// DataflowsIn contains dataflow edges where this node is the target.
	DataflowsIn []DataflowEdge `json:"dataflows_in"`
}

// Options configures Store behavior and limits.
type Options struct {
	// MaxHierarchyDepth bounds the containment forest depth.
	// Default: 50
	MaxHierarchyDepth int

	// MaxRelationshipEdges caps relationship edges per node, counted on
	// the outgoing view at the source and the incoming view at the target.
	// Default: 1000
	MaxRelationshipEdges int

	// MaxDataflowEntries caps dataflow edges store-wide, counted per
	// logical edge.
	// Default: 10,000
	MaxDataflowEntries int

	// FrequencyTable maps relation types to classification keys and bands.
	// Default: DefaultFrequencyTable()
	FrequencyTable FrequencyTable
}

// DefaultOptions returns sensible defaults for store configuration.
func DefaultOptions() Options {
	return Options{
		MaxHierarchyDepth:    DefaultMaxHierarchyDepth,
		MaxRelationshipEdges: DefaultMaxRelationshipEdges,
		MaxDataflowEntries:   DefaultMaxDataflowEntries,
		FrequencyTable:       DefaultFrequencyTable(),
	}
}

// Option is a functional option for configuring Store.
type Option func(*Options)

// WithMaxHierarchyDepth sets the maximum containment forest depth.
func WithMaxHierarchyDepth(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxHierarchyDepth = n
		}
	}
}

// WithMaxRelationshipEdges sets the per-node relationship edge cap.
func WithMaxRelationshipEdges(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxRelationshipEdges = n
		}
	}
}

// WithMaxDataflowEntries sets the store-wide dataflow edge cap.
func WithMaxDataflowEntries(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxDataflowEntries = n
		}
	}
}

// WithFrequencyTable replaces the relation classification table.
func WithFrequencyTable(t FrequencyTable) Option {
	return func(o *Options) {
		o.FrequencyTable = t
	}
}

// StoreStats contains statistics about the store.
type StoreStats struct {
	// NodeCount is the number of registered nodes.
	NodeCount int `json:"node_count"`

	// SpatialCount is the number of nodes with a spatial entry.
	SpatialCount int `json:"spatial_count"`

	// RootCount is the number of hierarchy roots.
	RootCount int `json:"root_count"`

	// RelationshipCount is the number of logical relationship edges.
	RelationshipCount int `json:"relationship_count"`

	// RelationshipsByType maps each RelationType to its logical edge count.
	RelationshipsByType map[RelationType]int `json:"relationships_by_type"`

	// DataflowCount is the number of logical dataflow edges.
	DataflowCount int `json:"dataflow_count"`

	// MaxDataflowEntries is the configured dataflow capacity.
	MaxDataflowEntries int `json:"max_dataflow_entries"`
}
