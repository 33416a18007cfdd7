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
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// hierarchyEntry is the store's internal view of a node's forest position.
// It doubles as the node registry: every registered node has one.
type hierarchyEntry struct {
	parent   NodeID
	children []NodeID
	depth    int
}

// Store is the multi-matrix node intelligence store.
//
// Description:
//
//	Store owns six independent collections indexed by node id: spatial
//	entries, hierarchy entries, and the four directional edge collections
//	(relationship out/in, dataflow out/in). The NodeIntelligence aggregate
//	is composed on demand rather than embedded, so a node never owns its
//	own edge collections.
//
// Thread Safety:
//
//	Safe for concurrent use. A single RWMutex serializes writers; readers
//	(Node, Stats, FindPath, Analyze, AnalyzeBidirectional) share the read
//	lock and copy everything they return.
type Store struct {
	mu sync.RWMutex

	// options contains configuration.
	options Options

	// hierarchy maps node id to its forest entry. Presence here defines
	// node existence.
	hierarchy map[NodeID]*hierarchyEntry

	// spatial maps node id to its spatial entry.
	spatial map[NodeID]SpatialEntry

	// relOut and relIn hold the two directional relationship views.
	relOut map[NodeID][]RelationshipEdge
	relIn  map[NodeID][]RelationshipEdge

	// flowOut and flowIn hold the two directional dataflow views.
	flowOut map[NodeID][]DataflowEdge
	flowIn  map[NodeID][]DataflowEdge

	// flowCount tracks logical dataflow edges against MaxDataflowEntries.
	flowCount int
}

// NewStore creates an empty store.
//
// Example:
//
//	// Default limits
//	s := intel.NewStore()
//
//	// Small limits for testing
//	s := intel.NewStore(
//	    intel.WithMaxHierarchyDepth(2),
//	    intel.WithMaxDataflowEntries(10),
//	)
func NewStore(opts ...Option) *Store {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return &Store{
		options:   options,
		hierarchy: make(map[NodeID]*hierarchyEntry),
		spatial:   make(map[NodeID]SpatialEntry),
		relOut:    make(map[NodeID][]RelationshipEdge),
		relIn:     make(map[NodeID][]RelationshipEdge),
		flowOut:   make(map[NodeID][]DataflowEdge),
		flowIn:    make(map[NodeID][]DataflowEdge),
	}
}

// Options returns a copy of the store's configuration.
func (s *Store) Options() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.options
}

// CreateNode registers a new node with a generated id.
//
// Outputs:
//
//	NodeID - The new node's id, a UUID string.
func (s *Store) CreateNode() NodeID {
	id := NodeID(uuid.NewString())

	s.mu.Lock()
	s.hierarchy[id] = &hierarchyEntry{}
	s.mu.Unlock()

	recordMutation("create_node", time.Duration(0), nil)
	return id
}

// RegisterNode registers a node under a caller-supplied id.
//
// Description:
//
//	Embedders that derive ids elsewhere (e.g., symbol ids from a parsed
//	syntax tree) use this instead of CreateNode.
//
// Errors:
//
//	ErrDuplicateNode - A node with this id already exists.
func (s *Store) RegisterNode(id NodeID) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrUnknownNode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.hierarchy[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	s.hierarchy[id] = &hierarchyEntry{}
	return nil
}

// Has reports whether a node id is registered.
func (s *Store) Has(id NodeID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.hierarchy[id]
	return ok
}

// NodeIDs returns all registered node ids in sorted order.
func (s *Store) NodeIDs() []NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]NodeID, 0, len(s.hierarchy))
	for id := range s.hierarchy {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// UpsertSpatial replaces or creates a node's spatial entry.
//
// Description:
//
//	The node is created if it does not exist yet (spatial insertion counts
//	as first reference). Spatial entries are only ever changed by this
//	call; relationship and dataflow operations never touch them.
//
// Errors:
//
//	ErrInvalidCoordinate - Non-finite coordinate, negative radius, or
//	importance outside [0, 1]. The store is unchanged.
func (s *Store) UpsertSpatial(id NodeID, entry SpatialEntry) error {
	start := time.Now()

	if err := validateSpatial(entry); err != nil {
		recordMutation("upsert_spatial", time.Since(start), err)
		return err
	}

	s.mu.Lock()
	if _, exists := s.hierarchy[id]; !exists {
		s.hierarchy[id] = &hierarchyEntry{}
	}
	s.spatial[id] = entry
	s.mu.Unlock()

	recordMutation("upsert_spatial", time.Since(start), nil)
	return nil
}

// Spatial returns a node's spatial entry.
func (s *Store) Spatial(id NodeID) (SpatialEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.spatial[id]
	return entry, ok
}

// validateSpatial checks coordinate, radius, and importance ranges.
func validateSpatial(entry SpatialEntry) error {
	for _, v := range [...]float64{entry.X, entry.Y, entry.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: coordinate %v is not finite", ErrInvalidCoordinate, v)
		}
	}
	if math.IsNaN(entry.Radius) || entry.Radius < 0 {
		return fmt.Errorf("%w: radius %v", ErrInvalidCoordinate, entry.Radius)
	}
	if math.IsNaN(entry.Importance) || entry.Importance < 0 || entry.Importance > 1 {
		return fmt.Errorf("%w: importance %v outside [0,1]", ErrInvalidCoordinate, entry.Importance)
	}
	return nil
}

// SetParent places node under parent in the containment forest.
//
// Description:
//
//	Detaches node from its current parent (if any), appends it to the new
//	parent's child list, and re-propagates depth through the moved subtree.
//	The check-then-apply order makes the operation atomic: any error leaves
//	the forest untouched.
//
// Errors:
//
//	ErrUnknownNode - Either id is not registered.
//	ErrSelfParent - node == parent.
//	ErrCycleDetected - parent is a descendant of node.
//	ErrDepthExceeded - Any node in the moved subtree would exceed the
//	configured maximum depth.
func (s *Store) SetParent(node, parent NodeID) error {
	start := time.Now()
	err := s.setParent(node, parent)
	recordMutation("set_parent", time.Since(start), err)
	return err
}

func (s *Store) setParent(node, parent NodeID) error {
	if node == parent {
		return fmt.Errorf("%w: %s", ErrSelfParent, node)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.hierarchy[node]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, node)
	}
	parentEntry, ok := s.hierarchy[parent]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, parent)
	}

	// Cycle check: walk from parent to its root; hitting node means node
	// would become its own ancestor.
	for cur := parent; cur != ""; cur = s.hierarchy[cur].parent {
		if cur == node {
			return fmt.Errorf("%w: %s is a descendant of %s", ErrCycleDetected, parent, node)
		}
	}

	newDepth := parentEntry.depth + 1
	if deepest := newDepth + s.subtreeHeight(node); deepest > s.options.MaxHierarchyDepth {
		return fmt.Errorf("%w: depth %d exceeds maximum %d",
			ErrDepthExceeded, deepest, s.options.MaxHierarchyDepth)
	}

	// Apply: detach, attach, re-propagate depth.
	if entry.parent != "" {
		s.detachChild(entry.parent, node)
	}
	entry.parent = parent
	parentEntry.children = append(parentEntry.children, node)
	s.propagateDepth(node, newDepth)
	return nil
}

// ClearParent promotes a node to a hierarchy root.
//
// Errors:
//
//	ErrUnknownNode - The id is not registered.
func (s *Store) ClearParent(node NodeID) error {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.hierarchy[node]
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownNode, node)
		recordMutation("clear_parent", time.Since(start), err)
		return err
	}

	if entry.parent != "" {
		s.detachChild(entry.parent, node)
		entry.parent = ""
		s.propagateDepth(node, 0)
	}
	recordMutation("clear_parent", time.Since(start), nil)
	return nil
}

// Hierarchy returns a copy of a node's hierarchy entry.
//
// Errors:
//
//	ErrUnknownNode - The id is not registered.
func (s *Store) Hierarchy(id NodeID) (HierarchyNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.hierarchy[id]
	if !ok {
		return HierarchyNode{}, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	return copyHierarchy(entry), nil
}

// PathFromRoot returns the chain of ids from the node's root down to the
// node itself, inclusive.
//
// Errors:
//
//	ErrUnknownNode - The id is not registered.
func (s *Store) PathFromRoot(id NodeID) ([]NodeID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.hierarchy[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}

	path := make([]NodeID, 0, entry.depth+1)
	for cur := id; cur != ""; cur = s.hierarchy[cur].parent {
		path = append(path, cur)
	}
	// Reverse into root-first order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// subtreeHeight returns the height of the subtree rooted at id (0 for a leaf).
// Caller must hold the lock.
func (s *Store) subtreeHeight(id NodeID) int {
	height := 0
	for _, child := range s.hierarchy[id].children {
		if h := s.subtreeHeight(child) + 1; h > height {
			height = h
		}
	}
	return height
}

// propagateDepth sets id's depth and re-derives all descendant depths.
// Caller must hold the lock.
func (s *Store) propagateDepth(id NodeID, depth int) {
	entry := s.hierarchy[id]
	entry.depth = depth
	for _, child := range entry.children {
		s.propagateDepth(child, depth+1)
	}
}

// detachChild removes child from parent's ordered child list.
// Caller must hold the lock.
func (s *Store) detachChild(parent, child NodeID) {
	children := s.hierarchy[parent].children
	for i, c := range children {
		if c == child {
			s.hierarchy[parent].children = append(children[:i], children[i+1:]...)
			return
		}
	}
}

// AddRelationship records a semantic relationship between two nodes.
//
// Description:
//
//	Inserts the outgoing view at source and the incoming view at target as
//	one atomic step; both views carry identical values, including the
//	frequency key and band resolved from the store's table at this moment.
//
// Errors:
//
//	ErrUnknownNode - Either endpoint is not registered.
//	ErrInvalidRelationType - t is not a declared relation type.
//	ErrInvalidStrength - strength outside [0, 1].
//	ErrEdgeLimitExceeded - Either endpoint is at its relationship edge cap.
func (s *Store) AddRelationship(source, target NodeID, t RelationType, strength float64) (RelationshipEdge, error) {
	start := time.Now()
	edge, err := s.addRelationship(source, target, t, strength)
	recordMutation("add_relationship", time.Since(start), err)
	return edge, err
}

func (s *Store) addRelationship(source, target NodeID, t RelationType, strength float64) (RelationshipEdge, error) {
	if !t.Valid() {
		return RelationshipEdge{}, fmt.Errorf("%w: %d", ErrInvalidRelationType, t)
	}
	if math.IsNaN(strength) || strength < 0 || strength > 1 {
		return RelationshipEdge{}, fmt.Errorf("%w: %v outside [0,1]", ErrInvalidStrength, strength)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hierarchy[source]; !ok {
		return RelationshipEdge{}, fmt.Errorf("%w: source %s", ErrUnknownNode, source)
	}
	if _, ok := s.hierarchy[target]; !ok {
		return RelationshipEdge{}, fmt.Errorf("%w: target %s", ErrUnknownNode, target)
	}

	if len(s.relOut[source]) >= s.options.MaxRelationshipEdges {
		return RelationshipEdge{}, fmt.Errorf("%w: source %s", ErrEdgeLimitExceeded, source)
	}
	if len(s.relIn[target]) >= s.options.MaxRelationshipEdges {
		return RelationshipEdge{}, fmt.Errorf("%w: target %s", ErrEdgeLimitExceeded, target)
	}

	key, band := s.options.FrequencyTable.Classify(t)
	edge := RelationshipEdge{
		Source:       source,
		Target:       target,
		Type:         t,
		Strength:     strength,
		FrequencyKey: key,
		Band:         band,
	}

	s.relOut[source] = append(s.relOut[source], edge)
	s.relIn[target] = append(s.relIn[target], edge)
	return edge, nil
}

// RemoveRelationship deletes every relationship edge matching (source,
// target, t) from both directional views.
//
// Errors:
//
//	ErrUnknownNode - Either endpoint is not registered.
func (s *Store) RemoveRelationship(source, target NodeID, t RelationType) error {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if _, ok := s.hierarchy[source]; !ok {
		err = fmt.Errorf("%w: source %s", ErrUnknownNode, source)
	} else if _, ok := s.hierarchy[target]; !ok {
		err = fmt.Errorf("%w: target %s", ErrUnknownNode, target)
	}
	if err != nil {
		recordMutation("remove_relationship", time.Since(start), err)
		return err
	}

	match := func(e RelationshipEdge) bool {
		return e.Source == source && e.Target == target && e.Type == t
	}
	s.relOut[source] = deleteRelEdges(s.relOut[source], match)
	s.relIn[target] = deleteRelEdges(s.relIn[target], match)

	recordMutation("remove_relationship", time.Since(start), nil)
	return nil
}

// AddDataflow records a data transfer between two nodes.
//
// Description:
//
//	Same atomic dual-insert discipline as AddRelationship. The global
//	dataflow capacity is checked before any state changes, so a rejected
//	insert leaves the store byte-identical.
//
// Errors:
//
//	ErrUnknownNode - Either endpoint is not registered.
//	ErrInvalidDataflow - Negative volume, or efficiency/selectivity
//	outside [0, 1].
//	ErrCapacityExceeded - The store is at its dataflow entry capacity.
func (s *Store) AddDataflow(source, target NodeID, dt DataType, proto Protocol, volume, efficiency, selectivity float64) (DataflowEdge, error) {
	start := time.Now()
	edge, err := s.addDataflow(source, target, dt, proto, volume, efficiency, selectivity)
	recordMutation("add_dataflow", time.Since(start), err)
	return edge, err
}

func (s *Store) addDataflow(source, target NodeID, dt DataType, proto Protocol, volume, efficiency, selectivity float64) (DataflowEdge, error) {
	if math.IsNaN(volume) || volume < 0 {
		return DataflowEdge{}, fmt.Errorf("%w: volume %v", ErrInvalidDataflow, volume)
	}
	if math.IsNaN(efficiency) || efficiency < 0 || efficiency > 1 {
		return DataflowEdge{}, fmt.Errorf("%w: efficiency %v outside [0,1]", ErrInvalidDataflow, efficiency)
	}
	if math.IsNaN(selectivity) || selectivity < 0 || selectivity > 1 {
		return DataflowEdge{}, fmt.Errorf("%w: selectivity %v outside [0,1]", ErrInvalidDataflow, selectivity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hierarchy[source]; !ok {
		return DataflowEdge{}, fmt.Errorf("%w: source %s", ErrUnknownNode, source)
	}
	if _, ok := s.hierarchy[target]; !ok {
		return DataflowEdge{}, fmt.Errorf("%w: target %s", ErrUnknownNode, target)
	}

	if s.flowCount >= s.options.MaxDataflowEntries {
		return DataflowEdge{}, fmt.Errorf("%w: at %d entries", ErrCapacityExceeded, s.flowCount)
	}

	edge := DataflowEdge{
		Source:      source,
		Target:      target,
		DataType:    dt,
		Protocol:    proto,
		Volume:      volume,
		Efficiency:  efficiency,
		Selectivity: selectivity,
	}

	s.flowOut[source] = append(s.flowOut[source], edge)
	s.flowIn[target] = append(s.flowIn[target], edge)
	s.flowCount++
	return edge, nil
}

// RemoveDataflow deletes every dataflow edge matching (source, target, dt,
// proto) from both directional views.
//
// Errors:
//
//	ErrUnknownNode - Either endpoint is not registered.
func (s *Store) RemoveDataflow(source, target NodeID, dt DataType, proto Protocol) error {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if _, ok := s.hierarchy[source]; !ok {
		err = fmt.Errorf("%w: source %s", ErrUnknownNode, source)
	} else if _, ok := s.hierarchy[target]; !ok {
		err = fmt.Errorf("%w: target %s", ErrUnknownNode, target)
	}
	if err != nil {
		recordMutation("remove_dataflow", time.Since(start), err)
		return err
	}

	match := func(e DataflowEdge) bool {
		return e.Source == source && e.Target == target && e.DataType == dt && e.Protocol == proto
	}
	before := len(s.flowOut[source])
	s.flowOut[source] = deleteFlowEdges(s.flowOut[source], match)
	s.flowIn[target] = deleteFlowEdges(s.flowIn[target], match)
	s.flowCount -= before - len(s.flowOut[source])

	recordMutation("remove_dataflow", time.Since(start), nil)
	return nil
}

// RemoveNode deletes a node and everything referencing it.
//
// Description:
//
//	The cascade is transactional across all six matrices: children are
//	reparented to the removed node's parent (or promoted to roots), every
//	relationship and dataflow edge touching the node is severed on both
//	sides, and the spatial entry is dropped. No dangling edge survives.
//
// Errors:
//
//	ErrUnknownNode - The id is not registered. The store is unchanged.
func (s *Store) RemoveNode(id NodeID) error {
	start := time.Now()
	err := s.removeNode(id)
	recordMutation("remove_node", time.Since(start), err)
	return err
}

func (s *Store) removeNode(id NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.hierarchy[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}

	// Hierarchy: reparent children to the removed node's parent, or promote
	// them to roots. Child order is preserved.
	if entry.parent != "" {
		s.detachChild(entry.parent, id)
		parentEntry := s.hierarchy[entry.parent]
		for _, child := range entry.children {
			s.hierarchy[child].parent = entry.parent
			parentEntry.children = append(parentEntry.children, child)
			s.propagateDepth(child, parentEntry.depth+1)
		}
	} else {
		for _, child := range entry.children {
			s.hierarchy[child].parent = ""
			s.propagateDepth(child, 0)
		}
	}

	// Relationship matrices: sever the mirror view at every counterpart.
	for _, e := range s.relOut[id] {
		if e.Target != id {
			s.relIn[e.Target] = deleteRelEdges(s.relIn[e.Target], func(x RelationshipEdge) bool {
				return x.Source == id
			})
		}
	}
	for _, e := range s.relIn[id] {
		if e.Source != id {
			s.relOut[e.Source] = deleteRelEdges(s.relOut[e.Source], func(x RelationshipEdge) bool {
				return x.Target == id
			})
		}
	}
	delete(s.relOut, id)
	delete(s.relIn, id)

	// Dataflow matrices: same discipline, keeping the global count honest.
	removed := len(s.flowOut[id])
	for _, e := range s.flowIn[id] {
		if e.Source != id {
			removed++
			s.flowOut[e.Source] = deleteFlowEdges(s.flowOut[e.Source], func(x DataflowEdge) bool {
				return x.Target == id
			})
		}
	}
	for _, e := range s.flowOut[id] {
		if e.Target != id {
			s.flowIn[e.Target] = deleteFlowEdges(s.flowIn[e.Target], func(x DataflowEdge) bool {
				return x.Source == id
			})
		}
	}
	delete(s.flowOut, id)
	delete(s.flowIn, id)
	s.flowCount -= removed

	delete(s.spatial, id)
	delete(s.hierarchy, id)
	return nil
}

// Node assembles the six-matrix aggregate for a node.
//
// Description:
//
//	The aggregate is composed on demand and deep-copied; callers may hold
//	or mutate it freely without affecting the store.
//
// Errors:
//
//	ErrUnknownNode - The id is not registered.
func (s *Store) Node(id NodeID) (*NodeIntelligence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.hierarchy[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}

	ni := &NodeIntelligence{
		ID:               id,
		Hierarchy:        copyHierarchy(entry),
		RelationshipsOut: append([]RelationshipEdge(nil), s.relOut[id]...),
		RelationshipsIn:  append([]RelationshipEdge(nil), s.relIn[id]...),
		DataflowsOut:     append([]DataflowEdge(nil), s.flowOut[id]...),
		DataflowsIn:      append([]DataflowEdge(nil), s.flowIn[id]...),
	}
	if sp, ok := s.spatial[id]; ok {
		cp := sp
		ni.Spatial = &cp
	}
	return ni, nil
}

// Stats returns statistics about the store.
func (s *Store) Stats() StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := StoreStats{
		NodeCount:           len(s.hierarchy),
		SpatialCount:        len(s.spatial),
		RelationshipsByType: make(map[RelationType]int),
		DataflowCount:       s.flowCount,
		MaxDataflowEntries:  s.options.MaxDataflowEntries,
	}
	for _, entry := range s.hierarchy {
		if entry.parent == "" {
			stats.RootCount++
		}
	}
	for _, edges := range s.relOut {
		stats.RelationshipCount += len(edges)
		for _, e := range edges {
			stats.RelationshipsByType[e.Type]++
		}
	}
	return stats
}

// copyHierarchy converts an internal entry into the exported value type.
func copyHierarchy(entry *hierarchyEntry) HierarchyNode {
	return HierarchyNode{
		Parent:   entry.parent,
		Children: append([]NodeID(nil), entry.children...),
		Depth:    entry.depth,
	}
}

// deleteRelEdges removes all edges matching the predicate, preserving order.
func deleteRelEdges(edges []RelationshipEdge, match func(RelationshipEdge) bool) []RelationshipEdge {
	out := edges[:0]
	for _, e := range edges {
		if !match(e) {
			out = append(out, e)
		}
	}
	return out
}

// deleteFlowEdges removes all edges matching the predicate, preserving order.
func deleteFlowEdges(edges []DataflowEdge, match func(DataflowEdge) bool) []DataflowEdge {
	out := edges[:0]
	for _, e := range edges {
		if !match(e) {
			out = append(out, e)
		}
	}
	return out
}
