// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for
// security-critical operations.
//
// This package contains validators for user-provided inputs that end up
// in URL paths, log lines, and store keys. Using these validators keeps
// caller-supplied identifiers out of path-routing and log-injection
// trouble.
package validation

import (
	"fmt"
	"strings"
)

// MaxNodeIDLength bounds caller-supplied node identifiers.
const MaxNodeIDLength = 128

// nodeIDAllowed reports whether a byte may appear in a node id after the
// first character.
func nodeIDAllowed(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '.' || c == '_' || c == ':' || c == '-':
		return true
	}
	return false
}

// ValidateNodeID validates a caller-supplied node identifier.
//
// Valid ids:
//   - 1-128 characters
//   - Letters A-Z a-z and digits 0-9
//   - Dots (.), underscores (_), colons (:), hyphens (-) after the
//     first character, which must be alphanumeric
//
// The character set keeps ids safe to embed in URL path segments
// (GET /v1/intel/nodes/:id) and structured log attributes.
//
// Returns an error if the id is invalid.
//
// Example:
//
//	if err := validation.ValidateNodeID(id); err != nil {
//	    return fmt.Errorf("invalid node id: %w", err)
//	}
func ValidateNodeID(id string) error {
	if id == "" {
		return fmt.Errorf("node id cannot be empty")
	}
	if len(id) > MaxNodeIDLength {
		return fmt.Errorf("node id exceeds %d characters", MaxNodeIDLength)
	}
	first := id[0]
	if !(first >= 'a' && first <= 'z' || first >= 'A' && first <= 'Z' || first >= '0' && first <= '9') {
		return fmt.Errorf("node id %q must start with a letter or digit", id)
	}
	for i := 1; i < len(id); i++ {
		if !nodeIDAllowed(id[i]) {
			return fmt.Errorf("node id %q contains invalid character %q", id, id[i])
		}
	}
	return nil
}

// ValidateNodeIDs validates multiple node identifiers.
// Returns an error listing all invalid ids if any fail validation.
func ValidateNodeIDs(ids []string) error {
	var invalid []string
	for _, id := range ids {
		if err := ValidateNodeID(id); err != nil {
			invalid = append(invalid, id)
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid node ids: %s", strings.Join(invalid, ", "))
	}
	return nil
}
