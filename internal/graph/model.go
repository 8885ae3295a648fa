package graph

import (
	"fmt"
	"strconv"
	"strings"
)

// RelationshipKind is the logical edge category prior to mapping onto a
// store-specific relationship label.
type RelationshipKind string

const (
	KindDependency        RelationshipKind = "dependency"
	KindReverseDependency RelationshipKind = "reverse-dependency"
)

// String returns the string representation of RelationshipKind
func (k RelationshipKind) String() string {
	return string(k)
}

// Node is a canonical graph node. Exactly one Node exists per distinct ID
// within a merge result.
type Node struct {
	// ID is the source-prefixed canonical identifier (see CanonicalID).
	ID string `json:"id"`

	// DisplayName is the human-readable module name.
	DisplayName string `json:"display_name"`

	// SourceName names the source the node was fetched from.
	SourceName string `json:"source_name"`

	// Properties holds sanitized primitive-only values.
	Properties map[string]any `json:"properties,omitempty"`
}

// Edge is a canonical graph edge, identified by (SourceID, TargetID, Kind).
type Edge struct {
	SourceID   string           `json:"source_id"`
	TargetID   string           `json:"target_id"`
	Kind       RelationshipKind `json:"kind"`
	Properties map[string]any   `json:"properties,omitempty"`
}

// Key returns the identity triple used for edge deduplication.
func (e Edge) Key() EdgeKey {
	return EdgeKey{SourceID: e.SourceID, TargetID: e.TargetID, Kind: e.Kind}
}

// EdgeKey is the deduplication identity of an edge.
type EdgeKey struct {
	SourceID string
	TargetID string
	Kind     RelationshipKind
}

// Fragment is the raw, unmerged node/edge payload of one remote call, scoped
// to the source that produced it. Node and edge records are opaque key-value
// maps straight off the wire.
type Fragment struct {
	// SourceName is the configured name of the source this fragment came from.
	SourceName string

	// Kind is the default relationship kind for edges in this fragment
	// (dependency for forward calls, reverse-dependency for reverse calls).
	// An edge record may override it with its own "type" field.
	Kind RelationshipKind

	Nodes []map[string]any
	Edges []map[string]any
}

// Graph owns the merged node and edge sets of one sync run. It is constructed
// once by Merge and consumed once by the loader; the store is the durable
// record, not this value.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// CanonicalID builds the globally unique node identifier "{source}_{rawID}".
// A raw ID that already carries that exact prefix is used unchanged, so
// re-merging an already-normalized fragment never double-prefixes.
func CanonicalID(sourceName string, rawID any) string {
	raw := formatRawID(rawID)
	prefix := sourceName + "_"
	if strings.HasPrefix(raw, prefix) {
		return raw
	}
	return prefix + raw
}

// formatRawID renders a raw identifier field as a string. Remote payloads
// carry numeric module IDs, which JSON decoding surfaces as float64.
func formatRawID(rawID any) string {
	switch v := rawID.(type) {
	case string:
		return v
	case float64:
		// Integral module IDs must not render as "42.000000".
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}
