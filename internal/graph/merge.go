package graph

import "log/slog"

// merger accumulates nodes and edges under the identity scheme: canonical ID
// for nodes, (source, target, kind) for edges, first-seen record wins. Later
// duplicates are discarded whole, never merged field-by-field. The same
// accumulator serves both merge levels: a source's forward and reverse
// fragments, and the cross-source union of per-source graphs
// (source-prefixed IDs keep sources from colliding).
type merger struct {
	graph     Graph
	seenNodes map[string]struct{}
	seenEdges map[EdgeKey]struct{}
}

func newMerger() *merger {
	return &merger{
		seenNodes: make(map[string]struct{}),
		seenEdges: make(map[EdgeKey]struct{}),
	}
}

func (m *merger) addNode(node Node) {
	if _, dup := m.seenNodes[node.ID]; dup {
		return
	}
	m.seenNodes[node.ID] = struct{}{}
	m.graph.Nodes = append(m.graph.Nodes, node)
}

func (m *merger) addEdge(edge Edge) {
	if _, dup := m.seenEdges[edge.Key()]; dup {
		return
	}
	m.seenEdges[edge.Key()] = struct{}{}
	m.graph.Edges = append(m.graph.Edges, edge)
}

// Merge unifies one or more raw fragments into a single graph with unique
// nodes and unique edges. Records without an identifying field are skipped
// with a warning.
func Merge(fragments ...Fragment) *Graph {
	m := newMerger()

	for _, frag := range fragments {
		for _, raw := range frag.Nodes {
			node, ok := nodeFromRaw(frag.SourceName, raw)
			if !ok {
				slog.Warn("skipping node record without id",
					"source", frag.SourceName)
				continue
			}
			m.addNode(node)
		}

		for _, raw := range frag.Edges {
			edge, ok := edgeFromRaw(frag.SourceName, frag.Kind, raw)
			if !ok {
				slog.Warn("skipping edge record without endpoints",
					"source", frag.SourceName)
				continue
			}
			m.addEdge(edge)
		}
	}

	return &m.graph
}

// MergeGraphs unions already-canonical per-source graphs under the same
// identity rules as Merge.
func MergeGraphs(graphs ...*Graph) *Graph {
	m := newMerger()

	for _, g := range graphs {
		if g == nil {
			continue
		}
		for _, node := range g.Nodes {
			m.addNode(node)
		}
		for _, edge := range g.Edges {
			m.addEdge(edge)
		}
	}

	return &m.graph
}

// nodeFromRaw converts one raw node record into a canonical Node. The raw
// "id" field is the identity and is excluded from the sanitized properties.
func nodeFromRaw(sourceName string, raw map[string]any) (Node, bool) {
	rawID, ok := raw["id"]
	if !ok || rawID == nil {
		return Node{}, false
	}

	displayName, _ := raw["label"].(string)
	if displayName == "" {
		displayName, _ = raw["name"].(string)
	}

	return Node{
		ID:          CanonicalID(sourceName, rawID),
		DisplayName: displayName,
		SourceName:  sourceName,
		Properties:  SanitizeProperties(raw, "id"),
	}, true
}

// edgeFromRaw converts one raw edge record into a canonical Edge. Endpoints
// come from the "from"/"to" fields; the record's own "type" field, when
// present, overrides the fragment's default relationship kind.
func edgeFromRaw(sourceName string, defaultKind RelationshipKind, raw map[string]any) (Edge, bool) {
	from, okFrom := raw["from"]
	to, okTo := raw["to"]
	if !okFrom || !okTo || from == nil || to == nil {
		return Edge{}, false
	}

	kind := defaultKind
	if t, ok := raw["type"].(string); ok && t != "" {
		kind = RelationshipKind(t)
	}

	return Edge{
		SourceID:   CanonicalID(sourceName, from),
		TargetID:   CanonicalID(sourceName, to),
		Kind:       kind,
		Properties: SanitizeProperties(raw, "from", "to", "type"),
	}, true
}
