package store

import (
	"fmt"

	"github.com/GldzzPro/graph-sync/internal/graph"
)

// NodeLabel is the store label every module node carries. The uniqueness
// constraint and the upsert statements are all keyed on it.
const NodeLabel = "ModuleNode"

// Schema bootstrap statements, safe to run on every sync (create-if-absent).
const (
	cypherNodeIDConstraint = "CREATE CONSTRAINT module_node_id IF NOT EXISTS " +
		"FOR (n:" + NodeLabel + ") REQUIRE n.id IS UNIQUE"

	cypherLastUpdatedIndex = "CREATE INDEX module_last_updated IF NOT EXISTS " +
		"FOR (n:" + NodeLabel + ") ON (n.last_updated)"
)

// Verification read statements. Informational only, never gating.
const (
	cypherCountNodes = "MATCH (n:" + NodeLabel + ") RETURN count(n) AS count"

	cypherCountRelationships = "MATCH ()-[r]->() " +
		"RETURN type(r) AS label, count(r) AS count"
)

// relationshipLabels maps logical relationship kinds onto store labels.
// Kinds with no entry are skipped with a warning, never ingested under a
// synthesized label.
var relationshipLabels = map[graph.RelationshipKind]string{
	graph.KindDependency:        "DEPENDS_ON",
	graph.KindReverseDependency: "REQUIRED_BY",
}

// LabelForKind resolves a relationship kind to its store label.
func LabelForKind(kind graph.RelationshipKind) (string, bool) {
	label, ok := relationshipLabels[kind]
	return label, ok
}

// buildNodeUpsert batches all nodes into one bulk MERGE keyed by canonical
// id, overwriting the non-identity fields and stamping last_updated.
// Re-running with the same nodes produces the same stored state except the
// timestamp.
func buildNodeUpsert(nodes []graph.Node) (string, map[string]any) {
	records := make([]map[string]any, len(nodes))
	for i, node := range nodes {
		records[i] = map[string]any{
			"id":     node.ID,
			"name":   node.DisplayName,
			"source": node.SourceName,
			"props":  node.Properties,
		}
	}

	cypher := "UNWIND $nodes AS node\n" +
		"MERGE (m:" + NodeLabel + " {id: node.id})\n" +
		"SET m += node.props, m.name = node.name, m.source = node.source, m.last_updated = timestamp()\n" +
		"RETURN count(m) AS count"

	return cypher, map[string]any{"nodes": records}
}

// buildEdgeUpsert batches one relationship-kind group into a bulk MERGE
// keyed by (source, target, label). Both endpoints must already exist; the
// node phase always runs first.
func buildEdgeUpsert(label string, edges []graph.Edge) (string, map[string]any) {
	records := make([]map[string]any, len(edges))
	for i, edge := range edges {
		records[i] = map[string]any{
			"source": edge.SourceID,
			"target": edge.TargetID,
			"props":  edge.Properties,
		}
	}

	cypher := "UNWIND $edges AS edge\n" +
		"MATCH (a:" + NodeLabel + " {id: edge.source})\n" +
		"MATCH (b:" + NodeLabel + " {id: edge.target})\n" +
		fmt.Sprintf("MERGE (a)-[r:`%s`]->(b)\n", label) +
		"SET r += edge.props, r.last_updated = timestamp()\n" +
		"RETURN count(r) AS count"

	return cypher, map[string]any{"edges": records}
}
