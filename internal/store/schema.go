package store

import (
	"context"
	"log/slog"

	"github.com/GldzzPro/graph-sync/internal/types"
)

// Bootstrap ensures the uniqueness constraint and supporting index exist.
// Every statement is create-if-absent, so running it before each sync is
// safe. A bootstrap failure is fatal: ingesting without the id constraint
// risks duplicate nodes.
func Bootstrap(ctx context.Context, store Store, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	statements := []struct {
		name   string
		cypher string
	}{
		{"module_node_id constraint", cypherNodeIDConstraint},
		{"module_last_updated index", cypherLastUpdatedIndex},
	}

	for _, stmt := range statements {
		if _, err := store.ExecuteWrite(ctx, stmt.cypher, nil); err != nil {
			return types.WrapError(ErrCodeSchemaBootstrapFailed,
				"failed to create "+stmt.name, err)
		}
		logger.Debug("schema statement applied", "statement", stmt.name)
	}

	return nil
}
