package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gymleadhub/atlas-agent/internal/store"
)

// SyncToDB projects the in-process registry into the tools table so the rest
// of the platform can introspect what the agents can do. The registry is the
// source of truth; rows for tools no longer registered are pruned.
func SyncToDB(ctx context.Context, r *Registry, db *store.DB) error {
	var names []string
	for _, tool := range r.All() {
		schema, err := json.Marshal(tool.Parameters())
		if err != nil {
			return fmt.Errorf("encoding schema for %s: %w", tool.Name(), err)
		}
		if err := db.UpsertTool(ctx, tool.Name(), tool.Description(), tool.Category(), string(schema)); err != nil {
			return fmt.Errorf("upserting %s: %w", tool.Name(), err)
		}
		names = append(names, tool.Name())
	}
	if _, err := db.PruneTools(ctx, names); err != nil {
		return fmt.Errorf("pruning stale tools: %w", err)
	}
	return nil
}
