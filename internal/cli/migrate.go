package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/recall/internal/legacy"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Import memories from an agent-memory SQLite database",
		Long: "Read the latest live version of every memory in an agent-memory database and add it to the collection. " +
			"Kinds map semantic->fact, procedural->doc, episodic->note.",
		RunE: runMigrate,
	}

	cmd.Flags().String("from", "", "Path to the agent-memory database (required)")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	from, _ := cmd.Flags().GetString("from")

	items, err := legacy.ReadItems(cmd.Context(), from)
	if err != nil {
		return err
	}

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].Text = e.redactText(cmd, items[i].Text)
	}

	n, err := e.store.Import(cmd.Context(), items)
	if err != nil {
		return err
	}
	e.log.InfoContext(cmd.Context(), "migrated legacy memories", "from", from, "imported", n)
	return printJSON(cmd, map[string]any{"ok": true, "imported": n})
}
