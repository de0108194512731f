package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/recall/internal/model"
	"github.com/rcliao/recall/internal/store"
)

func newContextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context <description>",
		Short: "Assemble relevant memories within a token budget",
		Long:  "Find memories relevant to a task description, ranked by relevance and recency, and pack them into a token budget.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runContext,
	}

	cmd.Flags().StringP("kind", "k", "", "Filter by kind")
	cmd.Flags().StringP("tags", "t", "", "Filter by tags (comma-separated)")
	cmd.Flags().IntP("budget", "b", 4000, "Max tokens in output")

	return cmd
}

func runContext(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("kind")
	tags, _ := cmd.Flags().GetString("tags")
	budget, _ := cmd.Flags().GetInt("budget")

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}

	result, err := e.store.Context(cmd.Context(), store.ContextParams{
		Query:  strings.Join(args, " "),
		Kind:   model.Kind(kind),
		Tags:   splitTags(tags),
		Budget: budget,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}
