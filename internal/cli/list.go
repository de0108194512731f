package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/recall/internal/model"
	"github.com/rcliao/recall/internal/store"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memories",
		Long:  "List memories oldest first. With --limit only the most recent are shown.",
		RunE:  runList,
	}

	cmd.Flags().StringP("kind", "k", "", "Filter by kind")
	cmd.Flags().StringP("tags", "t", "", "Filter by tags (comma-separated, all must match)")
	cmd.Flags().Bool("include-expired", false, "Include expired items")
	cmd.Flags().IntP("limit", "l", 0, "Max results (default: all)")

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	kind, _ := cmd.Flags().GetString("kind")
	tags, _ := cmd.Flags().GetString("tags")
	includeExpired, _ := cmd.Flags().GetBool("include-expired")

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}

	items, err := e.store.List(cmd.Context(), store.ListParams{
		Kind:           model.Kind(kind),
		Tags:           splitTags(tags),
		IncludeExpired: includeExpired,
		Limit:          limitFlag(cmd),
	})
	if err != nil {
		return err
	}
	return printJSON(cmd, items)
}

// limitFlag returns nil unless --limit was given.
func limitFlag(cmd *cobra.Command) *int {
	if !cmd.Flags().Changed("limit") {
		return nil
	}
	n, _ := cmd.Flags().GetInt("limit")
	return store.Limit(n)
}
