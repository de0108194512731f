package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/recall/internal/model"
	"github.com/rcliao/recall/internal/store"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search memories by meaning",
		Long:  "Rank memories by similarity to the query. Scores are in [0, 1].",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}

	cmd.Flags().StringP("kind", "k", "", "Filter by kind")
	cmd.Flags().StringP("tags", "t", "", "Filter by tags (comma-separated, all must match)")
	cmd.Flags().Bool("include-expired", false, "Include expired items")
	cmd.Flags().IntP("limit", "l", store.DefaultSearchLimit, "Max results")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("kind")
	tags, _ := cmd.Flags().GetString("tags")
	includeExpired, _ := cmd.Flags().GetBool("include-expired")

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}

	results, err := e.store.Search(cmd.Context(), store.SearchParams{
		Query:          strings.Join(args, " "),
		Kind:           model.Kind(kind),
		Tags:           splitTags(tags),
		IncludeExpired: includeExpired,
		Limit:          limitFlag(cmd),
	})
	if err != nil {
		return err
	}
	return printJSON(cmd, results)
}
