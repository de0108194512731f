package cli

import (
	"github.com/spf13/cobra"
)

func newPurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove expired memories",
		RunE:  runPurge,
	}
}

func runPurge(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	n, err := e.store.PurgeExpired(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]int{"removed": n})
}
