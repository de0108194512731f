package cli

import (
	"github.com/spf13/cobra"
)

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a memory",
		Long:  "Delete every item with the given id.",
		Args:  cobra.ExactArgs(1),
		RunE:  runRm,
	}
}

func runRm(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	removed, err := e.store.Delete(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !removed {
		return notFound(args[0])
	}
	return printJSON(cmd, map[string]any{"ok": true, "id": args[0]})
}
