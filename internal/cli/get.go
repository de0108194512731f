package cli

import (
	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Retrieve a memory",
		Args:  cobra.ExactArgs(1),
		RunE:  runGet,
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	it, ok, err := e.store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !ok {
		return notFound(args[0])
	}
	return printJSON(cmd, it)
}
