package cli

import (
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export memories as JSON",
		Long:  "Export every memory, expired ones included, as a JSON array that import accepts.",
		RunE:  runExport,
	}
}

func runExport(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	items, err := e.store.Export(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd, items)
}
