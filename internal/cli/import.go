package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/recall/internal/errs"
	"github.com/rcliao/recall/internal/model"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import memories from JSON",
		Long:  "Import memories from a JSON array (stdin or --in). Expects the format produced by export.",
		RunE:  runImport,
	}

	cmd.Flags().StringP("in", "i", "", "Read from file instead of stdin")

	return cmd
}

func runImport(cmd *cobra.Command, _ []string) error {
	in, _ := cmd.Flags().GetString("in")

	var r io.Reader = cmd.InOrStdin()
	if in != "" {
		f, err := os.Open(in)
		if err != nil {
			return errs.Wrapf(err, errs.CodeCLIInputInvalid, "open %s", in)
		}
		defer f.Close()
		r = f
	}

	var items []model.Item
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return errs.Wrap(err, errs.CodeCLIInputInvalid, "parse json")
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
	return printJSON(cmd, map[string]any{"ok": true, "imported": n})
}
