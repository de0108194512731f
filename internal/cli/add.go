package cli

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/recall/internal/errs"
	"github.com/rcliao/recall/internal/model"
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Store a memory",
		Long:  "Store a memory. Text can be a positional arg or piped via stdin.",
		RunE:  runAdd,
	}

	cmd.Flags().String("id", "", "Item id (default: generated ULID)")
	cmd.Flags().StringP("kind", "k", string(model.KindNote), "Kind: "+model.KindList())
	cmd.Flags().StringP("tags", "t", "", "Comma-separated tags")
	cmd.Flags().String("ttl", "", "Expire after a duration like 7d, 24h, 30m, 60s")
	cmd.Flags().String("expires-at", "", "Absolute expiry timestamp (e.g. 2025-01-01T00:00:00.000Z)")
	cmd.Flags().String("source", "", "JSON provenance")
	cmd.Flags().String("meta", "", "JSON metadata")
	cmd.MarkFlagsMutuallyExclusive("ttl", "expires-at")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("id")
	kind, _ := cmd.Flags().GetString("kind")
	tags, _ := cmd.Flags().GetString("tags")
	ttl, _ := cmd.Flags().GetString("ttl")
	expiresAt, _ := cmd.Flags().GetString("expires-at")
	sourceStr, _ := cmd.Flags().GetString("source")
	metaStr, _ := cmd.Flags().GetString("meta")

	text, err := readText(cmd, args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return errs.New(errs.CodeCLIInputInvalid, "text is required (positional arg or stdin)")
	}

	source, err := rawJSON("source", sourceStr)
	if err != nil {
		return err
	}
	meta, err := rawJSON("meta", metaStr)
	if err != nil {
		return err
	}

	now := timeNow()
	if ttl != "" {
		if expiresAt, err = model.ExpiryAfter(now, ttl); err != nil {
			return errs.Wrap(err, errs.CodeCLIInputInvalid, "--ttl")
		}
	}
	if id == "" {
		id = model.NewID()
	}

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}

	it := model.Item{
		ID:        id,
		Kind:      model.Kind(kind),
		Text:      e.redactText(cmd, strings.TrimSpace(text)),
		CreatedAt: model.Now(now),
		ExpiresAt: expiresAt,
		Tags:      splitTags(tags),
		Source:    source,
		Meta:      meta,
	}
	if err := e.store.Add(cmd.Context(), it); err != nil {
		return err
	}
	return printJSON(cmd, it)
}

// readText joins positional args, or reads stdin when there are none and
// stdin is not a terminal.
func readText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return "", nil
		}
	}
	b, err := io.ReadAll(in)
	if err != nil {
		return "", errs.Wrap(err, errs.CodeCLIInputInvalid, "read stdin")
	}
	return string(b), nil
}
