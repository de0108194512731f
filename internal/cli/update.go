package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/rcliao/recall/internal/errs"
	"github.com/rcliao/recall/internal/model"
)

func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a memory",
		Long:  "Update a memory in place. Only the flags given are changed; the id never changes.",
		Args:  cobra.ExactArgs(1),
		RunE:  runUpdate,
	}

	cmd.Flags().String("text", "", "New text (re-embedded)")
	cmd.Flags().StringP("kind", "k", "", "New kind: "+model.KindList())
	cmd.Flags().StringP("tags", "t", "", "Replace tags (comma-separated; empty clears)")
	cmd.Flags().String("expires-at", "", "New expiry timestamp")
	cmd.Flags().String("ttl", "", "New expiry as a duration from now")
	cmd.Flags().Bool("clear-expiry", false, "Remove the expiry")
	cmd.Flags().String("meta", "", "Replace JSON metadata (empty clears it)")
	cmd.MarkFlagsMutuallyExclusive("expires-at", "ttl", "clear-expiry")

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id := args[0]
	f := cmd.Flags()

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}

	var patch model.Patch
	if f.Changed("text") {
		text, _ := f.GetString("text")
		text = e.redactText(cmd, text)
		patch.Text = &text
	}
	if f.Changed("kind") {
		kind, _ := f.GetString("kind")
		k := model.Kind(kind)
		patch.Kind = &k
	}
	if f.Changed("tags") {
		tagsStr, _ := f.GetString("tags")
		tags := splitTags(tagsStr)
		if tags == nil {
			tags = []string{}
		}
		patch.Tags = &tags
	}
	if f.Changed("expires-at") {
		exp, _ := f.GetString("expires-at")
		patch.ExpiresAt = &exp
	}
	if f.Changed("ttl") {
		ttl, _ := f.GetString("ttl")
		exp, err := model.ExpiryAfter(timeNow(), ttl)
		if err != nil {
			return errs.Wrap(err, errs.CodeCLIInputInvalid, "--ttl")
		}
		patch.ExpiresAt = &exp
	}
	if clearExpiry, _ := f.GetBool("clear-expiry"); clearExpiry {
		none := ""
		patch.ExpiresAt = &none
	}
	if f.Changed("meta") {
		metaStr, _ := f.GetString("meta")
		if patch.Meta, err = rawJSON("meta", metaStr); err != nil {
			return err
		}
		if patch.Meta == nil {
			patch.Meta = json.RawMessage("null")
		}
	}

	it, ok, err := e.store.Update(cmd.Context(), id, patch)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(id)
	}
	return printJSON(cmd, it)
}
