// Package cli implements the recall CLI commands.
package cli

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/recall/internal/config"
	"github.com/rcliao/recall/internal/embedding"
	"github.com/rcliao/recall/internal/errs"
	"github.com/rcliao/recall/internal/pathsafe"
	"github.com/rcliao/recall/internal/redact"
	"github.com/rcliao/recall/internal/store"
)

// timeNow is the clock for created and expiry timestamps.
var timeNow = time.Now

// NewRootCmd creates the root recall command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "recall",
		Short:         "Persistent memory for AI agents",
		Long:          "A small CLI for agent memory with semantic search. Text in, JSON out. One JSONL file, single binary.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("config", "c", "", "Config file (default: none; RECALL_* env vars apply)")
	root.PersistentFlags().StringP("file", "f", "", "Collection file (default: storage.path, ~/.recall/memory.jsonl)")

	root.AddCommand(
		newAddCmd(),
		newGetCmd(),
		newUpdateCmd(),
		newRmCmd(),
		newListCmd(),
		newSearchCmd(),
		newPurgeCmd(),
		newContextCmd(),
		newStatsCmd(),
		newExportCmd(),
		newImportCmd(),
		newMigrateCmd(),
		newServeCmd(),
	)
	return root
}

// env is what a command needs to run: configuration, a logger and the
// opened store.
type env struct {
	cfg      *config.Config
	log      *slog.Logger
	store    *store.Store
	redactor *redact.Redactor // nil when redaction is disabled
}

func openEnv(cmd *cobra.Command) (*env, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	log := config.NewLogger(cfg.Log, cmd.ErrOrStderr())
	slog.SetDefault(log)

	path := cfg.Storage.Path
	if f, _ := cmd.Flags().GetString("file"); f != "" {
		path = f
	}
	path, err = pathsafe.Resolve(cfg.Storage.Root, path)
	if err != nil {
		return nil, err
	}

	emb, err := embedding.NewFromSettings(cfg.EmbeddingSettings())
	if err != nil {
		return nil, err
	}

	s, err := store.New(store.Config{
		Path:     path,
		Embedder: emb,
		MaxItems: cfg.Storage.MaxItems,
		Logger:   log,
		Now:      timeNow,
	})
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, log: log, store: s}
	if cfg.Redact.Enabled {
		if e.redactor, err = redact.New(nil); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// redactText returns text with secrets replaced when redaction is on.
func (e *env) redactText(cmd *cobra.Command, text string) string {
	if e.redactor == nil {
		return text
	}
	res := e.redactor.Redact(text)
	if res.HadSecrets {
		e.log.WarnContext(cmd.Context(), "redacted secrets from item text", "matches", res.Matches)
	}
	return res.RedactedText
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errs.Wrap(err, errs.CodeCLIOutputFailure, "encode output")
	}
	_, err = cmd.OutOrStdout().Write(append(b, '\n'))
	return err
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// rawJSON validates a flag value as JSON. Empty means unset.
func rawJSON(flag, value string) (json.RawMessage, error) {
	if value == "" {
		return nil, nil
	}
	if !json.Valid([]byte(value)) {
		return nil, errs.Errorf(errs.CodeCLIInputInvalid, "--%s must be valid JSON", flag)
	}
	return json.RawMessage(value), nil
}

func notFound(id string) error {
	return errs.New(errs.CodeCLIItemNotFound, "item not found: "+id, errs.Field("id", id))
}
