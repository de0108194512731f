package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rcliao/recall/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the memory API over HTTP",
		Long:  "Run the HTTP API until interrupted. Listens on server.listen unless --listen is given.",
		RunE:  runServe,
	}

	cmd.Flags().String("listen", "", "Listen address (default: server.listen, 127.0.0.1:8765)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}

	listen := e.cfg.Server.Listen
	if l, _ := cmd.Flags().GetString("listen"); l != "" {
		listen = l
	}

	srv, err := server.New(server.Config{
		ListenAddr:  listen,
		CORSOrigins: e.cfg.Server.CORSOrigins,
	}, e.store, server.Options{
		Redactor: e.redactor,
		Logger:   e.log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e.log.InfoContext(ctx, "serving memory API", "listen", listen, "store", e.store.Path())
	return srv.Start(ctx)
}
