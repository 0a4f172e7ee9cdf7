package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/cells/internal/preview"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		port     int
		host     string
		noReload bool
	)

	cmd := &cobra.Command{
		Use:   "serve <document>",
		Short: "Preview a document in the browser",
		Long: `Serve a rendered document with live reload.

Local documents are watched; browsers reload only when the rendered
tree changes. Clicks on cells with bound events are logged.

Examples:
  cells serve ui/main.json
  cells serve --port=8080 ui/main.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Preview.Port = port
			}
			if host != "" {
				cfg.Preview.Host = host
			}
			if noReload {
				cfg.Preview.Reload = false
			}

			srv, err := preview.NewServer(preview.Options{
				Config:   cfg,
				Location: args[0],
				Logger:   cfg.NewLogger(cmd.ErrOrStderr()),
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			info(cmd.ErrOrStderr(), "Serving %s at %s", args[0], cfg.PreviewURL())
			err = srv.Start(ctx)
			fmt.Fprintln(cmd.ErrOrStderr())
			info(cmd.ErrOrStderr(), "Shut down")
			return err
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().BoolVar(&noReload, "no-reload", false, "Disable live reload")

	return cmd
}
