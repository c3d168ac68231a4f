package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"draftsmith/internal/config"
	"draftsmith/internal/server"
)

// NewServeCmd creates the HTTP server command.
func NewServeCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the article generation HTTP API",
		Long: `Serve starts the HTTP API:

  POST /api/generate          run the full generation pipeline
  POST /api/images/regenerate regenerate a cover from a custom prompt
  POST /api/links/integrate   weave internal links into markdown
  GET  /api/promotions        list promotable projects and styles
  GET  /health                liveness check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			if host != "" {
				cfg.Server.Host = host
			}
			if port != 0 {
				cfg.Server.Port = port
			}

			srv, err := server.New(cfg)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				fmt.Printf("\nReceived %s, shutting down\n", sig)
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "bind host (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "bind port (overrides config)")
	return cmd
}
