package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP desk",
		Long: `Start the HTTP desk. Claims live in memory until the process exits;
the API exposes submission, document upload, selection, approval and export.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx, cmd, false)
			if err != nil {
				return err
			}
			defer a.close()

			return a.newHTTPServer().Start(ctx)
		},
	}
}
