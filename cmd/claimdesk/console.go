package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/claimdesk/internal/interfaces/tui"
)

func newConsoleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Start the terminal desk",
		Long: `Start the terminal desk with the submission form, the claim list and
the detail panel. With --http the HTTP desk runs alongside on the same claims.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			withHTTP, _ := cmd.Flags().GetBool("http")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx, cmd, true)
			if err != nil {
				return err
			}
			defer a.close()

			if withHTTP {
				srv := a.newHTTPServer()
				go func() {
					if err := srv.Start(ctx); err != nil {
						a.logger.Error("HTTP desk stopped", zap.Error(err))
					}
				}()
			}

			ctr := a.container
			model := tui.NewModel(ctx, ctr.Desk(), ctr.Dispatcher(), tui.Options{
				StartDir:          a.cfg.Documents.StartDir,
				AllowedExtensions: ctr.Config().Documents.AllowedExtensions,
			})
			defer model.Close()

			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = program.Run()
			interrupted := ctx.Err() != nil
			// stops the HTTP desk before the container closes
			stop()
			if err != nil && !interrupted {
				return fmt.Errorf("terminal desk failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().Bool("http", false, "also serve the HTTP desk")
	return cmd
}
