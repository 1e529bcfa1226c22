package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"flashflow/internal/bootstrap"
	"flashflow/internal/bootstrap/logging"
	"flashflow/internal/errs"
	"flashflow/internal/transport/httpapi"
	"flashflow/internal/usecase/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pipeline HTTP API",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		if err := app.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "initialize schema")
		}

		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if app.Config.Policy.File != "" {
			go func() {
				if err := svc.PolicyProvider().Watch(ctx); err != nil {
					logging.Warn(ctx, "policy watch stopped", slog.Any("err", errs.Loggable(err)))
				}
			}()
		}

		server := httpapi.NewServer(app.Config.Server.Addr, httpapi.NewRouter(svc))
		if err := server.Run(ctx); err != nil {
			return errs.Wrap(err, "run http server")
		}

		logging.Info(context.WithoutCancel(ctx), "server stopped")
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
