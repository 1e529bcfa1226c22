package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"flashflow/internal/bootstrap"
	"flashflow/internal/bootstrap/logging"
	"flashflow/internal/errs"
	cacheinfra "flashflow/internal/infrastructure/cache"
	natsinfra "flashflow/internal/infrastructure/events"
	sqliterepo "flashflow/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "flashflow/internal/infrastructure/persistence/sqlite/uow"
	"flashflow/internal/ports"
	"flashflow/internal/usecase/pipeline"
)

// withApp bootstraps config, database, and the pipeline service for a
// command, and tears them down afterwards.
func withApp(run func(cmd *cobra.Command, app *bootstrap.App, svc *pipeline.Service) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := logging.WithAttrs(
			cmd.Context(),
			slog.String("command", cmd.CommandPath()),
			slog.String("config_file", cfgFile),
		)

		app, err := bootstrap.New(ctx, cfgFile)
		if err != nil {
			logging.Error(ctx, "bootstrap application failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "bootstrap application")
		}
		defer func() {
			if err := app.Close(context.WithoutCancel(ctx)); err != nil {
				logging.Error(ctx, "close application failed", slog.Any("err", errs.Loggable(err)))
			}
		}()

		policy, err := pipeline.NewPolicyProvider(app.Config.Policy.File)
		if err != nil {
			return errs.Wrap(err, "load stage policy")
		}

		var publisher ports.EventPublisher
		if app.Config.Events.NATSURL != "" {
			p, err := natsinfra.NewNATSPublisher(app.Config.Events.NATSURL, app.Config.Events.NATSSubject)
			if err != nil {
				// Fan-out is best-effort; the pipeline works without it.
				logging.Warn(ctx, "event publisher unavailable", slog.Any("err", errs.Loggable(err)))
			} else {
				publisher = p
				defer publisher.Close()
			}
		}

		svc := pipeline.NewService(
			sqliterepo.NewVideoRepository(app.DB),
			sqliteuow.NewUnitOfWork(app.DB),
			cacheinfra.NewSQLiteCache(app.DB),
			policy,
			publisher,
		)

		if err := run(cmd, app, svc); err != nil {
			return errs.Wrap(err, "run command")
		}
		return nil
	}
}
