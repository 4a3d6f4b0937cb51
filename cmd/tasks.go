package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssovee/Open-Data-API/auth"
	"github.com/ssovee/Open-Data-API/config"
	"github.com/ssovee/Open-Data-API/database"
	"github.com/ssovee/Open-Data-API/metrics"
	"github.com/ssovee/Open-Data-API/scheduler"
)

// purgeTasks lists the nightly cleanup steps. collector may be nil.
func purgeTasks(authSvc *auth.Service, collector *metrics.Collector) []scheduler.Task {
	notes := scheduler.ExpiredNotes(database.NewNoteRepository(database.DB, time.Now), time.Now)
	sessions := scheduler.Task{Name: "sessions", Run: authSvc.PurgeSessions}
	tasks := []scheduler.Task{notes, sessions}
	if collector != nil {
		for i := range tasks {
			tasks[i].Observe = collector.Purge.Observer(tasks[i].Name)
		}
	}
	return tasks
}

func seedCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the bundled mock data into empty tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := bootstrap()
			if err != nil {
				return err
			}
			return database.Seed(database.DB, force, logger)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace existing rows")
	return cmd
}

func purgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-notes",
		Short: "Delete expired notes and sessions once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := bootstrap()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			authSvc := auth.NewService(database.DB, config.C.Auth.TokenTTL, config.C.Auth.BcryptCost)
			deleted := scheduler.New("", logger, purgeTasks(authSvc, nil)...).RunOnce(ctx)
			logger.Info("purge finished", slog.Int64("deleted", deleted))
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired records\n", deleted)
			return ctxErr(ctx)
		},
	}
}

func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("interrupted: %w", err)
	}
	return nil
}
