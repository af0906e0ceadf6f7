package cmd

import (
	"log/slog"
	"mlbids/internal/components/chrono"
	"mlbids/lib/serviceutil"
	"time"

	"github.com/spf13/cobra"
)

var (
	scheduleCron *string
	scheduleDb   *string
)

func init() {
	scheduleCron = scheduleCmd.Flags().String("cron", "@daily", "The cron spec to export on (ex. \"0 6 * * *\" or \"@every 12h\").")
	scheduleDb = scheduleCmd.Flags().String("db", "", "The sqlite database to write to, defaults to the configured database.")
	rootCmd.AddCommand(scheduleCmd)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule [--cron <spec>] [--db <path/to/output.db>]",
	Short: "Exports the player id map on a cron schedule until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := serviceutil.SignalContext(cmd.Context())
		defer cancel()

		s, closeDb, err := openStore(ctx, *scheduleDb)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer closeDb()

		last, ok, err := s.LastExport(ctx)
		if err != nil {
			serviceutil.Fatal("failed to read export log", err)
		}
		if ok {
			slog.Info("last export", "run_id", last.RunID, "at", last.ExportedAt.Format(time.RFC3339), "players", last.Players)
		}

		location, err := cfg.Location()
		if err != nil {
			serviceutil.Fatal("failed to load timezone", err)
		}

		var cron chrono.CronAPI = chrono.NewStandardCron(tel, location)
		err = cron.Cron(*scheduleCron, func() {
			export, err := runExport(ctx, s)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				tel.ReportBroken("schedule.export", err)
				return
			}
			slog.Info("exported player id map", "run_id", export.RunID, "players", export.Players, "changes", export.Changes)
		})
		if err != nil {
			cron.Stop()
			serviceutil.Fatal("invalid cron spec", err)
		}

		slog.Info("waiting for schedule, press Ctrl+C to stop", "cron", *scheduleCron)
		<-ctx.Done()
		cron.Stop()
	},
}
