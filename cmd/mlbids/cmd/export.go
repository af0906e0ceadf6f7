package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"mlbids/internal/playeridmap"
	"mlbids/internal/store"
	"mlbids/lib/serviceutil"
	"time"

	"github.com/spf13/cobra"
)

var exportDb *string

func init() {
	exportDb = exportCmd.Flags().String("db", "", "The sqlite database to write to, defaults to the configured database.")
	rootCmd.AddCommand(exportCmd)
}

func databaseConfig(override string) store.Config {
	if override == "" {
		return cfg.Database
	}
	return store.Config{File: override}
}

func openStore(ctx context.Context, override string) (store.Store, func(), error) {
	db, err := databaseConfig(override).OpenDB()
	if err != nil {
		return store.Store{}, nil, err
	}
	s, err := store.NewStore(ctx, db, tel)
	if err != nil {
		db.Close()
		return store.Store{}, nil, err
	}
	return s, func() { db.Close() }, nil
}

// runExport reads the player id map from scratch and writes it to `s`.
func runExport(ctx context.Context, s store.Store) (store.Export, error) {
	m, err := playeridmap.New(ctx, reader, tel)
	if err != nil {
		return store.Export{}, err
	}
	return s.Export(ctx, m, time.Now())
}

var exportCmd = &cobra.Command{
	Use:   "export [--db <path/to/output.db>]",
	Short: "Writes the player id map and its changelog to a database.",
	Run: func(cmd *cobra.Command, args []string) {
		s, closeDb, err := openStore(cmd.Context(), *exportDb)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer closeDb()

		t1 := time.Now()
		export, err := runExport(cmd.Context(), s)
		if err != nil {
			serviceutil.Fatal("failed to export", err)
		}
		t2 := time.Now()

		slog.Info(
			"exported player id map",
			"run_id", export.RunID,
			"players", export.Players,
			"changes", export.Changes,
			"last_update", export.LastUpdate.Format(time.DateOnly),
			"seconds", t2.Sub(t1).Seconds(),
		)
		fmt.Println(export.Players)
	},
}
